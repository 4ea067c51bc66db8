package layout

import (
	"strings"

	"github.com/wippyai/clayout/errors"
)

// promote maps every member's access path to its index. The access path is
// the physical path with anonymous segments removed, so fields of anonymous
// structs and unions are reachable from the enclosing scope.
func promote(members []MemberLayout) (map[string]int, error) {
	table := make(map[string]int, len(members))
	for i, m := range members {
		if m.Name == "" {
			continue
		}
		access := accessPath(m.Path)
		if _, dup := table[access]; dup {
			return nil, errors.DuplicateMember(m.Path, access)
		}
		table[access] = i
	}
	return table, nil
}

func accessPath(path []string) string {
	segs := make([]string, 0, len(path))
	for _, s := range path {
		if !strings.HasPrefix(s, "#") {
			segs = append(segs, s)
		}
	}
	return strings.Join(segs, ".")
}
