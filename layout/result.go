package layout

import (
	"sort"
	"strings"

	"github.com/wippyai/clayout/ctype"
	"github.com/wippyai/clayout/layout/internal/calc"
)

// MemberLayout is the placement of one member.
type MemberLayout struct {
	Type ctype.Type
	Name string
	// Path is the physical path from the root; anonymous members use "#<index>".
	Path   []string
	Offset int64
	Size   int64
	Align  int64
	// BitOffset and BitWidth locate a bitfield inside its storage unit, which
	// starts at Offset and is Size bytes long.
	BitOffset int64
	BitWidth  int64
	Depth     int
	Bitfield  bool
	Anonymous bool
	Flexible  bool
}

// PathString returns the physical path joined with dots.
func (m MemberLayout) PathString() string {
	return strings.Join(m.Path, ".")
}

// End returns the offset one past the member's last byte.
func (m MemberLayout) End() int64 {
	return m.Offset + m.Size
}

// Result is the layout of a root type. Every Result handed out by an Engine
// is the caller's own copy; changing it does not affect later results.
type Result struct {
	Root    ctype.Type
	Name    string
	Profile string
	Members []MemberLayout
	Size    int64
	Align   int64

	byPath   map[string]int
	promoted map[string]int
}

func newResult(root ctype.Type, profile string, l *calc.Layout) (*Result, error) {
	res := &Result{
		Root:    root,
		Name:    rootName(root),
		Profile: profile,
		Size:    l.Size,
		Align:   l.Align,
		Members: make([]MemberLayout, len(l.Members)),
		byPath:  make(map[string]int, len(l.Members)),
	}
	for i, m := range l.Members {
		res.Members[i] = MemberLayout{
			Type:      m.Type,
			Name:      m.Name,
			Path:      append([]string(nil), m.Path...),
			Offset:    m.Offset,
			Size:      m.Size,
			Align:     m.Align,
			BitOffset: m.BitOffset,
			BitWidth:  m.BitWidth,
			Depth:     m.Depth,
			Bitfield:  m.Bitfield,
			Anonymous: m.Anonymous,
			Flexible:  m.Flexible,
		}
		res.byPath[res.Members[i].PathString()] = i
	}

	promoted, err := promote(res.Members)
	if err != nil {
		return nil, err
	}
	res.promoted = promoted
	return res, nil
}

// clone returns a copy of r that shares nothing mutable with it. The lookup
// tables are never written after newResult and are shared.
func (r *Result) clone() *Result {
	out := *r
	out.Members = make([]MemberLayout, len(r.Members))
	for i, m := range r.Members {
		m.Path = append([]string(nil), m.Path...)
		out.Members[i] = m
	}
	return &out
}

// Member returns the member at the physical path, e.g. "#1.u2".
func (r *Result) Member(path string) (MemberLayout, bool) {
	i, ok := r.byPath[path]
	if !ok {
		return MemberLayout{}, false
	}
	return r.Members[i], true
}

// Lookup returns the member reachable as path in C, with anonymous members
// elided, e.g. "u2".
func (r *Result) Lookup(path string) (MemberLayout, bool) {
	i, ok := r.promoted[path]
	if !ok {
		return MemberLayout{}, false
	}
	return r.Members[i], true
}

// AccessPaths returns every path accepted by Lookup, sorted.
func (r *Result) AccessPaths() []string {
	paths := make([]string, 0, len(r.promoted))
	for p := range r.promoted {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Fields returns the root's direct members.
func (r *Result) Fields() []MemberLayout {
	var out []MemberLayout
	for _, m := range r.Members {
		if m.Depth == 0 {
			out = append(out, m)
		}
	}
	return out
}

func rootName(t ctype.Type) string {
	switch t := t.(type) {
	case *ctype.Struct:
		return t.Name
	case *ctype.Union:
		return t.Name
	case nil:
		return ""
	}
	return t.String()
}
