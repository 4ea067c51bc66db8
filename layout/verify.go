package layout

import (
	"go.uber.org/multierr"

	"github.com/wippyai/clayout/abi"
	"github.com/wippyai/clayout/ctype"
	"github.com/wippyai/clayout/errors"
)

// Verify re-checks a result against the layout rules and reports every
// violation found. A result produced by Compute always verifies.
func Verify(r *Result) error {
	var err error
	violation := func(path []string, format string, args ...any) {
		err = multierr.Append(err, errors.Invariant(path, format, args...).Prefix(r.Name))
	}

	if r.Align < 1 || !abi.IsPow2(r.Align) {
		violation(nil, "alignment %d is not a power of two", r.Align)
	} else if r.Size%r.Align != 0 {
		violation(nil, "size %d is not a multiple of alignment %d", r.Size, r.Align)
	}

	_, isUnion := r.Root.(*ctype.Union)
	var prevEnd int64
	for i, m := range r.Members {
		if !abi.IsPow2(m.Align) {
			violation(m.Path, "alignment %d is not a power of two", m.Align)
			continue
		}
		if m.End() > r.Size {
			violation(m.Path, "ends at %d past size %d", m.End(), r.Size)
		}

		switch {
		case m.Flexible:
			if m.Size != 0 {
				violation(m.Path, "flexible array has size %d", m.Size)
			}
			if m.Depth == 0 && !lastField(r.Members, i) {
				violation(m.Path, "flexible array is not the last member")
			}
		case m.Bitfield:
			if m.BitOffset < 0 || m.BitOffset+m.BitWidth > m.Size*8 {
				violation(m.Path, "bits [%d,%d) outside a %d-byte unit",
					m.BitOffset, m.BitOffset+m.BitWidth, m.Size)
			}
		case m.Depth == 0:
			// nested members are aligned relative to their parent, which a
			// pack cap may have misaligned
			if m.Offset%m.Align != 0 {
				violation(m.Path, "offset %d is not a multiple of alignment %d", m.Offset, m.Align)
			}
		}

		if m.Depth != 0 || m.Bitfield {
			continue
		}
		if isUnion {
			if m.Offset != 0 {
				violation(m.Path, "union member at offset %d", m.Offset)
			}
			continue
		}
		if m.Offset < prevEnd {
			violation(m.Path, "offset %d overlaps the previous member ending at %d", m.Offset, prevEnd)
		}
		prevEnd = m.End()
	}

	return err
}

func lastField(members []MemberLayout, i int) bool {
	for _, m := range members[i+1:] {
		if m.Depth == 0 {
			return false
		}
	}
	return true
}
