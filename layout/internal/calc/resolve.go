package calc

import (
	"fmt"

	"github.com/wippyai/clayout/abi"
	"github.com/wippyai/clayout/ctype"
	"github.com/wippyai/clayout/errors"
)

// resolve returns the size and alignment of t placed under packCap (0 = none).
// The cap bounds the alignment t has as a member; it does not change the
// layout inside a nested aggregate.
func (c *Calculator) resolve(t ctype.Type, packCap int64, st *state) (Info, error) {
	if ctype.IsNil(t) {
		return Info{}, errors.Unsupported(errors.PhaseResolve, nil, "missing type")
	}

	switch t := t.(type) {
	case *ctype.Primitive:
		info, err := c.primitive(t)
		if err != nil {
			return Info{}, err
		}
		info.Align = c.capAlign(info.Align, packCap, 0)
		return info, nil

	case *ctype.Array:
		return c.array(t, packCap, st)

	case *ctype.Struct, *ctype.Union:
		l, err := c.aggregate(t, st)
		if err != nil {
			return Info{}, err
		}
		return Info{Size: l.Size, Align: c.capAlign(l.Align, packCap, l.Pinned), Pinned: l.Pinned}, nil

	case *ctype.Bitfield:
		if ctype.IsNil(t.Base) {
			return Info{}, errors.Unsupported(errors.PhaseResolve, nil, "bitfield without a base type")
		}
		return c.resolve(t.Base, packCap, st)

	case *ctype.FlexibleArray:
		if ctype.IsNil(t.Elem) {
			return Info{}, errors.Unsupported(errors.PhaseResolve, nil, "flexible array without an element type")
		}
		elem, err := c.resolve(t.Elem, packCap, st)
		if err != nil {
			return Info{}, err
		}
		return Info{Size: 0, Align: elem.Align, Pinned: elem.Pinned}, nil

	case *ctype.Forward:
		return Info{}, errors.Unsupported(errors.PhaseResolve, nil,
			fmt.Sprintf("incomplete type %s", t.Name))
	}

	return Info{}, errors.Unsupported(errors.PhaseResolve, nil, fmt.Sprintf("unknown type node %T", t))
}

func (c *Calculator) primitive(p *ctype.Primitive) (Info, error) {
	if p.Word {
		return Info{Size: c.profile.PointerWidth, Align: c.profile.WordAlign()}, nil
	}
	if p.Size <= 0 {
		return Info{}, errors.New(errors.PhaseResolve, errors.KindUnsupported).
			CType(p.Name).
			Detail("primitive has no size").
			Build()
	}
	if p.Align != 0 {
		if !abi.IsPow2(p.Align) {
			return Info{}, errors.New(errors.PhaseResolve, errors.KindUnsupported).
				CType(p.Name).
				Detail("alignment %d is not a power of two", p.Align).
				Build()
		}
		return Info{Size: p.Size, Align: p.Align}, nil
	}
	align, ok := c.profile.NaturalAlign(p.Size)
	if !ok {
		return Info{}, errors.New(errors.PhaseResolve, errors.KindUnsupported).
			CType(p.Name).
			Detail("profile %s has no alignment for %d-byte primitives", c.profile.Name, p.Size).
			Build()
	}
	return Info{Size: p.Size, Align: align}, nil
}

func (c *Calculator) array(a *ctype.Array, packCap int64, st *state) (Info, error) {
	if len(a.Dims) == 0 {
		return Info{}, errors.Unsupported(errors.PhaseResolve, nil, "array without dimensions")
	}
	switch a.Elem.(type) {
	case *ctype.Bitfield, *ctype.FlexibleArray:
		return Info{}, errors.Unsupported(errors.PhaseResolve, nil,
			fmt.Sprintf("array of %s", a.Elem.Kind()))
	}

	elem, err := c.resolve(a.Elem, packCap, st)
	if err != nil {
		return Info{}, err
	}

	size := elem.Size
	for _, d := range a.Dims {
		if d <= 0 {
			return Info{}, errors.New(errors.PhaseResolve, errors.KindUnsupported).
				CType(a.String()).
				Detail("array dimension %d is not a positive constant", d).
				Value(d).
				Build()
		}
		var ok bool
		if size, ok = abi.SafeMul(size, d); !ok {
			return Info{}, errors.New(errors.PhaseResolve, errors.KindUnsupported).
				CType(a.String()).
				Detail("array size overflows").
				Build()
		}
	}
	return Info{Size: size, Align: elem.Align, Pinned: elem.Pinned}, nil
}

// memberInfo resolves m under the enclosing pack cap and applies the member's
// own attributes.
func (c *Calculator) memberInfo(m ctype.Member, packCap int64, path []string, st *state) (Info, error) {
	if m.Attrs.Packed {
		packCap = 1
	}

	info, err := c.resolve(m.Type, packCap, st)
	if err != nil {
		return Info{}, prefixed(err, path)
	}

	n := m.Attrs.Aligned
	if n == 0 {
		return info, nil
	}
	if err := checkAligned(path, n); err != nil {
		return Info{}, err
	}
	if m.Attrs.Packed && c.profile.RejectAlignedInPacked {
		return Info{}, errors.InvalidAttribute(path,
			fmt.Sprintf("aligned(%d) on a packed member", n))
	}

	if n > info.Align {
		info.Align = n
	}
	if n > info.Pinned {
		info.Pinned = n
	}
	info.Align = c.capAlign(info.Align, packCap, info.Pinned)
	return info, nil
}

// capAlign bounds align by packCap. When aligned(N) overrides pack, the
// result never drops below the pinned alignment.
func (c *Calculator) capAlign(align, packCap, pinned int64) int64 {
	if packCap <= 0 || align <= packCap {
		return align
	}
	if c.profile.AlignedOverridesPack && pinned > packCap {
		return min(align, pinned)
	}
	return packCap
}
