package calc

import (
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/wippyai/clayout/abi"
	"github.com/wippyai/clayout/ctype"
	"github.com/wippyai/clayout/errors"
)

// Info is the size and alignment a type occupies as a member. Pinned is the
// alignment explicit aligned(N) attributes guarantee it; pack caps do not go
// below it when the profile lets aligned win over pack.
type Info struct {
	Size   int64
	Align  int64
	Pinned int64
}

// Member is one placed member. Nested members of struct and union members
// follow their parent with Depth+1 and offsets relative to the same origin.
type Member struct {
	Type      ctype.Type
	Name      string
	Path      []string
	Offset    int64
	Size      int64
	Align     int64
	BitOffset int64
	BitWidth  int64
	Depth     int
	Bitfield  bool
	Anonymous bool
	Flexible  bool
}

// Layout is the computed layout of a type.
type Layout struct {
	Members []Member
	Size    int64
	Align   int64
	Pinned  int64
}

type Calculator struct {
	profile abi.Profile
	cache   sync.Map // ctype.Type -> *Layout
}

// New returns a calculator for p. The profile must already be valid.
func New(p abi.Profile) *Calculator {
	return &Calculator{profile: p}
}

func (c *Calculator) Profile() abi.Profile {
	return c.profile
}

// state is per-call bookkeeping for detecting aggregates that contain
// themselves by value.
type state struct {
	visiting map[ctype.Type]bool
}

// Layout computes the layout of root. Structs and unions yield their member
// layouts; primitives and arrays yield only size and alignment.
func (c *Calculator) Layout(root ctype.Type) (*Layout, error) {
	if ctype.IsNil(root) {
		return nil, errors.Unsupported(errors.PhaseResolve, nil, "missing type")
	}
	st := &state{visiting: make(map[ctype.Type]bool)}

	switch t := root.(type) {
	case *ctype.Struct, *ctype.Union:
		return c.aggregate(t, st)
	case *ctype.Bitfield, *ctype.FlexibleArray:
		return nil, errors.Unsupported(errors.PhaseResolve, nil,
			fmt.Sprintf("%s cannot be laid out outside a struct", t.Kind()))
	}

	info, err := c.resolve(root, 0, st)
	if err != nil {
		return nil, err
	}
	return &Layout{Size: info.Size, Align: info.Align}, nil
}

func (c *Calculator) aggregate(t ctype.Type, st *state) (*Layout, error) {
	if cached, ok := c.cache.Load(t); ok {
		return cached.(*Layout), nil
	}
	if st.visiting[t] {
		return nil, errors.Unsupported(errors.PhaseResolve, nil,
			fmt.Sprintf("%s contains itself by value", t))
	}
	st.visiting[t] = true
	defer delete(st.visiting, t)

	var (
		l   *Layout
		err error
	)
	switch agg := t.(type) {
	case *ctype.Struct:
		l, err = c.structLayout(agg, st)
	case *ctype.Union:
		l, err = c.unionLayout(agg, st)
	default:
		err = errors.Unsupported(errors.PhaseResolve, nil, fmt.Sprintf("%s is not an aggregate", t))
	}
	if err != nil {
		return nil, err
	}

	c.cache.Store(t, l)
	return l, nil
}

func (c *Calculator) structLayout(s *ctype.Struct, st *state) (*Layout, error) {
	if s.Pack != 0 && !abi.IsPow2(s.Pack) {
		return nil, errors.NotPowerOfTwo(nil, "pack", s.Pack)
	}
	if err := checkAligned(nil, s.Attrs.Aligned); err != nil {
		return nil, err
	}

	packCap := s.Pack
	if s.Attrs.Packed {
		packCap = 1
	}

	sq, end, err := c.sequenceStruct(s.Members, packCap, st)
	if err != nil {
		return nil, err
	}
	return sq.finish(end, s.Attrs.Aligned)
}

func (c *Calculator) unionLayout(u *ctype.Union, st *state) (*Layout, error) {
	if err := checkAligned(nil, u.Attrs.Aligned); err != nil {
		return nil, err
	}

	var packCap int64
	if u.Attrs.Packed {
		packCap = 1
	}

	sq, end, err := c.sequenceUnion(u.Members, packCap, st)
	if err != nil {
		return nil, err
	}
	return sq.finish(end, u.Attrs.Aligned)
}

// finish applies the aggregate's own aligned(N) as a floor on its alignment
// and rounds the size up to the alignment.
func (sq *sequencer) finish(end, aligned int64) (*Layout, error) {
	sq.raise(Info{Align: aligned, Pinned: aligned})

	size, ok := abi.SafeAlign(end, sq.align)
	if !ok {
		return nil, errors.Unsupported(errors.PhaseSequence, nil, "aggregate size overflows")
	}
	return &Layout{
		Members: sq.out,
		Size:    size,
		Align:   sq.align,
		Pinned:  sq.pinned,
	}, nil
}

func checkAligned(path []string, n int64) error {
	if n != 0 && !abi.IsPow2(n) {
		return errors.NotPowerOfTwo(path, "aligned", n)
	}
	return nil
}

// prefixed returns err with path prepended to its member path.
func prefixed(err error, path []string) error {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.Prefix(path...)
	}
	return err
}
