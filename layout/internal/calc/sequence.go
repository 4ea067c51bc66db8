package calc

import (
	"fmt"
	"strconv"

	"github.com/wippyai/clayout/abi"
	"github.com/wippyai/clayout/ctype"
	"github.com/wippyai/clayout/errors"
	"github.com/wippyai/clayout/layout/internal/bitfield"
)

// sequencer collects placed members and the running aggregate alignment.
type sequencer struct {
	c      *Calculator
	st     *state
	out    []Member
	align  int64
	pinned int64
}

func (c *Calculator) newSequencer(st *state, n int) *sequencer {
	return &sequencer{c: c, st: st, out: make([]Member, 0, n), align: 1}
}

func (c *Calculator) allocator() *bitfield.Allocator {
	return bitfield.New(bitfield.Options{
		Reuse: c.profile.BitfieldUnitReuse,
		Fill:  c.profile.BitfieldFill,
	})
}

func (sq *sequencer) raise(info Info) {
	if info.Align > sq.align {
		sq.align = info.Align
	}
	if info.Pinned > sq.pinned {
		sq.pinned = info.Pinned
	}
}

// sequenceStruct places members in declaration order and returns the
// sequencer holding them with the end of the last member.
func (c *Calculator) sequenceStruct(members []ctype.Member, packCap int64, st *state) (*sequencer, int64, error) {
	sq := c.newSequencer(st, len(members))
	alloc := c.allocator()

	var (
		cursor   int64
		flexible string
	)
	for i, m := range members {
		seg := segment(m, i)
		path := []string{seg}

		if flexible != "" {
			return nil, 0, errors.TrailingMember(path, flexible)
		}

		info, err := c.memberInfo(m, packCap, path, st)
		if err != nil {
			return nil, 0, err
		}

		switch t := m.Type.(type) {
		case *ctype.Bitfield:
			if t.Width != 0 {
				sq.raise(info)
			}
			p, next, err := alloc.Place(bitfieldOf(t, info), cursor)
			if err != nil {
				return nil, 0, prefixed(err, path)
			}
			cursor = next
			if m.Name != "" && t.Width > 0 {
				sq.bitfield(m, seg, p, info)
			}

		case *ctype.FlexibleArray:
			sq.raise(info)
			off, ok := abi.SafeAlign(alloc.Flush(cursor), info.Align)
			if !ok {
				return nil, 0, errors.Unsupported(errors.PhaseSequence, path, "struct size overflows")
			}
			cursor = off
			sq.out = append(sq.out, Member{
				Type:     m.Type,
				Name:     m.Name,
				Path:     []string{seg},
				Offset:   cursor,
				Align:    info.Align,
				Flexible: true,
			})
			flexible = seg

		default:
			sq.raise(info)
			off, ok := abi.SafeAlign(alloc.Flush(cursor), info.Align)
			if !ok {
				return nil, 0, errors.Unsupported(errors.PhaseSequence, path, "struct size overflows")
			}
			if err := sq.place(m, seg, off, info); err != nil {
				return nil, 0, err
			}
			end, ok := abi.SafeAdd(off, info.Size)
			if !ok {
				return nil, 0, errors.Unsupported(errors.PhaseSequence, path, "struct size overflows")
			}
			cursor = end
		}
	}

	return sq, alloc.Flush(cursor), nil
}

// sequenceUnion places every member at offset 0 and returns the sequencer
// holding them with the largest member size.
func (c *Calculator) sequenceUnion(members []ctype.Member, packCap int64, st *state) (*sequencer, int64, error) {
	sq := c.newSequencer(st, len(members))

	var size int64
	for i, m := range members {
		seg := segment(m, i)
		path := []string{seg}

		if _, ok := m.Type.(*ctype.FlexibleArray); ok {
			return nil, 0, errors.FlexibleInUnion(path)
		}

		info, err := c.memberInfo(m, packCap, path, st)
		if err != nil {
			return nil, 0, err
		}

		if t, ok := m.Type.(*ctype.Bitfield); ok {
			// each union bitfield gets its own unit at offset 0
			p, _, err := c.allocator().Place(bitfieldOf(t, info), 0)
			if err != nil {
				return nil, 0, prefixed(err, path)
			}
			if t.Width == 0 {
				continue
			}
			if m.Name != "" {
				sq.bitfield(m, seg, p, info)
			}
		} else if err := sq.place(m, seg, 0, info); err != nil {
			return nil, 0, err
		}

		sq.raise(info)
		if info.Size > size {
			size = info.Size
		}
	}

	return sq, size, nil
}

// place records m at off followed by the members of m's type when it is an
// aggregate.
func (sq *sequencer) place(m ctype.Member, seg string, off int64, info Info) error {
	sq.out = append(sq.out, Member{
		Type:      m.Type,
		Name:      m.Name,
		Path:      []string{seg},
		Offset:    off,
		Size:      info.Size,
		Align:     info.Align,
		Anonymous: m.Anonymous(),
	})

	if !m.Type.Kind().IsAggregate() {
		return nil
	}
	inner, err := sq.c.aggregate(m.Type, sq.st)
	if err != nil {
		return prefixed(err, []string{seg})
	}
	for _, im := range inner.Members {
		path := make([]string, 0, len(im.Path)+1)
		im.Path = append(append(path, seg), im.Path...)
		im.Offset += off
		im.Depth++
		sq.out = append(sq.out, im)
	}
	return nil
}

func (sq *sequencer) bitfield(m ctype.Member, seg string, p bitfield.Placement, info Info) {
	sq.out = append(sq.out, Member{
		Type:      m.Type,
		Name:      m.Name,
		Path:      []string{seg},
		Offset:    p.UnitOffset,
		Size:      p.UnitSize,
		Align:     info.Align,
		BitOffset: p.BitOffset,
		BitWidth:  p.Width,
		Bitfield:  true,
	})
}

func bitfieldOf(t *ctype.Bitfield, info Info) bitfield.Field {
	return bitfield.Field{
		Base:  baseID(t.Base),
		Size:  info.Size,
		Align: info.Align,
		Width: t.Width,
	}
}

func baseID(p *ctype.Primitive) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("<%d-byte>", p.Size)
}

// segment is the path segment of the i-th member. Unnamed members are
// addressed by position.
func segment(m ctype.Member, i int) string {
	if m.Name != "" {
		return m.Name
	}
	return "#" + strconv.Itoa(i)
}
