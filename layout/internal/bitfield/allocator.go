package bitfield

import (
	"github.com/wippyai/clayout/abi"
	"github.com/wippyai/clayout/errors"
)

// Options are the ABI conventions the allocator follows.
type Options struct {
	// Reuse lets a field of a different base type join the open unit.
	Reuse bool
	Fill  abi.FillDirection
}

// Field is the next bitfield to place.
type Field struct {
	Base  string // base type identity
	Size  int64  // base size in bytes
	Align int64  // base alignment under the active pack cap
	Width int64
}

// Unit is an open storage unit.
type Unit struct {
	Base   string
	Offset int64 // byte offset within the struct
	Size   int64 // bytes
	Used   int64 // bits
}

// Placement is where a field landed.
type Placement struct {
	UnitOffset int64
	UnitSize   int64
	BitOffset  int64
	Width      int64
}

type Allocator struct {
	opts Options
	unit Unit
	open bool
}

func New(opts Options) *Allocator {
	return &Allocator{opts: opts}
}

// Open returns the open unit, if any.
func (a *Allocator) Open() (Unit, bool) {
	return a.unit, a.open
}

// Place sequences f given the struct cursor and returns the field's placement
// with the updated cursor. A zero-width field only flushes the open unit.
func (a *Allocator) Place(f Field, cursor int64) (Placement, int64, error) {
	if f.Width < 0 {
		return Placement{}, cursor, errors.Unsupported(errors.PhaseSequence, nil, "negative bitfield width")
	}
	if capacity := f.Size * 8; f.Width > capacity {
		return Placement{}, cursor, errors.BitfieldTooWide(nil, f.Base, f.Width, capacity)
	}
	if f.Width == 0 {
		return Placement{}, a.Flush(cursor), nil
	}

	if a.open && a.fits(f) {
		return a.take(f.Width), cursor, nil
	}

	cursor = a.Flush(cursor)
	off, ok := abi.SafeAlign(cursor, f.Align)
	if ok {
		_, ok = abi.SafeAdd(off, f.Size)
	}
	if !ok {
		return Placement{}, cursor, errors.Unsupported(errors.PhaseSequence, nil, "struct size overflows")
	}
	a.unit = Unit{
		Base:   f.Base,
		Offset: off,
		Size:   f.Size,
	}
	a.open = true
	return a.take(f.Width), cursor, nil
}

// Flush closes the open unit and returns the cursor moved past it.
func (a *Allocator) Flush(cursor int64) int64 {
	if !a.open {
		return cursor
	}
	a.open = false
	if end := a.unit.Offset + a.unit.Size; end > cursor {
		return end
	}
	return cursor
}

func (a *Allocator) fits(f Field) bool {
	if f.Base != a.unit.Base && !a.opts.Reuse {
		return false
	}
	return a.unit.Used+f.Width <= a.unit.Size*8
}

func (a *Allocator) take(width int64) Placement {
	bit := a.unit.Used
	if a.opts.Fill == abi.FillHighToLow {
		bit = a.unit.Size*8 - a.unit.Used - width
	}
	a.unit.Used += width
	return Placement{
		UnitOffset: a.unit.Offset,
		UnitSize:   a.unit.Size,
		BitOffset:  bit,
		Width:      width,
	}
}
