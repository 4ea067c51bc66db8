package abi

import (
	"fmt"
	"strconv"

	"go.uber.org/multierr"

	"github.com/wippyai/clayout/errors"
)

// FillDirection is the bit numbering convention inside a bitfield storage unit.
type FillDirection uint8

const (
	FillLowToHigh FillDirection = iota
	FillHighToLow
)

func (d FillDirection) String() string {
	switch d {
	case FillLowToHigh:
		return "low-to-high"
	case FillHighToLow:
		return "high-to-low"
	default:
		return "unknown"
	}
}

func (d FillDirection) MarshalText() ([]byte, error) {
	if d > FillHighToLow {
		return nil, fmt.Errorf("invalid fill direction %d", d)
	}
	return []byte(d.String()), nil
}

func (d *FillDirection) UnmarshalText(text []byte) error {
	switch string(text) {
	case "low-to-high":
		*d = FillLowToHigh
	case "high-to-low":
		*d = FillHighToLow
	default:
		return fmt.Errorf("invalid fill direction %q", text)
	}
	return nil
}

// NumClasses is the number of primitive size classes in an alignment table.
const NumClasses = 5

// ClassSizes are the primitive byte sizes the alignment table is indexed by.
var ClassSizes = [NumClasses]int64{1, 2, 4, 8, 16}

// ClassIndex returns the alignment table index for a primitive of size bytes.
func ClassIndex(size int64) (int, bool) {
	for i, s := range ClassSizes {
		if s == size {
			return i, true
		}
	}
	return 0, false
}

// Profile is the ABI a layout is computed for. Profiles are comparable.
type Profile struct {
	Name string
	// PointerWidth is the size of pointers and other word-sized primitives.
	PointerWidth int64
	// Alignments maps each size class in ClassSizes to its natural alignment.
	Alignments [NumClasses]int64
	// BitfieldUnitReuse lets a bitfield join an open storage unit of a
	// different base type.
	BitfieldUnitReuse bool
	BitfieldFill      FillDirection
	// AlignedOverridesPack makes a member's aligned(N) win over the pack cap.
	// When false the pack cap also bounds aligned(N).
	AlignedOverridesPack bool
	// RejectAlignedInPacked makes aligned(N) on a packed member an error.
	RejectAlignedInPacked bool
}

// NaturalAlign returns the natural alignment of a primitive of size bytes.
func (p Profile) NaturalAlign(size int64) (int64, bool) {
	i, ok := ClassIndex(size)
	if !ok {
		return 0, false
	}
	return p.Alignments[i], true
}

// WordAlign returns the alignment of word-sized primitives.
func (p Profile) WordAlign() int64 {
	if a, ok := p.NaturalAlign(p.PointerWidth); ok {
		return a
	}
	return p.PointerWidth
}

// Validate checks the profile and reports every problem found.
func (p Profile) Validate() error {
	var err error
	if _, ok := ClassIndex(p.PointerWidth); !ok || p.PointerWidth < 2 {
		err = multierr.Append(err, fmt.Errorf("pointer width %d is not one of 2, 4, 8, 16", p.PointerWidth))
	}
	for i, a := range p.Alignments {
		if !IsPow2(a) {
			err = multierr.Append(err, fmt.Errorf("alignment of %d-byte types is %d, want a power of two", ClassSizes[i], a))
		}
	}
	if p.BitfieldFill > FillHighToLow {
		err = multierr.Append(err, fmt.Errorf("invalid bitfield fill direction %d", p.BitfieldFill))
	}
	if err != nil {
		return errors.InvalidProfile(p.Name, err)
	}
	return nil
}

// AlignmentTable returns the alignment table keyed by decimal size class.
func (p Profile) AlignmentTable() map[string]int64 {
	out := make(map[string]int64, NumClasses)
	for i, s := range ClassSizes {
		out[strconv.FormatInt(s, 10)] = p.Alignments[i]
	}
	return out
}
