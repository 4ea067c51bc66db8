// Package bitfield tracks the storage unit bitfields are packed into while a
// struct's members are sequenced.
//
// The allocator is either between units or holds one open unit:
//
//	NoUnit --field--> InUnit{base, offset, used}
//	InUnit --field that fits--> InUnit{used += width}
//	InUnit --field that does not fit--> flush, InUnit{new unit}
//	InUnit --width 0 or non-bitfield member--> flush, NoUnit
//
// A flush moves the struct cursor to the end of the unit. While a unit is
// open the cursor stays where it was before the unit was allocated.
//
// This package is internal to the layout engine.
package bitfield
