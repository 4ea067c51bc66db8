package abi

import (
	"math"

	"golang.org/x/exp/constraints"
)

// AlignTo rounds offset up to a multiple of align, which must be a power of two.
func AlignTo[T constraints.Integer](offset, align T) T {
	if align <= 1 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// IsPow2 reports whether n is a positive power of two.
func IsPow2[T constraints.Integer](n T) bool {
	return n > 0 && n&(n-1) == 0
}

// SafeMul multiplies two non-negative sizes, reporting overflow.
func SafeMul(a, b int64) (int64, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if b != 0 && a > math.MaxInt64/b {
		return 0, false
	}
	return a * b, true
}

// SafeAdd adds two non-negative sizes, reporting overflow.
func SafeAdd(a, b int64) (int64, bool) {
	if a < 0 || b < 0 || a > math.MaxInt64-b {
		return 0, false
	}
	return a + b, true
}

// SafeAlign rounds a non-negative offset up to a multiple of align, which must
// be a power of two, reporting overflow.
func SafeAlign(offset, align int64) (int64, bool) {
	if offset < 0 {
		return 0, false
	}
	if align <= 1 {
		return offset, true
	}
	if offset > math.MaxInt64-(align-1) {
		return 0, false
	}
	return AlignTo(offset, align), true
}
