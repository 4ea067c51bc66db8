// Package layout computes the memory layout of C structs and unions.
//
// Given a type tree built with package ctype and an ABI profile from package
// abi, Compute returns the size and alignment of the root type together with
// every member's offset, size and alignment. Bitfields additionally carry
// their bit offset and width inside the storage unit.
//
// Basic usage:
//
//	s := ctype.NewStruct("point",
//		ctype.Field("x", ctype.Int),
//		ctype.Field("y", ctype.Int),
//	)
//	res, err := layout.Compute(s, abi.Default())
//	if err != nil {
//		return err
//	}
//	fmt.Println(res.Size, res.Align) // 8 4
//
// # Members
//
// Result.Members lists members depth-first in declaration order. Members of a
// nested struct or union follow their parent with a larger Depth; offsets are
// always relative to the root. Anonymous members appear under the path
// segment "#<index>", and their fields are promoted: Lookup("u1") finds the
// member whose physical path is "#1.u1".
//
// # Caching
//
// An Engine memoizes results per (root node, profile) and is safe for
// concurrent use. Every call returns its own copy of the cached result, so
// callers may modify what they get back. Type trees must not be mutated after
// their first layout; call Engine.Reset if they are.
//
// # Errors
//
// Every failure is an *errors.Error whose Path names the offending member,
// starting with the root type's name, e.g. "outer.inner.b".
package layout
