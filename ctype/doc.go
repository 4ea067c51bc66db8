// Package ctype defines the abstract C type tree consumed by the layout engine.
//
// A type tree is produced by a C front end and is read-only afterwards. The
// set of node types is closed:
//
//   - Primitive: scalar leaf (char, int, double, pointers, size_t)
//   - Struct, Union: aggregates with ordered members and attributes
//   - Array: row-major repetition over one or more dimensions
//   - FlexibleArray: zero-size trailing array member
//   - Bitfield: integer member of a given bit width; width 0 resets the unit
//   - Forward: reference to a type that was never completed
//
// Attributes (packed, aligned(N)) and the active #pragma pack value are
// attached to the nodes at parse time, so layout never consults ambient state.
//
// Type trees can also be decoded from JSON or TOML documents, see Decode.
package ctype
