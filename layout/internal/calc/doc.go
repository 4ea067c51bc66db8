// Package calc computes C aggregate layouts for one ABI profile.
//
// The Calculator resolves the size and alignment of every type node, walks
// struct and union members placing each one, and rounds the aggregate to its
// final alignment. Aggregate layouts are cached per type node, so a
// Calculator must only be used with type trees that are no longer mutated.
//
// # Rules
//
//   - Primitive: size from the node, alignment from the profile table
//   - Array: element size times every dimension, element alignment
//   - Struct: members in order, each at the next multiple of its alignment;
//     bitfields share storage units (see package bitfield)
//   - Union: every member at offset 0, size of the largest member
//   - Pack caps bound member alignment; aligned(N) raises it, and when the
//     profile lets aligned win over pack, a cap never lowers an alignment
//     that an explicit aligned(N) inside a nested type asked for
//   - Offsets and sizes that overflow int64 are errors
//
// Offsets and error paths produced here are relative to the aggregate being
// laid out.
//
// This package is internal to the layout engine.
package calc
