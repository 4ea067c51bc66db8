// Package clayout computes the in-memory layout of C structs and unions.
//
// Given a type tree and an ABI profile, the library reports the byte offset,
// size and alignment of every member, the bit position of every bitfield,
// and the total size and alignment of the aggregate. Results are what a C
// compiler targeting that ABI would produce, including pack directives,
// packed and aligned attributes, anonymous members and flexible array
// members.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	clayout/
//	├── ctype/           Type tree model and JSON/TOML type documents
//	├── abi/             ABI profiles, presets and TOML profile files
//	├── layout/          Layout engine, results, promotion and verification
//	│   └── internal/
//	│       ├── calc/      Per-profile layout calculator
//	│       └── bitfield/  Bitfield storage unit allocator
//	├── errors/          Structured error types with member paths
//	├── internal/
//	│   └── fixtures/    Reference declarations shared by tests and the CLI
//	└── cmd/clayout/     Command line and interactive layout browser
//
// # Quick Start
//
// Build a type tree and compute its layout:
//
//	s := ctype.NewStruct("header",
//	    ctype.Field("len", ctype.SizeT),
//	    ctype.Field("flags", ctype.Bits(ctype.UInt, 4)),
//	    ctype.Field("data", ctype.FlexibleOf(ctype.Char)),
//	)
//
//	res, err := layout.Compute(s, abi.X86_64SysV)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Size, res.Align) // 16 8
//
// Members of anonymous structs and unions are reachable by name:
//
//	m, ok := res.Lookup("u1")
//
// # Type Documents
//
// Type trees can also be read from JSON or TOML documents:
//
//	f, err := ctype.DecodeFile("types.toml")
//	root, ok := f.Lookup("header")
//
// # ABI Profiles
//
// Built-in presets cover x86_64 and i386 System V, AArch64, x86_64 MSVC,
// wasm32 and big-endian PPC64. Custom profiles are TOML files that override
// a preset:
//
//	base = "x86_64-sysv"
//	name = "arm32-eabi"
//	pointer_width = 4
//
// # Error Handling
//
// All errors are *errors.Error values carrying the failing phase, a kind and
// the member path from the root declaration:
//
//	var e *errors.Error
//	if stderrors.As(err, &e) {
//	    fmt.Println(e.Kind, e.Path)
//	}
//
// # Thread Safety
//
// An Engine may be shared between goroutines. Results are cached per root
// and profile, and each call returns its own copy.
package clayout
