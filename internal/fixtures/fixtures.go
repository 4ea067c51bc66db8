// Package fixtures provides reference C declarations as type trees.
//
// Every constructor returns a fresh tree, so callers may compare cache
// behaviour across distinct but equal inputs.
package fixtures

import (
	"github.com/wippyai/clayout/ctype"
)

// Flex is `struct Flex { size_t len; char data[]; }`.
func Flex() *ctype.Struct {
	return ctype.NewStruct("Flex",
		ctype.Field("len", ctype.SizeT),
		ctype.Field("data", ctype.FlexibleOf(ctype.Char)),
	)
}

// PackedP is `struct PackedP { char a; int b; char c; }` under #pragma pack(1).
func PackedP() *ctype.Struct {
	s := abc("PackedP")
	s.Pack = 1
	return s
}

// WithAnon has a named member of anonymous struct type and an anonymous union:
//
//	struct WithAnon {
//	    struct { int a; char b; } anon;
//	    union { int u1; double u2; };
//	    char tail;
//	};
func WithAnon() *ctype.Struct {
	return ctype.NewStruct("WithAnon",
		ctype.Field("anon", ctype.NewStruct("",
			ctype.Field("a", ctype.Int),
			ctype.Field("b", ctype.Char),
		)),
		ctype.Anon(ctype.NewUnion("",
			ctype.Field("u1", ctype.Int),
			ctype.Field("u2", ctype.Double),
		)),
		ctype.Field("tail", ctype.Char),
	)
}

// BitFields is
//
//	struct BitFields {
//	    int a : 3;
//	    int b : 5;
//	    int c : 24;
//	    int : 0;
//	    unsigned long long d : 1;
//	};
func BitFields() *ctype.Struct {
	return ctype.NewStruct("BitFields",
		ctype.Field("a", ctype.Bits(ctype.Int, 3)),
		ctype.Field("b", ctype.Bits(ctype.Int, 5)),
		ctype.Field("c", ctype.Bits(ctype.Int, 24)),
		ctype.Field("", ctype.Bits(ctype.Int, 0)),
		ctype.Field("d", ctype.Bits(ctype.ULongLong, 1)),
	)
}

// Embedded is `struct Embedded { int e; char f; }`.
func Embedded() *ctype.Struct {
	return ctype.NewStruct("Embedded",
		ctype.Field("e", ctype.Int),
		ctype.Field("f", ctype.Char),
	)
}

// InlineDecl is `struct InlineDecl { struct Embedded { int e; char f; } emb; }`.
func InlineDecl() *ctype.Struct {
	return ctype.NewStruct("InlineDecl", ctype.Field("emb", Embedded()))
}

// PackedAttr is `struct PackedAttr { char a; int b; char c; } __attribute__((packed))`.
func PackedAttr() *ctype.Struct {
	s := abc("PackedAttr")
	s.Attrs.Packed = true
	return s
}

// U is `union U { struct { char a; int b; } s; double d; }`.
func U() *ctype.Union {
	return ctype.NewUnion("U",
		ctype.Field("s", ctype.NewStruct("",
			ctype.Field("a", ctype.Char),
			ctype.Field("b", ctype.Int),
		)),
		ctype.Field("d", ctype.Double),
	)
}

// AlignTest is
//
//	struct AlignTest {
//	    char a;
//	    int b __attribute__((aligned(16)));
//	    char c;
//	} __attribute__((aligned(8)));
func AlignTest() *ctype.Struct {
	s := ctype.NewStruct("AlignTest",
		ctype.Field("a", ctype.Char),
		ctype.Field("b", ctype.Int).WithAligned(16),
		ctype.Field("c", ctype.Char),
	)
	s.Attrs.Aligned = 8
	return s
}

// ArrayTest is `struct ArrayTest { int matrix[3][2]; }`.
func ArrayTest() *ctype.Struct {
	return ctype.NewStruct("ArrayTest",
		ctype.Field("matrix", ctype.ArrayOf(ctype.Int, 3, 2)),
	)
}

// Plain is `struct Plain { char a; int b; char c; }` with no pack directive.
func Plain() *ctype.Struct {
	return abc("Plain")
}

// Decls returns every fixture in declaration order.
func Decls() []ctype.Decl {
	return []ctype.Decl{
		{Name: "Flex", Type: Flex()},
		{Name: "PackedP", Type: PackedP()},
		{Name: "WithAnon", Type: WithAnon()},
		{Name: "BitFields", Type: BitFields()},
		{Name: "InlineDecl", Type: InlineDecl()},
		{Name: "PackedAttr", Type: PackedAttr()},
		{Name: "U", Type: U()},
		{Name: "AlignTest", Type: AlignTest()},
		{Name: "ArrayTest", Type: ArrayTest()},
		{Name: "Plain", Type: Plain()},
	}
}

// Lookup returns the fixture called name.
func Lookup(name string) (ctype.Type, bool) {
	for _, d := range Decls() {
		if d.Name == name {
			return d.Type, true
		}
	}
	return nil, false
}

func abc(name string) *ctype.Struct {
	return ctype.NewStruct(name,
		ctype.Field("a", ctype.Char),
		ctype.Field("b", ctype.Int),
		ctype.Field("c", ctype.Char),
	)
}
