package calc

import (
	stderrors "errors"
	"math"
	"strings"
	"testing"

	"github.com/wippyai/clayout/abi"
	"github.com/wippyai/clayout/ctype"
	"github.com/wippyai/clayout/errors"
	"github.com/wippyai/clayout/internal/fixtures"
)

type want struct {
	path   string
	offset int64
	size   int64
	bit    int64
}

func find(l *Layout, path string) (Member, bool) {
	for _, m := range l.Members {
		if strings.Join(m.Path, ".") == path {
			return m, true
		}
	}
	return Member{}, false
}

func check(t *testing.T, l *Layout, size, align int64, members []want) {
	t.Helper()
	if l.Size != size {
		t.Errorf("size: got %d, want %d", l.Size, size)
	}
	if l.Align != align {
		t.Errorf("align: got %d, want %d", l.Align, align)
	}
	for _, w := range members {
		m, ok := find(l, w.path)
		if !ok {
			t.Errorf("member %s missing", w.path)
			continue
		}
		if m.Offset != w.offset {
			t.Errorf("%s offset: got %d, want %d", w.path, m.Offset, w.offset)
		}
		if m.Size != w.size {
			t.Errorf("%s size: got %d, want %d", w.path, m.Size, w.size)
		}
		if m.BitOffset != w.bit {
			t.Errorf("%s bit offset: got %d, want %d", w.path, m.BitOffset, w.bit)
		}
	}
}

func mustLayout(t *testing.T, c *Calculator, typ ctype.Type) *Layout {
	t.Helper()
	l, err := c.Layout(typ)
	if err != nil {
		t.Fatalf("layout %s: %v", typ, err)
	}
	return l
}

func TestFixtures(t *testing.T) {
	c := New(abi.X86_64SysV)

	tests := []struct {
		typ     ctype.Type
		name    string
		size    int64
		align   int64
		members []want
	}{
		{fixtures.PackedP(), "pack1", 6, 1, []want{
			{"a", 0, 1, 0}, {"b", 1, 4, 0}, {"c", 5, 1, 0},
		}},
		{fixtures.Plain(), "natural", 12, 4, []want{
			{"a", 0, 1, 0}, {"b", 4, 4, 0}, {"c", 8, 1, 0},
		}},
		{fixtures.BitFields(), "bitfields", 16, 8, []want{
			{"a", 0, 4, 0}, {"b", 0, 4, 3}, {"c", 0, 4, 8}, {"d", 8, 8, 0},
		}},
		{fixtures.AlignTest(), "aligned", 32, 16, []want{
			{"a", 0, 1, 0}, {"b", 16, 4, 0}, {"c", 20, 1, 0},
		}},
		{fixtures.Flex(), "flexible", 8, 8, []want{
			{"len", 0, 8, 0}, {"data", 8, 0, 0},
		}},
		{fixtures.ArrayTest(), "matrix", 24, 4, []want{
			{"matrix", 0, 24, 0},
		}},
		{fixtures.PackedAttr(), "packed_attr", 6, 1, []want{
			{"a", 0, 1, 0}, {"b", 1, 4, 0}, {"c", 5, 1, 0},
		}},
		{fixtures.U(), "union", 8, 8, []want{
			{"s", 0, 8, 0}, {"s.a", 0, 1, 0}, {"s.b", 4, 4, 0}, {"d", 0, 8, 0},
		}},
		{fixtures.WithAnon(), "anonymous", 24, 8, []want{
			{"anon", 0, 8, 0}, {"anon.a", 0, 4, 0}, {"anon.b", 4, 1, 0},
			{"#1", 8, 8, 0}, {"#1.u1", 8, 4, 0}, {"#1.u2", 8, 8, 0},
			{"tail", 16, 1, 0},
		}},
		{fixtures.InlineDecl(), "inline", 8, 4, []want{
			{"emb", 0, 8, 0}, {"emb.e", 0, 4, 0}, {"emb.f", 4, 1, 0},
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			check(t, mustLayout(t, c, tc.typ), tc.size, tc.align, tc.members)
		})
	}
}

func TestMemberFlags(t *testing.T) {
	c := New(abi.X86_64SysV)

	l := mustLayout(t, c, fixtures.WithAnon())
	anon, _ := find(l, "#1")
	if !anon.Anonymous || anon.Depth != 0 {
		t.Errorf("#1: anonymous=%v depth=%d", anon.Anonymous, anon.Depth)
	}
	u2, _ := find(l, "#1.u2")
	if u2.Depth != 1 || u2.Name != "u2" {
		t.Errorf("#1.u2: depth=%d name=%q", u2.Depth, u2.Name)
	}

	l = mustLayout(t, c, fixtures.Flex())
	if data, _ := find(l, "data"); !data.Flexible {
		t.Error("data not marked flexible")
	}

	l = mustLayout(t, c, fixtures.BitFields())
	if len(l.Members) != 4 {
		t.Errorf("bitfield members: got %d, want 4 (unnamed reset not recorded)", len(l.Members))
	}
	if b, _ := find(l, "b"); !b.Bitfield || b.BitWidth != 5 {
		t.Errorf("b: bitfield=%v width=%d", b.Bitfield, b.BitWidth)
	}
}

func TestRoots(t *testing.T) {
	c := New(abi.X86_64SysV)

	tests := []struct {
		typ   ctype.Type
		name  string
		size  int64
		align int64
	}{
		{ctype.Int, "int", 4, 4},
		{ctype.VoidPtr, "pointer", 8, 8},
		{ctype.LongDouble, "long_double", 16, 16},
		{ctype.ArrayOf(ctype.Double, 3), "array", 24, 8},
		{ctype.ArrayOf(fixtures.Plain(), 2, 2), "array_of_struct", 48, 4},
		{ctype.NewStruct("Empty"), "empty_struct", 0, 1},
		{ctype.NewUnion("Empty"), "empty_union", 0, 1},
		{&ctype.Primitive{Name: "v4", Size: 16, Align: 8}, "explicit_align", 16, 8},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := mustLayout(t, c, tc.typ)
			if l.Size != tc.size {
				t.Errorf("size: got %d, want %d", l.Size, tc.size)
			}
			if l.Align != tc.align {
				t.Errorf("align: got %d, want %d", l.Align, tc.align)
			}
		})
	}
}

func TestAttributes(t *testing.T) {
	t.Run("packed_member", func(t *testing.T) {
		s := ctype.NewStruct("S",
			ctype.Field("a", ctype.Char),
			ctype.Field("b", ctype.Int).WithPacked(),
			ctype.Field("c", ctype.Char),
		)
		check(t, mustLayout(t, New(abi.X86_64SysV), s), 6, 1, []want{
			{"b", 1, 4, 0}, {"c", 5, 1, 0},
		})
	})

	t.Run("aligned_wins_over_pack", func(t *testing.T) {
		s := ctype.NewStruct("S",
			ctype.Field("a", ctype.Char),
			ctype.Field("b", ctype.Int).WithAligned(8),
		)
		s.Pack = 1
		check(t, mustLayout(t, New(abi.X86_64SysV), s), 16, 8, []want{
			{"b", 8, 4, 0},
		})
	})

	t.Run("pack_bounds_aligned", func(t *testing.T) {
		p := abi.X86_64SysV
		p.AlignedOverridesPack = false
		s := ctype.NewStruct("S",
			ctype.Field("a", ctype.Char),
			ctype.Field("b", ctype.Int).WithAligned(8),
		)
		s.Pack = 2
		check(t, mustLayout(t, New(p), s), 6, 2, []want{
			{"b", 2, 4, 0},
		})
	})

	t.Run("aligned_never_lowers", func(t *testing.T) {
		s := ctype.NewStruct("S",
			ctype.Field("a", ctype.Char),
			ctype.Field("d", ctype.Double).WithAligned(2),
		)
		check(t, mustLayout(t, New(abi.X86_64SysV), s), 16, 8, []want{
			{"d", 8, 8, 0},
		})
	})

	t.Run("pack_caps_nested_member_only", func(t *testing.T) {
		s := ctype.NewStruct("Outer",
			ctype.Field("a", ctype.Char),
			ctype.Field("p", fixtures.Plain()),
		)
		s.Pack = 1
		check(t, mustLayout(t, New(abi.X86_64SysV), s), 13, 1, []want{
			{"p", 1, 12, 0}, {"p.b", 5, 4, 0}, {"p.c", 9, 1, 0},
		})
	})

	t.Run("pack_keeps_nested_member_aligned", func(t *testing.T) {
		inner := ctype.NewStruct("inner",
			ctype.Field("x", ctype.Int).WithAligned(16),
		)
		s := ctype.NewStruct("Outer",
			ctype.Field("a", ctype.Char),
			ctype.Field("in", inner),
		)
		s.Pack = 1
		check(t, mustLayout(t, New(abi.X86_64SysV), s), 32, 16, []want{
			{"in", 16, 16, 0}, {"in.x", 16, 4, 0},
		})
	})

	t.Run("pack_keeps_nested_struct_aligned", func(t *testing.T) {
		inner := ctype.NewStruct("inner2", ctype.Field("x", ctype.Int))
		inner.Attrs.Aligned = 16
		s := ctype.NewStruct("Outer",
			ctype.Field("a", ctype.Char),
			ctype.Field("in", inner),
			ctype.Field("arr", ctype.ArrayOf(inner, 2)),
		)
		s.Pack = 1
		check(t, mustLayout(t, New(abi.X86_64SysV), s), 64, 16, []want{
			{"in", 16, 16, 0}, {"arr", 32, 32, 0},
		})
	})

	t.Run("pack_bounds_nested_aligned", func(t *testing.T) {
		p := abi.X86_64SysV
		p.AlignedOverridesPack = false
		inner := ctype.NewStruct("inner",
			ctype.Field("x", ctype.Int).WithAligned(16),
		)
		s := ctype.NewStruct("Outer",
			ctype.Field("a", ctype.Char),
			ctype.Field("in", inner),
		)
		s.Pack = 1
		check(t, mustLayout(t, New(p), s), 17, 1, []want{
			{"in", 1, 16, 0}, {"in.x", 1, 4, 0},
		})
	})

	t.Run("struct_aligned_raises", func(t *testing.T) {
		s := fixtures.Plain()
		s.Attrs.Aligned = 32
		check(t, mustLayout(t, New(abi.X86_64SysV), s), 32, 32, nil)
	})
}

func TestBitfieldConventions(t *testing.T) {
	mixed := func() *ctype.Struct {
		return ctype.NewStruct("Mixed",
			ctype.Field("a", ctype.Bits(ctype.Int, 4)),
			ctype.Field("b", ctype.Bits(ctype.UInt, 4)),
		)
	}

	t.Run("reuse", func(t *testing.T) {
		check(t, mustLayout(t, New(abi.X86_64SysV), mixed()), 4, 4, []want{
			{"b", 0, 4, 4},
		})
	})

	t.Run("no_reuse", func(t *testing.T) {
		check(t, mustLayout(t, New(abi.X86_64MSVC), mixed()), 8, 4, []want{
			{"b", 4, 4, 0},
		})
	})

	t.Run("high_to_low", func(t *testing.T) {
		check(t, mustLayout(t, New(abi.PPC64SysV), fixtures.BitFields()), 16, 8, []want{
			{"a", 0, 4, 29}, {"b", 0, 4, 24}, {"c", 0, 4, 0}, {"d", 8, 8, 63},
		})
	})

	t.Run("flushed_by_plain_member", func(t *testing.T) {
		s := ctype.NewStruct("S",
			ctype.Field("a", ctype.Bits(ctype.Int, 3)),
			ctype.Field("c", ctype.Char),
			ctype.Field("b", ctype.Bits(ctype.Int, 3)),
		)
		check(t, mustLayout(t, New(abi.X86_64SysV), s), 12, 4, []want{
			{"a", 0, 4, 0}, {"c", 4, 1, 0}, {"b", 8, 4, 0},
		})
	})

	t.Run("unnamed_consumes_bits", func(t *testing.T) {
		s := ctype.NewStruct("S",
			ctype.Field("a", ctype.Bits(ctype.Int, 3)),
			ctype.Field("", ctype.Bits(ctype.Int, 5)),
			ctype.Field("b", ctype.Bits(ctype.Int, 2)),
		)
		l := mustLayout(t, New(abi.X86_64SysV), s)
		check(t, l, 4, 4, []want{{"b", 0, 4, 8}})
		if len(l.Members) != 2 {
			t.Errorf("members: got %d, want 2", len(l.Members))
		}
	})

	t.Run("union", func(t *testing.T) {
		u := ctype.NewUnion("U",
			ctype.Field("a", ctype.Bits(ctype.Int, 3)),
			ctype.Field("b", ctype.Bits(ctype.Char, 2)),
			ctype.Field("", ctype.Bits(ctype.Int, 0)),
		)
		check(t, mustLayout(t, New(abi.X86_64SysV), u), 4, 4, []want{
			{"a", 0, 4, 0}, {"b", 0, 1, 0},
		})
	})
}

func TestProfiles(t *testing.T) {
	s := ctype.NewStruct("S",
		ctype.Field("c", ctype.Char),
		ctype.Field("d", ctype.Double),
		ctype.Field("p", ctype.VoidPtr),
	)

	tests := []struct {
		profile abi.Profile
		size    int64
		align   int64
		d       int64
		p       int64
	}{
		{abi.X86_64SysV, 24, 8, 8, 16},
		{abi.I386SysV, 16, 4, 4, 12},
		{abi.Wasm32, 24, 8, 8, 16},
	}

	for _, tc := range tests {
		t.Run(tc.profile.Name, func(t *testing.T) {
			check(t, mustLayout(t, New(tc.profile), s), tc.size, tc.align, []want{
				{"d", tc.d, 8, 0}, {"p", tc.p, tc.profile.PointerWidth, 0},
			})
		})
	}
}

func TestErrors(t *testing.T) {
	forward := &ctype.Forward{Name: "struct Missing"}
	cyclic := ctype.NewStruct("Node")
	cyclic.Members = []ctype.Member{
		ctype.Field("value", ctype.Int),
		ctype.Field("next", cyclic),
	}
	badPack := fixtures.Plain()
	badPack.Pack = 3

	tests := []struct {
		typ  ctype.Type
		name string
		kind errors.Kind
		path string
	}{
		{
			ctype.NewStruct("S",
				ctype.Field("data", ctype.FlexibleOf(ctype.Char)),
				ctype.Field("x", ctype.Int),
			),
			"trailing_member", errors.KindTrailingMember, "x",
		},
		{
			ctype.NewUnion("U",
				ctype.Field("a", ctype.Int),
				ctype.Field("data", ctype.FlexibleOf(ctype.Char)),
			),
			"flexible_in_union", errors.KindFlexibleInUnion, "data",
		},
		{
			ctype.NewStruct("S", ctype.Field("c", ctype.Bits(ctype.Char, 9))),
			"too_wide", errors.KindBitfieldTooWide, "c",
		},
		{
			ctype.NewStruct("Outer",
				ctype.Field("a", ctype.Int),
				ctype.Field("inner", ctype.NewStruct("Inner",
					ctype.Field("b", ctype.Bits(ctype.Short, 17)),
				)),
			),
			"nested_path", errors.KindBitfieldTooWide, "inner.b",
		},
		{
			ctype.NewStruct("S", ctype.Field("b", ctype.Int).WithAligned(3)),
			"aligned_not_pow2", errors.KindInvalidAttribute, "b",
		},
		{badPack, "pack_not_pow2", errors.KindInvalidAttribute, ""},
		{
			ctype.NewStruct("S", ctype.Field("f", forward)),
			"forward", errors.KindUnsupported, "f",
		},
		{
			ctype.NewStruct("S", ctype.Field("v", ctype.ArrayOf(ctype.Int, 0))),
			"zero_dim", errors.KindUnsupported, "v",
		},
		{
			ctype.NewStruct("S", ctype.Field("v", ctype.ArrayOf(ctype.Bits(ctype.Int, 3), 2))),
			"array_of_bitfield", errors.KindUnsupported, "v",
		},
		{cyclic, "cycle", errors.KindUnsupported, "next"},
		{ctype.Bits(ctype.Int, 3), "bitfield_root", errors.KindUnsupported, ""},
		{
			ctype.NewStruct("S",
				ctype.Field("a", ctype.Int),
				ctype.Field("b", ctype.ArrayOf(ctype.Char, math.MaxInt64-4)),
			),
			"size_overflow", errors.KindUnsupported, "",
		},
		{
			ctype.NewStruct("S",
				ctype.Field("a", ctype.Char),
				ctype.Field("b", ctype.ArrayOf(ctype.Char, math.MaxInt64-2)),
				ctype.Field("c", ctype.Int),
			),
			"member_offset_overflow", errors.KindUnsupported, "c",
		},
		{
			ctype.NewStruct("S", ctype.Field("p", (*ctype.Primitive)(nil))),
			"nil_primitive", errors.KindUnsupported, "p",
		},
		{
			ctype.NewStruct("S", ctype.Field("s", (*ctype.Struct)(nil))),
			"nil_struct", errors.KindUnsupported, "s",
		},
		{
			ctype.NewStruct("S", ctype.Field("b", &ctype.Bitfield{Width: 3})),
			"bitfield_without_base", errors.KindUnsupported, "b",
		},
		{(*ctype.Struct)(nil), "nil_root", errors.KindUnsupported, ""},
		{forward, "forward_root", errors.KindUnsupported, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := New(abi.X86_64SysV)
			l, err := c.Layout(tc.typ)
			if err == nil {
				t.Fatalf("expected error, got layout %+v", l)
			}
			if l != nil {
				t.Error("partial layout returned with error")
			}
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("error %T is not *errors.Error", err)
			}
			if e.Kind != tc.kind {
				t.Errorf("kind: got %s, want %s", e.Kind, tc.kind)
			}
			if got := e.PathString(); got != tc.path {
				t.Errorf("path: got %q, want %q", got, tc.path)
			}
		})
	}
}

func TestRejectAlignedInPacked(t *testing.T) {
	s := ctype.NewStruct("S",
		ctype.Field("b", ctype.Int).WithPacked().WithAligned(8),
	)

	if _, err := New(abi.X86_64SysV).Layout(s); err != nil {
		t.Fatalf("default profile: %v", err)
	}

	p := abi.X86_64SysV
	p.RejectAlignedInPacked = true
	_, err := New(p).Layout(s)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseResolve, Kind: errors.KindInvalidAttribute}) {
		t.Errorf("got %v, want invalid attribute", err)
	}
}

func TestLayoutCached(t *testing.T) {
	c := New(abi.X86_64SysV)
	s := fixtures.WithAnon()

	first := mustLayout(t, c, s)
	second := mustLayout(t, c, s)
	if first != second {
		t.Error("layout of the same node computed twice")
	}

	other := mustLayout(t, New(abi.X86_64SysV), s)
	if other == first {
		t.Error("calculators share a cache")
	}
}
