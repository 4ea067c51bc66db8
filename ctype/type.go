package ctype

import (
	"strconv"
	"strings"
)

// Type is a node of the type tree. The set of implementations is closed.
type Type interface {
	Kind() Kind
	String() string
	isType()
}

// Attrs are the GCC-style attributes attached to a struct, union or member.
type Attrs struct {
	// Packed caps the alignment of the attached members to 1.
	Packed bool
	// Aligned raises the alignment to at least this many bytes. 0 means unset.
	Aligned int64
}

// Primitive is a scalar leaf.
//
// Align 0 means the natural alignment for Size comes from the ABI profile.
// Word primitives take both size and alignment from the profile's pointer width.
type Primitive struct {
	Name  string
	Size  int64
	Align int64
	Word  bool
}

// Member is one declared member of a struct or union.
// An empty Name on a struct or union type declares an anonymous member.
type Member struct {
	Type  Type
	Name  string
	Attrs Attrs
}

// Struct is a sequentially laid out aggregate.
type Struct struct {
	Name    string
	Members []Member
	Attrs   Attrs
	// Pack is the #pragma pack value in effect at the declaration, 0 if none.
	Pack int64
}

// Union is an overlapping aggregate.
type Union struct {
	Name    string
	Members []Member
	Attrs   Attrs
}

// Array is a fixed-size array; Dims are outermost first.
type Array struct {
	Elem Type
	Dims []int64
}

// FlexibleArray is a C99 flexible array member, e.g. `char data[]`.
type FlexibleArray struct {
	Elem Type
}

// Bitfield is an integer member of Width bits. Width 0 is a reset marker.
type Bitfield struct {
	Base  *Primitive
	Width int64
}

// Forward is a struct or union that was declared but never completed.
type Forward struct {
	Name string
}

func (*Primitive) Kind() Kind     { return KindPrimitive }
func (*Struct) Kind() Kind        { return KindStruct }
func (*Union) Kind() Kind         { return KindUnion }
func (*Array) Kind() Kind         { return KindArray }
func (*FlexibleArray) Kind() Kind { return KindFlexibleArray }
func (*Bitfield) Kind() Kind      { return KindBitfield }
func (*Forward) Kind() Kind       { return KindForward }

func (*Primitive) isType()     {}
func (*Struct) isType()        {}
func (*Union) isType()         {}
func (*Array) isType()         {}
func (*FlexibleArray) isType() {}
func (*Bitfield) isType()      {}
func (*Forward) isType()       {}

func (p *Primitive) String() string { return p.Name }

func (s *Struct) String() string { return tagged("struct", s.Name) }

func (u *Union) String() string { return tagged("union", u.Name) }

func (a *Array) String() string {
	var b strings.Builder
	b.WriteString(typeString(a.Elem))
	for _, d := range a.Dims {
		b.WriteByte('[')
		b.WriteString(strconv.FormatInt(d, 10))
		b.WriteByte(']')
	}
	return b.String()
}

func (f *FlexibleArray) String() string { return typeString(f.Elem) + "[]" }

func (b *Bitfield) String() string {
	base := "<nil>"
	if b.Base != nil {
		base = b.Base.Name
	}
	return base + ":" + strconv.FormatInt(b.Width, 10)
}

func (f *Forward) String() string { return f.Name + " (incomplete)" }

func tagged(kw, name string) string {
	if name == "" {
		return kw + " <anonymous>"
	}
	return kw + " " + name
}

func typeString(t Type) string {
	if IsNil(t) {
		return "<nil>"
	}
	return t.String()
}

// IsNil reports whether t is nil or a nil pointer of one of the node types.
func IsNil(t Type) bool {
	switch t := t.(type) {
	case nil:
		return true
	case *Primitive:
		return t == nil
	case *Struct:
		return t == nil
	case *Union:
		return t == nil
	case *Array:
		return t == nil
	case *FlexibleArray:
		return t == nil
	case *Bitfield:
		return t == nil
	case *Forward:
		return t == nil
	}
	return false
}

// Anonymous reports whether m is an unnamed struct or union member whose
// fields are promoted into the enclosing scope.
func (m Member) Anonymous() bool {
	if m.Name != "" || m.Type == nil {
		return false
	}
	return m.Type.Kind().IsAggregate()
}

// Field declares a named member.
func Field(name string, t Type) Member {
	return Member{Name: name, Type: t}
}

// Anon declares an anonymous struct or union member.
func Anon(t Type) Member {
	return Member{Type: t}
}

// WithAligned returns m with aligned(n) attached.
func (m Member) WithAligned(n int64) Member {
	m.Attrs.Aligned = n
	return m
}

// WithPacked returns m with the packed attribute attached.
func (m Member) WithPacked() Member {
	m.Attrs.Packed = true
	return m
}

// NewStruct returns a struct with the given members and no attributes.
func NewStruct(name string, members ...Member) *Struct {
	return &Struct{Name: name, Members: members}
}

// NewUnion returns a union with the given members and no attributes.
func NewUnion(name string, members ...Member) *Union {
	return &Union{Name: name, Members: members}
}

// ArrayOf returns an array of elem with the given dimensions.
func ArrayOf(elem Type, dims ...int64) *Array {
	return &Array{Elem: elem, Dims: dims}
}

// FlexibleOf returns a flexible array of elem.
func FlexibleOf(elem Type) *FlexibleArray {
	return &FlexibleArray{Elem: elem}
}

// Bits returns a bitfield of base with the given width.
func Bits(base *Primitive, width int64) *Bitfield {
	return &Bitfield{Base: base, Width: width}
}
