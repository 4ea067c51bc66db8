package ctype

// Predefined primitives. Long and ULong follow LP64; front ends targeting
// ILP32 or LLP64 build their own with the right Size.
var (
	Bool       = &Primitive{Name: "_Bool", Size: 1}
	Char       = &Primitive{Name: "char", Size: 1}
	SChar      = &Primitive{Name: "signed char", Size: 1}
	UChar      = &Primitive{Name: "unsigned char", Size: 1}
	Short      = &Primitive{Name: "short", Size: 2}
	UShort     = &Primitive{Name: "unsigned short", Size: 2}
	Int        = &Primitive{Name: "int", Size: 4}
	UInt       = &Primitive{Name: "unsigned int", Size: 4}
	Long       = &Primitive{Name: "long", Size: 8}
	ULong      = &Primitive{Name: "unsigned long", Size: 8}
	LongLong   = &Primitive{Name: "long long", Size: 8}
	ULongLong  = &Primitive{Name: "unsigned long long", Size: 8}
	Float      = &Primitive{Name: "float", Size: 4}
	Double     = &Primitive{Name: "double", Size: 8}
	LongDouble = &Primitive{Name: "long double", Size: 16}
	SizeT      = &Primitive{Name: "size_t", Word: true}
	PtrDiffT   = &Primitive{Name: "ptrdiff_t", Word: true}
	IntPtrT    = &Primitive{Name: "intptr_t", Word: true}
	VoidPtr    = &Primitive{Name: "void *", Word: true}
)

var builtins = map[string]*Primitive{}

func init() {
	for _, p := range []*Primitive{
		Bool, Char, SChar, UChar, Short, UShort, Int, UInt, Long, ULong,
		LongLong, ULongLong, Float, Double, LongDouble,
		SizeT, PtrDiffT, IntPtrT, VoidPtr,
	} {
		builtins[p.Name] = p
	}
	aliases := map[string]*Primitive{
		"bool":                   Bool,
		"signed":                 Int,
		"unsigned":               UInt,
		"signed int":             Int,
		"short int":              Short,
		"unsigned short int":     UShort,
		"long int":               Long,
		"unsigned long int":      ULong,
		"long long int":          LongLong,
		"unsigned long long int": ULongLong,
		"int8_t":                 SChar,
		"uint8_t":                UChar,
		"int16_t":                Short,
		"uint16_t":               UShort,
		"int32_t":                Int,
		"uint32_t":               UInt,
		"int64_t":                LongLong,
		"uint64_t":               ULongLong,
		"uintptr_t":              IntPtrT,
		"ssize_t":                PtrDiffT,
		"void*":                  VoidPtr,
	}
	for name, p := range aliases {
		builtins[name] = p
	}
}

// Builtin returns the predefined primitive spelled name.
func Builtin(name string) (*Primitive, bool) {
	p, ok := builtins[name]
	return p, ok
}

// Pointer returns a word-sized primitive named name, e.g. "struct node *".
func Pointer(name string) *Primitive {
	return &Primitive{Name: name, Word: true}
}
