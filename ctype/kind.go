package ctype

type Kind uint8

const (
	KindPrimitive Kind = iota
	KindStruct
	KindUnion
	KindArray
	KindFlexibleArray
	KindBitfield
	KindForward
)

var kindNames = [...]string{
	KindPrimitive:     "primitive",
	KindStruct:        "struct",
	KindUnion:         "union",
	KindArray:         "array",
	KindFlexibleArray: "flexible",
	KindBitfield:      "bitfield",
	KindForward:       "forward",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsAggregate reports whether k is a struct or union.
func (k Kind) IsAggregate() bool {
	return k == KindStruct || k == KindUnion
}

func parseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}
