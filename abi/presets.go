package abi

import "sort"

var (
	// X86_64SysV is the System V AMD64 psABI used by Linux and the BSDs.
	X86_64SysV = Profile{
		Name:                 "x86_64-sysv",
		PointerWidth:         8,
		Alignments:           [NumClasses]int64{1, 2, 4, 8, 16},
		BitfieldUnitReuse:    true,
		BitfieldFill:         FillLowToHigh,
		AlignedOverridesPack: true,
	}

	// I386SysV is the i386 psABI, where 8-byte scalars align to 4.
	I386SysV = Profile{
		Name:                 "i386-sysv",
		PointerWidth:         4,
		Alignments:           [NumClasses]int64{1, 2, 4, 4, 16},
		BitfieldUnitReuse:    true,
		BitfieldFill:         FillLowToHigh,
		AlignedOverridesPack: true,
	}

	AArch64AAPCS = Profile{
		Name:                 "aarch64-aapcs",
		PointerWidth:         8,
		Alignments:           [NumClasses]int64{1, 2, 4, 8, 16},
		BitfieldUnitReuse:    true,
		BitfieldFill:         FillLowToHigh,
		AlignedOverridesPack: true,
	}

	// X86_64MSVC never lets bitfields of different base types share a unit.
	X86_64MSVC = Profile{
		Name:                 "x86_64-msvc",
		PointerWidth:         8,
		Alignments:           [NumClasses]int64{1, 2, 4, 8, 16},
		BitfieldUnitReuse:    false,
		BitfieldFill:         FillLowToHigh,
		AlignedOverridesPack: true,
	}

	Wasm32 = Profile{
		Name:                 "wasm32",
		PointerWidth:         4,
		Alignments:           [NumClasses]int64{1, 2, 4, 8, 16},
		BitfieldUnitReuse:    true,
		BitfieldFill:         FillLowToHigh,
		AlignedOverridesPack: true,
	}

	// PPC64SysV is big-endian; bitfields are numbered from the high bit.
	PPC64SysV = Profile{
		Name:                 "ppc64-sysv",
		PointerWidth:         8,
		Alignments:           [NumClasses]int64{1, 2, 4, 8, 16},
		BitfieldUnitReuse:    true,
		BitfieldFill:         FillHighToLow,
		AlignedOverridesPack: true,
	}
)

var presets = map[string]Profile{}

func init() {
	for _, p := range []Profile{X86_64SysV, I386SysV, AArch64AAPCS, X86_64MSVC, Wasm32, PPC64SysV} {
		presets[p.Name] = p
	}
}

// Default returns the profile used when none is specified.
func Default() Profile {
	return X86_64SysV
}

// Preset returns the built-in profile called name.
func Preset(name string) (Profile, bool) {
	p, ok := presets[name]
	return p, ok
}

// Presets returns the names of all built-in profiles, sorted.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
