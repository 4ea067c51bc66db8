// Package abi describes the target ABI a layout is computed for.
//
// A Profile carries the pointer width, the natural alignment of each
// primitive size class, and the bitfield allocation conventions. Profiles are
// plain comparable values so they can key caches directly.
//
// # Contents
//
//   - profile.go: Profile, FillDirection, validation
//   - presets.go: built-in profiles for common targets
//   - load.go: TOML profile files layered over a preset
//   - align.go: alignment and overflow-checked arithmetic helpers
//
// # Profile files
//
//	name = "embedded-arm"
//	base = "aarch64-aapcs"
//	pointer_width = 4
//	bitfield_fill = "low-to-high"
//
//	[alignment]
//	"8" = 4
//
// Keys left out of a file keep the value of the base preset.
package abi
