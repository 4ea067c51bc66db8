package abi

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/wippyai/clayout/errors"
)

type profileDoc struct {
	Alignment             map[string]int64 `toml:"alignment"`
	Name                  string           `toml:"name"`
	Base                  string           `toml:"base"`
	PointerWidth          int64            `toml:"pointer_width"`
	BitfieldFill          FillDirection    `toml:"bitfield_fill"`
	BitfieldUnitReuse     bool             `toml:"bitfield_unit_reuse"`
	AlignedOverridesPack  bool             `toml:"aligned_overrides_pack"`
	RejectAlignedInPacked bool             `toml:"reject_aligned_in_packed"`
}

// Resolve returns the preset called nameOrPath, or loads it as a profile file.
func Resolve(nameOrPath string) (Profile, error) {
	if nameOrPath == "" {
		return Default(), nil
	}
	if p, ok := Preset(nameOrPath); ok {
		return p, nil
	}
	return LoadFile(nameOrPath)
}

// LoadFile reads a TOML profile file.
func LoadFile(path string) (Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return Profile{}, errors.Load("open profile "+path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a TOML profile. Keys the document defines override the base
// preset (x86_64-sysv unless `base` names another); the result is validated.
func Decode(r io.Reader) (Profile, error) {
	var doc profileDoc
	md, err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return Profile{}, errors.ParseFailed("toml profile", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Profile{}, errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Detail("unknown profile key %q", undecoded[0].String()).
			Build()
	}

	p := Default()
	if md.IsDefined("base") {
		base, ok := Preset(doc.Base)
		if !ok {
			return Profile{}, errors.NotFound(errors.PhaseConfig, "base profile", doc.Base)
		}
		p = base
	}
	if md.IsDefined("name") {
		p.Name = doc.Name
	}
	if md.IsDefined("pointer_width") {
		p.PointerWidth = doc.PointerWidth
	}
	if md.IsDefined("bitfield_unit_reuse") {
		p.BitfieldUnitReuse = doc.BitfieldUnitReuse
	}
	if md.IsDefined("bitfield_fill") {
		p.BitfieldFill = doc.BitfieldFill
	}
	if md.IsDefined("aligned_overrides_pack") {
		p.AlignedOverridesPack = doc.AlignedOverridesPack
	}
	if md.IsDefined("reject_aligned_in_packed") {
		p.RejectAlignedInPacked = doc.RejectAlignedInPacked
	}
	for key, align := range doc.Alignment {
		size, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return Profile{}, errors.ParseFailed(fmt.Sprintf("alignment class %q", key), err)
		}
		i, ok := ClassIndex(size)
		if !ok {
			return Profile{}, errors.InvalidInput(errors.PhaseConfig,
				fmt.Sprintf("alignment class %d is not one of %v", size, ClassSizes))
		}
		p.Alignments[i] = align
	}

	keys := make([]string, 0, len(md.Keys()))
	for _, k := range md.Keys() {
		keys = append(keys, k.String())
	}
	Logger().Debug("profile decoded",
		zap.String("name", p.Name),
		zap.Strings("keys", keys))

	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}
