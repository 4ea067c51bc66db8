package abi

import (
	stderrors "errors"
	"strings"
	"testing"

	"go.uber.org/multierr"

	"github.com/wippyai/clayout/errors"
)

func TestPresetsValidate(t *testing.T) {
	for _, name := range Presets() {
		t.Run(name, func(t *testing.T) {
			p, ok := Preset(name)
			if !ok {
				t.Fatalf("Preset(%q) not found", name)
			}
			if p.Name != name {
				t.Errorf("Name = %q, want %q", p.Name, name)
			}
			if err := p.Validate(); err != nil {
				t.Errorf("Validate() = %v", err)
			}
		})
	}
}

func TestNaturalAlign(t *testing.T) {
	tests := []struct {
		profile Profile
		size    int64
		want    int64
		wantOK  bool
	}{
		{X86_64SysV, 1, 1, true},
		{X86_64SysV, 8, 8, true},
		{X86_64SysV, 16, 16, true},
		{I386SysV, 8, 4, true},
		{X86_64SysV, 12, 0, false},
	}

	for _, tt := range tests {
		got, ok := tt.profile.NaturalAlign(tt.size)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("%s NaturalAlign(%d) = %d, %v; want %d, %v",
				tt.profile.Name, tt.size, got, ok, tt.want, tt.wantOK)
		}
	}

	if got := I386SysV.WordAlign(); got != 4 {
		t.Errorf("i386 WordAlign() = %d, want 4", got)
	}
	if got := X86_64SysV.WordAlign(); got != 8 {
		t.Errorf("x86_64 WordAlign() = %d, want 8", got)
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	p := X86_64SysV
	p.Name = "broken"
	p.PointerWidth = 3
	p.Alignments[1] = 3
	p.Alignments[3] = 0

	err := p.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseConfig, Kind: errors.KindInvalidProfile}) {
		t.Errorf("error %v is not invalid_profile", err)
	}

	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("error %T is not *errors.Error", err)
	}
	if n := len(multierr.Errors(e.Cause)); n != 3 {
		t.Errorf("got %d problems, want 3: %v", n, e.Cause)
	}
}

func TestProfilesAreComparable(t *testing.T) {
	a := X86_64SysV
	b := X86_64SysV
	if a != b {
		t.Error("identical profiles compare unequal")
	}
	b.BitfieldUnitReuse = false
	if a == b {
		t.Error("different profiles compare equal")
	}
	if X86_64SysV == AArch64AAPCS {
		t.Error("profiles with different names compare equal")
	}
}

func TestFillDirectionText(t *testing.T) {
	for _, d := range []FillDirection{FillLowToHigh, FillHighToLow} {
		text, err := d.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v) = %v", d, err)
		}
		var got FillDirection
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q) = %v", text, err)
		}
		if got != d {
			t.Errorf("round trip %v -> %q -> %v", d, text, got)
		}
	}

	var d FillDirection
	if err := d.UnmarshalText([]byte("sideways")); err == nil {
		t.Error("UnmarshalText(sideways) should fail")
	}
}

func TestAlignmentTable(t *testing.T) {
	table := I386SysV.AlignmentTable()
	if table["8"] != 4 || table["1"] != 1 || len(table) != NumClasses {
		t.Errorf("AlignmentTable() = %v", table)
	}
}

func TestPresetsSorted(t *testing.T) {
	names := Presets()
	if !strings.HasPrefix(strings.Join(names, ","), "aarch64-aapcs,i386-sysv") {
		t.Errorf("Presets() = %v", names)
	}
	if Default() != X86_64SysV {
		t.Error("Default() is not x86_64-sysv")
	}
}
