package trace

import (
	"strings"
	"testing"

	"github.com/MooOfDoom/sim8086/internal/cpu"
)

func TestFlagLettersOrder(t *testing.T) {
	all := cpu.FlagCF | cpu.FlagPF | cpu.FlagAF | cpu.FlagZF | cpu.FlagSF | cpu.FlagOF
	if got, want := FlagLetters(all), "CPAZSO"; got != want {
		t.Errorf("FlagLetters(all) = %q, want %q", got, want)
	}
	if got, want := FlagLetters(0), ""; got != want {
		t.Errorf("FlagLetters(0) = %q, want empty", got)
	}
	if got, want := FlagLetters(cpu.FlagZF|cpu.FlagCF), "CZ"; got != want {
		t.Errorf("FlagLetters(ZF|CF) = %q, want %q", got, want)
	}
}

func TestFlagsChanged(t *testing.T) {
	tr := Trace{OldFlags: 0, NewFlags: cpu.FlagZF}
	if !tr.FlagsChanged() {
		t.Error("expected FlagsChanged true")
	}
	tr2 := Trace{OldFlags: cpu.FlagZF, NewFlags: cpu.FlagZF}
	if tr2.FlagsChanged() {
		t.Error("expected FlagsChanged false")
	}
}

func TestPlainStringNoFlagsChange(t *testing.T) {
	tr := Trace{
		Writes:   []RegWrite{{Name: "ax", Old: 0, New: 1}},
		OldIP:    0,
		NewIP:    3,
		OldFlags: 0,
		NewFlags: 0,
	}
	got := tr.PlainString()
	want := "ax:0x0->0x1 ip:0x0->0x3"
	if got != want {
		t.Errorf("PlainString() = %q, want %q", got, want)
	}
	if strings.Contains(got, "flags") {
		t.Error("unchanged flags should not appear")
	}
}

func TestPlainStringWithFlagsChange(t *testing.T) {
	tr := Trace{
		OldIP:    0,
		NewIP:    2,
		OldFlags: 0,
		NewFlags: cpu.FlagZF | cpu.FlagPF,
	}
	got := tr.PlainString()
	want := "ip:0x0->0x2 flags:->PZ"
	if got != want {
		t.Errorf("PlainString() = %q, want %q", got, want)
	}
}

func TestColorStringHighlightsChanges(t *testing.T) {
	tr := Trace{
		Writes: []RegWrite{{Name: "bx", Old: 0, New: 2}},
		OldIP:  0,
		NewIP:  2,
	}
	got := tr.ColorString()
	if !strings.Contains(got, "bx:0x0->") {
		t.Errorf("ColorString() = %q, missing register write", got)
	}
	if !strings.Contains(got, "0x2") {
		t.Errorf("ColorString() = %q, missing new value", got)
	}
}

func TestStringDispatchesOnColor(t *testing.T) {
	tr := Trace{OldIP: 0, NewIP: 1}
	plain := tr.String(false)
	color := tr.String(true)
	if plain != tr.PlainString() {
		t.Error("String(false) should match PlainString()")
	}
	if color != tr.ColorString() {
		t.Error("String(true) should match ColorString()")
	}
}
