package trace

import (
	"fmt"
	"strings"

	"github.com/mgutz/ansi"
)

// colored register-write rendering, grounded on the teacher's
// models/status.go Change type: the old value prints plain and the
// whole new value is highlighted.
var (
	colChanged = ansi.ColorCode("red+b:default")
	colReset   = ansi.Reset
)

// ColorString renders the same content as PlainString but with changed
// register values highlighted, for a terminal that supports ANSI
// color. Used by cmd/sim8086 when stdout is a tty.
func (t Trace) ColorString() string {
	var parts []string
	for _, w := range t.Writes {
		parts = append(parts, fmt.Sprintf("%s:0x%x->%s0x%x%s", w.Name, w.Old, colChanged, w.New, colReset))
	}
	parts = append(parts, fmt.Sprintf("ip:0x%x->%s0x%x%s", t.OldIP, colChanged, t.NewIP, colReset))
	if t.FlagsChanged() {
		parts = append(parts, fmt.Sprintf("flags:%s->%s%s%s", flagLetters(t.OldFlags), colChanged, flagLetters(t.NewFlags), colReset))
	}
	return strings.Join(parts, " ")
}

// String renders with or without color depending on useColor, so
// callers don't need a type switch at every call site.
func (t Trace) String(useColor bool) string {
	if useColor {
		return t.ColorString()
	}
	return t.PlainString()
}
