// Package trace records what one executed instruction did to simulator
// state, separately from how that record is rendered to text. Grounded
// on the teacher's own split between trace data and trace rendering
// (github.com/lunixbochs/usercorn's go/models/trace package, and the
// register-diff renderer in go/models/status.go).
package trace

import (
	"fmt"
	"strings"

	"github.com/MooOfDoom/sim8086/internal/cpu"
)

// RegWrite is one register write observed during execution, always
// keyed by its wide (16-bit) register name: writing AL still traces
// as "ax:", per the source's aliasing convention.
type RegWrite struct {
	Name     string
	Old, New uint16
}

// Trace is everything one Step() call reports: any register writes (in
// the order they happened), the IP transition, and the FLAGS
// transition.
type Trace struct {
	Writes             []RegWrite
	OldIP, NewIP       uint16
	OldFlags, NewFlags uint16
}

// FlagsChanged reports whether FLAGS differs across the step.
func (t Trace) FlagsChanged() bool { return t.OldFlags != t.NewFlags }

// flagLetters renders the ordered C P A Z S O subset of f that is set.
func flagLetters(f uint16) string {
	var b strings.Builder
	for _, bit := range []struct {
		mask uint16
		ch   byte
	}{
		{cpu.FlagCF, 'C'}, {cpu.FlagPF, 'P'}, {cpu.FlagAF, 'A'},
		{cpu.FlagZF, 'Z'}, {cpu.FlagSF, 'S'}, {cpu.FlagOF, 'O'},
	} {
		if f&bit.mask != 0 {
			b.WriteByte(bit.ch)
		}
	}
	return b.String()
}

// FlagLetters is the exported form used by the CLI's final-register
// summary, which needs only the current letters, not a transition.
func FlagLetters(f uint16) string { return flagLetters(f) }

// PlainString renders the trace the way it appears appended to a
// disassembled instruction line: register writes, then the IP
// transition, then the flags transition if FLAGS changed.
func (t Trace) PlainString() string {
	var parts []string
	for _, w := range t.Writes {
		parts = append(parts, fmt.Sprintf("%s:0x%x->0x%x", w.Name, w.Old, w.New))
	}
	parts = append(parts, fmt.Sprintf("ip:0x%x->0x%x", t.OldIP, t.NewIP))
	if t.FlagsChanged() {
		parts = append(parts, fmt.Sprintf("flags:%s->%s", flagLetters(t.OldFlags), flagLetters(t.NewFlags)))
	}
	return strings.Join(parts, " ")
}
