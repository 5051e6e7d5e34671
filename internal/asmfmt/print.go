package asmfmt

import (
	"fmt"
	"strconv"
	"strings"
)

// String renders an instruction in 8086-assembler-compatible syntax:
// optional "lock ", optional rep variant, mnemonic, optional b/w size
// suffix, then dest and source separated by ", ".
func (in *Instruction) String() string {
	var b strings.Builder
	if in.Lock {
		b.WriteString("lock ")
	}
	if in.Rep {
		b.WriteString(repKeyword(in.Mnemonic, in.RepZ))
		b.WriteByte(' ')
	}
	b.WriteString(in.Mnemonic.String())
	if in.Size != 0 && IsStringOp(in.Mnemonic) {
		if in.Size == 1 {
			b.WriteByte('b')
		} else {
			b.WriteByte('w')
		}
	}
	if in.Dest != nil {
		b.WriteByte(' ')
		b.WriteString(operandString(in.Dest))
		if in.Source != nil {
			b.WriteString(", ")
			b.WriteString(operandString(in.Source))
		}
	}
	return b.String()
}

func repKeyword(m Mnemonic, z bool) string {
	if !comparesFlags(m) {
		return "rep"
	}
	if z {
		return "repe"
	}
	return "repne"
}

func operandString(op Operand) string {
	switch o := op.(type) {
	case Register:
		return o.Name()
	case Memory:
		return memoryString(o)
	case Immediate:
		return strconv.Itoa(int(o.Value))
	case Label:
		return labelString(o)
	case FarPointer:
		return fmt.Sprintf("0x%04x:0x%04x", o.CS, o.IP)
	default:
		return "???"
	}
}

var formulaText = [8]string{"bx + si", "bx + di", "bp + si", "bp + di", "si", "di", "bp", "bx"}

func memoryString(m Memory) string {
	var b strings.Builder
	if m.Far {
		b.WriteString("far ")
	}
	if m.ExplicitSize {
		if m.Size == 1 {
			b.WriteString("byte ")
		} else {
			b.WriteString("word ")
		}
	}
	if m.Segment != SegNone {
		b.WriteString(m.Segment.String())
		b.WriteByte(':')
	}
	b.WriteByte('[')
	if m.DirectAddress {
		b.WriteString(strconv.Itoa(int(uint16(m.Disp))))
	} else {
		b.WriteString(formulaText[m.Formula])
		b.WriteString(dispString(m.Disp))
	}
	b.WriteByte(']')
	return b.String()
}

// labelString folds a short jump's encoded displacement forward by the
// two bytes of the jump instruction itself, so it reads as an offset
// from the jump's own address ($): $+0 is a self-loop, not $+-2+2.
func labelString(l Label) string {
	n := int32(l.Disp) + 2
	if n < 0 {
		return fmt.Sprintf("$-%d", -n)
	}
	return fmt.Sprintf("$+%d", n)
}

// dispString renders a displacement: zero is omitted, positive is
// " + N", negative is " - N".
func dispString(v int16) string {
	switch {
	case v == 0:
		return ""
	case v > 0:
		return fmt.Sprintf(" + %d", v)
	default:
		return fmt.Sprintf(" - %d", -int32(v))
	}
}
