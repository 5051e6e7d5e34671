package sim

import (
	"testing"

	"github.com/MooOfDoom/sim8086/internal/asmfmt"
	"github.com/MooOfDoom/sim8086/internal/cpu"
	"github.com/MooOfDoom/sim8086/internal/trace"
)

func run(t *testing.T, data []byte, stepCap int) (*State, int, error) {
	t.Helper()
	state := NewState()
	if err := state.LoadProgram(data, 0); err != nil {
		t.Fatal(err)
	}
	steps, err := NewEngine(state, stepCap).Run(nil)
	return state, steps, err
}

func TestMovImmediate(t *testing.T) {
	state, _, err := run(t, []byte{0xB8, 0x01, 0x00}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if state.Regs[RegAX] != 1 {
		t.Errorf("AX = %#x, want 1", state.Regs[RegAX])
	}
	if state.Regs[RegIP] != 3 {
		t.Errorf("IP = %d, want 3", state.Regs[RegIP])
	}
}

func TestAddTwoMoves(t *testing.T) {
	data := []byte{0xB8, 0x03, 0x00, 0xBB, 0x02, 0x00, 0x01, 0xD8}
	state, _, err := run(t, data, 10)
	if err != nil {
		t.Fatal(err)
	}
	if state.Regs[RegAX] != 5 || state.Regs[RegBX] != 2 {
		t.Fatalf("AX,BX = %d,%d want 5,2", state.Regs[RegAX], state.Regs[RegBX])
	}
	if state.Regs[RegIP] != 8 {
		t.Errorf("IP = %d, want 8", state.Regs[RegIP])
	}
	if state.Regs[RegFLAGS] != cpu.FlagPF {
		t.Errorf("FLAGS = %#x, want %#x (5 = 0b101 has even bit-parity, so PF is set)", state.Regs[RegFLAGS], cpu.FlagPF)
	}
}

func TestSubImmLoop(t *testing.T) {
	// mov cx,3; sub cx,1; jnz -5
	data := []byte{0xB9, 0x03, 0x00, 0x83, 0xE9, 0x01, 0x75, 0xFB}
	state, _, err := run(t, data, 100)
	if err != nil {
		t.Fatal(err)
	}
	if state.Regs[RegCX] != 0 {
		t.Errorf("CX = %d, want 0", state.Regs[RegCX])
	}
	if state.Regs[RegIP] != 8 {
		t.Errorf("IP = %d, want 8 (past the jnz)", state.Regs[RegIP])
	}
	if !state.Flag(cpu.FlagZF) {
		t.Error("ZF not set at loop exit")
	}
}

func TestCmpAccZero(t *testing.T) {
	state, _, err := run(t, []byte{0x3D, 0x00, 0x00}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if state.Regs[RegAX] != 0 {
		t.Errorf("AX = %d, want unchanged 0", state.Regs[RegAX])
	}
	if !state.Flag(cpu.FlagZF) || !state.Flag(cpu.FlagPF) {
		t.Error("expected ZF and PF set")
	}
	if state.Flag(cpu.FlagCF) || state.Flag(cpu.FlagOF) || state.Flag(cpu.FlagSF) || state.Flag(cpu.FlagAF) {
		t.Error("expected only ZF and PF set")
	}
}

func TestSelfLoopHitsStepCap(t *testing.T) {
	state, steps, err := run(t, []byte{0xEB, 0xFE}, 500)
	if steps != 500 {
		t.Errorf("steps = %d, want 500", steps)
	}
	if _, ok := err.(*StepCapError); !ok {
		t.Fatalf("err = %v (%T), want *StepCapError", err, err)
	}
	if state.Regs[RegIP] != 0 {
		t.Errorf("IP = %d, want 0 (jmp $+0 never advances)", state.Regs[RegIP])
	}
}

func TestCmpMatchesSubFlags(t *testing.T) {
	sub, _, err := run(t, []byte{0xB8, 0x0A, 0x00, 0x2D, 0x05, 0x00}, 10)
	if err != nil {
		t.Fatal(err)
	}
	cmp, _, err := run(t, []byte{0xB8, 0x0A, 0x00, 0x3D, 0x05, 0x00}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if sub.Regs[RegFLAGS] != cmp.Regs[RegFLAGS] {
		t.Errorf("SUB flags %#x != CMP flags %#x", sub.Regs[RegFLAGS], cmp.Regs[RegFLAGS])
	}
	if sub.Regs[RegAX] != 5 {
		t.Errorf("SUB left AX = %d, want 5", sub.Regs[RegAX])
	}
	if cmp.Regs[RegAX] != 10 {
		t.Errorf("CMP changed AX to %d, want unchanged 10", cmp.Regs[RegAX])
	}
}

func TestRegisterAliasing(t *testing.T) {
	s := NewState()
	var tr trace.Trace
	wide := asmfmt.Register{Size: 2, Index: RegAX}
	s.WriteRegister(wide, 0x1234, &tr)
	al := asmfmt.Register{Size: 1, Index: 0}
	ah := asmfmt.Register{Size: 1, Index: 4}
	if v := s.ReadRegister(ah); v != 0x12 {
		t.Errorf("AH = %#x, want 0x12", v)
	}
	if v := s.ReadRegister(al); v != 0x34 {
		t.Errorf("AL = %#x, want 0x34", v)
	}
	s.WriteRegister(ah, 0xAB, &tr)
	s.WriteRegister(al, 0xCD, &tr)
	if v := s.ReadRegister(wide); v != 0xABCD {
		t.Errorf("AX = %#x, want 0xabcd", v)
	}
	if len(tr.Writes) != 3 {
		t.Errorf("Writes = %v, want 3 entries", tr.Writes)
	}
}
