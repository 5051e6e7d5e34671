package sim

import (
	"github.com/MooOfDoom/sim8086/internal/asmfmt"
	"github.com/MooOfDoom/sim8086/internal/cpu"
	"github.com/MooOfDoom/sim8086/internal/decode"
	"github.com/MooOfDoom/sim8086/internal/trace"
)

// Engine is the fetch-decode-execute loop bound to one State. StepCap
// bounds runs against programs that never leave the program region
// (spec.md scenario 5's `jmp $+0`); it is a run-level guard, not a
// decode or execution failure kind.
type Engine struct {
	State   *State
	StepCap int
}

// NewEngine returns an Engine over s with the given step cap.
func NewEngine(s *State, stepCap int) *Engine {
	return &Engine{State: s, StepCap: stepCap}
}

// Step fetches and executes exactly one instruction at the current
// physical IP, returning the decoded instruction and the trace it
// produced.
func (e *Engine) Step() (*asmfmt.Instruction, trace.Trace, error) {
	addr := e.State.PhysicalIP()
	dec := decode.New(e.State.Mem[addr:])
	inst, err := dec.Next()
	if err != nil {
		return nil, trace.Trace{}, err
	}
	inst.Address = uint32(addr)

	tr := trace.Trace{OldIP: e.State.Regs[RegIP], OldFlags: e.State.Regs[RegFLAGS]}
	e.State.Regs[RegIP] += uint16(inst.Length)

	if err := e.execute(inst, &tr); err != nil {
		return inst, tr, err
	}
	tr.NewIP = e.State.Regs[RegIP]
	tr.NewFlags = e.State.Regs[RegFLAGS]
	return inst, tr, nil
}

// Run drives Step in a loop while the physical IP stays within the
// loaded program, invoking onStep (if non-nil) after each successful
// step. It stops on a decode/execution error, on leaving the program
// region, or on exceeding StepCap.
func (e *Engine) Run(onStep func(*asmfmt.Instruction, trace.Trace)) (int, error) {
	steps := 0
	for e.State.InProgram() {
		if steps >= e.StepCap {
			return steps, &StepCapError{Cap: e.StepCap}
		}
		inst, tr, err := e.Step()
		if err != nil {
			return steps, err
		}
		if onStep != nil {
			onStep(inst, tr)
		}
		steps++
	}
	return steps, nil
}

func (e *Engine) unimplemented(inst *asmfmt.Instruction) error {
	return &Error{Kind: UnimplementedExecution, Mnemonic: inst.Mnemonic.String(), Address: inst.Address}
}

// instSize resolves the operand width an instruction acts at: the
// paired register's size when one operand is a register (the 8086
// always sizes a register/memory pair by the register), else an
// explicit memory or immediate size, else word.
func instSize(inst *asmfmt.Instruction) int {
	if r, ok := inst.Dest.(asmfmt.Register); ok {
		return r.Size
	}
	if r, ok := inst.Source.(asmfmt.Register); ok {
		return r.Size
	}
	if m, ok := inst.Dest.(asmfmt.Memory); ok && m.Size != 0 {
		return m.Size
	}
	if m, ok := inst.Source.(asmfmt.Memory); ok && m.Size != 0 {
		return m.Size
	}
	if im, ok := inst.Source.(asmfmt.Immediate); ok {
		return im.Size
	}
	return 2
}

func segSlot(seg asmfmt.Segment) int {
	switch seg {
	case asmfmt.SegES:
		return RegES
	case asmfmt.SegCS:
		return RegCS
	case asmfmt.SegSS:
		return RegSS
	default:
		return RegDS
	}
}

// formulaBase evaluates one of the eight fixed base-register formulas.
func (e *Engine) formulaBase(f int) uint16 {
	r := &e.State.Regs
	switch cpu.EAFormula(f) {
	case cpu.FormulaBXSI:
		return r[RegBX] + r[RegSI]
	case cpu.FormulaBXDI:
		return r[RegBX] + r[RegDI]
	case cpu.FormulaBPSI:
		return r[RegBP] + r[RegSI]
	case cpu.FormulaBPDI:
		return r[RegBP] + r[RegDI]
	case cpu.FormulaSI:
		return r[RegSI]
	case cpu.FormulaDI:
		return r[RegDI]
	case cpu.FormulaBP:
		return r[RegBP]
	default:
		return r[RegBX]
	}
}

// effectiveAddress computes the physical address a memory operand
// names: (segment<<4)+offset, where the segment is the operand's
// override if present, else SS when the formula's base is BP, else DS.
func (e *Engine) effectiveAddress(m asmfmt.Memory) uint32 {
	var offset uint16
	if m.DirectAddress {
		offset = uint16(m.Disp)
	} else {
		offset = e.formulaBase(m.Formula) + uint16(m.Disp)
	}
	seg := m.Segment
	if seg == asmfmt.SegNone {
		if !m.DirectAddress && cpu.EAFormula(m.Formula).UsesBP() {
			seg = asmfmt.SegSS
		} else {
			seg = asmfmt.SegDS
		}
	}
	segVal := e.State.Regs[segSlot(seg)]
	return uint32(segVal)<<4 + uint32(offset)
}

func (e *Engine) readMem(addr uint32, size int) uint16 {
	if size == 1 {
		return uint16(e.State.Mem[addr])
	}
	return uint16(e.State.Mem[addr]) | uint16(e.State.Mem[addr+1])<<8
}

func (e *Engine) writeMem(addr uint32, v uint16, size int) {
	e.State.Mem[addr] = byte(v)
	if size == 2 {
		e.State.Mem[addr+1] = byte(v >> 8)
	}
}

func (e *Engine) readOperand(op asmfmt.Operand, size int) uint16 {
	switch o := op.(type) {
	case asmfmt.Register:
		return e.State.ReadRegister(o)
	case asmfmt.Memory:
		return e.readMem(e.effectiveAddress(o), size)
	case asmfmt.Immediate:
		return uint16(o.Value)
	default:
		return 0
	}
}

func (e *Engine) writeOperand(op asmfmt.Operand, v uint16, size int, tr *trace.Trace) {
	switch o := op.(type) {
	case asmfmt.Register:
		e.State.WriteRegister(o, v, tr)
	case asmfmt.Memory:
		e.writeMem(e.effectiveAddress(o), v, size)
	}
}

// spReg names SP as an operand so stack adjustments go through
// WriteRegister and appear in the trace like any other register write.
var spReg = asmfmt.Register{Size: 2, Index: RegSP}

func (e *Engine) push(v uint16, tr *trace.Trace) {
	sp := e.State.Regs[RegSP] - 2
	e.State.WriteRegister(spReg, sp, tr)
	addr := uint32(e.State.Regs[RegSS])<<4 + uint32(sp)
	e.writeMem(addr, v, 2)
}

func (e *Engine) pop(tr *trace.Trace) uint16 {
	sp := e.State.Regs[RegSP]
	addr := uint32(e.State.Regs[RegSS])<<4 + uint32(sp)
	v := e.readMem(addr, 2)
	e.State.WriteRegister(spReg, sp+2, tr)
	return v
}

// advanceIndex adds a signed step (word or byte size, negated when DF
// is set) to a general-register slot, tracing the write.
func (e *Engine) advanceIndex(slot int, step int16, tr *trace.Trace) {
	v := uint16(int32(e.State.Regs[slot]) + int32(step))
	e.State.WriteRegister(asmfmt.Register{Size: 2, Index: slot}, v, tr)
}

func (e *Engine) execStringOp(inst *asmfmt.Instruction, tr *trace.Trace) {
	size := inst.Size
	if size == 0 {
		size = 2
	}
	step := int16(size)
	if e.State.Flag(cpu.FlagDF) {
		step = -step
	}

	doOne := func() {
		switch inst.Mnemonic {
		case asmfmt.MOVS:
			src := uint32(e.State.Regs[RegDS])<<4 + uint32(e.State.Regs[RegSI])
			dst := uint32(e.State.Regs[RegES])<<4 + uint32(e.State.Regs[RegDI])
			e.writeMem(dst, e.readMem(src, size), size)
			e.advanceIndex(RegSI, step, tr)
			e.advanceIndex(RegDI, step, tr)
		case asmfmt.STOS:
			dst := uint32(e.State.Regs[RegES])<<4 + uint32(e.State.Regs[RegDI])
			e.writeMem(dst, e.State.ReadRegister(asmfmt.Register{Size: size, Index: RegAX}), size)
			e.advanceIndex(RegDI, step, tr)
		case asmfmt.LODS:
			src := uint32(e.State.Regs[RegDS])<<4 + uint32(e.State.Regs[RegSI])
			e.State.WriteRegister(asmfmt.Register{Size: size, Index: RegAX}, e.readMem(src, size), tr)
			e.advanceIndex(RegSI, step, tr)
		case asmfmt.CMPS:
			src := uint32(e.State.Regs[RegDS])<<4 + uint32(e.State.Regs[RegSI])
			dst := uint32(e.State.Regs[RegES])<<4 + uint32(e.State.Regs[RegDI])
			a, b := e.readMem(src, size), e.readMem(dst, size)
			_, cf, of, zf, sf, af, pf := subFlags(uint32(a), uint32(b), size)
			e.State.setArithFlags(cf, of, zf, sf, af, pf)
			e.advanceIndex(RegSI, step, tr)
			e.advanceIndex(RegDI, step, tr)
		case asmfmt.SCAS:
			acc := e.State.ReadRegister(asmfmt.Register{Size: size, Index: RegAX})
			dst := uint32(e.State.Regs[RegES])<<4 + uint32(e.State.Regs[RegDI])
			b := e.readMem(dst, size)
			_, cf, of, zf, sf, af, pf := subFlags(uint32(acc), uint32(b), size)
			e.State.setArithFlags(cf, of, zf, sf, af, pf)
			e.advanceIndex(RegDI, step, tr)
		}
	}

	if !inst.Rep {
		doOne()
		return
	}
	for e.State.Regs[RegCX] != 0 {
		doOne()
		cx := e.State.Regs[RegCX] - 1
		e.State.WriteRegister(asmfmt.Register{Size: 2, Index: RegCX}, cx, tr)
		if cx == 0 {
			break
		}
		if inst.Mnemonic == asmfmt.CMPS || inst.Mnemonic == asmfmt.SCAS {
			zf := e.State.Flag(cpu.FlagZF)
			if inst.RepZ != zf {
				break
			}
		}
	}
}

func (e *Engine) condTrue(m asmfmt.Mnemonic) bool {
	cf, zf := e.State.Flag(cpu.FlagCF), e.State.Flag(cpu.FlagZF)
	sf, of, pf := e.State.Flag(cpu.FlagSF), e.State.Flag(cpu.FlagOF), e.State.Flag(cpu.FlagPF)
	switch m {
	case asmfmt.JE:
		return zf
	case asmfmt.JNE:
		return !zf
	case asmfmt.JB:
		return cf
	case asmfmt.JNB:
		return !cf
	case asmfmt.JBE:
		return cf || zf
	case asmfmt.JA:
		return !cf && !zf
	case asmfmt.JL:
		return sf != of
	case asmfmt.JNL:
		return sf == of
	case asmfmt.JLE:
		return (sf != of) || zf
	case asmfmt.JG:
		return !(sf != of) && !zf
	case asmfmt.JP:
		return pf
	case asmfmt.JNP:
		return !pf
	case asmfmt.JO:
		return of
	case asmfmt.JNO:
		return !of
	case asmfmt.JS:
		return sf
	case asmfmt.JNS:
		return !sf
	default:
		return false
	}
}

func (e *Engine) jumpRel(disp int16) {
	e.State.Regs[RegIP] = uint16(int32(e.State.Regs[RegIP]) + int32(disp))
}

func (e *Engine) execute(inst *asmfmt.Instruction, tr *trace.Trace) error {
	size := instSize(inst)

	switch inst.Mnemonic {
	case asmfmt.MOV:
		e.writeOperand(inst.Dest, e.readOperand(inst.Source, size), size, tr)

	case asmfmt.ADD:
		a, b := e.readOperand(inst.Dest, size), e.readOperand(inst.Source, size)
		result, cf, of, zf, sf, af, pf := addFlags(uint32(a), uint32(b), size)
		e.State.setArithFlags(cf, of, zf, sf, af, pf)
		e.writeOperand(inst.Dest, result, size, tr)

	case asmfmt.SUB:
		a, b := e.readOperand(inst.Dest, size), e.readOperand(inst.Source, size)
		result, cf, of, zf, sf, af, pf := subFlags(uint32(a), uint32(b), size)
		e.State.setArithFlags(cf, of, zf, sf, af, pf)
		e.writeOperand(inst.Dest, result, size, tr)

	case asmfmt.CMP:
		a, b := e.readOperand(inst.Dest, size), e.readOperand(inst.Source, size)
		_, cf, of, zf, sf, af, pf := subFlags(uint32(a), uint32(b), size)
		e.State.setArithFlags(cf, of, zf, sf, af, pf)

	case asmfmt.AND:
		a, b := e.readOperand(inst.Dest, size), e.readOperand(inst.Source, size)
		result, zf, sf, pf := logicResult(uint32(a)&uint32(b), size)
		e.State.setLogicFlags(zf, sf, pf)
		e.writeOperand(inst.Dest, result, size, tr)

	case asmfmt.OR:
		a, b := e.readOperand(inst.Dest, size), e.readOperand(inst.Source, size)
		result, zf, sf, pf := logicResult(uint32(a)|uint32(b), size)
		e.State.setLogicFlags(zf, sf, pf)
		e.writeOperand(inst.Dest, result, size, tr)

	case asmfmt.XOR:
		a, b := e.readOperand(inst.Dest, size), e.readOperand(inst.Source, size)
		result, zf, sf, pf := logicResult(uint32(a)^uint32(b), size)
		e.State.setLogicFlags(zf, sf, pf)
		e.writeOperand(inst.Dest, result, size, tr)

	case asmfmt.TEST:
		a, b := e.readOperand(inst.Dest, size), e.readOperand(inst.Source, size)
		_, zf, sf, pf := logicResult(uint32(a)&uint32(b), size)
		e.State.setLogicFlags(zf, sf, pf)

	case asmfmt.INC:
		v := e.readOperand(inst.Dest, size)
		cf := e.State.Flag(cpu.FlagCF)
		result, _, of, zf, sf, af, pf := addFlags(uint32(v), 1, size)
		e.State.setArithFlags(cf, of, zf, sf, af, pf)
		e.writeOperand(inst.Dest, result, size, tr)

	case asmfmt.DEC:
		v := e.readOperand(inst.Dest, size)
		cf := e.State.Flag(cpu.FlagCF)
		result, _, of, zf, sf, af, pf := subFlags(uint32(v), 1, size)
		e.State.setArithFlags(cf, of, zf, sf, af, pf)
		e.writeOperand(inst.Dest, result, size, tr)

	case asmfmt.NEG:
		v := e.readOperand(inst.Dest, size)
		result, cf, of, zf, sf, af, pf := subFlags(0, uint32(v), size)
		e.State.setArithFlags(cf, of, zf, sf, af, pf)
		e.writeOperand(inst.Dest, result, size, tr)

	case asmfmt.NOT:
		v := e.readOperand(inst.Dest, size)
		mask, _ := sizeMasks(size)
		e.writeOperand(inst.Dest, uint16(^uint32(v)&mask), size, tr)

	case asmfmt.PUSH:
		e.push(e.readOperand(inst.Dest, 2), tr)

	case asmfmt.POP:
		e.writeOperand(inst.Dest, e.pop(tr), 2, tr)

	case asmfmt.MOVS, asmfmt.STOS, asmfmt.LODS, asmfmt.CMPS, asmfmt.SCAS:
		e.execStringOp(inst, tr)

	case asmfmt.JMP:
		switch target := inst.Dest.(type) {
		case asmfmt.Label:
			e.jumpRel(target.Disp)
		case asmfmt.Register:
			e.State.Regs[RegIP] = e.State.ReadRegister(target)
		case asmfmt.Memory:
			if target.Far {
				return e.unimplemented(inst)
			}
			e.State.Regs[RegIP] = e.readMem(e.effectiveAddress(target), 2)
		default:
			return e.unimplemented(inst)
		}

	case asmfmt.CALL:
		switch target := inst.Dest.(type) {
		case asmfmt.Label:
			e.push(e.State.Regs[RegIP], tr)
			e.jumpRel(target.Disp)
		case asmfmt.Register:
			ret := e.State.Regs[RegIP]
			e.State.Regs[RegIP] = e.State.ReadRegister(target)
			e.push(ret, tr)
		case asmfmt.Memory:
			if target.Far {
				return e.unimplemented(inst)
			}
			ret := e.State.Regs[RegIP]
			e.State.Regs[RegIP] = e.readMem(e.effectiveAddress(target), 2)
			e.push(ret, tr)
		default:
			return e.unimplemented(inst)
		}

	case asmfmt.RET:
		e.State.Regs[RegIP] = e.pop(tr)
		if imm, ok := inst.Dest.(asmfmt.Immediate); ok {
			e.State.WriteRegister(spReg, e.State.Regs[RegSP]+uint16(imm.Value), tr)
		}

	case asmfmt.JE, asmfmt.JNE, asmfmt.JB, asmfmt.JNB, asmfmt.JBE, asmfmt.JA,
		asmfmt.JL, asmfmt.JNL, asmfmt.JLE, asmfmt.JG, asmfmt.JP, asmfmt.JNP,
		asmfmt.JO, asmfmt.JNO, asmfmt.JS, asmfmt.JNS:
		if e.condTrue(inst.Mnemonic) {
			e.jumpRel(inst.Dest.(asmfmt.Label).Disp)
		}

	case asmfmt.LOOP, asmfmt.LOOPZ, asmfmt.LOOPNZ:
		cx := e.State.Regs[RegCX] - 1
		e.State.WriteRegister(asmfmt.Register{Size: 2, Index: RegCX}, cx, tr)
		jump := cx != 0
		if inst.Mnemonic == asmfmt.LOOPZ {
			jump = jump && e.State.Flag(cpu.FlagZF)
		}
		if inst.Mnemonic == asmfmt.LOOPNZ {
			jump = jump && !e.State.Flag(cpu.FlagZF)
		}
		if jump {
			e.jumpRel(inst.Dest.(asmfmt.Label).Disp)
		}

	case asmfmt.JCXZ:
		if e.State.Regs[RegCX] == 0 {
			e.jumpRel(inst.Dest.(asmfmt.Label).Disp)
		}

	default:
		return e.unimplemented(inst)
	}
	return nil
}
