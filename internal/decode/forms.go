package decode

import (
	"github.com/MooOfDoom/sim8086/internal/asmfmt"
)

// arithOps maps the 3-bit operation field shared by the reg/mem,
// immediate, and accumulator arithmetic forms to its mnemonic.
var arithOps = [8]asmfmt.Mnemonic{
	asmfmt.ADD, asmfmt.OR, asmfmt.ADC, asmfmt.SBB,
	asmfmt.AND, asmfmt.SUB, asmfmt.XOR, asmfmt.CMP,
}

var shiftOps = [8]asmfmt.Mnemonic{
	asmfmt.ROL, asmfmt.ROR, asmfmt.RCL, asmfmt.RCR,
	asmfmt.SHL, asmfmt.SHR, -1, asmfmt.SAR,
}

var groupFFOps = [8]asmfmt.Mnemonic{
	asmfmt.INC, asmfmt.DEC, asmfmt.CALL, asmfmt.CALL,
	asmfmt.JMP, asmfmt.JMP, asmfmt.PUSH, -1,
}

var condMnemonics = [16]asmfmt.Mnemonic{
	asmfmt.JO, asmfmt.JNO, asmfmt.JB, asmfmt.JNB,
	asmfmt.JE, asmfmt.JNE, asmfmt.JBE, asmfmt.JA,
	asmfmt.JS, asmfmt.JNS, asmfmt.JP, asmfmt.JNP,
	asmfmt.JL, asmfmt.JNL, asmfmt.JLE, asmfmt.JG,
}

var loopMnemonics = [4]asmfmt.Mnemonic{
	asmfmt.LOOPNZ, asmfmt.LOOPZ, asmfmt.LOOP, asmfmt.JCXZ,
}

// stringOps maps each string-instruction opcode byte to its mnemonic;
// W is the low bit of the opcode byte.
var stringOps = map[byte]asmfmt.Mnemonic{
	0xA4: asmfmt.MOVS, 0xA5: asmfmt.MOVS,
	0xA6: asmfmt.CMPS, 0xA7: asmfmt.CMPS,
	0xAA: asmfmt.STOS, 0xAB: asmfmt.STOS,
	0xAC: asmfmt.LODS, 0xAD: asmfmt.LODS,
	0xAE: asmfmt.SCAS, 0xAF: asmfmt.SCAS,
}

// dispatch classifies the first non-prefix byte and decodes the
// remainder of the instruction. Order matters only where masks would
// otherwise ambiguously overlap; exact-byte forms are checked first.
func (ds *decodeState) dispatch(b0 byte) (*asmfmt.Instruction, error) {
	if m, ok := exactMnemonics[b0]; ok {
		return &asmfmt.Instruction{Mnemonic: m}, nil
	}
	if m, ok := stringOps[b0]; ok {
		return &asmfmt.Instruction{Mnemonic: m, Size: wsize(b0 & 1)}, nil
	}

	switch {
	case b0 == 0xD7:
		return &asmfmt.Instruction{Mnemonic: asmfmt.XLAT}, nil
	case b0 == 0x8D:
		return ds.decodeLEA()
	case b0 == 0xC5:
		return ds.decodeLxS(asmfmt.LDS)
	case b0 == 0xC4:
		return ds.decodeLxS(asmfmt.LES)
	case b0 == 0x8F:
		return ds.decodePopRM()
	case b0 == 0xFE:
		return ds.decodeIncDecByte()
	case b0 == 0xFF:
		return ds.decodeGroupFF()
	case b0 == 0xC2:
		return ds.decodeRetImm(false)
	case b0 == 0xCA:
		return ds.decodeRetImm(true)
	case b0 == 0x9A:
		return ds.decodeCallFarDirect()
	case b0 == 0xEA:
		return ds.decodeJmpFarDirect()
	case b0 == 0xE8:
		return ds.decodeRelDisp(asmfmt.CALL)
	case b0 == 0xE9:
		return ds.decodeRelDisp(asmfmt.JMP)
	case b0 == 0xEB:
		return ds.decodeShortJmp()
	case b0 == 0xCD:
		return ds.decodeIntImm()
	case b0 == 0xD4:
		return ds.decodeAAM()
	case b0 == 0xD5:
		return ds.decodeAAD()

	case b0&0xF0 == 0x70:
		return &asmfmt.Instruction{Mnemonic: condMnemonics[b0&0xF], Dest: ds.readLabel8()}, ds.checkErr("short jump displacement")
	case b0&0xFC == 0xE0:
		return &asmfmt.Instruction{Mnemonic: loopMnemonics[b0&0x3], Dest: ds.readLabel8()}, ds.checkErr("loop displacement")
	case b0&0xF8 == 0xD8:
		return ds.decodeESC(b0)

	case b0&0xFC == 0x88:
		return ds.decodeMovRegRM(b0)
	case b0&0xFE == 0xC6:
		return ds.decodeMovImmRM(b0)
	case b0&0xF0 == 0xB0:
		return ds.decodeMovImmReg(b0)
	case b0&0xFC == 0xA0:
		return ds.decodeMovAcc(b0)
	case b0&0xFD == 0x8C:
		return ds.decodeMovSReg(b0)

	case b0&0xF8 == 0x50:
		return &asmfmt.Instruction{Mnemonic: asmfmt.PUSH, Dest: regOperand(b0&0x7, 1)}, nil
	case b0&0xF8 == 0x58:
		return &asmfmt.Instruction{Mnemonic: asmfmt.POP, Dest: regOperand(b0&0x7, 1)}, nil
	case b0&0xE7 == 0x06:
		return ds.decodePushPopSeg(b0, asmfmt.PUSH)
	case b0&0xE7 == 0x07:
		return ds.decodePushPopSeg(b0, asmfmt.POP)
	case b0&0xFE == 0x86:
		return ds.decodeXchgRM(b0)
	case b0&0xF8 == 0x90:
		return &asmfmt.Instruction{Mnemonic: asmfmt.XCHG, Dest: regOperand(0, 1), Source: regOperand(b0&0x7, 1)}, nil
	case b0&0xFE == 0xE4:
		return ds.decodeInOutFixed(b0, asmfmt.IN)
	case b0&0xFE == 0xE6:
		return ds.decodeInOutFixed(b0, asmfmt.OUT)
	case b0&0xFE == 0xEC:
		return ds.decodeInOutDX(b0, asmfmt.IN)
	case b0&0xFE == 0xEE:
		return ds.decodeInOutDX(b0, asmfmt.OUT)

	case b0&0xC4 == 0x00:
		return ds.decodeArithRM(b0)
	case b0&0xFC == 0x80:
		return ds.decodeArithImmRM(b0)
	case b0&0xC6 == 0x04:
		return ds.decodeArithAcc(b0)

	case b0&0xF8 == 0x40:
		return &asmfmt.Instruction{Mnemonic: asmfmt.INC, Dest: regOperand(b0&0x7, 1)}, nil
	case b0&0xF8 == 0x48:
		return &asmfmt.Instruction{Mnemonic: asmfmt.DEC, Dest: regOperand(b0&0x7, 1)}, nil

	case b0&0xFC == 0xD0:
		return ds.decodeShift(b0)
	case b0&0xFE == 0xF6:
		return ds.decodeUnary(b0)
	case b0&0xFE == 0x84:
		return ds.decodeTestRM(b0)
	case b0&0xFE == 0xA8:
		return ds.decodeTestAcc(b0)
	}

	return nil, ds.fail(UnknownOpcode, b0, "no known 8086 form matches this byte")
}

var exactMnemonics = map[byte]asmfmt.Mnemonic{
	0x37: asmfmt.AAA, 0x3F: asmfmt.AAS, 0x27: asmfmt.DAA, 0x2F: asmfmt.DAS,
	0x98: asmfmt.CBW, 0x99: asmfmt.CWD, 0x9B: asmfmt.WAIT,
	0x9C: asmfmt.PUSHF, 0x9D: asmfmt.POPF, 0x9E: asmfmt.SAHF, 0x9F: asmfmt.LAHF,
	0xF4: asmfmt.HLT, 0xF5: asmfmt.CMC, 0xF8: asmfmt.CLC, 0xF9: asmfmt.STC,
	0xFA: asmfmt.CLI, 0xFB: asmfmt.STI, 0xFC: asmfmt.CLD, 0xFD: asmfmt.STD,
	0xCC: asmfmt.INT, 0xCE: asmfmt.INTO, 0xCF: asmfmt.IRET,
	0xC3: asmfmt.RET, 0xCB: asmfmt.RET,
}

func (ds *decodeState) decodeLEA() (*asmfmt.Instruction, error) {
	mm, err := ds.modrm()
	if err != nil {
		return nil, err
	}
	reg := regOperand(mm.Reg, 1)
	rm, err := ds.rmOperand(mm, 1)
	if err != nil {
		return nil, err
	}
	return &asmfmt.Instruction{Mnemonic: asmfmt.LEA, Dest: reg, Source: rm}, nil
}

func (ds *decodeState) decodeLxS(m asmfmt.Mnemonic) (*asmfmt.Instruction, error) {
	mm, err := ds.modrm()
	if err != nil {
		return nil, err
	}
	reg := regOperand(mm.Reg, 1)
	rm, err := ds.rmOperand(mm, 1)
	if err != nil {
		return nil, err
	}
	return &asmfmt.Instruction{Mnemonic: m, Dest: reg, Source: rm}, nil
}

func (ds *decodeState) decodePopRM() (*asmfmt.Instruction, error) {
	mm, err := ds.modrm()
	if err != nil {
		return nil, err
	}
	if mm.Reg != 0 {
		return nil, ds.fail(IllegalSubOp, mm.Reg, "POP r/m requires ModR/M.reg == 0")
	}
	rm, err := ds.rmOperand(mm, 1)
	if err != nil {
		return nil, err
	}
	setExplicitSize(&rm, 2)
	return &asmfmt.Instruction{Mnemonic: asmfmt.POP, Dest: rm}, nil
}

func (ds *decodeState) decodeIncDecByte() (*asmfmt.Instruction, error) {
	mm, err := ds.modrm()
	if err != nil {
		return nil, err
	}
	var m asmfmt.Mnemonic
	switch mm.Reg {
	case 0:
		m = asmfmt.INC
	case 1:
		m = asmfmt.DEC
	default:
		return nil, ds.fail(IllegalSubOp, mm.Reg, "0xFE ModR/M.reg must be 0 or 1")
	}
	rm, err := ds.rmOperand(mm, 0)
	if err != nil {
		return nil, err
	}
	setExplicitSize(&rm, 1)
	return &asmfmt.Instruction{Mnemonic: m, Dest: rm}, nil
}

func (ds *decodeState) decodeGroupFF() (*asmfmt.Instruction, error) {
	mm, err := ds.modrm()
	if err != nil {
		return nil, err
	}
	m := groupFFOps[mm.Reg]
	if m == -1 {
		return nil, ds.fail(IllegalSubOp, mm.Reg, "0xFF ModR/M.reg == 7 is reserved")
	}
	rm, err := ds.rmOperand(mm, 1)
	if err != nil {
		return nil, err
	}
	// far call/jmp through memory: 4-byte pointer, printed with "far ".
	if (mm.Reg == 3 || mm.Reg == 5) && mm.Mod != 0b11 {
		mem := rm.(asmfmt.Memory)
		mem.Far = true
		rm = mem
	} else {
		setExplicitSize(&rm, 2)
	}
	return &asmfmt.Instruction{Mnemonic: m, Dest: rm}, nil
}

// setExplicitSize marks a memory operand as carrying an explicit b/w
// size the printer must render, because this form pairs it with no
// sized register operand of its own.
func setExplicitSize(op *asmfmt.Operand, size int) {
	if mem, ok := (*op).(asmfmt.Memory); ok {
		mem.Size = size
		mem.ExplicitSize = true
		*op = mem
	}
}

func (ds *decodeState) decodeRetImm(far bool) (*asmfmt.Instruction, error) {
	imm := ds.cur().ReadU16()
	if err := ds.checkErr("RET immediate"); err != nil {
		return nil, err
	}
	_ = far
	return &asmfmt.Instruction{Mnemonic: asmfmt.RET, Dest: asmfmt.Immediate{Size: 2, Value: int16(imm)}}, nil
}

func (ds *decodeState) decodeCallFarDirect() (*asmfmt.Instruction, error) {
	ip := ds.cur().ReadU16()
	cs := ds.cur().ReadU16()
	if err := ds.checkErr("far call target"); err != nil {
		return nil, err
	}
	return &asmfmt.Instruction{Mnemonic: asmfmt.CALL, Dest: asmfmt.FarPointer{CS: cs, IP: ip}}, nil
}

func (ds *decodeState) decodeJmpFarDirect() (*asmfmt.Instruction, error) {
	ip := ds.cur().ReadU16()
	cs := ds.cur().ReadU16()
	if err := ds.checkErr("far jmp target"); err != nil {
		return nil, err
	}
	return &asmfmt.Instruction{Mnemonic: asmfmt.JMP, Dest: asmfmt.FarPointer{CS: cs, IP: ip}}, nil
}

func (ds *decodeState) decodeRelDisp(m asmfmt.Mnemonic) (*asmfmt.Instruction, error) {
	disp := ds.cur().ReadI16()
	if err := ds.checkErr("near displacement"); err != nil {
		return nil, err
	}
	return &asmfmt.Instruction{Mnemonic: m, Dest: asmfmt.Label{Disp: disp}}, nil
}

func (ds *decodeState) decodeShortJmp() (*asmfmt.Instruction, error) {
	return &asmfmt.Instruction{Mnemonic: asmfmt.JMP, Dest: ds.readLabel8()}, ds.checkErr("short jmp displacement")
}

func (ds *decodeState) readLabel8() asmfmt.Label {
	return asmfmt.Label{Disp: int16(ds.cur().ReadI8())}
}

func (ds *decodeState) decodeIntImm() (*asmfmt.Instruction, error) {
	v := ds.cur().ReadU8()
	if err := ds.checkErr("INT immediate"); err != nil {
		return nil, err
	}
	return &asmfmt.Instruction{Mnemonic: asmfmt.INT, Dest: asmfmt.Immediate{Size: 1, Value: int16(v)}}, nil
}

func (ds *decodeState) checkTrailer0A(name string) error {
	b := ds.cur().ReadU8()
	if err := ds.checkErr(name + " second byte"); err != nil {
		return err
	}
	if b != 0x0A {
		return ds.fail(IllegalSecondByte, b, name+" requires a trailing 0x0A")
	}
	return nil
}

func (ds *decodeState) decodeAAM() (*asmfmt.Instruction, error) {
	if err := ds.checkTrailer0A("AAM"); err != nil {
		return nil, err
	}
	return &asmfmt.Instruction{Mnemonic: asmfmt.AAM}, nil
}

func (ds *decodeState) decodeAAD() (*asmfmt.Instruction, error) {
	if err := ds.checkTrailer0A("AAD"); err != nil {
		return nil, err
	}
	return &asmfmt.Instruction{Mnemonic: asmfmt.AAD}, nil
}

func (ds *decodeState) decodeESC(b0 byte) (*asmfmt.Instruction, error) {
	mm, err := ds.modrm()
	if err != nil {
		return nil, err
	}
	rm, err := ds.rmOperand(mm, 1)
	if err != nil {
		return nil, err
	}
	_ = b0
	return &asmfmt.Instruction{Mnemonic: asmfmt.ESC, Dest: regOperand(mm.Reg, 1), Source: rm}, nil
}

func (ds *decodeState) decodeMovRegRM(b0 byte) (*asmfmt.Instruction, error) {
	d, w := (b0>>1)&1, b0&1
	mm, err := ds.modrm()
	if err != nil {
		return nil, err
	}
	reg := regOperand(mm.Reg, w)
	rm, err := ds.rmOperand(mm, w)
	if err != nil {
		return nil, err
	}
	return orderByD(asmfmt.MOV, d, reg, rm), nil
}

func orderByD(m asmfmt.Mnemonic, d byte, reg asmfmt.Operand, rm asmfmt.Operand) *asmfmt.Instruction {
	if d == 1 {
		return &asmfmt.Instruction{Mnemonic: m, Dest: reg, Source: rm}
	}
	return &asmfmt.Instruction{Mnemonic: m, Dest: rm, Source: reg}
}

func (ds *decodeState) decodeMovImmRM(b0 byte) (*asmfmt.Instruction, error) {
	w := b0 & 1
	mm, err := ds.modrm()
	if err != nil {
		return nil, err
	}
	if mm.Reg != 0 {
		return nil, ds.fail(IllegalSubOp, mm.Reg, "MOV r/m,imm requires ModR/M.reg == 0")
	}
	rm, err := ds.rmOperand(mm, w)
	if err != nil {
		return nil, err
	}
	setExplicitSize(&rm, wsize(w))
	imm, err := ds.immOperand(w)
	if err != nil {
		return nil, err
	}
	return &asmfmt.Instruction{Mnemonic: asmfmt.MOV, Dest: rm, Source: imm}, nil
}

func (ds *decodeState) decodeMovImmReg(b0 byte) (*asmfmt.Instruction, error) {
	w := (b0 >> 3) & 1
	reg := regOperand(b0&0x7, w)
	imm, err := ds.immOperand(w)
	if err != nil {
		return nil, err
	}
	return &asmfmt.Instruction{Mnemonic: asmfmt.MOV, Dest: reg, Source: imm}, nil
}

func (ds *decodeState) decodeMovAcc(b0 byte) (*asmfmt.Instruction, error) {
	d, w := (b0>>1)&1, b0&1
	addr := ds.cur().ReadU16()
	if err := ds.checkErr("MOV acc address"); err != nil {
		return nil, err
	}
	mem := asmfmt.Memory{DirectAddress: true, Disp: int16(addr), Segment: ds.seg}
	acc := regOperand(0, w)
	if d == 0 {
		return &asmfmt.Instruction{Mnemonic: asmfmt.MOV, Dest: acc, Source: mem}, nil
	}
	return &asmfmt.Instruction{Mnemonic: asmfmt.MOV, Dest: mem, Source: acc}, nil
}

func (ds *decodeState) decodeMovSReg(b0 byte) (*asmfmt.Instruction, error) {
	d := (b0 >> 1) & 1
	mm, err := ds.modrm()
	if err != nil {
		return nil, err
	}
	sreg, err := segRegOperand(ds, mm.Reg)
	if err != nil {
		return nil, err
	}
	rm, err := ds.rmOperand(mm, 1)
	if err != nil {
		return nil, err
	}
	return orderByD(asmfmt.MOV, d, sreg, rm), nil
}

func (ds *decodeState) decodePushPopSeg(b0 byte, m asmfmt.Mnemonic) (*asmfmt.Instruction, error) {
	sr := (b0 >> 3) & 0x3
	if m == asmfmt.POP && sr == 1 {
		return nil, ds.fail(IllegalSegmentSelector, sr, "POP CS is not a valid 8086 form")
	}
	reg, err := segRegOperand(ds, sr)
	if err != nil {
		return nil, err
	}
	return &asmfmt.Instruction{Mnemonic: m, Dest: reg}, nil
}

func (ds *decodeState) decodeXchgRM(b0 byte) (*asmfmt.Instruction, error) {
	w := b0 & 1
	mm, err := ds.modrm()
	if err != nil {
		return nil, err
	}
	reg := regOperand(mm.Reg, w)
	rm, err := ds.rmOperand(mm, w)
	if err != nil {
		return nil, err
	}
	return &asmfmt.Instruction{Mnemonic: asmfmt.XCHG, Dest: rm, Source: reg}, nil
}

func (ds *decodeState) decodeInOutFixed(b0 byte, m asmfmt.Mnemonic) (*asmfmt.Instruction, error) {
	w := b0 & 1
	port := ds.cur().ReadU8()
	if err := ds.checkErr("port immediate"); err != nil {
		return nil, err
	}
	acc := regOperand(0, w)
	portImm := asmfmt.Immediate{Size: 1, Value: int16(port)}
	if m == asmfmt.IN {
		return &asmfmt.Instruction{Mnemonic: m, Dest: acc, Source: portImm}, nil
	}
	return &asmfmt.Instruction{Mnemonic: m, Dest: portImm, Source: acc}, nil
}

func (ds *decodeState) decodeInOutDX(b0 byte, m asmfmt.Mnemonic) (*asmfmt.Instruction, error) {
	w := b0 & 1
	acc := regOperand(0, w)
	dx := asmfmt.Register{Size: 2, Index: 2}
	if m == asmfmt.IN {
		return &asmfmt.Instruction{Mnemonic: m, Dest: acc, Source: dx}, nil
	}
	return &asmfmt.Instruction{Mnemonic: m, Dest: dx, Source: acc}, nil
}

func (ds *decodeState) decodeArithRM(b0 byte) (*asmfmt.Instruction, error) {
	op := arithOps[(b0>>3)&0x7]
	d, w := (b0>>1)&1, b0&1
	mm, err := ds.modrm()
	if err != nil {
		return nil, err
	}
	reg := regOperand(mm.Reg, w)
	rm, err := ds.rmOperand(mm, w)
	if err != nil {
		return nil, err
	}
	return orderByD(op, d, reg, rm), nil
}

func (ds *decodeState) decodeArithImmRM(b0 byte) (*asmfmt.Instruction, error) {
	s, w := (b0>>1)&1, b0&1
	mm, err := ds.modrm()
	if err != nil {
		return nil, err
	}
	op := arithOps[mm.Reg]
	rm, err := ds.rmOperand(mm, w)
	if err != nil {
		return nil, err
	}
	setExplicitSize(&rm, wsize(w))

	var v int16
	var size int
	switch {
	case s == 0 && w == 1:
		v = ds.cur().ReadI16()
		size = 2
	case s == 1:
		v = int16(ds.cur().ReadI8())
		size = 2
	default: // S=0,W=0: unsigned 8-bit, per the 8086 reference
		v = int16(ds.cur().ReadU8())
		size = 1
	}
	if err := ds.checkErr("arithmetic immediate"); err != nil {
		return nil, err
	}
	return &asmfmt.Instruction{Mnemonic: op, Dest: rm, Source: asmfmt.Immediate{Size: size, Value: v}}, nil
}

func (ds *decodeState) decodeArithAcc(b0 byte) (*asmfmt.Instruction, error) {
	op := arithOps[(b0>>3)&0x7]
	w := b0 & 1
	imm, err := ds.immOperand(w)
	if err != nil {
		return nil, err
	}
	return &asmfmt.Instruction{Mnemonic: op, Dest: regOperand(0, w), Source: imm}, nil
}

func (ds *decodeState) decodeShift(b0 byte) (*asmfmt.Instruction, error) {
	v, w := (b0>>1)&1, b0&1
	mm, err := ds.modrm()
	if err != nil {
		return nil, err
	}
	m := shiftOps[mm.Reg]
	if m == -1 {
		return nil, ds.fail(IllegalSubOp, mm.Reg, "shift/rotate ModR/M.reg == 6 is reserved")
	}
	rm, err := ds.rmOperand(mm, w)
	if err != nil {
		return nil, err
	}
	setExplicitSize(&rm, wsize(w))
	var src asmfmt.Operand
	if v == 1 {
		src = asmfmt.Register{Size: 1, Index: 1} // CL
	} else {
		src = asmfmt.Immediate{Size: 1, Value: 1}
	}
	return &asmfmt.Instruction{Mnemonic: m, Dest: rm, Source: src}, nil
}

func (ds *decodeState) decodeUnary(b0 byte) (*asmfmt.Instruction, error) {
	w := b0 & 1
	mm, err := ds.modrm()
	if err != nil {
		return nil, err
	}
	if mm.Reg == 1 {
		return nil, ds.fail(IllegalSubOp, mm.Reg, "unary group ModR/M.reg == 1 is reserved")
	}
	rm, err := ds.rmOperand(mm, w)
	if err != nil {
		return nil, err
	}
	setExplicitSize(&rm, wsize(w))
	switch mm.Reg {
	case 0: // TEST r/m, imm
		imm, err := ds.immOperand(w)
		if err != nil {
			return nil, err
		}
		return &asmfmt.Instruction{Mnemonic: asmfmt.TEST, Dest: rm, Source: imm}, nil
	case 2:
		return &asmfmt.Instruction{Mnemonic: asmfmt.NOT, Dest: rm}, nil
	case 3:
		return &asmfmt.Instruction{Mnemonic: asmfmt.NEG, Dest: rm}, nil
	case 4:
		return &asmfmt.Instruction{Mnemonic: asmfmt.MUL, Dest: rm}, nil
	case 5:
		return &asmfmt.Instruction{Mnemonic: asmfmt.IMUL, Dest: rm}, nil
	case 6:
		return &asmfmt.Instruction{Mnemonic: asmfmt.DIV, Dest: rm}, nil
	default:
		return &asmfmt.Instruction{Mnemonic: asmfmt.IDIV, Dest: rm}, nil
	}
}

func (ds *decodeState) decodeTestRM(b0 byte) (*asmfmt.Instruction, error) {
	w := b0 & 1
	mm, err := ds.modrm()
	if err != nil {
		return nil, err
	}
	reg := regOperand(mm.Reg, w)
	rm, err := ds.rmOperand(mm, w)
	if err != nil {
		return nil, err
	}
	return &asmfmt.Instruction{Mnemonic: asmfmt.TEST, Dest: rm, Source: reg}, nil
}

func (ds *decodeState) decodeTestAcc(b0 byte) (*asmfmt.Instruction, error) {
	w := b0 & 1
	imm, err := ds.immOperand(w)
	if err != nil {
		return nil, err
	}
	return &asmfmt.Instruction{Mnemonic: asmfmt.TEST, Dest: regOperand(0, w), Source: imm}, nil
}
