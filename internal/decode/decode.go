// Package decode turns an 8086 opcode byte stream into a sequence of
// asmfmt.Instruction values. Classification is table-driven where the
// ISA's bit patterns are disjoint (internal/cpu carries the shared
// scalar-read and ModR/M plumbing); it drops to structured per-form
// logic only where a form needs to inspect sub-fields of a second byte.
package decode

import (
	"io"

	"github.com/MooOfDoom/sim8086/internal/asmfmt"
	"github.com/MooOfDoom/sim8086/internal/cpu"
	"github.com/pkg/errors"
)

// Decoder fetches one instruction at a time from a byte slice it
// borrows and never mutates. It is restartable: a Next call resumes
// exactly where the previous one left off.
type Decoder struct {
	cur *cpu.Cursor
}

// New wraps data for sequential decoding starting at offset 0.
func New(data []byte) *Decoder {
	return &Decoder{cur: cpu.NewCursor(data)}
}

// Pos returns the current byte offset into the wrapped stream.
func (d *Decoder) Pos() int { return d.cur.Pos() }

// Next decodes one instruction. It returns io.EOF once the stream is
// exhausted with no pending prefixes, or a *Error on any decode
// failure (short read, illegal sub-op, illegal segment selector,
// unrecognized opcode, or a malformed AAM/AAD second byte). A short
// read detected by the cursor comes back wrapped by errors.Wrap, so
// callers should match it with errors.As rather than a type assertion.
func (d *Decoder) Next() (*asmfmt.Instruction, error) {
	start := uint32(d.cur.Pos())
	ds := &decodeState{d: d, start: start}

	for {
		if !d.cur.HasBytes() {
			if ds.lock || ds.seg != asmfmt.SegNone || ds.rep {
				return nil, ds.fail(ShortRead, 0, "prefix byte with no following instruction")
			}
			return nil, io.EOF
		}
		b0 := d.cur.ReadU8()
		switch {
		case b0 == 0xF0:
			ds.lock = true
			continue
		case b0 == 0xF2:
			ds.rep, ds.repZ = true, false
			continue
		case b0 == 0xF3:
			ds.rep, ds.repZ = true, true
			continue
		case b0&0xE7 == 0x26:
			ds.seg = segFromByte(b0)
			continue
		}

		inst, err := ds.dispatch(b0)
		if err != nil {
			return nil, err
		}
		if ds.rep && !asmfmt.IsStringOp(inst.Mnemonic) {
			return nil, ds.fail(UnknownOpcode, b0, "rep prefix not followed by a string instruction")
		}
		inst.Address = start
		inst.Lock = ds.lock
		inst.Rep = ds.rep
		inst.RepZ = ds.repZ
		inst.Length = d.cur.Pos() - int(start)
		return inst, nil
	}
}

func segFromByte(b0 byte) asmfmt.Segment {
	return [4]asmfmt.Segment{asmfmt.SegES, asmfmt.SegCS, asmfmt.SegSS, asmfmt.SegDS}[(b0>>3)&0x3]
}

// decodeState carries the prefix state accumulated for the instruction
// currently being decoded, plus the shared cursor.
type decodeState struct {
	d     *Decoder
	start uint32
	lock  bool
	seg   asmfmt.Segment
	rep   bool
	repZ  bool
}

func (ds *decodeState) cur() *cpu.Cursor { return ds.d.cur }

func (ds *decodeState) fail(kind Kind, b byte, context string) error {
	return &Error{Kind: kind, Byte: b, Address: ds.start, Context: context}
}

func (ds *decodeState) shortRead(context string) error {
	return errors.Wrap(ds.fail(ShortRead, 0, context), "cursor")
}

func (ds *decodeState) checkErr(context string) error {
	if ds.cur().Err() != nil {
		return ds.shortRead(context)
	}
	return nil
}

// modrm reads and splits one ModR/M byte.
func (ds *decodeState) modrm() (cpu.ModRM, error) {
	if !ds.cur().HasBytes() {
		return cpu.ModRM{}, ds.shortRead("ModR/M byte")
	}
	b := ds.cur().ReadU8()
	if err := ds.checkErr("ModR/M byte"); err != nil {
		return cpu.ModRM{}, err
	}
	return cpu.SplitModRM(b), nil
}

func wsize(w byte) int {
	if w == 1 {
		return 2
	}
	return 1
}

// rmOperand decodes the operand named by mod/rm: a register when
// mod==11, otherwise a memory operand (reading any displacement the
// addressing mode requires).
func (ds *decodeState) rmOperand(mm cpu.ModRM, w byte) (asmfmt.Operand, error) {
	if mm.Mod == 0b11 {
		return asmfmt.Register{Size: wsize(w), Index: int(mm.RM)}, nil
	}
	mem := asmfmt.Memory{Segment: ds.seg}
	if cpu.DirectAddress(mm.Mod, mm.RM) {
		mem.DirectAddress = true
		mem.Disp = int16(ds.cur().ReadU16())
	} else {
		mem.Formula = int(mm.RM)
		switch cpu.DispSize(mm.Mod, mm.RM) {
		case 1:
			mem.Disp = int16(ds.cur().ReadI8())
		case 2:
			mem.Disp = int16(ds.cur().ReadI16())
		}
	}
	if err := ds.checkErr("displacement"); err != nil {
		return nil, err
	}
	return mem, nil
}

func regOperand(reg byte, w byte) asmfmt.Register {
	return asmfmt.Register{Size: wsize(w), Index: int(reg)}
}

func segRegOperand(ds *decodeState, sr byte) (asmfmt.Register, error) {
	if sr > 3 {
		return asmfmt.Register{}, ds.fail(IllegalSegmentSelector, sr, "segment register selector must be 0..3")
	}
	return asmfmt.Register{Size: 2, Segment: true, Index: int(sr)}, nil
}

// immOperand reads a W-sized immediate (1 or 2 bytes), sign-extending
// an 8-bit read.
func (ds *decodeState) immOperand(w byte) (asmfmt.Immediate, error) {
	var v int16
	if w == 1 {
		v = ds.cur().ReadI16()
	} else {
		v = int16(ds.cur().ReadI8())
	}
	if err := ds.checkErr("immediate"); err != nil {
		return asmfmt.Immediate{}, err
	}
	return asmfmt.Immediate{Size: wsize(w), Value: v}, nil
}
