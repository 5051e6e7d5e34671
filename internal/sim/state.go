// Package sim holds simulator state (registers, memory) and the
// fetch-decode-execute engine that mutates it, grounded on the
// teacher's own CPU/memory split (go/models/cpu and go/mem.go).
package sim

import (
	"github.com/MooOfDoom/sim8086/internal/asmfmt"
	"github.com/MooOfDoom/sim8086/internal/cpu"
	"github.com/MooOfDoom/sim8086/internal/trace"
)

// MemSize is the fixed size of the simulated linear memory buffer.
const MemSize = 1 << 20

// Register slot indices into State.Regs, in the order spec'd by the
// source: general, then segment, then IP, then FLAGS.
const (
	RegAX = iota
	RegCX
	RegDX
	RegBX
	RegSP
	RegBP
	RegSI
	RegDI
	RegES
	RegCS
	RegSS
	RegDS
	RegIP
	RegFLAGS

	regCount
)

// State is the simulated CPU: fourteen 16-bit words and a flat 1 MiB
// memory. ProgramStart/ProgramEnd bound the loaded program so the
// execution engine knows when IP has left it.
type State struct {
	Regs                   [regCount]uint16
	Mem                    [MemSize]byte
	ProgramStart, ProgramEnd int
}

// NewState returns a zeroed simulator.
func NewState() *State {
	return &State{}
}

// LoadProgram copies data into memory at byte offset base, setting CS
// so that (CS<<4)+IP reconstructs base with IP starting at the
// within-paragraph remainder (0 when base is paragraph-aligned, which
// every caller in practice chooses).
func (s *State) LoadProgram(data []byte, base int) error {
	if base < 0 || base+len(data) > MemSize {
		return errOutOfRange(base, len(data))
	}
	copy(s.Mem[base:], data)
	s.ProgramStart = base
	s.ProgramEnd = base + len(data)
	s.Regs[RegCS] = uint16(base >> 4)
	s.Regs[RegIP] = uint16(base & 0xF)
	return nil
}

// PhysicalIP returns the 20-bit address (CS<<4)+IP the engine will
// fetch from next.
func (s *State) PhysicalIP() int {
	return int(s.Regs[RegCS])<<4 + int(s.Regs[RegIP])
}

// InProgram reports whether the current physical IP still lies within
// [ProgramStart, ProgramEnd).
func (s *State) InProgram() bool {
	addr := s.PhysicalIP()
	return addr >= s.ProgramStart && addr < s.ProgramEnd
}

// ReadRegister implements the aliasing rule of the source's accessor
// pair: size-1 low register reads the low byte of its mapped slot,
// size-1 high register reads the high byte of slot index-4, size-2
// general reads slot index, segment reads slot index+8.
func (s *State) ReadRegister(r asmfmt.Register) uint16 {
	if r.Segment {
		return s.Regs[RegES+r.Index]
	}
	if r.Size == 1 {
		if r.Index < 4 {
			return s.Regs[r.Index] & 0xFF
		}
		return (s.Regs[r.Index-4] >> 8) & 0xFF
	}
	return s.Regs[r.Index]
}

// WriteRegister writes v through r's aliasing rule, preserving the
// untouched half of an 8-bit write, and appends a trace.RegWrite to tr
// (keyed by the wide register name, per the source's trace
// convention) when the wide slot's value actually changed.
func (s *State) WriteRegister(r asmfmt.Register, v uint16, tr *trace.Trace) {
	var slot int
	var newVal uint16
	switch {
	case r.Segment:
		slot = RegES + r.Index
		newVal = v
	case r.Size == 1 && r.Index < 4:
		slot = r.Index
		newVal = (s.Regs[slot] &^ 0x00FF) | (v & 0xFF)
	case r.Size == 1:
		slot = r.Index - 4
		newVal = (s.Regs[slot] &^ 0xFF00) | ((v & 0xFF) << 8)
	default:
		slot = r.Index
		newVal = v
	}
	old := s.Regs[slot]
	s.Regs[slot] = newVal
	if old != newVal {
		tr.Writes = append(tr.Writes, trace.RegWrite{Name: r.WideName(), Old: old, New: newVal})
	}
}

// Flag reports whether a single FLAGS bit is set.
func (s *State) Flag(mask uint16) bool {
	return s.Regs[RegFLAGS]&mask != 0
}

func (s *State) setFlag(mask uint16, v bool) {
	if v {
		s.Regs[RegFLAGS] |= mask
	} else {
		s.Regs[RegFLAGS] &^= mask
	}
}

func (s *State) setArithFlags(cf, of, zf, sf, af, pf bool) {
	s.setFlag(cpu.FlagCF, cf)
	s.setFlag(cpu.FlagOF, of)
	s.setFlag(cpu.FlagZF, zf)
	s.setFlag(cpu.FlagSF, sf)
	s.setFlag(cpu.FlagAF, af)
	s.setFlag(cpu.FlagPF, pf)
}

func (s *State) setLogicFlags(zf, sf, pf bool) {
	s.setFlag(cpu.FlagCF, false)
	s.setFlag(cpu.FlagOF, false)
	s.setFlag(cpu.FlagZF, zf)
	s.setFlag(cpu.FlagSF, sf)
	s.setFlag(cpu.FlagPF, pf)
}
