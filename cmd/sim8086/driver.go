package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/MooOfDoom/sim8086/internal/asmfmt"
	"github.com/MooOfDoom/sim8086/internal/decode"
	"github.com/MooOfDoom/sim8086/internal/sim"
	"github.com/MooOfDoom/sim8086/internal/trace"
)

// runDisasm implements the disassembly output contract of §6: a
// header, `bits 16`, one rendered instruction per line, and a trailing
// `; Failed beyond this point` if decoding aborts early.
func runDisasm(out io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "; %s\n", path)
	fmt.Fprintln(out, "bits 16")

	dec := decode.New(data)
	for {
		inst, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(out, "; Failed beyond this point")
			return nil
		}
		fmt.Fprintln(out, inst.String())
	}
}

// runExec implements the execution output contract of §6: a header,
// one trace line per executed instruction, then the final-register
// summary. Decode/execution errors and the step-cap guard are reported
// but do not stop the final-register dump from printing.
func runExec(out io.Writer, path string, base, stepCap int, dump, useColor bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	state := sim.NewState()
	if err := state.LoadProgram(data, base); err != nil {
		return err
	}

	fmt.Fprintf(out, "--- %s execution ---\n", path)
	engine := sim.NewEngine(state, stepCap)

	_, runErr := engine.Run(func(inst *asmfmt.Instruction, tr trace.Trace) {
		fmt.Fprintf(out, "%s ; %s\n", inst.String(), tr.String(useColor))
	})

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Final registers:")
	printFinalRegisters(out, state)

	if runErr != nil && !errors.Is(runErr, io.EOF) {
		fmt.Fprintln(os.Stderr, runErr)
	}

	if dump {
		if err := writeDump(path, state); err != nil {
			return err
		}
	}
	return nil
}

var finalRegOrder = []struct {
	name string
	slot int
}{
	{"ax", sim.RegAX}, {"bx", sim.RegBX}, {"cx", sim.RegCX}, {"dx", sim.RegDX},
	{"sp", sim.RegSP}, {"bp", sim.RegBP}, {"si", sim.RegSI}, {"di", sim.RegDI},
	{"es", sim.RegES}, {"cs", sim.RegCS}, {"ss", sim.RegSS}, {"ds", sim.RegDS},
}

func printFinalRegisters(out io.Writer, state *sim.State) {
	for _, r := range finalRegOrder {
		v := state.Regs[r.slot]
		if v != 0 {
			fmt.Fprintf(out, "      %s: 0x%04x (%d)\n", r.name, v, v)
		}
	}
	ip := state.Regs[sim.RegIP]
	fmt.Fprintf(out, "      ip: 0x%04x (%d)\n", ip, ip)
	if flags := state.Regs[sim.RegFLAGS]; flags != 0 {
		fmt.Fprintf(out, "   flags: %s\n", trace.FlagLetters(flags))
	}
}
