package sim

import "fmt"

// Kind names a way execution can fail. Unlike decode.Kind this is a
// single value: the source's execution engine has exactly one failure
// mode, an instruction the engine recognizes but never learned to run.
type Kind int

const (
	// UnimplementedExecution: the decoder produced this mnemonic but
	// the engine has no dispatch case for it.
	UnimplementedExecution Kind = iota
)

func (k Kind) String() string {
	return "unimplemented instruction"
}

// Error is the execution engine's fatal diagnostic, identifying the
// mnemonic that could not be run.
type Error struct {
	Kind     Kind
	Mnemonic string
	Address  uint32
}

func (e *Error) Error() string {
	return fmt.Sprintf("exec: %s %q at 0x%x", e.Kind, e.Mnemonic, e.Address)
}

// StepCapError reports that a run was aborted after hitting the
// engine's documented step cap rather than any decode or execution
// failure kind — spec.md scenario 5's bounded self-loop case.
type StepCapError struct {
	Cap int
}

func (e *StepCapError) Error() string {
	return fmt.Sprintf("execution aborted: exceeded step cap of %d instructions", e.Cap)
}

func errOutOfRange(base, n int) error {
	return fmt.Errorf("sim: load of %d bytes at offset 0x%x overruns %d-byte memory", n, base, MemSize)
}
