package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/MooOfDoom/sim8086/internal/sim"
)

// writeDump persists the full 1 MiB memory buffer raw, named after the
// executed file, per §6's "-dump in exec mode" contract.
func writeDump(path string, state *sim.State) error {
	name := fmt.Sprintf("dump_%s.data", filepath.Base(path))
	return os.WriteFile(name, state.Mem[:], 0o644)
}
