// Command sim8086 disassembles or executes a raw 8086 opcode stream.
// It is the "external collaborator" spec.md deliberately keeps out of
// the core: flag parsing, file loading, and the two text drivers.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/MooOfDoom/sim8086/internal/asmfmt"
	"github.com/lunixbochs/fvbommel-util/sortorder"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/shibukawa/configdir"
)

const defaultStepCap = 1_000_000

func main() {
	fs := flag.NewFlagSet("sim8086", flag.ExitOnError)
	dump := fs.Bool("dump", false, "write the memory buffer to dump_<path>.data on exit")
	disasmPath := fs.String("disasm", "", "disassemble the named file")
	execPath := fs.String("exec", "", "execute the named file")
	base := fs.Uint("base", 0, "load offset into the 1 MiB memory")
	steps := fs.Int("steps", stepCapFromConfig(), "step cap bounding execution")
	listMnemonics := fs.Bool("mnemonics", false, "list every recognized mnemonic and exit")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-dump] -disasm <file>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s [-dump] -exec <file> [-base 0x1000] [-steps N]\n", os.Args[0])
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[1:])

	if *listMnemonics {
		printMnemonics(os.Stdout)
		return
	}

	if (*disasmPath == "") == (*execPath == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -disasm or -exec is required")
		fs.Usage()
		os.Exit(1)
	}

	useColor := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	out := colorableStdout(useColor)
	var err error
	if *disasmPath != "" {
		err = runDisasm(out, *disasmPath)
	} else {
		err = runExec(out, *execPath, int(*base), *steps, *dump, useColor)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// colorableStdout wraps stdout so ANSI codes render on Windows
// consoles too and are stripped entirely when stdout isn't a
// terminal, mirroring the common go-isatty/go-colorable pairing that
// github.com/mgutz/ansi (already in this module's dependency graph)
// leaves to its caller to perform.
func colorableStdout(useColor bool) io.Writer {
	if useColor {
		return colorable.NewColorableStdout()
	}
	return colorable.NewNonColorable(os.Stdout)
}

// stepCapFromConfig looks for a "step-cap" file in the platform config
// cache directory (grounded on the teacher's own configdir.QueryCacheFolder
// use in go/ui/repl.go and go/lua/repl.go for a history-file path) and
// uses it to override the compiled-in default step cap.
func stepCapFromConfig() int {
	dirs := configdir.New("sim8086", "sim8086")
	cacheDir := dirs.QueryCacheFolder()
	if cacheDir == nil {
		return defaultStepCap
	}
	data, err := os.ReadFile(filepath.Join(cacheDir.Path, "step-cap"))
	if err != nil {
		return defaultStepCap
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || n <= 0 {
		return defaultStepCap
	}
	return n
}

func printMnemonics(w io.Writer) {
	names := asmfmt.AllMnemonics()
	sort.Slice(names, func(i, j int) bool { return sortorder.NaturalLess(names[i], names[j]) })
	for _, n := range names {
		fmt.Fprintln(w, n)
	}
}
