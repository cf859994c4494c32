/* Released under an MIT-style license. See LICENSE. */

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/docopt/docopt-go"
	"github.com/mattn/go-isatty"
)

const usage = `unlambda

Usage:
  unlambda [-v LEVEL] [-u] [SCRIPT]
  unlambda -h

Arguments:
  SCRIPT  Path to an Unlambda source file. Read from stdin if omitted.

Options:
  -v, --verbose=LEVEL   Diagnostic level: 0 (none, default), 1 (run-end
                        stats), 2 (+major-GC logs), 3 (+minor-GC logs).
  -u, --unbuffered      Write stdout unbuffered (one DOT, one write).
  -h, --help            Display this help.
`

// Options is the parsed command line. Verbose and Unbuffered feed the
// evaluator/diagnostics; Script names the program file, empty meaning
// "read from stdin".
type Options struct {
	Script     string
	Verbose    int
	Unbuffered bool
}

// ParseOptions parses argv (excluding the program name) with docopt, the
// way the teacher's internal/system/options package parses the shell's
// own argv, and resolves the unbuffered default through go-isatty
// exactly as that package resolves its own interactive default: an
// interactive stdout defaults to unbuffered, a redirected/piped one
// defaults to buffered, and --unbuffered forces the unbuffered behavior
// regardless.
func ParseOptions(argv []string) (*Options, error) {
	parsed, err := docopt.ParseArgs(usage, argv, "")
	if err != nil {
		return nil, err
	}

	opts := &Options{}

	script, _ := parsed.String("SCRIPT")
	opts.Script = script

	level, _ := parsed.String("--verbose")
	if level == "" {
		level = "0"
	}
	n, err := strconv.Atoi(level)
	if err != nil || n < 0 || n > 3 {
		return nil, fmt.Errorf("unlambda: --verbose must be 0, 1, 2, or 3")
	}
	opts.Verbose = n

	unbuffered, _ := parsed.Bool("--unbuffered")
	opts.Unbuffered = unbuffered || isatty.IsTerminal(os.Stdout.Fd())

	return opts, nil
}
