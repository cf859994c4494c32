/* Released under an MIT-style license. See LICENSE. */

package main

import (
	"bufio"
	"fmt"
	"os"
	"time"
)

func main() {
	opts, err := ParseOptions(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	os.Exit(run(opts))
}

// run wires the parsed options to a heap, parser, and evaluator, and
// translates a fatal panic into the interpreter's one error-reporting
// convention: a single "unlambda: <message>" line on stderr and a
// non-zero exit status. This mirrors the teacher's Task.Run, which
// wraps its own state-machine loop in exactly one top-level
// defer/recover rather than threading error returns through every
// state transition.
func run(opts *Options) (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "unlambda: %v\n", r)
			code = 1
		}
	}()

	program, rest, closeSource, err := openSource(opts.Script)
	if err != nil {
		panic(err)
	}
	defer closeSource()

	heap := NewHeap(DefaultYoungSize, DefaultChunkSize, opts.Verbose)
	parser := NewParser(heap, program)
	root := parser.Parse()

	out := bufio.NewWriter(os.Stdout)
	if opts.Unbuffered {
		out = bufio.NewWriterSize(os.Stdout, 1)
	}

	evaluator := NewEvaluator(heap, rest, out, opts.Verbose)

	start := time.Now()
	evaluator.Run(root)
	out.Flush()

	ReportStats(os.Stderr, opts.Verbose, heap.FinalizeStats(), time.Since(start))

	return 0
}

// openSource resolves the program text and the stream `@`/`?`/`|` read
// from afterward. When path is empty, both are the same bufio.Reader
// over stdin: the parser and the evaluator share one buffer, so bytes
// the parser's lookahead already buffered past the end of the program
// are exactly the bytes the evaluator sees first, matching the
// original's single-FILE*-with-pushback approach to program source. When
// path names a file, the program comes from that file and stdin is a
// wholly separate stream, untouched by parsing.
func openSource(path string) (program, rest *bufio.Reader, closeSource func() error, err error) {
	if path == "" {
		stdin := bufio.NewReader(os.Stdin)
		return stdin, stdin, func() error { return nil }, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, err
	}

	return bufio.NewReader(f), bufio.NewReader(os.Stdin), f.Close, nil
}
