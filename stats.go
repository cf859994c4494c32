/* Released under an MIT-style license. See LICENSE. */

package main

import (
	"fmt"
	"io"
	"time"
)

// ReportStats writes the run-end diagnostic line for verbosity level 1
// and above. Levels 2 and 3 print their own per-collection lines
// directly from gc.go as each collection runs; this is only the summary
// printed once, after the evaluator reaches EXIT.
func ReportStats(w io.Writer, verbosity int, stats Stats, elapsed time.Duration) {
	if verbosity < 1 {
		return
	}

	fmt.Fprintf(w, "unlambda: %d minor gc, %d major gc, %d chunks, %d cells promoted, %d/%d old cells live, %s\n",
		stats.MinorCollections,
		stats.MajorCollections,
		stats.ChunksAllocated,
		stats.CellsPromoted,
		stats.OldLive,
		stats.OldTotal,
		elapsed)
}
