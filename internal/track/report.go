package track

import (
	"fmt"
	"io"

	"github.com/IslamTayeb/job-sheet-tracker/internal/types"
)

// Report accumulates the outcome of one run. It is displayed at the
// end and then discarded.
type Report struct {
	Processed         int
	Appended          int
	SkippedDuplicate  int
	SkippedUnresolved int
	ManuallyEntered   int
	Errors            []string

	byStatus map[types.Status]int
}

func newReport() *Report {
	return &Report{byStatus: make(map[types.Status]int)}
}

func (r *Report) recordError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Report) recordAppend(rec types.JobRecord) {
	r.Appended++
	r.byStatus[rec.Status]++
}

// Print writes the run summary.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintf(w, "\n=== Run summary ===\n")
	fmt.Fprintf(w, "Processed:          %d\n", r.Processed)
	fmt.Fprintf(w, "Appended:           %d\n", r.Appended)
	fmt.Fprintf(w, "Skipped duplicates: %d\n", r.SkippedDuplicate)
	fmt.Fprintf(w, "Skipped unresolved: %d\n", r.SkippedUnresolved)
	fmt.Fprintf(w, "Manually entered:   %d\n", r.ManuallyEntered)

	if r.Appended > 0 {
		fmt.Fprintln(w, "\nAppended by status:")
		for _, s := range []types.Status{types.StatusRejected, types.StatusApplied, types.StatusAssessment, types.StatusInterview} {
			if n := r.byStatus[s]; n > 0 {
				fmt.Fprintf(w, "  %s: %d\n", s, n)
			}
		}
	}

	if len(r.Errors) > 0 {
		fmt.Fprintf(w, "\nErrors (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
	}
}
