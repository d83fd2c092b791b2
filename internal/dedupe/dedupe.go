package dedupe

import (
	"strings"

	"github.com/IslamTayeb/job-sheet-tracker/internal/types"
)

// CleanText collapses runs of whitespace (including non-breaking
// spaces) into single spaces and trims the ends.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// Key builds the duplicate key for a (company, position) pair:
// case-folded, whitespace-collapsed. Status and date are deliberately
// excluded, so a later email updating the status of a tracked
// application still matches its original row.
func Key(company, position string) string {
	return strings.ToLower(CleanText(company)) + "|" + strings.ToLower(CleanText(position))
}

// Index is a snapshot of the (company, position) pairs already present
// in the sheet, loaded once per run.
type Index struct {
	keys map[string]struct{}
}

// NewIndex builds an index from previously persisted records.
func NewIndex(records []types.JobRecord) *Index {
	ix := &Index{keys: make(map[string]struct{}, len(records))}
	for _, r := range records {
		ix.keys[Key(r.Company, r.Position)] = struct{}{}
	}
	return ix
}

// Add registers a newly appended record so repeats later in the same
// run are caught.
func (ix *Index) Add(r types.JobRecord) {
	ix.keys[Key(r.Company, r.Position)] = struct{}{}
}

func (ix *Index) Len() int { return len(ix.keys) }

// IsDuplicate reports whether an entry with the same normalized
// (company, position) pair already exists.
func IsDuplicate(r types.JobRecord, ix *Index) bool {
	_, ok := ix.keys[Key(r.Company, r.Position)]
	return ok
}
