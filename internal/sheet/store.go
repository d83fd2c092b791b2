package sheet

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/IslamTayeb/job-sheet-tracker/internal/types"
)

// Store is the spreadsheet collaborator. LoadExisting is called once
// at run start; AppendRow appends exactly one row per call and performs
// no existence check of its own (deduplication happens upstream).
type Store interface {
	LoadExisting(ctx context.Context) ([]types.JobRecord, error)
	AppendRow(ctx context.Context, rec types.JobRecord) error
}

// RowDateLayout is how dates are written into the sheet.
const RowDateLayout = "01/02/06 15:04"

// recordToRow renders a record in the fixed column order
// {date, position, company, status code}.
func recordToRow(rec types.JobRecord) []string {
	return []string{
		rec.Date.Format(RowDateLayout),
		rec.Position,
		rec.Company,
		strconv.Itoa(int(rec.Status)),
	}
}

// rowToRecord parses one sheet row leniently: rows missing position or
// company are dropped (ok=false); a bad date or status still yields a
// record usable for duplicate lookups.
func rowToRecord(row []string) (types.JobRecord, bool) {
	if len(row) < 3 {
		return types.JobRecord{}, false
	}

	rec := types.JobRecord{
		Position: strings.TrimSpace(row[1]),
		Company:  strings.TrimSpace(row[2]),
		Status:   types.StatusApplied,
	}
	if rec.Position == "" || rec.Company == "" {
		return types.JobRecord{}, false
	}

	for _, layout := range []string{RowDateLayout, "01/02/06", "01/02/2006", "2006-01-02"} {
		if t, err := time.Parse(layout, strings.TrimSpace(row[0])); err == nil {
			rec.Date = t
			break
		}
	}

	if len(row) >= 4 {
		if status, err := types.ParseStatus(row[3]); err == nil {
			rec.Status = status
		}
	}

	return rec, true
}
