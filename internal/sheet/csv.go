package sheet

import (
	"context"
	"encoding/csv"
	"os"

	"github.com/IslamTayeb/job-sheet-tracker/internal/errs"
	"github.com/IslamTayeb/job-sheet-tracker/internal/types"
)

// CSVStore keeps the tracking sheet in a local CSV file with the same
// four-column layout as the Google Sheet. Used when no spreadsheet id
// is configured.
type CSVStore struct {
	path string
}

func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

func (s *CSVStore) Path() string { return s.path }

// LoadExisting reads all rows from the file. A missing file means an
// empty sheet, not an error.
func (s *CSVStore) LoadExisting(ctx context.Context) ([]types.JobRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.Service(err, "open CSV file")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errs.Service(err, "read CSV file")
	}

	var records []types.JobRecord
	for _, row := range rows {
		if rec, ok := rowToRecord(row); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// AppendRow appends one row to the file, creating it if needed.
func (s *CSVStore) AppendRow(ctx context.Context, rec types.JobRecord) error {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errs.Persistence(err, "open CSV file")
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(recordToRow(rec)); err != nil {
		return errs.Persistence(err, "write CSV row")
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return errs.Persistence(err, "flush CSV row")
	}
	return nil
}
