package sheet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/IslamTayeb/job-sheet-tracker/internal/errs"
	"github.com/IslamTayeb/job-sheet-tracker/internal/types"
)

const sheetsAPIBase = "https://sheets.googleapis.com"

// valueRange mirrors the Sheets values resource.
type valueRange struct {
	Range  string     `json:"range,omitempty"`
	Values [][]string `json:"values"`
}

// SheetsStore reads and appends rows of a Google Sheet through the
// values REST endpoints. The HTTP client is expected to carry
// authentication (an oauth2 token source).
type SheetsStore struct {
	spreadsheetID string
	readRange     string
	apiBase       string
	httpClient    *http.Client
}

// NewSheetsStore builds a store for one spreadsheet. client must be
// authorized for the spreadsheets scope.
func NewSheetsStore(client *http.Client, spreadsheetID, readRange string) *SheetsStore {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if readRange == "" {
		readRange = "Sheet1"
	}
	return &SheetsStore{
		spreadsheetID: spreadsheetID,
		readRange:     readRange,
		apiBase:       sheetsAPIBase,
		httpClient:    client,
	}
}

// URL returns the browser link to the spreadsheet.
func (s *SheetsStore) URL() string {
	return "https://docs.google.com/spreadsheets/d/" + s.spreadsheetID + "/edit"
}

// LoadExisting reads all rows in the configured range. Rows that don't
// parse into a record are skipped.
func (s *SheetsStore) LoadExisting(ctx context.Context) ([]types.JobRecord, error) {
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s",
		s.apiBase, url.PathEscape(s.spreadsheetID), url.PathEscape(s.readRange))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	var vr valueRange
	if err := s.do(req, &vr); err != nil {
		return nil, errs.Service(err, "read existing sheet rows")
	}

	var records []types.JobRecord
	for _, row := range vr.Values {
		if rec, ok := rowToRecord(row); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// AppendRow appends one row in the fixed four-column order.
func (s *SheetsStore) AppendRow(ctx context.Context, rec types.JobRecord) error {
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s:append?valueInputOption=RAW&insertDataOption=INSERT_ROWS",
		s.apiBase, url.PathEscape(s.spreadsheetID), url.PathEscape(s.readRange))

	body, err := json.Marshal(valueRange{Values: [][]string{recordToRow(rec)}})
	if err != nil {
		return fmt.Errorf("marshal row: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err := s.do(req, nil); err != nil {
		return errs.Persistence(err, "append sheet row")
	}
	return nil
}

func (s *SheetsStore) do(req *http.Request, out any) error {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sheets request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sheets API status %d: %s", resp.StatusCode, body)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode sheets response: %w", err)
		}
	}
	return nil
}
