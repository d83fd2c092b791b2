package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Status is the application status code stored in the sheet.
type Status int

const (
	StatusRejected   Status = 0 // rejection email
	StatusApplied    Status = 1 // application confirmation
	StatusAssessment Status = 2 // online assessment / screening
	StatusInterview  Status = 3 // interview invitation
)

func (s Status) Valid() bool {
	return s >= StatusRejected && s <= StatusInterview
}

func (s Status) String() string {
	switch s {
	case StatusRejected:
		return "Rejected"
	case StatusApplied:
		return "Applied"
	case StatusAssessment:
		return "Assessment"
	case StatusInterview:
		return "Interview"
	default:
		return "Unknown"
	}
}

// ParseStatus maps a status code or keyword to a Status.
// Accepts the numeric codes 0-3 and case-insensitive keywords.
func ParseStatus(s string) (Status, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty status")
	}

	if n, err := strconv.Atoi(s); err == nil {
		st := Status(n)
		if !st.Valid() {
			return 0, fmt.Errorf("status code %d out of range", n)
		}
		return st, nil
	}

	switch {
	case strings.Contains(s, "reject"):
		return StatusRejected, nil
	case strings.Contains(s, "appli"):
		return StatusApplied, nil
	case strings.Contains(s, "assessment"), strings.Contains(s, "screening"), s == "oa":
		return StatusAssessment, nil
	case strings.Contains(s, "interview"):
		return StatusInterview, nil
	default:
		return 0, fmt.Errorf("unrecognized status %q", s)
	}
}

// MaxBodyChars caps the body text kept per message.
const MaxBodyChars = 50000

// RawMessage is one mailbox message as fetched. Immutable after fetch;
// Body is already truncated to MaxBodyChars.
type RawMessage struct {
	ID      string
	From    string
	Subject string
	Date    time.Time
	Body    string
}

// JobRecord is one validated job-application fact set, persisted as a
// sheet row in the column order {date, position, company, status}.
type JobRecord struct {
	Date     time.Time
	Position string
	Company  string
	Status   Status
}

// Validate reports whether all four fields hold usable values.
// Records failing this never reach the sheet.
func (r JobRecord) Validate() error {
	if strings.TrimSpace(r.Position) == "" {
		return fmt.Errorf("position is empty")
	}
	if strings.TrimSpace(r.Company) == "" {
		return fmt.Errorf("company is empty")
	}
	if !r.Status.Valid() {
		return fmt.Errorf("status code %d out of range", int(r.Status))
	}
	if r.Date.IsZero() {
		return fmt.Errorf("date is not set")
	}
	return nil
}

// ExtractionResult is the outcome of one extraction attempt: either a
// record that passed local validation, or a reason it could not.
type ExtractionResult struct {
	Record JobRecord
	Reason string
}

// Parsed reports whether the result carries a validated record.
func (r ExtractionResult) Parsed() bool { return r.Reason == "" }

// Extracted wraps a validated record.
func Extracted(rec JobRecord) ExtractionResult {
	return ExtractionResult{Record: rec}
}

// Unparseable marks the message as not confidently extractable.
func Unparseable(reason string) ExtractionResult {
	return ExtractionResult{Reason: reason}
}
