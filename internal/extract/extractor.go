package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/IslamTayeb/job-sheet-tracker/internal/dedupe"
	"github.com/IslamTayeb/job-sheet-tracker/internal/types"
)

// Completer is the language-model collaborator: one prompt in, one
// free-form completion out.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Extractor turns one raw message into a validated record, or explains
// why it could not. Field values from the model are never trusted
// blindly; every field passes local validation or the whole message is
// reported unparseable.
type Extractor struct {
	llm Completer
}

func New(llm Completer) *Extractor {
	return &Extractor{llm: llm}
}

// unknownSentinel is what the prompt tells the model to answer for
// fields it cannot determine.
const unknownSentinel = "UNKNOWN"

const promptTemplate = `Extract the job position I applied to and the company from this email. Include any ID numbers in the position. If a field cannot be determined, return "UNKNOWN" for it. If more than one company is mentioned and one is a subsidiary of the other, put the parent company first and the subsidiary after it in square brackets. Put status as 0 if it's a rejection email, 1 if I've just applied, 2 if it's an online assessment or general screening survey, and 3 if it's an interview. Optionally include a "date" key (MM/DD/YY) if the email states an application date. Format the response as JSON with these exact keys: "position", "company", and "status", inside a code block. Ignore promotional emails and emails that don't contain job information, even if they mention companies (e.g. news articles ABOUT the job market); for those return "UNKNOWN" for both position and company.

Email content:
Subject: %s
From: %s
Body: %s`

// Extract runs one model call plus local validation.
// A transport failure is returned as an error (service kind); every
// other shortfall is an Unparseable result.
func (e *Extractor) Extract(ctx context.Context, msg types.RawMessage) (types.ExtractionResult, error) {
	prompt := fmt.Sprintf(promptTemplate, msg.Subject, msg.From, msg.Body)

	response, err := e.llm.Complete(ctx, prompt)
	if err != nil {
		return types.ExtractionResult{}, err
	}

	var raw struct {
		Position string `json:"position"`
		Company  string `json:"company"`
		Status   any    `json:"status"`
		Date     string `json:"date"`
	}
	if err := json.Unmarshal([]byte(extractJSON(response)), &raw); err != nil {
		return types.Unparseable("model response was not valid JSON"), nil
	}

	position := dedupe.CleanText(raw.Position)
	company := dedupe.CleanText(raw.Company)
	if position == "" || strings.EqualFold(position, unknownSentinel) {
		return types.Unparseable("position could not be determined"), nil
	}
	if company == "" || strings.EqualFold(company, unknownSentinel) {
		return types.Unparseable("company could not be determined"), nil
	}

	status, err := parseStatusValue(raw.Status)
	if err != nil {
		return types.Unparseable(fmt.Sprintf("invalid status: %v", err)), nil
	}

	date := parseDate(raw.Date, msg.Date)

	rec := types.JobRecord{
		Date:     date,
		Position: position,
		Company:  company,
		Status:   status,
	}
	if err := rec.Validate(); err != nil {
		return types.Unparseable(err.Error()), nil
	}
	return types.Extracted(rec), nil
}

// parseStatusValue accepts the status however the model encoded it:
// a JSON number or a string holding a code or keyword.
func parseStatusValue(v any) (types.Status, error) {
	switch s := v.(type) {
	case float64:
		status := types.Status(int(s))
		if !status.Valid() {
			return 0, fmt.Errorf("status code %d out of range", int(s))
		}
		return status, nil
	case string:
		return types.ParseStatus(s)
	case nil:
		return 0, fmt.Errorf("missing status")
	default:
		return 0, fmt.Errorf("unexpected status type %T", v)
	}
}

// parseDate tries the sheet date formats and falls back to the
// message's received date.
func parseDate(s string, def time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	for _, layout := range []string{"01/02/06 15:04", "01/02/06", "01/02/2006", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return def
}

// extractJSON pulls the JSON object out of a completion that may wrap
// it in prose or a markdown code block.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	if start == -1 {
		return text
	}
	end := strings.LastIndex(text, "}")
	if end == -1 || end <= start {
		return text
	}
	return text[start : end+1]
}
