package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IslamTayeb/job-sheet-tracker/internal/errs"
	"github.com/IslamTayeb/job-sheet-tracker/internal/types"
)

// stubCompleter returns a canned completion (or error) regardless of
// the prompt.
type stubCompleter struct {
	response string
	err      error
	prompts  []string
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.response, s.err
}

var rejectionMsg = types.RawMessage{
	ID:      "101",
	From:    "recruiting@acme.example",
	Subject: "Your application to Acme Corp",
	Date:    time.Date(2026, 4, 2, 10, 30, 0, 0, time.UTC),
	Body:    "Unfortunately, we will not be moving forward with your application for Backend Engineer.",
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name       string
		response   string
		expectRec  *types.JobRecord
		expectFail bool
	}{
		{
			name:     "rejection email yields status rejected",
			response: "```json\n{\"position\": \"Backend Engineer\", \"company\": \"Acme Corp\", \"status\": 0}\n```",
			expectRec: &types.JobRecord{
				Date:     rejectionMsg.Date,
				Position: "Backend Engineer",
				Company:  "Acme Corp",
				Status:   types.StatusRejected,
			},
		},
		{
			name:     "application confirmation",
			response: `{"position": "Backend Engineer", "company": "Acme Corp", "status": 1}`,
			expectRec: &types.JobRecord{
				Date:     rejectionMsg.Date,
				Position: "Backend Engineer",
				Company:  "Acme Corp",
				Status:   types.StatusApplied,
			},
		},
		{
			name:     "status as keyword string",
			response: `{"position": "Data Engineer", "company": "Globex", "status": "interview"}`,
			expectRec: &types.JobRecord{
				Date:     rejectionMsg.Date,
				Position: "Data Engineer",
				Company:  "Globex",
				Status:   types.StatusInterview,
			},
		},
		{
			name:     "explicit date overrides message date",
			response: `{"position": "SRE", "company": "Initech", "status": 2, "date": "03/15/26"}`,
			expectRec: &types.JobRecord{
				Date:     time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
				Position: "SRE",
				Company:  "Initech",
				Status:   types.StatusAssessment,
			},
		},
		{
			name:     "json surrounded by prose",
			response: "Here is the result:\n{\"position\": \"SWE\", \"company\": \"Acme\", \"status\": 1}\nLet me know if you need anything else.",
			expectRec: &types.JobRecord{
				Date:     rejectionMsg.Date,
				Position: "SWE",
				Company:  "Acme",
				Status:   types.StatusApplied,
			},
		},
		{
			name:       "unknown position",
			response:   `{"position": "UNKNOWN", "company": "Acme Corp", "status": 1}`,
			expectFail: true,
		},
		{
			name:       "unknown company",
			response:   `{"position": "SWE", "company": "unknown", "status": 1}`,
			expectFail: true,
		},
		{
			name:       "empty fields",
			response:   `{"position": "  ", "company": "", "status": 1}`,
			expectFail: true,
		},
		{
			name:       "status out of range",
			response:   `{"position": "SWE", "company": "Acme", "status": 9}`,
			expectFail: true,
		},
		{
			name:       "status missing",
			response:   `{"position": "SWE", "company": "Acme"}`,
			expectFail: true,
		},
		{
			name:       "not json at all",
			response:   "this email is not about a job application",
			expectFail: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := New(&stubCompleter{response: tt.response})

			res, err := ex.Extract(context.Background(), rejectionMsg)
			require.NoError(t, err)

			if tt.expectFail {
				assert.False(t, res.Parsed())
				assert.NotEmpty(t, res.Reason)
				return
			}
			require.True(t, res.Parsed(), "reason: %s", res.Reason)
			assert.Equal(t, *tt.expectRec, res.Record)
		})
	}
}

func TestExtractAppliedScenario(t *testing.T) {
	msg := types.RawMessage{
		ID:      "55",
		From:    "jobs@acme.example",
		Subject: "Thank you for applying",
		Date:    time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC),
		Body:    "Thank you for applying to Acme Corp for the Backend Engineer role",
	}
	ex := New(&stubCompleter{response: `{"position": "Backend Engineer", "company": "Acme Corp", "status": 1}`})

	res, err := ex.Extract(context.Background(), msg)
	require.NoError(t, err)
	require.True(t, res.Parsed())
	assert.Equal(t, "Backend Engineer", res.Record.Position)
	assert.Equal(t, "Acme Corp", res.Record.Company)
	assert.Equal(t, types.StatusApplied, res.Record.Status)
}

func TestExtractIdempotent(t *testing.T) {
	// A deterministic model stub must produce the same result variant
	// on replay.
	stub := &stubCompleter{response: `{"position": "SWE", "company": "Acme", "status": 1}`}
	ex := New(stub)

	first, err := ex.Extract(context.Background(), rejectionMsg)
	require.NoError(t, err)
	second, err := ex.Extract(context.Background(), rejectionMsg)
	require.NoError(t, err)

	assert.Equal(t, first.Parsed(), second.Parsed())
	assert.Equal(t, first, second)
}

func TestExtractServiceError(t *testing.T) {
	ex := New(&stubCompleter{err: errs.Service(errors.New("connection reset"), "call language model")})

	_, err := ex.Extract(context.Background(), rejectionMsg)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindService))
}

func TestExtractPromptContents(t *testing.T) {
	stub := &stubCompleter{response: `{"position": "SWE", "company": "Acme", "status": 1}`}
	ex := New(stub)

	_, err := ex.Extract(context.Background(), rejectionMsg)
	require.NoError(t, err)
	require.Len(t, stub.prompts, 1)

	prompt := stub.prompts[0]
	assert.Contains(t, prompt, rejectionMsg.Subject)
	assert.Contains(t, prompt, rejectionMsg.From)
	assert.Contains(t, prompt, rejectionMsg.Body)
}

func TestParseDate(t *testing.T) {
	def := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{name: "empty falls back", input: "", expected: def},
		{name: "garbage falls back", input: "soon", expected: def},
		{name: "sheet layout", input: "04/02/26 10:30", expected: time.Date(2026, 4, 2, 10, 30, 0, 0, time.UTC)},
		{name: "short date", input: "04/02/26", expected: time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)},
		{name: "iso date", input: "2026-04-02", expected: time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseDate(tt.input, def))
		})
	}
}
