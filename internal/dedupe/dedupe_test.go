package dedupe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/IslamTayeb/job-sheet-tracker/internal/types"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "already clean", input: "Acme Corp", expected: "Acme Corp"},
		{name: "surrounding whitespace", input: "  Acme Corp  ", expected: "Acme Corp"},
		{name: "internal runs", input: "Acme \t  Corp", expected: "Acme Corp"},
		{name: "non-breaking space", input: "Acme Corp", expected: "Acme Corp"},
		{name: "newlines", input: "Acme\nCorp", expected: "Acme Corp"},
		{name: "empty", input: "   ", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanText(tt.input))
		})
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		name           string
		companyA, posA string
		companyB, posB string
		expectSame     bool
	}{
		{name: "identical", companyA: "Acme", posA: "SWE", companyB: "Acme", posB: "SWE", expectSame: true},
		{name: "case differs", companyA: "ACME", posA: "swe", companyB: "acme", posB: "SWE", expectSame: true},
		{name: "whitespace differs", companyA: " Acme  Corp ", posA: "Backend  Engineer", companyB: "Acme Corp", posB: "Backend Engineer", expectSame: true},
		{name: "different company", companyA: "Acme", posA: "SWE", companyB: "Globex", posB: "SWE", expectSame: false},
		{name: "different position", companyA: "Acme", posA: "SWE", companyB: "Acme", posB: "SRE", expectSame: false},
		{name: "no field crosstalk", companyA: "Acme SWE", posA: "", companyB: "Acme", posB: "SWE", expectSame: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Key(tt.companyA, tt.posA)
			b := Key(tt.companyB, tt.posB)
			if tt.expectSame {
				assert.Equal(t, a, b)
			} else {
				assert.NotEqual(t, a, b)
			}
		})
	}
}

func TestIsDuplicate(t *testing.T) {
	existing := []types.JobRecord{
		{Date: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), Position: "Backend Engineer", Company: "Acme Corp", Status: types.StatusApplied},
	}
	ix := NewIndex(existing)

	// Same key with different status and date is still a duplicate:
	// the key deliberately ignores both.
	update := types.JobRecord{
		Date:     time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC),
		Position: "backend   engineer",
		Company:  "ACME CORP",
		Status:   types.StatusInterview,
	}
	assert.True(t, IsDuplicate(update, ix))

	fresh := types.JobRecord{Position: "Backend Engineer", Company: "Globex", Status: types.StatusApplied}
	assert.False(t, IsDuplicate(fresh, ix))

	ix.Add(fresh)
	assert.True(t, IsDuplicate(fresh, ix))
	assert.Equal(t, 2, ix.Len())
}
