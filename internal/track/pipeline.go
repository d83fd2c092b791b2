package track

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/IslamTayeb/job-sheet-tracker/internal/dedupe"
	"github.com/IslamTayeb/job-sheet-tracker/internal/sheet"
	"github.com/IslamTayeb/job-sheet-tracker/internal/types"
)

// Source yields the n most recent mailbox messages, newest first.
type Source interface {
	FetchRecent(ctx context.Context, n int) ([]types.RawMessage, error)
}

// Extractor turns one message into a validated record or an
// unparseable result. A returned error means the model service itself
// failed for this message.
type Extractor interface {
	Extract(ctx context.Context, msg types.RawMessage) (types.ExtractionResult, error)
}

// Resolver solicits a manual record from the operator when extraction
// could not produce one. ok=false means the operator declined.
type Resolver interface {
	Resolve(msg types.RawMessage, reason string) (types.JobRecord, bool)
}

// Pipeline sequences source -> extractor -> resolver -> dedup -> sheet
// for each message, one at a time. Per-message failures are recorded
// and the run continues; only startup failures abort it.
type Pipeline struct {
	source    Source
	extractor Extractor
	resolver  Resolver
	store     sheet.Store
	out       io.Writer
}

func New(source Source, extractor Extractor, resolver Resolver, store sheet.Store) *Pipeline {
	return &Pipeline{
		source:    source,
		extractor: extractor,
		resolver:  resolver,
		store:     store,
		out:       os.Stdout,
	}
}

// SetOutput redirects progress output (used by tests).
func (p *Pipeline) SetOutput(w io.Writer) { p.out = w }

// Run processes up to n recent messages and returns the run report.
// Cancellation is honored at message boundaries: the in-flight message
// finishes, then the run stops.
func (p *Pipeline) Run(ctx context.Context, n int) (*Report, error) {
	report := newReport()

	existing, err := p.store.LoadExisting(ctx)
	if err != nil {
		return nil, fmt.Errorf("load existing records: %w", err)
	}
	index := dedupe.NewIndex(existing)

	messages, err := p.source.FetchRecent(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}
	if len(messages) == 0 {
		fmt.Fprintln(p.out, "No messages found.")
		return report, nil
	}

	fmt.Fprintf(p.out, "Processing %d messages...\n", len(messages))

	for i, msg := range messages {
		if ctx.Err() != nil {
			report.recordError("run aborted after %d of %d messages", i, len(messages))
			break
		}
		fmt.Fprintf(p.out, "Processing message %d/%d...\n", i+1, len(messages))
		report.Processed++
		p.processOne(ctx, msg, index, report)
	}

	return report, nil
}

func (p *Pipeline) processOne(ctx context.Context, msg types.RawMessage, index *dedupe.Index, report *Report) {
	res, err := p.extractor.Extract(ctx, msg)
	if err != nil {
		report.recordError("message %s (%q): %v", msg.ID, msg.Subject, err)
		return
	}

	rec := res.Record
	if !res.Parsed() {
		if p.resolver == nil {
			report.SkippedUnresolved++
			return
		}
		manual, ok := p.resolver.Resolve(msg, res.Reason)
		if !ok {
			fmt.Fprintln(p.out, "Skipping email with missing information")
			report.SkippedUnresolved++
			return
		}
		rec = manual
		report.ManuallyEntered++
	}

	// Final gate: partially-filled records never reach the sheet.
	if err := rec.Validate(); err != nil {
		report.recordError("message %s produced an invalid record: %v", msg.ID, err)
		return
	}

	if dedupe.IsDuplicate(rec, index) {
		fmt.Fprintf(p.out, "Skipping duplicate: %s at %s\n", rec.Position, rec.Company)
		report.SkippedDuplicate++
		return
	}

	if err := p.store.AppendRow(ctx, rec); err != nil {
		report.recordError("append %s at %s: %v", rec.Position, rec.Company, err)
		return
	}

	index.Add(rec)
	report.recordAppend(rec)
	fmt.Fprintf(p.out, "Added: %s at %s - Status: %d (%s)\n", rec.Position, rec.Company, int(rec.Status), rec.Status)
}
