package resolve

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/IslamTayeb/job-sheet-tracker/internal/dedupe"
	"github.com/IslamTayeb/job-sheet-tracker/internal/types"
)

// Resolver asks the operator to enter a record by hand when automatic
// extraction could not produce one. It blocks on console input.
type Resolver struct {
	in  *bufio.Scanner
	out io.Writer
}

func New(in io.Reader, out io.Writer) *Resolver {
	return &Resolver{in: bufio.NewScanner(in), out: out}
}

const dateLayout = "01/02/06"

// Resolve shows the message and the extraction failure, then prompts
// for each field. Invalid input is re-prompted; entering 'n' at any
// prompt declines the message. Returns ok=false when declined or when
// input is exhausted.
func (r *Resolver) Resolve(msg types.RawMessage, reason string) (types.JobRecord, bool) {
	fmt.Fprintf(r.out, "\nUnable to extract info from email:\n")
	fmt.Fprintf(r.out, "  From:    %s\n", msg.From)
	fmt.Fprintf(r.out, "  Subject: %s\n", msg.Subject)
	fmt.Fprintf(r.out, "  Reason:  %s\n", reason)

	position, ok := r.promptNonEmpty("Enter position (or 'n' to skip): ")
	if !ok {
		return types.JobRecord{}, false
	}
	company, ok := r.promptNonEmpty("Enter company (or 'n' to skip): ")
	if !ok {
		return types.JobRecord{}, false
	}
	status, ok := r.promptStatus()
	if !ok {
		return types.JobRecord{}, false
	}
	date, ok := r.promptDate(msg.Date)
	if !ok {
		return types.JobRecord{}, false
	}

	return types.JobRecord{
		Date:     date,
		Position: position,
		Company:  company,
		Status:   status,
	}, true
}

// readLine returns the next input line, or ok=false on EOF.
func (r *Resolver) readLine() (string, bool) {
	if !r.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(r.in.Text()), true
}

func skip(line string) bool {
	return strings.EqualFold(line, "n")
}

func (r *Resolver) promptNonEmpty(prompt string) (string, bool) {
	for {
		fmt.Fprint(r.out, prompt)
		line, ok := r.readLine()
		if !ok {
			return "", false
		}
		if skip(line) {
			return "", false
		}
		if cleaned := dedupe.CleanText(line); cleaned != "" {
			return cleaned, true
		}
		fmt.Fprintln(r.out, "Value cannot be empty.")
	}
}

func (r *Resolver) promptStatus() (types.Status, bool) {
	for {
		fmt.Fprint(r.out, "Enter status [0=rejected 1=applied 2=assessment 3=interview] (or 'n' to skip): ")
		line, ok := r.readLine()
		if !ok {
			return 0, false
		}
		if skip(line) {
			return 0, false
		}
		status, err := types.ParseStatus(line)
		if err != nil {
			fmt.Fprintf(r.out, "Invalid status: %v\n", err)
			continue
		}
		return status, true
	}
}

func (r *Resolver) promptDate(def time.Time) (time.Time, bool) {
	for {
		fmt.Fprintf(r.out, "Enter date MM/DD/YY (blank for %s, 'n' to skip): ", def.Format(dateLayout))
		line, ok := r.readLine()
		if !ok {
			return time.Time{}, false
		}
		if skip(line) {
			return time.Time{}, false
		}
		if line == "" {
			return def, true
		}
		t, err := time.Parse(dateLayout, line)
		if err != nil {
			fmt.Fprintln(r.out, "Invalid date, expected MM/DD/YY.")
			continue
		}
		return t, true
	}
}
