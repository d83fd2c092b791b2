package mailbox

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"golang.org/x/oauth2"

	"github.com/IslamTayeb/job-sheet-tracker/internal/errs"
	"github.com/IslamTayeb/job-sheet-tracker/internal/types"
)

// Options configures the IMAP connection. Either AppPassword or
// TokenSource must be set; TokenSource wins when both are.
type Options struct {
	Host        string // host:port, e.g. imap.gmail.com:993
	Email       string
	AppPassword string
	TokenSource oauth2.TokenSource
}

// Source fetches recent messages from the INBOX over IMAP. It never
// writes to the mailbox; bodies are fetched with BODY.PEEK[] so
// messages are not marked seen.
type Source struct {
	opts Options
}

func New(opts Options) *Source {
	return &Source{opts: opts}
}

// FetchRecent returns up to n most recent INBOX messages, newest
// first, with bodies truncated to types.MaxBodyChars.
func (s *Source) FetchRecent(ctx context.Context, n int) ([]types.RawMessage, error) {
	c, err := client.DialTLS(s.opts.Host, &tls.Config{MinVersion: tls.VersionTLS12})
	if err != nil {
		return nil, errs.Service(err, "dial IMAP server %s", s.opts.Host)
	}
	defer c.Logout()

	// Close the connection if the run is aborted mid-fetch.
	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()

	if err := s.login(c); err != nil {
		return nil, err
	}

	mbox, err := c.Select("INBOX", true)
	if err != nil {
		return nil, errs.Service(err, "select INBOX")
	}
	if mbox.Messages == 0 {
		return nil, nil
	}

	from := uint32(1)
	if uint32(n) < mbox.Messages {
		from = mbox.Messages - uint32(n) + 1
	}
	seqset := new(imap.SeqSet)
	seqset.AddRange(from, mbox.Messages)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, imap.FetchInternalDate, section.FetchItem()}

	messages := make(chan *imap.Message, n)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, items, messages)
	}()

	var out []types.RawMessage
	for msg := range messages {
		out = append(out, convertMessage(msg, section))
	}
	if err := <-done; err != nil {
		return nil, errs.Service(err, "fetch messages")
	}

	// Fetch returns ascending sequence numbers; flip to newest first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (s *Source) login(c *client.Client) error {
	if s.opts.TokenSource != nil {
		tok, err := s.opts.TokenSource.Token()
		if err != nil {
			return errs.Service(err, "refresh OAuth token")
		}
		saslClient := sasl.NewOAuthBearerClient(&sasl.OAuthBearerOptions{
			Username: s.opts.Email,
			Token:    tok.AccessToken,
		})
		if err := c.Authenticate(saslClient); err != nil {
			return errs.Service(err, "IMAP OAuth authentication")
		}
		return nil
	}
	if err := c.Login(s.opts.Email, s.opts.AppPassword); err != nil {
		return errs.Service(err, "IMAP login")
	}
	return nil
}

func convertMessage(msg *imap.Message, section *imap.BodySectionName) types.RawMessage {
	raw := types.RawMessage{
		ID:   fmt.Sprintf("%d", msg.Uid),
		Date: msg.InternalDate,
	}

	if msg.Envelope != nil {
		if len(msg.Envelope.From) > 0 {
			raw.From = msg.Envelope.From[0].Address()
		}
		raw.Subject = msg.Envelope.Subject
		if !msg.Envelope.Date.IsZero() {
			raw.Date = msg.Envelope.Date
		}
	}

	if body := msg.GetBody(section); body != nil {
		raw.Body = truncate(extractTextBody(body), types.MaxBodyChars)
	}
	return raw
}

// extractTextBody walks the MIME parts and returns the first
// text/plain inline part, falling back to text/html as-is.
func extractTextBody(r io.Reader) string {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return ""
	}

	var htmlFallback string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		ct, _, _ := h.ContentType()
		switch {
		case strings.EqualFold(ct, "text/plain"):
			b, _ := io.ReadAll(p.Body)
			if len(b) > 0 {
				return string(b)
			}
		case strings.EqualFold(ct, "text/html") && htmlFallback == "":
			b, _ := io.ReadAll(p.Body)
			htmlFallback = string(b)
		}
	}
	return htmlFallback
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
