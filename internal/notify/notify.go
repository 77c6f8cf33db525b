// Package notify emails deadline-change digests after a tracking run.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"conftrack/internal/record"
	"conftrack/internal/track"
)

// Change pairs a conference with what a run changed about it.
type Change struct {
	Conference string
	Set        track.ChangeSet
	// Deadline is the current deadline, shown for new conferences.
	Deadline record.Deadline
}

// Notifier sends change digests over SMTP. An unconfigured notifier
// (missing host, sender, or recipient) skips sending rather than
// failing the run.
type Notifier struct {
	Host     string
	Port     int
	From     string
	Password string
	To       string

	logger *zap.Logger

	// send is swapped in tests.
	send func(ctx context.Context, msg *mail.Msg) error
}

// New returns a notifier; To defaults to From when empty.
func New(host string, port int, from, password, to string, logger *zap.Logger) *Notifier {
	if to == "" {
		to = from
	}
	n := &Notifier{
		Host:     host,
		Port:     port,
		From:     from,
		Password: password,
		To:       to,
		logger:   logger,
	}
	n.send = n.dialAndSend
	return n
}

// Configured reports whether enough settings exist to send mail.
func (n *Notifier) Configured() bool {
	return n.Host != "" && n.From != "" && n.To != ""
}

func (n *Notifier) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(n.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.From),
		mail.WithPassword(n.Password),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	}
	client, err := mail.NewClient(n.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// Send delivers one email with an HTML body and a plain-text
// alternative.
func (n *Notifier) Send(ctx context.Context, subject, htmlBody, textBody string) error {
	if !n.Configured() {
		n.logger.Info("email not configured, skipping notification")
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(n.From); err != nil {
		return fmt.Errorf("invalid sender %q: %w", n.From, err)
	}
	if err := msg.To(n.To); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", n.To, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, textBody)
	msg.AddAlternativeString(mail.TypeTextHTML, htmlBody)

	if err := n.send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send %q: %w", subject, err)
	}
	n.logger.Info("notification sent", zap.String("subject", subject))
	return nil
}

// NotifyChanges emails a digest of the run's changes. No changes means
// no email.
func (n *Notifier) NotifyChanges(ctx context.Context, changes []Change, now time.Time) error {
	if len(changes) == 0 {
		return nil
	}
	subject := fmt.Sprintf("Conference Deadlines Update - %d changes detected", len(changes))
	htmlBody, err := renderHTML(changes, now)
	if err != nil {
		return err
	}
	return n.Send(ctx, subject, htmlBody, renderText(changes))
}

type digestItem struct {
	Name        string
	IsNew       bool
	Deadline    string
	OldDeadline string
	NewDeadline string
	URLChanged  bool
	NewURL      string
}

var digestTemplate = template.Must(template.New("digest").Parse(`<html>
<head>
<style>
body { font-family: Arial, sans-serif; }
.change { margin: 20px 0; padding: 15px; border-left: 4px solid #4CAF50; background-color: #f9f9f9; }
.new { border-left-color: #2196F3; }
.updated { border-left-color: #FF9800; }
.conf-name { font-weight: bold; font-size: 1.1em; color: #333; }
.deadline { color: #d32f2f; font-weight: bold; }
.old-deadline { text-decoration: line-through; color: #999; }
.footer { margin-top: 30px; font-size: 0.9em; color: #666; }
</style>
</head>
<body>
<h2>Conference Deadline Changes</h2>
<p>Detected {{len .Items}} change(s) on {{.When}}</p>
{{range .Items}}{{if .IsNew}}<div class="change new">
<div class="conf-name">NEW: {{.Name}}</div>
<div>Deadline: <span class="deadline">{{.Deadline}}</span></div>
</div>
{{else}}<div class="change updated">
<div class="conf-name">UPDATED: {{.Name}}</div>
{{if .NewDeadline}}<div>Deadline changed: <span class="old-deadline">{{.OldDeadline}}</span> → <span class="deadline">{{.NewDeadline}}</span></div>{{end}}
{{if .URLChanged}}<div>New URL: {{.NewURL}}</div>{{end}}
</div>
{{end}}{{end}}<div class="footer">
<p>This is an automated notification from your conference deadline tracker.</p>
</div>
</body>
</html>
`))

func buildItems(changes []Change) []digestItem {
	items := make([]digestItem, 0, len(changes))
	for _, c := range changes {
		item := digestItem{
			Name:  strings.ReplaceAll(c.Conference, "_", " "),
			IsNew: c.Set.IsNew,
		}
		if c.Set.IsNew {
			item.Deadline = c.Deadline.String()
			if item.Deadline == "" {
				item.Deadline = record.TBD
			}
		}
		if c.Set.DeadlineChanged {
			item.OldDeadline = orUnknown(c.Set.OldDeadline.String())
			item.NewDeadline = orUnknown(c.Set.NewDeadline.String())
		}
		if c.Set.URLChanged {
			item.URLChanged = true
			item.NewURL = c.Set.NewURL
		}
		items = append(items, item)
	}
	return items
}

func renderHTML(changes []Change, now time.Time) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Items []digestItem
		When  string
	}{buildItems(changes), now.Format("January 2, 2006 at 15:04 MST")}
	if err := digestTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render digest: %w", err)
	}
	return buf.String(), nil
}

func renderText(changes []Change) string {
	var b strings.Builder
	b.WriteString("Conference Deadline Changes\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")
	for _, item := range buildItems(changes) {
		switch {
		case item.IsNew:
			fmt.Fprintf(&b, "NEW: %s\n   Deadline: %s\n\n", item.Name, item.Deadline)
		case item.NewDeadline != "":
			fmt.Fprintf(&b, "UPDATED: %s\n   %s -> %s\n\n", item.Name, item.OldDeadline, item.NewDeadline)
		case item.URLChanged:
			fmt.Fprintf(&b, "URL CHANGED: %s\n   New URL: %s\n\n", item.Name, item.NewURL)
		}
	}
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
