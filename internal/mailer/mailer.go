// Package mailer sends templated email over SMTP. Recipient lists come from
// CSV files, and {{column}} placeholders in the subject and body are filled
// per recipient.
package mailer

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	gomail "gopkg.in/gomail.v2"

	"taskninja/internal/config"
	"taskninja/internal/dataset"
	apperrors "taskninja/internal/errors"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_ .-]+?)\s*\}\}`)

// Message is one rendered email ready to send. HTML switches the body
// content type; Attachments are paths added to every message.
type Message struct {
	To          string
	Subject     string
	Body        string
	HTML        bool
	Attachments []string
}

// Sender delivers messages. gomail.Dialer satisfies it; tests substitute
// a recorder.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer renders and sends campaign email.
type Mailer struct {
	cfg    config.MailConfig
	sender Sender
}

// New builds a mailer from SMTP settings.
func New(cfg config.MailConfig) *Mailer {
	return &Mailer{
		cfg:    cfg,
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// Render substitutes {{column}} placeholders from a recipient row. Unknown
// placeholders are an error so typos do not go out silently.
func Render(template string, row dataset.Row) (string, error) {
	var missing []string
	out := placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		key := strings.TrimSpace(placeholderRe.FindStringSubmatch(match)[1])
		value, ok := row[key]
		if !ok {
			missing = append(missing, key)
			return match
		}
		return value
	})
	if len(missing) > 0 {
		return "", apperrors.InvalidInput(fmt.Sprintf("template references unknown columns: %s", strings.Join(missing, ", ")))
	}
	return out, nil
}

// LoadRecipients reads a recipient table from a CSV or Excel file. The table
// must have an "email" column; other columns feed the template.
func LoadRecipients(path string) (*dataset.Dataset, error) {
	ds, err := dataset.Load(path)
	if err != nil {
		return nil, err
	}
	if !ds.HasColumn("email") {
		return nil, apperrors.InvalidInput(fmt.Sprintf("%s has no \"email\" column", path))
	}
	return ds, nil
}

// Prepare renders one message per recipient row. Rows with a blank email
// are skipped and reported.
func Prepare(recipients *dataset.Dataset, subject, body string) (messages []Message, skipped int, err error) {
	for _, row := range recipients.Rows {
		to := strings.TrimSpace(row["email"])
		if to == "" {
			skipped++
			continue
		}
		renderedSubject, err := Render(subject, row)
		if err != nil {
			return nil, 0, err
		}
		renderedBody, err := Render(body, row)
		if err != nil {
			return nil, 0, err
		}
		messages = append(messages, Message{To: to, Subject: renderedSubject, Body: renderedBody})
	}
	return messages, skipped, nil
}

// Send delivers the messages. With dryRun true nothing is sent; the rendered
// messages are returned for preview instead.
func (m *Mailer) Send(messages []Message, dryRun bool) ([]Message, error) {
	if dryRun {
		return messages, nil
	}
	if m.cfg.From == "" || m.cfg.Username == "" {
		return nil, apperrors.InvalidInput("mail sender is not configured (set TASKNINJA_MAIL_FROM and credentials)")
	}

	outgoing := make([]*gomail.Message, 0, len(messages))
	for _, msg := range messages {
		gm := gomail.NewMessage()
		gm.SetHeader("From", m.cfg.From)
		gm.SetHeader("To", msg.To)
		gm.SetHeader("Subject", msg.Subject)
		contentType := "text/plain"
		if msg.HTML {
			contentType = "text/html"
		}
		gm.SetBody(contentType, msg.Body)
		for _, path := range msg.Attachments {
			if _, err := os.Stat(path); err != nil {
				return nil, apperrors.FileNotFound(path, err)
			}
			gm.Attach(path)
		}
		outgoing = append(outgoing, gm)
	}
	if err := m.sender.DialAndSend(outgoing...); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeNetwork, fmt.Sprintf("failed to send via %s:%d", m.cfg.Host, m.cfg.Port), err)
	}
	slog.Info("sent email", slog.Int("count", len(outgoing)), slog.String("host", m.cfg.Host))
	return messages, nil
}
