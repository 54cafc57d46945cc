// Package notify tells the agency inbox about new contact submissions.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/osteele/liquid"

	"github.com/ranjit-agency/site/internal/domain"
)

// Default templates, rendered with the submission fields as bindings.
const (
	DefaultSubjectTemplate = `New enquiry from {{ name }}: {{ subject }}`
	DefaultBodyTemplate    = `You have a new contact form submission.

Name:    {{ name }}
Email:   {{ email }}
Phone:   {{ phone | default: "not given" }}
Subject: {{ subject }}
Sent:    {{ created_at }}

{{ message }}

Reference: {{ id }}
`
)

// Templates renders notification subject and body.
type Templates struct {
	subject *liquid.Template
	body    *liquid.Template
}

// ParseTemplates compiles the given templates; empty strings select the
// defaults.
func ParseTemplates(subject, body string) (*Templates, error) {
	if subject == "" {
		subject = DefaultSubjectTemplate
	}
	if body == "" {
		body = DefaultBodyTemplate
	}
	engine := liquid.NewEngine()
	st, err := engine.ParseString(subject)
	if err != nil {
		return nil, fmt.Errorf("parse subject template: %w", err)
	}
	bt, err := engine.ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("parse body template: %w", err)
	}
	return &Templates{subject: st, body: bt}, nil
}

// Render returns the subject and plain-text body for s.
func (t *Templates) Render(s domain.ContactSubmission) (subject, body string, err error) {
	b := bindings(s)
	subject, serr := t.subject.RenderString(b)
	if serr != nil {
		return "", "", fmt.Errorf("render subject: %w", serr)
	}
	body, berr := t.body.RenderString(b)
	if berr != nil {
		return "", "", fmt.Errorf("render body: %w", berr)
	}
	return subject, body, nil
}

func bindings(s domain.ContactSubmission) liquid.Bindings {
	b := liquid.Bindings{
		"id":         s.ID,
		"name":       s.Name,
		"email":      s.Email,
		"subject":    s.Subject,
		"message":    s.Message,
		"created_at": s.CreatedAt.UTC().Format(time.RFC1123),
	}
	if s.Phone != nil {
		b["phone"] = *s.Phone
	}
	return b
}

// LogNotifier writes a summary to the log instead of sending mail.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier { return &LogNotifier{log: log} }

func (n *LogNotifier) Name() string { return "log-notify" }

func (n *LogNotifier) Handle(ctx context.Context, s domain.ContactSubmission) error {
	n.log.InfoContext(ctx, "new contact submission",
		"id", s.ID, "email", s.Email, "subject", s.Subject, "has_phone", s.Phone != nil)
	return nil
}
