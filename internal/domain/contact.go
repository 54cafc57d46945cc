package domain

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

// Minimum lengths enforced on contact form fields, counted in runes.
const (
	MinNameLength    = 2
	MinSubjectLength = 5
	MinMessageLength = 20
)

// ContactSubmission is a stored contact-form message.
type ContactSubmission struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Subject   string    `json:"subject" db:"subject"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// InsertContact is the payload posted by the contact form.
type InsertContact struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   *string `json:"phone,omitempty"`
	Subject string  `json:"subject"`
	Message string  `json:"message"`
}

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Normalize trims surrounding whitespace from every field. An empty phone
// number becomes nil.
func (c InsertContact) Normalize() InsertContact {
	out := InsertContact{
		Name:    strings.TrimSpace(c.Name),
		Email:   strings.TrimSpace(c.Email),
		Subject: strings.TrimSpace(c.Subject),
		Message: strings.TrimSpace(c.Message),
	}
	if c.Phone != nil {
		if p := strings.TrimSpace(*c.Phone); p != "" {
			out.Phone = &p
		}
	}
	return out
}

// Validate checks the payload against the contact form rules and returns one
// entry per failing field, in form order.
func (c InsertContact) Validate() []FieldError {
	var errs []FieldError
	if utf8.RuneCountInString(strings.TrimSpace(c.Name)) < MinNameLength {
		errs = append(errs, FieldError{Field: "name", Message: "Name must be at least 2 characters"})
	}
	if !ValidEmail(c.Email) {
		errs = append(errs, FieldError{Field: "email", Message: "Please enter a valid email"})
	}
	if utf8.RuneCountInString(strings.TrimSpace(c.Subject)) < MinSubjectLength {
		errs = append(errs, FieldError{Field: "subject", Message: "Subject must be at least 5 characters"})
	}
	if utf8.RuneCountInString(strings.TrimSpace(c.Message)) < MinMessageLength {
		errs = append(errs, FieldError{Field: "message", Message: "Message must be at least 20 characters"})
	}
	return errs
}

// ValidEmail accepts a bare address with a dotted domain ("a@b.co").
// Display-name forms such as "Jane <jane@x.com>" are rejected.
func ValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	at := strings.LastIndex(s, "@")
	domain := s[at+1:]
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
