package logger

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// RedactEmail masks an email address for safe logging.
// "john.doe@example.com" → "jo***@example.com"
// Short local parts (≤2 chars) are fully masked: "ab@example.com" → "***@example.com"
func RedactEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return "***@***"
	}
	if utf8.RuneCountInString(local) > 2 {
		_, n1 := utf8.DecodeRuneInString(local)
		_, n2 := utf8.DecodeRuneInString(local[n1:])
		return local[:n1+n2] + "***@" + domain
	}
	return "***@" + domain
}

func redactAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, redactValue(a.Key, a.Value.String()))
	case slog.KindAny:
		// Errors and Stringers are flattened so their text can be scrubbed.
		switch v := a.Value.Any().(type) {
		case slog.Level:
		case error:
			return slog.String(a.Key, redactValue(a.Key, v.Error()))
		case fmt.Stringer:
			return slog.String(a.Key, redactValue(a.Key, v.String()))
		}
	}
	return a
}

func redactValue(key, val string) string {
	if strings.Contains(strings.ToLower(key), "email") {
		return RedactEmail(val)
	}
	// Embedded addresses in free-form fields, error strings included.
	return emailRegex.ReplaceAllStringFunc(val, RedactEmail)
}
