package contact

import (
	"errors"
	"strings"

	"github.com/ranjit-agency/site/internal/domain"
)

// ErrInvalid is matched by every *ValidationError.
var ErrInvalid = errors.New("invalid contact submission")

// ValidationError lists the fields that failed validation.
type ValidationError struct {
	Fields []domain.FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return ErrInvalid.Error() + ": " + strings.Join(names, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }
