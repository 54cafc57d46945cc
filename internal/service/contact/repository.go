package contact

import (
	"context"

	"github.com/ranjit-agency/site/internal/domain"
)

// Repository persists submissions. storage.Storage satisfies it.
type Repository interface {
	CreateContactSubmission(ctx context.Context, in domain.InsertContact) (*domain.ContactSubmission, error)
	GetContactSubmissions(ctx context.Context) ([]domain.ContactSubmission, error)
}

// Hook receives each stored submission.
type Hook interface {
	Name() string
	Handle(ctx context.Context, s domain.ContactSubmission) error
}
