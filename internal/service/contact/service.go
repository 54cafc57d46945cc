package contact

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ranjit-agency/site/internal/domain"
)

// DefaultHookTimeout bounds a single hook invocation.
const DefaultHookTimeout = 30 * time.Second

// Service implements the contact workflow. It is safe for concurrent use.
type Service struct {
	repo        Repository
	hooks       []Hook
	log         *slog.Logger
	hookTimeout time.Duration

	wg sync.WaitGroup
}

// NewService creates a contact service. Nil hooks are ignored.
func NewService(repo Repository, log *slog.Logger, hooks ...Hook) *Service {
	s := &Service{repo: repo, log: log, hookTimeout: DefaultHookTimeout}
	for _, h := range hooks {
		if h != nil {
			s.hooks = append(s.hooks, h)
		}
	}
	return s
}

// Submit validates and stores a contact form. Invalid input returns a
// *ValidationError and nothing is stored.
func (s *Service) Submit(ctx context.Context, in domain.InsertContact) (*domain.ContactSubmission, error) {
	in = in.Normalize()
	if fields := in.Validate(); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	sub, err := s.repo.CreateContactSubmission(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("submit contact: %w", err)
	}
	s.log.InfoContext(ctx, "contact submission stored",
		"id", sub.ID, "email", sub.Email, "subject", sub.Subject)

	s.runHooks(ctx, *sub)
	return sub, nil
}

// List returns every stored submission.
func (s *Service) List(ctx context.Context) ([]domain.ContactSubmission, error) {
	return s.repo.GetContactSubmissions(ctx)
}

// Wait blocks until hooks started by earlier Submit calls have finished.
func (s *Service) Wait() { s.wg.Wait() }

// SetHookTimeout overrides DefaultHookTimeout. Non-positive values are ignored.
func (s *Service) SetHookTimeout(d time.Duration) {
	if d > 0 {
		s.hookTimeout = d
	}
}

func (s *Service) runHooks(ctx context.Context, sub domain.ContactSubmission) {
	// Hooks outlive the request that triggered them.
	base := context.WithoutCancel(ctx)
	for _, h := range s.hooks {
		s.wg.Add(1)
		go func(h Hook) {
			defer s.wg.Done()
			hctx, cancel := context.WithTimeout(base, s.hookTimeout)
			defer cancel()
			if err := h.Handle(hctx, sub); err != nil {
				s.log.ErrorContext(hctx, "contact hook failed",
					"hook", h.Name(), "id", sub.ID, "err", err)
			}
		}(h)
	}
}
