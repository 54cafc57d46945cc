package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ranjit-agency/site/internal/catalog"
	"github.com/ranjit-agency/site/internal/domain"
)

// Sentinel errors for the storage layer.
var (
	ErrNotFound      = errors.New("not found")
	ErrUsernameTaken = errors.New("username already taken")
)

// Storage is the data access contract used by handlers and services.
//
// Single-entity lookups return ErrNotFound when nothing matches. Create
// operations do not validate their input; callers check shape first.
type Storage interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	// GetUserByUsername returns the first user with that exact username.
	// Duplicates can exist when CreateUser was used; which one wins is
	// unspecified.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	CreateUser(ctx context.Context, in domain.InsertUser) (*domain.User, error)
	// CreateUserUnique inserts the user only if no user has the username,
	// returning ErrUsernameTaken otherwise. The check and the insert happen
	// in one step.
	CreateUserUnique(ctx context.Context, in domain.InsertUser) (*domain.User, error)

	CreateContactSubmission(ctx context.Context, in domain.InsertContact) (*domain.ContactSubmission, error)
	GetContactSubmissions(ctx context.Context) ([]domain.ContactSubmission, error)

	GetServices(ctx context.Context) ([]domain.Service, error)
	GetProjects(ctx context.Context) ([]domain.Project, error)
	GetProject(ctx context.Context, id string) (*domain.Project, error)
	GetTestimonials(ctx context.Context) ([]domain.Testimonial, error)
	GetTeamMembers(ctx context.Context) ([]domain.TeamMember, error)
	GetTimeline(ctx context.Context) ([]domain.TimelineEvent, error)
}

// RecordStore keeps the two mutable collections. Records arrive fully formed
// (id and timestamp already assigned by Store). Implementations must be safe
// for concurrent use.
type RecordStore interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	InsertUser(ctx context.Context, u *domain.User) error
	InsertUserUnique(ctx context.Context, u *domain.User) error
	InsertContactSubmission(ctx context.Context, s *domain.ContactSubmission) error
	ListContactSubmissions(ctx context.Context) ([]domain.ContactSubmission, error)
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}

// Store implements Storage on top of catalog tables and a RecordStore.
type Store struct {
	tables  *catalog.Tables
	records RecordStore

	newID func() string
	now   func() time.Time

	mu   sync.Mutex
	last time.Time
}

var _ Storage = (*Store)(nil)

// Option customises a Store.
type Option func(*Store)

// WithClock replaces time.Now as the source of creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the random UUID generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// New creates a Store. A nil records argument selects a fresh in-memory
// RecordStore.
func New(tables *catalog.Tables, records RecordStore, opts ...Option) *Store {
	if records == nil {
		records = NewMemoryRecords()
	}
	s := &Store{
		tables:  tables,
		records: records,
		newID:   func() string { return uuid.New().String() },
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Records exposes the underlying RecordStore (used by health checks).
func (s *Store) Records() RecordStore { return s.records }

// timestamp returns the creation time for a new record. Values are UTC,
// truncated to microseconds (the postgres resolution) and never earlier than
// the previous value handed out by this Store.
func (s *Store) timestamp() time.Time {
	t := s.now().UTC().Truncate(time.Microsecond)
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.Before(s.last) {
		t = s.last
	}
	s.last = t
	return t
}

func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.records.GetUser(ctx, id)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.records.GetUserByUsername(ctx, username)
}

func (s *Store) CreateUser(ctx context.Context, in domain.InsertUser) (*domain.User, error) {
	u := &domain.User{ID: s.newID(), Username: in.Username, Password: in.Password}
	if err := s.records.InsertUser(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *Store) CreateUserUnique(ctx context.Context, in domain.InsertUser) (*domain.User, error) {
	u := &domain.User{ID: s.newID(), Username: in.Username, Password: in.Password}
	if err := s.records.InsertUserUnique(ctx, u); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *Store) CreateContactSubmission(ctx context.Context, in domain.InsertContact) (*domain.ContactSubmission, error) {
	sub := &domain.ContactSubmission{
		ID:        s.newID(),
		Name:      in.Name,
		Email:     in.Email,
		Subject:   in.Subject,
		Message:   in.Message,
		CreatedAt: s.timestamp(),
	}
	if in.Phone != nil {
		p := *in.Phone
		sub.Phone = &p
	}
	if err := s.records.InsertContactSubmission(ctx, sub); err != nil {
		return nil, fmt.Errorf("create contact submission: %w", err)
	}
	return sub, nil
}

func (s *Store) GetContactSubmissions(ctx context.Context) ([]domain.ContactSubmission, error) {
	return s.records.ListContactSubmissions(ctx)
}

func (s *Store) GetServices(context.Context) ([]domain.Service, error) {
	return s.tables.Services(), nil
}

func (s *Store) GetProjects(context.Context) ([]domain.Project, error) {
	return s.tables.Projects(), nil
}

func (s *Store) GetProject(_ context.Context, id string) (*domain.Project, error) {
	p, ok := s.tables.Project(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *Store) GetTestimonials(context.Context) ([]domain.Testimonial, error) {
	return s.tables.Testimonials(), nil
}

func (s *Store) GetTeamMembers(context.Context) ([]domain.TeamMember, error) {
	return s.tables.TeamMembers(), nil
}

func (s *Store) GetTimeline(context.Context) ([]domain.TimelineEvent, error) {
	return s.tables.Timeline(), nil
}
