package storage

import (
	"context"
	"sync"

	"github.com/ranjit-agency/site/internal/domain"
)

// MemoryRecords is the default RecordStore: two maps in process memory.
// Everything is lost when the process exits.
type MemoryRecords struct {
	mu       sync.RWMutex
	users    map[string]domain.User
	contacts map[string]domain.ContactSubmission
	order    []string // submission ids in insertion order
}

var _ RecordStore = (*MemoryRecords)(nil)

// NewMemoryRecords returns an empty in-memory RecordStore.
func NewMemoryRecords() *MemoryRecords {
	return &MemoryRecords{
		users:    make(map[string]domain.User),
		contacts: make(map[string]domain.ContactSubmission),
	}
}

func (m *MemoryRecords) GetUser(_ context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MemoryRecords) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.findUsername(username); ok {
		return &u, nil
	}
	return nil, ErrNotFound
}

// findUsername scans users; the caller holds mu.
func (m *MemoryRecords) findUsername(username string) (domain.User, bool) {
	for _, u := range m.users {
		if u.Username == username {
			return u, true
		}
	}
	return domain.User{}, false
}

func (m *MemoryRecords) InsertUser(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = *u
	return nil
}

func (m *MemoryRecords) InsertUserUnique(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.findUsername(u.Username); taken {
		return ErrUsernameTaken
	}
	m.users[u.ID] = *u
	return nil
}

func (m *MemoryRecords) InsertContactSubmission(_ context.Context, s *domain.ContactSubmission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := cloneSubmission(*s)
	if _, exists := m.contacts[cp.ID]; !exists {
		m.order = append(m.order, cp.ID)
	}
	m.contacts[cp.ID] = cp
	return nil
}

func (m *MemoryRecords) ListContactSubmissions(context.Context) ([]domain.ContactSubmission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.ContactSubmission, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, cloneSubmission(m.contacts[id]))
	}
	return out, nil
}

func (m *MemoryRecords) Ping(context.Context) error { return nil }

func cloneSubmission(s domain.ContactSubmission) domain.ContactSubmission {
	if s.Phone != nil {
		p := *s.Phone
		s.Phone = &p
	}
	return s
}
