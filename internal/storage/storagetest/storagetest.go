// Package storagetest is a conformance suite for storage.RecordStore
// implementations.
package storagetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ranjit-agency/site/internal/domain"
	"github.com/ranjit-agency/site/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty RecordStore for one subtest.
type Factory func(t *testing.T) storage.RecordStore

// Run exercises every RecordStore method against fresh stores from newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("UserRoundTrip", func(t *testing.T) { testUserRoundTrip(t, newStore(t)) })
	t.Run("MissingUser", func(t *testing.T) { testMissingUser(t, newStore(t)) })
	t.Run("DuplicateUsernames", func(t *testing.T) { testDuplicateUsernames(t, newStore(t)) })
	t.Run("UniqueUsername", func(t *testing.T) { testUniqueUsername(t, newStore(t)) })
	t.Run("ConcurrentUniqueUsername", func(t *testing.T) { testConcurrentUniqueUsername(t, newStore(t)) })
	t.Run("Submissions", func(t *testing.T) { testSubmissions(t, newStore(t)) })
	t.Run("Ping", func(t *testing.T) { require.NoError(t, newStore(t).Ping(context.Background())) })
}

func testUserRoundTrip(t *testing.T, rs storage.RecordStore) {
	ctx := context.Background()
	u := &domain.User{ID: "u-1", Username: "alex", Password: "s3cret"}
	require.NoError(t, rs.InsertUser(ctx, u))

	got, err := rs.GetUser(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, *u, *got)

	got, err = rs.GetUserByUsername(ctx, "alex")
	require.NoError(t, err)
	assert.Equal(t, *u, *got)
}

func testMissingUser(t *testing.T, rs storage.RecordStore) {
	ctx := context.Background()
	_, err := rs.GetUser(ctx, "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = rs.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, rs.InsertUser(ctx, &domain.User{ID: "u-1", Username: "alex", Password: "x"}))
	_, err = rs.GetUserByUsername(ctx, "Alex")
	assert.ErrorIs(t, err, storage.ErrNotFound, "usernames are case sensitive")
}

func testDuplicateUsernames(t *testing.T, rs storage.RecordStore) {
	ctx := context.Background()
	require.NoError(t, rs.InsertUser(ctx, &domain.User{ID: "u-1", Username: "sam", Password: "a"}))
	require.NoError(t, rs.InsertUser(ctx, &domain.User{ID: "u-2", Username: "sam", Password: "b"}))

	a, err := rs.GetUser(ctx, "u-1")
	require.NoError(t, err)
	b, err := rs.GetUser(ctx, "u-2")
	require.NoError(t, err)
	assert.Equal(t, a.Username, b.Username)

	got, err := rs.GetUserByUsername(ctx, "sam")
	require.NoError(t, err)
	assert.Contains(t, []string{"u-1", "u-2"}, got.ID)
}

func testUniqueUsername(t *testing.T, rs storage.RecordStore) {
	ctx := context.Background()
	require.NoError(t, rs.InsertUserUnique(ctx, &domain.User{ID: "u-1", Username: "kim", Password: "a"}))

	err := rs.InsertUserUnique(ctx, &domain.User{ID: "u-2", Username: "kim", Password: "b"})
	assert.ErrorIs(t, err, storage.ErrUsernameTaken)

	_, err = rs.GetUser(ctx, "u-2")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, rs.InsertUser(ctx, &domain.User{ID: "u-3", Username: "lee", Password: "c"}))
	err = rs.InsertUserUnique(ctx, &domain.User{ID: "u-4", Username: "lee", Password: "d"})
	assert.ErrorIs(t, err, storage.ErrUsernameTaken, "plain inserts count towards uniqueness")
}

func testConcurrentUniqueUsername(t *testing.T, rs storage.RecordStore) {
	ctx := context.Background()
	const workers = 8

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := rs.InsertUserUnique(ctx, &domain.User{
				ID:       "u-" + string(rune('a'+i)),
				Username: "race",
				Password: "x",
			})
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
				return
			}
			if !errors.Is(err, storage.ErrUsernameTaken) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, created)
}

func testSubmissions(t *testing.T, rs storage.RecordStore) {
	ctx := context.Background()

	empty, err := rs.ListContactSubmissions(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	phone := "+1 555 0100"
	subs := []domain.ContactSubmission{
		{ID: "c-1", Name: "Jane", Email: "jane@x.com", Subject: "Hello there",
			Message: "This message is at least twenty characters long.", CreatedAt: base},
		{ID: "c-2", Name: "Omar", Email: "omar@y.org", Phone: &phone, Subject: "Quote request",
			Message: "We would like a quote for a new website.", CreatedAt: base.Add(time.Second)},
		{ID: "c-0", Name: "Ivy", Email: "ivy@z.io", Subject: "Partnership",
			Message: "Let's talk about a long-term partnership.", CreatedAt: base.Add(2 * time.Second)},
	}
	for i := range subs {
		require.NoError(t, rs.InsertContactSubmission(ctx, &subs[i]))
	}

	got, err := rs.ListContactSubmissions(ctx)
	require.NoError(t, err)
	require.Len(t, got, len(subs))
	for i := range subs {
		AssertSubmissionEqual(t, subs[i], got[i])
	}
}

// AssertSubmissionEqual compares two submissions, treating timestamps as equal
// instants regardless of location.
func AssertSubmissionEqual(t *testing.T, want, got domain.ContactSubmission) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Email, got.Email)
	assert.Equal(t, want.Phone, got.Phone)
	assert.Equal(t, want.Subject, got.Subject)
	assert.Equal(t, want.Message, got.Message)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "createdAt: want %s, got %s", want.CreatedAt, got.CreatedAt)
}
