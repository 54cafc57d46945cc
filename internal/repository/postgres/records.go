// Package postgres implements storage.RecordStore on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ranjit-agency/site/internal/domain"
	"github.com/ranjit-agency/site/internal/storage"
)

// Records stores users and contact submissions in the site_* tables.
type Records struct{ db *sql.DB }

var _ storage.RecordStore = (*Records)(nil)

// New wraps an open database handle. The schema must already be applied,
// see Migrate.
func New(db *sql.DB) *Records { return &Records{db: db} }

func (r *Records) GetUser(ctx context.Context, id string) (*domain.User, error) {
	u := &domain.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password FROM site_users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Username, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *Records) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	u := &domain.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password FROM site_users WHERE username = $1 LIMIT 1`, username,
	).Scan(&u.ID, &u.Username, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

func (r *Records) InsertUser(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO site_users (id, username, password) VALUES ($1, $2, $3)`,
		u.ID, u.Username, u.Password,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// InsertUserUnique serialises writers of the same username with a
// transaction-scoped advisory lock, so two concurrent callers cannot both
// pass the NOT EXISTS check.
func (r *Records) InsertUserUnique(ctx context.Context, u *domain.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, u.Username); err != nil {
		return fmt.Errorf("lock username: %w", err)
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO site_users (id, username, password)
		SELECT $1, $2, $3
		WHERE NOT EXISTS (SELECT 1 FROM site_users WHERE username = $2)
	`, u.ID, u.Username, u.Password)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrUsernameTaken
	}
	return tx.Commit()
}

func (r *Records) InsertContactSubmission(ctx context.Context, s *domain.ContactSubmission) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO site_contact_submissions (id, name, email, phone, subject, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, s.ID, s.Name, s.Email, s.Phone, s.Subject, s.Message, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert contact submission: %w", err)
	}
	return nil
}

func (r *Records) ListContactSubmissions(ctx context.Context) ([]domain.ContactSubmission, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, phone, subject, message, created_at
		FROM site_contact_submissions
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list contact submissions: %w", err)
	}
	defer rows.Close()

	out := []domain.ContactSubmission{}
	for rows.Next() {
		var s domain.ContactSubmission
		var phone sql.NullString
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &phone, &s.Subject, &s.Message, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan contact submission: %w", err)
		}
		if phone.Valid {
			p := phone.String
			s.Phone = &p
		}
		s.CreatedAt = s.CreatedAt.UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Records) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }
