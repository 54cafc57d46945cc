// Package redisstore implements storage.RecordStore on Redis.
//
// Key layout:
//
//	site:user:<id>              user JSON
//	site:user:username:<name>   set of user ids with that username
//	site:user:unique:<name>     claim taken by InsertUserUnique
//	site:contact:<id>           submission JSON
//	site:contacts               sorted set of submission ids, scored by created_at in ms
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/ranjit-agency/site/internal/domain"
	"github.com/ranjit-agency/site/internal/storage"
)

const prefix = "site:"

// Records is a Redis-backed record store.
type Records struct {
	client *redis.Client
}

var _ storage.RecordStore = (*Records)(nil)

func New(client *redis.Client) *Records { return &Records{client: client} }

// userRecord carries the password, which domain.User hides from JSON.
type userRecord struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func userKey(id string) string { return prefix + "user:" + id }
func usernameKey(name string) string { return prefix + "user:username:" + name }
func uniqueKey(name string) string { return prefix + "user:unique:" + name }
func contactKey(id string) string { return prefix + "contact:" + id }
func contactsKey() string { return prefix + "contacts" }

func (r *Records) GetUser(ctx context.Context, id string) (*domain.User, error) {
	data, err := r.client.Get(ctx, userKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	var rec userRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", id, err)
	}
	return &domain.User{ID: rec.ID, Username: rec.Username, Password: rec.Password}, nil
}

// GetUserByUsername picks the lexically smallest id among duplicates so the
// answer is stable across calls.
func (r *Records) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	ids, err := r.client.SMembers(ctx, usernameKey(username)).Result()
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	sort.Strings(ids)
	for _, id := range ids {
		u, err := r.GetUser(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		return u, err
	}
	return nil, storage.ErrNotFound
}

func (r *Records) InsertUser(ctx context.Context, u *domain.User) error {
	data, err := json.Marshal(userRecord{ID: u.ID, Username: u.Username, Password: u.Password})
	if err != nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, userKey(u.ID), data, 0)
		p.SAdd(ctx, usernameKey(u.Username), u.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// InsertUserUnique claims the username with SETNX first. Users created by
// InsertUser carry no claim, so the username set is checked as well.
func (r *Records) InsertUserUnique(ctx context.Context, u *domain.User) error {
	ok, err := r.client.SetNX(ctx, uniqueKey(u.Username), u.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("claim username: %w", err)
	}
	if !ok {
		return storage.ErrUsernameTaken
	}
	n, err := r.client.SCard(ctx, usernameKey(u.Username)).Result()
	if err != nil {
		r.client.Del(ctx, uniqueKey(u.Username))
		return fmt.Errorf("check username: %w", err)
	}
	if n > 0 {
		return storage.ErrUsernameTaken
	}
	if err := r.InsertUser(ctx, u); err != nil {
		r.client.Del(ctx, uniqueKey(u.Username))
		return err
	}
	return nil
}

func (r *Records) InsertContactSubmission(ctx context.Context, s *domain.ContactSubmission) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, contactKey(s.ID), data, 0)
		p.ZAdd(ctx, contactsKey(), redis.Z{Score: float64(s.CreatedAt.UnixMilli()), Member: s.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert contact submission: %w", err)
	}
	return nil
}

// ListContactSubmissions returns submissions ordered by creation time; ties
// within a millisecond fall back to id order.
func (r *Records) ListContactSubmissions(ctx context.Context) ([]domain.ContactSubmission, error) {
	ids, err := r.client.ZRange(ctx, contactsKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list contact submissions: %w", err)
	}
	out := []domain.ContactSubmission{}
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = contactKey(id)
	}
	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load contact submissions: %w", err)
	}
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var s domain.ContactSubmission
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return nil, fmt.Errorf("decode contact %s: %w", ids[i], err)
		}
		s.CreatedAt = s.CreatedAt.UTC()
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *Records) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
