package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ranjit-agency/site/internal/catalog"
	"github.com/ranjit-agency/site/internal/config"
	"github.com/ranjit-agency/site/internal/domain"
	"github.com/ranjit-agency/site/internal/storage"
)

func TestCreateUser(t *testing.T) {
	store := storage.New(catalog.MustLoad(), nil)
	ctx := context.Background()
	var out bytes.Buffer

	require.NoError(t, run(ctx, store, []string{"create-user", "-username", "alex", "-password", "pw"}, &out))
	assert.Contains(t, out.String(), "created user alex")

	u, err := store.GetUserByUsername(ctx, "alex")
	require.NoError(t, err)
	assert.Equal(t, "pw", u.Password)

	// Plain creation allows duplicates; -unique does not.
	require.NoError(t, run(ctx, store, []string{"create-user", "-username", "alex", "-password", "x"}, &out))
	err = run(ctx, store, []string{"create-user", "-unique", "-username", "alex", "-password", "y"}, &out)
	assert.ErrorIs(t, err, storage.ErrUsernameTaken)

	err = run(ctx, store, []string{"create-user", "-username", "", "-password", "y"}, &out)
	assert.Error(t, err)
}

func TestListContacts(t *testing.T) {
	store := storage.New(catalog.MustLoad(), nil)
	ctx := context.Background()
	_, err := store.CreateContactSubmission(ctx, domain.InsertContact{
		Name: "Jane", Email: "jane@x.com", Subject: "Hello there",
		Message: "This message is at least twenty characters long.",
	})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, run(ctx, store, []string{"list-contacts"}, &out))
	assert.Contains(t, out.String(), "jane@x.com")
	assert.Contains(t, out.String(), "Hello there")

	out.Reset()
	require.NoError(t, run(ctx, store, []string{"list-contacts", "-json"}, &out))
	var subs []domain.ContactSubmission
	require.NoError(t, json.Unmarshal(out.Bytes(), &subs))
	require.Len(t, subs, 1)
	assert.Equal(t, "Jane", subs[0].Name)
}

func TestUsage(t *testing.T) {
	var out bytes.Buffer
	store := storage.New(catalog.MustLoad(), nil)
	assert.ErrorIs(t, run(context.Background(), store, nil, &out), errUsage)
	assert.ErrorIs(t, run(context.Background(), store, []string{"drop-db"}, &out), errUsage)
}

func TestCheckConfig(t *testing.T) {
	cfg := config.Default()
	assert.ErrorIs(t, checkConfig(cfg), errMemoryBackend)

	cfg.Storage.Type = "postgress"
	assert.ErrorContains(t, checkConfig(cfg), `unknown storage.type "postgress"`)

	cfg.Storage.Type = config.StoragePostgres
	cfg.Storage.DatabaseURL = ""
	assert.ErrorContains(t, checkConfig(cfg), "database_url")

	cfg.Storage.DatabaseURL = "postgres://localhost/site"
	assert.NoError(t, checkConfig(cfg))

	cfg.Storage.Type = config.StorageRedis
	cfg.Storage.RedisURL = "redis://localhost:6379"
	assert.NoError(t, checkConfig(cfg))
}
