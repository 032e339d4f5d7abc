package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hirepath/internal/config"
	"hirepath/internal/infrastructure/storage"
)

func TestDSNFor(t *testing.T) {
	got := dsnFor(config.DatabaseConfig{
		DBHost: "db", DBPort: "5432", DBUser: "app", DBPassword: "p w", DBName: "hirepath", DBSSLMode: "disable",
	})
	assert.Equal(t, "host=db port=5432 user=app password='p w' dbname=hirepath sslmode=disable", got)

	got = dsnFor(config.DatabaseConfig{URL: " postgres://app@db/hirepath ", DBHost: "ignored"})
	assert.Equal(t, "postgres://app@db/hirepath", got)
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "db:5432/hirepath", redact(config.DatabaseConfig{URL: "postgres://app:secret@db:5432/hirepath"}))
	assert.Equal(t, "db:5432/hirepath", redact(config.DatabaseConfig{DBHost: "db", DBPort: "5432", DBName: "hirepath", DBPassword: "secret"}))
}

func TestNewStore_RejectsTableName(t *testing.T) {
	_, err := NewStore(context.Background(), nil, "kv")
	require.Error(t, err)

	assert.False(t, tableName.MatchString("kv; DROP TABLE users"))
	assert.False(t, tableName.MatchString("KV"))
	assert.True(t, tableName.MatchString("hirepath_session_kv"))
}

// TestStore_RoundTrip needs a reachable database in HIREPATH_TEST_DATABASE_URL.
func TestStore_RoundTrip(t *testing.T) {
	dsn := os.Getenv("HIREPATH_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("HIREPATH_TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := Connect(ctx, config.DatabaseConfig{URL: dsn})
	require.NoError(t, err)
	defer pool.Close()

	table := "hirepath_test_kv"
	s, err := NewStore(ctx, pool, table)
	require.NoError(t, err)
	defer func() { _, _ = pool.pool.Exec(context.Background(), `DROP TABLE IF EXISTS `+table) }()

	_, err = s.Get(ctx, "session")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Put(ctx, "session", []byte(`{"user_id":1}`)))
	require.NoError(t, s.Put(ctx, "session", []byte(`{"user_id":2}`)))
	got, err := s.Get(ctx, "session")
	require.NoError(t, err)
	assert.Equal(t, `{"user_id":2}`, string(got))

	require.NoError(t, s.Delete(ctx, "session"))
	_, err = s.Get(ctx, "session")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
