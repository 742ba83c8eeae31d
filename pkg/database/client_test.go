package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// newTestClient starts a disposable Postgres container, applies the
// embedded migrations against it, and returns a ready Client.
func newTestClient(t *testing.T) *Client {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("aldicp_test"),
		postgres.WithUsername("aldicp"),
		postgres.WithPassword("aldicp"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := Config{
		Host:            host,
		Port:            port.Int(),
		User:            "aldicp",
		Password:        "aldicp",
		Database:        "aldicp_test",
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 15 * time.Minute,
	}

	client, err := NewClient(ctx, cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

func TestDatabaseClient_ConnectionPool(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.DB().PingContext(ctx))

	health, err := Health(ctx, client.DB())
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
	assert.Greater(t, health.MaxOpenConns, 0)
}

func TestDatabaseClient_FixedTablesMigrated(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	id := uuid.New()
	_, err := client.DB().ExecContext(ctx,
		`INSERT INTO schema_proposals (id, kind, target_table, confidence, state)
		VALUES ($1, 'insert_row', 'memory_documents', 0.9, 'pending')`, id)
	require.NoError(t, err)

	var state string
	err = client.DB().QueryRowContext(ctx,
		`SELECT state FROM schema_proposals WHERE id = $1`, id).Scan(&state)
	require.NoError(t, err)
	assert.Equal(t, "pending", state)
}

func TestDatabaseClient_JSONIndexesCreated(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	var count int
	err := client.DB().QueryRowContext(ctx,
		`SELECT count(*) FROM pg_indexes WHERE indexname = 'idx_contradiction_records_details_gin'`).
		Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Host: "localhost", Port: 5432, User: "test", Password: "test",
				Database: "test", SSLMode: "disable", MaxOpenConns: 10, MaxIdleConns: 5,
			},
			wantErr: false,
		},
		{
			name: "missing password",
			cfg: Config{
				Host: "localhost", Port: 5432, User: "test", Password: "",
				Database: "test", MaxOpenConns: 10, MaxIdleConns: 5,
			},
			wantErr: true,
		},
		{
			name: "idle conns exceed max conns",
			cfg: Config{
				Host: "localhost", Port: 5432, User: "test", Password: "test",
				Database: "test", MaxOpenConns: 5, MaxIdleConns: 10,
			},
			wantErr: true,
		},
		{
			name: "zero max open conns",
			cfg: Config{
				Host: "localhost", Port: 5432, User: "test", Password: "test",
				Database: "test", MaxOpenConns: 0, MaxIdleConns: 0,
			},
			wantErr: true,
		},
		{
			name: "negative idle conns",
			cfg: Config{
				Host: "localhost", Port: 5432, User: "test", Password: "test",
				Database: "test", MaxOpenConns: 10, MaxIdleConns: -1,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
