package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/snbloader/internal/config"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.DatabaseConfig
		expected string
	}{
		{
			name: "basic DSN",
			cfg: &config.DatabaseConfig{
				Host:     "localhost",
				Port:     3306,
				User:     "root",
				Password: "secret",
				Database: "graphdb",
				TLS:      "preferred",
			},
			expected: "root:secret@tcp(localhost:3306)/graphdb?parseTime=true&interpolateParams=true&tls=preferred",
		},
		{
			name: "DSN without database",
			cfg: &config.DatabaseConfig{
				Host:     "localhost",
				Port:     3306,
				User:     "root",
				Password: "secret",
			},
			expected: "root:secret@tcp(localhost:3306)/?parseTime=true&interpolateParams=true&tls=preferred",
		},
		{
			name: "DSN with TLS disabled",
			cfg: &config.DatabaseConfig{
				Host:     "db",
				Port:     3307,
				User:     "loader",
				Password: "p@ss!w0rd#123",
				Database: "graphdb",
				TLS:      "disable",
			},
			expected: "loader:p@ss!w0rd#123@tcp(db:3307)/graphdb?parseTime=true&interpolateParams=true&tls=false",
		},
		{
			name: "DSN with TLS required",
			cfg: &config.DatabaseConfig{
				Host:     "localhost",
				Port:     33060,
				User:     "admin",
				Password: "",
				Database: "graphdb",
				TLS:      "required",
			},
			expected: "admin:@tcp(localhost:33060)/graphdb?parseTime=true&interpolateParams=true&tls=true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildDSN(tt.cfg))
		})
	}
}

func TestManagerCloseWithoutConnect(t *testing.T) {
	m := NewManager(&config.DatabaseConfig{})
	assert.NoError(t, m.Close())
	assert.Error(t, m.Ping(context.Background()))
}

// mockOpener hands out one sqlmock connection per call; pings fail for the
// first failures calls.
func mockOpener(t *testing.T, failures int, calls *int) OpenFunc {
	return func(dsn string) (*sql.DB, error) {
		*calls++
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		if *calls <= failures {
			mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		} else {
			mock.ExpectPing()
			mock.ExpectPing()
		}
		return db, nil
	}
}

func TestConnect_RetriesUntilPingSucceeds(t *testing.T) {
	calls := 0
	m := NewManager(&config.DatabaseConfig{Host: "db", Port: 3306, MaxConnections: 4},
		WithOpenFunc(mockOpener(t, 2, &calls)),
		WithRetry(3, time.Millisecond),
	)

	require.NoError(t, m.Connect(context.Background()))
	assert.Equal(t, 3, calls)
	require.NotNil(t, m.DB)
	assert.NoError(t, m.Ping(context.Background()))
	assert.Equal(t, 4, m.DB.Stats().MaxOpenConnections)
}

func TestConnect_GivesUp(t *testing.T) {
	calls := 0
	m := NewManager(&config.DatabaseConfig{Host: "db", Port: 3306},
		WithOpenFunc(mockOpener(t, 10, &calls)),
		WithRetry(2, time.Millisecond),
	)

	err := m.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 3, calls)
	assert.Nil(t, m.DB)
}

func TestConnect_OpenError(t *testing.T) {
	m := NewManager(&config.DatabaseConfig{},
		WithOpenFunc(func(string) (*sql.DB, error) { return nil, errors.New("bad dsn") }),
		WithRetry(0, time.Millisecond),
	)

	err := m.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad dsn")
}

func TestConnect_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	m := NewManager(&config.DatabaseConfig{},
		WithOpenFunc(mockOpener(t, 10, &calls)),
		WithRetry(5, time.Hour),
	)

	err := m.Connect(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewManager_Defaults(t *testing.T) {
	m := NewManager(&config.DatabaseConfig{})
	assert.Equal(t, uint64(DefaultMaxRetries), m.maxRetries)
	assert.Equal(t, time.Second, m.initial)
	assert.Nil(t, m.DB)
}
