// Package database manages the MySQL connection used by the relational graph sink.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/go-sql-driver/mysql" // MySQL driver

	"github.com/dbsmedya/snbloader/internal/config"
)

// DefaultMaxRetries bounds connection attempts after the first one.
const DefaultMaxRetries = 3

// OpenFunc opens a *sql.DB from a DSN. It is sql.Open for the mysql driver
// unless replaced in tests.
type OpenFunc func(dsn string) (*sql.DB, error)

func openMySQL(dsn string) (*sql.DB, error) {
	return sql.Open("mysql", dsn)
}

// Manager owns the connection pool to the destination database.
type Manager struct {
	DB         *sql.DB
	config     *config.DatabaseConfig
	open       OpenFunc
	maxRetries uint64
	initial    time.Duration
}

// Option configures a Manager.
type Option func(*Manager)

// WithOpenFunc replaces the driver open function.
func WithOpenFunc(fn OpenFunc) Option {
	return func(m *Manager) { m.open = fn }
}

// WithRetry sets the retry count and the initial backoff interval.
func WithRetry(maxRetries uint64, initial time.Duration) Option {
	return func(m *Manager) {
		m.maxRetries = maxRetries
		m.initial = initial
	}
}

// NewManager creates a new database manager from configuration.
func NewManager(cfg *config.DatabaseConfig, opts ...Option) *Manager {
	m := &Manager{
		config:     cfg,
		open:       openMySQL,
		maxRetries: DefaultMaxRetries,
		initial:    time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Connect opens the pool and verifies it with a ping, retrying with
// exponential backoff.
func (m *Manager) Connect(ctx context.Context) error {
	db, err := m.connectWithRetry(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to graph database: %w", err)
	}
	m.DB = db
	return nil
}

func (m *Manager) connectWithRetry(ctx context.Context) (*sql.DB, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = m.initial
	b.Multiplier = 2
	b.RandomizationFactor = 0

	var db *sql.DB
	attempts := 0
	op := func() error {
		attempts++
		conn, err := m.connect()
		if err != nil {
			return err
		}
		if err := conn.PingContext(ctx); err != nil {
			conn.Close()
			return err
		}
		db = conn
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, m.maxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed after %d attempts: %w", attempts, err)
	}
	return db, nil
}

// connect creates a database connection.
func (m *Manager) connect() (*sql.DB, error) {
	db, err := m.open(BuildDSN(m.config))
	if err != nil {
		return nil, err
	}

	// Configure connection pool
	if m.config.MaxConnections > 0 {
		db.SetMaxOpenConns(m.config.MaxConnections)
	}
	if m.config.MaxIdleConnections > 0 {
		db.SetMaxIdleConns(m.config.MaxIdleConnections)
	}
	db.SetConnMaxLifetime(10 * time.Minute)

	return db, nil
}

// BuildDSN constructs a MySQL DSN from configuration.
func BuildDSN(cfg *config.DatabaseConfig) string {
	// Format: user:password@tcp(host:port)/database?params
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
	)

	if cfg.Database != "" {
		dsn += cfg.Database
	}

	// interpolateParams lets multi-row edge inserts go out in one round trip.
	params := "?parseTime=true&interpolateParams=true"
	switch cfg.TLS {
	case "disable":
		params += "&tls=false"
	case "required":
		params += "&tls=true"
	case "preferred", "":
		params += "&tls=preferred"
	}

	return dsn + params
}

// Close closes the connection pool.
func (m *Manager) Close() error {
	if m.DB == nil {
		return nil
	}
	if err := m.DB.Close(); err != nil {
		return fmt.Errorf("graph database close: %w", err)
	}
	return nil
}

// Ping verifies the connection is alive.
func (m *Manager) Ping(ctx context.Context) error {
	if m.DB == nil {
		return fmt.Errorf("graph database not connected")
	}
	if err := m.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("graph database ping failed: %w", err)
	}
	return nil
}
