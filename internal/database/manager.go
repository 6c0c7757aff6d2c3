package database

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/Andessonreis/corre-aqui-dash/internal/config"
	"github.com/Andessonreis/corre-aqui-dash/internal/logging"
)

//go:embed schema.sql
var schemaSQL string

// pgUniqueViolation is the SQLSTATE for unique_violation
const pgUniqueViolation = "23505"

type Manager struct {
	pool   *pgxpool.Pool
	cfg    *config.DatabaseConfig
	logger zerolog.Logger
	mu     sync.RWMutex
}

func NewManager(cfg *config.DatabaseConfig, logger zerolog.Logger) *Manager {
	return &Manager{
		cfg:    cfg,
		logger: logging.Component(logger, "database"),
	}
}

// InitPool opens the connection pool and pings the server
func (m *Manager) InitPool(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pool != nil {
		return nil
	}

	poolConfig, err := pgxpool.ParseConfig(m.cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to parse db config: %w", err)
	}

	poolConfig.MaxConns = m.cfg.MaxConns
	poolConfig.MinConns = m.cfg.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping db: %w", err)
	}

	m.pool = pool
	m.logger.Info().Int32("max_conns", m.cfg.MaxConns).Msg("database pool initialized")
	return nil
}

// Pool returns the connection pool
func (m *Manager) Pool() *pgxpool.Pool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pool
}

// Migrate applies the idempotent schema
func (m *Manager) Migrate(ctx context.Context) error {
	pool := m.Pool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	m.logger.Info().Msg("database schema applied")
	return nil
}

// Close closes the pool
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pool != nil {
		m.pool.Close()
		m.pool = nil
		m.logger.Info().Msg("database pool closed")
	}
}

// IsUniqueViolation reports whether err is a Postgres unique constraint error.
// constraint narrows the check to one constraint name when non-empty.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
