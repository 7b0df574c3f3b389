package kv

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL flavour of a SQLStore
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

type queries struct {
	create string
	get    string
	set    string
}

var dialectQueries = map[Dialect]queries{
	DialectSQLite: {
		create: `CREATE TABLE IF NOT EXISTS kv_store (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		get: `SELECT value FROM kv_store WHERE key = ?`,
		set: `INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
	},
	DialectPostgres: {
		create: `CREATE TABLE IF NOT EXISTS kv_store (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,
		get: `SELECT value FROM kv_store WHERE key = $1`,
		set: `INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, $3)
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
	},
}

// PoolConfig holds connection pool settings
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// SQLStore implements Store on a kv_store table
type SQLStore struct {
	db *sql.DB
	q  queries
}

// NewSQLStore wraps an open database and creates the kv_store table
func NewSQLStore(ctx context.Context, db *sql.DB, dialect Dialect) (*SQLStore, error) {
	q, ok := dialectQueries[dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported dialect: %s", dialect)
	}
	if _, err := db.ExecContext(ctx, q.create); err != nil {
		return nil, fmt.Errorf("failed to create kv_store table: %w", err)
	}
	return &SQLStore{db: db, q: q}, nil
}

// OpenSQLite opens (or creates) a SQLite database file
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// single writer keeps SQLite away from SQLITE_BUSY
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	store, err := NewSQLStore(ctx, db, DialectSQLite)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// OpenPostgres connects to PostgreSQL with the given DSN and pool settings
func OpenPostgres(ctx context.Context, dsn string, pool PoolConfig) (*SQLStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	store, err := NewSQLStore(ctx, db, DialectPostgres)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Get returns the value stored under key
func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.q.get, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set upserts value under key
func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, s.q.set, key, value, time.Now().Unix())
	return err
}

// Close releases the database connection
func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
