package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// Config holds database configuration
type Config struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN renders the config as a lib/pq key/value connection string
func (cfg Config) DSN() string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, sslMode,
	)
}

// New creates a new database connection
func New(cfg Config) (*DB, error) {
	database, err := open(cfg.DSN())
	if err != nil {
		return nil, err
	}

	if cfg.MaxConnections > 0 {
		database.SetMaxOpenConns(cfg.MaxConnections)
	}
	if cfg.MaxIdleConns > 0 {
		database.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		database.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return database, nil
}

// NewFromURL creates a connection from a postgres:// URL
func NewFromURL(databaseURL string) (*DB, error) {
	database, err := open(databaseURL)
	if err != nil {
		return nil, err
	}

	database.SetMaxOpenConns(10)
	database.SetMaxIdleConns(5)
	database.SetConnMaxLifetime(30 * time.Minute)

	return database, nil
}

func open(dsn string) (*DB, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{sqlDB}, nil
}

// Wrap adapts an existing *sql.DB (used with sqlmock in tests)
func Wrap(sqlDB *sql.DB) *DB {
	return &DB{sqlDB}
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

const schema = `
	CREATE TABLE IF NOT EXISTS assistant_interactions (
		id          UUID PRIMARY KEY,
		channel     TEXT NOT NULL,
		prompt      TEXT NOT NULL,
		response    TEXT NOT NULL,
		outcome     TEXT NOT NULL,
		latency_ms  BIGINT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_assistant_interactions_created_at
		ON assistant_interactions (created_at DESC);
`

// Migrate creates the tables the service needs
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Interaction represents one stored assistant exchange
type Interaction struct {
	ID        string    `json:"id"`
	Channel   string    `json:"channel"`
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response"`
	Outcome   string    `json:"outcome"`
	LatencyMS int64     `json:"latency_ms"`
	CreatedAt time.Time `json:"created_at"`
}
