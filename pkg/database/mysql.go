package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"dev/bravebird/trial-resetter/pkg/models"

	"github.com/go-sql-driver/mysql"
)

// DB represents the database connection
type DB struct {
	conn *sql.DB
}

// New creates a new database connection
func New(dsn string) (*DB, error) {
	cfg, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn := sql.OpenDB(connector)

	// Configure connection pool
	conn.SetMaxOpenConns(5)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{conn: conn}, nil
}

// parseDSN validates dsn and forces time parsing, which the DATETIME
// columns rely on.
func parseDSN(dsn string) (*mysql.Config, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid MySQL DSN: %w", err)
	}
	cfg.ParseTime = true
	if cfg.Loc == nil {
		cfg.Loc = time.UTC
	}
	return cfg, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

const schema = `
	CREATE TABLE IF NOT EXISTS check_results (
		id                  CHAR(36)     NOT NULL PRIMARY KEY,
		started_at          DATETIME(3)  NOT NULL,
		duration_ms         BIGINT       NOT NULL DEFAULT 0,
		seconds_remaining   INT          NOT NULL DEFAULT 0,
		seconds_after_reset INT          NOT NULL DEFAULT 0,
		logged_in           BOOLEAN      NOT NULL DEFAULT FALSE,
		outcome             VARCHAR(16)  NOT NULL,
		error_message       TEXT         NULL,
		INDEX idx_check_results_started_at (started_at)
	)
`

// EnsureSchema creates the check history table if it does not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// ==================== Check Results ====================

// Record implements runner.Recorder
func (db *DB) Record(ctx context.Context, result models.CheckResult) error {
	return db.CreateCheckResult(ctx, &result)
}

// CreateCheckResult stores one loop iteration
func (db *DB) CreateCheckResult(ctx context.Context, result *models.CheckResult) error {
	query := `
		INSERT INTO check_results (id, started_at, duration_ms, seconds_remaining, seconds_after_reset,
		                           logged_in, outcome, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.conn.ExecContext(ctx, query,
		result.ID,
		result.StartedAt,
		result.Duration,
		result.SecondsRemaining,
		result.SecondsAfterReset,
		result.LoggedIn,
		result.Outcome,
		nullString(result.ErrorMessage),
	)
	if err != nil {
		return fmt.Errorf("failed to insert check result: %w", err)
	}
	return nil
}

const selectColumns = `
	SELECT id, started_at, duration_ms, seconds_remaining, seconds_after_reset,
	       logged_in, outcome, error_message
	FROM check_results
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCheckResult(row rowScanner) (models.CheckResult, error) {
	var (
		result  models.CheckResult
		errText sql.NullString
	)
	err := row.Scan(
		&result.ID,
		&result.StartedAt,
		&result.Duration,
		&result.SecondsRemaining,
		&result.SecondsAfterReset,
		&result.LoggedIn,
		&result.Outcome,
		&errText,
	)
	result.ErrorMessage = errText.String
	return result, err
}

// GetCheckResult retrieves a check result by ID
func (db *DB) GetCheckResult(ctx context.Context, id string) (*models.CheckResult, error) {
	result, err := scanCheckResult(db.conn.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get check result: %w", err)
	}
	return &result, nil
}

// LatestCheckResult retrieves the most recent check result
func (db *DB) LatestCheckResult(ctx context.Context) (*models.CheckResult, error) {
	result, err := scanCheckResult(db.conn.QueryRowContext(ctx, selectColumns+` ORDER BY started_at DESC LIMIT 1`))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest check result: %w", err)
	}
	return &result, nil
}

// ListCheckResults retrieves the most recent check results, newest first
func (db *DB) ListCheckResults(ctx context.Context, limit int) ([]models.CheckResult, error) {
	rows, err := db.conn.QueryContext(ctx, selectColumns+` ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list check results: %w", err)
	}
	defer rows.Close()

	var results []models.CheckResult
	for rows.Next() {
		result, err := scanCheckResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check result: %w", err)
		}
		results = append(results, result)
	}

	return results, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
