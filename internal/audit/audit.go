// Package audit records an append-only trail of security-relevant
// actions in a local SQLite database: authentication attempts and
// favorite toggles, keyed by phone hash so raw numbers never land on
// disk.
package audit

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Auth attempt actions.
const (
	ActionSendCode   = "send_code"
	ActionVerifyCode = "verify_code"
	ActionLogin      = "login"
	ActionLogout     = "logout"
)

// Outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeRejected = "rejected"
)

// Trail provides SQLite-backed audit persistence.
type Trail struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates the audit trail at the given path.
// It configures WAL mode, sets pragmas, and runs schema migrations.
func Open(path string, logger *slog.Logger) (*Trail, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	return &Trail{db: db, logger: logger}, nil
}

// Close closes the underlying database connection.
func (t *Trail) Close() error {
	return t.db.Close()
}

// AuthAttempt is one recorded authentication step.
type AuthAttempt struct {
	ID        int64     `json:"id"`
	PhoneHash string    `json:"phone_hash"`
	Action    string    `json:"action"`
	Outcome   string    `json:"outcome"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FavoriteToggle is one recorded favorite flip.
type FavoriteToggle struct {
	ID        int64     `json:"id"`
	PhoneHash string    `json:"phone_hash"`
	EventID   string    `json:"event_id"`
	EventName string    `json:"event_name,omitempty"`
	Favorited bool      `json:"favorited"`
	Outcome   string    `json:"outcome"`
	CreatedAt time.Time `json:"created_at"`
}

// RecordAuthAttempt appends an authentication attempt.
func (t *Trail) RecordAuthAttempt(ctx context.Context, phoneHash, action, outcome, detail string) error {
	_, err := t.db.ExecContext(ctx,
		`INSERT INTO auth_attempts (phone_hash, action, outcome, detail, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		phoneHash, action, outcome, nullString(detail), formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("record auth attempt: %w", err)
	}
	return nil
}

// RecordFavoriteToggle appends a favorite flip.
func (t *Trail) RecordFavoriteToggle(ctx context.Context, phoneHash, eventID, eventName string, favorited bool, outcome string) error {
	_, err := t.db.ExecContext(ctx,
		`INSERT INTO favorite_toggles (phone_hash, event_id, event_name, favorited, outcome, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		phoneHash, eventID, nullString(eventName), boolInt(favorited), outcome, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("record favorite toggle: %w", err)
	}
	return nil
}

// RecentAuthAttempts returns the latest attempts for a phone hash,
// newest first.
func (t *Trail) RecentAuthAttempts(ctx context.Context, phoneHash string, limit int) ([]AuthAttempt, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := t.db.QueryContext(ctx,
		`SELECT id, phone_hash, action, outcome, detail, created_at
		 FROM auth_attempts
		 WHERE phone_hash = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		phoneHash, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query auth attempts: %w", err)
	}
	defer rows.Close()

	var attempts []AuthAttempt
	for rows.Next() {
		var (
			a         AuthAttempt
			detail    sql.NullString
			createdAt string
		)
		if err := rows.Scan(&a.ID, &a.PhoneHash, &a.Action, &a.Outcome, &detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scan auth attempt: %w", err)
		}
		if detail.Valid {
			a.Detail = detail.String
		}
		if a.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse auth attempt time: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// RecentFavoriteToggles returns the latest toggles for a phone hash,
// newest first.
func (t *Trail) RecentFavoriteToggles(ctx context.Context, phoneHash string, limit int) ([]FavoriteToggle, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := t.db.QueryContext(ctx,
		`SELECT id, phone_hash, event_id, event_name, favorited, outcome, created_at
		 FROM favorite_toggles
		 WHERE phone_hash = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		phoneHash, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query favorite toggles: %w", err)
	}
	defer rows.Close()

	var toggles []FavoriteToggle
	for rows.Next() {
		var (
			ft        FavoriteToggle
			eventName sql.NullString
			favorited int
			createdAt string
		)
		if err := rows.Scan(&ft.ID, &ft.PhoneHash, &ft.EventID, &eventName, &favorited, &ft.Outcome, &createdAt); err != nil {
			return nil, fmt.Errorf("scan favorite toggle: %w", err)
		}
		if eventName.Valid {
			ft.EventName = eventName.String
		}
		ft.Favorited = favorited != 0
		if ft.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse favorite toggle time: %w", err)
		}
		toggles = append(toggles, ft)
	}
	return toggles, rows.Err()
}

// Prune deletes entries older than the given retention window.
func (t *Trail) Prune(ctx context.Context, retention time.Duration) error {
	cutoff := formatTime(time.Now().Add(-retention))

	if _, err := t.db.ExecContext(ctx,
		`DELETE FROM auth_attempts WHERE created_at < ?`, cutoff); err != nil {
		return fmt.Errorf("prune auth attempts: %w", err)
	}
	if _, err := t.db.ExecContext(ctx,
		`DELETE FROM favorite_toggles WHERE created_at < ?`, cutoff); err != nil {
		return fmt.Errorf("prune favorite toggles: %w", err)
	}
	return nil
}

// formatTime formats a time.Time to RFC3339Nano for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses a RFC3339Nano string back to time.Time.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
