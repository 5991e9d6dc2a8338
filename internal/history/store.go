package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"scanpi/internal/config"
	"scanpi/internal/session"
)

// Entry is one finished session as stored in the history database.
type Entry struct {
	ID           string
	Format       string
	Resolution   int
	PageCount    int
	Status       session.Status
	OutputPath   string
	Uploaded     bool
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Store persists finished scan sessions in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to the history database under the configured history
// directory, creating it and its schema on first use.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.HistoryDir(), "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Record inserts or replaces the summary row for a session. The workflow
// calls it once per terminal status, so REPLACE keeps reruns idempotent.
func (s *Store) Record(ctx context.Context, sess *session.Session) error {
	if sess == nil {
		return errors.New("session is nil")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO scan_sessions (
            id, format, resolution, page_count, status, output_path,
            uploaded, error_message, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID,
		sess.Format,
		sess.Resolution,
		sess.PageCount(),
		string(sess.Status),
		nullableString(sess.OutputPath),
		boolToInt(sess.Uploaded),
		nullableString(sess.ErrorMessage),
		sess.StartedAt.UTC().Format(time.RFC3339Nano),
		nullableTimeValue(sess.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("record session: %w", err)
	}
	return nil
}

// GetByID fetches one history entry, or nil when absent.
func (s *Store) GetByID(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM scan_sessions WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return entry, nil
}

// List returns the most recent entries, newest first. A limit of zero or
// less returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]*Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM scan_sessions ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Stats returns a count of entries grouped by status.
func (s *Store) Stats(ctx context.Context) (map[session.Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM scan_sessions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("history stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[session.Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[session.Status(status)] = count
	}
	return stats, rows.Err()
}

// Clear removes all history entries.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scan_sessions`)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return res.RowsAffected()
}

const entryColumns = "id, format, resolution, page_count, status, output_path, uploaded, error_message, started_at, finished_at"

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		id           string
		format       string
		resolution   int
		pageCount    int
		statusStr    string
		outputPath   sql.NullString
		uploaded     sql.NullInt64
		errorMessage sql.NullString
		startedRaw   sql.NullString
		finishedRaw  sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&format,
		&resolution,
		&pageCount,
		&statusStr,
		&outputPath,
		&uploaded,
		&errorMessage,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:           id,
		Format:       format,
		Resolution:   resolution,
		PageCount:    pageCount,
		Status:       session.Status(statusStr),
		OutputPath:   outputPath.String,
		ErrorMessage: errorMessage.String,
	}
	if uploaded.Valid {
		entry.Uploaded = uploaded.Int64 != 0
	}
	if started, err := parseTimeString(startedRaw.String); err == nil {
		entry.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			entry.FinishedAt = finished
		}
	}
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTimeValue(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}
