// Package journal keeps alerts that could not be delivered so an operator can
// see what was missed. Nothing here resends them.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/speedwagon-io/saltydog/internal/lib/logger/sl"
	"github.com/speedwagon-io/saltydog/internal/model"
)

type Entry struct {
	Alert      *model.Alert
	Reason     string
	RecordedAt time.Time
}

type SQLiteJournal struct {
	log *slog.Logger
	db  *sql.DB
}

func NewSQLiteJournal(log *slog.Logger, dbPath string) (*SQLiteJournal, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	j := &SQLiteJournal{
		log: log,
		db:  db,
	}

	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return j, nil
}

func (j *SQLiteJournal) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS undelivered (
			id TEXT PRIMARY KEY,
			channel TEXT NOT NULL,
			alert_json TEXT NOT NULL,
			reason TEXT NOT NULL,
			recorded_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_undelivered_recorded_at ON undelivered(recorded_at);
	`
	_, err := j.db.Exec(query)
	return err
}

// Record stores an alert the messenger rejected along with the reason.
func (j *SQLiteJournal) Record(ctx context.Context, alert *model.Alert, reason string) error {
	data, err := alert.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO undelivered (id, channel, alert_json, reason, recorded_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err = j.db.ExecContext(ctx, query,
		alert.ID,
		alert.Channel,
		string(data),
		reason,
		time.Now().UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to record alert: %w", err)
	}

	j.log.Debug("undelivered alert journaled", slog.String("id", alert.ID))
	return nil
}

// List returns the newest entries first.
func (j *SQLiteJournal) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT alert_json, reason, recorded_at
		FROM undelivered
		ORDER BY recorded_at DESC
		LIMIT ?
	`

	rows, err := j.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			alertJSON, reason string
			recordedAt        int64
		)

		if err := rows.Scan(&alertJSON, &reason, &recordedAt); err != nil {
			j.log.Error("failed to scan row", sl.Err(err))
			continue
		}

		alert, err := model.AlertFromJSON([]byte(alertJSON))
		if err != nil {
			j.log.Error("failed to unmarshal alert", sl.Err(err))
			continue
		}

		entries = append(entries, Entry{
			Alert:      alert,
			Reason:     reason,
			RecordedAt: time.Unix(0, recordedAt).UTC(),
		})
	}

	return entries, rows.Err()
}

func (j *SQLiteJournal) Count(ctx context.Context) (int64, error) {
	var count int64
	err := j.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM undelivered").Scan(&count)
	return count, err
}

// Purge drops entries recorded more than maxAge ago.
func (j *SQLiteJournal) Purge(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge).UnixNano()

	result, err := j.db.ExecContext(ctx, "DELETE FROM undelivered WHERE recorded_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge journal: %w", err)
	}

	deleted, _ := result.RowsAffected()
	if deleted > 0 {
		j.log.Info("purged journal entries", slog.Int64("deleted", deleted))
	}

	return deleted, nil
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
