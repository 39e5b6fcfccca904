// Package store persists SwitchLog state in SQLite: the channel-to-sheet
// mapping, weekly todo-doc state, and a journal of appended entries.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/switchlog/switchlog/internal/entry"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// DB wraps the SQLite state database.
type DB struct {
	db *sql.DB
}

// Open opens or creates the state database at the given path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		-- Per-channel spreadsheet mapping, provisioned on first contact
		CREATE TABLE IF NOT EXISTS channel_sheets (
			channel_id     TEXT PRIMARY KEY,
			spreadsheet_id TEXT NOT NULL,
			created_at     INTEGER NOT NULL
		);

		-- Weekly todo doc state
		CREATE TABLE IF NOT EXISTS todo_docs (
			week_start        TEXT PRIMARY KEY,
			doc_id            TEXT NOT NULL,
			days_written_json TEXT NOT NULL
		);

		-- Journal of successfully appended entries
		CREATE TABLE IF NOT EXISTS entries (
			id          TEXT PRIMARY KEY,
			channel_id  TEXT NOT NULL,
			kind        TEXT NOT NULL,
			description TEXT NOT NULL,
			category    TEXT NOT NULL,
			logged_at   INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_entries_channel_time
			ON entries(channel_id, logged_at);
	`

	_, err := db.Exec(schema)
	return err
}

// SheetForChannel returns the spreadsheet ID mapped to a channel.
// Returns ErrNotFound for an unprovisioned channel.
func (d *DB) SheetForChannel(channelID string) (string, error) {
	var id string
	err := d.db.QueryRow(
		"SELECT spreadsheet_id FROM channel_sheets WHERE channel_id = ?", channelID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying channel sheet: %w", err)
	}
	return id, nil
}

// SetSheetForChannel records the spreadsheet provisioned for a channel.
func (d *DB) SetSheetForChannel(channelID, spreadsheetID string) error {
	_, err := d.db.Exec(
		`INSERT INTO channel_sheets (channel_id, spreadsheet_id, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(channel_id) DO UPDATE SET spreadsheet_id = excluded.spreadsheet_id`,
		channelID, spreadsheetID, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("recording channel sheet: %w", err)
	}
	return nil
}

// TodoDoc is the state of one weekly todo document.
type TodoDoc struct {
	WeekStart   string // Monday of the week, YYYY-MM-DD
	DocID       string
	DaysWritten []string // Dates (YYYY-MM-DD) that already have a day header
}

// HasDay reports whether a day header was already written for the date.
func (t *TodoDoc) HasDay(date string) bool {
	for _, d := range t.DaysWritten {
		if d == date {
			return true
		}
	}
	return false
}

// TodoDocForWeek returns the todo doc state for a week start date.
// Returns ErrNotFound when no doc exists for that week yet.
func (d *DB) TodoDocForWeek(weekStart string) (*TodoDoc, error) {
	var doc TodoDoc
	var daysJSON string
	err := d.db.QueryRow(
		"SELECT week_start, doc_id, days_written_json FROM todo_docs WHERE week_start = ?", weekStart,
	).Scan(&doc.WeekStart, &doc.DocID, &daysJSON)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying todo doc: %w", err)
	}

	if err := json.Unmarshal([]byte(daysJSON), &doc.DaysWritten); err != nil {
		return nil, fmt.Errorf("parsing days_written: %w", err)
	}
	return &doc, nil
}

// SaveTodoDoc upserts the todo doc state for its week.
func (d *DB) SaveTodoDoc(doc *TodoDoc) error {
	days := doc.DaysWritten
	if days == nil {
		days = []string{}
	}
	daysJSON, err := json.Marshal(days)
	if err != nil {
		return fmt.Errorf("encoding days_written: %w", err)
	}

	_, err = d.db.Exec(
		`INSERT INTO todo_docs (week_start, doc_id, days_written_json)
		 VALUES (?, ?, ?)
		 ON CONFLICT(week_start) DO UPDATE SET
		   doc_id = excluded.doc_id,
		   days_written_json = excluded.days_written_json`,
		doc.WeekStart, doc.DocID, string(daysJSON),
	)
	if err != nil {
		return fmt.Errorf("saving todo doc: %w", err)
	}
	return nil
}

// LoggedEntry is one journaled entry.
type LoggedEntry struct {
	ID        string      `json:"id"`
	ChannelID string      `json:"channel_id"`
	Entry     entry.Entry `json:"entry"`
	LoggedAt  time.Time   `json:"logged_at"`
}

// AddEntry journals a successfully appended entry and returns its ID.
func (d *DB) AddEntry(channelID string, e entry.Entry, loggedAt time.Time) (string, error) {
	id := uuid.NewString()
	_, err := d.db.Exec(
		`INSERT INTO entries (id, channel_id, kind, description, category, logged_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, channelID, string(e.Kind), e.Description, e.Category, loggedAt.Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("journaling entry: %w", err)
	}
	return id, nil
}

// EntriesBetween returns journaled entries for a channel in [since, until),
// oldest first.
func (d *DB) EntriesBetween(channelID string, since, until time.Time) ([]LoggedEntry, error) {
	rows, err := d.db.Query(
		`SELECT id, channel_id, kind, description, category, logged_at
		 FROM entries
		 WHERE channel_id = ? AND logged_at >= ? AND logged_at < ?
		 ORDER BY logged_at ASC`,
		channelID, since.Unix(), until.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []LoggedEntry
	for rows.Next() {
		var le LoggedEntry
		var kind string
		var loggedAt int64
		if err := rows.Scan(&le.ID, &le.ChannelID, &kind, &le.Entry.Description, &le.Entry.Category, &loggedAt); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		le.Entry.Kind = entry.Kind(kind)
		le.LoggedAt = time.Unix(loggedAt, 0)
		entries = append(entries, le)
	}
	return entries, rows.Err()
}
