package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/baiirun/taskline/internal/manager"
	"github.com/baiirun/taskline/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS items (
	id INTEGER PRIMARY KEY,
	kind TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT,
	status TEXT NOT NULL DEFAULT 'NEW',
	duration_minutes INTEGER NOT NULL DEFAULT 0,
	start_time DATETIME,
	end_time DATETIME,
	epic_id INTEGER REFERENCES items(id) ON DELETE CASCADE,
	position INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_items_kind ON items(kind);
CREATE INDEX IF NOT EXISTS idx_items_epic ON items(epic_id);

CREATE TABLE IF NOT EXISTS history (
	position INTEGER PRIMARY KEY,
	item_id INTEGER NOT NULL
);
`

// SQLiteStore keeps snapshots in an SQLite database, one row per item.
type SQLiteStore struct {
	*sql.DB
}

var _ manager.Store = (*SQLiteStore)(nil)

// OpenSQLite opens or creates the database at path and ensures the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	s := &SQLiteStore{db}
	if err := s.migratePosition(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate items: %w", err)
	}
	return s, nil
}

// migratePosition adds the row order column to databases created before it
// existed. Old rows keep position 0 and load in id order.
func (s *SQLiteStore) migratePosition() error {
	var n int
	err := s.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('items') WHERE name = 'position'`).Scan(&n)
	if err != nil || n > 0 {
		return err
	}
	_, err = s.Exec(`ALTER TABLE items ADD COLUMN position INTEGER NOT NULL DEFAULT 0`)
	return err
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// Save replaces every stored row with snap in one transaction. Rows keep the
// snapshot order so epic member order survives a reload.
func (s *SQLiteStore) Save(snap manager.Snapshot) error {
	tx, err := s.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM history`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM items`); err != nil {
		return fmt.Errorf("failed to clear items: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO items (id, kind, title, description, status, duration_minutes, start_time, end_time, epic_id, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	// Epics go in before subtasks so epic_id references resolve.
	position := 0
	for _, group := range [][]model.Item{snap.Tasks, snap.Epics, snap.SubTasks} {
		for _, item := range group {
			position++
			var epicID *int
			if item.Kind == model.KindSubTask {
				epicID = &item.EpicID
			}
			_, err := stmt.Exec(
				item.ID, item.Kind, item.Title, item.Description, item.Status,
				int64(item.Duration/time.Minute), nullTime(item.Start), nullTime(item.EndTime()), epicID, position,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item %d: %w", item.ID, err)
			}
		}
	}

	for i, id := range snap.History {
		if _, err := tx.Exec(`INSERT INTO history (position, item_id) VALUES (?, ?)`, i+1, id); err != nil {
			return fmt.Errorf("failed to insert history entry %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Load reads every row in saved order, then the history.
func (s *SQLiteStore) Load() (manager.Snapshot, error) {
	rows, err := s.Query(`
		SELECT id, kind, title, description, status, duration_minutes, start_time, end_time, epic_id
		FROM items ORDER BY position, id`)
	if err != nil {
		return manager.Snapshot{}, fmt.Errorf("failed to query items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snap manager.Snapshot
	for rows.Next() {
		var item model.Item
		var description sql.NullString
		var minutes int64
		var start, end sql.NullTime
		var epicID sql.NullInt64
		if err := rows.Scan(
			&item.ID, &item.Kind, &item.Title, &description, &item.Status,
			&minutes, &start, &end, &epicID,
		); err != nil {
			return manager.Snapshot{}, fmt.Errorf("failed to scan item: %w", err)
		}
		if !item.Kind.IsValid() {
			return manager.Snapshot{}, fmt.Errorf("%w: item %d has unknown kind %q", ErrFormat, item.ID, item.Kind)
		}
		if !item.Status.IsValid() {
			return manager.Snapshot{}, fmt.Errorf("%w: item %d has unknown status %q", ErrFormat, item.ID, item.Status)
		}

		item.Description = description.String
		item.Duration = time.Duration(minutes) * time.Minute
		if start.Valid {
			item.Start = start.Time.Local()
		}

		switch item.Kind {
		case model.KindTask:
			snap.Tasks = append(snap.Tasks, item)
		case model.KindEpic:
			if end.Valid {
				item.End = end.Time.Local()
			}
			snap.Epics = append(snap.Epics, item)
		case model.KindSubTask:
			if !epicID.Valid {
				return manager.Snapshot{}, fmt.Errorf("%w: subtask %d has no epic", ErrFormat, item.ID)
			}
			item.EpicID = int(epicID.Int64)
			snap.SubTasks = append(snap.SubTasks, item)
		}
	}
	if err := rows.Err(); err != nil {
		return manager.Snapshot{}, fmt.Errorf("failed to iterate items: %w", err)
	}

	if snap.History, err = s.loadHistory(); err != nil {
		return manager.Snapshot{}, err
	}
	return snap, nil
}

func (s *SQLiteStore) loadHistory() ([]int, error) {
	rows, err := s.Query(`SELECT item_id FROM history ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return ids, nil
}
