// Package index mirrors a board snapshot into SQLite for ad-hoc queries.
// The index can always be rebuilt from the snapshot and is never the
// source of truth.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver

	"github.com/twiced-technology-gmbh/laneboard/internal/board"
)

// FileName is the index database kept in the board directory.
const FileName = "index.db"

// Index is a SQLite mirror of one board.
type Index struct {
	db *sql.DB
}

// Count is a key with the number of tasks it covers.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// TaskRow is a task as stored in the index.
type TaskRow struct {
	TaskID   string `json:"task_id"`
	Column   string `json:"column"`
	Position int    `json:"position"`
	Title    string `json:"title"`
	Priority string `json:"priority"`
	DueDate  string `json:"due_date,omitempty"`
}

// Open opens or creates the index database at path.
func Open(path string) (*Index, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS columns (
			column_id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			color TEXT NOT NULL,
			wip_limit INTEGER NOT NULL,
			ord INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS tasks (
			task_id TEXT PRIMARY KEY,
			column_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			priority TEXT NOT NULL,
			due_date TEXT,
			FOREIGN KEY (column_id) REFERENCES columns(column_id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS assignees (
			task_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			PRIMARY KEY (task_id, user_id),
			FOREIGN KEY (task_id) REFERENCES tasks(task_id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS tags (
			task_id TEXT NOT NULL,
			tag_id TEXT NOT NULL,
			name TEXT NOT NULL,
			color TEXT NOT NULL,
			PRIMARY KEY (task_id, tag_id),
			FOREIGN KEY (task_id) REFERENCES tasks(task_id) ON DELETE CASCADE
		);`

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Index{db: db}, nil
}

// Close closes the database connection.
func (idx *Index) Close() error {
	return idx.db.Close()
}

// Rebuild replaces the index contents with b in a single transaction.
func (idx *Index) Rebuild(b board.Board) (err error) {
	tx, err := idx.db.Begin()
	if err != nil {
		return fmt.Errorf("begin rebuild: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range []string{"DELETE FROM tags", "DELETE FROM assignees", "DELETE FROM tasks", "DELETE FROM columns"} {
		if _, err = tx.Exec(stmt); err != nil {
			return fmt.Errorf("clear index: %w", err)
		}
	}

	for ord, c := range b.Columns {
		if _, err = tx.Exec(
			`INSERT INTO columns (column_id, title, color, wip_limit, ord) VALUES (?, ?, ?, ?, ?)`,
			c.ID, c.Title, c.Color, c.WIPLimit, ord,
		); err != nil {
			return fmt.Errorf("insert column %q: %w", c.ID, err)
		}
		for pos, t := range c.Tasks {
			var due *string
			if !t.DueDate.IsZero() {
				s := t.DueDate.String()
				due = &s
			}
			if _, err = tx.Exec(
				`INSERT INTO tasks (task_id, column_id, position, title, description, priority, due_date)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				t.ID, c.ID, pos, t.Title, t.Description, string(t.Priority), due,
			); err != nil {
				return fmt.Errorf("insert task %q: %w", t.ID, err)
			}
			for _, u := range t.Assignees {
				if _, err = tx.Exec(
					`INSERT INTO assignees (task_id, user_id, name) VALUES (?, ?, ?)
					 ON CONFLICT(task_id, user_id) DO UPDATE SET name = excluded.name`,
					t.ID, u.ID, u.Name,
				); err != nil {
					return fmt.Errorf("insert assignee for %q: %w", t.ID, err)
				}
			}
			for _, tg := range t.Tags {
				if _, err = tx.Exec(
					`INSERT INTO tags (task_id, tag_id, name, color) VALUES (?, ?, ?, ?)
					 ON CONFLICT(task_id, tag_id) DO UPDATE SET name = excluded.name, color = excluded.color`,
					t.ID, tg.ID, tg.Name, tg.Color,
				); err != nil {
					return fmt.Errorf("insert tag for %q: %w", t.ID, err)
				}
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit rebuild: %w", err)
	}
	return nil
}

// CountByColumn returns task counts per column in board order, including empty columns.
func (idx *Index) CountByColumn() ([]Count, error) {
	return idx.counts(`
		SELECT c.column_id, COUNT(t.task_id)
		FROM columns c LEFT JOIN tasks t ON t.column_id = c.column_id
		GROUP BY c.column_id
		ORDER BY c.ord`)
}

// CountByAssignee returns task counts per assignee name, busiest first.
func (idx *Index) CountByAssignee() ([]Count, error) {
	return idx.counts(`
		SELECT name, COUNT(DISTINCT task_id) AS n
		FROM assignees
		GROUP BY name
		ORDER BY n DESC, name`)
}

// CountByTag returns task counts per tag name, most used first.
func (idx *Index) CountByTag() ([]Count, error) {
	return idx.counts(`
		SELECT name, COUNT(DISTINCT task_id) AS n
		FROM tags
		GROUP BY name
		ORDER BY n DESC, name`)
}

// DueBefore returns tasks due strictly before date, outside excludeColumn,
// soonest first.
func (idx *Index) DueBefore(date, excludeColumn string) ([]TaskRow, error) {
	rows, err := idx.db.Query(`
		SELECT task_id, column_id, position, title, priority, due_date
		FROM tasks
		WHERE due_date IS NOT NULL AND due_date < ? AND column_id != ?
		ORDER BY due_date, task_id`, date, excludeColumn)
	if err != nil {
		return nil, fmt.Errorf("query due tasks: %w", err)
	}
	defer rows.Close()

	var out []TaskRow
	for rows.Next() {
		var r TaskRow
		var due sql.NullString
		if err := rows.Scan(&r.TaskID, &r.Column, &r.Position, &r.Title, &r.Priority, &due); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		r.DueDate = due.String
		out = append(out, r)
	}
	return out, rows.Err()
}

func (idx *Index) counts(query string) ([]Count, error) {
	rows, err := idx.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query counts: %w", err)
	}
	defer rows.Close()

	var out []Count
	for rows.Next() {
		var c Count
		if err := rows.Scan(&c.Key, &c.Count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
