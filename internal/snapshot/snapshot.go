// Package snapshot exports the snippet store into a SQLite database for ad-hoc
// querying. The JSON store remains the source of truth; a snapshot is rebuilt
// from scratch on every export.
package snapshot

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/yiyuanh/snip/pkg/model"
)

const schema = `
CREATE TABLE snippets (
	id        INTEGER PRIMARY KEY,
	task      TEXT NOT NULL,
	stack     TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	snippet   TEXT NOT NULL
);
CREATE TABLE snippet_tags (
	snippet_id INTEGER NOT NULL REFERENCES snippets(id),
	position   INTEGER NOT NULL,
	tag        TEXT NOT NULL,
	PRIMARY KEY (snippet_id, position)
);
CREATE INDEX idx_snippet_tags_tag ON snippet_tags(tag);
`

// Write replaces the snapshot at dbPath with snippets.
// Snippet ids must be unique; the first duplicate is reported by id.
func Write(dbPath string, snippets []model.Snippet) error {
	if err := checkUniqueIDs(snippets); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening snapshot database: %w", err)
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{"DROP TABLE IF EXISTS snippet_tags", "DROP TABLE IF EXISTS snippets"} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("dropping old tables: %w", err)
		}
	}
	if _, err := tx.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	insSnippet, err := tx.Prepare(`INSERT INTO snippets (id, task, stack, timestamp, snippet) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insSnippet.Close()

	insTag, err := tx.Prepare(`INSERT INTO snippet_tags (snippet_id, position, tag) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insTag.Close()

	for _, sn := range snippets {
		if _, err := insSnippet.Exec(sn.ID, sn.Task, sn.Stack, sn.Timestamp, sn.Snippet); err != nil {
			return fmt.Errorf("inserting snippet #%d: %w", sn.ID, err)
		}
		for pos, tag := range sn.Tags {
			if _, err := insTag.Exec(sn.ID, pos, tag); err != nil {
				return fmt.Errorf("inserting tag for snippet #%d: %w", sn.ID, err)
			}
		}
	}

	return tx.Commit()
}

func checkUniqueIDs(snippets []model.Snippet) error {
	seen := make(map[int]bool, len(snippets))
	for _, sn := range snippets {
		if seen[sn.ID] {
			return fmt.Errorf("duplicate snippet id #%d in store", sn.ID)
		}
		seen[sn.ID] = true
	}
	return nil
}

// Reader reads snippets back from a snapshot database.
type Reader struct {
	db *sql.DB
}

// NewReader opens a snapshot for reading.
func NewReader(dbPath string) (*Reader, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot database: %w", err)
	}

	// Verify the database has the expected tables
	if err := verifySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("verifying snapshot schema: %w", err)
	}

	return &Reader{db: db}, nil
}

// Close closes the database connection.
func (r *Reader) Close() error {
	return r.db.Close()
}

func verifySchema(db *sql.DB) error {
	tables := []string{"snippets", "snippet_tags"}
	for _, t := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", t).Scan(&name)
		if err != nil {
			return fmt.Errorf("table %q not found: %w", t, err)
		}
	}
	return nil
}

// Count returns the number of snippets in the snapshot.
func (r *Reader) Count() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM snippets").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting snippets: %w", err)
	}
	return n, nil
}

// Search returns snippets whose task or any tag contains keyword, ignoring case,
// ordered by id.
func (r *Reader) Search(keyword string) ([]model.Snippet, error) {
	pattern := "%" + escapeLike(strings.ToLower(keyword)) + "%"
	rows, err := r.db.Query(`
		SELECT id, task, stack, timestamp, snippet FROM snippets s
		WHERE lower(s.task) LIKE ?1 ESCAPE '\'
		   OR EXISTS (SELECT 1 FROM snippet_tags t
		              WHERE t.snippet_id = s.id AND lower(t.tag) LIKE ?1 ESCAPE '\')
		ORDER BY id`, pattern)
	if err != nil {
		return nil, fmt.Errorf("querying snippets: %w", err)
	}
	defer rows.Close()

	matches := []model.Snippet{}
	for rows.Next() {
		var sn model.Snippet
		if err := rows.Scan(&sn.ID, &sn.Task, &sn.Stack, &sn.Timestamp, &sn.Snippet); err != nil {
			return nil, err
		}
		matches = append(matches, sn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range matches {
		tags, err := r.tags(matches[i].ID)
		if err != nil {
			return nil, err
		}
		matches[i].Tags = tags
	}
	return matches, nil
}

func (r *Reader) tags(id int) ([]string, error) {
	rows, err := r.db.Query("SELECT tag FROM snippet_tags WHERE snippet_id = ? ORDER BY position", id)
	if err != nil {
		return nil, fmt.Errorf("querying tags for snippet #%d: %w", id, err)
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// escapeLike escapes LIKE wildcards so the keyword matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
