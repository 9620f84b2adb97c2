// Package store persists snippets as a single JSON array file.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yiyuanh/snip/pkg/model"
)

var (
	// ErrCorruptStore is returned when the store file exists but is not a valid JSON array.
	ErrCorruptStore = errors.New("store file is corrupted")

	// ErrNoSnippets is returned by Search when no store file exists yet.
	ErrNoSnippets = errors.New("no saved snippets yet")

	// ErrNotFound is returned by Get when no snippet has the requested id.
	ErrNotFound = errors.New("snippet not found")
)

// Store is an append-only collection of snippets backed by one JSON file.
// The whole file is rewritten on every append; it is not safe for concurrent writers.
type Store struct {
	path string
	now  func() time.Time
}

// New returns a store backed by the file at path. The file is created on first Append.
func New(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the backing file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load returns all snippets in append order. A missing file is an empty store.
func (s *Store) Load() ([]model.Snippet, error) {
	snippets, err := s.read()
	if errors.Is(err, fs.ErrNotExist) {
		return []model.Snippet{}, nil
	}
	return snippets, err
}

// read is Load without the missing-file case; absence surfaces as fs.ErrNotExist.
func (s *Store) read() ([]model.Snippet, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading store: %w", err)
	}

	var snippets []model.Snippet
	if err := json.Unmarshal(data, &snippets); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptStore, s.path, err)
	}
	if snippets == nil {
		snippets = []model.Snippet{}
	}
	return snippets, nil
}

// Append records a new snippet and returns its id.
// The snippet text is trimmed and an empty stack becomes model.DefaultStack.
func (s *Store) Append(task, snippet, stack string, tags []string) (int, error) {
	snippets, err := s.Load()
	if err != nil {
		return 0, err
	}

	if stack == "" {
		stack = model.DefaultStack
	}
	if tags == nil {
		tags = []string{}
	}

	entry := model.Snippet{
		ID:        NextID(snippets),
		Task:      task,
		Stack:     stack,
		Tags:      tags,
		Timestamp: s.now().Format(model.TimestampLayout),
		Snippet:   strings.TrimSpace(snippet),
	}

	if err := s.write(append(snippets, entry)); err != nil {
		return 0, err
	}
	return entry.ID, nil
}

// Get returns the snippet with the given id.
func (s *Store) Get(id int) (model.Snippet, error) {
	snippets, err := s.Load()
	if err != nil {
		return model.Snippet{}, err
	}
	for _, sn := range snippets {
		if sn.ID == id {
			return sn, nil
		}
	}
	return model.Snippet{}, fmt.Errorf("%w: #%d", ErrNotFound, id)
}

// NextID returns one more than the largest id in snippets, or 1 when empty.
func NextID(snippets []model.Snippet) int {
	highest := 0
	for _, sn := range snippets {
		if sn.ID > highest {
			highest = sn.ID
		}
	}
	return highest + 1
}

// write replaces the store file via a temp file in the same directory and a rename.
func (s *Store) write(snippets []model.Snippet) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snippets); err != nil {
		return fmt.Errorf("encoding snippets: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting store permissions: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing store: %w", err)
	}
	return nil
}
