package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yiyuanh/snip/pkg/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "snippets.json"))
	s.now = func() time.Time {
		return time.Date(2025, 3, 14, 9, 26, 53, 589793000, time.Local)
	}
	return s
}

func TestLoad_MissingFile(t *testing.T) {
	s := newTestStore(t)

	snippets, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v (missing file should be an empty store)", err)
	}
	if len(snippets) != 0 {
		t.Errorf("Load() returned %d snippets, want 0", len(snippets))
	}
	if s.Exists() {
		t.Error("Exists() = true before any append")
	}
}

func TestLoad_Corrupt(t *testing.T) {
	s := newTestStore(t)
	if err := os.WriteFile(s.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("writing corrupt file: %v", err)
	}

	_, err := s.Load()
	if !errors.Is(err, ErrCorruptStore) {
		t.Fatalf("Load() error = %v, want ErrCorruptStore", err)
	}
}

func TestAppend_SequentialIDs(t *testing.T) {
	s := newTestStore(t)

	for want := 1; want <= 5; want++ {
		id, err := s.Append("task", "code", "", nil)
		if err != nil {
			t.Fatalf("Append() #%d error = %v", want, err)
		}
		if id != want {
			t.Errorf("Append() id = %d, want %d", id, want)
		}
	}
}

func TestAppend_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	inputs := []struct {
		task, snippet, stack string
		tags                 []string
	}{
		{"reverse a string", "  s[::-1]\n\n", "", []string{"strings"}},
		{"open a mysql connection", "var conn = new MySqlConnection(cs);", "dotnet", []string{"db", "c#"}},
		{"no tags", "x := 1", "go", nil},
	}
	for _, in := range inputs {
		if _, err := s.Append(in.task, in.snippet, in.stack, in.tags); err != nil {
			t.Fatalf("Append(%q) error = %v", in.task, err)
		}
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != len(inputs) {
		t.Fatalf("Load() returned %d snippets, want %d", len(got), len(inputs))
	}

	for i, in := range inputs {
		sn := got[i]
		if sn.ID != i+1 {
			t.Errorf("[%d] ID = %d, want %d", i, sn.ID, i+1)
		}
		if sn.Task != in.task {
			t.Errorf("[%d] Task = %q, want %q", i, sn.Task, in.task)
		}
		wantStack := in.stack
		if wantStack == "" {
			wantStack = model.DefaultStack
		}
		if sn.Stack != wantStack {
			t.Errorf("[%d] Stack = %q, want %q", i, sn.Stack, wantStack)
		}
		if sn.Snippet != strings.TrimSpace(in.snippet) {
			t.Errorf("[%d] Snippet = %q, want trimmed %q", i, sn.Snippet, strings.TrimSpace(in.snippet))
		}
		if len(sn.Tags) != len(in.tags) {
			t.Errorf("[%d] Tags = %v, want %v", i, sn.Tags, in.tags)
		}
		if sn.Timestamp != "2025-03-14T09:26:53.589793" {
			t.Errorf("[%d] Timestamp = %q, want 2025-03-14T09:26:53.589793", i, sn.Timestamp)
		}
		if _, err := time.Parse(model.TimestampLayout, sn.Timestamp); err != nil {
			t.Errorf("[%d] Timestamp %q does not parse: %v", i, sn.Timestamp, err)
		}
	}
}

func TestAppend_FileFormat(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Append("html <b> tags & more", "<b>x</b>", "", nil); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("reading store: %v", err)
	}
	text := string(data)

	if !strings.HasPrefix(text, "[\n  {\n    \"id\": 1,") {
		t.Errorf("store is not a 2-space indented array:\n%s", text)
	}
	if !strings.Contains(text, `"tags": []`) {
		t.Errorf("nil tags should serialize as an empty array:\n%s", text)
	}
	if !strings.Contains(text, "<b>x</b>") {
		t.Errorf("snippet text should not be HTML-escaped:\n%s", text)
	}
}

func TestAppend_NextIDFollowsMax(t *testing.T) {
	s := newTestStore(t)
	existing := `[{"id": 3, "task": "a", "stack": "default", "tags": [], "timestamp": "t", "snippet": "x"},
{"id": 7, "task": "b", "stack": "default", "tags": [], "timestamp": "t", "snippet": "y"}]`
	if err := os.WriteFile(s.Path(), []byte(existing), 0o644); err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	id, err := s.Append("c", "z", "", nil)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if id != 8 {
		t.Errorf("Append() id = %d, want 8", id)
	}
}

func TestAppend_CorruptStoreUntouched(t *testing.T) {
	s := newTestStore(t)
	corrupt := []byte(`[{"id": 1,`)
	if err := os.WriteFile(s.Path(), corrupt, 0o644); err != nil {
		t.Fatalf("writing corrupt file: %v", err)
	}

	if _, err := s.Append("task", "code", "", nil); !errors.Is(err, ErrCorruptStore) {
		t.Fatalf("Append() error = %v, want ErrCorruptStore", err)
	}

	got, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("reading store: %v", err)
	}
	if string(got) != string(corrupt) {
		t.Errorf("corrupt store was modified: %q", got)
	}
}

func TestAppend_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "snippets.json")
	s := New(path)

	if _, err := s.Append("task", "code", "", nil); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if !s.Exists() {
		t.Error("store file was not created")
	}
}

func TestGet(t *testing.T) {
	s := newTestStore(t)
	s.Append("first", "a", "", nil)
	s.Append("second", "b", "", nil)

	sn, err := s.Get(2)
	if err != nil {
		t.Fatalf("Get(2) error = %v", err)
	}
	if sn.Task != "second" {
		t.Errorf("Get(2).Task = %q, want second", sn.Task)
	}

	if _, err := s.Get(42); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(42) error = %v, want ErrNotFound", err)
	}
}

func TestNextID(t *testing.T) {
	tests := []struct {
		name string
		ids  []int
		want int
	}{
		{"empty", nil, 1},
		{"single", []int{1}, 2},
		{"gap", []int{1, 5, 2}, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var snippets []model.Snippet
			for _, id := range tt.ids {
				snippets = append(snippets, model.Snippet{ID: id})
			}
			if got := NextID(snippets); got != tt.want {
				t.Errorf("NextID(%v) = %d, want %d", tt.ids, got, tt.want)
			}
		})
	}
}
