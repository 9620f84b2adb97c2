package model

// TimestampLayout is the ISO-8601 layout used for Snippet.Timestamp.
// Local wall clock with microseconds and no zone, matching existing store files.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// DefaultStack is the stack label recorded when none is given.
const DefaultStack = "default"

// Snippet is a generated code fragment plus the task that produced it.
type Snippet struct {
	ID        int      `json:"id"`
	Task      string   `json:"task"`
	Stack     string   `json:"stack"`
	Tags      []string `json:"tags"`
	Timestamp string   `json:"timestamp"`
	Snippet   string   `json:"snippet"`
}
