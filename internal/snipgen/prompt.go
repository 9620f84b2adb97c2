package snipgen

import (
	"fmt"
	"strings"
)

// Mode selects the system persona sent with a task.
type Mode string

const (
	// ModeDefault assumes the user works with jQuery, .NET (C#) and MySQL.
	ModeDefault Mode = "default"
	// ModeNoStack makes no assumptions about the user's stack.
	ModeNoStack Mode = "no-stack"
)

// NoStackToken is the task-line marker the interactive shell translates to ModeNoStack.
const NoStackToken = "--ns"

const defaultPersona = "You are a programming assistant that generates clean, reusable code snippets and templates. " +
	"Assume the user works primarily with jQuery, .NET (C#), and MySQL unless told otherwise. " +
	"Use self-describing variable names and concise inline comments. " +
	"Only include code directly relevant to the task unless the user asks for full context (like HTML scaffolding or complete files). " +
	"Prefer jQuery for JavaScript tasks, C# for backend logic, and MySQL syntax for database queries. " +
	"Include a short explanation if helpful, but keep it minimal."

const noStackPersona = "You are a programming assistant that generates clean, reusable code snippets and templates. " +
	"Use self-describing variable names and concise inline comments where helpful. " +
	"Only include code directly relevant to the task unless explicitly asked for full context (like HTML scaffolding). " +
	"If necessary, include a very short explanation before the code."

// ParseMode converts a mode name to a Mode. The empty string is ModeDefault.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return ModeDefault, nil
	case "no-stack", "nostack", "ns":
		return ModeNoStack, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want %q or %q)", s, ModeDefault, ModeNoStack)
	}
}

// SystemPrompt returns the persona for mode.
func SystemPrompt(mode Mode) string {
	if mode == ModeNoStack {
		return noStackPersona
	}
	return defaultPersona
}

// BuildUserPrompt wraps the task description for the user message.
func BuildUserPrompt(task string) string {
	return "Task: " + task
}

// SplitModeToken removes NoStackToken from a task line.
// It reports ModeNoStack when the token was present and fallback otherwise.
func SplitModeToken(line string, fallback Mode) (string, Mode) {
	fields := strings.Fields(line)
	kept := fields[:0]
	found := false
	for _, f := range fields {
		if f == NoStackToken {
			found = true
			continue
		}
		kept = append(kept, f)
	}
	if !found {
		return strings.TrimSpace(line), fallback
	}
	return strings.Join(kept, " "), ModeNoStack
}
