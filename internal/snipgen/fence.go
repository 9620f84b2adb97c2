package snipgen

import (
	"regexp"
	"strings"
)

const fence = "```"

// labelPattern is the grammar for a language label on an opening fence line.
var labelPattern = regexp.MustCompile(`^[A-Za-z0-9_+#.-]+$`)

// StripFences removes a markdown code fence wrapping a model response.
//
// Text that does not begin with a fence is returned trimmed. For fenced text the
// opening line may carry a language label; it is dropped only when it is a single
// token matching labelPattern; anything else on that line is kept as code. The body
// ends at the last line that is only a fence. Text after the closing fence is kept.
func StripFences(raw string) string {
	text := strings.TrimSpace(strings.ReplaceAll(raw, "\r\n", "\n"))
	if !strings.HasPrefix(text, fence) {
		return text
	}

	lines := strings.Split(text, "\n")

	opening := strings.TrimLeft(lines[0], "`")
	opening = strings.TrimSpace(opening)

	var body []string
	if opening != "" && !labelPattern.MatchString(opening) {
		body = append(body, strings.TrimRight(opening, "`"))
	}
	rest := lines[1:]

	closing := -1
	for i := len(rest) - 1; i >= 0; i-- {
		if strings.TrimSpace(rest[i]) == fence {
			closing = i
			break
		}
	}

	var trailer []string
	if closing >= 0 {
		body = append(body, rest[:closing]...)
		trailer = rest[closing+1:]
	} else {
		body = append(body, rest...)
		if n := len(body); n > 0 {
			body[n-1] = strings.TrimRight(body[n-1], "`")
		}
	}

	out := strings.TrimSpace(strings.Join(body, "\n"))
	if extra := strings.TrimSpace(strings.Join(trailer, "\n")); extra != "" {
		if out == "" {
			return extra
		}
		out += "\n\n" + extra
	}
	return out
}
