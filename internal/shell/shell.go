// Package shell runs the interactive generate-and-save loop.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/yiyuanh/snip/internal/color"
	"github.com/yiyuanh/snip/internal/snipgen"
)

// Separator is printed between a snippet and the save prompt.
var Separator = strings.Repeat("-", 50)

// Generator produces a snippet for a task.
type Generator interface {
	Generate(ctx context.Context, task string, mode snipgen.Mode) (string, error)
}

// Saver persists an accepted snippet and returns its id.
type Saver interface {
	Append(task, snippet, stack string, tags []string) (int, error)
}

// Options configures a Shell.
type Options struct {
	Stack  string       // stack label recorded with saved snippets
	Mode   snipgen.Mode // persona used unless a task line carries snipgen.NoStackToken
	Logger *zap.Logger
}

// Shell prompts for tasks, shows generated snippets and saves the ones the user keeps.
type Shell struct {
	gen    Generator
	saver  Saver
	in     *bufio.Reader
	out    io.Writer
	stack  string
	mode   snipgen.Mode
	logger *zap.Logger
}

// New creates a shell reading answers from in and writing prompts to out.
func New(gen Generator, saver Saver, in io.Reader, out io.Writer, opts Options) *Shell {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Mode == "" {
		opts.Mode = snipgen.ModeDefault
	}
	return &Shell{
		gen:    gen,
		saver:  saver,
		in:     bufio.NewReader(in),
		out:    out,
		stack:  opts.Stack,
		mode:   opts.Mode,
		logger: opts.Logger,
	}
}

// Run loops until a quit token, end of input, or a cancelled context.
// A failed generation or save is reported and the loop continues.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, color.Heading("Code Snippet Generator"))
	fmt.Fprintln(s.out)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, ok, err := s.prompt("Enter a coding task ('q' to quit): ")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(s.out)
			return nil
		}
		if IsQuit(line) {
			return nil
		}

		task, mode := snipgen.SplitModeToken(line, s.mode)
		if task == "" {
			continue
		}
		if err := s.handleTask(ctx, task, mode); err != nil {
			return err
		}
	}
}

// handleTask returns an error only when input can no longer be read or ctx is done.
func (s *Shell) handleTask(ctx context.Context, task string, mode snipgen.Mode) error {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "Here's your snippet:")
	fmt.Fprintln(s.out)

	snippet, err := s.gen.Generate(ctx, task, mode)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn("generation failed", zap.String("task", task), zap.Error(err))
		fmt.Fprintln(s.out, color.Error(fmt.Sprintf("Generation failed: %v", err)))
		fmt.Fprintln(s.out)
		return nil
	}

	fmt.Fprintln(s.out, snippet)
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, color.Dim(Separator))
	fmt.Fprintln(s.out)

	answer, ok, err := s.prompt("Save this snippet? (y/n): ")
	if err != nil || !ok {
		return err
	}
	if !IsYes(answer) {
		return nil
	}

	tagLine, _, err := s.prompt("Enter tags (comma-separated): ")
	if err != nil {
		return err
	}

	id, err := s.saver.Append(task, snippet, s.stack, ParseTags(tagLine))
	if err != nil {
		s.logger.Warn("save failed", zap.Error(err))
		fmt.Fprintln(s.out, color.Error(fmt.Sprintf("Could not save snippet: %v", err)))
		return nil
	}
	s.logger.Debug("snippet saved", zap.Int("id", id))
	fmt.Fprintln(s.out, color.Success(fmt.Sprintf("Snippet saved as entry #%d", id)))
	return nil
}

// prompt prints msg and reads one line. ok is false at end of input.
func (s *Shell) prompt(msg string) (line string, ok bool, err error) {
	fmt.Fprint(s.out, msg)
	line, err = s.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", false, fmt.Errorf("reading input: %w", err)
		}
		if line == "" {
			return "", false, nil
		}
	}
	return strings.TrimRight(line, "\r\n"), true, nil
}

// IsQuit reports whether line is one of q, quit or exit, ignoring case and surrounding space.
func IsQuit(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "q", "quit", "exit":
		return true
	}
	return false
}

// IsYes reports whether a save answer is affirmative.
func IsYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// ParseTags splits a comma-separated tag list, trimming each tag and dropping empties.
func ParseTags(line string) []string {
	tags := []string{}
	for _, tag := range strings.Split(line, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
