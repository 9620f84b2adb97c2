package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yiyuanh/snip/internal/color"
	"github.com/yiyuanh/snip/internal/snapshot"
	"github.com/yiyuanh/snip/internal/store"
	"github.com/yiyuanh/snip/pkg/model"
)

var searchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Search saved snippets by task text or tag",
	Long:  `Case-insensitive substring search over each snippet's task and tags. Matches are listed in the order they were saved.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), color.Warn("Please provide a keyword to search. Usage: search <keyword>"))
			return nil
		}
		return runSearch(cmd, args[0], searchOptions{JSON: flagJSON, DB: flagSearchDB})
	},
}

var (
	flagJSON     bool
	flagSearchDB string
)

func init() {
	searchCmd.Flags().BoolVar(&flagJSON, "json", false, "Print matches as a JSON array")
	searchCmd.Flags().StringVar(&flagSearchDB, "db", "", "Search a SQLite snapshot (see 'snip export') instead of the store")
	rootCmd.AddCommand(searchCmd)
}

type searchOptions struct {
	JSON bool   // print matches as JSON
	DB   string // search this snapshot instead of the store
}

func runSearch(cmd *cobra.Command, keyword string, opts searchOptions) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	w := cmd.OutOrStdout()

	if opts.DB != "" {
		matches, err := searchSnapshot(opts.DB, keyword)
		if err != nil {
			return err
		}
		return printMatches(w, matches, opts.JSON)
	}

	st := store.New(cfg.Store)
	matches, err := st.Search(keyword)
	if reportStoreError(w, st, err) {
		return nil
	}
	if err != nil {
		return err
	}
	return printMatches(w, matches, opts.JSON)
}

func searchSnapshot(dbPath, keyword string) ([]model.Snippet, error) {
	r, err := snapshot.NewReader(dbPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.Search(keyword)
}

// reportStoreError prints the user-facing message for a missing or corrupt store
// and reports whether err was one of those.
func reportStoreError(w io.Writer, st *store.Store, err error) bool {
	switch {
	case errors.Is(err, store.ErrNoSnippets):
		fmt.Fprintln(w, color.Warn("No saved snippets yet."))
		return true
	case errors.Is(err, store.ErrCorruptStore):
		fmt.Fprintln(w, color.Error(fmt.Sprintf("Cannot read %s, it may be corrupted.", filepath.Base(st.Path()))))
		return true
	}
	return false
}

func printMatches(w io.Writer, matches []model.Snippet, asJSON bool) error {
	if asJSON {
		return writeJSON(w, matches)
	}
	if len(matches) == 0 {
		fmt.Fprintln(w, color.Warn("No matching snippets found."))
		return nil
	}

	fmt.Fprintln(w, color.Heading(fmt.Sprintf("Found %d match(es):", len(matches))))
	fmt.Fprintln(w)
	for _, sn := range matches {
		printSnippet(w, sn)
	}
	return nil
}

func printSnippet(w io.Writer, sn model.Snippet) {
	fmt.Fprintf(w, "[%d] Task: %s\n", sn.ID, sn.Task)
	fmt.Fprintf(w, "    Tags: %s\n", strings.Join(sn.Tags, ", "))
	if sn.Stack != "" && sn.Stack != model.DefaultStack {
		fmt.Fprintf(w, "    Stack: %s\n", sn.Stack)
	}
	fmt.Fprintf(w, "    Saved: %s\n", color.Dim(sn.Timestamp))
	fmt.Fprintln(w, "    --- Snippet ---")
	fmt.Fprintln(w, sn.Snippet)
	fmt.Fprintln(w, color.Dim(strings.Repeat("-", 50)))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
