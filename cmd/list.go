package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yiyuanh/snip/internal/color"
	"github.com/yiyuanh/snip/internal/store"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved snippets in the order they were saved",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one saved snippet",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var (
	flagListJSON bool
	flagShowJSON bool
)

func init() {
	listCmd.Flags().BoolVar(&flagListJSON, "json", false, "Print snippets as a JSON array")
	showCmd.Flags().BoolVar(&flagShowJSON, "json", false, "Print the snippet as JSON")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	w := cmd.OutOrStdout()
	st := store.New(cfg.Store)
	snippets, err := st.Load()
	if reportStoreError(w, st, err) {
		return nil
	}
	if err != nil {
		return err
	}

	if flagListJSON {
		return writeJSON(w, snippets)
	}
	if len(snippets) == 0 {
		fmt.Fprintln(w, color.Warn("No saved snippets yet."))
		return nil
	}
	for _, sn := range snippets {
		printSnippet(w, sn)
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil || id < 1 {
		return fmt.Errorf("invalid snippet id %q", args[0])
	}

	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	w := cmd.OutOrStdout()
	st := store.New(cfg.Store)
	sn, err := st.Get(id)
	if reportStoreError(w, st, err) {
		return nil
	}
	if err != nil {
		return err
	}

	if flagShowJSON {
		return writeJSON(w, sn)
	}
	printSnippet(w, sn)
	return nil
}
