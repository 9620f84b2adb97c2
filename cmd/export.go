package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yiyuanh/snip/internal/color"
	"github.com/yiyuanh/snip/internal/snapshot"
	"github.com/yiyuanh/snip/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a SQLite snapshot of the snippet store",
	Long: `Rebuilds a SQLite database from the JSON store so snippets can be queried
with any SQLite tool. The JSON store stays the source of truth; the snapshot
is replaced on every export. Search it with 'snip search --db <path> <keyword>'.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var flagExportDB string

func init() {
	exportCmd.Flags().StringVar(&flagExportDB, "db", "snippets.db", "Snapshot database path")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	st := store.New(cfg.Store)
	snippets, err := st.Load()
	if err != nil {
		return fmt.Errorf("loading store: %w", err)
	}

	if err := snapshot.Write(flagExportDB, snippets); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	r, err := snapshot.NewReader(flagExportDB)
	if err != nil {
		return err
	}
	defer r.Close()

	n, err := r.Count()
	if err != nil {
		return err
	}
	if n != len(snippets) {
		return fmt.Errorf("snapshot has %d snippets, store has %d", n, len(snippets))
	}

	logger.Debug("snapshot written", zap.String("db", flagExportDB), zap.Int("snippets", n))
	fmt.Fprintln(cmd.OutOrStdout(), color.Success(fmt.Sprintf("Exported %d snippet(s) to %s", n, flagExportDB)))
	return nil
}
