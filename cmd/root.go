package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yiyuanh/snip/internal/color"
	"github.com/yiyuanh/snip/internal/config"
	"github.com/yiyuanh/snip/internal/logging"
	"github.com/yiyuanh/snip/internal/shell"
	"github.com/yiyuanh/snip/internal/snipgen"
	"github.com/yiyuanh/snip/internal/store"
)

// missingKeyword is the value --s takes when given bare.
const missingKeyword = "\x00"

var rootCmd = &cobra.Command{
	Use:   "snip",
	Short: "Generate and keep code snippets with Claude",
	Long: `snip asks Claude for a code snippet for each task you type, shows it, and
saves the ones you keep to a local JSON file you can search later.

Run without arguments for the interactive prompt. Add --ns to a task to drop
the default jQuery / .NET / MySQL assumptions for that task.`,
	Example: `  snip
  snip --s "reverse"
  snip search mysql --json`,
	Args:          cobra.ArbitraryArgs,
	RunE:          runRoot,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	flagConfig   string
	flagEnvFile  string
	flagStore    string
	flagVerbose  bool
	flagLogLevel string
	flagLogFile  string

	flagSearch  string
	flagModel   string
	flagMode    string
	flagStack   string
	flagBedrock bool
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Config file (default ./.snip.yaml or ~/.snip.yaml)")
	pf.StringVar(&flagEnvFile, "env-file", "", "Load environment variables from this file (default .env)")
	pf.StringVar(&flagStore, "store", "snippets.json", "Snippet store file")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	pf.StringVar(&flagLogFile, "log-file", "", "Write logs to a rotating file instead of stderr")

	f := rootCmd.Flags()
	f.StringVar(&flagSearch, "s", "", "Search saved snippets by keyword and exit")
	f.StringVar(&flagSearch, "search", "", "Same as --s")
	f.Lookup("s").NoOptDefVal = missingKeyword
	f.Lookup("search").NoOptDefVal = missingKeyword
	f.StringVar(&flagModel, "model", snipgen.DefaultModel, "Claude model to use")
	f.StringVar(&flagMode, "mode", string(snipgen.ModeDefault), "Persona: default (jQuery/.NET/MySQL) or no-stack")
	f.StringVar(&flagStack, "stack", "default", "Stack label recorded with saved snippets")
	f.BoolVar(&flagBedrock, "bedrock", false, "Use Amazon Bedrock instead of the Anthropic API")

	rootCmd.Version = Version
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := run(os.Args[1:]); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	rootCmd.SetArgs(joinSearchKeyword(args))
	return rootCmd.Execute()
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, color.StderrError("Error: "+err.Error()))
}

// joinSearchKeyword rewrites "--s kw" as "--s=kw" (likewise --search) so a keyword
// that names a subcommand is not routed to it. A following flag is not a keyword.
func joinSearchKeyword(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			return append(out, args[i:]...)
		}
		if (a == "--s" || a == "--search") && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, a+"="+args[i+1])
			i++
			continue
		}
		out = append(out, a)
	}
	return out
}

func runRoot(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("s") || cmd.Flags().Changed("search") {
		if flagSearch == missingKeyword {
			fmt.Fprintln(cmd.OutOrStdout(), color.Warn("Please provide a keyword to search. Usage: --s <keyword>"))
			return nil
		}
		return runSearch(cmd, flagSearch, searchOptions{})
	}

	if len(args) > 0 {
		return fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath())
	}
	return runInteractive(cmd)
}

func runInteractive(cmd *cobra.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.RequireCredentials(); err != nil {
		return err
	}

	var opts []option.RequestOption
	if cfg.APIKey != "" && !cfg.Bedrock {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	gen := snipgen.NewGenerator(cmd.Context(), cfg.Model, cfg.Bedrock, logger, opts...)

	logger.Debug("starting interactive shell",
		zap.String("store", cfg.Store),
		zap.String("model", gen.Model()),
		zap.String("mode", cfg.Mode))

	sh := shell.New(gen, store.New(cfg.Store), cmd.InOrStdin(), cmd.OutOrStdout(), shell.Options{
		Stack:  cfg.Stack,
		Mode:   cfg.GenerationMode(),
		Logger: logger,
	})
	return sh.Run(cmd.Context())
}

// setup loads configuration for cmd and builds the diagnostic logger.
func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(config.Options{
		ConfigFile: flagConfig,
		EnvFile:    flagEnvFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(cfg.Log, cfg.Verbose)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
