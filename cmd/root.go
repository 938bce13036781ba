package cmd

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	slogctx "github.com/veqryn/slog-context"
)

// version is overridden at link time with -ldflags "-X .../cmd.version=...".
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "dukedoc",
	Short: "Turn Javadoc HTML into a YAML and JSON class catalog",
	Long: `dukedoc reads the class pages of a generated Javadoc site and writes one
document per class and per package, in YAML and JSON. The catalog can also be
indexed for lookup from the command line or over MCP.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("command failed: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(clearCacheCmd)
	rootCmd.AddCommand(versionCmd)
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// setupTerminalLogging installs a colored stderr logger. --verbose wins over
// the configured level.
func setupTerminalLogging(configured string) {
	level, err := parseLevel(configured)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, using info\n", err)
	}
	if verbose {
		level = slog.LevelDebug
	}

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})
	slog.SetDefault(slog.New(slogctx.NewHandler(handler, nil)))
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the dukedoc version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}
