package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jcdickinson/dukedoc/internal/cas"
	"github.com/jcdickinson/dukedoc/internal/config"
	"github.com/spf13/cobra"
)

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Remove the lookup index, stored documents and fetched pages",
	Run:   runClearCache,
}

func runClearCache(cmd *cobra.Command, args []string) {
	if err := cas.New(config.CASDir()).Clear(); err != nil {
		slog.Error("failed to clear document store", "error", err)
		os.Exit(1)
	}
	for _, path := range []string{config.PageCacheDir(), config.DBPath(), config.DBPath() + ".wal"} {
		if err := os.RemoveAll(path); err != nil {
			slog.Error("failed to remove cache entry", "path", path, "error", err)
			os.Exit(1)
		}
	}
	fmt.Println("cache cleared")
}
