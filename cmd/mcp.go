package cmd

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jcdickinson/dukedoc/internal/cas"
	"github.com/jcdickinson/dukedoc/internal/config"
	"github.com/jcdickinson/dukedoc/internal/db"
	"github.com/jcdickinson/dukedoc/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the indexed catalog over MCP on stdio",
	Run:   runMCP,
}

// runMCP logs to a file since stdout carries the protocol.
func runMCP(cmd *cobra.Command, args []string) {
	logPath := config.LogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		slog.Error("failed to create log directory", "error", err)
		os.Exit(1)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	level, err := parseLevel(cfg.Log.Level)
	if err != nil {
		slog.Warn("using info level", "error", err)
	}
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level})))

	database, err := db.New(config.DBPath())
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	count, err := database.CountClasses()
	if err != nil {
		slog.Error("failed to read index", "error", err)
		os.Exit(1)
	}
	slog.Info("mcp server starting", "version", version, "classes", count)

	if err := mcp.NewServer(database, cas.New(config.CASDir()), version).Run(); err != nil {
		slog.Error("mcp server failed", "error", err)
		os.Exit(1)
	}
}
