package cmd

import (
	"bufio"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/jcdickinson/dukedoc/internal/config"
	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View the MCP server log file",
	Run:   runLogs,
}

var (
	logsFollow bool
	logsLines  int
	logsLevel  string
)

func init() {
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "follow log output")
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 50, "number of lines to show")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "only show records at or above this level")
}

func runLogs(cmd *cobra.Command, args []string) {
	logPath := config.LogPath()
	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		fmt.Println("no log file found (the MCP server may not have run yet)")
		return
	}

	if logsFollow {
		tailCmd := exec.Command("tail", "-n", strconv.Itoa(logsLines), "-f", logPath)
		tailCmd.Stdout = os.Stdout
		tailCmd.Stderr = os.Stderr
		if err := tailCmd.Run(); err != nil {
			log.Fatalf("tail failed: %v", err)
		}
		return
	}

	threshold := slog.LevelDebug
	if logsLevel != "" {
		var err error
		if threshold, err = parseLevel(logsLevel); err != nil {
			log.Fatalf("%v", err)
		}
	}

	f, err := os.Open(logPath)
	if err != nil {
		log.Fatalf("failed to open log: %v", err)
	}
	defer f.Close()

	lines, err := lastLines(bufio.NewScanner(f), logsLines, func(line string) bool {
		level, ok := recordLevel(line)
		return !ok || level >= threshold
	})
	if err != nil {
		log.Fatalf("failed to read log: %v", err)
	}
	for _, line := range lines {
		fmt.Println(line)
	}
}

// lastLines keeps the final n lines accepted by keep.
func lastLines(sc *bufio.Scanner, n int, keep func(string) bool) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	ring := make([]string, 0, n)
	for sc.Scan() {
		line := sc.Text()
		if !keep(line) {
			continue
		}
		if len(ring) == n {
			ring = append(ring[:0], ring[1:]...)
		}
		ring = append(ring, line)
	}
	return ring, sc.Err()
}

// recordLevel reads the level=... attribute written by slog's text handler.
func recordLevel(line string) (slog.Level, bool) {
	_, rest, ok := strings.Cut(line, " level=")
	if !ok {
		return 0, false
	}
	word, _, _ := strings.Cut(rest, " ")
	level, err := parseLevel(word)
	if err != nil {
		return 0, false
	}
	return level, true
}
