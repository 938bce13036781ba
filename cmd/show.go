package cmd

import (
	"fmt"
	"log"

	"github.com/jcdickinson/dukedoc/internal/cas"
	"github.com/jcdickinson/dukedoc/internal/config"
	"github.com/jcdickinson/dukedoc/internal/db"
	"github.com/jcdickinson/dukedoc/internal/docs"
	"github.com/jcdickinson/dukedoc/internal/markdown"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <class>",
	Short: "Print the document of an indexed class",
	Example: `  dukedoc show com.example.ui.Widget
  dukedoc show Widget --format json
  dukedoc show java.util.List --format md`,
	Args: cobra.ExactArgs(1),
	Run:  runShow,
}

var showFormat string

func init() {
	showCmd.Flags().StringVar(&showFormat, "format", "yml", "output format: yml, json or md")
}

func runShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	setupTerminalLogging(cfg.Log.Level)

	database, err := db.New(config.DBPath())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	c, err := database.ResolveClass(args[0])
	if err != nil {
		log.Fatalf("lookup failed: %v", err)
	}
	doc, err := db.LoadDocument(cas.New(config.CASDir()), c)
	if err != nil {
		log.Fatalf("failed to load %s: %v", c.QualifiedName(), err)
	}

	if showFormat == "md" || showFormat == "markdown" {
		fmt.Print(markdown.RenderClass(doc))
		return
	}

	f, err := docs.ParseFormat(showFormat)
	if err != nil {
		log.Fatalf("invalid format: %v", err)
	}
	out, err := doc.Encode(f)
	if err != nil {
		log.Fatalf("encoding failed: %v", err)
	}
	fmt.Print(string(out))
	if f == docs.FormatJSON {
		fmt.Println()
	}
}
