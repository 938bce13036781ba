package cmd

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/jcdickinson/dukedoc/internal/config"
	"github.com/jcdickinson/dukedoc/internal/db"
	"github.com/jcdickinson/dukedoc/internal/search"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find indexed classes and members by name",
	Example: `  dukedoc search size
  dukedoc search --kind method --namespace java.util get
  dukedoc search --limit 5 --json Widget`,
	Args: cobra.ExactArgs(1),
	Run:  runSearch,
}

var (
	searchKind      string
	searchNamespace string
	searchLimit     int
	searchJSON      bool
)

func init() {
	searchCmd.Flags().StringVar(&searchKind, "kind", "", "only match class, field, constructor or method")
	searchCmd.Flags().StringVar(&searchNamespace, "namespace", "", "only match inside this package")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "max results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
}

type searchOutput struct {
	Kind      string `json:"kind"`
	Namespace string `json:"namespace"`
	Class     string `json:"class"`
	Name      string `json:"name"`
	Signature string `json:"signature"`
	Match     string `json:"match"`
}

func runSearch(cmd *cobra.Command, args []string) {
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

	results, err := search.NewSearcher(database).Search(args[0], db.Filter{
		Kind:      searchKind,
		Namespace: searchNamespace,
	}, searchLimit)
	if err != nil {
		log.Fatalf("search failed: %v", err)
	}

	if searchJSON {
		out := make([]searchOutput, 0, len(results))
		for _, r := range results {
			out = append(out, searchOutput{
				Kind:      r.Kind,
				Namespace: r.Namespace,
				Class:     r.Class,
				Name:      r.Name,
				Signature: r.Signature,
				Match:     r.Rank.String(),
			})
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return
	}

	if len(results) == 0 {
		fmt.Println("no results")
		return
	}

	for i, r := range results {
		fmt.Printf("%d. [%s] %s.%s %s\n", i+1, r.Kind, r.Namespace, r.Class, r.Signature)
	}
}
