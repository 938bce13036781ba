package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jcdickinson/dukedoc/internal/cas"
	"github.com/jcdickinson/dukedoc/internal/config"
	"github.com/jcdickinson/dukedoc/internal/db"
	"github.com/jcdickinson/dukedoc/internal/docs"
	"github.com/jcdickinson/dukedoc/internal/sink"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build <docs-root>",
	Short: "Scrape a Javadoc site into YAML and JSON documents",
	Long: `Read the class index of a Javadoc site, parse every class page it links to,
and write one document per class and per package. The root is a local
directory or an http(s) URL. Unless --no-index is given the catalog is also
stored in the local index used by "show", "search" and "mcp".`,
	Example: `  dukedoc build ./build/docs/javadoc
  dukedoc build --prefix com/example --format json https://example.com/apidocs/
  dukedoc build --out site/data --strict ./javadoc`,
	Args: cobra.ExactArgs(1),
	Run:  runBuild,
}

var (
	buildOut     string
	buildFormats []string
	buildPrefix  string
	buildIndex   string
	buildStrict  bool
	buildNoIndex bool
	buildSkip    bool
)

func init() {
	buildCmd.Flags().StringVarP(&buildOut, "out", "o", "", "output directory (default from config, \"dist\")")
	buildCmd.Flags().StringSliceVarP(&buildFormats, "format", "f", nil, "output formats: yml, json (repeatable)")
	buildCmd.Flags().StringVar(&buildPrefix, "prefix", "", "only scrape class pages under this path prefix")
	buildCmd.Flags().StringVar(&buildIndex, "index-file", "", "class index page relative to the root")
	buildCmd.Flags().BoolVar(&buildStrict, "strict", false, "exit non-zero when any page fails")
	buildCmd.Flags().BoolVar(&buildNoIndex, "no-index", false, "do not update the local lookup index")
	buildCmd.Flags().BoolVar(&buildSkip, "skip-broken-members", false, "drop malformed members instead of failing their page")
}

func runBuild(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	setupTerminalLogging(cfg.Log.Level)

	applyBuildFlags(cmd, cfg)

	formats, err := parseFormats(cfg.Output.Formats)
	if err != nil {
		log.Fatalf("invalid output formats: %v", err)
	}
	order, err := docs.ParseOverloadOrder(cfg.Parse.OverloadOrder)
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	enc := docs.Encoder{OverloadOrder: order}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetchOpts := docs.FetchOptions{
		Timeout:   time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
		UserAgent: "dukedoc/" + version,
	}
	if cfg.Fetch.Cache {
		fetchOpts.CacheDir = config.PageCacheDir()
	}
	src := docs.NewSource(args[0], fetchOpts)

	refs, err := docs.DiscoverClasses(ctx, src, cfg.Index.File, cfg.Index.Prefix)
	if err != nil {
		log.Fatalf("failed to read class index: %v", err)
	}
	slog.Info("discovered class pages", "source", src.String(), "pages", len(refs))

	cat, report := docs.Build(ctx, src, refs, docs.ParseOptions{SkipBrokenMembers: cfg.Parse.SkipBrokenMembers})
	if ctx.Err() != nil {
		log.Fatalf("build interrupted: %v", ctx.Err())
	}

	out := sink.NewFilesystemSink(cfg.Output.Dir)
	if err := cat.Save(ctx, out, docs.SaveOptions{Formats: formats, Encoder: enc}); err != nil {
		log.Fatalf("failed to write catalog: %v", err)
	}

	if !buildNoIndex {
		if err := indexCatalog(ctx, cat, enc); err != nil {
			log.Fatalf("failed to index catalog: %v", err)
		}
	}

	fmt.Printf("%d classes in %d packages written to %s\n", cat.ClassCount(), len(cat.Namespaces()), cfg.Output.Dir)
	if len(report.Failures) > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d pages failed:\n", len(report.Failures), report.Pages)
		for _, f := range report.Failures {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", f.Ref, f.Err)
		}
		if buildStrict {
			os.Exit(1)
		}
	}
}

// applyBuildFlags lets explicitly set flags override the loaded config.
func applyBuildFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("out") {
		cfg.Output.Dir = buildOut
	}
	if flags.Changed("format") {
		cfg.Output.Formats = buildFormats
	}
	if flags.Changed("prefix") {
		cfg.Index.Prefix = buildPrefix
	}
	if flags.Changed("index-file") {
		cfg.Index.File = buildIndex
	}
	if flags.Changed("skip-broken-members") {
		cfg.Parse.SkipBrokenMembers = buildSkip
	}
}

func parseFormats(names []string) ([]docs.Format, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no formats given")
	}
	seen := make(map[docs.Format]bool)
	var formats []docs.Format
	for _, name := range names {
		f, err := docs.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			formats = append(formats, f)
		}
	}
	return formats, nil
}

func indexCatalog(ctx context.Context, cat *docs.Catalog, enc docs.Encoder) error {
	database, err := db.New(config.DBPath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	return database.IndexCatalog(ctx, cat, cas.New(config.CASDir()), enc)
}
