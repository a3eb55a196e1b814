// companion — company intelligence from public sources
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"github.com/azrea/companion/internal/config"
	"github.com/azrea/companion/internal/intel"
	"github.com/azrea/companion/internal/providers/news"
	"github.com/azrea/companion/internal/providers/quote"
	"github.com/azrea/companion/internal/providers/sec"
	"github.com/azrea/companion/internal/providers/wiki"
	"github.com/azrea/companion/internal/providers/wikidata"
	"github.com/azrea/companion/internal/store"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "companion",
	Short: "companion — company intelligence from public sources",
	Long: `companion aggregates public company data into one place:
SEC EDGAR filings, Wikipedia background, Wikidata leadership, share
prices and news coverage. Works without any API keys; optional keys
unlock the NewsAPI and Alpha Vantage sources.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A .env file is optional; absence is not an error.
		_ = godotenv.Load()

		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		initLogging(cfg.Logging)
		return nil
	},
}

func initLogging(lc config.LoggingConfig) {
	logger := log.Logger{Level: log.ParseLevel(lc.Level)}
	if lc.Format != "json" {
		logger.Writer = &log.ConsoleWriter{ColorOutput: true, EndWithMessage: true}
	}
	log.DefaultLogger = logger
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(intelCmd)
	rootCmd.AddCommand(priceCmd)
	rootCmd.AddCommand(filingsCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(remindCmd)
	rootCmd.AddCommand(alertsCmd)
	rootCmd.AddCommand(statusCmd)
}

// newProviders wires the provider clients from the loaded config.
func newProviders() (*sec.Client, *wiki.Client, *wikidata.Client, *quote.Client, *news.Client) {
	ua := cfg.SEC.UserAgentString()
	return sec.New(cfg.SEC),
		wiki.New(ua),
		wikidata.New(ua),
		quote.New(ua, cfg.Quote.AlphaVantageKey),
		news.New(ua, cfg.News.APIKey, news.WithFeeds(cfg.News.Feeds))
}

func newIntelService() *intel.Service {
	edgar, wikis, wikidatas, quotes, newses := newProviders()
	return intel.New(edgar, wikis, wikidatas, quotes, newses, intel.Limits{
		Filings: cfg.Intel.FilingLimit,
		News:    cfg.Intel.NewsLimit,
	})
}

func openStore() *store.Store {
	return store.Open(cfg.Store.Path)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("companion %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and API key status",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  companion — Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:     %s (%s)\n", version, commit)
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    SEC User-Agent:  %s\n", cfg.SEC.UserAgentString())
		fmt.Printf("    Cache Dir:       %s\n", cfg.SEC.CacheDir)
		fmt.Printf("    Store:           %s\n", cfg.Store.Path)
		fmt.Printf("    RSS Feeds:       %d configured\n", len(cfg.News.Feeds))
		fmt.Println()

		fmt.Println("  API Keys (all optional):")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "not set"
			if k.IsSet {
				status = fmt.Sprintf("set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-20s %s\n", k.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
