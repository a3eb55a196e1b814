package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/azrea/companion/internal/alerts"
	"github.com/azrea/companion/pkg/models"
	"github.com/azrea/companion/pkg/utils"
)

// --- Intel Command ---

var intelCmd = &cobra.Command{
	Use:   "intel [query]",
	Short: "Aggregate company intelligence for a ticker or company name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		result := newIntelService().Intel(cmd.Context(), query)

		fmt.Printf("%s", result.Name)
		if result.Ticker != "" {
			fmt.Printf(" (%s)", result.Ticker)
		}
		if result.CIK > 0 {
			fmt.Printf("  CIK %d", result.CIK)
		}
		fmt.Println()

		if result.Price != nil {
			fmt.Printf("Price: %.2f\n", *result.Price)
		}
		if result.Summary.Extract != "" {
			fmt.Printf("\n%s\n", result.Summary.Extract)
			if result.Summary.URL != "" {
				fmt.Printf("(%s)\n", result.Summary.URL)
			}
		}
		printLeadership(result.Leadership)
		if len(result.Filings) > 0 {
			fmt.Println("\nRecent filings:")
			for _, f := range result.Filings {
				printFiling(f)
			}
		}
		if len(result.News) > 0 {
			fmt.Println("\nNews:")
			for _, n := range result.News {
				printNewsItem(n)
			}
		}
		return nil
	},
}

func printLeadership(l models.Leadership) {
	if l.Empty() {
		return
	}
	fmt.Println("\nLeadership:")
	sections := []struct {
		label string
		names []string
	}{
		{"CEO", l.CEO},
		{"Chair", l.Chairperson},
		{"Management", l.Managers},
		{"Owned by", l.Owners},
	}
	for _, s := range sections {
		if len(s.names) > 0 {
			fmt.Printf("  %-12s %s\n", s.label+":", strings.Join(s.names, ", "))
		}
	}
}

func printFiling(f models.FilingRecord) {
	line := fmt.Sprintf("  %-10s %s", f.Form, f.Date)
	if f.Description != "" {
		line += "  " + f.Description
	}
	fmt.Println(line)
}

func printNewsItem(n models.NewsItem) {
	fmt.Printf("  %s", n.Title)
	if n.Source != "" {
		fmt.Printf(" — %s", n.Source)
	}
	fmt.Println()
	if n.URL != "" {
		fmt.Printf("    %s\n", n.URL)
	}
}

// --- Price Command ---

var priceCmd = &cobra.Command{
	Use:   "price [ticker]",
	Short: "Show the latest share price",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		symbol := utils.NormalizeTicker(args[0])
		_, _, _, quotes, _ := newProviders()
		price, ok := quotes.Price(cmd.Context(), symbol)
		if !ok {
			return fmt.Errorf("no price available for %s", symbol)
		}
		fmt.Printf("%s: %.2f\n", symbol, price)
		return nil
	},
}

// --- Filings Command ---

var filingsCmd = &cobra.Command{
	Use:   "filings [ticker]",
	Short: "List recent SEC filings for a ticker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		symbol := utils.NormalizeTicker(args[0])
		limit, _ := cmd.Flags().GetInt("limit")

		edgar, _, _, _, _ := newProviders()
		entry, ok := edgar.ResolveTicker(cmd.Context(), symbol)
		if !ok {
			return fmt.Errorf("unknown ticker %s", symbol)
		}

		fmt.Printf("%s (CIK %d)\n", entry.Title, entry.CIK)
		filings := edgar.RecentFilings(cmd.Context(), entry.CIK, limit)
		if len(filings) == 0 {
			fmt.Println("no filings available")
			return nil
		}
		for _, f := range filings {
			printFiling(f)
		}
		return nil
	},
}

func init() {
	filingsCmd.Flags().Int("limit", 5, "maximum filings to list")
}

// --- News Command ---

var newsCmd = &cobra.Command{
	Use:   "news [query]",
	Short: "Search news or list market headlines",
	Long: `With a query and a configured NewsAPI key, searches recent coverage.
Without arguments, lists the latest headlines from the configured RSS
feeds; this needs no key.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		_, _, _, _, newses := newProviders()

		if len(args) == 0 {
			items := newses.Headlines(cmd.Context(), limit)
			if len(items) == 0 {
				fmt.Println("no headlines available")
				return nil
			}
			for _, n := range items {
				printNewsItem(n)
			}
			return nil
		}

		query := strings.Join(args, " ")
		items := newses.Search(cmd.Context(), query, limit)
		if len(items) == 0 {
			if cfg.News.APIKey == "" {
				fmt.Println("news search needs a NewsAPI key (see: companion status)")
			} else {
				fmt.Println("no articles found")
			}
			return nil
		}
		for _, n := range items {
			printNewsItem(n)
		}
		return nil
	},
}

func init() {
	newsCmd.Flags().Int("limit", 10, "maximum articles to list")
}

// --- Watch Command ---

var watchCmd = &cobra.Command{
	Use:   "watch [ticker]",
	Short: "Manage the watchlist",
	Long:  "Add a ticker to the watchlist, or list it when called without arguments.",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := openStore()

		if remove, _ := cmd.Flags().GetString("remove"); remove != "" {
			if err := s.Unwatch(remove); err != nil {
				return err
			}
			fmt.Printf("removed %s\n", utils.NormalizeTicker(remove))
			return nil
		}

		if len(args) == 0 {
			entries := s.Watchlist()
			if len(entries) == 0 {
				fmt.Println("watchlist is empty")
				return nil
			}
			for _, e := range entries {
				fmt.Printf("  %-8s added %s\n", e.Symbol, e.AddedAt.Format("2006-01-02"))
			}
			return nil
		}

		for _, arg := range args {
			if err := s.Watch(arg); err != nil {
				return err
			}
			fmt.Printf("watching %s\n", utils.NormalizeTicker(arg))
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().String("remove", "", "remove a ticker from the watchlist")
}

// --- Note Command ---

var noteCmd = &cobra.Command{
	Use:   "note [text]",
	Short: "Save a note, or list notes when called without arguments",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := openStore()

		if remove, _ := cmd.Flags().GetString("remove"); remove != "" {
			if err := s.DeleteNote(remove); err != nil {
				return err
			}
			fmt.Println("note deleted")
			return nil
		}

		if len(args) == 0 {
			notes := s.Notes()
			if len(notes) == 0 {
				fmt.Println("no notes")
				return nil
			}
			for _, n := range notes {
				fmt.Printf("  [%s] %s  %s\n", n.ID[:8], n.CreatedAt.Format("2006-01-02"), n.Text)
			}
			return nil
		}

		note, err := s.AddNote(strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Printf("saved note %s\n", note.ID[:8])
		return nil
	},
}

func init() {
	noteCmd.Flags().String("remove", "", "delete a note by id")
}

// --- Remind Command ---

var remindCmd = &cobra.Command{
	Use:   "remind [text]",
	Short: "Schedule a reminder, or list pending ones without arguments",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := openStore()

		if done, _ := cmd.Flags().GetString("done"); done != "" {
			if err := s.CompleteReminder(done); err != nil {
				return err
			}
			fmt.Println("reminder completed")
			return nil
		}

		if len(args) == 0 {
			reminders := s.Reminders(true)
			if len(reminders) == 0 {
				fmt.Println("no pending reminders")
				return nil
			}
			for _, r := range reminders {
				fmt.Printf("  [%s] due %s  %s\n", r.ID[:8], r.DueDate.Format("2006-01-02"), r.Text)
			}
			return nil
		}

		on, _ := cmd.Flags().GetString("on")
		due, err := time.Parse("2006-01-02", on)
		if err != nil {
			return fmt.Errorf("invalid --on date %q, want YYYY-MM-DD", on)
		}
		rem, err := s.AddReminder(strings.Join(args, " "), due)
		if err != nil {
			return err
		}
		fmt.Printf("reminder %s set for %s\n", rem.ID[:8], due.Format("2006-01-02"))
		return nil
	},
}

func init() {
	remindCmd.Flags().String("on", time.Now().AddDate(0, 0, 1).Format("2006-01-02"), "due date (YYYY-MM-DD)")
	remindCmd.Flags().String("done", "", "mark a reminder done by id")
}

// --- Alerts Command ---

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Manage and run alert rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		rules := openStore().Alerts()
		if len(rules) == 0 {
			fmt.Println("no alert rules")
			return nil
		}
		for _, r := range rules {
			state := "on"
			if !r.Enabled {
				state = "off"
			}
			detail := r.Symbol
			switch r.Type {
			case models.AlertPrice:
				if r.Above != nil {
					detail += fmt.Sprintf(" above %.2f", *r.Above)
				}
				if r.Below != nil {
					detail += fmt.Sprintf(" below %.2f", *r.Below)
				}
			case models.AlertKeyword:
				kw := r.Keywords
				if len(kw) == 0 {
					kw = alerts.BuyoutKeywords
				}
				detail = strings.Join(kw, ", ")
			}
			fmt.Printf("  [%s] %-3s %-8s %s\n", r.ID[:8], state, r.Type, detail)
		}
		return nil
	},
}

var alertsAddCmd = &cobra.Command{
	Use:   "add [type]",
	Short: "Add an alert rule (type: price, keyword or legal)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rule := models.AlertRule{Type: args[0]}

		symbol, _ := cmd.Flags().GetString("symbol")
		rule.Symbol = utils.NormalizeTicker(symbol)

		switch rule.Type {
		case models.AlertPrice:
			if rule.Symbol == "" {
				return fmt.Errorf("price alerts need --symbol")
			}
			if cmd.Flags().Changed("above") {
				v, _ := cmd.Flags().GetFloat64("above")
				rule.Above = &v
			}
			if cmd.Flags().Changed("below") {
				v, _ := cmd.Flags().GetFloat64("below")
				rule.Below = &v
			}
			if rule.Above == nil && rule.Below == nil {
				return fmt.Errorf("price alerts need --above and/or --below")
			}
		case models.AlertKeyword:
			rule.Keywords, _ = cmd.Flags().GetStringSlice("keywords")
		case models.AlertLegal:
			if rule.Symbol == "" {
				return fmt.Errorf("legal alerts need --symbol")
			}
		default:
			return fmt.Errorf("unknown alert type %q", rule.Type)
		}

		saved, err := openStore().AddAlert(rule)
		if err != nil {
			return err
		}
		fmt.Printf("alert %s added\n", saved.ID[:8])
		return nil
	},
}

var alertsRemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Delete an alert rule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return openStore().DeleteAlert(resolveAlertID(args[0]))
	},
}

var alertsRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Watch alert rules until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")

		s := openStore()
		edgar, _, _, quotes, newses := newProviders()
		manager := alerts.NewManager(s, quotes, newses, edgar, func(e alerts.Event) {
			fmt.Printf("[%s] ALERT %s: %s\n", e.At.Format("15:04:05"), e.Type, e.Message)
		})

		w := alerts.NewWatcher(manager, interval)
		w.Start(cmd.Context())
		defer w.Stop()

		fmt.Printf("watching %d rules every %s, ctrl-c to stop\n", len(s.Alerts()), interval)
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		return nil
	},
}

// resolveAlertID expands an id prefix, as printed by the list, to the
// full rule id. Unmatched input passes through unchanged.
func resolveAlertID(prefix string) string {
	for _, r := range openStore().Alerts() {
		if strings.HasPrefix(r.ID, prefix) {
			return r.ID
		}
	}
	return prefix
}

func init() {
	alertsAddCmd.Flags().String("symbol", "", "ticker the rule applies to")
	alertsAddCmd.Flags().Float64("above", 0, "fire when the price reaches this level")
	alertsAddCmd.Flags().Float64("below", 0, "fire when the price falls to this level")
	alertsAddCmd.Flags().StringSlice("keywords", nil, "headline keywords (default: buyout terms)")
	alertsRunCmd.Flags().Duration("interval", time.Minute, "polling interval")

	alertsCmd.AddCommand(alertsAddCmd)
	alertsCmd.AddCommand(alertsRemoveCmd)
	alertsCmd.AddCommand(alertsRunCmd)
}
