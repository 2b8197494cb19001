package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lead-cli/internal/model"
	"github.com/sells-group/lead-cli/internal/server"
	"github.com/sells-group/lead-cli/internal/suggest"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Show the day's product suggestions",
	Long: `Print up to five products to pitch on a given day: one for the day of
the week, any seasonal products for the month, then evergreen products.`,
	RunE: runSuggest,
}

func init() {
	f := suggestCmd.Flags()
	f.String("date", "", "day to suggest for, YYYY-MM-DD (default: today)")
	f.String("format", "table", "output format: table or json")
	f.Bool("no-quote", false, "omit the quote of the day")

	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, _ []string) error {
	if err := cfg.Validate("suggest"); err != nil {
		return err
	}

	date, _ := cmd.Flags().GetString("date")
	format, _ := cmd.Flags().GetString("format")
	noQuote, _ := cmd.Flags().GetBool("no-quote")
	if format != "table" && format != "json" {
		return eris.Errorf("suggest: --format must be table or json (got %q)", format)
	}

	env, err := initEnv(nil)
	if err != nil {
		return err
	}
	day, err := suggest.ParseDay(date, time.Now(), env.Location)
	if err != nil {
		return err
	}

	resp := server.SuggestionsResponse{
		Date:        day.Format(time.DateOnly),
		Suggestions: env.Selector.Select(day),
	}
	if !noQuote {
		resp.Quote = suggest.QuoteOfDay(day)
	}

	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	return writeSuggestions(cmd.OutOrStdout(), day, resp.Suggestions, resp.Quote)
}

// writeSuggestions prints a numbered list, then the quote when set.
func writeSuggestions(w io.Writer, day time.Time, ss []model.Suggestion, q model.Quote) error {
	if _, err := fmt.Fprintf(w, "Suggestions for %s\n\n", day.Format("Monday, 2 January 2006")); err != nil {
		return err
	}
	for i, s := range ss {
		if _, err := fmt.Fprintf(w, "%d. %s\n   Why:      %s\n   Approach: %s\n\n", i+1, s.Product, s.Reason, s.Approach); err != nil {
			return err
		}
	}
	if q.Text != "" {
		if _, err := fmt.Fprintf(w, "\"%s\"\n  - %s\n", q.Text, q.Author); err != nil {
			return err
		}
	}
	return nil
}
