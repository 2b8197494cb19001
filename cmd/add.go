package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lead-cli/internal/export"
	"github.com/sells-group/lead-cli/internal/intake"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Score a single lead entered by hand",
	Long: `Score one lead from flags. Name and contact are required; the contact
may be a phone number or an e-mail address.

Product interests: ` + strings.Join(intake.ProductOptions, ", ") + `
Lead sources:      ` + strings.Join(intake.SourceOptions, ", "),
	RunE: runAdd,
}

func init() {
	f := addCmd.Flags()
	f.String("name", "", "lead name (required)")
	f.String("contact", "", "phone number or e-mail (required)")
	f.String("location", "", "city or region")
	f.String("product", "", "product interest")
	f.String("last-contact", "", "last contact date, e.g. 2024-03-01")
	f.String("source", "", "lead source")
	f.String("date", "", "score as of this day, YYYY-MM-DD (default: today)")
	f.String("format", "table", "output format: table or json")

	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, _ []string) error {
	if err := cfg.Validate("score"); err != nil {
		return err
	}

	var entry intake.Entry
	entry.Name, _ = cmd.Flags().GetString("name")
	entry.Contact, _ = cmd.Flags().GetString("contact")
	entry.Location, _ = cmd.Flags().GetString("location")
	entry.ProductInterest, _ = cmd.Flags().GetString("product")
	entry.LastContactDate, _ = cmd.Flags().GetString("last-contact")
	entry.LeadSource, _ = cmd.Flags().GetString("source")
	date, _ := cmd.Flags().GetString("date")
	formatFlag, _ := cmd.Flags().GetString("format")

	format, err := export.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	if format != export.FormatTable && format != export.FormatJSON {
		return eris.Errorf("add: --format must be table or json (got %q)", formatFlag)
	}

	return addRun(cmd.OutOrStdout(), cmd.ErrOrStderr(), entry, date, format)
}

// addRun validates and scores one entry and prints it.
func addRun(out, errOut io.Writer, entry intake.Entry, date string, format export.Format) error {
	clock, err := fixedClock(date)
	if err != nil {
		return err
	}
	env, err := initEnv(clock)
	if err != nil {
		return err
	}

	scored, err := env.Pipeline.ProcessEntry(entry)
	if err != nil {
		var fe *intake.FormError
		if errors.As(err, &fe) {
			writeFormError(errOut, fe)
		}
		return err
	}

	if format == export.FormatJSON {
		return export.WriteJSON(out, scored)
	}
	if _, err := fmt.Fprintln(out, "Lead added and scored successfully"); err != nil {
		return err
	}
	return export.WriteTable(out, scored)
}

func writeFormError(w io.Writer, fe *intake.FormError) {
	fmt.Fprintln(w, fe.Message) //nolint:errcheck
	fields := make([]string, 0, len(fe.Fields))
	for f := range fe.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintf(w, "  %s: %s\n", f, fe.Fields[f]) //nolint:errcheck
	}
}
