package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-cli/internal/export"
	"github.com/sells-group/lead-cli/internal/ingest"
	"github.com/sells-group/lead-cli/internal/intake"
	"github.com/sells-group/lead-cli/internal/model"
	"github.com/sells-group/lead-cli/internal/pipeline"
	"github.com/sells-group/lead-cli/internal/scorer"
)

var scoreCmd = &cobra.Command{
	Use:   "score <file>...",
	Short: "Validate, clean and score lead files",
	Long: `Score one or more lead files (.csv, .xlsx or .json).

Each file is validated as a whole: a missing Name or Contact column, an
empty file, or any contact without a 10-digit run rejects that file and
nothing is scored. Accepted files are cleaned, scored 0-100 and labelled
Hot (>= 80), Warm (>= 50) or Cold.

Examples:
  # Score a spreadsheet and print a table with a summary
  score leads.xlsx

  # Score two files as of a fixed day and export CSV
  score jan.csv feb.csv --date 2024-03-15 --format csv --output scored.csv

  # Show why each lead scored what it did
  score leads.csv --explain`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.String("format", "table", "output format: table, csv, json or xlsx")
	f.String("output", "", "output file path (default: stdout)")
	f.String("date", "", "score as of this day, YYYY-MM-DD (default: today)")
	f.String("sheet", "", "worksheet name for .xlsx files (default: first sheet)")
	f.Bool("explain", false, "print the point breakdown for each lead")
	f.Bool("summary", true, "print status counts and recommendations")

	rootCmd.AddCommand(scoreCmd)
}

// scoreOptions are the parsed score flags.
type scoreOptions struct {
	Format  export.Format
	Output  string
	Date    string
	Sheet   string
	Explain bool
	Summary bool
}

// explained pairs a lead with its point breakdown.
type explained struct {
	Name      string
	Breakdown scorer.Breakdown
}

func runScore(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate("score"); err != nil {
		return err
	}

	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := export.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	opts := scoreOptions{Format: format}
	opts.Output, _ = cmd.Flags().GetString("output")
	opts.Date, _ = cmd.Flags().GetString("date")
	opts.Sheet, _ = cmd.Flags().GetString("sheet")
	opts.Explain, _ = cmd.Flags().GetBool("explain")
	opts.Summary, _ = cmd.Flags().GetBool("summary")

	return scoreRun(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, args)
}

// scoreRun scores files and writes the result. Validation messages are
// printed to errOut as they were produced.
func scoreRun(ctx context.Context, out, errOut io.Writer, opts scoreOptions, files []string) error {
	if opts.Format == export.FormatXLSX && opts.Output == "" {
		return eris.New("score: --format xlsx requires --output")
	}

	clock, err := fixedClock(opts.Date)
	if err != nil {
		return err
	}
	env, err := initEnv(clock)
	if err != nil {
		return err
	}

	log := zap.L().With(zap.String("command", "score"))
	start := time.Now()

	scored, details, err := scoreFiles(ctx, env.Pipeline, files, ingest.Options{Sheet: opts.Sheet}, opts.Explain)
	if err != nil {
		var verr *intake.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintln(errOut, verr.Message) //nolint:errcheck
		}
		return err
	}

	log.Info("scoring complete",
		zap.Int("files", len(files)),
		zap.Int("leads", scored.Len()),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	w, closeOut, err := openOutput(out, opts.Output)
	if err != nil {
		return err
	}
	if err := export.Write(w, opts.Format, scored); err != nil {
		_ = closeOut()
		return err
	}
	if err := closeOut(); err != nil {
		return err
	}

	// Reports go to stdout only when they cannot corrupt machine output.
	if opts.Format != export.FormatTable && opts.Output == "" {
		return nil
	}
	if opts.Output != "" {
		fmt.Fprintf(out, "Wrote %d scored leads to %s\n", scored.Len(), opts.Output) //nolint:errcheck
	}
	if opts.Explain {
		if err := writeExplain(out, details); err != nil {
			return err
		}
	}
	if opts.Summary {
		return export.WriteSummary(out, scorer.Summarize(scored.Leads))
	}
	return nil
}

// scoreFiles loads the files concurrently, then processes each as its own
// batch in argument order and collects the scored leads. Columns are the
// union of every file's columns in first-seen order.
func scoreFiles(ctx context.Context, p *pipeline.Pipeline, files []string, opts ingest.Options, explain bool) (*model.Batch, []explained, error) {
	coll := model.NewCollection()
	var columns []string
	seen := make(map[string]bool)
	var details []explained

	batches, err := ingest.LoadAll(ctx, files, opts)
	if err != nil {
		return nil, nil, err
	}

	for i, b := range batches {
		path := files[i]
		scored, err := p.Process(b)
		if err != nil {
			zap.L().Warn("file rejected", zap.String("file", path), zap.Error(err))
			return nil, nil, err
		}

		for _, c := range scored.Columns {
			if !seen[c] {
				seen[c] = true
				columns = append(columns, c)
			}
		}
		coll.AppendBatch(scored)

		if explain {
			now := p.Now()
			for i, l := range scored.Leads {
				details = append(details, explained{
					Name:      l.Name,
					Breakdown: p.Scorer().Explain(scored, i, now),
				})
			}
		}
	}

	return &model.Batch{Columns: columns, Leads: coll.Leads()}, details, nil
}

// writeExplain prints one breakdown line per lead.
func writeExplain(w io.Writer, details []explained) error {
	if _, err := fmt.Fprintln(w, "\n--- Breakdown ---"); err != nil {
		return err
	}
	for _, d := range details {
		b := d.Breakdown
		recency := fmt.Sprintf("%+d", b.Recency)
		switch {
		case b.RecencySkipped:
			recency = "skipped"
		case b.DaysSince != nil:
			recency = fmt.Sprintf("%+d (%dd)", b.Recency, *b.DaysSince)
		}
		if _, err := fmt.Fprintf(w, "%-24s base %d  recency %s  product %+d  source %+d  = %d %s\n",
			truncateName(d.Name, 24), b.Base, recency, b.Product, b.Source, b.Score, b.Status); err != nil {
			return err
		}
	}
	return nil
}

func truncateName(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// openOutput returns stdout, or a created file when path is set.
func openOutput(stdout io.Writer, path string) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "create output %s", path)
	}
	return f, f.Close, nil
}
