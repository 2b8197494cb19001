package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-cli/internal/model"
	"github.com/sells-group/lead-cli/internal/scorer"
)

// WriteTable writes the schema columns of b as an aligned text table.
// Extra columns are left to the CSV, JSON and XLSX formats.
func WriteTable(w io.Writer, b *model.Batch) error {
	header := fmt.Sprintf("%-24s %-18s %-14s %-20s %-12s %-16s %5s %-6s\n",
		"Name", "Contact", "Location", "Product Interest", "Last Contact", "Lead Source", "Score", "Status")
	if _, err := fmt.Fprint(w, header); err != nil {
		return eris.Wrap(err, "export: write table header")
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", 122)); err != nil {
		return eris.Wrap(err, "export: write table separator")
	}

	for _, l := range b.Leads {
		score := "-"
		if l.Score != nil {
			score = fmt.Sprintf("%d", *l.Score)
		}
		line := fmt.Sprintf("%-24s %-18s %-14s %-20s %-12s %-16s %5s %-6s\n",
			truncate(l.Name, 24), truncate(l.Contact, 18), truncate(l.Location, 14),
			truncate(l.ProductInterest, 20), truncate(l.LastContactDate, 12),
			truncate(l.LeadSource, 16), score, l.Status)
		if _, err := fmt.Fprint(w, line); err != nil {
			return eris.Wrap(err, "export: write table row")
		}
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// WriteSummary writes a plain-text digest of s.
func WriteSummary(w io.Writer, s scorer.Summary) error {
	var sb strings.Builder
	if s.Total == 0 {
		sb.WriteString("No leads.\n")
	} else {
		fmt.Fprintf(&sb, "\n--- Summary ---\n")
		fmt.Fprintf(&sb, "Total leads:   %d\n", s.Total)
		fmt.Fprintf(&sb, "Hot:           %d (%.1f%%)\n", s.Hot, s.HotPercent)
		fmt.Fprintf(&sb, "Warm:          %d\n", s.Warm)
		fmt.Fprintf(&sb, "Cold:          %d\n", s.Cold)
		fmt.Fprintf(&sb, "Average score: %.1f\n", s.AverageScore)

		writeCounts(&sb, "By lead source", s.BySource)
		writeCounts(&sb, "By product interest", s.ByProduct)
		writeCounts(&sb, "Top locations", s.TopLocations)

		if len(s.Recommendations) > 0 {
			sb.WriteString("\nRecommendations:\n")
			for _, r := range s.Recommendations {
				fmt.Fprintf(&sb, "  - %s\n", r)
			}
		}
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return eris.Wrap(err, "export: write summary")
	}
	return nil
}

func writeCounts(sb *strings.Builder, title string, counts []scorer.Count) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s:\n", title)
	for _, c := range counts {
		fmt.Fprintf(sb, "  %-25s %d\n", truncate(c.Label, 25), c.Count)
	}
}
