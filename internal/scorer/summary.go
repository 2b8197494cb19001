package scorer

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/sells-group/lead-cli/internal/model"
)

const (
	histogramBins  = 20
	topLocationCap = 10
)

// Count is a label with its number of leads.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Bin is one score histogram bucket covering [From, To).
// The last bucket also includes its upper bound.
type Bin struct {
	From  int `json:"from"`
	To    int `json:"to"`
	Count int `json:"count"`
}

// Summary aggregates a set of scored leads.
type Summary struct {
	Total           int      `json:"total"`
	Scored          int      `json:"scored"`
	Hot             int      `json:"hot"`
	Warm            int      `json:"warm"`
	Cold            int      `json:"cold"`
	HotPercent      float64  `json:"hot_percent"`
	AverageScore    float64  `json:"average_score"`
	BySource        []Count  `json:"by_source,omitempty"`
	ByProduct       []Count  `json:"by_product,omitempty"`
	TopLocations    []Count  `json:"top_locations,omitempty"`
	Histogram       []Bin    `json:"histogram"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// Summarize computes status counts, distributions and follow-up advice over
// leads. Unscored leads count toward Total only.
func Summarize(leads []model.Lead) Summary {
	s := Summary{
		Total:     len(leads),
		Histogram: make([]Bin, histogramBins),
	}
	width := 100 / histogramBins
	for i := range s.Histogram {
		s.Histogram[i] = Bin{From: i * width, To: (i + 1) * width}
	}

	sources := make(map[string]int)
	products := make(map[string]int)
	locations := make(map[string]int)
	sum := 0

	for _, l := range leads {
		tally(sources, l.LeadSource)
		tally(products, l.ProductInterest)
		tally(locations, l.Location)

		if !l.Scored() {
			continue
		}
		s.Scored++
		sum += *l.Score

		switch l.Status {
		case model.StatusHot:
			s.Hot++
		case model.StatusWarm:
			s.Warm++
		case model.StatusCold:
			s.Cold++
		}

		bin := min(max(*l.Score/width, 0), histogramBins-1)
		s.Histogram[bin].Count++
	}

	if s.Total > 0 {
		s.HotPercent = math.Round(float64(s.Hot)/float64(s.Total)*1000) / 10
	}
	if s.Scored > 0 {
		s.AverageScore = math.Round(float64(sum)/float64(s.Scored)*10) / 10
	}

	s.BySource = ranked(sources, 0)
	s.ByProduct = ranked(products, 0)
	s.TopLocations = ranked(locations, topLocationCap)
	s.Recommendations = Recommendations(s.Hot, s.Warm, s.Cold)
	return s
}

// Recommendations returns follow-up advice for each non-empty tier.
func Recommendations(hot, warm, cold int) []string {
	var recs []string
	if hot > 0 {
		recs = append(recs, fmt.Sprintf("You have %d hot leads! Focus on closing these immediately with direct calls.", hot))
	}
	if warm > 0 {
		recs = append(recs, fmt.Sprintf("Nurture your %d warm leads with regular follow-ups and address any objections they might have.", warm))
	}
	if cold > 0 {
		recs = append(recs, fmt.Sprintf("For your %d cold leads, try a new approach or consider reserving them for special promotions.", cold))
	}
	return recs
}

func tally(m map[string]int, v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	m[v]++
}

// ranked orders counts descending, ties by label. limit <= 0 keeps all.
func ranked(m map[string]int, limit int) []Count {
	if len(m) == 0 {
		return nil
	}
	out := make([]Count, 0, len(m))
	for k, v := range m {
		out = append(out, Count{Label: k, Count: v})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
