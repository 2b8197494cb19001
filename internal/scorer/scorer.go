package scorer

import (
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/lead-cli/internal/intake"
	"github.com/sells-group/lead-cli/internal/model"
)

// Breakdown itemizes how one lead's score was reached.
type Breakdown struct {
	Base           int          `json:"base"`
	Recency        int          `json:"recency"`
	DaysSince      *int         `json:"days_since,omitempty"`
	RecencySkipped bool         `json:"recency_skipped,omitempty"`
	Product        int          `json:"product"`
	ProductMatches []string     `json:"product_matches,omitempty"`
	Source         int          `json:"source"`
	SourceMatches  []string     `json:"source_matches,omitempty"`
	Raw            int          `json:"raw"`
	Score          int          `json:"score"`
	Status         model.Status `json:"status"`
}

// Scorer applies a fixed rule table. It holds no per-call state and may be
// shared between goroutines.
type Scorer struct {
	rules Rules
}

// New returns a Scorer over a validated copy of rules.
func New(rules Rules) (*Scorer, error) {
	if err := ValidateRules(rules); err != nil {
		return nil, err
	}
	return &Scorer{rules: rules.Clone()}, nil
}

// NewDefault returns a Scorer over DefaultRules.
func NewDefault() *Scorer {
	return &Scorer{rules: DefaultRules()}
}

// Rules returns a copy of the active rule table.
func (s *Scorer) Rules() Rules {
	return s.rules.Clone()
}

// Score returns a copy of b with Score and Status set on every lead. now is
// the single reference instant for the whole batch; leads are scored
// independently of each other. Adjustments tied to a column the batch lacks
// are skipped.
func (s *Scorer) Score(b *model.Batch, now time.Time) *model.Batch {
	out := b.Clone()
	if out == nil {
		return nil
	}

	cols := columnsOf(out)
	lower := cases.Lower(language.Und)

	for i := range out.Leads {
		l := &out.Leads[i]
		bd := s.explain(*l, cols, now, lower)
		score := bd.Score
		l.Score = &score
		l.Status = bd.Status

		zap.L().Debug("scorer: scored lead",
			zap.Int("index", i),
			zap.String("name", l.Name),
			zap.Int("score", score),
			zap.String("status", string(bd.Status)),
		)
	}

	return out
}

// Explain scores one lead of b without modifying it.
func (s *Scorer) Explain(b *model.Batch, index int, now time.Time) Breakdown {
	return s.explain(b.Leads[index], columnsOf(b), now, cases.Lower(language.Und))
}

// StatusFor maps a clamped score to its tier.
func (s *Scorer) StatusFor(score int) model.Status {
	for _, t := range s.rules.Tiers {
		if score >= t.MinScore {
			return t.Status
		}
	}
	return s.rules.Tiers[len(s.rules.Tiers)-1].Status
}

type columnSet struct {
	date, product, source bool
}

func columnsOf(b *model.Batch) columnSet {
	return columnSet{
		date:    b.HasColumn(model.ColLastContactDate),
		product: b.HasColumn(model.ColProductInterest),
		source:  b.HasColumn(model.ColLeadSource),
	}
}

func (s *Scorer) explain(l model.Lead, cols columnSet, now time.Time, lower cases.Caser) Breakdown {
	bd := Breakdown{Base: s.rules.BaseScore}

	if cols.date {
		d, err := DaysSince(l.LastContactDate, now)
		if err != nil {
			bd.RecencySkipped = true
			zap.L().Warn("scorer: skipping recency adjustment",
				zap.String("name", l.Name),
				zap.String("last_contact_date", l.LastContactDate),
				zap.Error(err),
			)
		} else {
			bd.DaysSince = &d
			bd.Recency = s.recencyPoints(d)
		}
	}

	if cols.product {
		bd.Product, bd.ProductMatches = matchKeywords(lower.String(l.ProductInterest), s.rules.ProductKeywords)
	}
	if cols.source {
		bd.Source, bd.SourceMatches = matchKeywords(lower.String(l.LeadSource), s.rules.SourceKeywords)
	}

	bd.Raw = bd.Base + bd.Recency + bd.Product + bd.Source
	bd.Score = min(max(bd.Raw, s.rules.MinScore), s.rules.MaxScore)
	bd.Status = s.StatusFor(bd.Score)
	return bd
}

func (s *Scorer) recencyPoints(d int) int {
	for _, b := range s.rules.Recency {
		if b.MaxDays == nil || d <= *b.MaxDays {
			return b.Points
		}
	}
	return 0
}

// matchKeywords sums the points of every keyword found in text. text must
// already be lower-cased.
func matchKeywords(text string, kws []KeywordWeight) (int, []string) {
	total := 0
	var matched []string
	for _, kw := range kws {
		if strings.Contains(text, strings.ToLower(kw.Keyword)) {
			total += kw.Points
			matched = append(matched, kw.Keyword)
		}
	}
	return total, matched
}

// DaysSince returns whole calendar days from date to now's calendar day in
// now's location. Future dates yield negative values.
func DaysSince(date string, now time.Time) (int, error) {
	loc := now.Location()
	d, err := intake.ParseDate(date, loc)
	if err != nil {
		return 0, err
	}
	today := intake.DateOf(now, loc)

	// Compare in UTC so DST transitions cannot shorten a day.
	a := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24), nil
}
