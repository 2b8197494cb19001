// Package scorer implements deterministic rule-based lead scoring.
package scorer

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/lead-cli/internal/model"
)

// KeywordWeight adds Points once for every field containing Keyword.
type KeywordWeight struct {
	Keyword string `yaml:"keyword" json:"keyword"`
	Points  int    `yaml:"points" json:"points"`
}

// RecencyBand applies Points when elapsed days <= MaxDays. A nil MaxDays
// closes the table and matches everything older.
type RecencyBand struct {
	MaxDays *int `yaml:"max_days,omitempty" json:"max_days,omitempty"`
	Points  int  `yaml:"points" json:"points"`
}

// Tier assigns Status to scores >= MinScore. Tiers are checked in order.
type Tier struct {
	Status   model.Status `yaml:"status" json:"status"`
	MinScore int          `yaml:"min_score" json:"min_score"`
}

// Rules is the complete scoring table.
type Rules struct {
	BaseScore       int             `yaml:"base_score" json:"base_score"`
	MinScore        int             `yaml:"min_score" json:"min_score"`
	MaxScore        int             `yaml:"max_score" json:"max_score"`
	Recency         []RecencyBand   `yaml:"recency" json:"recency"`
	ProductKeywords []KeywordWeight `yaml:"product_keywords" json:"product_keywords"`
	SourceKeywords  []KeywordWeight `yaml:"source_keywords" json:"source_keywords"`
	Tiers           []Tier          `yaml:"tiers" json:"tiers"`
}

func days(n int) *int { return &n }

// DefaultRules returns the built-in scoring table. Each call returns a fresh
// copy, so callers may modify it freely.
func DefaultRules() Rules {
	return Rules{
		BaseScore: 50,
		MinScore:  0,
		MaxScore:  100,

		// Elapsed whole days since last contact.
		Recency: []RecencyBand{
			{MaxDays: days(7), Points: 20},
			{MaxDays: days(30), Points: 10},
			{MaxDays: days(90), Points: 0},
			{Points: -15},
		},

		ProductKeywords: []KeywordWeight{
			{Keyword: "insurance", Points: 10},
			{Keyword: "mutual fund", Points: 10},
			{Keyword: "premium", Points: 10},
			{Keyword: "gold", Points: 10},
			{Keyword: "investment", Points: 10},
		},

		// Warm sources first, then cold ones.
		SourceKeywords: []KeywordWeight{
			{Keyword: "referral", Points: 15},
			{Keyword: "existing customer", Points: 15},
			{Keyword: "partner", Points: 15},
			{Keyword: "website", Points: 15},
			{Keyword: "cold call", Points: -5},
			{Keyword: "exhibition", Points: -5},
			{Keyword: "advertisement", Points: -5},
		},

		Tiers: []Tier{
			{Status: model.StatusHot, MinScore: 80},
			{Status: model.StatusWarm, MinScore: 50},
			{Status: model.StatusCold, MinScore: 0},
		},
	}
}

// Clone returns a deep copy of r.
func (r Rules) Clone() Rules {
	out := r
	out.Recency = make([]RecencyBand, len(r.Recency))
	for i, b := range r.Recency {
		out.Recency[i] = b
		if b.MaxDays != nil {
			out.Recency[i].MaxDays = days(*b.MaxDays)
		}
	}
	out.ProductKeywords = append([]KeywordWeight(nil), r.ProductKeywords...)
	out.SourceKeywords = append([]KeywordWeight(nil), r.SourceKeywords...)
	out.Tiers = append([]Tier(nil), r.Tiers...)
	return out
}

// ValidateRules checks that a rule table is internally consistent.
func ValidateRules(r Rules) error {
	var errs []string

	// Score range.
	if r.MaxScore <= r.MinScore {
		errs = append(errs, "max_score must be > min_score")
	}
	if r.BaseScore < r.MinScore || r.BaseScore > r.MaxScore {
		errs = append(errs, fmt.Sprintf("base_score must be between %d and %d", r.MinScore, r.MaxScore))
	}

	// Recency bands: ascending bounds, last band open-ended.
	if len(r.Recency) == 0 {
		errs = append(errs, "recency must have at least one band")
	}
	prev := -1 << 31
	for i, b := range r.Recency {
		last := i == len(r.Recency)-1
		switch {
		case b.MaxDays == nil && !last:
			errs = append(errs, fmt.Sprintf("recency[%d]: only the last band may omit max_days", i))
		case b.MaxDays != nil && last:
			errs = append(errs, "recency: last band must omit max_days")
		case b.MaxDays != nil && *b.MaxDays <= prev:
			errs = append(errs, fmt.Sprintf("recency[%d]: max_days must increase", i))
		}
		if b.MaxDays != nil {
			prev = *b.MaxDays
		}
	}

	errs = append(errs, validateKeywords("product_keywords", r.ProductKeywords)...)
	errs = append(errs, validateKeywords("source_keywords", r.SourceKeywords)...)

	// Tiers: known statuses, strictly descending thresholds.
	if len(r.Tiers) == 0 {
		errs = append(errs, "tiers must not be empty")
	}
	seen := make(map[model.Status]bool, len(r.Tiers))
	for i, t := range r.Tiers {
		switch t.Status {
		case model.StatusHot, model.StatusWarm, model.StatusCold:
		default:
			errs = append(errs, fmt.Sprintf("tiers[%d]: unknown status %q", i, t.Status))
		}
		if seen[t.Status] {
			errs = append(errs, fmt.Sprintf("tiers[%d]: duplicate status %q", i, t.Status))
		}
		seen[t.Status] = true
		if i > 0 && t.MinScore >= r.Tiers[i-1].MinScore {
			errs = append(errs, fmt.Sprintf("tiers[%d]: min_score must decrease", i))
		}
	}
	if n := len(r.Tiers); n > 0 && r.Tiers[n-1].MinScore > r.MinScore {
		errs = append(errs, "tiers: last tier must cover min_score")
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: rules validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateKeywords(section string, kws []KeywordWeight) []string {
	var errs []string
	seen := make(map[string]bool, len(kws))
	for i, kw := range kws {
		k := strings.TrimSpace(kw.Keyword)
		if k == "" {
			errs = append(errs, fmt.Sprintf("%s[%d]: keyword is empty", section, i))
			continue
		}
		if seen[strings.ToLower(k)] {
			errs = append(errs, fmt.Sprintf("%s[%d]: duplicate keyword %q", section, i, k))
		}
		seen[strings.ToLower(k)] = true
	}
	return errs
}

// LoadRules reads a YAML rule table. Sections absent from the file keep
// their default values.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, eris.Wrapf(err, "scorer: read rules %s", path)
	}

	r := DefaultRules()
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rules{}, eris.Wrap(err, "scorer: parse rules")
	}
	if err := ValidateRules(r); err != nil {
		return Rules{}, err
	}
	return r, nil
}

// MarshalRules renders r as YAML.
func MarshalRules(r Rules) ([]byte, error) {
	out, err := yaml.Marshal(r)
	if err != nil {
		return nil, eris.Wrap(err, "scorer: marshal rules")
	}
	return out, nil
}
