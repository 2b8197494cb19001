// Package suggest selects the day's product suggestions from a fixed catalog.
package suggest

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/lead-cli/internal/model"
)

// SeasonalRule adds Suggestion whenever the date falls in one of Months.
type SeasonalRule struct {
	Name       string           `yaml:"name" json:"name"`
	Months     []time.Month     `yaml:"months" json:"months"`
	Suggestion model.Suggestion `yaml:"suggestion" json:"suggestion"`
}

// Matches reports whether m is one of the rule's months.
func (r SeasonalRule) Matches(m time.Month) bool {
	for _, rm := range r.Months {
		if rm == m {
			return true
		}
	}
	return false
}

// Catalog holds every suggestion the selector can draw from.
type Catalog struct {
	// DayOfWeek is indexed Monday=0 through Sunday=6.
	DayOfWeek []model.Suggestion `yaml:"day_of_week" json:"day_of_week"`
	Seasonal  []SeasonalRule     `yaml:"seasonal" json:"seasonal"`
	Baseline  []model.Suggestion `yaml:"baseline" json:"baseline"`
}

// DefaultCatalog returns the built-in suggestion tables.
func DefaultCatalog() Catalog {
	return Catalog{
		DayOfWeek: []model.Suggestion{
			{
				Product:  "Accident Insurance",
				Reason:   "Start of work week - people think about safety",
				Approach: "Quick 10-minute signup for year-long protection",
				Icon:     "alert-triangle",
			},
			{
				Product:  "Child Education Plans",
				Reason:   "Parents are in planning mode mid-week",
				Approach: "Show long-term education cost inflation data",
				Icon:     "book-open",
			},
			{
				Product:  "Retirement Plans",
				Reason:   "Mid-week is ideal for long-term planning discussions",
				Approach: "Use retirement calculators to show the gap",
				Icon:     "umbrella",
			},
			{
				Product:  "Health Insurance Add-ons",
				Reason:   "Good day for upgrading existing customers",
				Approach: "Critical illness and outpatient coverage upsells",
				Icon:     "plus-circle",
			},
			{
				Product:  "Travel Insurance",
				Reason:   "Weekend trip planning makes this relevant",
				Approach: "Quick digital policy issuance for weekend travelers",
				Icon:     "map",
			},
			{
				Product:  "Family Floater Policies",
				Reason:   "Weekend family time makes protection relevant",
				Approach: "Cover the whole family under one premium",
				Icon:     "users",
			},
			{
				Product:  "Investment Review",
				Reason:   "Relaxed day for financial planning",
				Approach: "Offer free portfolio assessment and rebalancing",
				Icon:     "bar-chart-2",
			},
		},
		Seasonal: []SeasonalRule{
			{
				Name:   "financial-year-end",
				Months: []time.Month{time.March},
				Suggestion: model.Suggestion{
					Product:  "Tax-saving ELSS Funds",
					Reason:   "Financial year ending - tax saving rush",
					Approach: "Last chance for tax deductions this fiscal year",
					Icon:     "file-minus",
				},
			},
			{
				Name:   "festival",
				Months: []time.Month{time.October, time.November},
				Suggestion: model.Suggestion{
					Product:  "Gold Investment Plans",
					Reason:   "Festival season increases interest in gold",
					Approach: "Digital gold as a modern alternative to physical gold",
					Icon:     "award",
				},
			},
			{
				Name:   "monsoon",
				Months: []time.Month{time.June, time.July, time.August, time.September},
				Suggestion: model.Suggestion{
					Product:  "Home Insurance",
					Reason:   "Weather-related incidents increase during monsoon",
					Approach: "Protect against water damage and other monsoon risks",
					Icon:     "home",
				},
			},
			{
				Name:   "summer-vacation",
				Months: []time.Month{time.April, time.May},
				Suggestion: model.Suggestion{
					Product:  "International Travel Insurance",
					Reason:   "Peak summer vacation planning season",
					Approach: "Comprehensive coverage for foreign trips",
					Icon:     "globe",
				},
			},
		},
		Baseline: []model.Suggestion{
			{
				Product:  "Term Life Insurance",
				Reason:   "Always a high-commission product with essential protection for customers",
				Approach: "Focus on family security and peace of mind",
				Icon:     "shield-check",
			},
			{
				Product:  "Health Insurance",
				Reason:   "Year-round necessity with increasing awareness",
				Approach: "Emphasize rising healthcare costs and tax benefits",
				Icon:     "heart-pulse",
			},
			{
				Product:  "SIP Investment Plans",
				Reason:   "Long-term wealth building solution for all customer segments",
				Approach: "Start with small amounts and show compounding benefits",
				Icon:     "trending-up",
			},
		},
	}
}

// Clone returns a deep copy of c.
func (c Catalog) Clone() Catalog {
	out := Catalog{
		DayOfWeek: append([]model.Suggestion(nil), c.DayOfWeek...),
		Baseline:  append([]model.Suggestion(nil), c.Baseline...),
		Seasonal:  make([]SeasonalRule, len(c.Seasonal)),
	}
	for i, r := range c.Seasonal {
		r.Months = append([]time.Month(nil), r.Months...)
		out.Seasonal[i] = r
	}
	return out
}

// ValidateCatalog checks that every table entry is usable.
func ValidateCatalog(c Catalog) error {
	var errs []string

	if len(c.DayOfWeek) != 7 {
		errs = append(errs, fmt.Sprintf("day_of_week must have 7 entries, got %d", len(c.DayOfWeek)))
	}
	for i, s := range c.DayOfWeek {
		errs = append(errs, checkSuggestion(fmt.Sprintf("day_of_week[%d]", i), s)...)
	}

	for i, r := range c.Seasonal {
		prefix := fmt.Sprintf("seasonal[%d]", i)
		if len(r.Months) == 0 {
			errs = append(errs, prefix+": months must not be empty")
		}
		for _, m := range r.Months {
			if m < time.January || m > time.December {
				errs = append(errs, fmt.Sprintf("%s: month %d out of range", prefix, m))
			}
		}
		errs = append(errs, checkSuggestion(prefix, r.Suggestion)...)
	}

	for i, s := range c.Baseline {
		errs = append(errs, checkSuggestion(fmt.Sprintf("baseline[%d]", i), s)...)
	}

	if len(errs) > 0 {
		return eris.Errorf("suggest: catalog validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func checkSuggestion(prefix string, s model.Suggestion) []string {
	var errs []string
	if strings.TrimSpace(s.Product) == "" {
		errs = append(errs, prefix+": product is required")
	}
	if strings.TrimSpace(s.Reason) == "" {
		errs = append(errs, prefix+": reason is required")
	}
	if strings.TrimSpace(s.Approach) == "" {
		errs = append(errs, prefix+": approach is required")
	}
	return errs
}

// LoadCatalog reads a YAML catalog. Tables absent from the file keep their
// built-in entries.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, eris.Wrapf(err, "suggest: read catalog %s", path)
	}

	c := DefaultCatalog()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, eris.Wrap(err, "suggest: parse catalog")
	}
	if err := ValidateCatalog(c); err != nil {
		return Catalog{}, err
	}
	return c, nil
}
