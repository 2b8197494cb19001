package suggest

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-cli/internal/model"
)

// DefaultMax is the number of suggestions shown per day.
const DefaultMax = 5

// Selector picks suggestions for a date. The result depends only on the
// date's weekday and month.
type Selector struct {
	catalog Catalog
	limit   int
}

// NewSelector returns a Selector over a validated copy of c. limit <= 0
// uses DefaultMax.
func NewSelector(c Catalog, limit int) (*Selector, error) {
	if err := ValidateCatalog(c); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultMax
	}
	return &Selector{catalog: c.Clone(), limit: limit}, nil
}

// NewDefaultSelector returns a Selector over DefaultCatalog.
func NewDefaultSelector() *Selector {
	return &Selector{catalog: DefaultCatalog(), limit: DefaultMax}
}

// Max returns the list length cap.
func (s *Selector) Max() int { return s.limit }

// Select returns the suggestions for date: the weekday entry first, then
// every matching seasonal entry, then baseline entries until the list is
// full.
func (s *Selector) Select(date time.Time) []model.Suggestion {
	out := make([]model.Suggestion, 0, s.limit)
	out = append(out, s.catalog.DayOfWeek[weekdayIndex(date)])

	for _, r := range s.catalog.Seasonal {
		if r.Matches(date.Month()) {
			out = append(out, r.Suggestion)
		}
	}

	for _, b := range s.catalog.Baseline {
		if len(out) >= s.limit {
			break
		}
		out = append(out, b)
	}

	if len(out) > s.limit {
		out = out[:s.limit]
	}

	zap.L().Debug("suggest: selected",
		zap.String("date", date.Format(time.DateOnly)),
		zap.Int("count", len(out)),
	)
	return out
}

// weekdayIndex maps Monday to 0 and Sunday to 6.
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// ParseDay parses a YYYY-MM-DD day in loc. An empty string yields today in
// loc according to now.
func ParseDay(s string, now time.Time, loc *time.Location) (time.Time, error) {
	if s == "" {
		n := now.In(loc)
		return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc), nil
	}
	d, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "suggest: invalid date %q, want YYYY-MM-DD", s)
	}
	return d, nil
}
