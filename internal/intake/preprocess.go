package intake

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/lead-cli/internal/model"
)

// Defaults substituted for null optional fields.
const (
	DefaultProductInterest = "Unknown"
	DefaultLeadSource      = "Other"
	DefaultLocation        = "Unknown"
)

// Preprocess returns a normalized copy of b. It never fails.
//
// Defaults only apply to columns present in the schema; a wholly absent
// column is left absent. Every date that is missing or unparseable becomes
// the calendar day of now, so one call shares a single substituted date.
// Parsed dates are rewritten in DateLayout, which makes Preprocess idempotent.
func Preprocess(b *model.Batch, now time.Time) *model.Batch {
	out := b.Clone()
	if out == nil {
		return nil
	}

	loc := now.Location()
	today := FormatDate(DateOf(now, loc))

	hasDate := out.HasColumn(model.ColLastContactDate)
	hasProduct := out.HasColumn(model.ColProductInterest)
	hasSource := out.HasColumn(model.ColLeadSource)
	hasLocation := out.HasColumn(model.ColLocation)

	defaulted := 0
	for i := range out.Leads {
		l := &out.Leads[i]

		if hasDate {
			d, err := ParseDate(l.LastContactDate, loc)
			if err != nil {
				l.LastContactDate = today
				defaulted++
			} else {
				l.LastContactDate = FormatDate(d)
			}
		}
		if hasProduct && isNull(l.ProductInterest) {
			l.ProductInterest = DefaultProductInterest
		}
		if hasSource && isNull(l.LeadSource) {
			l.LeadSource = DefaultLeadSource
		}
		if hasLocation && isNull(l.Location) {
			l.Location = DefaultLocation
		}
	}

	if defaulted > 0 {
		zap.L().Debug("intake: defaulted last contact dates",
			zap.Int("count", defaulted),
			zap.String("date", today),
		)
	}

	return out
}

// nullTokens are cell values read as missing, matching the NA markers
// common spreadsheet and dataframe tools write.
var nullTokens = map[string]bool{
	"#N/A": true, "#N/A N/A": true, "#NA": true, "<NA>": true,
	"N/A": true, "n/a": true, "NA": true,
	"NULL": true, "null": true,
	"NaN": true, "nan": true, "-NaN": true, "-nan": true,
	"None": true,
}

func isNull(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || nullTokens[s]
}
