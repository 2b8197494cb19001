package suggest

import (
	"time"

	"github.com/sells-group/lead-cli/internal/model"
)

var quotes = []model.Quote{
	{Text: "Success is not final, failure is not fatal: It is the courage to continue that counts.", Author: "Winston Churchill"},
	{Text: "The successful warrior is the average man, with laser-like focus.", Author: "Bruce Lee"},
	{Text: "Success seems to be connected with action. Successful people keep moving.", Author: "Conrad Hilton"},
	{Text: "The difference between a successful person and others is not a lack of strength, not a lack of knowledge, but rather a lack in will.", Author: "Vince Lombardi"},
	{Text: "Don't watch the clock; do what it does. Keep going.", Author: "Sam Levenson"},
	{Text: "The secret of success is to do the common thing uncommonly well.", Author: "John D. Rockefeller Jr."},
	{Text: "I find that the harder I work, the more luck I seem to have.", Author: "Thomas Jefferson"},
	{Text: "Success is walking from failure to failure with no loss of enthusiasm.", Author: "Winston Churchill"},
}

// QuoteOfDay returns the quote for date's calendar day. The same day always
// yields the same quote.
func QuoteOfDay(date time.Time) model.Quote {
	sum := 0
	for _, c := range []byte(date.Format(time.DateOnly)) {
		sum += int(c)
	}
	return quotes[sum%len(quotes)]
}
