package export

import (
	"encoding/csv"
	"io"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-cli/internal/model"
)

// WriteCSV writes b with its own header order plus Score and Status.
func WriteCSV(w io.Writer, b *model.Batch) error {
	cw := csv.NewWriter(w)

	cols := Columns(b)
	if err := cw.Write(cols); err != nil {
		return eris.Wrap(err, "export: write CSV header")
	}

	row := make([]string, len(cols))
	for _, l := range b.Leads {
		for i, col := range cols {
			row[i] = cell(l, col)
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "export: write CSV row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "export: flush CSV")
	}
	return nil
}

// SampleLeads are the example rows of the upload template.
func SampleLeads() []model.Lead {
	return []model.Lead{
		{
			Name:            "John Doe",
			Contact:         "9876543210",
			Location:        "Mumbai",
			ProductInterest: "Insurance",
			LastContactDate: "2023-06-15",
			LeadSource:      "Website",
		},
		{
			Name:            "Jane Smith",
			Contact:         "jane@example.com",
			Location:        "Delhi",
			ProductInterest: "Mutual Fund",
			LastContactDate: "2023-07-01",
			LeadSource:      "Referral",
		},
	}
}

// WriteSample writes the upload template: the schema header and two example
// leads.
func WriteSample(w io.Writer) error {
	data, err := csvutil.Marshal(SampleLeads())
	if err != nil {
		return eris.Wrap(err, "export: marshal sample")
	}
	if _, err := w.Write(data); err != nil {
		return eris.Wrap(err, "export: write sample")
	}
	return nil
}
