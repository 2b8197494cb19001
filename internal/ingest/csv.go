package ingest

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-cli/internal/model"
)

// CSVOptions configures the CSV parser.
type CSVOptions struct {
	Delimiter  rune // default ','
	LazyQuotes bool
}

// ReadCSV decodes a headed CSV lead file. Schema columns decode into lead
// fields; any other column is kept in Lead.Extra.
func ReadCSV(r io.Reader, opts CSVOptions) (*model.Batch, error) {
	cr := csv.NewReader(r)
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	cr.LazyQuotes = opts.LazyQuotes
	cr.FieldsPerRecord = -1 // short rows are padded below

	raw, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, eris.Wrap(err, "csv: read header")
	}

	h := newHeader(raw)
	dec, err := csvutil.NewDecoder(&rowReader{r: cr, width: len(h.names)}, h.names...)
	if err != nil {
		return nil, eris.Wrap(err, "csv: init decoder")
	}

	b := &model.Batch{Columns: h.columns(), Leads: []model.Lead{}}
	for {
		var l model.Lead
		if err := dec.Decode(&l); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrapf(err, "csv: decode row %d", len(b.Leads)+1)
		}

		record := dec.Record()
		for _, i := range dec.Unused() {
			if h.keep[i] {
				l.SetField(h.names[i], record[i])
			}
		}
		b.Leads = append(b.Leads, l)
	}

	return b, nil
}

// rowReader trims every cell and pads short rows to the header width.
type rowReader struct {
	r     *csv.Reader
	width int
}

func (rr *rowReader) Read() ([]string, error) {
	record, err := rr.r.Read()
	if err != nil {
		return nil, err
	}
	if len(record) > rr.width {
		record = record[:rr.width]
	}
	for i, field := range record {
		record[i] = strings.TrimSpace(field)
	}
	for len(record) < rr.width {
		record = append(record, "")
	}
	return record, nil
}
