// Package export writes scored lead batches as CSV, XLSX, JSON or a text table.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-cli/internal/model"
)

// Format is an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatXLSX  Format = "xlsx"
)

// Formats lists every supported output format.
var Formats = []Format{FormatTable, FormatCSV, FormatJSON, FormatXLSX}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Formats, f) {
		return "", eris.Errorf("export: unsupported format %q (want table, csv, json or xlsx)", s)
	}
	return f, nil
}

// Write renders b to w in the given format.
func Write(w io.Writer, format Format, b *model.Batch) error {
	switch format {
	case FormatTable:
		return WriteTable(w, b)
	case FormatCSV:
		return WriteCSV(w, b)
	case FormatJSON:
		return WriteJSON(w, b)
	case FormatXLSX:
		return WriteXLSX(w, b)
	default:
		return eris.Errorf("export: unsupported format %q", format)
	}
}

// Columns returns the output header for b: the input columns in file order,
// then Score and Status when any lead has been scored.
func Columns(b *model.Batch) []string {
	cols := slices.Clone(b.Columns)
	for _, l := range b.Leads {
		if l.Scored() {
			return append(cols, model.ColScore, model.ColStatus)
		}
	}
	return cols
}

// cell returns the string value of col for l.
func cell(l model.Lead, col string) string {
	switch col {
	case model.ColScore:
		if l.Score == nil {
			return ""
		}
		return fmt.Sprintf("%d", *l.Score)
	case model.ColStatus:
		return string(l.Status)
	default:
		return l.Field(col)
	}
}

// jsonBatch is the JSON document shape.
type jsonBatch struct {
	Columns []string     `json:"columns"`
	Count   int          `json:"count"`
	Leads   []model.Lead `json:"leads"`
}

// WriteJSON writes b as an indented JSON document.
func WriteJSON(w io.Writer, b *model.Batch) error {
	doc := jsonBatch{
		Columns: Columns(b),
		Count:   b.Len(),
		Leads:   b.Leads,
	}
	if doc.Leads == nil {
		doc.Leads = []model.Lead{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return eris.Wrap(err, "export: encode json")
	}
	return nil
}
