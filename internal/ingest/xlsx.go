package ingest

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/lead-cli/internal/model"
)

// XLSXOptions configures the XLSX parser.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
}

// ReadXLSX reads a lead workbook from disk. The first row of the sheet is
// the header.
func ReadXLSX(path string, opts XLSXOptions) (*model.Batch, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	return fromWorkbook(f, opts)
}

// ParseXLSX reads a lead workbook held in memory.
func ParseXLSX(data []byte, opts XLSXOptions) (*model.Batch, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open workbook")
	}
	return fromWorkbook(f, opts)
}

func fromWorkbook(f *xlsx.File, opts XLSXOptions) (*model.Batch, error) {
	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for _, row := range sheet.Rows {
		if row == nil {
			continue
		}
		rows = append(rows, rowToStrings(row))
	}
	if len(rows) == 0 {
		return nil, ErrNoHeader
	}

	h := newHeader(rows[0])
	b := &model.Batch{Columns: h.columns(), Leads: []model.Lead{}}
	for _, cells := range rows[1:] {
		// Formatted but empty rows are common at the end of a sheet.
		if blank(cells) {
			continue
		}
		b.Leads = append(b.Leads, h.lead(cells))
	}
	return b, nil
}

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex < 0 || opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("xlsx: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		if cell == nil {
			continue
		}
		cells[j] = cellText(cell)
	}
	return cells
}

// cellText renders General-formatted numbers in full, so long phone numbers
// stored as numbers do not come back in scientific notation. Date and other
// formatted cells keep their display text.
func cellText(cell *xlsx.Cell) string {
	if cell.Type() == xlsx.CellTypeNumeric && generalFormat(cell.GetNumberFormat()) {
		if f, err := cell.Float(); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	return cell.String()
}

func generalFormat(numFmt string) bool {
	return numFmt == "" || strings.EqualFold(numFmt, "general")
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
