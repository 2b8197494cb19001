package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/lead-cli/internal/model"
)

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "Scored Leads"

// WriteXLSX writes b as a single-sheet workbook. Scores are numeric cells.
func WriteXLSX(w io.Writer, b *model.Batch) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	cols := Columns(b)
	header := sheet.AddRow()
	for _, col := range cols {
		header.AddCell().SetString(col)
	}

	for _, l := range b.Leads {
		row := sheet.AddRow()
		for _, col := range cols {
			c := row.AddCell()
			if col == model.ColScore && l.Score != nil {
				c.SetInt(*l.Score)
				continue
			}
			c.SetString(cell(l, col))
		}
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write xlsx")
	}
	return nil
}
