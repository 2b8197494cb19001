package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/lead-cli/internal/intake"
	"github.com/sells-group/lead-cli/internal/model"
)

type testSheet struct {
	name string
	rows [][]string
}

func createTestXLSX(t *testing.T, sheets ...testSheet) string {
	t.Helper()
	f := xlsx.NewFile()
	for _, s := range sheets {
		sheet, err := f.AddSheet(s.name)
		require.NoError(t, err)
		for _, rowData := range s.rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				cell := row.AddCell()
				cell.SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "leads.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleCSV = "Name,Contact,Location,Product Interest,Last Contact Date,Lead Source\n" +
	"John Doe,9876543210,Mumbai,Insurance,2023-06-15,Website\n" +
	"Jane Smith,jane@example.com,Delhi,Mutual Fund,2023-07-01,Referral\n"

func TestReadCSV(t *testing.T) {
	t.Parallel()

	b, err := ReadCSV(strings.NewReader(sampleCSV), CSVOptions{})
	require.NoError(t, err)

	assert.Equal(t, model.LeadColumns, b.Columns)
	require.Equal(t, 2, b.Len())
	assert.Equal(t, model.Lead{
		Name:            "John Doe",
		Contact:         "9876543210",
		Location:        "Mumbai",
		ProductInterest: "Insurance",
		LastContactDate: "2023-06-15",
		LeadSource:      "Website",
	}, b.Leads[0])
	assert.Equal(t, "jane@example.com", b.Leads[1].Contact)
}

func TestReadCSV_ExtraColumnsAndBOM(t *testing.T) {
	t.Parallel()

	in := "\ufeff Name ,Contact,Agent,Notes\n" +
		"A, 9876543210 ,Ravi,  call after 5 \n"
	b, err := ReadCSV(strings.NewReader(in), CSVOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Contact", "Agent", "Notes"}, b.Columns)
	require.Equal(t, 1, b.Len())
	l := b.Leads[0]
	assert.Equal(t, "A", l.Name)
	assert.Equal(t, "9876543210", l.Contact)
	assert.Equal(t, map[string]string{"Agent": "Ravi", "Notes": "call after 5"}, l.Extra)
	assert.Equal(t, []string{"Agent", "Notes"}, b.ExtraColumns())
}

func TestReadCSV_ShortAndLongRows(t *testing.T) {
	t.Parallel()

	in := "Name,Contact,Location\n" +
		"A,9876543210\n" +
		"B,9876543211,Pune,overflow\n"
	b, err := ReadCSV(strings.NewReader(in), CSVOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, b.Len())
	assert.Equal(t, "", b.Leads[0].Location)
	assert.Equal(t, "Pune", b.Leads[1].Location)
}

func TestReadCSV_HeaderOnly(t *testing.T) {
	t.Parallel()

	b, err := ReadCSV(strings.NewReader("Name,Contact\n"), CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Contact"}, b.Columns)
	assert.Equal(t, 0, b.Len())
	assert.NotNil(t, b.Leads)
}

func TestReadCSV_Empty(t *testing.T) {
	t.Parallel()

	_, err := ReadCSV(strings.NewReader(""), CSVOptions{})
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestReadCSV_DropsScoreColumns(t *testing.T) {
	t.Parallel()

	in := "Name,Contact,Score,Status\nA,9876543210,12,Cold\n"
	b, err := ReadCSV(strings.NewReader(in), CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Contact"}, b.Columns)
	assert.Nil(t, b.Leads[0].Score)
	assert.Empty(t, b.Leads[0].Status)
	assert.Nil(t, b.Leads[0].Extra)
}

func TestReadCSV_DuplicateAndBlankHeaders(t *testing.T) {
	t.Parallel()

	in := "Name,Contact,Note,Note,\nA,9876543210,x,y,z\n"
	b, err := ReadCSV(strings.NewReader(in), CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Contact", "Note", "Note.1", "Unnamed: 4"}, b.Columns)
	assert.Equal(t, "y", b.Leads[0].Extra["Note.1"])
	assert.Equal(t, "z", b.Leads[0].Extra["Unnamed: 4"])
}

func TestReadCSV_Delimiter(t *testing.T) {
	t.Parallel()

	b, err := ReadCSV(strings.NewReader("Name;Contact\nA;9876543210\n"), CSVOptions{Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, "9876543210", b.Leads[0].Contact)
}

func TestReadCSV_MalformedQuote(t *testing.T) {
	t.Parallel()

	_, err := ReadCSV(strings.NewReader("Name,Contact\n\"A,9876543210\n"), CSVOptions{})
	assert.Error(t, err)
}

func TestReadXLSX(t *testing.T) {
	t.Parallel()

	path := createTestXLSX(t, testSheet{name: "Leads", rows: [][]string{
		{"Name", "Contact", "Lead Source", "Region"},
		{"A", "9876543210", "Referral", "West"},
		{"", "", "", ""},
		{"B", "9876543211"},
	}})

	b, err := ReadXLSX(path, XLSXOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Contact", "Lead Source", "Region"}, b.Columns)
	require.Equal(t, 2, b.Len())
	assert.Equal(t, "Referral", b.Leads[0].LeadSource)
	assert.Equal(t, "West", b.Leads[0].Extra["Region"])
	assert.Equal(t, "B", b.Leads[1].Name)
	assert.Empty(t, b.Leads[1].LeadSource)
}

func TestReadXLSX_NumericContacts(t *testing.T) {
	t.Parallel()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	require.NoError(t, err)

	header := sheet.AddRow()
	for _, h := range []string{"Name", "Contact", "Last Contact Date"} {
		header.AddCell().SetString(h)
	}
	contacts := []int64{9876543210, 919876543210, 19876543210123}
	for i, c := range contacts {
		row := sheet.AddRow()
		row.AddCell().SetString(string(rune('A' + i)))
		row.AddCell().SetInt64(c)
		row.AddCell().SetDate(time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC))
	}
	path := filepath.Join(t.TempDir(), "numeric.xlsx")
	require.NoError(t, f.Save(path))

	b, err := ReadXLSX(path, XLSXOptions{})
	require.NoError(t, err)
	require.Equal(t, 3, b.Len())
	assert.Equal(t, "9876543210", b.Leads[0].Contact)
	assert.Equal(t, "919876543210", b.Leads[1].Contact)
	assert.Equal(t, "19876543210123", b.Leads[2].Contact)

	// Date cells keep their display text and still parse.
	for _, l := range b.Leads {
		assert.NotEmpty(t, l.LastContactDate)
		assert.NotContains(t, l.LastContactDate, "E+")
		d, err := intake.ParseDate(l.LastContactDate, time.UTC)
		require.NoError(t, err, l.LastContactDate)
		assert.Equal(t, "2024-03-15", intake.FormatDate(d))
	}

	assert.True(t, intake.Validate(b).Valid)
}

func TestReadXLSX_SheetSelection(t *testing.T) {
	t.Parallel()

	path := createTestXLSX(t,
		testSheet{name: "Notes", rows: [][]string{{"ignore me"}}},
		testSheet{name: "Leads", rows: [][]string{{"Name", "Contact"}, {"A", "9876543210"}}},
	)

	b, err := ReadXLSX(path, XLSXOptions{SheetName: "Leads"})
	require.NoError(t, err)
	assert.Equal(t, 1, b.Len())

	b, err = ReadXLSX(path, XLSXOptions{SheetIndex: 1})
	require.NoError(t, err)
	assert.Equal(t, "A", b.Leads[0].Name)

	_, err = ReadXLSX(path, XLSXOptions{SheetName: "Missing"})
	assert.Error(t, err)

	_, err = ReadXLSX(path, XLSXOptions{SheetIndex: 5})
	assert.Error(t, err)
}

func TestParseXLSX(t *testing.T) {
	t.Parallel()

	path := createTestXLSX(t, testSheet{name: "Sheet1", rows: [][]string{{"Name", "Contact"}, {"A", "9876543210"}}})
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	b, err := ParseXLSX(data, XLSXOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, b.Len())

	_, err = ParseXLSX([]byte("not a zip"), XLSXOptions{})
	assert.Error(t, err)
}

func TestReadJSON(t *testing.T) {
	t.Parallel()

	in := `[
		{"name": "A", "contact": 9876543210, "Lead Source": "Referral", "vip": true},
		{"Name": " B ", "product_interest": "Gold", "contact": null, "score": 99}
	]`
	b, err := ReadJSON(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Contact", "Product Interest", "Lead Source", "vip"}, b.Columns)
	require.Equal(t, 2, b.Len())
	assert.Equal(t, "9876543210", b.Leads[0].Contact)
	assert.Equal(t, "true", b.Leads[0].Extra["vip"])
	assert.Equal(t, "B", b.Leads[1].Name)
	assert.Empty(t, b.Leads[1].Contact)
	assert.Nil(t, b.Leads[1].Score)
}

func TestReadJSON_Envelope(t *testing.T) {
	t.Parallel()

	b, err := ReadJSON(strings.NewReader(`{"leads": [{"name": "A", "contact": "9876543210"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Contact"}, b.Columns)
	assert.Equal(t, 1, b.Len())
}

func TestReadJSON_Errors(t *testing.T) {
	t.Parallel()

	_, err := ReadJSON(strings.NewReader("  "))
	assert.ErrorIs(t, err, ErrNoHeader)

	_, err = ReadJSON(strings.NewReader(`[{"name": {"first": "A"}}]`))
	assert.Error(t, err)

	_, err = ReadJSON(strings.NewReader(`[{"name": "A"`))
	assert.Error(t, err)
}

func TestReadJSON_EmptyArray(t *testing.T) {
	t.Parallel()

	b, err := ReadJSON(strings.NewReader(`[]`))
	require.NoError(t, err)
	assert.Empty(t, b.Columns)
	assert.Equal(t, 0, b.Len())
}

func TestFormatOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want Format
	}{
		{"leads.csv", FormatCSV},
		{"LEADS.CSV", FormatCSV},
		{"export.txt", FormatCSV},
		{"book.xlsx", FormatXLSX},
		{"api.json", FormatJSON},
	}
	for _, tt := range tests {
		got, err := FormatOf(tt.name)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := FormatOf("legacy.xls")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	csvPath := writeFile(t, "leads.csv", sampleCSV)
	b, err := Load(csvPath, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, b.Len())

	jsonPath := writeFile(t, "leads.json", `[{"name": "A", "contact": "9876543210"}]`)
	b, err = Load(jsonPath, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, b.Len())

	xlsxPath := createTestXLSX(t, testSheet{name: "Leads", rows: [][]string{{"Name", "Contact"}, {"A", "9876543210"}}})
	b, err = Load(xlsxPath, Options{Sheet: "Leads"})
	require.NoError(t, err)
	assert.Equal(t, 1, b.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"), Options{})
	assert.Error(t, err)

	_, err = Load(writeFile(t, "leads.xml", "<leads/>"), Options{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRead_XLSXFromReader(t *testing.T) {
	t.Parallel()

	path := createTestXLSX(t, testSheet{name: "Sheet1", rows: [][]string{{"Name", "Contact"}, {"A", "9876543210"}}})
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	b, err := Read(f, FormatXLSX, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, b.Len())
}

func TestLoadAll_KeepsPathOrder(t *testing.T) {
	t.Parallel()

	paths := []string{
		writeFile(t, "a.csv", "Name,Contact\nA,9876543210\n"),
		writeFile(t, "b.json", `[{"name": "B1", "contact": "9876543211"}, {"name": "B2", "contact": "9876543212"}]`),
		createTestXLSX(t, testSheet{name: "Sheet1", rows: [][]string{{"Name", "Contact"}, {"C", "9876543213"}}}),
		writeFile(t, "d.csv", sampleCSV),
	}

	batches, err := LoadAll(context.Background(), paths, Options{})
	require.NoError(t, err)
	require.Len(t, batches, 4)
	assert.Equal(t, "A", batches[0].Leads[0].Name)
	assert.Equal(t, 2, batches[1].Len())
	assert.Equal(t, "C", batches[2].Leads[0].Name)
	assert.Equal(t, "John Doe", batches[3].Leads[0].Name)
}

func TestLoadAll_Errors(t *testing.T) {
	t.Parallel()

	good := writeFile(t, "a.csv", sampleCSV)
	_, err := LoadAll(context.Background(), []string{good, filepath.Join(t.TempDir(), "missing.csv")}, Options{})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = LoadAll(ctx, []string{good}, Options{})
	assert.ErrorIs(t, err, context.Canceled)

	batches, err := LoadAll(context.Background(), nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, batches)
}
