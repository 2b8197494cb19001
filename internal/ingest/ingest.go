// Package ingest reads lead batches from CSV, XLSX and JSON sources.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/lead-cli/internal/model"
)

// Format identifies a lead file encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

var (
	// ErrNoHeader is returned for a source without a header row.
	ErrNoHeader = errors.New("ingest: no columns to parse")
	// ErrUnsupportedFormat is returned for an unknown file extension.
	ErrUnsupportedFormat = errors.New("ingest: unsupported file format")
)

// Options configures file ingestion.
type Options struct {
	// Sheet selects an XLSX worksheet by name. Empty means the first sheet.
	Sheet string
	// Delimiter overrides the CSV field separator.
	Delimiter rune
}

// FormatOf infers the format from a file name's extension.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", eris.Wrapf(ErrUnsupportedFormat, "ingest: %s", filepath.Base(name))
	}
}

// Load reads the lead file at path, choosing the parser by extension.
func Load(path string, opts Options) (*model.Batch, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	var b *model.Batch
	switch format {
	case FormatXLSX:
		b, err = ReadXLSX(path, XLSXOptions{SheetName: opts.Sheet})
	default:
		f, openErr := os.Open(path)
		if openErr != nil {
			return nil, eris.Wrapf(openErr, "ingest: open %s", path)
		}
		defer f.Close() //nolint:errcheck
		b, err = Read(f, format, opts)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: load %s", filepath.Base(path))
	}

	zap.L().Info("ingest: loaded lead file",
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.Int("columns", len(b.Columns)),
		zap.Int("leads", b.Len()),
	)
	return b, nil
}

// maxLoadConcurrency bounds parallel file parsing in LoadAll.
const maxLoadConcurrency = 4

// LoadAll loads every path concurrently and returns the batches in path
// order. The first failure cancels the remaining loads.
func LoadAll(ctx context.Context, paths []string, opts Options) ([]*model.Batch, error) {
	batches := make([]*model.Batch, len(paths))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxLoadConcurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			b, err := Load(path, opts)
			if err != nil {
				return err
			}
			batches[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batches, nil
}

// Read parses a lead batch of the given format from r.
func Read(r io.Reader, format Format, opts Options) (*model.Batch, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r, CSVOptions{Delimiter: opts.Delimiter})
	case FormatJSON:
		return ReadJSON(r)
	case FormatXLSX:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, eris.Wrap(err, "ingest: read xlsx body")
		}
		return ParseXLSX(data, XLSXOptions{SheetName: opts.Sheet})
	default:
		return nil, eris.Wrapf(ErrUnsupportedFormat, "ingest: format %q", format)
	}
}

// header maps raw header cells onto batch columns. Score and Status input
// columns are dropped because scoring recomputes them.
type header struct {
	names []string
	keep  []bool
}

var bom = []byte{0xEF, 0xBB, 0xBF}

func newHeader(raw []string) header {
	h := header{
		names: make([]string, len(raw)),
		keep:  make([]bool, len(raw)),
	}
	seen := make(map[string]int, len(raw))
	for i, name := range raw {
		if i == 0 {
			name = string(bytes.TrimPrefix([]byte(name), bom))
		}
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		// Repeated headers get a numeric suffix.
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n)
		} else {
			seen[name] = 1
		}
		h.names[i] = name
		h.keep[i] = name != model.ColScore && name != model.ColStatus
	}
	return h
}

// columns returns the kept column names in header order.
func (h header) columns() []string {
	cols := make([]string, 0, len(h.names))
	for i, name := range h.names {
		if h.keep[i] {
			cols = append(cols, name)
		}
	}
	return cols
}

// lead builds a lead from one row. Missing trailing cells are empty and
// cells beyond the header are ignored.
func (h header) lead(row []string) model.Lead {
	var l model.Lead
	for i, name := range h.names {
		if !h.keep[i] || i >= len(row) {
			continue
		}
		l.SetField(name, strings.TrimSpace(row[i]))
	}
	return l
}
