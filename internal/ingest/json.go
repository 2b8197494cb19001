package ingest

import (
	"bytes"
	"encoding/json"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-cli/internal/model"
)

// jsonKeys maps lower-cased JSON keys onto schema columns. Both the column
// headers and the snake_case API names are accepted.
var jsonKeys = map[string]string{
	"name":              model.ColName,
	"contact":           model.ColContact,
	"location":          model.ColLocation,
	"product interest":  model.ColProductInterest,
	"product_interest":  model.ColProductInterest,
	"last contact date": model.ColLastContactDate,
	"last_contact_date": model.ColLastContactDate,
	"lead source":       model.ColLeadSource,
	"lead_source":       model.ColLeadSource,
	"score":             model.ColScore,
	"status":            model.ColStatus,
}

// ReadJSON decodes a JSON array of lead objects, or an object holding that
// array under "leads". The batch schema is the union of keys present:
// schema columns in canonical order, then other keys sorted by name.
func ReadJSON(r io.Reader) (*model.Batch, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "json: read body")
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrNoHeader
	}

	var rows []map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if data[0] == '{' {
		var env struct {
			Leads []map[string]any `json:"leads"`
		}
		if err := dec.Decode(&env); err != nil {
			return nil, eris.Wrap(err, "json: decode envelope")
		}
		rows = env.Leads
	} else if err := dec.Decode(&rows); err != nil {
		return nil, eris.Wrap(err, "json: decode leads")
	}

	return BatchFromRecords(rows)
}

// BatchFromRecords builds a batch from decoded JSON objects.
func BatchFromRecords(rows []map[string]any) (*model.Batch, error) {
	present := make(map[string]bool)
	var extra []string
	b := &model.Batch{Leads: make([]model.Lead, 0, len(rows))}

	for i, row := range rows {
		var l model.Lead
		for key, raw := range row {
			col := columnForKey(key)
			if col == model.ColScore || col == model.ColStatus {
				continue
			}
			v, err := cellString(raw)
			if err != nil {
				return nil, eris.Wrapf(err, "json: lead %d field %q", i, key)
			}
			l.SetField(col, v)
			if !present[col] {
				present[col] = true
				if !model.IsSchemaColumn(col) {
					extra = append(extra, col)
				}
			}
		}
		b.Leads = append(b.Leads, l)
	}

	for _, col := range model.LeadColumns {
		if present[col] {
			b.Columns = append(b.Columns, col)
		}
	}
	slices.Sort(extra)
	b.Columns = append(b.Columns, extra...)
	return b, nil
}

func columnForKey(key string) string {
	k := strings.TrimSpace(key)
	if col, ok := jsonKeys[strings.ToLower(k)]; ok {
		return col
	}
	return k
}

// cellString renders a scalar JSON value as a cell. null is empty.
func cellString(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(t), nil
	case json.Number:
		return t.String(), nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		return "", eris.New("json: expected a scalar value")
	}
}
