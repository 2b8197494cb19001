package model

import "slices"

// Batch is an ordered set of leads sharing one schema.
type Batch struct {
	// Columns is the header row in file order. It may omit schema columns
	// and may include columns the scorer ignores.
	Columns []string `json:"columns"`
	Leads   []Lead   `json:"leads"`
}

// NewBatch returns a batch over the canonical schema.
func NewBatch(leads ...Lead) *Batch {
	return &Batch{
		Columns: slices.Clone(LeadColumns),
		Leads:   leads,
	}
}

// HasColumn reports whether col is part of the batch schema.
func (b *Batch) HasColumn(col string) bool {
	if b == nil {
		return false
	}
	return slices.Contains(b.Columns, col)
}

// Len returns the number of leads.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Leads)
}

// Clone returns a deep copy.
func (b *Batch) Clone() *Batch {
	if b == nil {
		return nil
	}
	out := &Batch{
		Columns: slices.Clone(b.Columns),
		Leads:   make([]Lead, len(b.Leads)),
	}
	for i, l := range b.Leads {
		out.Leads[i] = l.Clone()
	}
	return out
}

// ExtraColumns returns the non-schema columns in header order.
func (b *Batch) ExtraColumns() []string {
	var extra []string
	for _, c := range b.Columns {
		if !IsSchemaColumn(c) && c != ColScore && c != ColStatus {
			extra = append(extra, c)
		}
	}
	return extra
}
