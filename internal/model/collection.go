package model

// Collection accumulates scored leads across batches for one caller.
// It is append-only and is not safe for concurrent use.
type Collection struct {
	leads []Lead
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{}
}

// Append adds leads in order.
func (c *Collection) Append(leads ...Lead) {
	for _, l := range leads {
		c.leads = append(c.leads, l.Clone())
	}
}

// AppendBatch adds every lead of b.
func (c *Collection) AppendBatch(b *Batch) {
	if b == nil {
		return
	}
	c.Append(b.Leads...)
}

// Leads returns a copy of the collected leads.
func (c *Collection) Leads() []Lead {
	out := make([]Lead, len(c.leads))
	for i, l := range c.leads {
		out[i] = l.Clone()
	}
	return out
}

// Len returns the number of collected leads.
func (c *Collection) Len() int {
	return len(c.leads)
}
