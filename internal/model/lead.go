package model

import (
	"maps"
	"slices"
)

// Column headers of the lead schema.
const (
	ColName            = "Name"
	ColContact         = "Contact"
	ColLocation        = "Location"
	ColProductInterest = "Product Interest"
	ColLastContactDate = "Last Contact Date"
	ColLeadSource      = "Lead Source"
	ColScore           = "Score"
	ColStatus          = "Status"
)

// LeadColumns is the canonical input schema in display order.
var LeadColumns = []string{
	ColName,
	ColContact,
	ColLocation,
	ColProductInterest,
	ColLastContactDate,
	ColLeadSource,
}

// Status is the priority tier derived from a lead's score.
type Status string

const (
	StatusCold Status = "Cold"
	StatusWarm Status = "Warm"
	StatusHot  Status = "Hot"
)

// Statuses lists every tier from hottest to coldest.
var Statuses = []Status{StatusHot, StatusWarm, StatusCold}

// Lead is a prospective customer record. Empty strings are null values.
type Lead struct {
	Name            string `json:"name" csv:"Name"`
	Contact         string `json:"contact" csv:"Contact"`
	Location        string `json:"location,omitempty" csv:"Location,omitempty"`
	ProductInterest string `json:"product_interest,omitempty" csv:"Product Interest,omitempty"`
	LastContactDate string `json:"last_contact_date,omitempty" csv:"Last Contact Date,omitempty"`
	LeadSource      string `json:"lead_source,omitempty" csv:"Lead Source,omitempty"`
	Score           *int   `json:"score,omitempty" csv:"-"`
	Status          Status `json:"status,omitempty" csv:"-"`

	// Extra carries columns outside the lead schema through to export.
	Extra map[string]string `json:"extra,omitempty" csv:"-"`
}

// Scored reports whether the scorer has assigned a score.
func (l Lead) Scored() bool {
	return l.Score != nil
}

// Field returns the value for a schema column header.
func (l Lead) Field(col string) string {
	switch col {
	case ColName:
		return l.Name
	case ColContact:
		return l.Contact
	case ColLocation:
		return l.Location
	case ColProductInterest:
		return l.ProductInterest
	case ColLastContactDate:
		return l.LastContactDate
	case ColLeadSource:
		return l.LeadSource
	default:
		return l.Extra[col]
	}
}

// SetField assigns a value by column header. Unknown headers land in Extra.
func (l *Lead) SetField(col, value string) {
	switch col {
	case ColName:
		l.Name = value
	case ColContact:
		l.Contact = value
	case ColLocation:
		l.Location = value
	case ColProductInterest:
		l.ProductInterest = value
	case ColLastContactDate:
		l.LastContactDate = value
	case ColLeadSource:
		l.LeadSource = value
	default:
		if l.Extra == nil {
			l.Extra = make(map[string]string)
		}
		l.Extra[col] = value
	}
}

// Clone returns a deep copy of the lead.
func (l Lead) Clone() Lead {
	out := l
	if l.Score != nil {
		s := *l.Score
		out.Score = &s
	}
	if l.Extra != nil {
		out.Extra = maps.Clone(l.Extra)
	}
	return out
}

// IsSchemaColumn reports whether col is one of the six lead schema headers.
func IsSchemaColumn(col string) bool {
	return slices.Contains(LeadColumns, col)
}
