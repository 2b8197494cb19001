package model

// Suggestion is a product recommendation for the day.
type Suggestion struct {
	Product  string `json:"product" yaml:"product"`
	Reason   string `json:"reason" yaml:"reason"`
	Approach string `json:"approach" yaml:"approach"`
	Icon     string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// Quote is a motivational line shown with the day's suggestions.
type Quote struct {
	Text   string `json:"text" yaml:"text"`
	Author string `json:"author" yaml:"author"`
}
