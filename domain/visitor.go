package domain

// Visitor is the bootstrap response for a landing page load.
type Visitor struct {
	VisitorID string                     `json:"visitor_id"`
	IsNew     bool                       `json:"is_new"`
	Consent   string                     `json:"consent,omitempty"`
	Variants  map[string]AssignedVariant `json:"variants"`
}
