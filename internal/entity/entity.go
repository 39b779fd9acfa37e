package entity

// Span is a half-open byte range [Start, End) into the normalized text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Entity is a typed mention produced by an entity recognizer.
// Term, when set, is the matched name without a trailing dose or value.
type Entity struct {
	Text string `json:"text"`
	Type string `json:"type"`
	Term string `json:"term,omitempty"`
	Span Span   `json:"span"`
}
