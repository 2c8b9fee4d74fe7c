package domain

import "time"

// Issue represents an issue from GitLab or GitHub, normalized to a single shape.
// ID is opaque and only unique together with Source.
type Issue struct {
	ID        string    `json:"id"`
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	State     string    `json:"state"` // provider-native: "OPEN" (GitHub), "opened" (GitLab)
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Author    string    `json:"author,omitempty"`
	Source    string    `json:"source"` // name of the adapter that produced the record
}
