package model

import "time"

// Answer is the result of one retrieval-augmented answer generation.
// Documents keep the retrieval (similarity-descending) order.
type Answer struct {
	Query     string         `json:"query"`
	Text      string         `json:"answer"`
	Documents []CaseDocument `json:"documents"`
	Model     string         `json:"model,omitempty"`
}

// Turn is the complete outcome of one interactive question.
// It is built per request and handed to the renderer; nothing is kept between turns.
type Turn struct {
	Query       string         `json:"query"`
	AskedAt     time.Time      `json:"asked_at"`
	Answer      string         `json:"answer"`
	Model       string         `json:"model,omitempty"`
	Documents   []CaseDocument `json:"documents"`
	Resolutions []Resolution   `json:"citations,omitempty"`
	Warnings    []string       `json:"warnings,omitempty"` // Degraded features (extraction or fetch failures)
}
