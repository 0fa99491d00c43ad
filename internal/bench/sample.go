// Package bench loads benchmark datasets, validates them, runs a Scorer over
// them synchronously or with bounded concurrency, and aggregates the results.
package bench

import (
	"loom/internal/score"
)

// Difficulty buckets samples for per-difficulty accuracy reporting.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Sample is one benchmark input. Immutable once loaded.
type Sample struct {
	ID               string         `json:"id"`
	Text             string         `json:"text"`
	Context          string         `json:"context,omitempty"`
	ExpectedDecision score.Decision `json:"expected_decision"`
	ExpectedLabels   []string       `json:"expected_labels"`
	PrimaryCategory  string         `json:"primary_category"`
	Difficulty       Difficulty     `json:"difficulty"`
	Notes            string         `json:"notes,omitempty"`
}
