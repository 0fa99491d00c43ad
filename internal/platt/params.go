// Package platt fits two-parameter sigmoid calibration from raw zero-shot
// scores by regularized log-loss, using Newton-Raphson.
package platt

// Params calibrate a raw score as sigma(a*x + b).
type Params struct {
	A float32 `json:"a"`
	B float32 `json:"b"`
}

// Default returns the identity calibration.
func Default() Params { return Params{A: 1, B: 0} }

// LabelStats records the class balance seen while fitting one label.
type LabelStats struct {
	Positive int  `json:"positive"`
	Negative int  `json:"negative"`
	Skipped  bool `json:"skipped"`
}

// Metadata describes the training input.
type Metadata struct {
	TotalSamples    int                   `json:"total_samples"`
	SamplesPerLabel map[string]LabelStats `json:"samples_per_label"`
}

// TrainingResult holds fitted params per label plus training metadata.
type TrainingResult struct {
	Params   map[string]Params `json:"params"`
	Metadata Metadata          `json:"metadata"`
}
