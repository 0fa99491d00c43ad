package bench

import (
	"time"

	"loom/internal/score"
)

// SampleResult is the per-sample outcome of a run.
type SampleResult struct {
	ID               string         `json:"id"`
	ExpectedDecision score.Decision `json:"expected_decision"`
	ActualDecision   score.Decision `json:"actual_decision"`
	Correct          bool           `json:"correct"`
	Score            float32        `json:"score"`
	ExpectedLabels   []string       `json:"expected_labels"`
	DetectedLabels   []string       `json:"detected_labels"`
	// Err carries a per-sample scorer failure; the run continues past it.
	Err string `json:"error,omitempty"`
}

// LabelMetrics holds the confusion counts and derived scores for one label.
type LabelMetrics struct {
	TP        int     `json:"tp"`
	FP        int     `json:"fp"`
	FN        int     `json:"fn"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// AccuracyStat is a correct/total pair for one grouping key.
type AccuracyStat struct {
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// MacroMetrics averages per-label precision/recall/F1 with equal label weight.
type MacroMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// BenchResult is the full outcome of a benchmark run. Samples are in dataset
// order regardless of completion order.
type BenchResult struct {
	RunID        string                      `json:"run_id"`
	Elapsed      time.Duration               `json:"elapsed_ns"`
	Total        int                         `json:"total"`
	Correct      int                         `json:"correct"`
	Accuracy     float64                     `json:"accuracy"`
	Labels       map[string]LabelMetrics     `json:"labels"`
	Categories   map[string]AccuracyStat     `json:"categories"`
	Difficulties map[Difficulty]AccuracyStat `json:"difficulties"`
	Macro        MacroMetrics                `json:"macro"`
	Samples      []SampleResult              `json:"samples"`
}
