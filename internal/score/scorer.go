package score

// Decision is the binary outcome of scoring a text.
type Decision string

const (
	Accept Decision = "accept"
	Reject Decision = "reject"
)

// LabelScore pairs a label with its raw, uncalibrated model score.
type LabelScore struct {
	Label string  `json:"label"`
	Raw   float32 `json:"raw"`
}

// ScorerOutput exposes the result of scoring a single text.
type ScorerOutput interface {
	// Labels returns raw zero-shot scores for every configured label.
	Labels() []LabelScore
	// Decision returns the aggregated accept/reject outcome.
	Decision() Decision
	// Score returns the final aggregated score in [0,1].
	Score() float32
	// DetectedLabels returns labels whose calibrated score cleared their
	// per-label threshold while in their category's top-K.
	DetectedLabels() []string
}

// Scorer scores one text at a time. Implementations are shared read-only
// across runner workers; construction may block on model loading and must
// happen before the run starts.
type Scorer interface {
	Score(text string) (ScorerOutput, error)
}

// Hypothesis pairs a label with the premise fed to the zero-shot model.
type Hypothesis struct {
	Label string
	Text  string
}

// ZeroShotModel is the sole seam to the external classifier. It returns a
// raw probability in [0,1] per label.
type ZeroShotModel interface {
	ScoreText(text string, hypotheses []Hypothesis) (map[string]float32, error)
}
