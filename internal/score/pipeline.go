package score

import (
	"math"
	"sort"
	"sync"

	"loom/internal/errs"
	"loom/internal/pipe"
)

// Calibrate applies Platt scaling to a raw score: sigma(a*raw + b).
// Identity params (1, 0) return the raw score unchanged so uncalibrated
// labels pass through bit-exact.
func Calibrate(raw, a, b float32) float32 {
	if math.Abs(float64(a)-1) < 1e-9 && math.Abs(float64(b)) < 1e-9 {
		return raw
	}
	return float32(1.0 / (1.0 + math.Exp(float64(-a*raw-b))))
}

// LabelDetail is the per-label trace of one scoring pass.
type LabelDetail struct {
	Category   string  `json:"category"`
	Label      string  `json:"label"`
	Raw        float32 `json:"raw"`
	Calibrated float32 `json:"calibrated"`
	Weight     float32 `json:"weight"`
	TopK       bool    `json:"top_k"`
	Detected   bool    `json:"detected"`
}

// Result is the output of the scoring pipeline for one text.
type Result struct {
	score     float32
	threshold float32
	decision  Decision
	detected  []string
	labels    []LabelScore
	details   []LabelDetail
}

func (r *Result) Labels() []LabelScore     { return r.labels }
func (r *Result) Decision() Decision       { return r.decision }
func (r *Result) Score() float32           { return r.score }
func (r *Result) DetectedLabels() []string { return r.detected }

// Threshold returns the dynamic threshold the decision was made against.
func (r *Result) Threshold() float32 { return r.threshold }

// Details returns the full per-label trace, sorted by (category, label).
func (r *Result) Details() []LabelDetail { return r.details }

// PipelineScorer scores texts against a ScoreConfig through a fixed typed
// operator graph: raw scoring, Platt calibration, per-category top-K
// selection fanned out per category, weighted aggregation, dynamic
// thresholding, and the accept/reject decision.
type PipelineScorer struct {
	cfg   *ScoreConfig
	model ZeroShotModel
	hyps  []Hypothesis

	// mu serializes model access; zero-shot backends are not assumed
	// thread-safe. A thread-safe model makes this a cheap no-op.
	mu sync.Mutex
}

// NewPipelineScorer validates the config and builds a scorer. Model loading
// happens here, never inside the runner.
func NewPipelineScorer(cfg *ScoreConfig, model ZeroShotModel) (*PipelineScorer, error) {
	if model == nil {
		return nil, errs.New(errs.Scorer, "nil zero-shot model")
	}
	if len(cfg.Categories) == 0 {
		return nil, errs.New(errs.Validate, "score config has no categories")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &PipelineScorer{cfg: cfg, model: model, hyps: cfg.Hypotheses()}, nil
}

// Config returns the immutable configuration this scorer was built from.
func (s *PipelineScorer) Config() *ScoreConfig { return s.cfg }

// Score runs the pipeline for one text. A model failure surfaces as a
// Scorer error; callers decide whether that aborts a run.
func (s *PipelineScorer) Score(text string) (ScorerOutput, error) {
	raw := pipe.New(func() (map[string]float32, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		scores, err := s.model.ScoreText(text, s.hyps)
		if err != nil {
			return nil, errs.Wrap(errs.Scorer, err, "inference failed")
		}
		return scores, nil
	})

	calibrated := pipe.Map(raw, s.calibrateAll)

	catNames := s.cfg.CategoryNames()
	branches := make([]func([]LabelDetail) ([]LabelDetail, error), len(catNames))
	for i, name := range catNames {
		branches[i] = s.categoryBranch(name)
	}
	selected := pipe.FanOut(calibrated, branches...)

	aggregated := pipe.Map(selected, s.aggregate)

	guarded := pipe.Guard(aggregated, func(r *Result) bool {
		return !math.IsNaN(float64(r.score)) && r.score >= 0 && r.score <= 1
	}, errs.New(errs.Internal, "aggregate score out of range"))

	decided := pipe.Map(guarded, func(r *Result) *Result {
		r.threshold = s.cfg.ThresholdFor(text)
		if r.score >= r.threshold {
			r.decision = Accept
		} else {
			r.decision = Reject
		}
		return r
	})

	return decided.Run()
}

// calibrateAll expands the raw score map into per-(category,label) details
// with Platt calibration applied. Labels the model did not return score 0.
func (s *PipelineScorer) calibrateAll(raw map[string]float32) []LabelDetail {
	var details []LabelDetail
	for _, cat := range s.cfg.CategoryNames() {
		labels := s.cfg.Categories[cat].Labels
		for _, name := range sortedKeys(labels) {
			lc := labels[name]
			r := raw[name]
			details = append(details, LabelDetail{
				Category:   cat,
				Label:      name,
				Raw:        r,
				Calibrated: Calibrate(r, lc.PlattA, lc.PlattB),
				Weight:     lc.Weight,
			})
		}
	}
	return details
}

// categoryBranch marks top-K membership and per-label admission for one
// category. Ties on calibrated score break by label name ascending.
func (s *PipelineScorer) categoryBranch(category string) func([]LabelDetail) ([]LabelDetail, error) {
	topK := s.cfg.Categories[category].TopK
	return func(all []LabelDetail) ([]LabelDetail, error) {
		var mine []LabelDetail
		for _, d := range all {
			if d.Category == category {
				mine = append(mine, d)
			}
		}

		order := make([]int, len(mine))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			da, db := mine[order[a]], mine[order[b]]
			if da.Calibrated != db.Calibrated {
				return da.Calibrated > db.Calibrated
			}
			return da.Label < db.Label
		})

		for rank, idx := range order {
			if rank >= topK {
				break
			}
			mine[idx].TopK = true
		}
		for i := range mine {
			lc := s.cfg.Categories[category].Labels[mine[i].Label]
			mine[i].Detected = mine[i].TopK && mine[i].Calibrated >= lc.Threshold
		}
		return mine, nil
	}
}

// aggregate folds per-category selections into the final weighted score.
func (s *PipelineScorer) aggregate(perCategory [][]LabelDetail) *Result {
	res := &Result{}

	var sumWeight, sumWeighted float64
	detected := map[string]struct{}{}
	for _, details := range perCategory {
		for _, d := range details {
			res.details = append(res.details, d)
			res.labels = append(res.labels, LabelScore{Label: d.Label, Raw: d.Raw})
			if d.Detected {
				detected[d.Label] = struct{}{}
				sumWeight += float64(d.Weight)
				sumWeighted += float64(d.Weight) * float64(d.Calibrated)
			}
		}
	}

	if len(detected) > 0 {
		res.score = float32(sumWeighted / math.Max(1, sumWeight))
	}
	res.detected = make([]string, 0, len(detected))
	for name := range detected {
		res.detected = append(res.detected, name)
	}
	sort.Strings(res.detected)
	return res
}
