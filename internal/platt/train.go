package platt

import (
	"encoding/json"
	"errors"
	"io/fs"
	"math"
	"os"
	"sort"

	"gonum.org/v1/gonum/mat"

	"loom/internal/bench"
	"loom/internal/errs"
	"loom/internal/logging"
)

const (
	// Both classes need at least this many samples for the sigmoid fit to
	// be defined.
	minPositive = 2
	minNegative = 2

	ridge         = 1e-6
	gradTolerance = 1e-5
	maxIterations = 100
	maxBacktracks = 10

	// probEps keeps log terms finite at boundary probabilities.
	probEps = 1e-12
)

// Train fits Platt params for every label appearing in the export, iterating
// labels in lexicographic order. Labels lacking two samples of either class,
// and labels whose fit goes numerically bad, fall back to identity params
// with skipped=true; the remaining labels still train.
func Train(export *bench.RawScoreExport) *TrainingResult {
	log := logging.New("platt")
	result := &TrainingResult{
		Params: map[string]Params{},
		Metadata: Metadata{
			TotalSamples:    len(export.Samples),
			SamplesPerLabel: map[string]LabelStats{},
		},
	}

	for _, label := range labelSet(export) {
		xs := make([]float64, len(export.Samples))
		ys := make([]bool, len(export.Samples))
		stats := LabelStats{}
		for i, s := range export.Samples {
			xs[i] = float64(s.Scores[label])
			for _, name := range s.ExpectedLabels {
				if name == label {
					ys[i] = true
					break
				}
			}
			if ys[i] {
				stats.Positive++
			} else {
				stats.Negative++
			}
		}

		params := Default()
		if stats.Positive < minPositive || stats.Negative < minNegative {
			stats.Skipped = true
			log.Debug("label lacks both classes, keeping identity params",
				"label", label, "positive", stats.Positive, "negative", stats.Negative)
		} else if fitted, ok := fit(xs, ys, stats.Positive, stats.Negative); ok {
			params = fitted
		} else {
			stats.Skipped = true
			log.Warn("fit failed, keeping identity params",
				"label", label,
				"error", errs.New(errs.Numerical, "non-finite or singular Newton step"))
		}

		result.Params[label] = params
		result.Metadata.SamplesPerLabel[label] = stats
	}
	return result
}

// labelSet returns the sorted union of score-map keys and expected labels.
func labelSet(export *bench.RawScoreExport) []string {
	seen := map[string]struct{}{}
	for _, s := range export.Samples {
		for name := range s.Scores {
			seen[name] = struct{}{}
		}
		for _, name := range s.ExpectedLabels {
			seen[name] = struct{}{}
		}
	}
	labels := make([]string, 0, len(seen))
	for name := range seen {
		labels = append(labels, name)
	}
	sort.Strings(labels)
	return labels
}

// fit minimizes the smoothed, ridge-regularized log-loss over (a, b) with
// Newton-Raphson. Returns ok=false on non-finite values or a singular
// Hessian.
func fit(xs []float64, ys []bool, pos, neg int) (Params, bool) {
	// Platt's target smoothing keeps the loss finite at boundary scores.
	tPos := (float64(pos) + 1) / (float64(pos) + 2)
	tNeg := 1 / (float64(neg) + 2)
	targets := make([]float64, len(ys))
	for i, y := range ys {
		if y {
			targets[i] = tPos
		} else {
			targets[i] = tNeg
		}
	}

	a := 0.0
	b := math.Log((float64(neg) + 1) / (float64(pos) + 1))
	loss := logLoss(xs, targets, a, b)

	for iter := 0; iter < maxIterations; iter++ {
		var g1, g2, h11, h12, h22 float64
		for i, x := range xs {
			p := sigmoid(a*x + b)
			d := p - targets[i]
			g1 += d * x
			g2 += d
			w := p * (1 - p)
			h11 += w * x * x
			h12 += w * x
			h22 += w
		}
		g1 += 2 * ridge * a
		g2 += 2 * ridge * b
		h11 += 2 * ridge
		h22 += 2 * ridge

		if !finite(g1, g2, h11, h12, h22) {
			return Params{}, false
		}
		if math.Max(math.Abs(g1), math.Abs(g2)) < gradTolerance {
			break
		}

		hess := mat.NewDense(2, 2, []float64{h11, h12, h12, h22})
		grad := mat.NewVecDense(2, []float64{g1, g2})
		var step mat.VecDense
		if err := step.SolveVec(hess, grad); err != nil {
			return Params{}, false
		}

		da, db := step.AtVec(0), step.AtVec(1)
		scale := 1.0
		next := loss
		for bt := 0; ; bt++ {
			next = logLoss(xs, targets, a-scale*da, b-scale*db)
			if next <= loss || bt >= maxBacktracks {
				break
			}
			scale /= 2
		}
		a -= scale * da
		b -= scale * db
		loss = next

		if !finite(a, b, loss) {
			return Params{}, false
		}
	}
	return Params{A: float32(a), B: float32(b)}, true
}

func logLoss(xs, targets []float64, a, b float64) float64 {
	sum := ridge * (a*a + b*b)
	for i, x := range xs {
		p := sigmoid(a*x + b)
		p = math.Min(math.Max(p, probEps), 1-probEps)
		t := targets[i]
		sum -= t*math.Log(p) + (1-t)*math.Log(1-p)
	}
	return sum
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// LoadResult reads a training result JSON file.
func LoadResult(path string) (*TrainingResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.NotFound, err, "training result %s", path)
		}
		return nil, errs.Wrap(errs.Internal, err, "read training result %s", path)
	}
	var result TrainingResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, errs.Wrap(errs.Parse, err, "parse training result %s", path)
	}
	return &result, nil
}

// Save writes the training result as indented JSON.
func (r *TrainingResult) Save(path string) error {
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errs.Wrap(errs.Internal, err, "encode training result")
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return errs.Wrap(errs.Internal, err, "write training result %s", path)
	}
	return nil
}
