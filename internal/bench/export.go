package bench

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"loom/internal/errs"
	"loom/internal/score"
)

// SampleScores is one sample's raw zero-shot scores, the Platt trainer input.
type SampleScores struct {
	ID             string             `json:"id"`
	Text           string             `json:"text"`
	Scores         map[string]float32 `json:"scores"`
	ExpectedLabels []string           `json:"expected_labels"`
}

// RawScoreExport holds raw scores for a whole dataset, in dataset order.
type RawScoreExport struct {
	Samples []SampleScores `json:"samples"`
}

// Export scores every sample and keeps only the raw per-label scores. A
// per-sample scorer failure yields an empty score map for that sample.
func Export(ctx context.Context, ds *Dataset, scorer score.Scorer, opts Options, onProgress ProgressFunc) (*RawScoreExport, error) {
	samples := make([]SampleScores, len(ds.Samples))

	err := forEachSample(ctx, ds, opts, onProgress, func(i int, s Sample) (string, bool) {
		entry := SampleScores{
			ID:             s.ID,
			Text:           s.Text,
			Scores:         map[string]float32{},
			ExpectedLabels: s.ExpectedLabels,
		}
		if out, err := scorer.Score(s.Text); err == nil {
			for _, ls := range out.Labels() {
				entry.Scores[ls.Label] = ls.Raw
			}
		}
		samples[i] = entry
		return s.ID, true
	})
	if err != nil {
		return nil, err
	}
	return &RawScoreExport{Samples: samples}, nil
}

// LoadExport reads a raw-score export JSON file.
func LoadExport(path string) (*RawScoreExport, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.NotFound, err, "raw score export %s", path)
		}
		return nil, errs.Wrap(errs.Internal, err, "read raw score export %s", path)
	}
	var export RawScoreExport
	if err := json.Unmarshal(raw, &export); err != nil {
		return nil, errs.Wrap(errs.Parse, err, "parse raw score export %s", path)
	}
	return &export, nil
}

// Save writes the export as indented JSON.
func (e *RawScoreExport) Save(path string) error {
	raw, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return errs.Wrap(errs.Internal, err, "encode raw score export")
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return errs.Wrap(errs.Internal, err, "write raw score export %s", path)
	}
	return nil
}
