package main

import (
	"errors"
	"strings"
	"testing"

	"loom/internal/bench"
	"loom/internal/errs"
	"loom/internal/score"
)

func TestExitCode(t *testing.T) {
	if got := exitCode(errs.New(errs.Validate, "bad dataset")); got != 2 {
		t.Errorf("validation error exit code = %d, want 2", got)
	}
	if got := exitCode(errs.New(errs.NotFound, "missing")); got != 1 {
		t.Errorf("not-found exit code = %d, want 1", got)
	}
	if got := exitCode(errors.New("plain")); got != 1 {
		t.Errorf("plain error exit code = %d, want 1", got)
	}
}

func TestRenderBenchResult(t *testing.T) {
	res := &bench.BenchResult{
		RunID:    "run-1",
		Total:    2,
		Correct:  1,
		Accuracy: 0.5,
		Labels: map[string]bench.LabelMetrics{
			"alpha": {TP: 1, FN: 1, Precision: 1, Recall: 0.5, F1: 2.0 / 3.0},
		},
		Categories: map[string]bench.AccuracyStat{
			"topic": {Total: 2, Correct: 1, Accuracy: 0.5},
		},
		Difficulties: map[bench.Difficulty]bench.AccuracyStat{
			bench.Easy: {Total: 2, Correct: 1, Accuracy: 0.5},
		},
		Samples: []bench.SampleResult{
			{ID: "s1", ExpectedDecision: score.Accept, ActualDecision: score.Accept, Correct: true, Score: 0.9},
			{ID: "s2", ExpectedDecision: score.Reject, ActualDecision: score.Accept, Score: 0.8, Err: "boom"},
		},
	}

	var b strings.Builder
	renderBenchResult(&b, res, true)
	out := b.String()

	for _, want := range []string{"run-1", "1/2 correct", "alpha", "topic", "easy", "s1", "s2", "boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderCoverage(t *testing.T) {
	report := &bench.CoverageReport{
		TotalSamples: 3,
		AcceptCount:  2,
		RejectCount:  1,
		Categories:   map[string]int{"topic": 3},
		Labels:       map[string]int{"alpha": 2},
		MissingLabels: []string{
			"beta",
		},
	}

	var b strings.Builder
	renderCoverage(&b, report)
	out := b.String()

	for _, want := range []string{"3 samples", "2 accept", "topic", "alpha", "beta"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}
