package score

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"loom/internal/errs"
)

const sampleYAML = `
threshold: 0.75
modifier:
  short_text_delta: 0.1
categories:
  task:
    top_k: 2
    labels:
      action:
        hypothesis: "This text describes an action to take."
        weight: 0.8
      time:
        hypothesis: "This text mentions a time or date."
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "cfg.yaml", sampleYAML))
	if err != nil {
		t.Fatal(err)
	}

	action := cfg.Categories["task"].Labels["action"]
	if action.Weight != 0.8 {
		t.Errorf("explicit weight = %v, want 0.8", action.Weight)
	}
	if action.Threshold != 0.7 {
		t.Errorf("default threshold = %v, want 0.7", action.Threshold)
	}
	if action.PlattA != 1.0 || action.PlattB != 0.0 {
		t.Errorf("default platt = (%v, %v), want (1, 0)", action.PlattA, action.PlattB)
	}

	timeLabel := cfg.Categories["task"].Labels["time"]
	if timeLabel.Weight != 0.5 {
		t.Errorf("default weight = %v, want 0.5", timeLabel.Weight)
	}

	if cfg.Modifier.ShortTextDelta != 0.1 {
		t.Errorf("explicit short_text_delta = %v, want 0.1", cfg.Modifier.ShortTextDelta)
	}
	if cfg.Modifier.LongTextDelta != 0.05 {
		t.Errorf("default long_text_delta = %v, want 0.05", cfg.Modifier.LongTextDelta)
	}
	if cfg.Modifier.ShortTextLimit != 20 || cfg.Modifier.LongTextLimit != 200 {
		t.Errorf("default limits = (%d, %d), want (20, 200)",
			cfg.Modifier.ShortTextLimit, cfg.Modifier.LongTextLimit)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("LOOM_THRESHOLD", "0.9")
	cfg, err := LoadConfig(writeConfig(t, "cfg.yaml", sampleYAML))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Threshold != 0.9 {
		t.Errorf("threshold = %v, want env override 0.9", cfg.Threshold)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/cfg.yaml")
	if !errs.IsCode(err, errs.NotFound) {
		t.Errorf("error code = %v, want not_found", errs.CodeOf(err))
	}
}

func TestValidateAccumulatesProblems(t *testing.T) {
	cfg := &ScoreConfig{
		Threshold: 1.5,
		Modifier:  DefaultModifier(),
		Categories: map[string]CategoryConfig{
			"c": {
				TopK: 5,
				Labels: map[string]LabelConfig{
					"a": {Hypothesis: "", Weight: 2.0, Threshold: 0.5, PlattA: 1},
				},
			},
		},
	}

	err := cfg.Validate()
	if !errs.IsCode(err, errs.Validate) {
		t.Fatalf("error code = %v, want validate", errs.CodeOf(err))
	}
	// threshold range, top_k > labels, empty hypothesis, weight range.
	for _, want := range []string{"threshold", "top_k", "hypothesis", "weight"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in validation message %q", want, err.Error())
		}
	}
}

func TestHypothesesStableOrder(t *testing.T) {
	cfg := &ScoreConfig{
		Categories: map[string]CategoryConfig{
			"zeta": {TopK: 1, Labels: map[string]LabelConfig{
				"b": {Hypothesis: "b"},
				"a": {Hypothesis: "a"},
			}},
			"alpha": {TopK: 1, Labels: map[string]LabelConfig{
				"z": {Hypothesis: "z"},
			}},
		},
	}

	want := []Hypothesis{
		{Label: "z", Text: "z"},
		{Label: "a", Text: "a"},
		{Label: "b", Text: "b"},
	}
	if diff := cmp.Diff(want, cfg.Hypotheses()); diff != "" {
		t.Errorf("hypotheses order (-want +got):\n%s", diff)
	}
}

func TestThresholdFor(t *testing.T) {
	cfg := &ScoreConfig{
		Threshold: 0.5,
		Modifier: ModifierConfig{
			ShortTextDelta: 0.1,
			LongTextDelta:  0.2,
			ShortTextLimit: 5,
			LongTextLimit:  10,
		},
	}

	tests := []struct {
		name string
		text string
		want float32
	}{
		{"empty uses short delta", "", 0.4},
		{"at short limit", "12345", 0.4},
		{"medium", "1234567", 0.5},
		{"at long limit still medium", "1234567890", 0.5},
		{"over long limit", "12345678901", 0.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cfg.ThresholdFor(tt.text)
			if math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("ThresholdFor(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestThresholdForClamps(t *testing.T) {
	low := &ScoreConfig{Threshold: 0.05, Modifier: ModifierConfig{
		ShortTextDelta: 0.2, ShortTextLimit: 5, LongTextLimit: 10,
	}}
	if got := low.ThresholdFor("hi"); got != 0 {
		t.Errorf("clamped low = %v, want 0", got)
	}

	high := &ScoreConfig{Threshold: 0.95, Modifier: ModifierConfig{
		LongTextDelta: 0.2, ShortTextLimit: 1, LongTextLimit: 2,
	}}
	if got := high.ThresholdFor("long enough"); got != 1 {
		t.Errorf("clamped high = %v, want 1", got)
	}
}

func TestThresholdForCountsRunesNotBytes(t *testing.T) {
	cfg := &ScoreConfig{Threshold: 0.5, Modifier: ModifierConfig{
		ShortTextDelta: 0.1, ShortTextLimit: 4, LongTextLimit: 100,
	}}
	// Four runes, twelve bytes.
	if got := cfg.ThresholdFor("日本語文"); got != 0.4 {
		t.Errorf("rune counting: got %v, want 0.4", got)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "cfg.yaml", sampleYAML))
	if err != nil {
		t.Fatal(err)
	}

	raw, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	var back ScoreConfig
	if err := yaml.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(cfg, &back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLabelUniverse(t *testing.T) {
	cfg := &ScoreConfig{
		Categories: map[string]CategoryConfig{
			"a": {TopK: 1, Labels: map[string]LabelConfig{"x": {}, "y": {}}},
			"b": {TopK: 1, Labels: map[string]LabelConfig{"y": {}, "z": {}}},
		},
	}
	want := []string{"x", "y", "z"}
	if diff := cmp.Diff(want, cfg.LabelUniverse()); diff != "" {
		t.Errorf("universe (-want +got):\n%s", diff)
	}
}
