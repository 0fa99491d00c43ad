// Package score implements the declarative zero-shot scorer: its
// configuration model, the per-sample scoring pipeline, and the Scorer
// contract consumed by the benchmark runner.
package score

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"loom/internal/config"
	"loom/internal/errs"
)

// ScoreConfig is the declarative scorer definition. Immutable after load.
type ScoreConfig struct {
	// Threshold is the baseline acceptance threshold in [0,1].
	Threshold float32 `yaml:"threshold" json:"threshold"`
	// Modifier adjusts the threshold by text length.
	Modifier ModifierConfig `yaml:"modifier" json:"modifier"`
	// Categories keyed by category name.
	Categories map[string]CategoryConfig `yaml:"categories" json:"categories"`
}

// CategoryConfig groups labels and caps how many count toward the aggregate.
type CategoryConfig struct {
	TopK   int                    `yaml:"top_k" json:"top_k"`
	Labels map[string]LabelConfig `yaml:"labels" json:"labels"`
}

// LabelConfig defines one zero-shot label.
type LabelConfig struct {
	// Hypothesis is the natural-language premise fed to the classifier.
	Hypothesis string `yaml:"hypothesis" json:"hypothesis"`
	// Weight applied to the calibrated score in the aggregate.
	Weight float32 `yaml:"weight" json:"weight"`
	// Threshold is the per-label inclusion gate on the calibrated score.
	Threshold float32 `yaml:"threshold" json:"threshold"`
	// PlattA and PlattB calibrate the raw score as sigma(a*raw + b).
	PlattA float32 `yaml:"platt_a" json:"platt_a"`
	PlattB float32 `yaml:"platt_b" json:"platt_b"`
}

// ModifierConfig holds the dynamic-threshold deltas.
type ModifierConfig struct {
	ShortTextDelta float32 `yaml:"short_text_delta" json:"short_text_delta"`
	LongTextDelta  float32 `yaml:"long_text_delta" json:"long_text_delta"`
	ShortTextLimit int     `yaml:"short_text_limit" json:"short_text_limit"`
	LongTextLimit  int     `yaml:"long_text_limit" json:"long_text_limit"`
}

// Defaults applied when a field is absent from the config file.
const (
	defaultThreshold      = float32(0.75)
	defaultTopK           = 2
	defaultWeight         = float32(0.5)
	defaultLabelThreshold = float32(0.7)
	defaultPlattA         = float32(1.0)
	defaultShortDelta     = float32(0.05)
	defaultLongDelta      = float32(0.05)
	defaultShortLimit     = 20
	defaultLongLimit      = 200
)

func (c *ScoreConfig) UnmarshalYAML(node *yaml.Node) error {
	type raw ScoreConfig
	r := raw{
		Threshold: defaultThreshold,
		Modifier:  DefaultModifier(),
	}
	if err := node.Decode(&r); err != nil {
		return err
	}
	*c = ScoreConfig(r)
	return nil
}

func (c *CategoryConfig) UnmarshalYAML(node *yaml.Node) error {
	type raw CategoryConfig
	r := raw{TopK: defaultTopK}
	if err := node.Decode(&r); err != nil {
		return err
	}
	*c = CategoryConfig(r)
	return nil
}

func (l *LabelConfig) UnmarshalYAML(node *yaml.Node) error {
	type raw LabelConfig
	r := raw{
		Weight:    defaultWeight,
		Threshold: defaultLabelThreshold,
		PlattA:    defaultPlattA,
	}
	if err := node.Decode(&r); err != nil {
		return err
	}
	*l = LabelConfig(r)
	return nil
}

func (m *ModifierConfig) UnmarshalYAML(node *yaml.Node) error {
	type raw ModifierConfig
	r := raw(DefaultModifier())
	if err := node.Decode(&r); err != nil {
		return err
	}
	*m = ModifierConfig(r)
	return nil
}

// DefaultModifier returns the modifier defaults.
func DefaultModifier() ModifierConfig {
	return ModifierConfig{
		ShortTextDelta: defaultShortDelta,
		LongTextDelta:  defaultLongDelta,
		ShortTextLimit: defaultShortLimit,
		LongTextLimit:  defaultLongLimit,
	}
}

// LoadConfig reads a score config file (YAML, JSON, or TOML by extension),
// overlays LOOM_-prefixed environment variables, applies defaults, and
// validates the result.
func LoadConfig(path string) (*ScoreConfig, error) {
	root, err := config.NewBuilder().WithFile(path).WithEnv("LOOM").Build()
	if err != nil {
		return nil, err
	}
	var cfg ScoreConfig
	if err := root.Section("").Bind(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every config invariant and reports all violations at once.
func (c *ScoreConfig) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Threshold < 0 || c.Threshold > 1 {
		add("threshold %v outside [0,1]", c.Threshold)
	}
	if c.Modifier.ShortTextLimit < 1 {
		add("modifier.short_text_limit must be >= 1")
	}
	if c.Modifier.LongTextLimit < 1 {
		add("modifier.long_text_limit must be >= 1")
	}
	if c.Modifier.ShortTextDelta < 0 || c.Modifier.ShortTextDelta > 1 {
		add("modifier.short_text_delta %v outside [0,1]", c.Modifier.ShortTextDelta)
	}
	if c.Modifier.LongTextDelta < 0 || c.Modifier.LongTextDelta > 1 {
		add("modifier.long_text_delta %v outside [0,1]", c.Modifier.LongTextDelta)
	}

	for _, cat := range sortedKeys(c.Categories) {
		cc := c.Categories[cat]
		if cc.TopK < 1 {
			add("category %q: top_k must be >= 1", cat)
		}
		if len(cc.Labels) == 0 {
			add("category %q: no labels", cat)
		} else if cc.TopK > len(cc.Labels) {
			add("category %q: top_k %d exceeds label count %d", cat, cc.TopK, len(cc.Labels))
		}
		for _, name := range sortedKeys(cc.Labels) {
			lc := cc.Labels[name]
			if strings.TrimSpace(lc.Hypothesis) == "" {
				add("label %q.%q: empty hypothesis", cat, name)
			}
			if lc.Weight < 0 || lc.Weight > 1 {
				add("label %q.%q: weight %v outside [0,1]", cat, name, lc.Weight)
			}
			if lc.Threshold < 0 || lc.Threshold > 1 {
				add("label %q.%q: threshold %v outside [0,1]", cat, name, lc.Threshold)
			}
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return errs.New(errs.Validate, "invalid score config: %s", strings.Join(problems, "; "))
}

// Hypotheses returns every configured label with its hypothesis in a
// deterministic order, sorted by (category, label), so model-side ordering
// cannot perturb results.
func (c *ScoreConfig) Hypotheses() []Hypothesis {
	var out []Hypothesis
	for _, cat := range sortedKeys(c.Categories) {
		labels := c.Categories[cat].Labels
		for _, name := range sortedKeys(labels) {
			out = append(out, Hypothesis{Label: name, Text: labels[name].Hypothesis})
		}
	}
	return out
}

// LabelUniverse returns the sorted, de-duplicated set of configured labels.
func (c *ScoreConfig) LabelUniverse() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, cc := range c.Categories {
		for name := range cc.Labels {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// CategoryNames returns the sorted category names.
func (c *ScoreConfig) CategoryNames() []string {
	return sortedKeys(c.Categories)
}

// Label finds a label config anywhere in the category tree.
func (c *ScoreConfig) Label(name string) (LabelConfig, bool) {
	for _, cat := range sortedKeys(c.Categories) {
		if lc, ok := c.Categories[cat].Labels[name]; ok {
			return lc, true
		}
	}
	return LabelConfig{}, false
}

// ThresholdFor computes the dynamic acceptance threshold for a text,
// measured in characters, clamped to [0,1].
func (c *ScoreConfig) ThresholdFor(text string) float32 {
	length := utf8.RuneCountInString(text)
	theta := c.Threshold
	switch {
	case length <= c.Modifier.ShortTextLimit:
		theta -= c.Modifier.ShortTextDelta
	case length > c.Modifier.LongTextLimit:
		theta += c.Modifier.LongTextDelta
	}
	if theta < 0 {
		return 0
	}
	if theta > 1 {
		return 1
	}
	return theta
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
