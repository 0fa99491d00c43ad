package score

import (
	"strings"
	"unicode"
)

// HypothesisModel is a deterministic, dependency-free ZeroShotModel used as
// the CLI default and in tests. It scores a label by the fraction of the
// hypothesis' tokens that occur in the text, which is stable across runs and
// needs no model weights.
//
// Swap in a real transformer-backed ZeroShotModel for production scoring;
// nothing above this seam changes.
type HypothesisModel struct{}

// NewHypothesisModel returns the stub model.
func NewHypothesisModel() *HypothesisModel { return &HypothesisModel{} }

func (m *HypothesisModel) ScoreText(text string, hypotheses []Hypothesis) (map[string]float32, error) {
	textTokens := tokenSet(text)
	out := make(map[string]float32, len(hypotheses))
	for _, h := range hypotheses {
		hypTokens := tokenSet(h.Text)
		if len(hypTokens) == 0 {
			out[h.Label] = 0
			continue
		}
		matched := 0
		for tok := range hypTokens {
			if _, ok := textTokens[tok]; ok {
				matched++
			}
		}
		out[h.Label] = float32(matched) / float32(len(hypTokens))
	}
	return out, nil
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
