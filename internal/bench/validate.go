package bench

import (
	"fmt"
	"strings"

	"loom/internal/errs"
	"loom/internal/score"
)

// ValidationError reports one dataset problem tied to a sample.
type ValidationError struct {
	SampleID string `json:"sample_id"`
	Message  string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.SampleID == "" {
		return e.Message
	}
	return fmt.Sprintf("sample %s: %s", e.SampleID, e.Message)
}

// Validate checks every sample and accumulates all problems; it never stops
// at the first. A nil config skips the config-dependent checks.
func Validate(ds *Dataset, cfg *score.ScoreConfig) []ValidationError {
	var out []ValidationError
	add := func(id, format string, args ...any) {
		out = append(out, ValidationError{SampleID: id, Message: fmt.Sprintf(format, args...)})
	}

	var universe map[string]struct{}
	if cfg != nil {
		universe = map[string]struct{}{}
		for _, name := range cfg.LabelUniverse() {
			universe[name] = struct{}{}
		}
	}

	seen := make(map[string]struct{}, len(ds.Samples))
	for _, s := range ds.Samples {
		if strings.TrimSpace(s.ID) == "" {
			add("", "empty sample id")
		} else if _, dup := seen[s.ID]; dup {
			add(s.ID, "duplicate sample id")
		} else {
			seen[s.ID] = struct{}{}
		}

		if strings.TrimSpace(s.Text) == "" {
			add(s.ID, "empty text")
		}
		if s.ExpectedDecision != score.Accept && s.ExpectedDecision != score.Reject {
			add(s.ID, "expected_decision %q is not accept or reject", s.ExpectedDecision)
		}
		switch s.Difficulty {
		case Easy, Medium, Hard:
		default:
			add(s.ID, "difficulty %q is not easy, medium, or hard", s.Difficulty)
		}

		labelSeen := make(map[string]struct{}, len(s.ExpectedLabels))
		for _, name := range s.ExpectedLabels {
			if _, dup := labelSeen[name]; dup {
				add(s.ID, "duplicate expected label %q", name)
				continue
			}
			labelSeen[name] = struct{}{}
			if universe != nil {
				if _, ok := universe[name]; !ok {
					add(s.ID, "expected label %q is not configured", name)
				}
			}
		}

		if cfg != nil {
			if _, ok := cfg.Categories[s.PrimaryCategory]; !ok {
				add(s.ID, "primary category %q is not configured", s.PrimaryCategory)
			}
		}
	}
	return out
}

// AsError folds validation errors into a single Validate-coded error, or nil
// when the slice is empty.
func AsError(verrs []ValidationError) error {
	if len(verrs) == 0 {
		return nil
	}
	msgs := make([]string, len(verrs))
	for i, ve := range verrs {
		msgs[i] = ve.Error()
	}
	return errs.New(errs.Validate, "invalid dataset: %s", strings.Join(msgs, "; "))
}
