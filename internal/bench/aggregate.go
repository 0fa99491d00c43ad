package bench

import (
	"github.com/google/uuid"
)

// buildResult folds per-sample results (already in dataset order) into the
// aggregate metrics. Zero denominators yield zero, never NaN.
func buildResult(ds *Dataset, samples []SampleResult) *BenchResult {
	res := &BenchResult{
		RunID:        uuid.NewString(),
		Total:        len(samples),
		Labels:       map[string]LabelMetrics{},
		Categories:   map[string]AccuracyStat{},
		Difficulties: map[Difficulty]AccuracyStat{},
		Samples:      samples,
	}

	counts := map[string]*LabelMetrics{}
	touch := func(name string) *LabelMetrics {
		if m, ok := counts[name]; ok {
			return m
		}
		m := &LabelMetrics{}
		counts[name] = m
		return m
	}

	for i, r := range samples {
		if r.Correct {
			res.Correct++
		}

		expected := map[string]struct{}{}
		for _, name := range r.ExpectedLabels {
			expected[name] = struct{}{}
		}
		detected := map[string]struct{}{}
		for _, name := range r.DetectedLabels {
			detected[name] = struct{}{}
		}
		for name := range detected {
			if _, ok := expected[name]; ok {
				touch(name).TP++
			} else {
				touch(name).FP++
			}
		}
		for name := range expected {
			if _, ok := detected[name]; !ok {
				touch(name).FN++
			}
		}

		sample := ds.Samples[i]
		cat := res.Categories[sample.PrimaryCategory]
		cat.Total++
		if r.Correct {
			cat.Correct++
		}
		res.Categories[sample.PrimaryCategory] = cat

		diff := res.Difficulties[sample.Difficulty]
		diff.Total++
		if r.Correct {
			diff.Correct++
		}
		res.Difficulties[sample.Difficulty] = diff
	}

	if res.Total > 0 {
		res.Accuracy = float64(res.Correct) / float64(res.Total)
	}
	for name, stat := range res.Categories {
		stat.Accuracy = ratio(stat.Correct, stat.Total)
		res.Categories[name] = stat
	}
	for name, stat := range res.Difficulties {
		stat.Accuracy = ratio(stat.Correct, stat.Total)
		res.Difficulties[name] = stat
	}

	for name, m := range counts {
		m.Precision = ratio(m.TP, m.TP+m.FP)
		m.Recall = ratio(m.TP, m.TP+m.FN)
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		res.Labels[name] = *m

		res.Macro.Precision += m.Precision
		res.Macro.Recall += m.Recall
		res.Macro.F1 += m.F1
	}
	if n := float64(len(counts)); n > 0 {
		res.Macro.Precision /= n
		res.Macro.Recall /= n
		res.Macro.F1 /= n
	}
	return res
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
