package bench

import (
	"sort"

	"loom/internal/score"
)

// CoverageReport summarizes how well a dataset exercises a label universe.
type CoverageReport struct {
	TotalSamples  int            `json:"total_samples"`
	Categories    map[string]int `json:"categories"`
	Labels        map[string]int `json:"labels"`
	AcceptCount   int            `json:"accept_count"`
	RejectCount   int            `json:"reject_count"`
	MissingLabels []string       `json:"missing_labels"`
}

// Coverage counts category, label, and decision usage across the dataset.
// Labels in universe that no sample expects are reported as missing; a nil
// universe disables the missing-label check.
func Coverage(ds *Dataset, universe []string) *CoverageReport {
	report := &CoverageReport{
		TotalSamples: len(ds.Samples),
		Categories:   map[string]int{},
		Labels:       map[string]int{},
	}

	for _, s := range ds.Samples {
		report.Categories[s.PrimaryCategory]++
		for _, name := range s.ExpectedLabels {
			report.Labels[name]++
		}
		switch s.ExpectedDecision {
		case score.Accept:
			report.AcceptCount++
		case score.Reject:
			report.RejectCount++
		}
	}

	for _, name := range universe {
		if report.Labels[name] == 0 {
			report.MissingLabels = append(report.MissingLabels, name)
		}
	}
	sort.Strings(report.MissingLabels)
	return report
}
