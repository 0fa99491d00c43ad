package platt

import (
	"fmt"
	"sort"
	"strings"
)

// GenerateCode renders a training result as a pasteable snippet: a constant
// block for embedding in Go source, followed by a YAML fragment for the
// per-label platt_a/platt_b fields of a score config.
func GenerateCode(result *TrainingResult) string {
	labels := make([]string, 0, len(result.Params))
	for name := range result.Params {
		labels = append(labels, name)
	}
	sort.Strings(labels)

	var b strings.Builder
	fmt.Fprintf(&b, "// Platt calibration fitted from %d samples.\n", result.Metadata.TotalSamples)
	b.WriteString("var plattParams = map[string][2]float32{\n")
	for _, name := range labels {
		p := result.Params[name]
		stats := result.Metadata.SamplesPerLabel[name]
		fmt.Fprintf(&b, "\t%q: {%.6f, %.6f},", name, p.A, p.B)
		if stats.Skipped {
			fmt.Fprintf(&b, " // skipped: pos=%d neg=%d", stats.Positive, stats.Negative)
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")

	b.WriteString("# Merge into the matching category's labels:\n")
	for _, name := range labels {
		p := result.Params[name]
		fmt.Fprintf(&b, "%s:\n  platt_a: %.6f\n  platt_b: %.6f\n", name, p.A, p.B)
	}
	return b.String()
}
