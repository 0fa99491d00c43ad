package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/schollz/progressbar/v2"

	"loom/internal/bench"
)

func newProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(30),
	)
}

func renderBenchResult(w io.Writer, res *bench.BenchResult, verbose bool) {
	fmt.Fprintf(w, "run %s: %d/%d correct (%.1f%%) in %s\n\n",
		res.RunID, res.Correct, res.Total, 100*res.Accuracy, res.Elapsed.Round(time.Millisecond))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "LABEL\tTP\tFP\tFN\tPRECISION\tRECALL\tF1")
	for _, name := range sortedNames(res.Labels) {
		m := res.Labels[name]
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.3f\t%.3f\t%.3f\n",
			name, m.TP, m.FP, m.FN, m.Precision, m.Recall, m.F1)
	}
	fmt.Fprintf(tw, "macro\t\t\t\t%.3f\t%.3f\t%.3f\n",
		res.Macro.Precision, res.Macro.Recall, res.Macro.F1)
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "CATEGORY\tCORRECT\tTOTAL\tACCURACY")
	for _, name := range sortedNames(res.Categories) {
		s := res.Categories[name]
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f%%\n", name, s.Correct, s.Total, 100*s.Accuracy)
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "DIFFICULTY\tCORRECT\tTOTAL\tACCURACY")
	for _, diff := range []bench.Difficulty{bench.Easy, bench.Medium, bench.Hard} {
		if s, ok := res.Difficulties[diff]; ok {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f%%\n", diff, s.Correct, s.Total, 100*s.Accuracy)
		}
	}

	if verbose {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "SAMPLE\tEXPECTED\tACTUAL\tSCORE\tDETECTED\tERROR")
		for _, r := range res.Samples {
			mark := " "
			if !r.Correct {
				mark = "x"
			}
			fmt.Fprintf(tw, "%s %s\t%s\t%s\t%.3f\t%v\t%s\n",
				mark, r.ID, r.ExpectedDecision, r.ActualDecision, r.Score, r.DetectedLabels, r.Err)
		}
	}
	tw.Flush()
}

func renderCoverage(w io.Writer, report *bench.CoverageReport) {
	fmt.Fprintf(w, "%d samples: %d accept, %d reject\n\n",
		report.TotalSamples, report.AcceptCount, report.RejectCount)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tSAMPLES")
	for _, name := range sortedNames(report.Categories) {
		fmt.Fprintf(tw, "%s\t%d\n", name, report.Categories[name])
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "LABEL\tSAMPLES")
	for _, name := range sortedNames(report.Labels) {
		fmt.Fprintf(tw, "%s\t%d\n", name, report.Labels[name])
	}
	tw.Flush()

	if len(report.MissingLabels) > 0 {
		fmt.Fprintf(w, "\nmissing labels: %v\n", report.MissingLabels)
	}
}

func sortedNames[K ~string, V any](m map[K]V) []K {
	names := make([]K, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
