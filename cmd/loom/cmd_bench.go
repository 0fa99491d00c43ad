package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"loom/internal/bench"
	"loom/internal/logging"
	"loom/internal/platt"
	"loom/internal/score"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark tooling: run, validate, coverage, score, train",
}

var benchRunFlags struct {
	config      string
	verbose     bool
	concurrency int
}

var benchRunCmd = &cobra.Command{
	Use:   "run <dataset>",
	Short: "Run a benchmark dataset against the configured scorer",
	Args:  cobra.ExactArgs(1),
	RunE:  runBenchRun,
}

var benchValidateFlags struct {
	config string
	strict bool
}

var benchValidateCmd = &cobra.Command{
	Use:   "validate <dataset>",
	Short: "Check dataset invariants, accumulating every problem",
	Args:  cobra.ExactArgs(1),
	RunE:  runBenchValidate,
}

var benchCoverageFlags struct {
	config string
}

var benchCoverageCmd = &cobra.Command{
	Use:   "coverage <dataset>",
	Short: "Report category, label, and decision coverage of a dataset",
	Args:  cobra.ExactArgs(1),
	RunE:  runBenchCoverage,
}

var benchScoreFlags struct {
	config      string
	output      string
	concurrency int
}

var benchScoreCmd = &cobra.Command{
	Use:   "score <dataset>",
	Short: "Export raw per-label scores for Platt training",
	Args:  cobra.ExactArgs(1),
	RunE:  runBenchScore,
}

var benchTrainFlags struct {
	output string
	code   bool
}

var benchTrainCmd = &cobra.Command{
	Use:   "train <raw.json>",
	Short: "Fit Platt calibration params from exported raw scores",
	Args:  cobra.ExactArgs(1),
	RunE:  runBenchTrain,
}

func init() {
	f := benchRunCmd.Flags()
	f.StringVar(&benchRunFlags.config, "config", "", "Score config path (required)")
	f.BoolVar(&benchRunFlags.verbose, "verbose", false, "Print per-sample results")
	f.IntVar(&benchRunFlags.concurrency, "concurrency", bench.DefaultConcurrency, "Max samples in flight")
	_ = benchRunCmd.MarkFlagRequired("config")

	f = benchValidateCmd.Flags()
	f.StringVar(&benchValidateFlags.config, "config", "", "Score config path (enables config-dependent checks)")
	f.BoolVar(&benchValidateFlags.strict, "strict", false, "Fail on config-dependent problems too")

	f = benchCoverageCmd.Flags()
	f.StringVar(&benchCoverageFlags.config, "config", "", "Score config path (enables missing-label report)")

	f = benchScoreCmd.Flags()
	f.StringVar(&benchScoreFlags.config, "config", "", "Score config path (required)")
	f.StringVar(&benchScoreFlags.output, "output", "", "Raw score export path (required)")
	f.IntVar(&benchScoreFlags.concurrency, "concurrency", bench.DefaultConcurrency, "Max samples in flight")
	_ = benchScoreCmd.MarkFlagRequired("config")
	_ = benchScoreCmd.MarkFlagRequired("output")

	f = benchTrainCmd.Flags()
	f.StringVar(&benchTrainFlags.output, "output", "", "Training result path (required)")
	f.BoolVar(&benchTrainFlags.code, "code", false, "Print pasteable param snippet to stdout")
	_ = benchTrainCmd.MarkFlagRequired("output")

	benchCmd.AddCommand(benchRunCmd)
	benchCmd.AddCommand(benchValidateCmd)
	benchCmd.AddCommand(benchCoverageCmd)
	benchCmd.AddCommand(benchScoreCmd)
	benchCmd.AddCommand(benchTrainCmd)
}

// buildScorer loads the config and wires the bundled hypothesis model.
func buildScorer(configPath string) (*score.PipelineScorer, *score.ScoreConfig, error) {
	cfg, err := score.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	scorer, err := score.NewPipelineScorer(cfg, score.NewHypothesisModel())
	if err != nil {
		return nil, nil, err
	}
	return scorer, cfg, nil
}

func runBenchRun(cmd *cobra.Command, args []string) error {
	log := logging.New("bench")

	scorer, cfg, err := buildScorer(benchRunFlags.config)
	if err != nil {
		return err
	}
	ds, err := bench.LoadDataset(args[0])
	if err != nil {
		return err
	}
	if err := bench.AsError(bench.Validate(ds, cfg)); err != nil {
		return err
	}

	log.Info("starting benchmark run",
		"samples", ds.Len(), "concurrency", benchRunFlags.concurrency)

	bar := newProgressBar(ds.Len(), "scoring")
	res, err := bench.RunAsync(cmd.Context(), ds, scorer,
		bench.Options{Concurrency: benchRunFlags.concurrency},
		func(bench.Progress) { _ = bar.Add(1) })
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr)

	renderBenchResult(os.Stdout, res, benchRunFlags.verbose)
	return nil
}

func runBenchValidate(_ *cobra.Command, args []string) error {
	ds, err := bench.LoadDataset(args[0])
	if err != nil {
		return err
	}

	var cfg *score.ScoreConfig
	if benchValidateFlags.config != "" {
		if cfg, err = score.LoadConfig(benchValidateFlags.config); err != nil {
			return err
		}
	}

	structural := bench.Validate(ds, nil)
	all := structural
	if cfg != nil {
		all = bench.Validate(ds, cfg)
	}

	if len(all) == 0 {
		fmt.Printf("dataset ok: %d samples\n", ds.Len())
		return nil
	}
	for _, ve := range all {
		fmt.Println(ve.Error())
	}
	if benchValidateFlags.strict {
		return bench.AsError(all)
	}
	// Config-dependent problems are advisory unless --strict.
	return bench.AsError(structural)
}

func runBenchCoverage(_ *cobra.Command, args []string) error {
	ds, err := bench.LoadDataset(args[0])
	if err != nil {
		return err
	}

	var universe []string
	if benchCoverageFlags.config != "" {
		cfg, err := score.LoadConfig(benchCoverageFlags.config)
		if err != nil {
			return err
		}
		universe = cfg.LabelUniverse()
	}

	renderCoverage(os.Stdout, bench.Coverage(ds, universe))
	return nil
}

func runBenchScore(cmd *cobra.Command, args []string) error {
	scorer, cfg, err := buildScorer(benchScoreFlags.config)
	if err != nil {
		return err
	}
	ds, err := bench.LoadDataset(args[0])
	if err != nil {
		return err
	}
	if err := bench.AsError(bench.Validate(ds, cfg)); err != nil {
		return err
	}

	bar := newProgressBar(ds.Len(), "exporting")
	export, err := bench.Export(cmd.Context(), ds, scorer,
		bench.Options{Concurrency: benchScoreFlags.concurrency},
		func(bench.Progress) { _ = bar.Add(1) })
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr)

	if err := export.Save(benchScoreFlags.output); err != nil {
		return err
	}
	fmt.Printf("wrote raw scores for %d samples to %s\n", len(export.Samples), benchScoreFlags.output)
	return nil
}

func runBenchTrain(_ *cobra.Command, args []string) error {
	export, err := bench.LoadExport(args[0])
	if err != nil {
		return err
	}

	result := platt.Train(export)
	if err := result.Save(benchTrainFlags.output); err != nil {
		return err
	}

	trained, skipped := 0, 0
	for _, stats := range result.Metadata.SamplesPerLabel {
		if stats.Skipped {
			skipped++
		} else {
			trained++
		}
	}
	fmt.Printf("trained %d labels (%d skipped) from %d samples, wrote %s\n",
		trained, skipped, result.Metadata.TotalSamples, benchTrainFlags.output)

	if benchTrainFlags.code {
		fmt.Println()
		fmt.Print(platt.GenerateCode(result))
	}
	return nil
}
