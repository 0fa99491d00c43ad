package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"loom/internal/errs"
	"loom/internal/score"
)

var classifyFlags struct {
	config string
}

var classifyCmd = &cobra.Command{
	Use:   "classify <text>",
	Short: "Score a single text and print the decision as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

func init() {
	classifyCmd.Flags().StringVar(&classifyFlags.config, "config", "", "Score config path (required)")
	_ = classifyCmd.MarkFlagRequired("config")
}

// classifyOutput is the stable JSON shape printed by `loom classify`.
type classifyOutput struct {
	Decision  score.Decision      `json:"decision"`
	Score     float32             `json:"score"`
	Threshold float32             `json:"threshold"`
	Detected  []string            `json:"detected_labels"`
	Labels    []score.LabelDetail `json:"labels"`
}

func runClassify(_ *cobra.Command, args []string) error {
	scorer, _, err := buildScorer(classifyFlags.config)
	if err != nil {
		return err
	}

	out, err := scorer.Score(args[0])
	if err != nil {
		return err
	}
	res, ok := out.(*score.Result)
	if !ok {
		return errs.New(errs.Internal, "unexpected scorer output %T", out)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(classifyOutput{
		Decision:  res.Decision(),
		Score:     res.Score(),
		Threshold: res.Threshold(),
		Detected:  res.DetectedLabels(),
		Labels:    res.Details(),
	}); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
