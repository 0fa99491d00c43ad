// loom is the zero-shot classification harness CLI: benchmark runs, dataset
// validation and coverage, raw-score export, and Platt calibration training.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"loom/internal/errs"
	"loom/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	logLevel  string
	logFormat string
}

var rootCmd = &cobra.Command{
	Use:   "loom",
	Short: "Zero-shot text classification benchmark harness",
	Long: "Loom scores texts against declarative zero-shot label configs,\n" +
		"benchmarks scorer quality over labeled datasets, and fits Platt\n" +
		"calibration from exported raw scores.",
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(*cobra.Command, []string) error {
		// .env is optional; config resolution reads the environment after this.
		_ = godotenv.Load()
		level, err := logging.ParseLevel(rootFlags.logLevel)
		if err != nil {
			return err
		}
		logging.Init(level, rootFlags.logFormat)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format (text, json)")

	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps errors to the stable CLI contract: 2 for validation
// failures, 1 for everything else.
func exitCode(err error) int {
	if errs.CodeOf(err) == errs.Validate {
		return 2
	}
	return 1
}
