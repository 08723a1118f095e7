// Package cli implements the run-evaluator command line interface.
package cli

import (
	"time"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagPort           int
	flagDriver         string
	flagStartupTimeout time.Duration
	flagVerbose        bool
)

var rootCmd = &cobra.Command{
	Use:   "run-evaluator [flags] <book-directory> <violations-file> [extra-options...]",
	Short: "Evaluate rendered book slides with mdbook-slide-evaluator",
	Long: `Provisions a chromedriver binary, starts a chromedriver server and a
headless browser session, then runs mdbook-slide-evaluator against the
rendered HTML pages in the book directory.

Every token after the first two positional arguments is forwarded verbatim
to the evaluator, so evaluator flags can be appended directly:

  run-evaluator book/html violations.csv --violations-only --screenshot-dir shots

The violations file and the book directory are resolved to absolute paths
before they are handed to the evaluator. The process exits with the
evaluator's own exit code.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runRoot,
}

func init() {
	// Stop flag parsing at the first positional so evaluator options like
	// --strict are forwarded instead of being rejected as unknown flags.
	rootCmd.Flags().SetInterspersed(false)
	rootCmd.Flags().IntVar(&flagPort, "port", 4444, "port the chromedriver server listens on")
	rootCmd.Flags().StringVar(&flagDriver, "driver", "", "path to an existing chromedriver binary (skips provisioning)")
	rootCmd.Flags().DurationVar(&flagStartupTimeout, "startup-timeout", 20*time.Second, "how long to wait for chromedriver to accept connections")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
