package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/michael-kerscher/run-evaluator/internal/cli"
	"github.com/michael-kerscher/run-evaluator/internal/evaluator"
)

func main() {
	if err := cli.Execute(); err != nil {
		// The evaluator's own exit status becomes ours.
		var exitErr *evaluator.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
