package evaluator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/michael-kerscher/run-evaluator/internal/logger"
)

// ExitError reports that the evaluator ran to completion but exited with a
// non-zero code. The caller is expected to propagate Code as its own exit
// status.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("evaluator exited with code %d", e.Code)
}

// Run executes the evaluator argv with inherited standard streams and waits
// for it to finish. A non-zero exit code is returned as *ExitError; any
// other failure (binary not found, start failure) is returned wrapped.
func Run(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return errors.New("empty evaluator command")
	}
	logger.Debug("running: %s", strings.Join(argv, " "))

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("run evaluator: %w", err)
	}
	return nil
}
