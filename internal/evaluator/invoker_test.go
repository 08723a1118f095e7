package evaluator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ZeroExit(t *testing.T) {
	err := Run(context.Background(), []string{"true"})
	assert.NoError(t, err)
}

func TestRun_NonZeroExitBecomesExitError(t *testing.T) {
	err := Run(context.Background(), []string{"sh", "-c", "exit 7"})

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 7, exitErr.Code)
}

func TestRun_BinaryNotFound(t *testing.T) {
	err := Run(context.Background(), []string{"definitely-not-a-real-binary-xyz"})

	require.Error(t, err)
	var exitErr *ExitError
	assert.False(t, errors.As(err, &exitErr), "launch failure is not an ExitError")
}

func TestRun_EmptyCommand(t *testing.T) {
	err := Run(context.Background(), nil)
	assert.Error(t, err)
}
