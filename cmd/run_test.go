package cmd

import (
	"testing"

	"alertsmoke/internal/smoke"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuitesForMode(t *testing.T) {
	tests := []struct {
		mode string
		want []smoke.Suite
	}{
		{"all", []smoke.Suite{smoke.SuiteFast, smoke.SuiteSlow}},
		{"fast", []smoke.Suite{smoke.SuiteFast}},
		{"slow", []smoke.Suite{smoke.SuiteSlow}},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			suites, err := suitesForMode(tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tt.want, suites)
		})
	}
}

func TestSuitesForModeInvalid(t *testing.T) {
	_, err := suitesForMode("nightly")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nightly")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCodeSuccess, getExitCode(nil))
	assert.Equal(t, ExitCodeError, getExitCode(assert.AnError))
	assert.Equal(t, ExitCodeSetupFailed, getExitCode(&smoke.SetupError{Err: assert.AnError}))
}
