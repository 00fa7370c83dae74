package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/overproofed/internal/cli"
)

func TestRun_Test(t *testing.T) {
	var out, errOut bytes.Buffer
	err := run(context.Background(), &out, &errOut, []string{"test", "../../internal/harness/testdata/scenarios/simple_loaf.cue"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "✓ simple_loaf")
}

func TestRun_UnknownCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	err := run(context.Background(), &out, &errOut, []string{"bake"})
	require.Error(t, err)
	assert.Equal(t, cli.ExitFailure, cli.GetExitCode(err))
}

func TestRun_MissingScenario(t *testing.T) {
	var out, errOut bytes.Buffer
	err := run(context.Background(), &out, &errOut, []string{"solve", "nope.yaml"})
	require.Error(t, err)
	assert.Equal(t, cli.ExitCommandError, cli.GetExitCode(err))
}

func TestReport(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOut  string
	}{
		{"nil", nil, cli.ExitSuccess, ""},
		{"plain error", errors.New("unknown command"), cli.ExitFailure, "unknown command\n"},
		{"unreported exit error", cli.WrapExitError(cli.ExitCommandError, "invalid configuration", errors.New("bad format")), cli.ExitCommandError, "invalid configuration: bad format\n"},
		{"reported exit error", &cli.ExitError{Code: cli.ExitCommandError, Message: "scenario not found", Reported: true}, cli.ExitCommandError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			assert.Equal(t, tt.wantCode, report(&buf, tt.err))
			assert.Equal(t, tt.wantOut, buf.String())
		})
	}
}

func TestRun_MissingScenarioPrintedOnce(t *testing.T) {
	var out, errOut bytes.Buffer
	err := run(context.Background(), &out, &errOut, []string{"solve", "nope.yaml"})
	require.Error(t, err)

	assert.Equal(t, 1, bytes.Count(out.Bytes(), []byte("scenario not found: nope.yaml")))

	var stderr bytes.Buffer
	assert.Equal(t, cli.ExitCommandError, report(&stderr, err))
	assert.Empty(t, stderr.String())
}
