package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCommand(args ...string) (stdout, stderr string, err error) {
	return executeCommandWithInput("", args...)
}

func executeCommandWithInput(input string, args ...string) (stdout, stderr string, err error) {
	cmd := NewRootCommand()
	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)
	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs(args)
	err = cmd.Execute()

	return outBuf.String(), errBuf.String(), err
}

// ---------------------------------------------------------------------------
// Help output
// ---------------------------------------------------------------------------

func TestRootCommand_Help(t *testing.T) {
	stdout, _, err := executeCommand("--help")
	require.NoError(t, err)

	for _, sub := range []string{"apply", "filters", "version", "completion"} {
		assert.Contains(t, stdout, sub, "help should mention %q subcommand", sub)
	}
}

func TestRootCommand_UnknownCommand(t *testing.T) {
	_, _, err := executeCommand("frobnicate")
	require.Error(t, err)
}

// ---------------------------------------------------------------------------
// Persistent flags
// ---------------------------------------------------------------------------

func TestRootCommand_InvalidLogLevel(t *testing.T) {
	_, _, err := executeCommand("--log-level", "bogus", "filters")
	require.Error(t, err)
}

func TestRootCommand_QuietSuppressesLogs(t *testing.T) {
	stdout, _, err := executeCommand("--quiet", "filters")
	require.NoError(t, err)

	assert.Contains(t, stdout, "lowercase")
}

func TestExitError(t *testing.T) {
	err := &ExitError{Code: 3}
	assert.Equal(t, "exit code 3", err.Error())

	wrapped := &ExitError{Code: 2, Err: assert.AnError}
	assert.Equal(t, assert.AnError.Error(), wrapped.Error())
	assert.ErrorIs(t, wrapped, assert.AnError)
}
