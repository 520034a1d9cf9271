package shell

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStreamsPrefixedOutput(t *testing.T) {
	var buf bytes.Buffer
	err := Run(context.Background(), &buf, "sh", "-c", "echo hello; echo world >&2")
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "sh: hello\n")
	assert.Contains(t, buf.String(), "sh: world\n")
}

func TestRunReturnsCommandFailure(t *testing.T) {
	var buf bytes.Buffer
	err := Run(context.Background(), &buf, "sh", "-c", "echo failing; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sh")
	assert.Contains(t, buf.String(), "sh: failing\n")
}

func TestRunEnvPassesVariables(t *testing.T) {
	var buf bytes.Buffer
	err := RunEnv(context.Background(), &buf, []string{"LIVEFORGE_TEST_VAR=42"}, "sh", "-c", "echo $LIVEFORGE_TEST_VAR")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "sh: 42\n")
}

// The final lines of a command's output must not be lost to the race
// between process exit and pipe draining.
func TestRunCapturesTrailingOutput(t *testing.T) {
	var buf bytes.Buffer
	err := Run(context.Background(), &buf, "sh", "-c", "seq 1 2000")
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "sh: 2000\n")
}

func TestRunMissingBinary(t *testing.T) {
	var buf bytes.Buffer
	err := Run(context.Background(), &buf, "definitely-not-a-real-binary-xyz")
	require.Error(t, err)
}
