package utils

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	old := os.Args
	os.Args = append([]string{"perceptualdiff"}, args...)
	t.Cleanup(func() { os.Args = old })
}

func TestParseArgumentsCommandAndFlags(t *testing.T) {
	withArgs(t, "run", "--input=/data/in", "--synthesized", "/data/out", "--debug")

	args := ParseArguments()
	require.Equal(t, "run", args["command"])
	require.Equal(t, "/data/in", args["input"])
	require.Equal(t, "/data/out", args["synthesized"])
	require.Equal(t, "true", args["debug"])
}

func TestParseArgumentsNoCommand(t *testing.T) {
	withArgs(t, "--input=/data/in")

	args := ParseArguments()
	_, hasCommand := args["command"]
	require.False(t, hasCommand)
}

func TestParseFrameRange(t *testing.T) {
	first, last, err := ParseFrameRange("1-1850")
	require.NoError(t, err)
	require.Equal(t, 1, first)
	require.Equal(t, 1850, last)

	first, last, err = ParseFrameRange(" 7 - 7 ")
	require.NoError(t, err)
	require.Equal(t, 7, first)
	require.Equal(t, 7, last)
}

func TestParseFrameRangeInvalid(t *testing.T) {
	for _, input := range []string{"", "5", "a-b", "10-5", "0-3"} {
		_, _, err := ParseFrameRange(input)
		require.Error(t, err, "input %q", input)
	}
}

func TestParseResolution(t *testing.T) {
	w, h, err := ParseResolution("832x320")
	require.NoError(t, err)
	require.Equal(t, 832, w)
	require.Equal(t, 320, h)

	w, h, err = ParseResolution("1920X1080")
	require.NoError(t, err)
	require.Equal(t, 1920, w)
	require.Equal(t, 1080, h)
}

func TestParseResolutionInvalid(t *testing.T) {
	for _, input := range []string{"", "832", "x320", "832x", "0x320", "-1x5"} {
		_, _, err := ParseResolution(input)
		require.Error(t, err, "input %q", input)
	}
}
