package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PD_INPUT_DIR", "PD_SYNTHESIZED_DIR", "PD_SAVE_DIR", "PD_MODEL_PATH",
		"PD_FRAMES", "PD_RESOLUTION", "PD_BACKEND", "PD_WORKERS",
		"PD_DATABASE", "PD_OUTPUT_LAYERS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	require.NoError(t, err)
	require.Equal(t, 1, cfg.FirstFrame)
	require.Equal(t, 1850, cfg.LastFrame)
	require.Equal(t, "cpu", cfg.Backend)
	require.Equal(t, 1, cfg.Workers)
	require.Zero(t, cfg.OutputWidth)
	require.Zero(t, cfg.OutputHeight)
	require.Empty(t, cfg.OutputLayers)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("PD_INPUT_DIR", "/data/in")
	t.Setenv("PD_FRAMES", "10-20")
	t.Setenv("PD_RESOLUTION", "832x320")
	t.Setenv("PD_WORKERS", "4")

	cfg, err := Load(nil)
	require.NoError(t, err)
	require.Equal(t, "/data/in", cfg.InputDir)
	require.Equal(t, 10, cfg.FirstFrame)
	require.Equal(t, 20, cfg.LastFrame)
	require.Equal(t, 832, cfg.OutputWidth)
	require.Equal(t, 320, cfg.OutputHeight)
	require.Equal(t, 4, cfg.Workers)
}

func TestLoadArgsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PD_INPUT_DIR", "/env/in")
	t.Setenv("PD_BACKEND", "cpu")

	cfg, err := Load(map[string]string{
		"input":   "/flag/in",
		"backend": "cuda",
		"frames":  "5-9",
		"layers":  "relu, layer1 ,layer2",
		"debug":   "true",
	})
	require.NoError(t, err)
	require.Equal(t, "/flag/in", cfg.InputDir)
	require.Equal(t, "cuda", cfg.Backend)
	require.Equal(t, 5, cfg.FirstFrame)
	require.Equal(t, 9, cfg.LastFrame)
	require.Equal(t, []string{"relu", "layer1", "layer2"}, cfg.OutputLayers)
	require.True(t, cfg.Debug)
}

func TestLoadRejectsBadFrameRange(t *testing.T) {
	clearEnv(t)

	_, err := Load(map[string]string{"frames": "20-10"})
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(map[string]string{
		"input":       "/data/in",
		"synthesized": "/data/synth",
		"save":        "/data/save",
		"model":       "/models/resnet18.onnx",
	})
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	cfg.ModelPath = ""
	require.Error(t, cfg.Validate())

	cfg.ModelPath = "/models/resnet18.onnx"
	cfg.Backend = "tpu"
	require.Error(t, cfg.Validate())

	cfg.Backend = "cpu"
	cfg.Workers = 0
	require.Error(t, cfg.Validate())
}
