// Package config resolves the pipeline configuration from defaults,
// environment variables (optionally a .env file) and command-line flags, in
// increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Ranch-o/World-Model-Anomaly-Detection-Autonomous-Driving/utils"
)

// Config holds every recognized option of the pipeline.
type Config struct {
	InputDir       string
	SynthesizedDir string
	SaveDir        string
	ModelPath      string
	FirstFrame     int
	LastFrame      int
	OutputWidth    int      // 0 means use the original frame resolution
	OutputHeight   int
	Backend        string
	Workers        int
	DBPath         string
	OutputLayers   []string // empty means the extractor defaults
	Debug          bool
	LogFile        string
}

// Load builds the configuration for a run. args is the parsed command-line
// flag map; pass nil to resolve from environment and defaults only.
func Load(args map[string]string) (*Config, error) {
	// Load .env file if present (ignore the error if there is none)
	_ = godotenv.Load()

	cfg := &Config{
		FirstFrame: 1,
		LastFrame:  1850,
		Backend:    "cpu",
		Workers:    1,
		DBPath:     utils.GetDefaultDatabasePath(),
		LogFile:    "perceptualdiff.log",
	}

	applyEnv(cfg)
	if err := applyArgs(cfg, args); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that everything a run needs is present.
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("input directory is required (--input or PD_INPUT_DIR)")
	}
	if c.SynthesizedDir == "" {
		return fmt.Errorf("synthesized directory is required (--synthesized or PD_SYNTHESIZED_DIR)")
	}
	if c.SaveDir == "" {
		return fmt.Errorf("save directory is required (--save or PD_SAVE_DIR)")
	}
	if c.ModelPath == "" {
		return fmt.Errorf("model path is required (--model or PD_MODEL_PATH)")
	}
	if c.FirstFrame < 1 || c.LastFrame < c.FirstFrame {
		return fmt.Errorf("invalid frame range %d-%d", c.FirstFrame, c.LastFrame)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Backend != "cpu" && c.Backend != "cuda" {
		return fmt.Errorf("unknown backend %q, expected cpu or cuda", c.Backend)
	}
	return nil
}

// applyEnv overlays PD_* environment variables onto the defaults.
func applyEnv(cfg *Config) {
	if v := os.Getenv("PD_INPUT_DIR"); v != "" {
		cfg.InputDir = v
	}
	if v := os.Getenv("PD_SYNTHESIZED_DIR"); v != "" {
		cfg.SynthesizedDir = v
	}
	if v := os.Getenv("PD_SAVE_DIR"); v != "" {
		cfg.SaveDir = v
	}
	if v := os.Getenv("PD_MODEL_PATH"); v != "" {
		cfg.ModelPath = v
	}
	if v := os.Getenv("PD_FRAMES"); v != "" {
		if first, last, err := utils.ParseFrameRange(v); err == nil {
			cfg.FirstFrame, cfg.LastFrame = first, last
		}
	}
	if v := os.Getenv("PD_RESOLUTION"); v != "" {
		if w, h, err := utils.ParseResolution(v); err == nil {
			cfg.OutputWidth, cfg.OutputHeight = w, h
		}
	}
	if v := os.Getenv("PD_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("PD_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("PD_DATABASE"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("PD_OUTPUT_LAYERS"); v != "" {
		cfg.OutputLayers = splitLayers(v)
	}
}

// applyArgs overlays parsed command-line flags, the highest precedence.
func applyArgs(cfg *Config, args map[string]string) error {
	if args == nil {
		return nil
	}

	if v, ok := args["input"]; ok && v != "" {
		cfg.InputDir = v
	}
	if v, ok := args["synthesized"]; ok && v != "" {
		cfg.SynthesizedDir = v
	}
	if v, ok := args["save"]; ok && v != "" {
		cfg.SaveDir = v
	}
	if v, ok := args["model"]; ok && v != "" {
		cfg.ModelPath = v
	}
	if v, ok := args["frames"]; ok && v != "" {
		first, last, err := utils.ParseFrameRange(v)
		if err != nil {
			return err
		}
		cfg.FirstFrame, cfg.LastFrame = first, last
	}
	if v, ok := args["resolution"]; ok && v != "" {
		w, h, err := utils.ParseResolution(v)
		if err != nil {
			return err
		}
		cfg.OutputWidth, cfg.OutputHeight = w, h
	}
	if v, ok := args["backend"]; ok && v != "" {
		cfg.Backend = v
	}
	if v, ok := args["workers"]; ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid workers value %q", v)
		}
		cfg.Workers = n
	}
	if v, ok := args["database"]; ok && v != "" {
		cfg.DBPath = v
	} else if v, ok := args["db"]; ok && v != "" {
		// Allow --db as an alias for --database
		cfg.DBPath = v
	}
	if v, ok := args["layers"]; ok && v != "" {
		cfg.OutputLayers = splitLayers(v)
	}
	if _, ok := args["debug"]; ok {
		cfg.Debug = true
	}
	if v, ok := args["logfile"]; ok && v != "" {
		cfg.LogFile = v
	}

	return nil
}

// splitLayers parses a comma-separated list of network output layer names.
func splitLayers(v string) []string {
	parts := strings.Split(v, ",")
	layers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			layers = append(layers, p)
		}
	}
	return layers
}
