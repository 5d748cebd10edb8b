package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ParseArguments converts command-line arguments into a map of flags and values
func ParseArguments() map[string]string {
	args := make(map[string]string)

	// First, identify the command (run/stats)
	command := ""
	commandIndex := -1
	for i := 1; i < len(os.Args); i++ {
		if os.Args[i] == "run" || os.Args[i] == "stats" {
			command = os.Args[i]
			commandIndex = i
			break
		}
	}

	if command != "" {
		args["command"] = command
	}

	// Process all arguments, skipping the command
	for i := 1; i < len(os.Args); i++ {
		if i == commandIndex {
			continue
		}

		arg := os.Args[i]

		// Handle flags with equals sign (--key=value)
		if strings.HasPrefix(arg, "--") && strings.Contains(arg, "=") {
			parts := strings.SplitN(arg, "=", 2)
			flagName := strings.TrimPrefix(parts[0], "--")
			args[flagName] = parts[1]
			continue
		}

		// Handle flags without equals sign (--key value)
		if strings.HasPrefix(arg, "--") {
			flagName := strings.TrimPrefix(arg, "--")

			// Check if this is a boolean flag (no value)
			if i+1 >= len(os.Args) || strings.HasPrefix(os.Args[i+1], "--") {
				args[flagName] = "true"
			} else {
				// The next argument is the value
				args[flagName] = os.Args[i+1]
				i++ // Skip the value in the next iteration
			}
		}
	}

	return args
}

// GetDefaultDatabasePath returns the default path for the score index file
func GetDefaultDatabasePath() string {
	// Get the executable path
	exePath, err := os.Executable()
	if err != nil {
		// Fallback to current directory if executable path can't be determined
		return "scores.db"
	}

	// Return the default database path next to the executable
	return filepath.Join(filepath.Dir(exePath), "scores.db")
}

// ParseFrameRange parses a "first-last" frame range, e.g. "1-1850".
// Both ends are inclusive.
func ParseFrameRange(rangeStr string) (first, last int, err error) {
	parts := strings.SplitN(rangeStr, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid frame range %q, expected FIRST-LAST", rangeStr)
	}

	first, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid first frame in range %q", rangeStr)
	}
	last, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid last frame in range %q", rangeStr)
	}

	if first < 1 || last < first {
		return 0, 0, fmt.Errorf("invalid frame range %d-%d", first, last)
	}

	return first, last, nil
}

// ParseResolution parses a "WIDTHxHEIGHT" resolution, e.g. "832x320".
func ParseResolution(resStr string) (width, height int, err error) {
	parts := strings.SplitN(strings.ToLower(resStr), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid resolution %q, expected WIDTHxHEIGHT", resStr)
	}

	width, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid width in resolution %q", resStr)
	}
	height, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid height in resolution %q", resStr)
	}

	if width < 1 || height < 1 {
		return 0, 0, fmt.Errorf("invalid resolution %dx%d", width, height)
	}

	return width, height, nil
}

// PrintUsage outputs the command-line usage instructions
func PrintUsage() {
	fmt.Printf("Usage:\n")
	fmt.Printf("  %s run --input=PATH --synthesized=PATH --save=PATH --model=PATH [options]\n", os.Args[0])
	fmt.Printf("  %s stats [--database=PATH] [--top=N]\n", os.Args[0])
	fmt.Printf("\nParameters:\n")
	fmt.Printf("  --input       : Directory containing the original frames (frame_<N>.png)\n")
	fmt.Printf("  --synthesized : Directory containing the synthesized frames (frame_<N>.png)\n")
	fmt.Printf("  --save        : Directory for the rendered heatmaps\n")
	fmt.Printf("  --model       : Path to the ResNet-18 ONNX export\n")
	fmt.Printf("  --frames      : Inclusive frame range, FIRST-LAST (default: 1-1850)\n")
	fmt.Printf("  --resolution  : Output resolution WIDTHxHEIGHT (default: original frame size)\n")
	fmt.Printf("  --backend     : DNN backend, cpu or cuda (default: cpu)\n")
	fmt.Printf("  --workers     : Number of parallel workers, one extractor each (default: 1)\n")
	fmt.Printf("  --database    : Path to the score index (default: %s)\n", GetDefaultDatabasePath())
	fmt.Printf("  --top         : Number of frames to list for stats (default: 5)\n")
	fmt.Printf("  --debug       : Enable debug mode (logs detailed information)\n")
	fmt.Printf("  --logfile     : Custom log file path (default: perceptualdiff.log)\n")
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  %s run --input=/data/rgb_in --synthesized=/data/rgb_out --save=/data/scores \\\n", os.Args[0])
	fmt.Printf("      --model=resnet18.onnx --frames=1-1850 --resolution=832x320\n")
	fmt.Printf("  %s stats --database=/data/scores.db --top=10\n", os.Args[0])
}
