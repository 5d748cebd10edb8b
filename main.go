package main

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/Ranch-o/World-Model-Anomaly-Detection-Autonomous-Driving/config"
	"github.com/Ranch-o/World-Model-Anomaly-Detection-Autonomous-Driving/database"
	"github.com/Ranch-o/World-Model-Anomaly-Detection-Autonomous-Driving/extractor"
	"github.com/Ranch-o/World-Model-Anomaly-Detection-Autonomous-Driving/logging"
	"github.com/Ranch-o/World-Model-Anomaly-Detection-Autonomous-Driving/pipeline"
	"github.com/Ranch-o/World-Model-Anomaly-Detection-Autonomous-Driving/signalhandler"
	"github.com/Ranch-o/World-Model-Anomaly-Detection-Autonomous-Driving/utils"
)

func main() {
	// Set up proper signal handling
	signalhandler.SetupHandler()

	// Set the optimal number of CPUs to use
	runtime.GOMAXPROCS(signalhandler.GetOptimalProcs())

	// Parse command line arguments into a map
	args := utils.ParseArguments()

	// Get the command (run or stats)
	command, hasCommand := args["command"]
	if !hasCommand {
		utils.PrintUsage()
		os.Exit(1)
	}

	switch command {
	case "run":
		handleRunCommand(args)
	case "stats":
		handleStatsCommand(args)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		utils.PrintUsage()
		os.Exit(1)
	}
}

func handleRunCommand(args map[string]string) {
	// Resolve configuration: defaults, then environment, then flags
	cfg, err := config.Load(args)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		utils.PrintUsage()
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Setup debug logging if enabled
	if cfg.Debug {
		if err := logging.SetupLogger(cfg.LogFile); err != nil {
			fmt.Printf("Warning: Failed to setup logging: %v\n", err)
		} else {
			fmt.Printf("Debug mode enabled. Logging to: %s\n", cfg.LogFile)
			defer logging.CloseLogger()
		}
	}

	// Verify the frame directories exist before loading the model
	for _, dir := range []string{cfg.InputDir, cfg.SynthesizedDir} {
		info, err := os.Stat(dir)
		if err != nil {
			log.Fatalf("Cannot access frame directory: %s (%v)", dir, err)
		}
		if !info.IsDir() {
			log.Fatalf("Path is not a directory: %s", dir)
		}
	}

	// Open the score index
	db, err := database.InitDatabase(cfg.DBPath)
	if err != nil {
		log.Fatalf("Error initializing score index: %v", err)
	}
	defer db.Close()

	totalFrames := cfg.LastFrame - cfg.FirstFrame + 1
	fmt.Printf("Starting perceptual difference run...\n")
	fmt.Printf("Frames %d-%d (%d pairs), %d worker(s), %s backend\n",
		cfg.FirstFrame, cfg.LastFrame, totalFrames, cfg.Workers, cfg.Backend)
	fmt.Printf("Model: %s\n", cfg.ModelPath)
	fmt.Printf("Output: %s\n", cfg.SaveDir)

	// Each worker gets its own net handle over the same frozen weights
	factory := func() (pipeline.Extractor, error) {
		return extractor.NewResNetExtractor(extractor.Options{
			ModelPath:    cfg.ModelPath,
			Backend:      cfg.Backend,
			OutputLayers: cfg.OutputLayers,
		})
	}

	opts := pipeline.Options{
		InputDir:       cfg.InputDir,
		SynthesizedDir: cfg.SynthesizedDir,
		SaveDir:        cfg.SaveDir,
		FirstFrame:     cfg.FirstFrame,
		LastFrame:      cfg.LastFrame,
		OutputWidth:    cfg.OutputWidth,
		OutputHeight:   cfg.OutputHeight,
		Workers:        cfg.Workers,
		DebugMode:      cfg.Debug,
	}

	summary, err := pipeline.Run(db, opts, factory)
	if err != nil {
		log.Fatalf("Error running pipeline: %v", err)
	}

	fmt.Println("\nRun complete.")
	fmt.Printf("Processed %d pairs in %v.\n", summary.Processed, summary.Elapsed.Round(time.Second))
	if summary.Skipped > 0 {
		fmt.Printf("Skipped %d pairs with missing or unreadable frames.\n", summary.Skipped)
	}
	if summary.Errors > 0 {
		fmt.Printf("Encountered %d errors during the run.\n", summary.Errors)
		fmt.Println("Check the log file for details.")
	}

	// Print summary statistics from the score index
	stats, err := database.GetRunStats(db)
	if err == nil && stats != nil && stats.TotalFrames > 0 {
		fmt.Printf("\nSummary:\n")
		fmt.Printf("- Frames indexed: %d\n", stats.TotalFrames)
		fmt.Printf("- Average mean score: %.4f\n", stats.AvgMeanScore)
		fmt.Printf("- Highest pixel score: %.4f\n", stats.MaxScore)
	}
}

func handleStatsCommand(args map[string]string) {
	dbPath := utils.GetDefaultDatabasePath()
	if v, ok := args["database"]; ok && v != "" {
		dbPath = v
	} else if v, ok := args["db"]; ok && v != "" {
		dbPath = v
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		log.Fatalf("Score index does not exist: %s. Run the pipeline first.", dbPath)
	}

	limit := 5
	if v, ok := args["top"]; ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			log.Fatalf("Invalid --top value: %s", v)
		}
		limit = n
	}

	db, err := database.OpenDatabase(dbPath)
	if err != nil {
		log.Fatalf("Error opening score index: %v", err)
	}
	defer db.Close()

	stats, err := database.GetRunStats(db)
	if err != nil {
		log.Fatalf("Error reading score index: %v", err)
	}

	fmt.Printf("Score index: %s\n", dbPath)
	fmt.Printf("Frames indexed: %d\n", stats.TotalFrames)
	if stats.TotalFrames == 0 {
		return
	}
	fmt.Printf("Average mean score: %.4f\n", stats.AvgMeanScore)
	fmt.Printf("Highest pixel score: %.4f\n", stats.MaxScore)

	frames, err := database.TopAnomalousFrames(db, limit)
	if err != nil {
		log.Fatalf("Error querying top frames: %v", err)
	}

	fmt.Printf("\nMost anomalous frames:\n")
	for i, f := range frames {
		fmt.Printf("%d. Frame %d (mean %.4f, p95 %.4f, max %.4f)\n",
			i+1, f.FrameNumber, f.MeanScore, f.P95Score, f.MaxScore)
		fmt.Printf("   Heatmap: %s\n", f.OutputPath)
	}
}
