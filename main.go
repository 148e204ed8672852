package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"icongen/config"
	"icongen/failures"
	"icongen/job"
	"icongen/logger"
	"icongen/rasterizer"
	"icongen/report"
	"icongen/success"
	"icongen/utils"
)

// historyRetention is how long run history is kept before cleanup
const historyRetention = 30 * 24 * time.Hour

func main() {
	os.Exit(run())
}

func run() int {
	setupLogging()
	defer logger.Close()

	// Dependency check happens before any job is attempted
	logger.Debug("Registering rasterizers")
	rasterizer.RegisterDefaults()
	name := config.GetRasterizer()
	rasterize, err := rasterizer.Require(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		logger.Errorf("Rasterizer check failed: %v", err)
		return 1
	}
	logger.Infof("Using rasterizer %s", name)

	dir, err := config.GetAssetsDir()
	if err != nil {
		logger.Errorf("Failed to resolve assets directory: %v", err)
		return 1
	}

	jobs, err := job.LoadJobs(config.GetManifestPath(dir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		logger.Errorf("Failed to load jobs: %v", err)
		return 1
	}

	runID, err := utils.NewRunID(time.Now())
	if err != nil {
		logger.Errorf("Failed to generate run ID: %v", err)
		return 1
	}
	logger.Debugf("Run ID %s", runID)

	openHistory()
	defer success.Close()
	defer failures.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("icongen: converting SVG assets to PNG (%s)\n", name)
	fmt.Printf("Directory: %s\n\n", dir)

	driver := &job.Driver{
		RunID:      runID,
		Dir:        dir,
		Rasterizer: name,
		Rasterize:  rasterize,
		Out:        os.Stdout,
	}
	summary := driver.Run(ctx, jobs)
	logHistory(runID)

	if targets := config.GetPublishTargets(); len(targets) > 0 {
		logger.Infof("Publishing to %v", targets)
		job.Publish(ctx, summary, targets)
	}

	job.PrintSummary(os.Stdout, dir, jobs, summary)
	writeReport(dir, summary)

	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("   1. Check the generated PNG files in the assets directory")
	fmt.Println("   2. Rebuild the app so the new icons and splash screen are picked up")

	if config.IsStrict() && summary.Failed() {
		logger.Warnf("Strict mode: run %s had failures", runID)
		return 2
	}
	return 0
}

func setupLogging() {
	level, ok := logger.ParseLevel(config.GetLogLevel())
	if !ok {
		level = logger.INFO
	}
	if file := config.GetLogFile(); file != "" {
		if err := logger.Init(file, true, level); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v\n", file, err)
			logger.SetLevel(level)
		}
	} else {
		logger.SetLevel(level)
	}
	if !ok {
		logger.Warnf("Unknown log level %q, using info", config.GetLogLevel())
	}
}

// openHistory opens the run history stores when a data directory is configured.
// History is optional; failures here are logged and the run continues without it.
func openHistory() {
	dataDir := config.GetDataDir()
	if dataDir == "" {
		return
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		logger.Errorf("Failed to create data directory %s: %v", dataDir, err)
		return
	}

	logger.Debug("Initializing success database")
	if err := success.Init(config.GetSuccessDBPath()); err != nil {
		logger.Errorf("Failed to initialize success store: %v", err)
	} else if err := success.CheckHealth(); err != nil {
		logger.Warnf("Success store health check failed: %v", err)
	} else if n, err := success.CleanupOldRecords(historyRetention); err != nil {
		logger.Warnf("Success history cleanup failed: %v", err)
	} else if n > 0 {
		logger.Infof("Removed %d old success records", n)
	}

	logger.Debug("Initializing failures database")
	if err := failures.Init(config.GetFailuresDBPath()); err != nil {
		logger.Errorf("Failed to initialize failure store: %v", err)
	} else if n, err := failures.CleanupOldRecords(historyRetention); err != nil {
		logger.Warnf("Failure history cleanup failed: %v", err)
	} else if n > 0 {
		logger.Infof("Removed %d old failure records", n)
	}
}

func logHistory(runID string) {
	if success.Enabled() {
		if records, err := success.ListRun(runID); err != nil {
			logger.Warnf("Failed to read success history: %v", err)
		} else {
			logger.Debugf("Stored %d success records for run %s", len(records), runID)
		}
	}
	if failures.Enabled() {
		if n, err := failures.CountRun(runID); err != nil {
			logger.Warnf("Failed to read failure history: %v", err)
		} else {
			logger.Debugf("Stored %d failure records for run %s", n, runID)
		}
	}
}

// writeReport writes the JSON run report and, when a key is configured, its signed form
func writeReport(dir string, summary *job.Summary) {
	path := config.GetReportPath(dir)
	if path == "" {
		return
	}

	r := report.FromSummary(summary)
	if err := report.Write(path, r); err != nil {
		logger.Errorf("Failed to write run report: %v", err)
		return
	}
	logger.Infof("Run report written to %s", path)

	key := config.GetReportKey()
	if key == nil {
		return
	}
	signedPath := path + ".jws"
	if err := report.WriteSigned(signedPath, r, key); err != nil {
		if errors.Is(err, report.ErrKeyTooShort) {
			logger.Warnf("ICONGEN_REPORT_KEY must be at least %d bytes, signed report skipped", report.MinKeySize)
			return
		}
		logger.Errorf("Failed to write signed report: %v", err)
		return
	}
	logger.Infof("Signed run report written to %s", filepath.Base(signedPath))
}
