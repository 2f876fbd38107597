package main

import (
	"flag"
	"log"
	"time"

	"snowstack/internal/compositor"
	"snowstack/internal/config"
	"snowstack/internal/logger"
	"snowstack/internal/manifest"
	"snowstack/internal/notify"
	"snowstack/internal/renderer"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	start := time.Now()
	run := manifest.New()
	logger.Info("Starting pipeline run %s (input: %s)", run.RunID, cfg.Input.DataDir)

	// Stage 1: stack per-month band files into multi-band rasters.
	comp := compositor.New(cfg.Input.DataDir, cfg.Results.StackDir, cfg.BandFilenames())
	stackResults, err := comp.Run()
	if err != nil {
		logger.Fatal("Band compositor failed: %v", err)
	}
	for _, res := range stackResults {
		entry := manifest.MonthEntry{
			Month:        res.Month,
			Status:       manifest.StatusStacked,
			StackPath:    res.StackPath,
			BandStats:    res.BandStats,
			MissingBands: res.MissingBands,
		}
		if res.Skipped {
			entry.Status = manifest.StatusSkipped
			entry.Reason = res.Reason
		}
		run.SetMonth(entry)
	}

	// Stage 2: derive the two composites from each stack. Runs strictly
	// after stage 1; the hand-off is the stack directory on disk.
	rend := renderer.New(
		cfg.Results.StackDir,
		cfg.Results.TrueColorDir,
		cfg.Results.FalseColorDir,
		cfg.Render.BrightnessFactor,
		cfg.Render.Gamma,
	)
	renderResults, err := rend.Run()
	if err != nil {
		logger.Fatal("Composite renderer failed: %v", err)
	}
	for _, res := range renderResults {
		entry, ok := run.Month(res.Month)
		if !ok {
			// Stack file from an earlier run; still record the render.
			entry = manifest.MonthEntry{Month: res.Month}
		}
		if res.Failed {
			entry.Status = manifest.StatusRenderFailed
			entry.Reason = res.Reason
		} else {
			entry.Status = manifest.StatusRendered
			entry.TrueColorPath = res.TrueColorPath
			entry.FalseColorPath = res.FalseColorPath
		}
		run.SetMonth(entry)
	}

	if err := run.Save(cfg.Results.ManifestPath); err != nil {
		logger.Error("Failed to save run manifest: %v", err)
	} else {
		logger.Info("Run manifest saved to %s", cfg.Results.ManifestPath)
	}

	if cfg.Notify.Enabled {
		client, err := notify.NewClient(cfg.Notify.BotToken, cfg.Notify.ChatID, cfg.Notify.MaxRetries, cfg.Notify.RetryDelayBase)
		if err != nil {
			logger.Warn("Failed to initialize notifier: %v", err)
		} else if err := client.SendSummary(run); err != nil {
			logger.Warn("Failed to send run summary: %v", err)
		}
	}

	counts := run.Counts()
	logger.Info("Processing complete in %v: %d rendered, %d skipped, %d failed",
		time.Since(start).Round(time.Millisecond),
		counts[manifest.StatusRendered],
		counts[manifest.StatusSkipped],
		counts[manifest.StatusRenderFailed])
}
