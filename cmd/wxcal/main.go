package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"wxcal/internal/config"
	appLog "wxcal/internal/log"
	"wxcal/internal/pipeline"
	"wxcal/internal/source"
	"wxcal/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	outDir     string
	listen     string
	serve      bool
	verbose    bool
}

func main() {
	appLog.Info("wxcal starting", "version", "1.0.0")

	flags := parseFlags()
	if flags.verbose {
		appLog.SetLevel(appLog.LevelDebug)
	}

	// A local .env is a development convenience; absence is fine.
	_ = godotenv.Load()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI overrides beat file and environment.
	if flags.outDir != "" {
		conf.OutputDir = flags.outDir
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"output_dir", conf.OutputDir,
		"locations", len(conf.ResolvedLocations()),
		"single_location", conf.SingleLocation(),
		"serve", flags.serve,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	runner := pipeline.New(conf, source.NewFetcher())

	if err := runner.Run(ctx); err != nil {
		appLog.Error("run failed", err)
		os.Exit(1)
	}

	if !flags.serve {
		appLog.Info("wxcal done")
		return
	}

	// Serve mode: periodic regeneration plus HTTP publication.
	sched := cron.New()
	if _, err := sched.AddFunc(conf.RefreshCron, func() {
		if err := runner.Run(ctx); err != nil {
			appLog.Error("scheduled run failed", err)
		}
	}); err != nil {
		appLog.Error("invalid refresh schedule", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	if err := web.Serve(ctx, conf); err != nil {
		appLog.Error("HTTP server failed", err)
		os.Exit(1)
	}
	appLog.Info("wxcal exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "config.yaml", "Path to config file (YAML or JSON)")
	flag.StringVar(&cfg.outDir, "out", "", "Output directory (overrides config if set)")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address for -serve (overrides config if set)")
	flag.BoolVar(&cfg.serve, "serve", false, "Keep running: refresh on schedule and serve calendars over HTTP")
	flag.BoolVar(&cfg.verbose, "v", false, "Enable debug logging")

	flag.Parse()

	return cfg
}
