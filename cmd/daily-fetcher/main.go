package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/agungatd/daily-data-fetcher/internal/config"
	"github.com/agungatd/daily-data-fetcher/internal/pipeline"
	"github.com/agungatd/daily-data-fetcher/internal/sink"
	"github.com/agungatd/daily-data-fetcher/internal/source"
)

// Version is set at build time via -ldflags "-X main.Version=..."
var Version = "dev"

func main() {
	var (
		cfgPath     = flag.String("config", "", "path to YAML config (optional)")
		envFile     = flag.String("env-file", ".env", "dotenv file loaded before reading the environment")
		sourceType  = flag.String("source", "", "source preset: nobel | publicapis | custom")
		category    = flag.String("category", "", "category to keep (case-insensitive by default)")
		output      = flag.String("output", "", "report output path")
		pushgateway = flag.String("pushgateway", "", "Prometheus Pushgateway URL")
		verbose     = flag.Bool("verbose", false, "enable verbose logging")
	)
	flag.Parse()

	log.Printf("daily-fetcher %s starting...", Version)

	// Silently ignore a missing .env
	_ = godotenv.Load(*envFile)

	cfg, err := config.Load(*cfgPath, config.Overrides{
		SourceType:  *sourceType,
		Category:    *category,
		OutputPath:  *output,
		Pushgateway: *pushgateway,
	})
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	src, err := source.NewFromConfig(cfg.Source)
	if err != nil {
		log.Fatalf("build source %q: %v", cfg.Source.Type, err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sinks := sink.FromConfig(ctx, cfg)
	for _, s := range sinks {
		log.Printf("configured sink: %s", s.Name())
	}

	runner := pipeline.NewRunner(
		pipeline.WithSource(src),
		pipeline.WithCategory(cfg.Category),
		pipeline.WithOutput(cfg.Output.Path, cfg.MetricsEnabled()),
		pipeline.WithMetricsNamespace(cfg.Push.Namespace),
		pipeline.WithSinks(sinks...),
		pipeline.WithVerbose(*verbose),
	)

	if _, err := runner.Run(ctx); err != nil {
		log.Printf("daily-fetcher failed: %v", err)
		cancel()
		os.Exit(1)
	}
	log.Println("data fetching process completed")
}
