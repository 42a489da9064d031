package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/fitlife/internal/config"
	"github.com/claude/fitlife/internal/importer"
	"github.com/claude/fitlife/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	docPath := flag.String("path", "", "path to the FitLife JSON document to import (required)")
	serverURL := flag.String("server", "", "send the document to a running FitLife server instead of opening the store")
	dryRun := flag.Bool("dry-run", false, "validate and report counts without writing")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("fitlife-import", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *docPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: fitlife-import [-config config.yaml | -server URL] -path data.json [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode, nothing will be written")
	}

	var (
		stats *importer.Stats
		err   error
	)
	if *serverURL != "" {
		stats, err = upload(ctx, *serverURL, *docPath, *dryRun)
	} else {
		stats, err = importLocal(ctx, log, *configPath, *docPath, *dryRun)
	}
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(stats)
		os.Exit(1)
	}

	printStats(stats)
	log.Info("import complete")
}

func importLocal(ctx context.Context, log *slog.Logger, configPath, docPath string, dryRun bool) (*importer.Stats, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	backend, err := storage.OpenBackend(ctx, cfg.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	repo := storage.NewRepository(backend)
	defer repo.Close()
	log.Info("store opened", "driver", cfg.Store.Driver)

	return importer.New(repo, log, dryRun).ImportFile(ctx, docPath)
}

func upload(ctx context.Context, serverURL, docPath string, dryRun bool) (*importer.Stats, error) {
	doc, err := os.ReadFile(docPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", docPath, err)
	}
	return importer.NewClient(serverURL).Upload(ctx, doc, dryRun)
}

func printStats(stats *importer.Stats) {
	if stats == nil {
		return
	}
	fmt.Println()
	fmt.Println("=== Import Summary ===")
	row := func(name string, k importer.KindStats) {
		fmt.Printf("  %-10s received %5d   imported %5d   rejected %5d\n", name, k.Received, k.Imported, k.Rejected)
	}
	row("Users", stats.Users)
	row("Workouts", stats.Workouts)
	row("Meals", stats.Meals)
	row("Habits", stats.Habits)

	if len(stats.UndecodableWorkouts) > 0 {
		fmt.Printf("\n  Undecodable workouts (record index):\n")
		for _, i := range stats.UndecodableWorkouts {
			fmt.Printf("    - %d\n", i)
		}
	}
	if stats.DryRun {
		fmt.Println("\n  (dry run, nothing written)")
	}
	fmt.Println()
}
