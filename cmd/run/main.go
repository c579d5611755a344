package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/inventory-intel/internal/cache"
	"github.com/andresuchdata/inventory-intel/internal/config"
	"github.com/andresuchdata/inventory-intel/internal/export"
	"github.com/andresuchdata/inventory-intel/internal/ingest"
	"github.com/andresuchdata/inventory-intel/internal/service"
	"github.com/andresuchdata/inventory-intel/internal/storage"
	"github.com/andresuchdata/inventory-intel/internal/store"
	"github.com/andresuchdata/inventory-intel/pkg/logger"
)

func newAsOfFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "as-of",
		Usage:   "Reference date for the run (YYYY-MM-DD), defaults to today",
		EnvVars: []string{"RUN_AS_OF"},
	}
}

func resolveAsOf(c *cli.Context) (time.Time, error) {
	raw := c.String("as-of")
	if raw == "" {
		return time.Now(), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of %q, want YYYY-MM-DD", raw)
	}
	return t, nil
}

func runBatch(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	asOf, err := resolveAsOf(c)
	if err != nil {
		return err
	}

	dataDir := c.String("data-dir")
	if dataDir == "" {
		dataDir = cfg.App.DataDir
	}
	outputDir := c.String("output-dir")
	if outputDir == "" {
		outputDir = cfg.App.OutputDir
	}
	storePath := c.String("store")
	if storePath == "" {
		storePath = cfg.Store.Path
	}

	db, err := store.Open(storePath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer db.Close()

	reportCache, err := cache.NewReportCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("report cache unavailable, continuing without it")
		reportCache = cache.NewNoopReportCache()
	}

	runner := service.NewRunService(ingest.NewLoader(dataDir), db, reportCache)
	result, report, err := runner.Execute(c.Context, asOf)
	if err != nil {
		return err
	}

	if err := export.NewWriter(outputDir).WriteAll(result, report); err != nil {
		return fmt.Errorf("failed to export run results: %w", err)
	}

	logger.Log.Info().
		Str("store", storePath).
		Str("output_dir", outputDir).
		Int("items", len(result.Inventory)).
		Int("alerts", len(result.Alerts)).
		Msg("run exported")
	return nil
}

func fetchSnapshot(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	if !cfg.Storage.Enabled {
		return fmt.Errorf("object storage is not enabled, set STORAGE_ENABLED=true")
	}

	destDir := c.String("data-dir")
	if destDir == "" {
		destDir = cfg.App.DataDir
	}

	client, err := storage.NewS3Client(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize object storage: %w", err)
	}

	if err := storage.FetchSnapshot(c.Context, client, cfg.Storage.Prefix, destDir); err != nil {
		return fmt.Errorf("snapshot fetch failed: %w", err)
	}

	logger.Log.Info().Str("dest", destDir).Msg("snapshot downloaded")
	return nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "inventory-intel",
		Usage: "Batch inventory intelligence and restock planner",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Execute a full batch run over the snapshot directory",
				Flags: []cli.Flag{
					newAsOfFlag(),
					&cli.StringFlag{
						Name:    "data-dir",
						Usage:   "Directory containing the snapshot CSV files",
						EnvVars: []string{"APP_DATA_DIR"},
					},
					&cli.StringFlag{
						Name:    "output-dir",
						Usage:   "Directory the run results are exported to",
						EnvVars: []string{"APP_OUTPUT_DIR"},
					},
					&cli.StringFlag{
						Name:    "store",
						Usage:   "Path of the SQLite store file",
						EnvVars: []string{"STORE_PATH"},
					},
				},
				Action: runBatch,
			},
			{
				Name:  "fetch",
				Usage: "Download the latest snapshot CSVs from object storage",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "data-dir",
						Usage:   "Directory the snapshot files are written to",
						EnvVars: []string{"APP_DATA_DIR"},
					},
				},
				Action: fetchSnapshot,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
