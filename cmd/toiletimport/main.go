// Command toiletimport refreshes the per-region toilet partitions from the
// public registry once and exits. Run it on a schedule against the postgres
// store the server reads. The memory and badger stores live inside the server
// process, so use POST /admin/toilets/import for those.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"nearbot/internal/app"
	"nearbot/internal/config"
	"nearbot/internal/logging"
	"nearbot/internal/observability"
	"nearbot/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := checkDriver(cfg.Store.Driver); err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, err := app.OpenStore(ctx, cfg.Store)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer kv.Close()

	metrics, err := observability.NewMetrics(nil)
	if err != nil {
		logger.Fatal("failed to register metrics", zap.Error(err))
	}

	importer := app.NewImporter(cfg, repository.NewStore(kv), logger, metrics)
	report, err := importer.Run(ctx)
	if err != nil {
		logger.Error("import failed", zap.Error(err))
		kv.Close()
		os.Exit(1)
	}
	logger.Info("import finished",
		zap.Int("fetched", report.Fetched),
		zap.Int("malformed", report.Malformed),
		zap.Int("unassigned", report.Unassigned),
		zap.Any("partitions", report.Partitions))
}

// checkDriver rejects stores that another process cannot write to while the
// server is running.
func checkDriver(driver string) error {
	switch driver {
	case "postgres":
		return nil
	case "badger":
		return errors.New("STORE_DRIVER=badger is locked by the running server; use POST /admin/toilets/import")
	case "", "memory":
		return errors.New("STORE_DRIVER=memory would discard the import; use POST /admin/toilets/import")
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", driver)
	}
}
