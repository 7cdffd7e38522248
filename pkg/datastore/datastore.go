package datastore

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	ds "github.com/ipfs/go-datastore"
	dssync "github.com/ipfs/go-datastore/sync"
	badger4 "github.com/ipfs/go-ds-badger4"

	"github.com/SINTEF/entities-service/internal/config"
)

var healthKey = ds.NewKey("/_health")

// Open opens the document store selected by cfg.Driver
func Open(cfg config.StorageConfig, logger *slog.Logger) (ds.Batching, error) {
	var (
		store ds.Batching
		err   error
	)

	switch cfg.Driver {
	case "badger":
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
		opts := badger4.DefaultOptions
		store, err = badger4.NewDatastore(cfg.Path, &opts)
		if err != nil {
			return nil, fmt.Errorf("failed to open badger store: %w", err)
		}
	case "memory":
		store = NewMemory()
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}

	logger.Info("document store opened", "driver", cfg.Driver, "path", cfg.Path)
	return store, nil
}

// NewMemory returns an in-process store, safe for concurrent use
func NewMemory() ds.Batching {
	return dssync.MutexWrap(ds.NewMapDatastore())
}

// Ping checks that the store answers reads
func Ping(ctx context.Context, store ds.Datastore) error {
	if _, err := store.Has(ctx, healthKey); err != nil {
		return fmt.Errorf("document store unavailable: %w", err)
	}
	return nil
}

// Close flushes and closes the store
func Close(store ds.Datastore, logger *slog.Logger) error {
	if err := store.Close(); err != nil {
		logger.Error("failed to close document store", "error", err)
		return err
	}
	logger.Info("document store closed")
	return nil
}
