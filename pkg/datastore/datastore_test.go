package datastore

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	ds "github.com/ipfs/go-datastore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SINTEF/entities-service/internal/config"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	for _, cfg := range []config.StorageConfig{
		{Driver: "memory"},
		{Driver: "badger", Path: filepath.Join(t.TempDir(), "store")},
	} {
		t.Run(cfg.Driver, func(t *testing.T) {
			store, err := Open(cfg, discard())
			require.NoError(t, err)
			defer func() { assert.NoError(t, Close(store, discard())) }()

			require.NoError(t, Ping(ctx, store))

			key := ds.NewKey("/entities/_/0.1/Foo")
			batch, err := store.Batch(ctx)
			require.NoError(t, err)
			require.NoError(t, batch.Put(ctx, key, []byte(`{}`)))
			require.NoError(t, batch.Commit(ctx))

			got, err := store.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, []byte(`{}`), got)
		})
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(config.StorageConfig{Driver: "mongo"}, discard())
	assert.Error(t, err)
}
