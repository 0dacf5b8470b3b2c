package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Niffl3rReturns/n3r-sdk/db"
	"github.com/Niffl3rReturns/n3r-sdk/internal/cache"
	"github.com/Niffl3rReturns/n3r-sdk/internal/pool"
	"github.com/Niffl3rReturns/n3r-sdk/internal/processor"
	"github.com/Niffl3rReturns/n3r-sdk/internal/stats"
)

// stubSource is a drawSource whose reconciled range can change between polls.
type stubSource struct {
	id  string
	ids []uint32
}

func (s *stubSource) ID() string { return s.id }

func (s *stubSource) GetValidDrawIDs(_ context.Context) []uint32 { return s.ids }

func newTestWatcher(t *testing.T) (*Watcher, db.DB) {
	t.Helper()

	logg := slog.Default()

	drawDB, err := db.New(db.DBOpts{
		Logg:   logg,
		DBType: db.DBTypeBolt,
		Path:   filepath.Join(t.TempDir(), "watcher_db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, drawDB.Close())
	})

	drawCache, err := cache.New(cache.CacheOpts{
		CacheType: cache.CacheTypeInternal,
		Logg:      logg,
	})
	require.NoError(t, err)

	workerPool := pool.New(pool.PoolOpts{
		Logg:        logg,
		WorkerCount: 1,
		Processor: processor.NewProcessor(processor.ProcessorOpts{
			Cache: drawCache,
			DB:    drawDB,
			Logg:  logg,
		}),
	})
	t.Cleanup(workerPool.Stop)

	w := &Watcher{
		db:     drawDB,
		logg:   logg,
		pool:   workerPool,
		stats:  stats.New(stats.StatsOpts{Cache: drawCache, Logg: logg, Pool: workerPool}),
		stopCh: make(chan struct{}),
	}
	return w, drawDB
}

func TestPollInitializesLowerBoundWhenDrawsAppear(t *testing.T) {
	w, drawDB := newTestWatcher(t)
	source := &stubSource{id: "0x00000000000000000000000000000000000000Aa-1"}

	// Empty buffers at startup leave both bounds unset.
	require.NoError(t, w.poll(context.Background(), source))
	lower, err := drawDB.GetLowerBound(source.id)
	require.NoError(t, err)
	require.Zero(t, lower)

	// Draws later reconciled on both buffers arm the lower bound so the
	// backfill gap scan covers this distributor.
	source.ids = []uint32{3, 4, 5}
	require.NoError(t, w.poll(context.Background(), source))

	lower, err = drawDB.GetLowerBound(source.id)
	require.NoError(t, err)
	require.Equal(t, uint32(3), lower)

	upper, err := drawDB.GetUpperBound(source.id)
	require.NoError(t, err)
	require.Equal(t, uint32(5), upper)
}

func TestPollKeepsExistingLowerBound(t *testing.T) {
	w, drawDB := newTestWatcher(t)
	source := &stubSource{
		id:  "0x00000000000000000000000000000000000000Aa-1",
		ids: []uint32{3, 4, 5},
	}
	require.NoError(t, drawDB.SetLowerBound(source.id, 2))

	require.NoError(t, w.poll(context.Background(), source))

	lower, err := drawDB.GetLowerBound(source.id)
	require.NoError(t, err)
	require.Equal(t, uint32(2), lower)
}
