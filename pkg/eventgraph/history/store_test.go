package history_test

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/randalmurphal/eventgraph/pkg/eventgraph/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storeFactory func(t *testing.T) history.Store

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func record(runID, graph string, offset time.Duration) history.Record {
	return history.Record{
		RunID:        runID,
		Graph:        graph,
		State:        "completed",
		StartedAt:    base.Add(offset),
		EndedAt:      base.Add(offset + 250*time.Millisecond),
		NodesInvoked: 4,
		PeakDepth:    3,
	}
}

func assertRecord(t *testing.T, want, got history.Record) {
	t.Helper()
	assert.Equal(t, want.RunID, got.RunID)
	assert.Equal(t, want.Graph, got.Graph)
	assert.Equal(t, want.State, got.State)
	assert.Equal(t, want.Reason, got.Reason)
	assert.Equal(t, want.Source, got.Source)
	assert.True(t, want.StartedAt.Equal(got.StartedAt), "started_at %v != %v", want.StartedAt, got.StartedAt)
	assert.True(t, want.EndedAt.Equal(got.EndedAt), "ended_at %v != %v", want.EndedAt, got.EndedAt)
	assert.Equal(t, want.NodesInvoked, got.NodesInvoked)
	assert.Equal(t, want.PeakDepth, got.PeakDepth)
}

// storeContractTest runs the same checks against every Store.
func storeContractTest(t *testing.T, name string, factory storeFactory) {
	t.Run(name+"/Save_and_Load", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		rec := record("run-1", "intro", 0)
		rec.State = "aborted"
		rec.Reason = "camera missing"
		rec.Source = "shake"
		require.NoError(t, store.Save(rec))

		loaded, err := store.Load("run-1")
		require.NoError(t, err)
		assertRecord(t, rec, loaded)
		assert.True(t, loaded.Aborted())
		assert.Equal(t, 250*time.Millisecond, loaded.Duration())
	})

	t.Run(name+"/Load_NotFound", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		_, err := store.Load("missing")
		assert.ErrorIs(t, err, history.ErrNotFound)
	})

	t.Run(name+"/Save_Overwrite", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		rec := record("run-1", "intro", 0)
		require.NoError(t, store.Save(rec))
		rec.NodesInvoked = 9
		require.NoError(t, store.Save(rec))

		loaded, err := store.Load("run-1")
		require.NoError(t, err)
		assert.Equal(t, 9, loaded.NodesInvoked)

		all, err := store.List("")
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run(name+"/List_ordered_and_filtered", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		require.NoError(t, store.Save(record("run-c", "intro", 2*time.Second)))
		require.NoError(t, store.Save(record("run-a", "intro", 0)))
		require.NoError(t, store.Save(record("run-b", "outro", time.Second)))

		all, err := store.List("")
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "run-a", all[0].RunID)
		assert.Equal(t, "run-b", all[1].RunID)
		assert.Equal(t, "run-c", all[2].RunID)

		intro, err := store.List("intro")
		require.NoError(t, err)
		require.Len(t, intro, 2)
		assert.Equal(t, "run-a", intro[0].RunID)
		assert.Equal(t, "run-c", intro[1].RunID)
	})

	t.Run(name+"/List_empty", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		records, err := store.List("nothing")
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run(name+"/Delete", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		require.NoError(t, store.Save(record("run-1", "intro", 0)))
		require.NoError(t, store.Delete("run-1"))
		require.NoError(t, store.Delete("run-1"), "deleting twice is not an error")

		_, err := store.Load("run-1")
		assert.ErrorIs(t, err, history.ErrNotFound)
	})

	t.Run(name+"/Closed", func(t *testing.T) {
		store := factory(t)
		require.NoError(t, store.Close())

		assert.ErrorIs(t, store.Save(record("run-1", "intro", 0)), history.ErrStoreClosed)
		_, err := store.Load("run-1")
		assert.ErrorIs(t, err, history.ErrStoreClosed)
		_, err = store.List("")
		assert.ErrorIs(t, err, history.ErrStoreClosed)
		assert.ErrorIs(t, store.Delete("run-1"), history.ErrStoreClosed)
	})

	t.Run(name+"/Concurrent", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				id := fmt.Sprintf("run-%d", i)
				assert.NoError(t, store.Save(record(id, "intro", time.Duration(i)*time.Second)))
				_, err := store.Load(id)
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		all, err := store.List("intro")
		require.NoError(t, err)
		assert.Len(t, all, 20)
	})
}

func TestMemoryStore(t *testing.T) {
	storeContractTest(t, "MemoryStore", func(t *testing.T) history.Store {
		return history.NewMemoryStore()
	})
}

func TestSQLiteStore(t *testing.T) {
	storeContractTest(t, "SQLiteStore", func(t *testing.T) history.Store {
		store, err := history.NewSQLiteStore(":memory:")
		require.NoError(t, err)
		return store
	})
}

func TestSQLiteStore_Persistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	store1, err := history.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	rec := record("run-1", "intro", 0)
	require.NoError(t, store1.Save(rec))
	require.NoError(t, store1.Close())

	store2, err := history.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store2.Close()

	loaded, err := store2.Load("run-1")
	require.NoError(t, err)
	assertRecord(t, rec, loaded)
}

func TestSQLiteStore_InvalidPath(t *testing.T) {
	_, err := history.NewSQLiteStore("/nonexistent/path/history.db")
	assert.Error(t, err)
}

func TestSQLiteStore_CloseIdempotent(t *testing.T) {
	store, err := history.NewSQLiteStore(":memory:")
	require.NoError(t, err)

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestMemoryStore_Len(t *testing.T) {
	store := history.NewMemoryStore()
	require.NoError(t, store.Save(record("run-1", "intro", 0)))
	require.NoError(t, store.Save(record("run-2", "intro", 0)))
	assert.Equal(t, 2, store.Len())
}

func TestRecord_MarshalRoundTrip(t *testing.T) {
	rec := record("run-1", "intro", 0)
	rec.Reason = "stop"

	data, err := rec.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"run_id":"run-1"`)
	assert.Contains(t, string(data), `"reason":"stop"`)

	back, err := history.Unmarshal(data)
	require.NoError(t, err)
	assertRecord(t, rec, back)

	_, err = history.Unmarshal([]byte("{"))
	assert.Error(t, err)
}
