package eventstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func record(id string, started time.Time, outcome string) *BuildRecord {
	return &BuildRecord{
		BuildID:  id,
		Started:  started,
		Finished: started.Add(2 * time.Second),
		Outcome:  outcome,
		Posts:    3,
		Rendered: 7,
		Report:   []byte(`{"build_id":"` + id + `"}`),
	}
}

func TestSQLiteStore_RecordAndGet(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	started := time.Now().Truncate(time.Millisecond)
	require.NoError(t, store.Record(ctx, record("b1", started, "success")))

	rec, err := store.Get(ctx, "b1")
	require.NoError(t, err)
	require.Equal(t, "b1", rec.BuildID)
	require.Equal(t, "success", rec.Outcome)
	require.Equal(t, 3, rec.Posts)
	require.True(t, rec.Started.Equal(started))
	require.Equal(t, 2*time.Second, rec.Duration())
	require.JSONEq(t, `{"build_id":"b1"}`, string(rec.Report))
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_ListRecentNewestFirst(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, store.Record(ctx, record(id, base.Add(time.Duration(i)*time.Minute), "success")))
	}

	recs, err := store.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, "new", recs[0].BuildID)
	require.Equal(t, "mid", recs[1].BuildID)
}

func TestSQLiteStore_DuplicateBuildIDRejected(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Record(ctx, record("dup", time.Now(), "success")))
	require.Error(t, store.Record(ctx, record("dup", time.Now(), "failed")))
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Record(context.Background(), record("b1", time.Now(), "warning")))
	require.NoError(t, store.Close())

	store, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	recs, err := store.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "warning", recs[0].Outcome)
}
