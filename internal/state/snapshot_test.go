package state

import (
	"context"
	"testing"
	"time"

	"github.com/adaptivex/sectorbot/internal/core"
	"github.com/adaptivex/sectorbot/internal/storage/archive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	fs, err := archive.NewLocalFS(t.TempDir())
	require.NoError(t, err)
	return NewStore(fs)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	positions := []Position{
		{
			Ticker:     "MSTR",
			Parent:     "BTC-USD",
			Category:   "crypto",
			EntryDate:  time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
			EntryPrice: 1250.50,
			EntrySBI:   9,
			Weight:     2.0,
			Shares:     1.5,
		},
		{Ticker: "NEM", Parent: "GLD", Category: "metals", EntrySBI: 10, Weight: 1.0, Shares: 12},
	}
	require.NoError(t, store.Save(ctx, positions))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, loaded.SavedAt.IsZero())
	require.Len(t, loaded.Positions, 2)
	assert.Equal(t, positions[0], loaded.Positions[0])
	assert.Equal(t, "NEM", loaded.Positions[1].Ticker)
}

func TestStore_LoadMissing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, core.ErrSnapshotNotFound)
}

func TestStore_Clear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []Position{{Ticker: "MSTR"}}))
	require.NoError(t, store.Clear(ctx))

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, core.ErrSnapshotNotFound)

	// clearing an already-empty store is fine
	assert.NoError(t, store.Clear(ctx))
}
