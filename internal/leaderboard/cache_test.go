package leaderboard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"overwatch-telegram-bot/internal/cache"
	"overwatch-telegram-bot/internal/types"
)

type fetchCall struct {
	Season string
	Rank   types.Rank
}

// fakeFetcher records calls and answers with a snapshot tagged by the query.
type fakeFetcher struct {
	mu    sync.Mutex
	calls []fetchCall
	err   error
}

func (f *fakeFetcher) FetchLeaderboard(_ context.Context, season string, rank types.Rank) ([]types.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fetchCall{Season: season, Rank: rank})
	if f.err != nil {
		return nil, f.err
	}
	return []types.LeaderboardEntry{
		{HeroID: "ana", SelectionRatio: 10, Date: Key(season, rank)},
	}, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type failingStore struct{}

func (failingStore) Get(context.Context, string, string) ([]byte, bool, error) {
	return nil, false, errors.New("store down")
}

func (failingStore) Set(context.Context, string, string, []byte, time.Duration) error {
	return errors.New("store down")
}

func TestKey(t *testing.T) {
	assert.Equal(t, "24", Key("24", ""))
	assert.Equal(t, "24:gold", Key("24", types.RankGold))
}

func TestCache_ServesWithinTTLAndRefetchesAfter(t *testing.T) {
	now := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	store := cache.NewMemoryStoreWithClock(func() time.Time { return now })
	fetcher := &fakeFetcher{}
	c := New(fetcher, store, 12*time.Hour)
	ctx := context.Background()

	first, err := c.Get(ctx, "24", types.RankGold)
	require.NoError(t, err)

	now = now.Add(11 * time.Hour)
	second, err := c.Get(ctx, "24", types.RankGold)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetcher.callCount())

	now = now.Add(2 * time.Hour)
	_, err = c.Get(ctx, "24", types.RankGold)
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.callCount())
}

func TestCache_KeySeparation(t *testing.T) {
	fetcher := &fakeFetcher{}
	c := New(fetcher, cache.NewMemoryStore(), time.Hour)
	ctx := context.Background()

	all, err := c.Get(ctx, "24", "")
	require.NoError(t, err)
	gold, err := c.Get(ctx, "24", types.RankGold)
	require.NoError(t, err)

	assert.Equal(t, "24", all[0].Date)
	assert.Equal(t, "24:gold", gold[0].Date)
	assert.Equal(t, []fetchCall{{Season: "24"}, {Season: "24", Rank: types.RankGold}}, fetcher.calls)

	all, err = c.Get(ctx, "24", "")
	require.NoError(t, err)
	assert.Equal(t, "24", all[0].Date)
	assert.Equal(t, 2, fetcher.callCount())
}

func TestCache_FailureIsNotCached(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("boom")}
	c := New(fetcher, cache.NewMemoryStore(), time.Hour)
	ctx := context.Background()

	_, err := c.Get(ctx, "24", "")
	require.Error(t, err)

	fetcher.err = nil
	entries, err := c.Get(ctx, "24", "")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 2, fetcher.callCount())
}

func TestCache_StoreFailureFallsBackToUpstream(t *testing.T) {
	fetcher := &fakeFetcher{}
	c := New(fetcher, failingStore{}, time.Hour)

	entries, err := c.Get(context.Background(), "24", types.RankSilver)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 1, fetcher.callCount())
}

func TestCache_DiscardsUndecodableValue(t *testing.T) {
	store := cache.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), Table, "24", []byte{0xc1}, time.Hour))

	fetcher := &fakeFetcher{}
	c := New(fetcher, store, time.Hour)

	entries, err := c.Get(context.Background(), "24", "")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 1, fetcher.callCount())
}
