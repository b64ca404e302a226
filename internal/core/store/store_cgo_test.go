//go:build cgo

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/threadlens/threadlens/internal/config"
	"github.com/threadlens/threadlens/internal/core"
	"github.com/threadlens/threadlens/internal/core/reddit"
)

func openMemoryStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	st, err := Open(ctx, config.StoreConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.Migrate(ctx))
	return st
}

func TestCommunityCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := openMemoryStore(t)

	_, found, err := st.GetCommunity(ctx, "espresso")
	require.NoError(t, err)
	require.False(t, found)

	info := &reddit.CommunityInfo{
		Name:        "espresso",
		Subscribers: 250000,
		Description: "coffee talk",
	}
	require.NoError(t, st.PutCommunity(ctx, info, time.Hour))

	// Lookups are case-insensitive.
	got, found, err := st.GetCommunity(ctx, "Espresso")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 250000, got.Subscribers)
	require.Equal(t, "coffee talk", got.Description)
}

func TestCommunityCacheExpiry(t *testing.T) {
	ctx := context.Background()
	st := openMemoryStore(t)

	info := &reddit.CommunityInfo{Name: "stale", Subscribers: 10}

	// A non-positive TTL is a no-op, not an expired entry.
	require.NoError(t, st.PutCommunity(ctx, info, -time.Minute))
	_, found, err := st.GetCommunity(ctx, "stale")
	require.NoError(t, err)
	require.False(t, found)

	removed, err := st.PruneCommunities(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(0), removed)

	// Insert a live entry and age it past its expiry.
	require.NoError(t, st.PutCommunity(ctx, info, time.Hour))
	_, err = st.DB.ExecContext(ctx,
		`UPDATE community_cache SET expires_at = ? WHERE name = ?`,
		time.Now().UTC().Add(-time.Minute).Unix(), "stale")
	require.NoError(t, err)

	_, found, err = st.GetCommunity(ctx, "stale")
	require.NoError(t, err)
	require.False(t, found)

	removed, err = st.PruneCommunities(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)
}

func TestRunHistory(t *testing.T) {
	ctx := context.Background()
	st := openMemoryStore(t)

	report := &core.Report{
		Topic: "espresso machine leaking",
		Mode:  core.ModePain,
		Metadata: &core.SearchMetadata{
			RunID:               "run-1",
			PlanSource:          core.PlanSourceLLM,
			CommunitiesSearched: 12,
			ItemsCollected:      20,
			ElapsedSeconds:      48.2,
		},
	}
	require.NoError(t, st.RecordRun(ctx, report))

	records, err := st.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "run-1", records[0].ID)
	require.Equal(t, "pain", records[0].Mode)
	require.Equal(t, "llm", records[0].PlanSource)
	require.Equal(t, 20, records[0].Items)
}

func TestOpenRequiresPathOrURL(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{})
	require.Error(t, err)
}
