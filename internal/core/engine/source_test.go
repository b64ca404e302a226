package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/threadlens/threadlens/internal/core"
	"github.com/threadlens/threadlens/internal/core/reddit"
)

// searchCall records one SearchPosts invocation.
type searchCall struct {
	Community string
	Query     string
	Limit     int
}

// fakeSource is a scriptable Source. Unset function fields return nothing.
type fakeSource struct {
	searchPosts       func(query string, opts reddit.SearchOptions) []*core.ResultItem
	aboutCommunity    func(name string) (*reddit.CommunityInfo, bool)
	searchCommunities func(term string, limit int) []reddit.CommunityInfo
	topComments       func(community, id string, limit int) []core.Reply

	calls      []searchCall
	aboutCalls []string
}

func (f *fakeSource) SearchPosts(ctx context.Context, query string, opts reddit.SearchOptions) []*core.ResultItem {
	f.calls = append(f.calls, searchCall{Community: opts.Community, Query: query, Limit: opts.Limit})
	if f.searchPosts == nil {
		return nil
	}
	return f.searchPosts(query, opts)
}

func (f *fakeSource) AboutCommunity(ctx context.Context, name string) (*reddit.CommunityInfo, bool) {
	f.aboutCalls = append(f.aboutCalls, name)
	if f.aboutCommunity == nil {
		return nil, false
	}
	return f.aboutCommunity(name)
}

func (f *fakeSource) SearchCommunities(ctx context.Context, term string, limit int) []reddit.CommunityInfo {
	if f.searchCommunities == nil {
		return nil
	}
	return f.searchCommunities(term, limit)
}

func (f *fakeSource) TopComments(ctx context.Context, community, id string, limit int) []core.Reply {
	if f.topComments == nil {
		return nil
	}
	return f.topComments(community, id, limit)
}

// fakeCompleter returns a canned response or error.
type fakeCompleter struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func items(ids ...string) []*core.ResultItem {
	out := make([]*core.ResultItem, 0, len(ids))
	for _, id := range ids {
		out = append(out, &core.ResultItem{ID: id, Community: "c", Title: id, TopReplies: []core.Reply{}})
	}
	return out
}

func TestResolverMemoizesProbes(t *testing.T) {
	source := &fakeSource{
		aboutCommunity: func(name string) (*reddit.CommunityInfo, bool) {
			// The upstream about endpoint is case-insensitive and reports
			// the canonical casing.
			if strings.EqualFold(name, "espresso") {
				return &reddit.CommunityInfo{Name: "espresso", Subscribers: 1000}, true
			}
			return nil, false
		},
	}
	resolver := NewResolver(source, nil)

	for i := 0; i < 3; i++ {
		info, ok := resolver.About(context.Background(), "Espresso")
		require.True(t, ok, "probe %d", i)
		require.Equal(t, "espresso", info.Name)
	}
	// Case-insensitive key: one upstream probe despite three lookups.
	require.Equal(t, []string{"Espresso"}, source.aboutCalls)

	// Negative results are memoized too.
	for i := 0; i < 2; i++ {
		_, ok := resolver.About(context.Background(), "missing")
		require.False(t, ok)
	}
	require.Len(t, source.aboutCalls, 2)
}

func TestResolverConsultsPersistentCache(t *testing.T) {
	source := &fakeSource{}
	cache := &fakeCache{entries: map[string]*reddit.CommunityInfo{
		"espresso": {Name: "espresso", Subscribers: 42},
	}}
	resolver := NewResolver(source, cache)

	info, ok := resolver.About(context.Background(), "espresso")
	require.True(t, ok)
	require.Equal(t, 42, info.Subscribers)
	require.Empty(t, source.aboutCalls)
}

func TestResolverPopulatesPersistentCache(t *testing.T) {
	source := &fakeSource{
		aboutCommunity: func(name string) (*reddit.CommunityInfo, bool) {
			return &reddit.CommunityInfo{Name: name, Subscribers: 7}, true
		},
	}
	cache := &fakeCache{entries: map[string]*reddit.CommunityInfo{}}
	resolver := NewResolver(source, cache)

	_, ok := resolver.About(context.Background(), "homelab")
	require.True(t, ok)
	require.Contains(t, cache.entries, "homelab")
}

type fakeCache struct {
	entries map[string]*reddit.CommunityInfo
}

func (f *fakeCache) GetCommunity(ctx context.Context, name string) (*reddit.CommunityInfo, bool, error) {
	info, ok := f.entries[name]
	if !ok {
		return nil, false, nil
	}
	return info, true, nil
}

func (f *fakeCache) PutCommunity(ctx context.Context, info *reddit.CommunityInfo, ttl time.Duration) error {
	f.entries[strings.ToLower(info.Name)] = info
	return nil
}
