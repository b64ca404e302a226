package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/threadlens/threadlens/internal/core"
	"github.com/threadlens/threadlens/internal/core/reddit"
)

func TestRankAndSelectReservesNicheSlots(t *testing.T) {
	candidates := []*core.Candidate{
		{Name: "tinyA", Subscribers: 100, Relevance: 3},
		{Name: "tinyB", Subscribers: 50, Relevance: 3},
		{Name: "bigA", Subscribers: 10000, Relevance: 2},
		{Name: "bigB", Subscribers: 5000, Relevance: 2},
		{Name: "bigC", Subscribers: 9000, Relevance: 1},
		{Name: "bigD", Subscribers: 8000, Relevance: 1},
	}

	// max 4 leaves one niche slot; the second niche candidate is skipped
	// despite outranking every large community.
	selected := rankAndSelect(candidates, 4, 1000)
	require.Equal(t, []string{"tinyA", "bigA", "bigB", "bigC"}, selected)
}

func TestRankAndSelectBackfillsOpenSlots(t *testing.T) {
	candidates := []*core.Candidate{
		{Name: "tinyA", Subscribers: 100, Relevance: 3},
		{Name: "tinyB", Subscribers: 50, Relevance: 2},
		{Name: "bigA", Subscribers: 10000, Relevance: 1},
	}

	// Niche slot is exhausted after tinyA, but with only one large candidate
	// the skipped niche community backfills the remaining slot.
	selected := rankAndSelect(candidates, 3, 1000)
	require.Equal(t, []string{"tinyA", "bigA", "tinyB"}, selected)
}

func TestRankAndSelectOrdersByRelevanceThenSize(t *testing.T) {
	candidates := []*core.Candidate{
		{Name: "medium", Subscribers: 5000, Relevance: 1},
		{Name: "large", Subscribers: 90000, Relevance: 1},
		{Name: "focused", Subscribers: 2000, Relevance: 2},
	}
	selected := rankAndSelect(candidates, 3, 1000)
	require.Equal(t, []string{"focused", "large", "medium"}, selected)
}

func newTestDiscoverer(source *fakeSource) *Discoverer {
	return &Discoverer{
		Source:   source,
		Resolver: NewResolver(source, nil),
	}
}

func TestDiscoverCombinesStrategies(t *testing.T) {
	source := &fakeSource{
		aboutCommunity: func(name string) (*reddit.CommunityInfo, bool) {
			if name == "homelab" {
				return &reddit.CommunityInfo{Name: "homelab", Subscribers: 500000}, true
			}
			return nil, false
		},
		searchCommunities: func(term string, limit int) []reddit.CommunityInfo {
			return []reddit.CommunityInfo{
				{Name: "selfhosted", Subscribers: 200000, Description: "homelab software"},
				{Name: "gonewild", Subscribers: 1000000, Over18: true},
				{Name: "knitting", Subscribers: 90000, Description: "yarn"},
			}
		},
		searchPosts: func(query string, opts reddit.SearchOptions) []*core.ResultItem {
			return []*core.ResultItem{
				{ID: "p1", Community: "HomeLabSales"},
				{ID: "p2", Community: "aquariums"},
			}
		},
	}

	discoverer := newTestDiscoverer(source)
	selected := discoverer.Discover(context.Background(), "homelab", 10)

	require.Contains(t, selected, "homelab")       // direct slug probe
	require.Contains(t, selected, "selfhosted")    // community search by description
	require.Contains(t, selected, "HomeLabSales")  // extracted from posts
	require.NotContains(t, selected, "gonewild")   // over18 filtered
	require.NotContains(t, selected, "knitting")   // zero relevance
	require.NotContains(t, selected, "aquariums")  // zero relevance
}

func TestDiscoverEmptyWhenNothingMatches(t *testing.T) {
	discoverer := newTestDiscoverer(&fakeSource{})
	require.Empty(t, discoverer.Discover(context.Background(), "extremely obscure topic", 10))
	require.Nil(t, discoverer.Discover(context.Background(), "anything", 0))
}

func TestDiscoverGapFillPromotesRelevance(t *testing.T) {
	about := map[string]*reddit.CommunityInfo{
		"homelabsales": {Name: "HomeLabSales", Subscribers: 30000, Description: "homelab gear for sale"},
	}
	source := &fakeSource{
		aboutCommunity: func(name string) (*reddit.CommunityInfo, bool) {
			info, ok := about[strings.ToLower(name)]
			return info, ok
		},
		searchPosts: func(query string, opts reddit.SearchOptions) []*core.ResultItem {
			return []*core.ResultItem{{ID: "p1", Community: "HomeLabSales"}}
		},
	}

	discoverer := newTestDiscoverer(source)
	selected := discoverer.Discover(context.Background(), "homelab", 5)
	require.Equal(t, []string{"HomeLabSales"}, selected)
}
