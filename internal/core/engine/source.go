package engine

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/threadlens/threadlens/internal/core"
	"github.com/threadlens/threadlens/internal/core/reddit"
)

// Source is the upstream surface the engine consumes. *reddit.Client
// satisfies it; tests substitute stubs.
type Source interface {
	SearchPosts(ctx context.Context, query string, opts reddit.SearchOptions) []*core.ResultItem
	AboutCommunity(ctx context.Context, name string) (*reddit.CommunityInfo, bool)
	SearchCommunities(ctx context.Context, term string, limit int) []reddit.CommunityInfo
	TopComments(ctx context.Context, community, id string, limit int) []core.Reply
}

// CommunityCache persists community about-info between runs. Implementations
// must tolerate concurrent use; a nil cache disables persistence.
type CommunityCache interface {
	GetCommunity(ctx context.Context, name string) (*reddit.CommunityInfo, bool, error)
	PutCommunity(ctx context.Context, info *reddit.CommunityInfo, ttl time.Duration) error
}

const aboutMemoTTL = 10 * time.Minute

// Resolver answers community existence probes, memoizing within a run so
// discovery and plan validation never probe the same name twice, and
// consulting the persistent cache when one is configured.
type Resolver struct {
	Source   Source
	Cache    CommunityCache
	CacheTTL time.Duration

	memo *gocache.Cache
}

// NewResolver builds a resolver with an in-run memo.
func NewResolver(source Source, cache CommunityCache) *Resolver {
	return &Resolver{
		Source:   source,
		Cache:    cache,
		CacheTTL: 24 * time.Hour,
		memo:     gocache.New(aboutMemoTTL, aboutMemoTTL),
	}
}

// About resolves a community's about-info. The second return is false when
// the community does not exist or could not be fetched.
func (r *Resolver) About(ctx context.Context, name string) (*reddit.CommunityInfo, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, false
	}

	if cached, found := r.memo.Get(key); found {
		info, ok := cached.(*reddit.CommunityInfo)
		return info, ok && info != nil
	}

	if r.Cache != nil {
		if info, found, err := r.Cache.GetCommunity(ctx, key); err == nil && found {
			r.memo.Set(key, info, gocache.DefaultExpiration)
			return info, true
		}
	}

	info, ok := r.Source.AboutCommunity(ctx, name)
	if !ok {
		// Negative result: memoize a miss for this run only.
		r.memo.Set(key, (*reddit.CommunityInfo)(nil), gocache.DefaultExpiration)
		return nil, false
	}

	r.memo.Set(key, info, gocache.DefaultExpiration)
	if r.Cache != nil {
		_ = r.Cache.PutCommunity(ctx, info, r.CacheTTL)
	}
	return info, true
}
