package engine

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/threadlens/threadlens/internal/core"
	"github.com/threadlens/threadlens/internal/core/reddit"
)

// FanOut executes a QueryPlan in two phases: breadth across every planned
// community, then depth on the communities that yielded, with a global
// fallback when total yield stays low.
type FanOut struct {
	Source Source
	Log    *zap.Logger
	Clock  func() time.Time
}

// Search runs the plan and returns deduplicated items in first-seen order,
// truncated to limit. Deadline expiry truncates gracefully and records a
// warning in meta; it never fails the run.
func (f *FanOut) Search(ctx context.Context, plan *core.QueryPlan, limit int, sort string, deadline time.Time, meta *core.SearchMetadata) []*core.ResultItem {
	log := f.logger()

	numCommunities := len(plan.Communities)
	perQuery := perQueryBudget(limit, numCommunities)

	log.Info("fan-out search",
		zap.Int("communities", numCommunities),
		zap.Int("per_query_budget", perQuery),
		zap.Int("limit", limit))

	run := &fanoutRun{
		fanout:   f,
		plan:     plan,
		sort:     sort,
		deadline: deadline,
		meta:     meta,
		seen:     make(map[string]bool),
	}

	// Phase 1 (breadth): first query only, for every community in plan
	// order. Never stops early on success; breadth is not sacrificed for an
	// early lead.
	for _, community := range plan.Communities {
		if run.timedOut() {
			meta.Warn("deadline reached during breadth phase")
			break
		}
		queries := plan.QueriesFor(community)
		if len(queries) == 0 {
			continue
		}
		log.Info("breadth search", zap.String("community", community), zap.String("query", queries[0]))
		items := run.queryWithQuoteFallback(ctx, community, queries[0], perQuery)
		if run.collect(items) > 0 {
			run.yielding = append(run.yielding, community)
		}
	}

	meta.CommunitiesSearched = numCommunities
	meta.CommunitiesYielded = len(run.yielding)
	log.Info("breadth phase complete",
		zap.Int("items", len(run.items)),
		zap.Int("yielding", len(run.yielding)))

	// Phase 2 (depth): remaining queries, yielding communities only.
	if len(run.items) < limit {
		for _, community := range run.yielding {
			if len(run.items) >= limit || run.timedOut() {
				break
			}
			for _, query := range plan.QueriesFor(community)[1:] {
				if len(run.items) >= limit || run.timedOut() {
					break
				}
				log.Info("depth search", zap.String("community", community), zap.String("query", query))
				run.collect(run.queryWithQuoteFallback(ctx, community, query, perQuery))
			}
		}
	}

	meta.QueriesExecuted = run.executed
	meta.QuoteRetries = run.quoteRetries

	// Global fallback: unscoped queries when yield is scarce.
	threshold := limit / 4
	if threshold < 5 {
		threshold = 5
	}
	if len(run.items) < threshold && !run.timedOut() {
		meta.GlobalFallbackTriggered = true
		log.Info("low yield, running global fallback",
			zap.Int("items", len(run.items)),
			zap.Int("threshold", threshold))
		for _, query := range plan.GlobalQueries {
			if len(run.items) >= limit || run.timedOut() {
				break
			}
			run.collect(run.runQuery(ctx, "", query, limit-len(run.items)))
		}
		meta.QueriesExecuted = run.executed
	}

	if len(run.items) > limit {
		run.items = run.items[:limit]
	}
	meta.ItemsCollected = len(run.items)
	return run.items
}

// perQueryBudget spreads the result cap across communities, clamped to keep
// single queries useful without exhausting the budget on one community.
func perQueryBudget(limit, communities int) int {
	if communities < 1 {
		communities = 1
	}
	budget := limit / communities
	if budget > 5 {
		budget = 5
	}
	if budget < 2 {
		budget = 2
	}
	return budget
}

type fanoutRun struct {
	fanout   *FanOut
	plan     *core.QueryPlan
	sort     string
	deadline time.Time
	meta     *core.SearchMetadata

	items        []*core.ResultItem
	seen         map[string]bool
	yielding     []string
	executed     int
	quoteRetries int
}

func (r *fanoutRun) timedOut() bool {
	return r.fanout.now().After(r.deadline)
}

// runQuery sanitizes and executes one search call. Empty post-sanitization
// queries are skipped without counting against the budget.
func (r *fanoutRun) runQuery(ctx context.Context, community, query string, limit int) []*core.ResultItem {
	sanitized := SanitizeQuery(query)
	if sanitized == "" {
		return nil
	}
	r.executed++
	return r.fanout.Source.SearchPosts(ctx, sanitized, reddit.SearchOptions{
		Community: community,
		Sort:      r.sort,
		Limit:     limit,
	})
}

// queryWithQuoteFallback retries a zero-result quoted query exactly once
// with the quotes stripped.
func (r *fanoutRun) queryWithQuoteFallback(ctx context.Context, community, query string, limit int) []*core.ResultItem {
	items := r.runQuery(ctx, community, query, limit)
	if len(items) == 0 && strings.Contains(query, `"`) {
		stripped := strings.ReplaceAll(query, `"`, "")
		r.fanout.logger().Info("quote fallback",
			zap.String("community", community),
			zap.String("query", stripped))
		items = r.runQuery(ctx, community, stripped, limit)
		r.quoteRetries++
	}
	return items
}

// collect appends unseen items, preserving first-seen order. Returns the
// number of new items.
func (r *fanoutRun) collect(items []*core.ResultItem) int {
	added := 0
	for _, item := range items {
		if item == nil || r.seen[item.ID] {
			continue
		}
		r.seen[item.ID] = true
		r.items = append(r.items, item)
		added++
	}
	return added
}

func (f *FanOut) now() time.Time {
	if f.Clock != nil {
		return f.Clock()
	}
	return time.Now()
}

func (f *FanOut) logger() *zap.Logger {
	if f.Log != nil {
		return f.Log
	}
	return zap.NewNop()
}
