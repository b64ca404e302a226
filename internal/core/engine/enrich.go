package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/threadlens/threadlens/internal/core"
)

// DefaultReplyLimit caps top-level replies attached per item.
const DefaultReplyLimit = 5

// Enricher attaches top replies to collected items, in collection order,
// until the pipeline deadline is reached. Items left un-enriched keep their
// empty reply list; that is not an error condition.
type Enricher struct {
	Source Source
	Log    *zap.Logger
	Limit  int
	Clock  func() time.Time
}

// Enrich mutates each item exactly once. Partial enrichment under deadline
// pressure is recorded as a warning in meta.
func (e *Enricher) Enrich(ctx context.Context, items []*core.ResultItem, deadline time.Time, meta *core.SearchMetadata) {
	limit := e.Limit
	if limit <= 0 {
		limit = DefaultReplyLimit
	}
	log := e.logger()

	for i, item := range items {
		if e.now().After(deadline) {
			meta.Warn(fmt.Sprintf("deadline reached during reply enrichment (%d/%d items enriched)", i, len(items)))
			return
		}
		if item.ID == "" || item.Community == "" {
			continue
		}
		log.Debug("fetching replies",
			zap.Int("index", i+1),
			zap.Int("total", len(items)),
			zap.String("id", item.ID),
			zap.String("community", item.Community))
		if replies := e.Source.TopComments(ctx, item.Community, item.ID, limit); replies != nil {
			item.TopReplies = replies
		}
	}
}

func (e *Enricher) now() time.Time {
	if e.Clock != nil {
		return e.Clock()
	}
	return time.Now()
}

func (e *Enricher) logger() *zap.Logger {
	if e.Log != nil {
		return e.Log
	}
	return zap.NewNop()
}
