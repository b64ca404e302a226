package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/threadlens/threadlens/internal/core"
)

func TestEnrichAttachesTopReplies(t *testing.T) {
	source := &fakeSource{
		topComments: func(community, id string, limit int) []core.Reply {
			require.Equal(t, DefaultReplyLimit, limit)
			return []core.Reply{{Author: "alice", Score: 3, Body: "reply to " + id}}
		},
	}
	enricher := &Enricher{Source: source}
	meta := &core.SearchMetadata{}

	list := items("p1", "p2")
	enricher.Enrich(context.Background(), list, farDeadline(), meta)

	require.Len(t, list[0].TopReplies, 1)
	require.Equal(t, "reply to p1", list[0].TopReplies[0].Body)
	require.Len(t, list[1].TopReplies, 1)
	require.Empty(t, meta.Warnings)
}

func TestEnrichSkipsItemsMissingIdentity(t *testing.T) {
	called := 0
	source := &fakeSource{
		topComments: func(community, id string, limit int) []core.Reply {
			called++
			return nil
		},
	}
	enricher := &Enricher{Source: source}
	meta := &core.SearchMetadata{}

	list := []*core.ResultItem{
		{ID: "", Community: "c", TopReplies: []core.Reply{}},
		{ID: "p1", Community: "", TopReplies: []core.Reply{}},
		{ID: "p2", Community: "c", TopReplies: []core.Reply{}},
	}
	enricher.Enrich(context.Background(), list, farDeadline(), meta)
	require.Equal(t, 1, called)
}

func TestEnrichStopsAtDeadline(t *testing.T) {
	now := time.Now()
	calls := 0
	source := &fakeSource{
		topComments: func(community, id string, limit int) []core.Reply {
			calls++
			return []core.Reply{{Author: "a", Body: "b"}}
		},
	}
	// Clock advances past the deadline after the first item.
	tick := 0
	enricher := &Enricher{
		Source: source,
		Clock: func() time.Time {
			tick++
			if tick > 1 {
				return now.Add(time.Hour)
			}
			return now
		},
	}
	meta := &core.SearchMetadata{}

	list := items("p1", "p2", "p3")
	enricher.Enrich(context.Background(), list, now.Add(time.Minute), meta)

	require.Equal(t, 1, calls)
	require.Len(t, meta.Warnings, 1)
	require.Contains(t, meta.Warnings[0], "(1/3 items enriched)")
	require.Empty(t, list[1].TopReplies)
}

func TestEnrichKeepsEmptyRepliesOnFetchFailure(t *testing.T) {
	source := &fakeSource{} // TopComments returns nil
	enricher := &Enricher{Source: source}
	meta := &core.SearchMetadata{}

	list := items("p1")
	enricher.Enrich(context.Background(), list, farDeadline(), meta)

	require.NotNil(t, list[0].TopReplies)
	require.Empty(t, list[0].TopReplies)
}
