package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/threadlens/threadlens/internal/config"
	"github.com/threadlens/threadlens/internal/core"
	"github.com/threadlens/threadlens/internal/core/engine"
	"github.com/threadlens/threadlens/internal/core/reddit"
)

// stubSource serves a single canned post regardless of query.
type stubSource struct{}

func (stubSource) SearchPosts(ctx context.Context, query string, opts reddit.SearchOptions) []*core.ResultItem {
	if opts.Community != "espresso" {
		return nil
	}
	return []*core.ResultItem{{
		ID:         "p1",
		Community:  "espresso",
		Title:      "leaking group head",
		TopReplies: []core.Reply{},
	}}
}

func (stubSource) AboutCommunity(ctx context.Context, name string) (*reddit.CommunityInfo, bool) {
	return nil, false
}

func (stubSource) SearchCommunities(ctx context.Context, term string, limit int) []reddit.CommunityInfo {
	return nil
}

func (stubSource) TopComments(ctx context.Context, community, id string, limit int) []core.Reply {
	return nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	source := stubSource{}
	resolver := engine.NewResolver(source, nil)
	scout := &engine.Scout{
		Planner: &engine.PlanBuilder{
			Resolver:   resolver,
			Discoverer: &engine.Discoverer{Source: source, Resolver: resolver},
		},
		FanOut:   &engine.FanOut{Source: source},
		Enricher: &engine.Enricher{Source: source},
	}
	return New(config.ServerConfig{Host: "localhost", Port: 0}, scout, nil, "test")
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestVersionEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"version":"test"}`, rec.Body.String())
}

func TestScoutEndpoint(t *testing.T) {
	srv := newTestServer(t)

	body := `{"topic": "espresso machine leaking", "mode": "pain", "community": "espresso", "limit": 5}`
	req := httptest.NewRequest(http.MethodPost, "/v1/scout", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var report core.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Equal(t, "espresso machine leaking", report.Topic)
	require.Len(t, report.Items, 1)
	require.Equal(t, "leaking group head", report.Items[0].Title)
	require.NotEmpty(t, report.Metadata.RunID)
}

func TestScoutEndpointRejectsMissingTopic(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/scout", strings.NewReader(`{"topic": "  "}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScoutEndpointRejectsBadJSON(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/scout", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownRouteReturnsJSONError(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "resource not found")
}
