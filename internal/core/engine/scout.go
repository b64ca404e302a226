package engine

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/threadlens/threadlens/internal/core"
)

// DefaultBudget is the wall-clock budget for one full pipeline run.
const DefaultBudget = 360 * time.Second

// Request carries the inbound parameters for one scout run.
type Request struct {
	Topic     string
	Mode      core.Mode
	Community string // optional; bypasses discovery
	Limit     int    // result cap, default 20
}

// Scout wires planning, fan-out, and enrichment under one shared deadline.
type Scout struct {
	Planner  *PlanBuilder
	FanOut   *FanOut
	Enricher *Enricher
	Log      *zap.Logger

	Budget time.Duration
	Clock  func() time.Time

	// DefaultLimit applies when the request carries no result cap.
	DefaultLimit int
}

// Run executes the full pipeline. Upstream unavailability never surfaces as
// an error; the run degrades through cheaper strategies and reports what
// happened in the metadata record. The only error is an empty topic.
func (s *Scout) Run(ctx context.Context, req Request) (*core.Report, error) {
	if req.Topic == "" {
		return nil, errors.New("topic is required")
	}
	if req.Limit <= 0 {
		req.Limit = s.DefaultLimit
	}
	if req.Limit <= 0 {
		req.Limit = 20
	}
	mode := core.ParseMode(string(req.Mode))
	log := s.logger()

	budget := s.Budget
	if budget == 0 {
		budget = DefaultBudget
	}
	start := s.now()
	deadline := start.Add(budget)

	// Cancellation propagates to in-flight fetches once the budget runs
	// out; phases additionally check the deadline before starting work.
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	meta := &core.SearchMetadata{
		RunID:    uuid.New().String(),
		Warnings: []string{},
	}

	plan := s.Planner.Build(ctx, req.Topic, mode, req.Community, meta)
	if len(plan.Communities) == 0 {
		meta.Warn("no communities found; relying on global queries only")
	}

	sort := ModeSearch(req.Topic, mode).Sort
	items := s.FanOut.Search(ctx, plan, req.Limit, sort, deadline, meta)
	log.Info("fan-out complete", zap.Int("items", len(items)))

	if len(items) == 0 {
		meta.Warn("no results found for any query")
	}

	s.Enricher.Enrich(ctx, items, deadline, meta)

	meta.ElapsedSeconds = math.Round(s.now().Sub(start).Seconds()*10) / 10
	log.Info("scout run complete",
		zap.String("run_id", meta.RunID),
		zap.String("plan_source", string(meta.PlanSource)),
		zap.Int("items", len(items)),
		zap.Float64("elapsed_seconds", meta.ElapsedSeconds))

	return &core.Report{
		Topic:    req.Topic,
		Mode:     mode,
		Items:    items,
		Metadata: meta,
	}, nil
}

func (s *Scout) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *Scout) logger() *zap.Logger {
	if s.Log != nil {
		return s.Log
	}
	return zap.NewNop()
}
