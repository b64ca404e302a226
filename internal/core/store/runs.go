package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/threadlens/threadlens/internal/core"
)

// RunRecord is one row of the run history.
type RunRecord struct {
	ID             string
	Topic          string
	Mode           string
	PlanSource     string
	Communities    int
	Items          int
	ElapsedSeconds float64
	CreatedAt      time.Time
}

// RecordRun persists a summary of a completed scout run.
func (s *Store) RecordRun(ctx context.Context, report *core.Report) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if report == nil || report.Metadata == nil {
		return nil
	}

	meta := report.Metadata
	_, err := s.DB.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (id, topic, mode, plan_source, communities, items, elapsed_seconds, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, meta.RunID, report.Topic, string(report.Mode), string(meta.PlanSource),
		meta.CommunitiesSearched, meta.ItemsCollected, meta.ElapsedSeconds,
		time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// RecentRuns returns the newest run records, most recent first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, topic, mode, plan_source, communities, items, elapsed_seconds, created_at
		FROM runs
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var records []RunRecord
	for rows.Next() {
		var (
			rec       RunRecord
			createdAt int64
		)
		if err := rows.Scan(&rec.ID, &rec.Topic, &rec.Mode, &rec.PlanSource,
			&rec.Communities, &rec.Items, &rec.ElapsedSeconds, &createdAt); err != nil {
			return nil, fmt.Errorf("scan run record: %w", err)
		}
		rec.CreatedAt = time.Unix(createdAt, 0).UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return records, nil
}
