package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/threadlens/threadlens/internal/core/reddit"
)

// GetCommunity returns cached about-info for a community if it is still
// valid. The second return reports whether a live entry was found.
func (s *Store) GetCommunity(ctx context.Context, name string) (*reddit.CommunityInfo, bool, error) {
	if s == nil || s.DB == nil {
		return nil, false, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, false, errors.New("community name is required")
	}

	var (
		canonical   string
		subscribers int
		over18      int
		description sql.NullString
	)

	row := s.DB.QueryRowContext(ctx, `
		SELECT name, subscribers, over18, description
		FROM community_cache
		WHERE name = ? AND expires_at > ?
	`, key, time.Now().UTC().Unix())

	if err := row.Scan(&canonical, &subscribers, &over18, &description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("fetch cached community: %w", err)
	}

	return &reddit.CommunityInfo{
		Name:        canonical,
		Subscribers: subscribers,
		Over18:      over18 != 0,
		Description: description.String,
	}, true, nil
}

// PutCommunity stores community about-info with a TTL.
func (s *Store) PutCommunity(ctx context.Context, info *reddit.CommunityInfo, ttl time.Duration) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if info == nil || ttl <= 0 {
		return nil
	}

	key := strings.ToLower(strings.TrimSpace(info.Name))
	if key == "" {
		return errors.New("community name is required")
	}

	over18 := 0
	if info.Over18 {
		over18 = 1
	}

	now := time.Now().UTC()
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO community_cache (name, subscribers, over18, description, fetched_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			subscribers = excluded.subscribers,
			over18 = excluded.over18,
			description = excluded.description,
			fetched_at = excluded.fetched_at,
			expires_at = excluded.expires_at
	`, key, info.Subscribers, over18, info.Description, now.Unix(), now.Add(ttl).Unix())
	if err != nil {
		return fmt.Errorf("cache community: %w", err)
	}
	return nil
}

// PruneCommunities removes expired cache entries and returns the count.
func (s *Store) PruneCommunities(ctx context.Context) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM community_cache WHERE expires_at <= ?`, time.Now().UTC().Unix())
	if err != nil {
		return 0, fmt.Errorf("prune community cache: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune community cache: %w", err)
	}
	return removed, nil
}
