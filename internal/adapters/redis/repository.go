package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kilimo-tech/farmgate-pos/internal/core"
	"github.com/redis/go-redis/v9"
)

const (
	// ReportKeyPrefix is the prefix for cached inventory reports.
	ReportKeyPrefix = "report:"

	// ReportEntryTTL bounds cache growth across filter combinations. The
	// 5-minute freshness window is enforced by the report service against
	// the stored timestamp; this Redis-side expiry only prevents unbounded
	// accumulation of stale fallback entries.
	ReportEntryTTL = 24 * time.Hour
)

// Repository implements core.ReportCache using Redis. Entries are JSON
// CachedReport blobs under "report:<user>:<filter key>" so a logout can
// clear one user's namespace without touching other users' entries.
type Repository struct {
	client *redis.Client
}

// NewRepository creates a new Redis repository.
func NewRepository(client *redis.Client) *Repository {
	return &Repository{client: client}
}

func reportKey(userID, key string) string {
	return ReportKeyPrefix + userID + ":" + key
}

// Get retrieves a cached report, returning core.ErrNotFound when the key is
// absent or the stored shape no longer decodes.
func (r *Repository) Get(ctx context.Context, userID, key string) (*core.CachedReport, error) {
	val, err := r.client.Get(ctx, reportKey(userID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: cached report", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get cached report: %v", core.ErrDataAccess, err)
	}

	var cached core.CachedReport
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		// A shape change invalidates old entries; treat as a miss.
		return nil, fmt.Errorf("%w: stale cached report shape", core.ErrNotFound)
	}

	return &cached, nil
}

// Set stores a cached report under the user's namespace.
func (r *Repository) Set(ctx context.Context, userID, key string, report *core.CachedReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal cached report: %w", err)
	}

	if err := r.client.Set(ctx, reportKey(userID, key), data, ReportEntryTTL).Err(); err != nil {
		return fmt.Errorf("%w: failed to set cached report: %v", core.ErrDataAccess, err)
	}

	return nil
}

// ClearUser removes every cached report in the user's namespace, leaving
// other users' entries untouched.
func (r *Repository) ClearUser(ctx context.Context, userID string) error {
	pattern := ReportKeyPrefix + userID + ":*"
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()

	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("%w: failed to clear cached report: %v", core.ErrDataAccess, err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("%w: failed to scan cached reports: %v", core.ErrDataAccess, err)
	}

	return nil
}
