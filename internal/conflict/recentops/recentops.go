// Package recentops implements the "concurrent field change" external signal
// the conflict engine consults when classifying a version-mismatch as a
// rename versus a plain concurrent-update (spec §4.2, Open Questions). The
// engine only requires the Index interface; this package additionally
// provides a real Redis-backed implementation and a Noop default.
package recentops

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Index answers whether a given field on a given entity was changed by some
// operation other than the one currently under review within the supplied
// window. Implementations must be safe for concurrent use.
type Index interface {
	// WasConcurrentlyChanged reports whether entityKind/entityID/field was
	// touched by an operation other than excludeOperationID within window
	// before asOf.
	WasConcurrentlyChanged(ctx context.Context, entityKind string, entityID int64, field string, excludeOperationID string, asOf time.Time, window time.Duration) bool

	// RecordChange records that operationID changed field on the given
	// entity at ts, so later detections can see it as a recent op.
	RecordChange(ctx context.Context, entityKind string, entityID int64, field string, operationID string, ts time.Time)
}

// Noop always reports no concurrent change, matching the spec's "default
// 'always false' hook is acceptable" guidance.
type Noop struct{}

func (Noop) WasConcurrentlyChanged(context.Context, string, int64, string, string, time.Time, time.Duration) bool {
	return false
}

func (Noop) RecordChange(context.Context, string, int64, string, string, time.Time) {}

// RedisIndex backs the signal with a Redis sorted set per (entityKind,
// entityID, field), scored by Unix-millis timestamp, member
// "<operationID>:<millis>". Entries older than maxAge are trimmed lazily on
// each write.
type RedisIndex struct {
	client *redis.Client
	maxAge time.Duration
}

// NewRedisIndex creates an index backed by client. maxAge bounds how long
// entries are retained (and is independent of the per-query window passed to
// WasConcurrentlyChanged, which must be <= maxAge to see all relevant data).
func NewRedisIndex(client *redis.Client, maxAge time.Duration) *RedisIndex {
	if maxAge <= 0 {
		maxAge = 10 * time.Minute
	}
	return &RedisIndex{client: client, maxAge: maxAge}
}

func (r *RedisIndex) key(entityKind string, entityID int64, field string) string {
	return "recentops:" + entityKind + ":" + strconv.FormatInt(entityID, 10) + ":" + field
}

func (r *RedisIndex) RecordChange(ctx context.Context, entityKind string, entityID int64, field string, operationID string, ts time.Time) {
	key := r.key(entityKind, entityID, field)
	member := operationID + ":" + ts.Format(time.RFC3339Nano)
	score := float64(ts.UnixMilli())
	r.client.ZAdd(ctx, key, redis.Z{Score: score, Member: member})
	r.client.Expire(ctx, key, r.maxAge)
	cutoff := float64(ts.Add(-r.maxAge).UnixMilli())
	r.client.ZRemRangeByScore(ctx, key, "-inf", formatFloat(cutoff))
}

func (r *RedisIndex) WasConcurrentlyChanged(ctx context.Context, entityKind string, entityID int64, field string, excludeOperationID string, asOf time.Time, window time.Duration) bool {
	key := r.key(entityKind, entityID, field)
	lo := float64(asOf.Add(-window).UnixMilli())
	hi := float64(asOf.UnixMilli())
	members, err := r.client.ZRangeByScore(ctx, key, &redis.ZRangeBy{
		Min: formatFloat(lo), Max: formatFloat(hi),
	}).Result()
	if err != nil {
		return false
	}
	for _, m := range members {
		if len(m) >= len(excludeOperationID) && m[:len(excludeOperationID)] == excludeOperationID {
			continue
		}
		return true
	}
	return false
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
