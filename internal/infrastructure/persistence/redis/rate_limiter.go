package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

// RateLimiter 基于有序集合的滑动窗口限流器，member 为请求时间戳
type RateLimiter struct {
	client *Client
}

// NewRateLimiter 创建限流器
func NewRateLimiter(client *Client) *RateLimiter {
	return &RateLimiter{client: client}
}

// Allow 判定请求是否放行，同时返回窗口内剩余配额
func (l *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, int, error) {
	ctx, span := tracer.Start(ctx, "ratelimit.Allow")
	span.SetAttributes(
		attribute.String("ratelimit.key", key),
		attribute.Int("ratelimit.limit", limit),
		attribute.Int64("ratelimit.window_ms", window.Milliseconds()),
	)
	defer span.End()

	now := time.Now().UnixMilli()
	count, err := l.pruneAndCount(ctx, key, now-window.Milliseconds())
	if err != nil {
		span.RecordError(err)
		return false, 0, err
	}
	span.SetAttributes(attribute.Int64("ratelimit.current_count", count))

	if count >= int64(limit) {
		span.SetAttributes(attribute.Bool("ratelimit.allowed", false))
		return false, 0, nil
	}

	member := strconv.FormatInt(now, 10)
	l.client.rdb.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: member})
	l.client.rdb.Expire(ctx, key, window*2)

	remaining := limit - int(count) - 1
	if remaining < 0 {
		remaining = 0
	}
	span.SetAttributes(attribute.Bool("ratelimit.allowed", true))
	return true, remaining, nil
}

// pruneAndCount 清掉窗口外的记录并统计剩余条数，两步走一次 pipeline
func (l *RateLimiter) pruneAndCount(ctx context.Context, key string, windowStart int64) (int64, error) {
	pipe := l.client.rdb.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	countCmd := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return countCmd.Val(), nil
}

// BuildUserRateLimitKey 用户加接口维度的限流键
func BuildUserRateLimitKey(userID, endpoint string) string {
	return fmt.Sprintf("ratelimit:%s:%s", userID, endpoint)
}
