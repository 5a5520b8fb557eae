package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// LimiterConfig bounds failed logins per email.
type LimiterConfig struct {
	MaxAttempts int64
	Window      time.Duration
}

// LoginLimiter keeps failed login timestamps per email in a sorted set and
// blocks once MaxAttempts fall inside Window.
// Key format: login_fail:<email>
type LoginLimiter struct {
	client *redis.Client
	cfg    LimiterConfig
	now    func() time.Time
}

func NewLoginLimiter(client *redis.Client, cfg LimiterConfig) *LoginLimiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.Window <= 0 {
		cfg.Window = 15 * time.Minute
	}
	return &LoginLimiter{client: client, cfg: cfg, now: time.Now}
}

// Blocked reports whether the email already used up its attempts.
func (l *LoginLimiter) Blocked(ctx context.Context, email string) (bool, error) {
	key := loginKey(email)
	now := l.now()

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", windowStart(now, l.cfg.Window))
	count := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("login limiter: %w", err)
	}
	return count.Val() >= l.cfg.MaxAttempts, nil
}

// RecordFailure adds one failed attempt and refreshes the key TTL.
func (l *LoginLimiter) RecordFailure(ctx context.Context, email string) error {
	key := loginKey(email)
	now := l.now()

	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: now.UnixNano()})
		pipe.ZRemRangeByScore(ctx, key, "-inf", windowStart(now, l.cfg.Window))
		pipe.Expire(ctx, key, l.cfg.Window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("login limiter: %w", err)
	}
	return nil
}

// Reset forgets all failures, called after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, email string) error {
	if err := l.client.Del(ctx, loginKey(email)).Err(); err != nil {
		return fmt.Errorf("login limiter: %w", err)
	}
	return nil
}

func loginKey(email string) string {
	return "login_fail:" + strings.ToLower(strings.TrimSpace(email))
}

// windowStart is the exclusive lower score bound of the active window.
func windowStart(now time.Time, window time.Duration) string {
	return "(" + strconv.FormatInt(now.Add(-window).UnixNano(), 10)
}
