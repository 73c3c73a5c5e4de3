package redischecker

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/memohai/imgkeeper/internal/healthcheck"
)

const (
	checkTypeRedis = "redis.ping"
	pingTimeout    = 2 * time.Second
)

// Checker pings the shared redis connection. Without a client it reports nothing.
type Checker struct {
	logger *slog.Logger
	client redis.Cmdable
}

func NewChecker(log *slog.Logger, client redis.Cmdable) *Checker {
	if log == nil {
		log = slog.Default()
	}
	return &Checker{
		logger: log.With(slog.String("checker", "healthcheck_redis")),
		client: client,
	}
}

func (c *Checker) ListChecks(ctx context.Context) []healthcheck.CheckResult {
	if c.client == nil {
		return []healthcheck.CheckResult{}
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	item := healthcheck.CheckResult{
		ID:      checkTypeRedis,
		Type:    checkTypeRedis,
		Status:  healthcheck.StatusOK,
		Summary: "Redis is reachable.",
	}
	if err := c.client.Ping(pingCtx).Err(); err != nil {
		c.logger.Warn("redis ping failed", slog.Any("error", err))
		item.Status = healthcheck.StatusError
		item.Summary = "Redis is unreachable."
		item.Detail = err.Error()
	}
	return []healthcheck.CheckResult{item}
}
