package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/landing/internal/pkg/response"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	rateLimitMax    = 50
	rateLimitWindow = time.Second
)

// RateLimit enforces a fixed one-second window of 50 requests per client IP
// for guests. Redis errors let the request through.
func RateLimit(rdb *redis.Client, log *zap.Logger) gin.HandlerFunc {
	return rateLimit(rdb, log, rateLimitMax)
}

func rateLimit(rdb *redis.Client, log *zap.Logger, limit int64) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		if rdb == nil || IsAuthenticated(c) {
			c.Next()
			return
		}

		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := fmt.Sprintf("landing:rate_limit:%s:%d", ip, time.Now().Unix())

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			rdb.PExpire(ctx, key, rateLimitWindow+time.Second)
		}

		if count > limit {
			if count == limit+1 {
				log.Warn("rate limited", zap.String("ip", ip), zap.String("path", c.Request.URL.Path))
			}
			c.Header("Retry-After", "1")
			response.TooManyRequests(c)
			return
		}

		c.Next()
	}
}
