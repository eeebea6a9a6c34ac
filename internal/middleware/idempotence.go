package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/landing/internal/pkg/response"
	"github.com/redis/go-redis/v9"
)

const (
	IdempotenceHeader = "X-Idempotence"
	idempotenceTTL    = 60 * time.Second
)

// Idempotence rejects a repeated write carrying the same X-Idempotence key while
// the first one is in flight or within a minute after it succeeded. Requests
// without the header pass through.
func Idempotence(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || !isWriteMethod(c.Request.Method) {
			c.Next()
			return
		}
		key := resolveIdempotenceKey(c)
		if key == "" {
			c.Next()
			return
		}

		redisKey := "landing:idempotence:" + key
		ctx := c.Request.Context()

		val, err := rdb.Get(ctx, redisKey).Result()
		if err == nil {
			msg := "the same request already succeeded within the last minute"
			if val == "0" {
				msg = "the same request is still being processed"
			}
			response.Conflict(c, msg)
			return
		}
		if !errors.Is(err, redis.Nil) {
			c.Next()
			return
		}

		if setErr := rdb.Set(ctx, redisKey, "0", idempotenceTTL).Err(); setErr != nil {
			c.Next()
			return
		}

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			rdb.Set(ctx, redisKey, "1", redis.KeepTTL)
		} else {
			rdb.Del(ctx, redisKey)
		}
	}
}

func isWriteMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// resolveIdempotenceKey scopes the client-supplied key to the caller and route.
func resolveIdempotenceKey(c *gin.Context) string {
	hdr := strings.TrimSpace(c.GetHeader(IdempotenceHeader))
	if hdr == "" {
		return ""
	}
	raw := c.Request.Method + "|" + c.Request.URL.Path + "|" + hdr + "|" + extractToken(c) + "|" + c.ClientIP()
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}
