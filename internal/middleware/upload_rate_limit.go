package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/bonocatalog/backend/internal/config"
)

// UploadRateLimit caps the number of job submissions per client per day.
// Generation runs are expensive, so the quota is deliberately low and resets
// at midnight for predictable behavior.
func UploadRateLimit(redisClient *redis.Client, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()

		// Only job submissions count against the quota
		if c.Request.Method != "POST" || c.Request.URL.Path != "/api/v1/jobs" {
			c.Next()
			return
		}

		// Rate limit key: upload_limit:{client_ip}:{date}
		today := time.Now().Format("2006-01-02")
		key := fmt.Sprintf("upload_limit:%s:%s", c.ClientIP(), today)

		// Check current count
		count, err := redisClient.Get(ctx, key).Int()
		if err == redis.Nil {
			// First submission today; expire at midnight
			now := time.Now()
			midnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
			ttl := midnight.Sub(now)
			err = redisClient.Set(ctx, key, 1, ttl).Err()
			if err != nil {
				// Redis error - don't block the submission
				c.Next()
				return
			}
		} else if err != nil {
			// Redis error - don't block the submission
			c.Next()
			return
		} else if count >= cfg.UploadsPerDay {
			ttl, _ := redisClient.TTL(ctx, key).Result()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":               "upload_rate_limit_exceeded",
				"message":             "Too many catalog jobs today. Please try again tomorrow.",
				"retry_after_hours":   int(ttl.Hours()),
				"uploads_today":       count,
				"max_uploads_per_day": cfg.UploadsPerDay,
			})
			c.Abort()
			return
		} else {
			// Increment counter
			redisClient.Incr(ctx, key)
		}

		c.Next()
	}
}
