package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jobboard-api/internal/storage"
	"jobboard-api/internal/transport/dto"
)

// RateLimit allows limit requests per client IP in each window. Limiter failures let the request through.
func RateLimit(limiter storage.RateLimiter, limit int64, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, remaining, err := limiter.Allow(c.Request.Context(), c.ClientIP(), limit, window)
		if err != nil {
			logger.Error("Rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.Error("Too many requests from this IP, please try again later."))
			return
		}
		c.Next()
	}
}
