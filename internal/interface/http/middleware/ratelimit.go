package middleware

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/meatshop/pkg/errors"
	"github.com/xiebiao/meatshop/pkg/logger"
	"github.com/xiebiao/meatshop/pkg/metrics"
	"github.com/xiebiao/meatshop/pkg/response"
)

// Limiter 固定窗口计数（redis.RateLimiter实现）
type Limiter interface {
	Allow(ctx context.Context, subject string, limit int) (allowed bool, retryAfter time.Duration, err error)
}

// RateLimitConfig 每个窗口允许的请求数
type RateLimitConfig struct {
	Requests      int
	AdminRequests int
}

// RateLimit 按用户限流，未登录按客户端IP
// 放在RequireAuth之后才能区分用户；Redis故障时放行
func RateLimit(limiter Limiter, cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, role, limit := "ip:"+c.ClientIP(), "anonymous", cfg.Requests
		if claims := GetClaims(c); claims != nil {
			subject, role = fmt.Sprintf("user:%d", claims.UserID), "user"
			if claims.IsAdmin {
				role, limit = "admin", cfg.AdminRequests
			}
		}

		allowed, retryAfter, err := limiter.Allow(c.Request.Context(), subject, limit)
		if err != nil {
			logger.FromContext(c.Request.Context(), nil).Warn("限流检查失败，放行", zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			metrics.RecordRateLimited(role)
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			response.Abort(c, apperrors.ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
