package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/meatshop/pkg/errors"
	"github.com/xiebiao/meatshop/pkg/logger"
	"github.com/xiebiao/meatshop/pkg/response"
	"github.com/xiebiao/meatshop/pkg/tracing"
)

// RequestIDHeader 请求ID
const RequestIDHeader = "X-Request-ID"

// Logger 访问日志
// 每个请求生成request_id（或沿用上游传入的），放入请求级Logger
func Logger(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		ctx := c.Request.Context()
		fields := []zap.Field{zap.String("request_id", requestID)}
		if traceID := tracing.ExtractTraceID(ctx); traceID != "" {
			fields = append(fields, zap.String("trace_id", traceID))
		}
		log := base.With(fields...)
		c.Request = c.Request.WithContext(logger.WithContext(ctx, log))

		c.Next()

		// 鉴权后Logger可能已补充user_id
		log = logger.FromContext(c.Request.Context(), log)
		status := c.Writer.Status()
		accessFields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if status >= 500 {
			log.Error("请求完成", accessFields...)
		} else {
			log.Info("请求完成", accessFields...)
		}
	}
}

// Recovery panic恢复，记录堆栈后返回统一错误
func Recovery(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.FromContext(c.Request.Context(), base).Error("panic",
					zap.Any("panic", r), zap.Stack("stack"))
				response.Abort(c, apperrors.ErrInternal)
			}
		}()
		c.Next()
	}
}
