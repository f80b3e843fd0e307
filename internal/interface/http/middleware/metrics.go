package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/meatshop/pkg/metrics"
)

// Metrics HTTP请求指标
// path使用路由模板（/api/v1/orders/:order_no），避免订单号进入标签
func Metrics() gin.HandlerFunc {
	metrics.InitMetrics()
	return func(c *gin.Context) {
		start := time.Now()
		metrics.HTTPRequestsInProgress.Inc()
		defer metrics.HTTPRequestsInProgress.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
