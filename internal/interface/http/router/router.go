// Package router 注册HTTP路由
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/xiebiao/meatshop/internal/infrastructure/config"
	"github.com/xiebiao/meatshop/internal/interface/http/handler"
	"github.com/xiebiao/meatshop/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/meatshop/pkg/errors"
	"github.com/xiebiao/meatshop/pkg/metrics"
	"github.com/xiebiao/meatshop/pkg/response"
)

// New 创建Gin引擎并注册全部路由
//
//	GET    /ping
//	GET    /metrics
//	GET    /swagger/*any                      (release模式下关闭)
//	POST   /api/v1/sessions                    机器人
//	POST   /api/v1/sessions/refresh
//	DELETE /api/v1/sessions                    登录
//	GET    /api/v1/products
//	GET    /api/v1/order-numbers/:order_no
//	GET    /api/v1/cart                        登录
//	POST   /api/v1/cart/items                  登录
//	DELETE /api/v1/cart                        登录
//	POST   /api/v1/orders                      登录
//	GET    /api/v1/orders                      登录
//	GET    /api/v1/orders/:order_no            登录
//	PUT    /api/v1/admin/orders/:order_no/status 管理员
//
// limiter为nil时不限流
func New(
	cfg *config.Config,
	log *zap.Logger,
	userHandler *handler.UserHandler,
	catalogHandler *handler.CatalogHandler,
	orderHandler *handler.OrderHandler,
	authMiddleware *middleware.AuthMiddleware,
	limiter middleware.Limiter,
) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	metrics.InitMetrics()

	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.Logger(log), middleware.Metrics())

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong", "status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.Server.Mode != gin.ReleaseMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, response.Response{Code: apperrors.ErrCodeNotFound, Message: "接口不存在"})
	})

	limit := func(c *gin.Context) { c.Next() }
	if limiter != nil {
		limit = middleware.RateLimit(limiter, middleware.RateLimitConfig{
			Requests:      cfg.RateLimit.Requests,
			AdminRequests: cfg.RateLimit.AdminRequests,
		})
	}
	requireAuth := authMiddleware.RequireAuth()

	v1 := r.Group("/api/v1")
	{
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", middleware.RequireBotSecret(cfg.Security.BotSecret), userHandler.StartSession)
			sessions.POST("/refresh", limit, userHandler.RefreshToken)
			sessions.DELETE("", requireAuth, userHandler.Logout)
		}

		// 公开接口，按IP限流
		v1.GET("/products", limit, catalogHandler.ListProducts)
		v1.GET("/order-numbers/:order_no", limit, orderHandler.InspectOrderNumber)

		// 需要登录，先认证再限流，才能按用户计数
		authorized := v1.Group("")
		authorized.Use(requireAuth, limit)
		{
			authorized.GET("/cart", catalogHandler.GetCart)
			authorized.POST("/cart/items", catalogHandler.AddToCart)
			authorized.DELETE("/cart", catalogHandler.ClearCart)

			authorized.POST("/orders", orderHandler.CreateOrder)
			authorized.GET("/orders", orderHandler.ListOrders)
			authorized.GET("/orders/:order_no", orderHandler.GetOrder)
		}

		admin := v1.Group("/admin")
		admin.Use(requireAuth, middleware.RequireAdmin(), limit)
		{
			admin.PUT("/orders/:order_no/status", orderHandler.UpdateStatus)
		}
	}

	return r
}
