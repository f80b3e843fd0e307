package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"gorm.io/gorm"

	apporder "github.com/xiebiao/meatshop/internal/application/order"
	appuser "github.com/xiebiao/meatshop/internal/application/user"
	"github.com/xiebiao/meatshop/internal/domain/cart"
	"github.com/xiebiao/meatshop/internal/domain/order"
	"github.com/xiebiao/meatshop/internal/domain/product"
	"github.com/xiebiao/meatshop/internal/domain/user"
	"github.com/xiebiao/meatshop/internal/infrastructure/cache"
	"github.com/xiebiao/meatshop/internal/infrastructure/config"
	"github.com/xiebiao/meatshop/internal/infrastructure/messaging"
	"github.com/xiebiao/meatshop/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/meatshop/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/meatshop/internal/interface/grpc/health"
	"github.com/xiebiao/meatshop/internal/interface/http/middleware"
	"github.com/xiebiao/meatshop/pkg/clock"
	"github.com/xiebiao/meatshop/pkg/crypt"
	"github.com/xiebiao/meatshop/pkg/jwt"
	"github.com/xiebiao/meatshop/pkg/logger"
	"github.com/xiebiao/meatshop/pkg/mq"
)

// App 组装完成的应用
type App struct {
	Config *config.Config
	Log    *zap.Logger
	Engine *gin.Engine
	Health *health.Server
	GRPC   *grpc.Server
}

func newApp(cfg *config.Config, log *zap.Logger, engine *gin.Engine, hs *health.Server) *App {
	return &App{Config: cfg, Log: log, Engine: engine, Health: hs, GRPC: health.NewGRPCServer(hs)}
}

// ========================================
// Custom Providers
// ========================================
// 构造函数的参数需要从Config中提取时，在这里写Provider

func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	log, err := logger.New(logger.Options{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		return nil, nil, err
	}
	return log, func() { _ = log.Sync() }, nil
}

func provideCipher(cfg *config.Config) (*crypt.Cipher, error) {
	return crypt.NewCipher(cfg.Security.EncryptionKey)
}

// provideLocation 订单号"当天"所在时区
func provideLocation(cfg *config.Config) (*time.Location, error) {
	return cfg.Order.Location()
}

func provideClock(loc *time.Location) clock.Clock {
	return clock.NewSystem(loc)
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire, cfg.JWT.RefreshTokenExpire)
}

func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

func provideOrderCache(cfg *config.Config, client *goredis.Client, cipher *crypt.Cipher) *redis.OrderCache {
	return redis.NewOrderCache(client, cipher, cfg.Order.CacheTTL)
}

// provideRateLimiter 未开启限流时返回nil，路由不挂限流中间件
func provideRateLimiter(cfg *config.Config, client *goredis.Client) middleware.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return redis.NewRateLimiter(client, cfg.RateLimit.Window)
}

// provideEventPublisher RabbitMQ未开启时事件只写日志
func provideEventPublisher(cfg *config.Config, log *zap.Logger) (apporder.EventPublisher, func(), error) {
	if !cfg.RabbitMQ.Enabled {
		return messaging.NewNoopPublisher(log), func() {}, nil
	}
	pub, err := mq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, "topic", log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := pub.Close(); err != nil {
			log.Warn("关闭RabbitMQ连接失败", zap.Error(err))
		}
	}
	return messaging.NewOrderEventPublisher(pub, log), cleanup, nil
}

func provideCreateOrderUseCase(
	cfg *config.Config,
	txManager apporder.TxManager,
	users user.Service,
	carts cart.Repository,
	products product.Repository,
	orders order.Repository,
	cache apporder.OrderCache,
	publisher apporder.EventPublisher,
	clk clock.Clock,
	log *zap.Logger,
) *apporder.CreateOrderUseCase {
	return apporder.NewCreateOrderUseCase(txManager, users, carts, products, orders, cache, publisher, clk,
		cfg.Order.MaxAllocationAttempts, log)
}

// provideStartSessionUseCase 会话有效期与Refresh Token一致
func provideStartSessionUseCase(cfg *config.Config, users user.Service, jwtManager *jwt.Manager, sessions appuser.SessionStore, log *zap.Logger) *appuser.StartSessionUseCase {
	return appuser.NewStartSessionUseCase(users, jwtManager, sessions, cfg.JWT.RefreshTokenExpire, log)
}

// provideHealth MySQL和Redis都能ping通才对外SERVING
func provideHealth(db *gorm.DB, client *goredis.Client, log *zap.Logger) (*health.Server, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return health.NewServer(map[string]health.Check{
		"mysql": sqlDB.PingContext,
		"redis": func(ctx context.Context) error { return client.Ping(ctx).Err() },
	}, 10*time.Second, log), nil
}

// provideDB 连接MySQL，cleanup时关闭连接池
func provideDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, func(), error) {
	db, err := mysql.NewDB(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Close()
		}
		if err != nil {
			log.Warn("关闭数据库连接失败", zap.Error(err))
		}
	}
	return db, cleanup, nil
}

func provideRedis(cfg *config.Config, log *zap.Logger) (*goredis.Client, func(), error) {
	client, err := redis.NewClient(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// provideLocalCache 商品目录进程内缓存
func provideLocalCache(ctx context.Context, cfg *config.Config) (*cache.Local, func(), error) {
	local, err := cache.NewLocal(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return local, func() { _ = local.Close() }, nil
}
