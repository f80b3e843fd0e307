//go:build wireinject
// +build wireinject

// Wire依赖注入配置
// 修改后运行 `wire gen ./cmd/api` 重新生成wire_gen.go

package main

import (
	"context"

	"github.com/google/wire"

	appcart "github.com/xiebiao/meatshop/internal/application/cart"
	apporder "github.com/xiebiao/meatshop/internal/application/order"
	appproduct "github.com/xiebiao/meatshop/internal/application/product"
	appuser "github.com/xiebiao/meatshop/internal/application/user"
	"github.com/xiebiao/meatshop/internal/domain/user"
	"github.com/xiebiao/meatshop/internal/infrastructure/cache"
	"github.com/xiebiao/meatshop/internal/infrastructure/config"
	"github.com/xiebiao/meatshop/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/meatshop/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/meatshop/internal/interface/http/handler"
	"github.com/xiebiao/meatshop/internal/interface/http/middleware"
	"github.com/xiebiao/meatshop/internal/interface/http/router"
	"github.com/xiebiao/meatshop/pkg/crypt"
)

// infrastructureSet 基础设施：日志、MySQL、Redis、本地缓存、加密、时钟
var infrastructureSet = wire.NewSet(
	provideLogger,
	provideDB,
	provideRedis,
	provideLocalCache,
	provideCipher,
	provideLocation,
	provideClock,
	provideEventPublisher,
	wire.Bind(new(mysql.FieldCipher), new(*crypt.Cipher)),
	wire.Bind(new(redis.PayloadCipher), new(*crypt.Cipher)),
)

// repositorySet 仓储
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewProductRepository,
	mysql.NewCartRepository,
	mysql.NewOrderRepository,
	mysql.NewTxManager,
	wire.Bind(new(apporder.TxManager), new(*mysql.TxManager)),
	provideOrderCache,
	wire.Bind(new(apporder.OrderCache), new(*redis.OrderCache)),
	provideSessionStore,
	wire.Bind(new(appuser.SessionStore), new(*redis.SessionStore)),
	wire.Bind(new(middleware.Blacklist), new(*redis.SessionStore)),
	wire.Bind(new(appproduct.Cache), new(*cache.Local)),
)

// domainSet 领域服务
var domainSet = wire.NewSet(
	user.NewService,
)

// applicationSet 用例
var applicationSet = wire.NewSet(
	provideCreateOrderUseCase,
	apporder.NewGetOrderUseCase,
	apporder.NewListOrdersUseCase,
	apporder.NewUpdateStatusUseCase,
	appproduct.NewListProductsUseCase,
	appcart.NewAddToCartUseCase,
	appcart.NewListCartUseCase,
	appcart.NewClearCartUseCase,
	provideStartSessionUseCase,
	appuser.NewRefreshTokenUseCase,
	appuser.NewLogoutUseCase,
)

// interfaceSet 中间件、Handler、路由、健康检查
var interfaceSet = wire.NewSet(
	provideJWTManager,
	provideRateLimiter,
	middleware.NewAuthMiddleware,
	handler.NewUserHandler,
	handler.NewCatalogHandler,
	handler.NewOrderHandler,
	router.New,
	provideHealth,
	newApp,
)

// InitializeApp 组装整个应用
// cleanup按创建的逆序释放资源
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		interfaceSet,
	)
	return nil, nil, nil
}

