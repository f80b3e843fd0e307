package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	_ "github.com/xiebiao/meatshop/docs"
	"github.com/xiebiao/meatshop/internal/infrastructure/config"
	"github.com/xiebiao/meatshop/pkg/tracing"
)

// @title           Meatshop API
// @version         1.0
// @description     肉铺下单服务：商品目录、购物车、下单（订单号 ORD-YYYYMMDD-NNNN）
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
// @description     Bearer <access token>
func main() {
	// .env只在本地开发时存在
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("读取.env失败: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.Insecure)
		if err != nil {
			log.Fatalf("初始化链路追踪失败: %v", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Printf("关闭链路追踪失败: %v", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := InitializeApp(ctx, cfg)
	if err != nil {
		log.Fatalf("初始化应用失败: %v", err)
	}
	defer cleanup()

	run(ctx, app)
}

// run 启动HTTP和gRPC服务，收到信号后优雅关闭
func run(ctx context.Context, app *App) {
	cfg, logger := app.Config, app.Log

	go app.Health.Run(ctx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Info("HTTP服务启动", zap.String("addr", srv.Addr), zap.String("mode", cfg.Server.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP服务异常退出", zap.Error(err))
		}
	}()

	if cfg.GRPC.Port > 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPC.Port))
		if err != nil {
			logger.Fatal("监听gRPC端口失败", zap.Int("port", cfg.GRPC.Port), zap.Error(err))
		}
		go func() {
			logger.Info("gRPC健康检查启动", zap.String("addr", lis.Addr().String()))
			if err := app.GRPC.Serve(lis); err != nil {
				logger.Error("gRPC服务异常退出", zap.Error(err))
			}
		}()
	}

	<-ctx.Done()
	logger.Info("正在关闭服务")

	// 先摘流量再停服务
	app.Health.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP服务关闭超时", zap.Error(err))
	}
	app.GRPC.GracefulStop()

	logger.Info("服务已关闭")
}
