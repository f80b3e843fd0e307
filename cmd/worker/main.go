// worker 消费订单事件，生成用户通知
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xiebiao/meatshop/internal/infrastructure/config"
	"github.com/xiebiao/meatshop/internal/infrastructure/messaging"
	"github.com/xiebiao/meatshop/pkg/logger"
	"github.com/xiebiao/meatshop/pkg/metrics"
	"github.com/xiebiao/meatshop/pkg/mq"
)

// metricsAddr worker只暴露/metrics
const metricsAddr = ":9101"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("读取.env失败: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	zlog, err := logger.New(logger.Options{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer zlog.Sync()
	zlog = zlog.With(zap.String("component", "worker"))

	if !cfg.RabbitMQ.Enabled {
		zlog.Fatal("rabbitmq.enabled=false，worker无事可做")
	}

	consumer, err := mq.NewConsumer(
		cfg.RabbitMQ.URL,
		cfg.RabbitMQ.Exchange,
		"topic",
		cfg.RabbitMQ.Queue,
		[]string{"order.*"},
		zlog,
	)
	if err != nil {
		zlog.Fatal("创建消费者失败", zap.Error(err))
	}
	defer consumer.Close()

	metrics.InitMetrics()
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			zlog.Error("metrics服务退出", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notifier := messaging.NewNotifier(consumer.Queue(), zlog)
	zlog.Info("开始消费订单事件", zap.String("queue", consumer.Queue()))
	if err := consumer.Consume(ctx, notifier.Handle); err != nil && !errors.Is(err, context.Canceled) {
		zlog.Error("消费中断", zap.Error(err))
	}
	zlog.Info("worker已退出")
}
