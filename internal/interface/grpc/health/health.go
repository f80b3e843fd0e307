// Package health gRPC健康检查服务
//
// 负载均衡器和k8s探针通过grpc.health.v1.Health/Check访问：
//
//	grpcurl -plaintext localhost:9090 grpc.health.v1.Health/Check
//	grpcurl -plaintext -d '{"service":"mysql"}' localhost:9090 grpc.health.v1.Health/Check
//
// 空服务名代表整体状态：所有依赖都正常才是SERVING。
package health

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Check 依赖探测，返回nil表示正常
type Check func(ctx context.Context) error

// Server 定期探测依赖并更新健康状态
type Server struct {
	hs       *grpchealth.Server
	checks   map[string]Check
	names    []string
	interval time.Duration
	timeout  time.Duration
	log      *zap.Logger
}

// NewServer 创建健康检查服务，初始状态为NOT_SERVING
func NewServer(checks map[string]Check, interval time.Duration, log *zap.Logger) *Server {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	s := &Server{
		hs:       grpchealth.NewServer(),
		checks:   checks,
		names:    names,
		interval: interval,
		timeout:  interval / 2,
		log:      log,
	}
	s.hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	for _, name := range names {
		s.hs.SetServingStatus(name, healthpb.HealthCheckResponse_NOT_SERVING)
	}
	return s
}

// Register 注册到gRPC服务器
func (s *Server) Register(g *grpc.Server) {
	healthpb.RegisterHealthServer(g, s.hs)
}

// Run 立即探测一次，之后每interval探测一次，直到ctx取消
func (s *Server) Run(ctx context.Context) {
	s.Probe(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Probe(ctx)
		}
	}
}

// Probe 执行全部探测并更新状态
func (s *Server) Probe(ctx context.Context) {
	overall := healthpb.HealthCheckResponse_SERVING
	for _, name := range s.names {
		checkCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.checks[name](checkCtx)
		cancel()

		status := healthpb.HealthCheckResponse_SERVING
		if err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			overall = healthpb.HealthCheckResponse_NOT_SERVING
			s.log.Warn("依赖健康检查失败", zap.String("dependency", name), zap.Error(err))
		}
		s.hs.SetServingStatus(name, status)
	}
	s.hs.SetServingStatus("", overall)
}

// Shutdown 所有服务置为NOT_SERVING，正在Watch的客户端会收到通知
func (s *Server) Shutdown() {
	s.hs.Shutdown()
}

// Status 查询某个服务当前状态
func (s *Server) Status(ctx context.Context, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := s.hs.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.Status, nil
}

// NewGRPCServer 创建只承载健康检查和反射的gRPC服务器
func NewGRPCServer(s *Server) *grpc.Server {
	g := grpc.NewServer()
	s.Register(g)
	reflection.Register(g)
	return g
}
