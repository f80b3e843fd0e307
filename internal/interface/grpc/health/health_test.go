package health

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/proto"
)

func TestProbe(t *testing.T) {
	ctx := context.Background()
	var redisErr error
	s := NewServer(map[string]Check{
		"mysql": func(context.Context) error { return nil },
		"redis": func(context.Context) error { return redisErr },
	}, time.Second, zap.NewNop())

	st, err := s.Status(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, st, "探测前不对外服务")

	s.Probe(ctx)
	st, _ = s.Status(ctx, "")
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, st)

	redisErr = errors.New("dial tcp: connection refused")
	s.Probe(ctx)
	st, _ = s.Status(ctx, "")
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, st)
	st, _ = s.Status(ctx, "redis")
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, st)
	st, _ = s.Status(ctx, "mysql")
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, st)

	_, err = s.Status(ctx, "kafka")
	assert.Equal(t, codes.NotFound, status.Code(err), "未注册的服务")
}

func TestOverGRPC(t *testing.T) {
	s := NewServer(map[string]Check{
		"mysql": func(context.Context) error { return nil },
	}, time.Second, zap.NewNop())
	s.Probe(context.Background())

	lis := bufconn.Listen(1 << 20)
	g := NewGRPCServer(s)
	go func() { _ = g.Serve(lis) }()
	defer g.Stop()

	conn, err := grpc.Dial("bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := healthpb.NewHealthClient(conn)
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.True(t, proto.Equal(&healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, resp))

	s.Shutdown()
	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: "mysql"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)
}
