package grpc_test

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"

	catalogrpc "github.com/shashiranjanraj/catalog/pkg/grpc"
)

func healthStatus(t *testing.T, probe func(context.Context) error) grpc_health_v1.HealthCheckResponse_ServingStatus {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := catalogrpc.New(probe)
	srv.Serve(context.Background(), lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	resp, err := grpc_health_v1.NewHealthClient(conn).Check(context.Background(),
		&grpc_health_v1.HealthCheckRequest{Service: catalogrpc.ServiceName})
	require.NoError(t, err)
	return resp.Status
}

func TestHealthServingWhenStoreUp(t *testing.T) {
	st := healthStatus(t, func(context.Context) error { return nil })
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, st)
}

func TestHealthNotServingWhenStoreDown(t *testing.T) {
	st := healthStatus(t, func(context.Context) error { return errors.New("no reachable servers") })
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, st)
}
