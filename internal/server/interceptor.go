package server

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/clarencejohnson126/angebotsagent/internal/common"
)

// RequestIDHeader carries a caller supplied request id.
const RequestIDHeader = "x-request-id"

// UnaryInterceptor attaches a request id and a request-scoped logger, logs
// every call and maps domain errors onto gRPC status codes.
func UnaryInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(RequestIDHeader); len(ids) > 0 && ids[0] != "" {
				ctx = common.WithRequestID(ctx, ids[0])
			}
		}
		ctx, rid := common.EnsureRequestID(ctx)
		log := logger.With(zap.String("request_id", rid), zap.String("method", info.FullMethod))
		ctx = common.WithLogger(ctx, log)

		resp, err := handler(ctx, req)
		err = common.ToStatus(err)
		elapsed := zap.Int64("elapsed_ms", time.Since(start).Milliseconds())
		if err != nil {
			log.Warn("grpc.call.failed", zap.String("code", status.Code(err).String()), zap.Error(err), elapsed)
			return nil, err
		}
		log.Info("grpc.call.ok", elapsed)
		return resp, nil
	}
}
