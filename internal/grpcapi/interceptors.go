package grpcapi

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func loggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("grpc request",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("dur", time.Since(start)))
		return resp, err
	}
}

// terminalLimiter meters Evaluate with one token bucket per terminal id.
type terminalLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func newTerminalLimiter(rps float64, burst int) *terminalLimiter {
	if burst < 1 {
		burst = 1
	}
	return &terminalLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (l *terminalLimiter) get(id string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[id]
	if !ok {
		lim = rate.NewLimiter(l.rps, l.burst)
		l.limiters[id] = lim
	}
	return lim
}

func (l *terminalLimiter) unary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if info.FullMethod != evaluateMethod {
		return handler(ctx, req)
	}
	in, ok := req.(*structpb.Struct)
	if !ok {
		return handler(ctx, req)
	}
	id := in.GetFields()["terminal_id"].GetStringValue()
	if id == "" {
		// Rejected downstream; nothing to meter.
		return handler(ctx, req)
	}
	if !l.get(id).Allow() {
		return nil, status.Errorf(codes.ResourceExhausted, "terminal %q is over its request rate", id)
	}
	return handler(ctx, req)
}
