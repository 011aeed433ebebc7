package grpcapi

import (
	"context"
	"errors"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/apperr"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/service"
)

type Dependencies struct {
	Logger    *zap.Logger
	Evaluator *service.Evaluator
	// TerminalRPS and TerminalBurst bound Evaluate calls per terminal id.
	// A zero TerminalRPS disables the limit.
	TerminalRPS   float64
	TerminalBurst int
}

type Server struct {
	grpc      *grpc.Server
	health    *health.Server
	evaluator *service.Evaluator
	logger    *zap.Logger
	now       func() time.Time
}

var _ AccessControlServer = (*Server)(nil)

func NewServer(d Dependencies) *Server {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	interceptors := []grpc.UnaryServerInterceptor{loggingInterceptor(logger)}
	if d.TerminalRPS > 0 {
		interceptors = append(interceptors, newTerminalLimiter(d.TerminalRPS, d.TerminalBurst).unary)
	}

	s := &Server{
		grpc:      grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...)),
		health:    health.NewServer(),
		evaluator: d.Evaluator,
		logger:    logger,
		now:       time.Now,
	}
	s.grpc.RegisterService(&ServiceDesc, s)
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return s
}

// Serve blocks until the listener fails or the server stops.
func (s *Server) Serve(lis net.Listener) error {
	err := s.grpc.Serve(lis)
	if errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}
	return err
}

// Shutdown reports NOT_SERVING, then stops gracefully or hard when ctx ends.
func (s *Server) Shutdown(ctx context.Context) {
	s.health.Shutdown()
	done := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.grpc.Stop()
	}
}

func (s *Server) Evaluate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := accessRequestFromStruct(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	entry, err := s.evaluator.Evaluate(ctx, req)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return accessResponseToStruct(entry.Response()), nil
}

func (s *Server) Now(context.Context, *emptypb.Empty) (*timestamppb.Timestamp, error) {
	return timestamppb.New(s.now()), nil
}

func (s *Server) toStatus(err error) error {
	switch {
	case errors.Is(err, apperr.ErrValidation), errors.Is(err, apperr.ErrInvalidTimestamp):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, apperr.ErrDuplicateID):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, apperr.ErrInUse):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	s.logger.Error("evaluate failed", zap.Error(err))
	return status.Error(codes.Internal, "unexpected server error")
}
