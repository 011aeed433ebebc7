package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Renatocm0708/qr-access-nexus/internal/events"
	"github.com/Renatocm0708/qr-access-nexus/internal/grpcapi"
	"github.com/Renatocm0708/qr-access-nexus/internal/httpapi"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/service"
	"github.com/Renatocm0708/qr-access-nexus/internal/seed"
)

func newServeCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP admin API, the gRPC terminal API and the terminal sweeper",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			b, err := openBackend(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer b.close()

			var pub service.Publisher
			if cfg.AMQP.URL != "" {
				p, err := events.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange, logger.Named("amqp"))
				if err != nil {
					logger.Warn("amqp disabled", zap.Error(err))
				} else {
					defer p.Close()
					pub = p
				}
			}

			svc, err := newServices(cfg, b, pub, logger)
			if err != nil {
				return err
			}

			if cfg.Seed {
				if err := applyDemo(ctx, b, svc, logger); err != nil {
					return err
				}
			}

			sweeper := service.NewTerminalSweeper(b.terminals, service.SweeperConfig{
				OfflineAfter: cfg.Terminal.OfflineAfter,
				Interval:     cfg.Terminal.SweepInterval,
			}, logger.Named("sweeper"))
			sweeper.Start(ctx)
			defer sweeper.Stop()

			httpSrv := httpapi.NewServer(httpapi.Dependencies{
				Logger:       logger.Named("http"),
				Addr:         cfg.HTTP.Addr,
				Registry:     svc.registry,
				Evaluator:    svc.evaluator,
				Terminals:    svc.terminals,
				Logs:         b.logs,
				AllowOrigins: cfg.HTTP.AllowOrigin,
				RateLimit:    cfg.HTTP.RateLimit,
			})

			go func() {
				logger.Info("http listening", zap.String("addr", cfg.HTTP.Addr))
				if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server error", zap.Error(err))
					stop()
				}
			}()

			var grpcSrv *grpcapi.Server
			if cfg.GRPC.Addr != "" {
				lis, err := net.Listen("tcp", cfg.GRPC.Addr)
				if err != nil {
					return err
				}
				grpcSrv = grpcapi.NewServer(grpcapi.Dependencies{
					Logger:        logger.Named("grpc"),
					Evaluator:     svc.evaluator,
					TerminalRPS:   cfg.GRPC.TerminalRPS,
					TerminalBurst: cfg.GRPC.TerminalBurst,
				})
				go func() {
					logger.Info("grpc listening", zap.String("addr", cfg.GRPC.Addr))
					if err := grpcSrv.Serve(lis); err != nil {
						logger.Error("grpc server error", zap.Error(err))
						stop()
					}
				}()
			}

			<-ctx.Done()
			logger.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if grpcSrv != nil {
				grpcSrv.Shutdown(shutdownCtx)
			}
			_ = httpSrv.Shutdown(shutdownCtx)
			return nil
		},
	}
}

// applyDemo loads the demo fixtures. Requests are only replayed into an
// empty log.
func applyDemo(ctx context.Context, b *backend, svc *services, logger *zap.Logger) error {
	fx, err := seed.Demo()
	if err != nil {
		return err
	}
	return applyFixtures(ctx, b, svc, fx, logger)
}

func applyFixtures(ctx context.Context, b *backend, svc *services, fx seed.Fixtures, logger *zap.Logger) error {
	targets := seed.Targets{
		Registry:  svc.registry,
		Terminals: svc.terminals,
		Logger:    logger.Named("seed"),
	}
	empty, err := logEmpty(ctx, b.logs)
	if err != nil {
		return err
	}
	if empty {
		targets.Evaluator = svc.evaluator
	}
	_, err = seed.Apply(ctx, targets, fx)
	return err
}
