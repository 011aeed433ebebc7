package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/Renatocm0708/qr-access-nexus/internal/db"
	"github.com/Renatocm0708/qr-access-nexus/internal/grpcapi"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/types"
	"github.com/Renatocm0708/qr-access-nexus/internal/seed"
)

func newMigrateCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQLite migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if cfg.Store.Backend != "sqlite" {
				return fmt.Errorf("migrate needs store.backend=sqlite, got %q", cfg.Store.Backend)
			}
			conn, err := db.Open(cmd.Context(), db.Config{Path: cfg.Store.DBPath})
			if err != nil {
				return err
			}
			defer func(c *sql.DB) { _ = c.Close() }(conn)

			v, err := db.Version(cmd.Context(), conn)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d (%s)\n", v, cfg.Store.DBPath)
			return nil
		},
	}
}

func newSeedCmd(load loadFunc) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load fixtures (the demo set by default) into the configured store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			fx, err := loadFixtures(file)
			if err != nil {
				return err
			}

			b, err := openBackend(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer b.close()

			svc, err := newServices(cfg, b, nil, logger)
			if err != nil {
				return err
			}
			return applyFixtures(cmd.Context(), b, svc, fx, logger)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML fixtures file (default: built-in demo data)")
	return cmd
}

func loadFixtures(path string) (seed.Fixtures, error) {
	if path == "" {
		return seed.Demo()
	}
	f, err := os.Open(path)
	if err != nil {
		return seed.Fixtures{}, err
	}
	defer f.Close()
	return seed.Read(f)
}

// newEvaluateCmd asks a running server for a decision, the way a terminal
// would.
func newEvaluateCmd() *cobra.Command {
	var (
		addr string
		req  types.AccessRequest
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Send one access request to a running server over gRPC",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
			if err != nil {
				return err
			}
			defer conn.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			resp, err := grpcapi.NewClient(conn).Evaluate(ctx, req)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(resp, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:9090", "gRPC server address")
	cmd.Flags().StringVar(&req.PersonID, "person", "", "person id")
	cmd.Flags().StringVar(&req.DocumentID, "document", "", "document id (QR payload)")
	cmd.Flags().StringVar(&req.TerminalID, "terminal", "", "terminal id")
	cmd.Flags().StringVar(&req.Timestamp, "at", "", "timestamp (RFC3339 or 2006-01-02 15:04); default now")
	return cmd
}
