package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Renatocm0708/qr-access-nexus/internal/config"
	"github.com/Renatocm0708/qr-access-nexus/internal/logger"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:           "qr-access-nexus",
		Short:         "Access-control backend: schedules, people, QR credentials and access logs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./config/config.yaml or ./config.yaml)")

	load := func() (*config.Config, *zap.Logger, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, nil, err
		}
		log, err := logger.New(cfg.Log)
		if err != nil {
			return nil, nil, err
		}
		return cfg, log.Named("qr-access-nexus"), nil
	}

	root.AddCommand(
		newServeCmd(load),
		newMigrateCmd(load),
		newSeedCmd(load),
		newEvaluateCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type loadFunc func() (*config.Config, *zap.Logger, error)
