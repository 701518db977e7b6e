package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"mentorship/config"
	"mentorship/database"
	"mentorship/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mentorship",
		Short:         "Mentorship scheduling service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(contextOf(cmd))
		},
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())
	return cmd
}

// bootstrap loads the configuration, builds the logger and opens the database.
func bootstrap() (config.Config, *zap.Logger, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("config: %w", err)
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("logger: %w", err)
	}

	log.Info("attempting to connect to database")
	db, err := database.Connect(cfg.PostgresDSN)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("database connect: %w", err)
	}

	return cfg, log, db, nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
