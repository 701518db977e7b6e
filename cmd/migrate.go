package cmd

import (
	"mentorship/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply, roll back or report the database schema migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) == 1 {
				command = args[0]
			}

			_, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer db.Close()
			defer func() { _ = log.Sync() }()

			if err := database.Migrate(contextOf(cmd), db, command); err != nil {
				return err
			}
			log.Info("migrations done", zap.String("command", command))
			return nil
		},
	}
}
