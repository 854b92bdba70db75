package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ceramicflow/internal/app"
)

func NewCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete notifications older than NOTIFICATION_RETENTION",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := bootstrap()
			if err != nil {
				return err
			}
			a, err := app.New(cfg, db, false)
			if err != nil {
				return err
			}
			defer a.Close()

			deleted, err := a.Cleanup.CleanupOldEvents(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d notification(s)\n", deleted)
			return nil
		},
	}
}
