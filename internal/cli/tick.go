package cli

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"ceramicflow/internal/app"
)

func NewTickCmd() *cobra.Command {
	var rounds int

	cmd := &cobra.Command{
		Use:   "tick",
		Short: "Run stage advancement rounds once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if rounds < 1 {
				return fmt.Errorf("--rounds must be >= 1")
			}

			cfg, db, err := bootstrap()
			if err != nil {
				return err
			}
			a, err := app.New(cfg, db, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.Relay == nil {
				log.Println("REDIS_URL not set: stage updates will not be pushed to live clients")
			}

			ctx, stop := signalContext()
			defer stop()

			total := 0
			for i := 0; i < rounds; i++ {
				moved, err := a.Advancer.Tick(ctx)
				if err != nil {
					return err
				}
				total += moved
			}
			fmt.Fprintf(cmd.OutOrStdout(), "advanced %d artifact(s) in %d round(s)\n", total, rounds)
			return nil
		},
	}
	cmd.Flags().IntVar(&rounds, "rounds", 1, "number of ticks to run")
	return cmd
}
