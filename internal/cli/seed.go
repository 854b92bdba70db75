package cli

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"ceramicflow/internal/app"
	"ceramicflow/internal/domain/auth"
	"ceramicflow/internal/domain/booking"
	"ceramicflow/internal/pkg/apperr"
)

func NewSeedCmd() *cobra.Command {
	var (
		username string
		password string
		date     string
		kinds    []string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a demo user and book slots for them",
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

			ctx := cmd.Context()

			user, _, err := a.Users.Register(ctx, auth.RegisterRequest{
				Username:    username,
				Password:    password,
				DisplayName: "Demo Potter",
			})
			if errors.Is(err, apperr.ErrConflict) {
				user, _, err = a.Users.Login(ctx, auth.LoginRequest{Username: username, Password: password})
			}
			if err != nil {
				return fmt.Errorf("seed user: %w", err)
			}
			log.Printf("seed: user id=%d username=%s", user.ID, user.Username)

			if date == "" {
				date = time.Now().In(cfg.Location).AddDate(0, 0, 1).Format("2006-01-02")
			}
			slots, err := a.Bookings.Availability(ctx, date)
			if err != nil {
				return err
			}

			booked := 0
			for i, kind := range kinds {
				if i >= len(slots) {
					log.Printf("seed: no free slots left on %s", date)
					break
				}
				at, err := a.Bookings.ResolveSlot(date, slots[i])
				if err != nil {
					return err
				}
				res, err := a.Bookings.Create(ctx, user.ID, booking.CreateInput{
					Label:       fmt.Sprintf("Demo %s session", kind),
					Date:        date,
					SlotInstant: at,
					Kind:        kind,
				})
				if err != nil {
					return fmt.Errorf("seed reservation %s: %w", kind, err)
				}
				booked++
				log.Printf("seed: reservation id=%d slot=%s kind=%s", res.ID, slots[i], kind)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded user %q with %d reservation(s) on %s\n", user.Username, booked, date)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "demo", "demo account username")
	cmd.Flags().StringVar(&password, "password", "demo1234", "demo account password")
	cmd.Flags().StringVar(&date, "date", "", "date to book (YYYY-MM-DD, default tomorrow)")
	cmd.Flags().StringSliceVar(&kinds, "kinds", []string{"mug", "vase", "plate"}, "artifact kinds to book")
	return cmd
}
