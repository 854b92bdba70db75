package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"ceramicflow/internal/app"
	"ceramicflow/internal/scheduler"
)

func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, push endpoint and stage scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := bootstrap()
			if err != nil {
				return err
			}

			a, err := app.New(cfg, db, true)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signalContext()
			defer stop()

			if err := a.StartBackground(ctx); err != nil {
				return err
			}

			sched := scheduler.New()
			if err := sched.Every(cfg.TickInterval, "advance-stages", func(ctx context.Context) error {
				_, err := a.Advancer.Tick(ctx)
				return err
			}); err != nil {
				return err
			}
			if err := sched.Schedule("@daily", "notification-cleanup", func(ctx context.Context) error {
				_, err := a.Cleanup.CleanupOldEvents(ctx)
				return err
			}); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			srv := &http.Server{
				Addr:              cfg.HTTPAddr,
				Handler:           a.Router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Printf("HTTP listening on %s", cfg.HTTPAddr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Println("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
