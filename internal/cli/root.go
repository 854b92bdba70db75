package cli

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"ceramicflow/internal/app"
	"ceramicflow/internal/config"
	"ceramicflow/internal/database"
)

func NewRoot() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:          "ceramicflow",
		Short:        "Ceramics studio reservations and production tracking",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// a missing .env is fine, a broken one is not
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewTickCmd())
	cmd.AddCommand(NewCleanupCmd())
	cmd.AddCommand(NewSeedCmd())
	return cmd
}

// bootstrap loads config, connects and migrates. The db is nil when
// DATABASE_URL=memory.
func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.InMemory() {
		log.Println("Using in-memory store; data is lost on exit")
		return cfg, nil, nil
	}
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := app.Migrate(db); err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
