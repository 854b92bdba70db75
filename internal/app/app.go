// Package app assembles the service from configuration: stores, domain services,
// push fan-out and the HTTP router.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"ceramicflow/internal/config"
	"ceramicflow/internal/database"
	"ceramicflow/internal/domain/auth"
	"ceramicflow/internal/domain/booking"
	"ceramicflow/internal/domain/notification"
	"ceramicflow/internal/domain/progress"
	"ceramicflow/internal/pkg/jwt"
	"ceramicflow/internal/server"
	"ceramicflow/internal/storage/memstore"
)

// Models lists every persisted table.
func Models() []any {
	return []any{
		&auth.User{},
		&booking.Reservation{},
		&booking.Artifact{},
		&notification.Event{},
	}
}

func Migrate(db *gorm.DB) error {
	return database.Migrate(db, Models()...)
}

type App struct {
	Config *config.Config
	DB     *gorm.DB

	Users    *auth.Service
	Bookings *booking.Service
	Events   *notification.Service
	Cleanup  *notification.CleanupService
	Advancer *progress.Advancer

	Hub   *notification.Hub
	Relay *notification.RedisRelay
	SMS   *notification.SMSReminder

	Router *gin.Engine

	redis *redis.Client
}

type userStore interface {
	auth.UserRepository
	notification.ContactBook
}

type ledgerStore interface {
	booking.Repository
	progress.Store
}

type stores struct {
	users  userStore
	ledger ledgerStore
	events notification.Repository
}

func gormStores(db *gorm.DB) stores {
	return stores{
		users:  auth.NewUserRepository(db),
		ledger: booking.NewRepository(db),
		events: notification.NewRepository(db),
	}
}

// memoryStores keeps everything in process; state is lost on exit.
func memoryStores() stores {
	ledger := memstore.New()
	return stores{
		users:  memstore.NewUsers(),
		ledger: ledger,
		events: ledger,
	}
}

// New wires the application. A nil db selects the in-memory stores. withHub is
// false for processes that hold no push connections (the tick command); they
// publish through Redis when configured.
func New(cfg *config.Config, db *gorm.DB, withHub bool) (*App, error) {
	a := &App{Config: cfg, DB: db}

	st := memoryStores()
	if db != nil {
		st = gormStores(db)
	}

	tokens := jwt.New(cfg.JWTSecret, cfg.JWTTTL)
	gate := auth.NewTokenGate(tokens)
	a.Users = auth.NewService(st.users, tokens)

	a.Bookings = booking.NewService(st.ledger, booking.Options{
		Location:         cfg.Location,
		OpenHour:         cfg.OpenHour,
		CloseHour:        cfg.CloseHour,
		StrictReschedule: cfg.StrictReschedule,
	})

	a.Events = notification.NewService(st.events)
	a.Cleanup = notification.NewCleanupService(st.events, cfg.NotificationRetention)

	if withHub {
		a.Hub = notification.NewHub()
	}

	var publisher progress.Publisher
	if cfg.RedisURL != "" {
		rdb, err := notification.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.redis = rdb
		a.Relay = notification.NewRedisRelay(rdb, cfg.PushChannel, a.Hub)
		publisher = a.Relay
	} else if a.Hub != nil {
		publisher = a.Hub
	}

	var reminders progress.Reminders
	if cfg.SMSEnabled() {
		sender := notification.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken)
		a.SMS = notification.NewSMSReminder(sender, st.users, cfg.TwilioFromNumber, 64)
		reminders = a.SMS
	}

	notable, err := NotableStages(cfg.NotableStages)
	if err != nil {
		return nil, err
	}
	selector, err := progress.NewSelector(cfg.SelectionPolicy)
	if err != nil {
		return nil, err
	}
	a.Advancer = progress.NewAdvancer(st.ledger, selector, publisher, progress.Options{
		Notable:   notable,
		Reminders: reminders,
	})

	if a.Hub != nil {
		a.Router = server.NewRouter(server.Deps{
			Gate:          gate,
			Auth:          auth.NewHandler(a.Users),
			Booking:       booking.NewHandler(a.Bookings),
			Notifications: notification.NewHandler(a.Events),
			WS:            notification.NewWSHandler(a.Hub, gate),
			CORSOrigins:   cfg.CORSAllowedOrigins,
		})
	}

	return a, nil
}

// StartBackground starts the Redis relay subscriber and the SMS worker when
// configured. Both stop when ctx is cancelled.
func (a *App) StartBackground(ctx context.Context) error {
	if a.Relay != nil && a.Hub != nil {
		if err := a.Relay.Start(ctx); err != nil {
			return err
		}
	}
	if a.SMS != nil {
		go a.SMS.Run(ctx)
		log.Println("sms reminders enabled")
	}
	return nil
}

func (a *App) Close() {
	if a.Hub != nil {
		a.Hub.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Printf("redis close: %v", err)
		}
	}
	if a.DB == nil {
		return
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
}

// NotableStages parses configured stage names.
func NotableStages(names []string) ([]booking.Stage, error) {
	out := make([]booking.Stage, 0, len(names))
	for _, n := range names {
		st, err := booking.ParseStage(n)
		if err != nil {
			return nil, fmt.Errorf("NOTABLE_STAGES: %w", err)
		}
		out = append(out, st)
	}
	return out, nil
}
