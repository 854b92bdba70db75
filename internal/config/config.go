package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPAddr              = ":8080"
	defaultDatabaseURL           = "ceramicflow.db"
	defaultJWTSecret             = "change-me-jwt-secret"
	defaultJWTTTL                = "3h"
	defaultTimezone              = "UTC"
	defaultOpenHour              = "10"
	defaultCloseHour             = "22"
	defaultTickInterval          = "15s"
	defaultSelectionPolicy       = "random"
	defaultNotableStages         = "painting,finished"
	defaultStrictReschedule      = "false"
	defaultNotificationRetention = "720h"
	defaultPushChannel           = "ceramicflow:push"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	DatabaseURL string

	JWTSecret string
	JWTTTL    time.Duration

	Location  *time.Location
	OpenHour  int
	CloseHour int

	TickInterval     time.Duration
	SelectionPolicy  string
	NotableStages    []string
	StrictReschedule bool

	NotificationRetention time.Duration

	RedisURL    string
	PushChannel string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	CORSAllowedOrigins []string
}

// InMemory reports whether DATABASE_URL selects the in-process store.
func (c *Config) InMemory() bool {
	return c.DatabaseURL == "memory"
}

// SMSEnabled reports whether all Twilio settings are present.
func (c *Config) SMSEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioFromNumber != ""
}

func Load() (*Config, error) {
	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}

	tz := strings.TrimSpace(getEnv("TIMEZONE", defaultTimezone))
	cfg.Location, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE value %q: %w", tz, err)
	}

	cfg.OpenHour, err = parseIntEnv("WORKDAY_OPEN_HOUR", defaultOpenHour)
	if err != nil {
		return nil, err
	}
	cfg.CloseHour, err = parseIntEnv("WORKDAY_CLOSE_HOUR", defaultCloseHour)
	if err != nil {
		return nil, err
	}

	cfg.TickInterval, err = parseDurationEnv("TICK_INTERVAL", defaultTickInterval)
	if err != nil {
		return nil, err
	}
	cfg.SelectionPolicy = strings.ToLower(strings.TrimSpace(getEnv("SELECTION_POLICY", defaultSelectionPolicy)))
	cfg.NotableStages = parseListEnv("NOTABLE_STAGES", defaultNotableStages)
	cfg.StrictReschedule = parseBoolEnv("STRICT_RESCHEDULE", defaultStrictReschedule)

	cfg.NotificationRetention, err = parseDurationEnv("NOTIFICATION_RETENTION", defaultNotificationRetention)
	if err != nil {
		return nil, err
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.PushChannel = strings.TrimSpace(getEnv("PUSH_CHANNEL", defaultPushChannel))

	cfg.TwilioAccountSID = strings.TrimSpace(os.Getenv("TWILIO_ACCOUNT_SID"))
	cfg.TwilioAuthToken = strings.TrimSpace(os.Getenv("TWILIO_AUTH_TOKEN"))
	cfg.TwilioFromNumber = strings.TrimSpace(os.Getenv("TWILIO_FROM_NUMBER"))

	cfg.CORSAllowedOrigins = parseListEnv("CORS_ALLOWED_ORIGINS", "")

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log.Printf("config loaded: env=%s addr=%s tick=%s policy=%s tz=%s redis=%t sms=%t",
		cfg.AppEnv, cfg.HTTPAddr, cfg.TickInterval, cfg.SelectionPolicy, cfg.Location, cfg.RedisURL != "", cfg.SMSEnabled())

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.OpenHour < 0 || cfg.CloseHour > 24 || cfg.OpenHour >= cfg.CloseHour {
		return fmt.Errorf("WORKDAY_OPEN_HOUR and WORKDAY_CLOSE_HOUR must satisfy 0 <= open < close <= 24")
	}
	if cfg.TickInterval < time.Second {
		return fmt.Errorf("TICK_INTERVAL must be >= 1s")
	}
	switch cfg.SelectionPolicy {
	case "random", "round_robin", "batch":
	default:
		return fmt.Errorf("SELECTION_POLICY must be one of: random, round_robin, batch")
	}
	if cfg.NotificationRetention <= 0 {
		return fmt.Errorf("NOTIFICATION_RETENTION must be > 0")
	}
	if cfg.PushChannel == "" {
		return fmt.Errorf("PUSH_CHANNEL must not be empty")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func parseListEnv(name, fallback string) []string {
	raw := getEnv(name, fallback)
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
