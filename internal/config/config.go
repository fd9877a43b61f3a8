package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type OAuthProvider struct {
	Key         string
	Secret      string
	CallbackURL string
}

// Enabled reports whether the provider has credentials configured.
func (p OAuthProvider) Enabled() bool {
	return p.Key != "" && p.Secret != ""
}

type Config struct {
	Addr               string
	DatabasePath       string
	MigrationsPath     string
	SessionLifetime    time.Duration
	CheckInWindow      time.Duration
	RegistrationGrace  time.Duration
	EventRetention     time.Duration
	CleanupInterval    time.Duration
	NATSURL            string
	CORSAllowedOrigins []string
	LogLevel           slog.Level
	Discord            OAuthProvider
	Google             OAuthProvider
}

// Load reads the configuration from the environment, after loading a .env
// file when one is present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg := &Config{
		Addr:           getenv("ADDR", ":8080"),
		DatabasePath:   getenv("DATABASE_PATH", "arena.db"),
		MigrationsPath: getenv("MIGRATIONS_PATH", "file://migrations"),
		NATSURL:        os.Getenv("NATS_URL"),
		Discord: OAuthProvider{
			Key:         os.Getenv("DISCORD_KEY"),
			Secret:      os.Getenv("DISCORD_SECRET"),
			CallbackURL: os.Getenv("DISCORD_CALLBACK_URL"),
		},
		Google: OAuthProvider{
			Key:         os.Getenv("GOOGLE_KEY"),
			Secret:      os.Getenv("GOOGLE_SECRET"),
			CallbackURL: os.Getenv("GOOGLE_CALLBACK_URL"),
		},
	}

	var err error
	if cfg.SessionLifetime, err = duration("SESSION_LIFETIME", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CheckInWindow, err = duration("CHECKIN_WINDOW", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RegistrationGrace, err = duration("REGISTRATION_GRACE", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.EventRetention, err = duration("EVENT_RETENTION", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CleanupInterval, err = duration("CLEANUP_INTERVAL", time.Hour); err != nil {
		return nil, err
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getenv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	for _, origin := range strings.Split(getenv("CORS_ALLOWED_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func duration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %s", key, d)
	}
	return d, nil
}
