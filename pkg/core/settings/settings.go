// Package settings reads the API server configuration from the environment.
package settings

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"obra_tracker/pkg/core/finance"
	"obra_tracker/pkg/core/notify"
)

type Settings struct {
	AppPort                 string
	DatabaseURL             string // empty: in-memory store
	RedisAddr               string // empty: in-memory cache
	RedisPassword           string
	JWTSecret               string
	AllowedOrigins          []string
	InflationBaseURL        string
	DefaultMonthlyInflation float64
	DaysPerMonth            float64
	ReminderCron            string
	DeliveryWarningDays     int
	ResourcesDir            string
	ModelsConfig            string
}

// Load reads the environment. JWT_SECRET is required.
func Load() (*Settings, error) {
	s := &Settings{
		AppPort:          envOr("APP_PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		AllowedOrigins:   splitList(envOr("ALLOWED_ORIGINS", "*")),
		InflationBaseURL: envOr("BCB_BASE_URL", "https://api.bcb.gov.br"),
		ReminderCron:     envOr("REMINDER_CRON", "0 7 * * *"),
		ResourcesDir:     envOr("RESOURCES_DIR", "resources"),
		ModelsConfig:     envOr("MODELS_CONFIG", "config/models.yaml"),
	}
	if s.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET env var is missing")
	}

	var err error
	if s.DefaultMonthlyInflation, err = floatEnv("DEFAULT_MONTHLY_INFLATION", 0.004); err != nil {
		return nil, err
	}
	if s.DaysPerMonth, err = floatEnv("DAYS_PER_MONTH", finance.DefaultDaysPerMonth); err != nil {
		return nil, err
	}
	if s.DaysPerMonth <= 0 {
		return nil, fmt.Errorf("DAYS_PER_MONTH must be positive")
	}
	if s.DeliveryWarningDays, err = intEnv("DELIVERY_WARNING_DAYS", notify.DefaultWarningDays); err != nil {
		return nil, err
	}
	return s, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func floatEnv(key string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return f, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
