package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config gathers every environment-driven setting in one place so the
// rest of the code receives explicit values instead of reading the
// environment ad hoc.
type Config struct {
	Port string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	RedisAddr   string
	KafkaBroker string

	JWTSecret string

	Slack SlackConfig
	Leave LeavePolicy
}

type SlackConfig struct {
	BotToken        string
	SigningSecret   string
	FallbackChannel string
}

// LeavePolicy holds the configurable business rules. "Retrospective"
// leave types may only start in the past (e.g. Unplanned, Emergency).
type LeavePolicy struct {
	RetrospectiveTypes        []string
	RetrospectiveLookbackDays int
	ReminderDelay             time.Duration
}

func (p LeavePolicy) IsRetrospective(leaveType string) bool {
	for _, t := range p.RetrospectiveTypes {
		if strings.EqualFold(t, leaveType) {
			return true
		}
	}
	return false
}

func Load() (Config, error) {
	cfg := Config{
		Port:       getenv("PORT", "3000"),
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBSSLMode:  getenv("DB_SSLMODE", "disable"),

		RedisAddr:   getenv("REDIS_ADDR", "localhost:6379"),
		KafkaBroker: os.Getenv("KAFKA_BROKER"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		Slack: SlackConfig{
			BotToken:        os.Getenv("SLACK_BOT_TOKEN"),
			SigningSecret:   os.Getenv("SLACK_SIGNING_SECRET"),
			FallbackChannel: os.Getenv("SLACK_FALLBACK_CHANNEL"),
		},
		Leave: LeavePolicy{
			RetrospectiveTypes:        splitCSV(getenv("LEAVE_RETROSPECTIVE_TYPES", "Unplanned,Emergency")),
			RetrospectiveLookbackDays: getenvInt("LEAVE_RETROSPECTIVE_LOOKBACK_DAYS", 30),
			ReminderDelay:             getenvDuration("LEAVE_REMINDER_DELAY", 24*time.Hour),
		},
	}

	if cfg.Slack.SigningSecret == "" {
		return Config{}, fmt.Errorf("SLACK_SIGNING_SECRET is required")
	}
	if cfg.Slack.BotToken == "" {
		return Config{}, fmt.Errorf("SLACK_BOT_TOKEN is required")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
