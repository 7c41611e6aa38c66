// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds everything outside the DB connection, which internal/db reads
// from the environment itself.
type Config struct {
	Port              string
	AMQPURL           string
	ProviderBaseURL   string
	SchedulerInterval time.Duration
	SendDelay         time.Duration
	StuckSendingAfter time.Duration
}

func Load() Config {
	return Config{
		Port:              getenv("PORT", "8080"),
		AMQPURL:           os.Getenv("AMQP_URL"),
		ProviderBaseURL:   getenv("PROVIDER_BASE_URL", "https://api.whatsapp-provider.example.com"),
		SchedulerInterval: duration("SCHEDULER_INTERVAL", 30*time.Second),
		SendDelay:         millis("SEND_DELAY_MS", 500*time.Millisecond),
		StuckSendingAfter: duration("STUCK_SENDING_AFTER", 30*time.Minute),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func millis(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms < 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}
