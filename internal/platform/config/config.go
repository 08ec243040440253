package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	strutil "comphub/pkg/platform/strings"
)

// Config captures everything main needs to wire the process.
type Config struct {
	Addr          string
	JWTSigningKey string
	Postgres      PostgresConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	Reminders     ReminderConfig
	Files         FileConfig
}

// PostgresConfig holds connection pool settings for the relational store.
type PostgresConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds client settings for the notifier's dispatch locks.
// An empty URL disables Redis-backed locking.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds broker settings for the history outbox publisher.
// An empty broker list disables the publisher.
type KafkaConfig struct {
	Brokers      []string
	HistoryTopic string
	PollInterval time.Duration
}

// ReminderConfig controls the due-reminder notifier worker.
type ReminderConfig struct {
	ScanInterval time.Duration
	LockTTL      time.Duration
}

// FileConfig locates the blob store backing comp file attachments.
type FileConfig struct {
	Dir string
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Addr:          envOr("COMPHUB_ADDR", ":8080"),
		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		Postgres: PostgresConfig{
			URL:             envOr("COMPHUB_DATABASE_URL", "postgres://localhost:5432/comphub?sslmode=disable"),
			MaxOpenConns:    envIntOr("COMPHUB_DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envIntOr("COMPHUB_DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDurationOr("COMPHUB_DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("COMPHUB_REDIS_URL"),
			PoolSize:     envIntOr("COMPHUB_REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("COMPHUB_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDurationOr("COMPHUB_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationOr("COMPHUB_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationOr("COMPHUB_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:      envList("COMPHUB_KAFKA_BROKERS"),
			HistoryTopic: envOr("COMPHUB_KAFKA_HISTORY_TOPIC", "comp-history-events"),
			PollInterval: envDurationOr("COMPHUB_OUTBOX_POLL_INTERVAL", 5*time.Second),
		},
		Reminders: ReminderConfig{
			ScanInterval: envDurationOr("COMPHUB_REMINDER_SCAN_INTERVAL", time.Minute),
			LockTTL:      envDurationOr("COMPHUB_REMINDER_LOCK_TTL", 10*time.Minute),
		},
		Files: FileConfig{
			Dir: envOr("COMPHUB_FILES_DIR", "data/files"),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	return strutil.DedupeAndTrim(strings.Split(v, ","))
}
