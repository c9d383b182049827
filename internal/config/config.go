package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// DB stores database connection settings.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN builds a postgres connection string.
func (d DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Pass, d.Host, d.Port, d.Name)
}

// Gateway stores settings shared by the outbound REST gateways.
type Gateway struct {
	BaseURL     string
	Timeout     time.Duration
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Kafka stores the push-event consumer settings. Empty brokers disable the
// consumer.
type Kafka struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Engine stores offer and cache tuning knobs.
type Engine struct {
	OfferCountdown time.Duration
	CacheTTL       time.Duration
	PollPageSize   int
}

// Config stores the service settings.
type Config struct {
	Port    int
	DB      DB
	Store   Gateway
	Payouts Gateway
	Kafka   Kafka
	Engine  Engine
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port:    DefaultPort(),
		DB:      DefaultDB(),
		Store:   DefaultStoreGateway(),
		Payouts: DefaultPayoutsGateway(),
		Kafka:   DefaultKafka(),
		Engine:  DefaultEngine(),
	}

	cfg.Port = envInt("PORT", cfg.Port)
	cfg.DB.Host = envStr("DB_HOST", cfg.DB.Host)
	cfg.DB.Port = envStr("DB_PORT", cfg.DB.Port)
	cfg.DB.User = envStr("DB_USER", cfg.DB.User)
	cfg.DB.Pass = envStr("DB_PASS", cfg.DB.Pass)
	cfg.DB.Name = envStr("DB_NAME", cfg.DB.Name)
	cfg.Store.BaseURL = envStr("DELIVERY_STORE_URL", cfg.Store.BaseURL)
	cfg.Payouts.BaseURL = envStr("PAYOUTS_URL", cfg.Payouts.BaseURL)
	cfg.Kafka.Brokers = envList("KAFKA_BROKERS", cfg.Kafka.Brokers)
	cfg.Kafka.Topic = envStr("KAFKA_TOPIC", cfg.Kafka.Topic)
	cfg.Kafka.GroupID = envStr("KAFKA_GROUP_ID", cfg.Kafka.GroupID)
	cfg.Engine.OfferCountdown = envDuration("OFFER_COUNTDOWN", cfg.Engine.OfferCountdown)
	cfg.Engine.CacheTTL = envDuration("CACHE_TTL", cfg.Engine.CacheTTL)
	cfg.Engine.PollPageSize = envInt("POLL_PAGE_SIZE", cfg.Engine.PollPageSize)

	pflag.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	pflag.StringVar(&cfg.Store.BaseURL, "store-url", cfg.Store.BaseURL, "remote delivery store base URL")
	pflag.StringVar(&cfg.Payouts.BaseURL, "payouts-url", cfg.Payouts.BaseURL, "payout eligibility service base URL")
	pflag.Parse()

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Port)
	}
	if cfg.Engine.OfferCountdown <= 0 {
		return nil, fmt.Errorf("invalid offer countdown: %s", cfg.Engine.OfferCountdown)
	}
	if cfg.Engine.CacheTTL <= 0 {
		return nil, fmt.Errorf("invalid cache ttl: %s", cfg.Engine.CacheTTL)
	}
	if cfg.Engine.PollPageSize <= 0 {
		return nil, fmt.Errorf("invalid poll page size: %d", cfg.Engine.PollPageSize)
	}
	return cfg, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
