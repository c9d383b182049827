package config

import "time"

const defaultPort = 8080

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "courier",
	Pass: "courier",
	Name: "offer_engine",
}

var defaultStoreGateway = Gateway{
	BaseURL:     "http://localhost:9080",
	Timeout:     5 * time.Second,
	MaxAttempts: 4,
	BaseDelay:   150 * time.Millisecond,
	MaxDelay:    1200 * time.Millisecond,
}

var defaultPayoutsGateway = Gateway{
	BaseURL:     "http://localhost:9081",
	Timeout:     3 * time.Second,
	MaxAttempts: 1,
}

var defaultKafka = Kafka{
	Topic:   "delivery-updates",
	GroupID: "offer-engine",
}

var defaultEngine = Engine{
	OfferCountdown: 30 * time.Second,
	CacheTTL:       30 * time.Minute,
	PollPageSize:   1000,
}

// DefaultPort returns the default HTTP port.
func DefaultPort() int { return defaultPort }

// DefaultDB returns the default database settings.
func DefaultDB() DB { return defaultDB }

// DefaultStoreGateway returns the default delivery store gateway settings.
func DefaultStoreGateway() Gateway { return defaultStoreGateway }

// DefaultPayoutsGateway returns the default payout eligibility gateway settings.
func DefaultPayoutsGateway() Gateway { return defaultPayoutsGateway }

// DefaultKafka returns the default push-event consumer settings.
func DefaultKafka() Kafka { return defaultKafka }

// DefaultEngine returns the default offer/cache tuning.
func DefaultEngine() Engine { return defaultEngine }
