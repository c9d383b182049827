package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"github.com/fabio1974/courier-offer-engine/internal/config"
	"github.com/fabio1974/courier-offer-engine/internal/gateway/deliverystore"
	"github.com/fabio1974/courier-offer-engine/internal/gateway/payouts"
	"github.com/fabio1974/courier-offer-engine/internal/http/handlers"
	"github.com/fabio1974/courier-offer-engine/internal/http/router"
	"github.com/fabio1974/courier-offer-engine/internal/logx"
	"github.com/fabio1974/courier-offer-engine/internal/pubsub"
	"github.com/fabio1974/courier-offer-engine/internal/repository"
	"github.com/fabio1974/courier-offer-engine/internal/service/cache"
	"github.com/fabio1974/courier-offer-engine/internal/service/ledger"
	"github.com/fabio1974/courier-offer-engine/internal/service/offers"
	"github.com/fabio1974/courier-offer-engine/internal/service/progress"
	syncsvc "github.com/fabio1974/courier-offer-engine/internal/service/sync"
	"github.com/fabio1974/courier-offer-engine/internal/transport/kafka"
)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dbConnect func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error)
	logFatalf func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect: connectDbWithRetry,
		logFatalf: log.Fatalf,
	}
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(
	fn func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error),
) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds the container for the HTTP session service
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx, registerHTTP)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

// MustBuildWorker builds the container for the push-event worker
func (b *ContainerBuilder) MustBuildWorker(ctx context.Context) *dig.Container {
	container, err := b.build(ctx, registerKafka)
	if err != nil {
		b.logFatalf("failed to build worker container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) build(ctx context.Context, surface func(*dig.Container) error) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerDb(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerGateways(container); err != nil {
		return nil, fmt.Errorf("gateways: %w", err)
	}
	if err := registerService(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := surface(container); err != nil {
		return nil, fmt.Errorf("surface: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds the HTTP session service container
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

// MustBuildWorkerContainer builds the push-event worker container
func MustBuildWorkerContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuildWorker(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context) error {
	return provideAll(container,
		func() context.Context { return ctx },
		NewLogger,
		config.Load,
		newMetricsSet,
		func(set *metricsSet) *prometheus.Registry { return set.registry },
		pubsub.NewBus,
		func() cache.Clock { return cache.RealClock{} },
	)
}

func registerDb(
	container *dig.Container,
	dbConnect func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error),
) error {
	providerDB := func(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
		pool, err := dbConnect(ctx, cfg.DB.DSN(), 10, time.Second)
		if err != nil {
			return nil, err
		}
		if err := repository.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return pool, nil
	}
	return provideAll(container, providerDB)
}

func registerGateways(container *dig.Container) error {
	return provideAll(container,
		func(cfg *config.Config, logger logx.Logger, set *metricsSet) *deliverystore.RetryingStore {
			client := deliverystore.NewClient(cfg.Store.BaseURL, cfg.Store.Timeout)
			return deliverystore.NewRetryingStore(client, logger, set.gatewayRetries, deliverystore.RetryConfig{
				MaxAttempts: cfg.Store.MaxAttempts,
				BaseDelay:   cfg.Store.BaseDelay,
				MaxDelay:    cfg.Store.MaxDelay,
			})
		},
		func(cfg *config.Config) *payouts.Client {
			return payouts.NewClient(cfg.Payouts.BaseURL, cfg.Payouts.Timeout)
		},
	)
}

func registerService(container *dig.Container) error {
	return provideAll(container,
		repository.NewLedgerRepo,
		repository.NewCacheRepo,
		func(repo *repository.LedgerRepo, logger logx.Logger) *ledger.Service {
			return ledger.NewService(repo, logger)
		},
		func(
			repo *repository.CacheRepo,
			remote *deliverystore.RetryingStore,
			cfg *config.Config,
			clock cache.Clock,
			logger logx.Logger,
			set *metricsSet,
		) *cache.Store {
			return cache.NewStore(repo, remote, cfg.Engine.CacheTTL, clock, logger, set.cacheReads)
		},
		func(store *cache.Store, logger logx.Logger, set *metricsSet) *cache.Guard {
			return cache.NewGuard(store, logger, set.faults)
		},
		func(
			guard *cache.Guard,
			led *ledger.Service,
			remote *deliverystore.RetryingStore,
			cfg *config.Config,
			logger logx.Logger,
			set *metricsSet,
		) *offers.Poller {
			return offers.NewPoller(guard, led, remote, cfg.Engine.PollPageSize, cfg.Engine.OfferCountdown, logger, set.offerPolls)
		},
		func(
			led *ledger.Service,
			store *cache.Store,
			remote *deliverystore.RetryingStore,
			eligibility *payouts.Client,
			bus *pubsub.Bus,
			cfg *config.Config,
			logger logx.Logger,
			set *metricsSet,
		) *offers.Controller {
			return offers.NewController(led, store, remote, eligibility, bus, cfg.Engine.OfferCountdown, logger, set.deadLetters)
		},
		offers.NewFlow,
		func(
			guard *cache.Guard,
			store *cache.Store,
			remote *deliverystore.RetryingStore,
			bus *pubsub.Bus,
			logger logx.Logger,
		) *progress.Controller {
			return progress.NewController(guard, store, remote, bus, logger)
		},
		func(store *cache.Store, bus *pubsub.Bus, logger logx.Logger) *syncsvc.Processor {
			return syncsvc.NewProcessor(store, bus, logger)
		},
	)
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	return provideAll(container,
		handlers.New,
		func(flow *offers.Flow, logger logx.Logger) *handlers.OfferHandler {
			return handlers.NewOfferHandler(flow, logger)
		},
		func(prog *progress.Controller, store *cache.Store, logger logx.Logger) *handlers.DeliveryHandler {
			return handlers.NewDeliveryHandler(prog, store, logger)
		},
		func(
			base *handlers.Handlers,
			offer *handlers.OfferHandler,
			delivery *handlers.DeliveryHandler,
			registry *prometheus.Registry,
		) http.Handler {
			return router.New(router.Deps{
				Base:     base,
				Offer:    offer,
				Delivery: delivery,
				Registry: registry,
			})
		},
		serverProvider,
	)
}

func registerKafka(container *dig.Container) error {
	return provideAll(container,
		func(cfg *config.Config, p *syncsvc.Processor) (*kafka.Consumer, error) {
			return kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic, p.Handle)
		},
	)
}
