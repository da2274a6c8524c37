package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
	"github.com/twmb/franz-go/pkg/kgo"

	"portfolio/internal/audit"
	consentStore "portfolio/internal/consent/store"
	"portfolio/internal/platform/config"
	"portfolio/internal/platform/kafka"
	"portfolio/internal/platform/logger"
	"portfolio/internal/platform/postgres"
	"portfolio/internal/platform/redis"
	"portfolio/pkg/platform/circuit"
)

const auditQueueSize = 256

// infra holds the long-lived connections opened at startup.
type infra struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *consentStore.BreakerStore

	redis *goredis.Client
	db    *sql.DB
	kafka *kgo.Client
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.New(cfg.Logging.Level, cfg.Logging.Format), nil
}

// openStore connects the configured consent backend and wraps it in the
// circuit breaker.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (*infra, error) {
	in := &infra{cfg: cfg, logger: log}

	var backend consentStore.Backend
	switch cfg.Consent.Store {
	case config.StoreRedis:
		client, err := redis.Open(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		in.redis = client
		backend = consentStore.NewRedisStore(client)
	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := postgres.Migrate(db, consentStore.Migrations, consentStore.MigrationsDir); err != nil {
			_ = db.Close()
			return nil, err
		}
		in.db = db
		backend = consentStore.NewPostgresStore(db)
	default:
		backend = consentStore.NewInMemoryStore()
	}

	in.store = consentStore.NewBreakerStore(backend,
		circuit.WithStateChange(func(name string, from, to circuit.State) {
			log.Warn("consent store circuit changed state", "breaker", name, "from", from, "to", to)
		}),
	)
	log.Info("consent store ready", "backend", cfg.Consent.Store)
	return in, nil
}

// auditPublisher publishes to Kafka when brokers are configured and keeps
// a bounded in-memory trail otherwise.
func (in *infra) auditPublisher(ctx context.Context) (*audit.Publisher, error) {
	producer, err := kafka.NewProducer(ctx, in.cfg.Kafka)
	if err != nil {
		return nil, err
	}
	if producer == nil {
		return audit.NewPublisher(audit.NewInMemoryStore(1000), in.logger, audit.WithQueue(auditQueueSize)), nil
	}
	in.kafka = producer
	in.logger.Info("audit events published to kafka", "topic", in.cfg.Kafka.AuditTopic)
	return audit.NewPublisher(audit.NewKafkaStore(producer, in.cfg.Kafka.AuditTopic), in.logger, audit.WithQueue(auditQueueSize)), nil
}

func (in *infra) Close() error {
	var errs []error
	if in.kafka != nil {
		in.kafka.Close()
	}
	if in.redis != nil {
		errs = append(errs, in.redis.Close())
	}
	if in.db != nil {
		errs = append(errs, in.db.Close())
	}
	return errors.Join(errs...)
}
