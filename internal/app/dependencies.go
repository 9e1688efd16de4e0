package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/tablebook/internal/booking"
	"github.com/vladislavdragonenkov/tablebook/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/tablebook/internal/health"
	"github.com/vladislavdragonenkov/tablebook/internal/messaging"
	"github.com/vladislavdragonenkov/tablebook/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/tablebook/internal/messaging/rabbitmq"
	"github.com/vladislavdragonenkov/tablebook/internal/metrics"
	"github.com/vladislavdragonenkov/tablebook/internal/storage/badger"
	"github.com/vladislavdragonenkov/tablebook/internal/storage/file"
	"github.com/vladislavdragonenkov/tablebook/internal/storage/memory"
	"github.com/vladislavdragonenkov/tablebook/internal/storage/postgres"
)

const (
	storagePingTimeout = 2 * time.Second

	breakerMaxFailures  = 5
	breakerResetTimeout = 30 * time.Second
)

// OpenBackend открывает бэкенд снимка по cfg.StorageDriver.
func OpenBackend(ctx context.Context, cfg Config, logger *log.Entry) (domain.SnapshotStore, error) {
	switch cfg.StorageDriver {
	case StorageDriverMemory:
		return memory.NewSnapshotStore(), nil
	case StorageDriverFile:
		store, err := file.NewSnapshotStore(cfg.FilePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StorageDriverBadger:
		store, err := badger.Open(cfg.BadgerDir, logger.WithField("storage", "badger"))
		if err != nil {
			return nil, err
		}
		return store, nil
	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("%s is required for postgres storage", EnvPostgresDSN)
		}
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if cfg.PostgresAutoMigrate {
			if err := store.MigrateUp(ctx, 0); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("apply postgres migrations: %w", err)
			}
			logger.Info("postgres migrations applied")
		}
		return postgres.NewSnapshotRepository(store), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %q", cfg.StorageDriver)
	}
}

// OpenStore открывает бэкенд и загружает из него хранилище броней.
// Используется командами CLI, которым не нужны метрики и события.
func OpenStore(ctx context.Context, cfg Config, logger *log.Entry, options ...booking.Option) (*booking.ReservationStore, error) {
	backend, err := OpenBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	options = append([]booking.Option{
		booking.WithLimitPerHour(cfg.LimitPerHour),
		booking.WithLogger(logger.WithField("component", "reservation-store")),
	}, options...)

	store, err := booking.Load(ctx, backend, options...)
	if err != nil {
		closeBackend(backend, logger)
		return nil, err
	}
	logger.WithFields(log.Fields{
		"storage":        cfg.StorageDriver,
		"limit_per_hour": store.Limit(),
	}).Debug("reservation store opened")
	return store, nil
}

type closer interface {
	Close() error
}

func closeBackend(backend domain.SnapshotStore, logger *log.Entry) {
	if c, ok := backend.(closer); ok {
		if err := c.Close(); err != nil {
			logger.WithError(err).Warn("failed to close snapshot backend")
		}
	}
}

// runtimeDependencies содержит всё, что нужно серверному режиму.
type runtimeDependencies struct {
	store          *booking.ReservationStore
	metrics        *metrics.BookingMetrics
	storageChecker healthcheck.Checker
	closeFn        func() error
}

// initRuntimeDependencies собирает хранилище с метриками и публикацией событий.
func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry, registerer prometheus.Registerer) (*runtimeDependencies, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bookingMetrics := metrics.NewBookingMetricsWithRegisterer(registerer)
	publisher, closePublishers := initPublishers(cfg, logger)

	options := []booking.Option{booking.WithMetrics(bookingMetrics)}
	if publisher != nil {
		options = append(options, booking.WithPublisher(publisher))
	}

	store, err := OpenStore(ctx, cfg, logger, options...)
	if err != nil {
		closePublishers()
		return nil, err
	}

	return &runtimeDependencies{
		store:          store,
		metrics:        bookingMetrics,
		storageChecker: healthcheck.NewPingChecker("storage", store, storagePingTimeout),
		closeFn: func() error {
			err := store.Close()
			closePublishers()
			return err
		},
	}, nil
}

// initPublishers подключает Kafka и RabbitMQ, если они настроены.
// Недоступный брокер не мешает запуску: бронь фиксируется записью снимка.
func initPublishers(cfg Config, logger *log.Entry) (domain.EventPublisher, func()) {
	var (
		publishers fanoutPublisher
		closers    []closer
	)

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, logger.WithField("component", "kafka-producer"))
		if err != nil {
			logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		} else {
			p := kafka.NewReservationPublisher(producer, cfg.KafkaTopic)
			publishers = append(publishers, withRetry(p, logger.WithField("broker", "kafka")))
			closers = append(closers, p)
			logger.WithField("brokers", cfg.KafkaBrokers).Info("kafka producer initialized")
		}
	}

	if cfg.AMQPURL != "" {
		p, err := rabbitmq.Dial(cfg.AMQPURL, cfg.AMQPExchange, logger.WithField("component", "rabbitmq-publisher"))
		if err != nil {
			logger.WithError(err).Warn("failed to connect to rabbitmq, continuing without rabbitmq")
		} else {
			publishers = append(publishers, withRetry(p, logger.WithField("broker", "rabbitmq")))
			closers = append(closers, p)
			logger.WithField("exchange", cfg.AMQPExchange).Info("rabbitmq publisher initialized")
		}
	}

	closeAll := func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				logger.WithError(err).Warn("failed to close event publisher")
			}
		}
	}

	if len(publishers) == 0 {
		return nil, closeAll
	}
	return publishers, closeAll
}

// withRetry оборачивает publisher брокера повторами и circuit breaker.
func withRetry(p domain.EventPublisher, logger *log.Entry) domain.EventPublisher {
	breaker := messaging.NewCircuitBreaker(breakerMaxFailures, breakerResetTimeout, logger)
	return messaging.NewRetryingPublisher(p, messaging.DefaultRetryConfig(), breaker, logger)
}

// fanoutPublisher отправляет событие во все брокеры.
type fanoutPublisher []domain.EventPublisher

func (f fanoutPublisher) PublishReservation(ctx context.Context, event domain.ReservationEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.PublishReservation(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
