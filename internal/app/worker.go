package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"go-lcms/internal/config"
	"go-lcms/internal/messaging/kafka"
	"go-lcms/internal/messaging/kafka/producer"
	"go-lcms/internal/shared/connection"

	"go.uber.org/zap"
)

// RunWorker relays committed outbox rows to Kafka until SIGINT/SIGTERM.
func RunWorker(cfg config.Config, logger *zap.Logger) error {
	log := logger.Named("app.worker")

	if cfg.DBDriver != config.DriverPostgres {
		return errors.New("outbox worker requires DB_DRIVER=postgres")
	}
	if cfg.KafkaBroker == "" {
		return errors.New("KAFKA_BROKER is required")
	}

	gormDB, err := connection.ConnectGORMWithRetry(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.KafkaBroker, cfg.DBMaxRetries)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(sqlDB)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	producer.ProcessOutboxEvents(ctx, outboxRepo, kafkaWriter, logger, cfg.OutboxInterval)

	log.Info("worker shutting down")
	return nil
}
