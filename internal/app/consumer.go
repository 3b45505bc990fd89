package app

import (
	"context"
	"errors"
	"os/signal"
	"sync"
	"syscall"

	"go-lcms/internal/config"
	"go-lcms/internal/events"
	"go-lcms/internal/messaging/kafka/consumer"
	"go-lcms/internal/notification"
	"go-lcms/internal/shared/connection"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const notificationGroupID = "lcms-notifications"

// RunConsumer turns leave and employee events into e-mail until SIGINT/SIGTERM.
func RunConsumer(cfg config.Config, logger *zap.Logger) error {
	log := logger.Named("app.consumer")

	if cfg.KafkaBroker == "" {
		return errors.New("KAFKA_BROKER is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sender, err := newSender(ctx, cfg, logger)
	if err != nil {
		return err
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = connection.ConnectRedisWithRetry(cfg.RedisAddr, cfg.DBMaxRetries)
		if err != nil {
			return err
		}
		defer rdb.Close()
	} else {
		log.Warn("REDIS_ADDR not set; redelivered events may be mailed twice")
	}

	notifications := notification.NewService(sender, rdb, cfg.NotifyHREmail, logger)

	subscriptions := []struct {
		name    string
		topic   string
		handler consumer.Handler
	}{
		{"leave_status", events.LeaveStatusChangedTopic, consumer.LeaveStatusHandler(notifications)},
		{"employee_lifecycle", events.EmployeeCreatedTopic, consumer.EmployeeLifecycleHandler(notifications)},
	}

	var wg sync.WaitGroup
	for _, sub := range subscriptions {
		reader := kafkago.NewReader(kafkago.ReaderConfig{
			Brokers:        []string{cfg.KafkaBroker},
			Topic:          sub.topic,
			GroupID:        notificationGroupID,
			CommitInterval: 0,
			StartOffset:    kafkago.FirstOffset,
		})
		defer reader.Close()

		wg.Add(1)
		go func(name string, handler consumer.Handler) {
			defer wg.Done()
			consumer.Run(ctx, reader, name, handler, logger)
		}(sub.name, sub.handler)
	}

	<-ctx.Done()
	log.Info("consumer shutting down")
	wg.Wait()
	return nil
}

// newSender picks SES when SES_SENDER is configured and a logging sender otherwise.
func newSender(ctx context.Context, cfg config.Config, logger *zap.Logger) (notification.Sender, error) {
	if cfg.SESSender == "" {
		logger.Warn("SES_SENDER not set; notifications are logged only")
		return notification.NewLogSender(logger), nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, err
	}
	client := ses.NewFromConfig(awsCfg, func(o *ses.Options) {
		if cfg.AWSEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpoint)
		}
	})
	return notification.NewSESSender(client, cfg.SESSender, logger), nil
}
