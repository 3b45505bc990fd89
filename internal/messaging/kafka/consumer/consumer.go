package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-lcms/internal/events"
	"go-lcms/internal/notification"
	"go-lcms/internal/shared/contextutil"

	kafkago "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const maxHandleAttempts = 5

// ErrMalformed marks a message that can never be handled; it is committed and skipped.
var ErrMalformed = errors.New("malformed message")

// MessageReader is the subset of *kafkago.Reader the loop needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type Handler func(ctx context.Context, msg kafkago.Message) error

// Backoff is the wait before retry attempt n (1-based). Tests shorten it.
var Backoff = func(attempt int) time.Duration {
	d := time.Duration(1<<uint(attempt-1)) * time.Second
	if d > 30*time.Second {
		d = 30 * time.Second
	}
	return d
}

// Run fetches until ctx is cancelled. A message is committed once handled, once
// found malformed, or after maxHandleAttempts failures so one bad message
// cannot stall the partition.
func Run(ctx context.Context, reader MessageReader, name string, handle Handler, logger *zap.Logger) {
	log := logger.Named("kafka.consumer." + name)
	log.Info("consumer started")

	fetchFailures := 0
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("consumer stopped")
				return
			}
			fetchFailures++
			wait := Backoff(fetchFailures)
			log.Error("fetch message failed", zap.Int("failures", fetchFailures), zap.Duration("wait", wait), zap.Error(err))
			if !sleep(ctx, wait) {
				log.Info("consumer stopped")
				return
			}
			continue
		}
		fetchFailures = 0

		if !process(ctx, msg, handle, log) {
			log.Info("consumer stopped")
			return
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				log.Info("consumer stopped")
				return
			}
			log.Error("commit message failed", zap.Int64("offset", msg.Offset), zap.Error(err))
		}
	}
}

// process reports false only when ctx ended before the message was settled.
func process(ctx context.Context, msg kafkago.Message, handle Handler, log *zap.Logger) bool {
	rid := header(msg, "request_id")
	ctx = contextutil.WithRequestID(ctx, rid)
	ctx, span := otel.Tracer("kafka.consumer").Start(ctx, "consume "+msg.Topic,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination.name", msg.Topic),
			attribute.Int64("messaging.kafka.offset", msg.Offset),
		),
	)
	defer span.End()

	fields := []zap.Field{
		zap.String("request_id", rid),
		zap.String("topic", msg.Topic),
		zap.Int64("offset", msg.Offset),
		zap.String("event_type", header(msg, "event_type")),
	}

	for attempt := 1; ; attempt++ {
		err := handle(ctx, msg)
		if err == nil {
			log.Info("message handled", fields...)
			return true
		}
		span.RecordError(err)
		if errors.Is(err, ErrMalformed) {
			log.Error("malformed message skipped", append(fields, zap.Error(err))...)
			return true
		}
		if attempt >= maxHandleAttempts {
			log.Error("message dropped after retries", append(fields, zap.Int("attempts", attempt), zap.Error(err))...)
			return true
		}

		wait := Backoff(attempt)
		log.Warn("handle message failed, retrying", append(fields, zap.Int("attempt", attempt), zap.Duration("wait", wait), zap.Error(err))...)
		if !sleep(ctx, wait) {
			return false
		}
	}
}

// sleep waits d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func header(msg kafkago.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func LeaveStatusHandler(svc notification.Service) Handler {
	return func(ctx context.Context, msg kafkago.Message) error {
		var ev events.LeaveStatusChangedEvent
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if ev.LeaveID == "" {
			return fmt.Errorf("%w: leave_id missing", ErrMalformed)
		}
		return svc.HandleLeaveEvent(ctx, ev)
	}
}

func EmployeeLifecycleHandler(svc notification.Service) Handler {
	return func(ctx context.Context, msg kafkago.Message) error {
		var ev events.EmployeeCreatedEvent
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if ev.EmployeeID == "" {
			return fmt.Errorf("%w: employee_id missing", ErrMalformed)
		}
		return svc.HandleEmployeeCreated(ctx, ev)
	}
}
