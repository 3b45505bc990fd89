package notification

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrSenderUnavailable is returned while the breaker is open; the message
// should be retried later rather than dropped.
var ErrSenderUnavailable = errors.New("email sender unavailable")

type Message struct {
	To      []string
	Subject string
	Body    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SESAPI is the part of *ses.Client the sender uses.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESSender struct {
	client SESAPI
	from   string
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

// NewSESSender trips after at least 5 sends with a failure ratio of one half
// and tries again after 30 seconds.
func NewSESSender(client SESAPI, from string, logger ...*zap.Logger) *SESSender {
	l := zap.L().Named("notification.ses")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.ses")
	}

	settings := gobreaker.Settings{
		Name:        "ses",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && ratio >= 0.5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l.Warn("email circuit state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &SESSender{
		client: client,
		from:   from,
		cb:     gobreaker.NewCircuitBreaker(settings),
		logger: l,
	}
}

func (s *SESSender) Send(ctx context.Context, msg Message) error {
	ctx, span := otel.Tracer("notification").Start(ctx, "ses.send_email", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.Int("email.recipients", len(msg.To)),
		attribute.String("email.subject", msg.Subject),
	)

	input := &ses.SendEmailInput{
		Source:      aws.String(s.from),
		Destination: &types.Destination{ToAddresses: msg.To},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(msg.Body), Charset: aws.String("UTF-8")},
			},
		},
	}

	_, err := s.cb.Execute(func() (any, error) {
		return s.client.SendEmail(ctx, input)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send email failed")
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			s.logger.Warn("email skipped, circuit open", zap.Strings("to", msg.To), zap.String("subject", msg.Subject))
			return ErrSenderUnavailable
		}
		s.logger.Error("send email failed", zap.Strings("to", msg.To), zap.Error(err))
		return err
	}

	s.logger.Info("email sent", zap.Strings("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

// LogSender writes messages to the log; used when no SES sender address is configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger ...*zap.Logger) *LogSender {
	l := zap.L().Named("notification.log")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.log")
	}
	return &LogSender{logger: l}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("email",
		zap.String("to", strings.Join(msg.To, ",")),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}
