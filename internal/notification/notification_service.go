package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-lcms/internal/events"
	"go-lcms/internal/leave"
	"go-lcms/internal/session"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	sentKeyPrefix = "notifications:sent:"
	sentKeyTTL    = 7 * 24 * time.Hour
)

type Service interface {
	HandleLeaveEvent(ctx context.Context, ev events.LeaveStatusChangedEvent) error
	HandleEmployeeCreated(ctx context.Context, ev events.EmployeeCreatedEvent) error
}

type service struct {
	sender    Sender
	rdb       *redis.Client
	hrMailbox string
	logger    *zap.Logger
}

// NewService builds the notifier. rdb may be nil, which disables duplicate
// suppression for redelivered events; hrMailbox may be empty.
func NewService(sender Sender, rdb *redis.Client, hrMailbox string, logger ...*zap.Logger) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &service{sender: sender, rdb: rdb, hrMailbox: strings.TrimSpace(hrMailbox), logger: l}
}

// HandleLeaveEvent mails the requester and, for requests reaching HR, the HR
// mailbox. Each recipient is deduplicated on its own key so a retry after a
// partial failure only resends what did not go out.
func (s *service) HandleLeaveEvent(ctx context.Context, ev events.LeaveStatusChangedEvent) error {
	base := fmt.Sprintf("%sleave:%s:%s:%s:%d", sentKeyPrefix, ev.LeaveID, ev.EventType, ev.ToStatus, ev.OccurredAt.UnixNano())

	var batch []outgoing
	if ev.EmployeeEmail != "" {
		batch = append(batch, outgoing{key: base + ":employee", msg: employeeMessage(ev)})
	}
	if s.hrMailbox != "" && leave.Status(ev.ToStatus) == leave.StatusPendingHR {
		batch = append(batch, outgoing{key: base + ":hr", msg: hrMessage(ev, s.hrMailbox)})
	}
	if len(batch) == 0 {
		s.logger.Debug("leave event has no recipients", zap.String("leave_id", ev.LeaveID), zap.String("event_type", ev.EventType))
		return nil
	}

	var errs []error
	for _, o := range batch {
		if err := s.sendOnce(ctx, o.key, o.msg, zap.String("leave_id", ev.LeaveID), zap.String("event_type", ev.EventType)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *service) HandleEmployeeCreated(ctx context.Context, ev events.EmployeeCreatedEvent) error {
	if ev.Email == "" {
		return nil
	}
	key := fmt.Sprintf("%semployee:%s", sentKeyPrefix, ev.EmployeeID)
	msg := Message{
		To:      []string{ev.Email},
		Subject: "Your leave account is ready",
		Body: fmt.Sprintf(
			"Hello,\n\nAn account with the %s role was created for you. Your default leave credits have been allotted and you can now file leave requests.",
			ev.Role,
		),
	}
	return s.sendOnce(ctx, key, msg, zap.String("employee_id", ev.EmployeeID))
}

type outgoing struct {
	key string
	msg Message
}

// sendOnce claims key before sending and releases it on failure, so a
// redelivered event is sent again only if the first attempt did not finish.
func (s *service) sendOnce(ctx context.Context, key string, msg Message, fields ...zap.Field) error {
	fields = append(fields, zap.Strings("to", msg.To))
	if s.rdb != nil {
		claimed, err := s.rdb.SetNX(ctx, key, "1", sentKeyTTL).Result()
		if err != nil {
			s.logger.Warn("notification dedupe unavailable, sending anyway", append(fields, zap.Error(err))...)
		} else if !claimed {
			s.logger.Info("notification already sent, skipping", fields...)
			return nil
		}
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		if s.rdb != nil {
			if delErr := s.rdb.Del(context.WithoutCancel(ctx), key).Err(); delErr != nil {
				s.logger.Warn("release notification key failed", append(fields, zap.Error(delErr))...)
			}
		}
		s.logger.Error("send notification failed", append(fields, zap.Error(err))...)
		return err
	}

	s.logger.Info("notification sent", fields...)
	return nil
}

func employeeMessage(ev events.LeaveStatusChangedEvent) Message {
	status := leave.StatusText(leave.Status(ev.ToStatus), session.RoleEmployee)
	typeLabel := leave.LeaveTypeLabel(leave.LeaveType(ev.LeaveType))

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", firstName(ev.EmployeeName))
	switch ev.EventType {
	case events.LeaveSubmitted:
		fmt.Fprintf(&b, "Your %s request was received and is waiting for your supervisor.\n", typeLabel)
	case events.LeaveEdited:
		fmt.Fprintf(&b, "Your %s request was updated and goes through review again.\n", typeLabel)
	case events.LeaveCancelled:
		fmt.Fprintf(&b, "Your %s request was cancelled.\n", typeLabel)
	default:
		fmt.Fprintf(&b, "Your %s request is now: %s.\n", typeLabel, status)
		if ev.ActorName != "" {
			fmt.Fprintf(&b, "Reviewed by: %s\n", ev.ActorName)
		}
	}
	fmt.Fprintf(&b, "\nDates: %s to %s (%d day(s))\n", ev.StartDate, ev.EndDate, ev.NumberOfDays)
	if ev.Comments != "" {
		fmt.Fprintf(&b, "Comments: %s\n", ev.Comments)
	}

	return Message{
		To:      []string{ev.EmployeeEmail},
		Subject: fmt.Sprintf("Leave request %s", strings.ToLower(status)),
		Body:    b.String(),
	}
}

func hrMessage(ev events.LeaveStatusChangedEvent, mailbox string) Message {
	return Message{
		To:      []string{mailbox},
		Subject: fmt.Sprintf("Leave request awaiting HR review: %s", ev.EmployeeName),
		Body: fmt.Sprintf(
			"%s (%s) requested %s from %s to %s (%d day(s)). The supervisor approved it and it now waits for HR.\n\nRequest ID: %s",
			ev.EmployeeName,
			ev.Department,
			leave.LeaveTypeLabel(leave.LeaveType(ev.LeaveType)),
			ev.StartDate,
			ev.EndDate,
			ev.NumberOfDays,
			ev.LeaveID,
		),
	}
}

func firstName(name string) string {
	if f := strings.Fields(name); len(f) > 0 {
		return f[0]
	}
	return "there"
}
