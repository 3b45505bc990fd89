package notification_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go-lcms/internal/events"
	"go-lcms/internal/notification"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sendFn func(msg notification.Message) error
	sent   []notification.Message
}

func (f *fakeSender) Send(_ context.Context, msg notification.Message) error {
	if f.sendFn != nil {
		if err := f.sendFn(msg); err != nil {
			return err
		}
	}
	f.sent = append(f.sent, msg)
	return nil
}

func leaveEvent(eventType, to string) events.LeaveStatusChangedEvent {
	return events.LeaveStatusChangedEvent{
		EventType:     eventType,
		LeaveID:       "l-1",
		EmployeeName:  "Ana Cruz",
		EmployeeEmail: "ana@lcms.test",
		Department:    "IT",
		LeaveType:     "vacation",
		StartDate:     "2030-03-04",
		EndDate:       "2030-03-06",
		NumberOfDays:  3,
		ToStatus:      to,
		ActorName:     "Dan Sy",
		Comments:      "enjoy",
		OccurredAt:    time.Date(2030, 2, 1, 9, 0, 0, 0, time.UTC),
	}
}

func sentKey(ev events.LeaveStatusChangedEvent, recipient string) string {
	return fmt.Sprintf("notifications:sent:leave:%s:%s:%s:%d:%s", ev.LeaveID, ev.EventType, ev.ToStatus, ev.OccurredAt.UnixNano(), recipient)
}

func TestNotificationService_HandleLeaveEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("success approved mail to employee", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		sender := &fakeSender{}
		svc := notification.NewService(sender, rdb, "hr@lcms.test")
		ev := leaveEvent(events.LeaveDecided, "approved")

		mock.ExpectSetNX(sentKey(ev, "employee"), "1", 7*24*time.Hour).SetVal(true)

		require.NoError(t, svc.HandleLeaveEvent(ctx, ev))
		require.Len(t, sender.sent, 1)
		assert.Equal(t, []string{"ana@lcms.test"}, sender.sent[0].To)
		assert.Equal(t, "Leave request approved", sender.sent[0].Subject)
		assert.Contains(t, sender.sent[0].Body, "Hello Ana")
		assert.Contains(t, sender.sent[0].Body, "Regular Leave")
		assert.Contains(t, sender.sent[0].Body, "Comments: enjoy")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success pending hr also mails the hr mailbox", func(t *testing.T) {
		sender := &fakeSender{}
		svc := notification.NewService(sender, nil, "hr@lcms.test")

		require.NoError(t, svc.HandleLeaveEvent(ctx, leaveEvent(events.LeaveDecided, "pending_hr")))
		require.Len(t, sender.sent, 2)
		assert.Equal(t, []string{"hr@lcms.test"}, sender.sent[1].To)
		assert.Contains(t, sender.sent[1].Subject, "Ana Cruz")
	})

	t.Run("duplicate delivery is skipped", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		sender := &fakeSender{}
		svc := notification.NewService(sender, rdb, "")
		ev := leaveEvent(events.LeaveCancelled, "cancelled")

		mock.ExpectSetNX(sentKey(ev, "employee"), "1", 7*24*time.Hour).SetVal(false)

		require.NoError(t, svc.HandleLeaveEvent(ctx, ev))
		assert.Empty(t, sender.sent)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative send failure releases the key", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		sender := &fakeSender{sendFn: func(notification.Message) error { return notification.ErrSenderUnavailable }}
		svc := notification.NewService(sender, rdb, "")
		ev := leaveEvent(events.LeaveSubmitted, "pending_supervisor")

		mock.ExpectSetNX(sentKey(ev, "employee"), "1", 7*24*time.Hour).SetVal(true)
		mock.ExpectDel(sentKey(ev, "employee")).SetVal(1)

		err := svc.HandleLeaveEvent(ctx, ev)
		assert.ErrorIs(t, err, notification.ErrSenderUnavailable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative hr mail failure only releases the hr key", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		sender := &fakeSender{sendFn: func(msg notification.Message) error {
			if msg.To[0] == "hr@lcms.test" {
				return notification.ErrSenderUnavailable
			}
			return nil
		}}
		svc := notification.NewService(sender, rdb, "hr@lcms.test")
		ev := leaveEvent(events.LeaveDecided, "pending_hr")

		mock.ExpectSetNX(sentKey(ev, "employee"), "1", 7*24*time.Hour).SetVal(true)
		mock.ExpectSetNX(sentKey(ev, "hr"), "1", 7*24*time.Hour).SetVal(true)
		mock.ExpectDel(sentKey(ev, "hr")).SetVal(1)

		err := svc.HandleLeaveEvent(ctx, ev)
		assert.ErrorIs(t, err, notification.ErrSenderUnavailable)
		require.Len(t, sender.sent, 1)
		assert.Equal(t, []string{"ana@lcms.test"}, sender.sent[0].To)
		require.NoError(t, mock.ExpectationsWereMet())

		// redelivery: the employee mail is already claimed, only hr is retried
		sender.sendFn = nil
		mock.ExpectSetNX(sentKey(ev, "employee"), "1", 7*24*time.Hour).SetVal(false)
		mock.ExpectSetNX(sentKey(ev, "hr"), "1", 7*24*time.Hour).SetVal(true)

		require.NoError(t, svc.HandleLeaveEvent(ctx, ev))
		require.Len(t, sender.sent, 2)
		assert.Equal(t, []string{"hr@lcms.test"}, sender.sent[1].To)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis down still sends", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		sender := &fakeSender{}
		svc := notification.NewService(sender, rdb, "")
		ev := leaveEvent(events.LeaveSubmitted, "pending_supervisor")

		mock.ExpectSetNX(sentKey(ev, "employee"), "1", 7*24*time.Hour).SetErr(errors.New("connection refused"))

		require.NoError(t, svc.HandleLeaveEvent(ctx, ev))
		require.Len(t, sender.sent, 1)
		assert.Contains(t, sender.sent[0].Body, "waiting for your supervisor")
	})

	t.Run("no recipients", func(t *testing.T) {
		sender := &fakeSender{}
		svc := notification.NewService(sender, nil, "")
		ev := leaveEvent(events.LeaveDecided, "approved")
		ev.EmployeeEmail = ""

		require.NoError(t, svc.HandleLeaveEvent(ctx, ev))
		assert.Empty(t, sender.sent)
	})
}

func TestNotificationService_HandleEmployeeCreated(t *testing.T) {
	sender := &fakeSender{}
	svc := notification.NewService(sender, nil, "")

	err := svc.HandleEmployeeCreated(context.Background(), events.EmployeeCreatedEvent{EmployeeID: "e-1", Email: "new@lcms.test", Role: "employee"})

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"new@lcms.test"}, sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Body, "employee role")
}
