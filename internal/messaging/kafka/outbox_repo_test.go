package kafka_test

import (
	"context"
	"testing"

	"go-lcms/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEvent() kafka.OutboxEvent {
	return kafka.OutboxEvent{
		ID:            "11111111-1111-1111-1111-111111111111",
		RequestID:     "rid-1",
		AggregateType: "leave_request",
		AggregateID:   "22222222-2222-2222-2222-222222222222",
		EventType:     "leave_submitted",
		Topic:         "lcms.leave.status.v1",
		Payload:       []byte(`{"leave_id":"x"}`),
		Status:        kafka.OutboxStatusPending,
	}
}

func TestValidateOutboxEvent(t *testing.T) {
	assert.NoError(t, kafka.ValidateOutboxEvent(validEvent()))

	noTopic := validEvent()
	noTopic.Topic = ""
	assert.Error(t, kafka.ValidateOutboxEvent(noTopic))

	badStatus := validEvent()
	badStatus.Status = "queued"
	assert.Error(t, kafka.ValidateOutboxEvent(badStatus))
}

func TestOutboxRepository_CreateWithTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ev := validEvent()
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO outbox_events").
		WithArgs(ev.ID, ev.RequestID, ev.AggregateType, ev.AggregateID, ev.EventType, ev.Topic, ev.Payload, ev.Status).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)

	repo := kafka.NewOutboxRepository(db).WithTx(tx)
	require.NoError(t, repo.Create(context.Background(), ev))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_MarkFailed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE outbox_events").
		WithArgs("id-1", kafka.OutboxStatusFailed, "broker down", kafka.MaxOutboxRetries, kafka.OutboxStatusDead).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := kafka.NewOutboxRepository(db)
	require.NoError(t, repo.MarkFailed(context.Background(), "id-1", "broker down"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
