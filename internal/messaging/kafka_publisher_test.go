package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/pos-service/internal/app/pos/contracts"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("write without deadline")
	}
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	writer := &fakeWriter{}
	publisher := &KafkaPublisher{writer: writer}
	createdAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	err := publisher.Publish(context.Background(), &contracts.OutboxEvent{
		EventID:     "evt-1",
		EventType:   "sale.completed",
		AggregateID: "sale-1",
		Payload:     `{"sale_id":"sale-1"}`,
		CreatedAt:   createdAt,
	})
	require.NoError(t, err)

	require.Len(t, writer.msgs, 1)
	msg := writer.msgs[0]
	assert.Equal(t, "sale-1", string(msg.Key))
	assert.JSONEq(t, `{"sale_id":"sale-1"}`, string(msg.Value))
	assert.Equal(t, createdAt, msg.Time)
	assert.Equal(t, []kafka.Header{
		{Key: "event-type", Value: []byte("sale.completed")},
		{Key: "event-id", Value: []byte("evt-1")},
	}, msg.Headers)

	require.NoError(t, publisher.Close())
	assert.True(t, writer.closed)
}

func TestKafkaPublisher_WrapsWriteErrors(t *testing.T) {
	boom := errors.New("leader not available")
	publisher := &KafkaPublisher{writer: &fakeWriter{err: boom}}

	err := publisher.Publish(context.Background(), &contracts.OutboxEvent{EventID: "evt-2"})

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "evt-2")
}
