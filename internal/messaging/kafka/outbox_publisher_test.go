package kafka

import (
	"encoding/json"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
)

func newTestPublisher(t *testing.T, topic string) (domain.OutboxPublisher, *mocks.SyncProducer) {
	t.Helper()

	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-outbox-publisher-test"),
	}
	return NewOutboxPublisher(producer, topic), mockProducer
}

func TestOutboxPublisher_EnvelopeFormat(t *testing.T) {
	t.Parallel()

	publisher, mockProducer := newTestPublisher(t, TopicOrderEvents)

	// Проверяем сам wire-формат: те же поля читает инструмент replay.
	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		if err != nil {
			t.Fatalf("encode key: %v", err)
		}
		if string(key) != "123" {
			t.Errorf("partition key = %q, want aggregate id", key)
		}

		raw, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("encode value: %v", err)
		}
		var envelope eventEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			t.Fatalf("unmarshal envelope: %v", err)
		}
		if envelope.ID != "outbox-1" || envelope.AggregateType != "order" || envelope.AggregateID != "123" {
			t.Errorf("unexpected envelope identity: %+v", envelope)
		}
		if envelope.EventType != string(EventTypeOrderPlaced) {
			t.Errorf("event type = %q", envelope.EventType)
		}
		if string(envelope.Payload) != `{"order_id":123}` {
			t.Errorf("payload = %s", envelope.Payload)
		}
		if envelope.PublishedAt.IsZero() {
			t.Error("published_at is not set")
		}
		return nil
	})

	err := publisher.Publish(domain.OutboxMessage{
		ID:            "outbox-1",
		AggregateType: "order",
		AggregateID:   "123",
		EventType:     string(EventTypeOrderPlaced),
		Payload:       []byte(`{"order_id":123}`),
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOutboxPublisher_ProducerErrorPpropagates(t *testing.T) {
	t.Parallel()

	publisher, mockProducer := newTestPublisher(t, TopicOrderEvents)
	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := publisher.Publish(domain.OutboxMessage{
		ID:            "outbox-2",
		AggregateType: "order",
		AggregateID:   "234",
		EventType:     string(EventTypeOrderShortfall),
		Payload:       []byte(`{"order_id":234}`),
	})
	if err == nil {
		t.Fatal("expected publish error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOutboxPublisher_NilProducer(t *testing.T) {
	t.Parallel()

	publisher := NewOutboxPublisher(nil, TopicOrderEvents)
	if err := publisher.Publish(domain.OutboxMessage{ID: "outbox-3"}); err == nil {
		t.Fatal("expected error for nil producer")
	}
}

func TestPartitionKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		event domain.OutboxMessage
		want  string
	}{
		{name: "aggregate id preferred", event: domain.OutboxMessage{ID: "outbox-7", AggregateID: "42"}, want: "42"},
		{name: "falls back to outbox id", event: domain.OutboxMessage{ID: "outbox-7"}, want: "outbox-7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := partitionKey(tt.event); got != tt.want {
				t.Errorf("partitionKey() = %q, want %q", got, tt.want)
			}
		})
	}
}
