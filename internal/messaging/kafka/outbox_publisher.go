package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
)

// eventEnvelope — wire-формат события заказа в topic. Формат разделяется
// с cmd/dlq-reprocess: инструмент replay разбирает ровно эти поля.
type eventEnvelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}

// topicPublisher доставляет outbox-сообщения в выбранный topic.
type topicPublisher struct {
	producer *Producer
	topic    string
}

var _ domain.OutboxPublisher = (*topicPublisher)(nil)

// NewOutboxPublisher возвращает паблишер transactional outbox.
// При пустом topic используется основной topic событий заказов.
func NewOutboxPublisher(producer *Producer, topic string) domain.OutboxPublisher {
	if topic == "" {
		topic = TopicOrderEvents
	}
	return &topicPublisher{producer: producer, topic: topic}
}

func (p *topicPublisher) Publish(event domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka outbox publisher is not configured")
	}

	return p.producer.PublishEvent(p.topic, partitionKey(event), eventEnvelope{
		ID:            event.ID,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		EventType:     event.EventType,
		Payload:       json.RawMessage(event.Payload),
		PublishedAt:   time.Now().UTC(),
	})
}

// partitionKey выбирает ключ партиционирования: агрегат, если он есть,
// иначе сам идентификатор outbox-записи.
func partitionKey(event domain.OutboxMessage) string {
	if event.AggregateID != "" {
		return event.AggregateID
	}
	return event.ID
}
