package kafka

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/tablebook/internal/domain"
	"github.com/vladislavdragonenkov/tablebook/internal/messaging"
)

// ReservationPublisher публикует события о бронях в Kafka topic.
type ReservationPublisher struct {
	producer *Producer
	topic    string
}

// NewReservationPublisher создаёт паблишер поверх producer.
func NewReservationPublisher(producer *Producer, topic string) *ReservationPublisher {
	if topic == "" {
		topic = TopicReservationEvents
	}
	return &ReservationPublisher{producer: producer, topic: topic}
}

// PublishReservation отправляет событие. SyncProducer не принимает context,
// поэтому отменённый ctx проверяется только до отправки.
func (p *ReservationPublisher) PublishReservation(ctx context.Context, event domain.ReservationEvent) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka reservation publisher is not initialized")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := messaging.Marshal(event)
	if err != nil {
		return err
	}

	return p.producer.PublishRaw(p.topic, messaging.Key(event), payload, map[string]string{
		HeaderEventType: string(event.Type),
		HeaderEventID:   event.ID,
	})
}

// Close закрывает producer.
func (p *ReservationPublisher) Close() error {
	return p.producer.Close()
}

var _ domain.EventPublisher = (*ReservationPublisher)(nil)
