// Package messaging содержит общий формат событий о бронях для брокеров.
package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/tablebook/internal/domain"
)

// DishPayload описывает позицию блюда в событии.
type DishPayload struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// ReservationEnvelope задаёт JSON-представление domain.ReservationEvent.
type ReservationEnvelope struct {
	EventID     string        `json:"event_id"`
	EventType   string        `json:"event_type"`
	ClientName  string        `json:"clientName"`
	NumOfGuests int           `json:"numOfGuests"`
	Time        string        `json:"time"`
	Dishes      []DishPayload `json:"dishes,omitempty"`
	Summary     string        `json:"summary"`
	SlotCount   int           `json:"slot_count"`
	OccurredAt  time.Time     `json:"occurred_at"`
}

// NewEnvelope переводит доменное событие в формат для брокера.
func NewEnvelope(event domain.ReservationEvent) ReservationEnvelope {
	r := event.Reservation
	env := ReservationEnvelope{
		EventID:     event.ID,
		EventType:   string(event.Type),
		ClientName:  r.ClientName,
		NumOfGuests: r.NumOfGuests,
		Time:        r.Time,
		Summary:     r.Describe(),
		SlotCount:   event.SlotCount,
		OccurredAt:  event.OccurredAt.UTC(),
	}
	for _, d := range r.Dishes {
		env.Dishes = append(env.Dishes, DishPayload{Name: d.Name, Quantity: d.Quantity})
	}
	return env
}

// Marshal сериализует событие в JSON.
func Marshal(event domain.ReservationEvent) ([]byte, error) {
	data, err := json.Marshal(NewEnvelope(event))
	if err != nil {
		return nil, fmt.Errorf("marshal reservation event: %w", err)
	}
	return data, nil
}

// Key возвращает ключ партиционирования: события одного слота идут по порядку.
func Key(event domain.ReservationEvent) string {
	if event.Reservation.Time != "" {
		return event.Reservation.Time
	}
	return event.ID
}
