package domain

import (
	"context"
	"time"
)

// SnapshotKey задаёт фиксированный ключ, под которым хранится коллекция броней.
const SnapshotKey = "reservations"

// SnapshotStore хранит сериализованную коллекцию броней целиком.
type SnapshotStore interface {
	// Load возвращает последний сохранённый снимок или ErrSnapshotNotFound.
	Load(ctx context.Context) ([]byte, error)
	// Save атомарно заменяет снимок целиком.
	Save(ctx context.Context, data []byte) error
}

// Pinger реализуется бэкендами, которые умеют проверять своё состояние.
type Pinger interface {
	Ping(ctx context.Context) error
}

// EventPublisher публикует события о принятых бронях.
type EventPublisher interface {
	PublishReservation(ctx context.Context, event ReservationEvent) error
}

// ReservationEventType задаёт тип события брони.
type ReservationEventType string

const (
	// ReservationEventAdmitted: бронь принята и сохранена.
	ReservationEventAdmitted ReservationEventType = "reservation.admitted"
)

// ReservationEvent описывает событие, отправляемое наружу после приёма брони.
type ReservationEvent struct {
	ID          string
	Type        ReservationEventType
	Reservation Reservation
	// SlotCount считает брони в слоте вместе с этой.
	SlotCount  int
	OccurredAt time.Time
}
