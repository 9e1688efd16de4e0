package kafka

// Topics для Kafka
const (
	TopicReservationEvents = "tablebook.reservation.events"
)

// Kafka headers
const (
	HeaderEventType = "x-event-type"
	HeaderEventID   = "x-event-id"
)
