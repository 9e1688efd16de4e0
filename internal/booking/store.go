// Package booking управляет коллекцией принятых броней: лимит броней на слот,
// запись полного снимка при каждом приёме и загрузка снимка при старте.
package booking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/tablebook/internal/domain"
	"github.com/vladislavdragonenkov/tablebook/internal/metrics"
	"github.com/vladislavdragonenkov/tablebook/internal/storage/snapshot"
)

// DefaultLimitPerHour задаёт максимум броней с одинаковым ключом слота.
const DefaultLimitPerHour = 10

const (
	publishTimeout = 3 * time.Second
	eventQueueSize = 256
)

// ErrStoreClosed возвращается Admit после Close.
var ErrStoreClosed = errors.New("reservation store is closed")

// Options задаёт параметры хранилища броней.
type Options struct {
	LimitPerHour int
	Logger       *log.Entry
	Metrics      *metrics.BookingMetrics
	Publisher    domain.EventPublisher
}

// Option настраивает ReservationStore.
type Option func(*Options)

// WithLimitPerHour задаёт лимит броней на слот. Значения < 1 игнорируются.
func WithLimitPerHour(limit int) Option {
	return func(opts *Options) {
		opts.LimitPerHour = limit
	}
}

// WithLogger задаёт logger хранилища.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithMetrics подключает prometheus-метрики.
func WithMetrics(m *metrics.BookingMetrics) Option {
	return func(opts *Options) {
		opts.Metrics = m
	}
}

// WithPublisher задаёт publisher событий о принятых бронях.
func WithPublisher(publisher domain.EventPublisher) Option {
	return func(opts *Options) {
		opts.Publisher = publisher
	}
}

// ReservationStore единолично владеет принятыми бронями и их снимком.
// Admit сериализован мьютексом, поэтому один экземпляр можно разделять
// между конкурентными вызывающими.
type ReservationStore struct {
	mu           sync.RWMutex
	reservations []domain.Reservation
	closed       bool

	backend   domain.SnapshotStore
	limit     int
	logger    *log.Entry
	metrics   *metrics.BookingMetrics
	publisher domain.EventPublisher

	// events упорядочены так же, как приёмы: отправка идёт под mu,
	// читает очередь одна горутина dispatchEvents.
	events     chan domain.ReservationEvent
	dispatched chan struct{}
}

// Load читает снимок из backend и строит хранилище.
// Отсутствующий снимок даёт пустое хранилище; повреждённый даёт ошибку
// domain.ErrPersistenceCorrupt без попыток восстановления.
func Load(ctx context.Context, backend domain.SnapshotStore, options ...Option) (*ReservationStore, error) {
	if backend == nil {
		return nil, errors.New("snapshot backend is required")
	}

	opts := Options{LimitPerHour: DefaultLimitPerHour}
	for _, option := range options {
		option(&opts)
	}
	if opts.LimitPerHour < 1 {
		opts.LimitPerHour = DefaultLimitPerHour
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "reservation-store")
	}

	s := &ReservationStore{
		backend:   backend,
		limit:     opts.LimitPerHour,
		logger:    logger,
		metrics:   opts.Metrics,
		publisher: opts.Publisher,
	}

	data, err := backend.Load(ctx)
	switch {
	case errors.Is(err, domain.ErrSnapshotNotFound):
		s.reservations = []domain.Reservation{}
	case err != nil:
		return nil, fmt.Errorf("load reservations snapshot: %w", err)
	default:
		reservations, err := snapshot.Decode(data)
		if err != nil {
			logger.WithError(err).Error("persisted reservations are corrupt")
			return nil, err
		}
		s.reservations = reservations
	}

	if s.publisher != nil {
		s.events = make(chan domain.ReservationEvent, eventQueueSize)
		s.dispatched = make(chan struct{})
		go s.dispatchEvents()
	}

	s.metrics.RecordLoaded(len(s.reservations))
	logger.WithFields(log.Fields{
		"reservations":   len(s.reservations),
		"limit_per_hour": s.limit,
	}).Info("reservations loaded")

	return s, nil
}

// Limit возвращает лимит броней на один слот.
func (s *ReservationStore) Limit() int {
	return s.limit
}

// ReservationsAt возвращает брони слота в порядке приёма.
func (s *ReservationStore) ReservationsAt(slot string) []domain.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Reservation, 0)
	for _, r := range s.reservations {
		if r.Time == slot {
			result = append(result, r.Clone())
		}
	}
	return result
}

// Remaining возвращает число свободных мест в слоте.
func (s *ReservationStore) Remaining(slot string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	left := s.limit - s.countAt(slot)
	if left < 0 {
		return 0
	}
	return left
}

// List возвращает все принятые брони в порядке приёма.
func (s *ReservationStore) List() []domain.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Reservation, len(s.reservations))
	for i, r := range s.reservations {
		result[i] = r.Clone()
	}
	return result
}

// Len возвращает число принятых броней.
func (s *ReservationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reservations)
}

// Admit принимает бронь, если в её слоте ещё есть место, и записывает
// полный снимок. Проверка лимита, запись и фиксация в памяти выполняются
// под одним мьютексом. При ошибке записи состояние в памяти не меняется.
// Событие о приёме ставится в очередь под тем же мьютексом и публикуется
// асинхронно в порядке приёма.
func (s *ReservationStore) Admit(ctx context.Context, r domain.Reservation) error {
	logger := s.logger.WithFields(log.Fields{
		"client": r.ClientName,
		"guests": r.NumOfGuests,
		"slot":   r.Time,
	})

	if errs := r.Validate(); len(errs) > 0 {
		s.metrics.RecordRejected(metrics.RejectInvalid)
		return fmt.Errorf("%w: %w", domain.ErrInvalidReservation, errors.Join(errs...))
	}

	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}

	slotCount := s.countAt(r.Time)
	if slotCount >= s.limit {
		s.mu.Unlock()
		s.metrics.RecordRejected(metrics.RejectCapacity)
		logger.WithField("slot_count", slotCount).Info("reservation rejected: slot is full")
		return fmt.Errorf("%w: %d reservations at %q", domain.ErrCapacityExceeded, slotCount, r.Time)
	}

	next := make([]domain.Reservation, len(s.reservations), len(s.reservations)+1)
	copy(next, s.reservations)
	next = append(next, r.Clone())

	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		s.metrics.RecordRejected(metrics.RejectPersistence)
		logger.WithError(err).Error("reservation not admitted: snapshot write failed")
		return errors.Join(domain.ErrPersistenceWriteFailed, err)
	}

	s.reservations = next
	total := len(next)
	s.enqueueAdmitted(r, slotCount+1)
	s.mu.Unlock()

	s.metrics.RecordAdmitted(total)
	logger.WithField("slot_count", slotCount+1).Info("reservation admitted")
	return nil
}

// Close дожидается публикации событий из очереди и освобождает backend,
// если он этого требует. Повторный вызов ничего не делает.
func (s *ReservationStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.events != nil {
		close(s.events)
	}
	s.mu.Unlock()

	if s.dispatched != nil {
		<-s.dispatched
	}

	if closer, ok := s.backend.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Ping проверяет backend, если он это поддерживает.
func (s *ReservationStore) Ping(ctx context.Context) error {
	if pinger, ok := s.backend.(domain.Pinger); ok {
		return pinger.Ping(ctx)
	}
	return nil
}

func (s *ReservationStore) countAt(slot string) int {
	var n int
	for _, r := range s.reservations {
		if r.Time == slot {
			n++
		}
	}
	return n
}

func (s *ReservationStore) persist(ctx context.Context, reservations []domain.Reservation) error {
	data, err := snapshot.Encode(reservations)
	if err != nil {
		return err
	}

	start := time.Now()
	err = s.backend.Save(ctx, data)
	s.metrics.RecordPersistDuration(time.Since(start))
	return err
}

// enqueueAdmitted ставит событие о брони в очередь публикации.
// Вызывается под s.mu. Переполненная очередь не блокирует приём:
// событие отбрасывается и учитывается как неотправленное.
func (s *ReservationStore) enqueueAdmitted(r domain.Reservation, slotCount int) {
	if s.events == nil {
		return
	}

	event := domain.ReservationEvent{
		ID:          uuid.NewString(),
		Type:        domain.ReservationEventAdmitted,
		Reservation: r.Clone(),
		SlotCount:   slotCount,
		OccurredAt:  time.Now().UTC(),
	}
	select {
	case s.events <- event:
	default:
		s.metrics.RecordPublishFailure()
		s.logger.WithField("event_id", event.ID).Warn("event queue is full, reservation event dropped")
	}
}

// dispatchEvents публикует события по одному в порядке очереди.
// Ошибка публикации не отменяет приём: точкой фиксации служит запись снимка.
func (s *ReservationStore) dispatchEvents() {
	defer close(s.dispatched)

	for event := range s.events {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		err := s.publisher.PublishReservation(ctx, event)
		cancel()
		if err != nil {
			s.metrics.RecordPublishFailure()
			s.logger.WithError(errors.Join(domain.ErrEventPublish, err)).WithField("event_id", event.ID).
				Warn("reservation admitted but event was not published")
		}
	}
}
