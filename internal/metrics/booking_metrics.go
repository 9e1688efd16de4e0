package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Причины отказа в приёме брони (значения label reason).
const (
	RejectCapacity    = "capacity"
	RejectInvalid     = "invalid"
	RejectPersistence = "persistence"
)

// BookingMetrics содержит метрики хранилища броней.
// Все методы безопасны для nil-получателя: хранилище может работать без метрик.
type BookingMetrics struct {
	admitted        prometheus.Counter
	rejected        *prometheus.CounterVec
	publishFailures prometheus.Counter
	persistDuration prometheus.Histogram
	reservations    prometheus.Gauge
	loaded          prometheus.Counter
}

// NewBookingMetrics регистрирует метрики в prometheus.DefaultRegisterer.
func NewBookingMetrics() *BookingMetrics {
	return NewBookingMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewBookingMetricsWithRegisterer регистрирует метрики в переданном реестре.
// Повторная регистрация возвращает уже существующие коллекторы.
func NewBookingMetricsWithRegisterer(registerer prometheus.Registerer) *BookingMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &BookingMetrics{
		admitted: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tablebook_reservations_admitted_total",
			Help: "Total number of reservations admitted into the store",
		})),
		rejected: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tablebook_reservations_rejected_total",
			Help: "Total number of rejected reservations grouped by reason",
		}, []string{"reason"})),
		publishFailures: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tablebook_event_publish_failures_total",
			Help: "Total number of reservation events that could not be published",
		})),
		persistDuration: register(registerer, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tablebook_snapshot_persist_duration_seconds",
			Help:    "Duration of full snapshot writes in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		})),
		reservations: register(registerer, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tablebook_reservations",
			Help: "Number of admitted reservations currently held by the store",
		})),
		loaded: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tablebook_snapshot_loads_total",
			Help: "Total number of successful snapshot loads",
		})),
	}
}

// register регистрирует коллектор или возвращает ранее зарегистрированный того же типа.
func register[T prometheus.Collector](registerer prometheus.Registerer, collector T) T {
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(T)
			if !ok {
				panic(fmt.Sprintf("collector already registered with unexpected type: %T", alreadyRegistered.ExistingCollector))
			}
			return existing
		}
		panic(fmt.Sprintf("register collector: %v", err))
	}
	return collector
}

// RecordAdmitted учитывает принятую бронь и текущий размер хранилища.
func (m *BookingMetrics) RecordAdmitted(total int) {
	if m == nil {
		return
	}
	m.admitted.Inc()
	m.reservations.Set(float64(total))
}

// RecordRejected учитывает отказ с указанной причиной.
func (m *BookingMetrics) RecordRejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

// RecordPublishFailure учитывает неотправленное событие.
func (m *BookingMetrics) RecordPublishFailure() {
	if m == nil {
		return
	}
	m.publishFailures.Inc()
}

// RecordPersistDuration записывает длительность записи снимка.
func (m *BookingMetrics) RecordPersistDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.persistDuration.Observe(d.Seconds())
}

// RecordLoaded учитывает загрузку снимка.
func (m *BookingMetrics) RecordLoaded(total int) {
	if m == nil {
		return
	}
	m.loaded.Inc()
	m.reservations.Set(float64(total))
}
