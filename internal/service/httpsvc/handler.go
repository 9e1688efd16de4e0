// Package httpsvc отдаёт JSON API броней и меню поверх gorilla/mux.
package httpsvc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/tablebook/internal/domain"
	"github.com/vladislavdragonenkov/tablebook/internal/menu"
	"github.com/vladislavdragonenkov/tablebook/internal/service/form"
)

const maxBodyBytes = 1 << 20

// ReservationService перечисляет операции хранилища броней, нужные API.
type ReservationService interface {
	Admit(ctx context.Context, r domain.Reservation) error
	List() []domain.Reservation
	ReservationsAt(slot string) []domain.Reservation
	Remaining(slot string) int
	Limit() int
}

// Handler обслуживает HTTP API.
type Handler struct {
	store   ReservationService
	catalog *menu.Catalog
	logger  *log.Entry
}

// NewHandler создаёт handler. catalog может быть nil, если меню не загрузилось.
func NewHandler(store ReservationService, catalog *menu.Catalog, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.WithField("component", "http-api")
	}
	return &Handler{store: store, catalog: catalog, logger: logger}
}

// Router возвращает маршруты API.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.logRequests)
	r.HandleFunc("/reservations", h.listReservations).Methods(http.MethodGet)
	r.HandleFunc("/reservations", h.createReservation).Methods(http.MethodPost)
	r.HandleFunc("/slots/{time}", h.slotStatus).Methods(http.MethodGet)
	r.HandleFunc("/menu", h.getMenu).Methods(http.MethodGet)
	return r
}

type dishJSON struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type reservationJSON struct {
	ClientName  string     `json:"clientName"`
	NumOfGuests int        `json:"numOfGuests"`
	Time        string     `json:"time"`
	Dishes      []dishJSON `json:"dishes"`
	Summary     string     `json:"summary"`
}

type listResponse struct {
	Reservations []reservationJSON `json:"reservations"`
	Message      string            `json:"message,omitempty"`
}

type createRequest struct {
	ClientName  string          `json:"clientName"`
	NumOfGuests json.RawMessage `json:"numOfGuests"`
	Time        string          `json:"time"`
	Dishes      []dishJSON      `json:"dishes"`
}

type createResponse struct {
	Reservation reservationJSON `json:"reservation"`
	Message     string          `json:"message"`
}

type slotResponse struct {
	Time      string `json:"time"`
	Count     int    `json:"count"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
}

type menuItemJSON struct {
	Nombre string  `json:"nombre"`
	Precio float64 `json:"precio"`
	Imagen string  `json:"imagen,omitempty"`
	Label  string  `json:"label"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func (h *Handler) listReservations(w http.ResponseWriter, r *http.Request) {
	var reservations []domain.Reservation
	if slot := r.URL.Query().Get("time"); slot != "" {
		reservations = h.store.ReservationsAt(slot)
	} else {
		reservations = h.store.List()
	}

	resp := listResponse{Reservations: make([]reservationJSON, 0, len(reservations))}
	for _, res := range reservations {
		resp.Reservations = append(resp.Reservations, toJSON(res))
	}
	if len(resp.Reservations) == 0 {
		resp.Message = form.EmptyList
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) createReservation(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, form.InvalidRequest, err)
		return
	}

	reservation, err := form.Build(form.Input{
		ClientName: req.ClientName,
		Guests:     guestsString(req.NumOfGuests),
		Time:       req.Time,
		Dishes:     toDishLines(req.Dishes),
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, form.Message(err), err)
		return
	}

	err = h.store.Admit(r.Context(), reservation)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, createResponse{
			Reservation: toJSON(reservation),
			Message:     reservation.Describe(),
		})
	case domain.IsCapacityExceeded(err):
		writeError(w, http.StatusConflict, form.Message(err), err)
	case domain.IsTooManyDishes(err), errors.Is(err, domain.ErrInvalidReservation):
		writeError(w, http.StatusBadRequest, form.Message(err), err)
	default:
		h.logger.WithError(err).Error("reservation admission failed")
		writeError(w, http.StatusInternalServerError, form.SaveFailed, nil)
	}
}

func toDishLines(dishes []dishJSON) []domain.DishLine {
	lines := make([]domain.DishLine, 0, len(dishes))
	for _, d := range dishes {
		lines = append(lines, domain.DishLine{Name: d.Name, Quantity: d.Quantity})
	}
	return lines
}

// guestsString принимает число гостей как JSON-число или строку.
func guestsString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}

func (h *Handler) slotStatus(w http.ResponseWriter, r *http.Request) {
	slot := mux.Vars(r)["time"]
	writeJSON(w, http.StatusOK, slotResponse{
		Time:      slot,
		Count:     len(h.store.ReservationsAt(slot)),
		Limit:     h.store.Limit(),
		Remaining: h.store.Remaining(slot),
	})
}

func (h *Handler) getMenu(w http.ResponseWriter, _ *http.Request) {
	if h.catalog == nil {
		writeError(w, http.StatusServiceUnavailable, form.MenuUnavailable, nil)
		return
	}

	items := h.catalog.Items()
	resp := make([]menuItemJSON, 0, len(items))
	for _, item := range items {
		resp = append(resp, menuItemJSON{
			Nombre: item.Name,
			Precio: item.Price,
			Imagen: item.ImageRef,
			Label:  item.Label(),
		})
	}
	writeJSON(w, http.StatusOK, map[string][]menuItemJSON{"items": resp})
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger.WithFields(log.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("http request handled")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func toJSON(r domain.Reservation) reservationJSON {
	dishes := make([]dishJSON, 0, len(r.Dishes))
	for _, d := range r.Dishes {
		dishes = append(dishes, dishJSON{Name: d.Name, Quantity: d.Quantity})
	}
	return reservationJSON{
		ClientName:  r.ClientName,
		NumOfGuests: r.NumOfGuests,
		Time:        r.Time,
		Dishes:      dishes,
		Summary:     r.Describe(),
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	resp := errorResponse{Error: msg}
	if err != nil {
		resp.Detail = err.Error()
	}
	writeJSON(w, status, resp)
}
