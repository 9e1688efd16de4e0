// Package form применяет правила формы брони, общие для CLI и HTTP API,
// и переводит доменные ошибки в сообщения для пользователя.
package form

import (
	"errors"
	"strings"

	"github.com/vladislavdragonenkov/tablebook/internal/domain"
)

const (
	FieldsIncomplete = "Campos incompletos"
	NoDishes         = "Sin platos seleccionados"
	TooManyDishes    = "Demasiados platos"
	LimitReached     = "Límite alcanzado"
	EmptyList        = "No hay reservas en la lista de hoy."
	MenuUnavailable  = "Error al cargar el menú"
	SaveFailed       = "No se pudo guardar la reserva"
	InvalidRequest   = "Solicitud inválida"
	Confirmed        = "Reserva confirmada"
)

// Input содержит сырые поля формы брони.
type Input struct {
	ClientName string
	Guests     string
	Time       string
	Dishes     []domain.DishLine
}

// Error описывает отказ формы с текстом для пользователя.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Build проверяет форму и собирает бронь с блюдами.
// Все поля обязательны, позиции с количеством <= 0 отбрасываются,
// нужна хотя бы одна позиция.
func Build(in Input) (domain.Reservation, error) {
	name := strings.TrimSpace(in.ClientName)
	slot := strings.TrimSpace(in.Time)
	if name == "" || slot == "" || strings.TrimSpace(in.Guests) == "" {
		return domain.Reservation{}, &Error{Message: FieldsIncomplete}
	}

	guests, err := domain.ParseGuests(in.Guests)
	if err != nil {
		return domain.Reservation{}, &Error{Message: FieldsIncomplete, Err: err}
	}

	dishes := make([]domain.DishLine, 0, len(in.Dishes))
	for _, d := range in.Dishes {
		if d.Quantity <= 0 {
			continue
		}
		dishes = append(dishes, domain.DishLine{Name: strings.TrimSpace(d.Name), Quantity: d.Quantity})
	}
	if len(dishes) == 0 {
		return domain.Reservation{}, &Error{Message: NoDishes}
	}

	reservation := domain.NewReservation(name, guests, slot)
	if err := reservation.AssignDishes(dishes); err != nil {
		if domain.IsTooManyDishes(err) {
			return domain.Reservation{}, &Error{Message: TooManyDishes, Err: err}
		}
		return domain.Reservation{}, &Error{Message: FieldsIncomplete, Err: err}
	}
	return reservation, nil
}

// Message возвращает текст для пользователя по ошибке формы или приёма брони.
func Message(err error) string {
	var formErr *Error
	switch {
	case err == nil:
		return ""
	case errors.As(err, &formErr):
		return formErr.Message
	case domain.IsCapacityExceeded(err):
		return LimitReached
	case domain.IsTooManyDishes(err):
		return TooManyDishes
	case errors.Is(err, domain.ErrInvalidReservation), errors.Is(err, domain.ErrGuestsInvalid):
		return FieldsIncomplete
	default:
		return SaveFailed
	}
}
