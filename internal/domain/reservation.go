package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DishLine описывает одну позицию меню в брони: название блюда и количество порций.
type DishLine struct {
	Name     string
	Quantity int
}

// Reservation описывает бронь столика на определённый слот времени.
//
// Time хранит непрозрачный ключ слота ("18:00"). Лимит по слоту считается
// по точному совпадению строки, без нормализации.
type Reservation struct {
	ClientName  string
	NumOfGuests int
	Time        string
	// Dishes пуст, пока бронь находится в состоянии черновика.
	Dishes []DishLine
}

// NewReservation создаёт черновик брони без блюд.
// Наличие полей проверяет вызывающая сторона.
func NewReservation(clientName string, numOfGuests int, time string) Reservation {
	return Reservation{
		ClientName:  clientName,
		NumOfGuests: numOfGuests,
		Time:        time,
	}
}

// ParseGuests приводит сырое значение из формы к положительному числу гостей.
func ParseGuests(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrGuestsInvalid, raw)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: %d", ErrGuestsInvalid, n)
	}
	return n, nil
}

// TotalQuantity суммирует количество порций в списке блюд.
// При переполнении сумма упирается в math.MaxInt или math.MinInt.
func TotalQuantity(dishes []DishLine) int {
	var total int
	for _, d := range dishes {
		switch {
		case d.Quantity > 0 && total > math.MaxInt-d.Quantity:
			return math.MaxInt
		case d.Quantity < 0 && total < math.MinInt-d.Quantity:
			return math.MinInt
		}
		total += d.Quantity
	}
	return total
}

// fitsGuests проверяет, что положительные порции в сумме не превышают guests.
// Накопленная сумма никогда не больше guests, поэтому не переполняется.
// Позиции с количеством < 1 пропускаются: их отклоняет Validate.
func fitsGuests(dishes []DishLine, guests int) bool {
	var total int
	for _, d := range dishes {
		if d.Quantity < 1 {
			continue
		}
		if d.Quantity > guests-total {
			return false
		}
		total += d.Quantity
	}
	return true
}

// DishTotal возвращает суммарное количество порций в брони.
func (r Reservation) DishTotal() int {
	return TotalQuantity(r.Dishes)
}

// AssignDishes привязывает блюда к брони, если у каждой позиции есть название
// и положительное количество, а порций не больше, чем гостей.
// При отказе бронь не меняется.
func (r *Reservation) AssignDishes(dishes []DishLine) error {
	for i, d := range dishes {
		if d.Name == "" {
			return fmt.Errorf("%w: line %d", ErrDishNameRequired, i)
		}
		if d.Quantity < 1 {
			return fmt.Errorf("%w: %q has %d", ErrDishQtyInvalid, d.Name, d.Quantity)
		}
	}
	if !fitsGuests(dishes, r.NumOfGuests) {
		return fmt.Errorf("%w: %d dishes for %d guests", ErrTooManyDishes, TotalQuantity(dishes), r.NumOfGuests)
	}
	r.Dishes = append([]DishLine(nil), dishes...)
	return nil
}

// Describe возвращает человекочитаемое описание брони.
func (r Reservation) Describe() string {
	parts := make([]string, 0, len(r.Dishes))
	for _, d := range r.Dishes {
		parts = append(parts, fmt.Sprintf("%dx %s", d.Quantity, d.Name))
	}
	return fmt.Sprintf("Cliente: %s, Número de invitados: %d, Hora: %s, Platos: %s",
		r.ClientName, r.NumOfGuests, r.Time, strings.Join(parts, ", "))
}

// Clone возвращает копию брони, не разделяющую слайс блюд с оригиналом.
func (r Reservation) Clone() Reservation {
	if r.Dishes != nil {
		r.Dishes = append([]DishLine(nil), r.Dishes...)
	}
	return r
}

// Equal сравнивает брони по всем полям. nil и пустой список блюд равны.
func (r Reservation) Equal(other Reservation) bool {
	if r.ClientName != other.ClientName || r.NumOfGuests != other.NumOfGuests || r.Time != other.Time {
		return false
	}
	if len(r.Dishes) != len(other.Dishes) {
		return false
	}
	for i := range r.Dishes {
		if r.Dishes[i] != other.Dishes[i] {
			return false
		}
	}
	return true
}

// Validate проверяет инварианты брони и возвращает список замечаний.
func (r *Reservation) Validate() []error {
	var errs []error

	if r.ClientName == "" {
		errs = append(errs, ErrClientNameRequired)
	}
	if r.NumOfGuests < 1 {
		errs = append(errs, ErrGuestsInvalid)
	}
	if r.Time == "" {
		errs = append(errs, ErrTimeRequired)
	}
	for _, d := range r.Dishes {
		if d.Name == "" {
			errs = append(errs, ErrDishNameRequired)
		}
		if d.Quantity < 1 {
			errs = append(errs, ErrDishQtyInvalid)
		}
	}
	if !fitsGuests(r.Dishes, r.NumOfGuests) {
		errs = append(errs, ErrTooManyDishes)
	}

	return errs
}
