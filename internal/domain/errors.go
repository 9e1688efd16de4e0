package domain

import "errors"

var (
	// Ошибка отсутствующего имени клиента.
	ErrClientNameRequired = errors.New("client name is required")
	// Ошибка некорректного числа гостей (не число или меньше единицы).
	ErrGuestsInvalid = errors.New("number of guests must be a positive integer")
	// Ошибка отсутствующего слота времени.
	ErrTimeRequired = errors.New("time slot is required")
	// Ошибка отсутствующего названия блюда.
	ErrDishNameRequired = errors.New("dish name is required")
	// Ошибка некорректного количества порций (<= 0).
	ErrDishQtyInvalid = errors.New("dish quantity must be greater than zero")
	// ErrTooManyDishes: порций больше, чем гостей. Бронь не изменена.
	ErrTooManyDishes = errors.New("too many dishes for the number of guests")
	// ErrInvalidReservation: бронь не проходит Validate и не может быть принята.
	ErrInvalidReservation = errors.New("invalid reservation")
	// ErrCapacityExceeded: в слоте уже достигнут лимит броней.
	ErrCapacityExceeded = errors.New("reservation limit per hour reached")
	// ErrSnapshotNotFound возвращается бэкендом, если снимок ещё ни разу не сохранялся.
	ErrSnapshotNotFound = errors.New("reservations snapshot not found")
	// ErrPersistenceCorrupt: сохранённый снимок не удалось разобрать. Фатально для экземпляра хранилища.
	ErrPersistenceCorrupt = errors.New("persisted reservations are corrupt")
	// ErrPersistenceWriteFailed: запись снимка не удалась, бронь не принята.
	ErrPersistenceWriteFailed = errors.New("persisting reservations failed")
	// Ошибка публикации события о брони.
	ErrEventPublish = errors.New("reservation event publish failed")
)

// IsCapacityExceeded проверяет, является ли ошибка переполнением слота.
func IsCapacityExceeded(err error) bool {
	return errors.Is(err, ErrCapacityExceeded)
}

// IsTooManyDishes проверяет, отклонён ли набор блюд из-за числа гостей.
func IsTooManyDishes(err error) bool {
	return errors.Is(err, ErrTooManyDishes)
}
