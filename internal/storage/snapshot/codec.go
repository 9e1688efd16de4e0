// Package snapshot кодирует коллекцию броней в JSON-снимок и обратно.
//
// Формат: массив объектов {clientName, numOfGuests, time, dishes}.
// numOfGuests всегда пишется числом, но при чтении допускается и строка
// с числом: так данные сохранялись прямо из поля формы.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vladislavdragonenkov/tablebook/internal/domain"
)

type dishRecord struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type reservationRecord struct {
	ClientName  string       `json:"clientName"`
	NumOfGuests guests       `json:"numOfGuests"`
	Time        string       `json:"time"`
	Dishes      []dishRecord `json:"dishes,omitempty"`
}

// guests принимает как число, так и строку с числом.
type guests int

func (g *guests) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("numOfGuests %q is not a number", raw)
		}
		*g = guests(n)
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("numOfGuests: %w", err)
	}
	*g = guests(n)
	return nil
}

// Encode сериализует брони в порядке приёма.
func Encode(reservations []domain.Reservation) ([]byte, error) {
	records := make([]reservationRecord, 0, len(reservations))
	for _, r := range reservations {
		rec := reservationRecord{
			ClientName:  r.ClientName,
			NumOfGuests: guests(r.NumOfGuests),
			Time:        r.Time,
		}
		for _, d := range r.Dishes {
			rec.Dishes = append(rec.Dishes, dishRecord{Name: d.Name, Quantity: d.Quantity})
		}
		records = append(records, rec)
	}

	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode reservations snapshot: %w", err)
	}
	return data, nil
}

// Decode разбирает снимок и проверяет инварианты каждой брони.
// Любая проблема возвращается как domain.ErrPersistenceCorrupt.
func Decode(data []byte) ([]domain.Reservation, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	var records []reservationRecord
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceCorrupt, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after snapshot", domain.ErrPersistenceCorrupt)
	}

	reservations := make([]domain.Reservation, 0, len(records))
	for i, rec := range records {
		r := domain.Reservation{
			ClientName:  rec.ClientName,
			NumOfGuests: int(rec.NumOfGuests),
			Time:        rec.Time,
		}
		for _, d := range rec.Dishes {
			r.Dishes = append(r.Dishes, domain.DishLine{Name: d.Name, Quantity: d.Quantity})
		}
		if errs := r.Validate(); len(errs) > 0 {
			return nil, fmt.Errorf("%w: record %d: %w", domain.ErrPersistenceCorrupt, i, errors.Join(errs...))
		}
		reservations = append(reservations, r)
	}

	return reservations, nil
}
