package domain

import (
	"errors"
	"math"
	"testing"
)

func TestReservation_AssignDishes(t *testing.T) {
	tests := []struct {
		name    string
		guests  int
		dishes  []DishLine
		wantErr error
	}{
		{
			name:   "fewer dishes than guests",
			guests: 3,
			dishes: []DishLine{{Name: "taco", Quantity: 1}},
		},
		{
			name:   "exactly one dish per guest",
			guests: 2,
			dishes: []DishLine{{Name: "taco", Quantity: 1}, {Name: "soup", Quantity: 1}},
		},
		{
			name:    "more dishes than guests",
			guests:  2,
			dishes:  []DishLine{{Name: "taco", Quantity: 2}, {Name: "soup", Quantity: 1}},
			wantErr: ErrTooManyDishes,
		},
		{
			name:   "empty selection",
			guests: 2,
			dishes: nil,
		},
		{
			name:    "quantities that overflow int",
			guests:  1,
			dishes:  []DishLine{{Name: "taco", Quantity: math.MaxInt}, {Name: "soup", Quantity: 2}},
			wantErr: ErrTooManyDishes,
		},
		{
			name:    "single huge quantity",
			guests:  3,
			dishes:  []DishLine{{Name: "taco", Quantity: math.MaxInt}},
			wantErr: ErrTooManyDishes,
		},
		{
			name:    "negative quantity offsets the total",
			guests:  1,
			dishes:  []DishLine{{Name: "taco", Quantity: 3}, {Name: "soup", Quantity: -2}},
			wantErr: ErrDishQtyInvalid,
		},
		{
			name:    "zero quantity",
			guests:  2,
			dishes:  []DishLine{{Name: "taco", Quantity: 0}},
			wantErr: ErrDishQtyInvalid,
		},
		{
			name:    "unnamed dish",
			guests:  2,
			dishes:  []DishLine{{Name: "", Quantity: 1}},
			wantErr: ErrDishNameRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReservation("Ana", tt.guests, "18:00")
			err := r.AssignDishes(tt.dishes)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if len(r.Dishes) != 0 {
					t.Fatalf("rejected assignment must leave dishes empty, got %v", r.Dishes)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(r.Dishes) != len(tt.dishes) {
				t.Fatalf("expected %d dishes, got %d", len(tt.dishes), len(r.Dishes))
			}
		})
	}
}

func TestReservation_AssignDishesKeepsPreviousOnReject(t *testing.T) {
	r := NewReservation("Ana", 2, "18:00")
	if err := r.AssignDishes([]DishLine{{Name: "taco", Quantity: 2}}); err != nil {
		t.Fatalf("first assignment failed: %v", err)
	}

	if err := r.AssignDishes([]DishLine{{Name: "soup", Quantity: 3}}); err == nil {
		t.Fatal("expected rejection")
	}

	if len(r.Dishes) != 1 || r.Dishes[0].Name != "taco" {
		t.Fatalf("dishes changed after rejected assignment: %v", r.Dishes)
	}
}

func TestReservation_AssignDishesCopiesInput(t *testing.T) {
	r := NewReservation("Ana", 2, "18:00")
	dishes := []DishLine{{Name: "taco", Quantity: 1}}
	if err := r.AssignDishes(dishes); err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	dishes[0].Name = "changed"
	if r.Dishes[0].Name != "taco" {
		t.Fatalf("reservation shares dish slice with caller")
	}
}

func TestReservation_Describe(t *testing.T) {
	tests := []struct {
		name   string
		dishes []DishLine
		want   string
	}{
		{
			name:   "single dish",
			dishes: []DishLine{{Name: "Taco", Quantity: 1}},
			want:   "Cliente: Ana, Número de invitados: 2, Hora: 18:00, Platos: 1x Taco",
		},
		{
			name:   "several dishes keep order",
			dishes: []DishLine{{Name: "Taco", Quantity: 1}, {Name: "Sopa", Quantity: 1}},
			want:   "Cliente: Ana, Número de invitados: 2, Hora: 18:00, Platos: 1x Taco, 1x Sopa",
		},
		{
			name: "draft",
			want: "Cliente: Ana, Número de invitados: 2, Hora: 18:00, Platos: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReservation("Ana", 2, "18:00")
			if err := r.AssignDishes(tt.dishes); err != nil {
				t.Fatalf("assign failed: %v", err)
			}

			first := r.Describe()
			second := r.Describe()
			if first != tt.want {
				t.Fatalf("Describe() = %q, want %q", first, tt.want)
			}
			if first != second {
				t.Fatalf("Describe() is not deterministic: %q vs %q", first, second)
			}
		})
	}
}

func TestParseGuests(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{raw: "2", want: 2},
		{raw: " 4 ", want: 4},
		{raw: "0", wantErr: true},
		{raw: "-1", wantErr: true},
		{raw: "dos", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseGuests(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrGuestsInvalid) {
					t.Fatalf("expected ErrGuestsInvalid, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseGuests(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestReservation_Validate(t *testing.T) {
	tests := []struct {
		name        string
		reservation Reservation
		errCount    int
	}{
		{
			name:        "valid draft",
			reservation: Reservation{ClientName: "Ana", NumOfGuests: 2, Time: "18:00"},
		},
		{
			name: "valid with dishes",
			reservation: Reservation{
				ClientName: "Ana", NumOfGuests: 2, Time: "18:00",
				Dishes: []DishLine{{Name: "Taco", Quantity: 2}},
			},
		},
		{
			name:        "all fields missing",
			reservation: Reservation{},
			errCount:    3, // name, guests, time
		},
		{
			name: "bad dish line",
			reservation: Reservation{
				ClientName: "Ana", NumOfGuests: 2, Time: "18:00",
				Dishes: []DishLine{{Name: "", Quantity: 0}},
			},
			errCount: 2,
		},
		{
			name: "dish total overflows int",
			reservation: Reservation{
				ClientName: "Ana", NumOfGuests: 1, Time: "18:00",
				Dishes: []DishLine{{Name: "Taco", Quantity: math.MaxInt}, {Name: "Sopa", Quantity: 2}},
			},
			errCount: 1,
		},
		{
			name: "negative line does not hide surplus",
			reservation: Reservation{
				ClientName: "Ana", NumOfGuests: 1, Time: "18:00",
				Dishes: []DishLine{{Name: "Taco", Quantity: 3}, {Name: "Sopa", Quantity: -2}},
			},
			errCount: 2, // quantity, too many
		},
		{
			name: "dish total over guests",
			reservation: Reservation{
				ClientName: "Ana", NumOfGuests: 1, Time: "18:00",
				Dishes: []DishLine{{Name: "Taco", Quantity: 2}},
			},
			errCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.reservation.Validate()
			if len(errs) != tt.errCount {
				t.Errorf("expected %d errors, got %d: %v", tt.errCount, len(errs), errs)
			}
		})
	}
}

func TestReservation_CloneAndEqual(t *testing.T) {
	r := Reservation{
		ClientName: "Ana", NumOfGuests: 2, Time: "18:00",
		Dishes: []DishLine{{Name: "Taco", Quantity: 1}},
	}

	c := r.Clone()
	if !c.Equal(r) {
		t.Fatal("clone must be equal to original")
	}

	c.Dishes[0].Quantity = 2
	if r.Dishes[0].Quantity != 1 {
		t.Fatal("clone shares dishes with original")
	}
	if c.Equal(r) {
		t.Fatal("modified clone must not be equal")
	}

	draft := Reservation{ClientName: "Ana", NumOfGuests: 2, Time: "18:00", Dishes: []DishLine{}}
	if !draft.Equal(Reservation{ClientName: "Ana", NumOfGuests: 2, Time: "18:00"}) {
		t.Fatal("nil and empty dishes should compare equal")
	}
}

func TestTotalQuantity_Saturates(t *testing.T) {
	if got := TotalQuantity([]DishLine{{Quantity: math.MaxInt}, {Quantity: 2}}); got != math.MaxInt {
		t.Fatalf("expected math.MaxInt, got %d", got)
	}
	if got := TotalQuantity([]DishLine{{Quantity: math.MinInt}, {Quantity: -1}}); got != math.MinInt {
		t.Fatalf("expected math.MinInt, got %d", got)
	}
	if got := TotalQuantity([]DishLine{{Quantity: 2}, {Quantity: 3}}); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
}
