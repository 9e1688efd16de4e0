package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/tablebook/internal/domain"
	"github.com/vladislavdragonenkov/tablebook/internal/service/form"
)

func newReserveCmd(opts *rootOptions) *cobra.Command {
	var (
		name   string
		guests string
		slot   string
		dishes []string
	)

	c := &cobra.Command{
		Use:     "reserve",
		Short:   "Crear una reserva",
		Example: `  tablebook reserve --name Ana --guests 2 --time 18:00 --dish Taco=1 --dish Sopa=1`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lines, err := parseDishFlags(dishes)
			if err != nil {
				return err
			}

			reservation, err := form.Build(form.Input{
				ClientName: name,
				Guests:     guests,
				Time:       slot,
				Dishes:     lines,
			})
			if err != nil {
				return userError(err)
			}

			store, err := opts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					log.WithError(err).Warn("failed to close reservation store")
				}
			}()

			if err := store.Admit(cmd.Context(), reservation); err != nil {
				return userError(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", form.Confirmed, reservation.Describe())
			return nil
		},
	}

	c.Flags().StringVar(&name, "name", "", "client name")
	c.Flags().StringVar(&guests, "guests", "", "number of guests")
	c.Flags().StringVar(&slot, "time", "", "time slot, e.g. 18:00")
	c.Flags().StringArrayVar(&dishes, "dish", nil, "dish as name=quantity (repeatable)")
	return c
}

// parseDishFlags разбирает значения вида "Taco=2".
func parseDishFlags(values []string) ([]domain.DishLine, error) {
	lines := make([]domain.DishLine, 0, len(values))
	for _, v := range values {
		name, qty, ok := strings.Cut(v, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --dish %q: expected name=quantity", v)
		}
		n, err := strconv.Atoi(strings.TrimSpace(qty))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid --dish %q: quantity must be a non-negative integer", v)
		}
		lines = append(lines, domain.DishLine{Name: strings.TrimSpace(name), Quantity: n})
	}
	return lines, nil
}

// userError добавляет к ошибке сообщение для пользователя.
func userError(err error) error {
	var formErr *form.Error
	if errors.As(err, &formErr) {
		return err
	}
	return fmt.Errorf("%s: %w", form.Message(err), err)
}
