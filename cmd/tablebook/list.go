package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/tablebook/internal/domain"
	"github.com/vladislavdragonenkov/tablebook/internal/service/form"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var slot string

	c := &cobra.Command{
		Use:   "list",
		Short: "Listar las reservas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := opts.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			var reservations []domain.Reservation
			if slot != "" {
				reservations = store.ReservationsAt(slot)
			} else {
				reservations = store.List()
			}

			out := cmd.OutOrStdout()
			if len(reservations) == 0 {
				fmt.Fprintln(out, form.EmptyList)
				return nil
			}
			for _, r := range reservations {
				fmt.Fprintln(out, r.Describe())
			}
			if slot != "" {
				fmt.Fprintf(out, "%d/%d\n", len(reservations), store.Limit())
			}
			return nil
		},
	}

	c.Flags().StringVar(&slot, "time", "", "only reservations for this time slot")
	return c
}
