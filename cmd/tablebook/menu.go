package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/tablebook/internal/menu"
	"github.com/vladislavdragonenkov/tablebook/internal/service/form"
)

func newMenuCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Mostrar el menú",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := menu.LoadFile(opts.cfg.MenuPath)
			if err != nil {
				return fmt.Errorf("%s: %w", form.MenuUnavailable, err)
			}
			for _, line := range catalog.Render() {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}
