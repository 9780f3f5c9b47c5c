package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"peopledesk/internal/export"
	"peopledesk/internal/listing"
)

func newBrowseCmd(root *rootOptions) *cobra.Command {
	var (
		fields []string
		size   int
	)

	cmd := &cobra.Command{
		Use:   "browse <screen>",
		Short: "Browse a screen interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer a.Close()

			var opts []listing.Option
			if size > 0 {
				opts = append(opts, listing.WithPageSize(size))
			}
			ctrl, err := a.Service.Controller(cmd.Context(), args[0], opts...)
			if err != nil {
				return err
			}
			cols, err := columns(ctrl.Schema(), fields)
			if err != nil {
				return err
			}

			m := newBrowseModel(ctrl, cols, export.NewFormatter(a.Config.List.Currency))
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "Columns to show")
	cmd.Flags().IntVarP(&size, "size", "n", 0, "Page size")
	return cmd
}
