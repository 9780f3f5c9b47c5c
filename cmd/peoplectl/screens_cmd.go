package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"peopledesk/internal/listing"
)

func newScreensCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "screens",
		Short: "List the available screens and where their records come from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := renderScreens(cmd, a.Service)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func renderScreens(cmd *cobra.Command, svc *listing.Service) (string, error) {
	var rows [][]string
	for _, schema := range svc.Screens() {
		records, err := svc.Records(cmd.Context(), schema.Name)
		if err != nil {
			return "", err
		}
		filterable := make([]string, 0)
		for _, f := range schema.FilterableFields() {
			filterable = append(filterable, f.Name)
		}
		rows = append(rows, []string{
			schema.Name,
			schema.Label,
			fmt.Sprint(len(records)),
			strings.Join(filterable, ", "),
			svc.Source(schema.Name),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(muted)).
		Headers("Screen", "Label", "Records", "Filters", "Source").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.Render(), nil
}
