package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"peopledesk/internal/core/apperror"
	"peopledesk/internal/domain/filter"
	"peopledesk/internal/export"
	"peopledesk/internal/listing"
	"peopledesk/internal/metadata"
)

type queryOptions struct {
	search  string
	filters []string
	where   []string
	expr    string
	sort    string
	page    int
	size    int
	fields  []string
	output  string
}

func newQueryCmd(root *rootOptions) *cobra.Command {
	var opts queryOptions

	cmd := &cobra.Command{
		Use:   "query <screen>",
		Short: "Print one page of a screen",
		Example: `  peoplectl query employees --search sarah
  peoplectl query employees --filter department=Finance --sort -salary --page 2
  peoplectl query deals --where amount:gte:10000 -o csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := opts.query()
			if err != nil {
				return err
			}

			a, err := openApp(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer a.Close()

			schema, err := a.Service.Schema(args[0])
			if err != nil {
				return err
			}
			fields, err := columns(schema, opts.fields)
			if err != nil {
				return apperror.NewValidation(err.Error())
			}
			applied, warnings := q.ResolveFilters(schema)
			for _, w := range warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), statusStyle.Render("warning: "+w))
			}
			q.Filters = applied

			page, err := a.Service.List(cmd.Context(), args[0], q)
			if err != nil {
				return err
			}

			f := export.NewFormatter(a.Config.List.Currency)
			return writePage(cmd.OutOrStdout(), opts.output, schema, fields, page, q, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.search, "search", "s", "", "Free-text search over searchable fields")
	flags.StringArrayVarP(&opts.filters, "filter", "f", nil, "Exact filter field=value (repeatable)")
	flags.StringArrayVarP(&opts.where, "where", "w", nil, "Condition field:op:value (repeatable)")
	flags.StringVar(&opts.expr, "expr", "", "CEL expression over record fields")
	flags.StringVar(&opts.sort, "sort", "", "Sort field, prefix with - for descending")
	flags.IntVarP(&opts.page, "page", "p", 1, "Page number")
	flags.IntVarP(&opts.size, "size", "n", 0, "Page size (default from LIST_PAGE_SIZE)")
	flags.StringSliceVar(&opts.fields, "fields", nil, "Columns to print")
	flags.StringVarP(&opts.output, "output", "o", "table", "Output format: table, json or csv")
	return cmd
}

func (o queryOptions) query() (listing.Query, error) {
	q := listing.Query{
		Search:     o.search,
		Filters:    make(map[string]any, len(o.filters)),
		Expression: o.expr,
		Sort:       listing.ParseSort(o.sort),
		Page:       o.page,
		PageSize:   o.size,
	}
	for _, f := range o.filters {
		name, value, ok := strings.Cut(f, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return q, apperror.NewValidation(fmt.Sprintf("filter %q: expected field=value", f))
		}
		q.Filters[strings.TrimSpace(name)] = value
	}
	for _, w := range o.where {
		it, err := filter.ParseShorthand(w)
		if err != nil {
			return q, apperror.NewInvalidFilter(w, err.Error())
		}
		q.Conditions = append(q.Conditions, it)
	}
	return q, nil
}

func writePage(w io.Writer, output string, schema metadata.Schema, fields []metadata.FieldDef, page listing.Page, q listing.Query, f export.Formatter) error {
	switch strings.ToLower(output) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(page)
	case "csv":
		projected := schema
		projected.Fields = fields
		return f.WriteCSV(w, projected, page.Items)
	case "table", "":
		fmt.Fprintln(w, titleStyle.Render(schema.Label))
		fmt.Fprintln(w, renderTable(fields, page.Items, f))
		fmt.Fprintln(w, footerStyle.Render(pageSummary(page, q)))
		return nil
	}
	return apperror.NewValidation(fmt.Sprintf("unknown output %q, want table, json or csv", output))
}
