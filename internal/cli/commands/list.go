package commands

import (
	"encoding/csv"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/openradius/radops/internal/api"
	"github.com/openradius/radops/internal/cli/config"
	"github.com/openradius/radops/internal/cli/output"
	"github.com/openradius/radops/internal/grid"
	"github.com/openradius/radops/internal/radacct"
	"github.com/openradius/radops/internal/tui"
)

// ListOptions holds options for the list command.
type ListOptions struct {
	Format string
}

// NewListCommand creates the list command: one page of a console table
// rendered to stdout, for scripts and quick checks without the TUI.
func NewListCommand() *cobra.Command {
	opts := &ListOptions{}

	cmd := &cobra.Command{
		Use:   "list <table>",
		Short: "Fetch one page of a table and print it",
		Long: `Fetch one page of a console table and print it without opening the TUI.

The rows come through the same query pipeline the console uses: server-mode
tables (subscribers, radius-users) forward search/sort/page to the backend,
client-mode tables (sessions, operators) fetch the collection and filter
locally.`,
		Example: `  # Active subscribers, first page
  radops list subscribers

  # Search the trashed partition, sorted by name
  radops list subscribers --status=trashed --search=doe --sort-field=name

  # Everything, as JSON, for jq
  radops list radius-users --page-size=all --format=json`,
		ValidArgs: tui.Tables(),
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args[0], opts)
		},
	}

	AddConsoleFlags(cmd)
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: table, json, csv, md")

	return cmd
}

func runList(cmd *cobra.Command, tableName string, opts *ListOptions) error {
	cfg := getConfig()
	ctx := cmd.Context()
	logger := config.GetLogger(ctx)

	q, partition, err := listQuery(cmd, tableName, cfg)
	if err != nil {
		return err
	}

	client, err := api.NewClient(api.Config{
		BaseURL: cfg.API.URL,
		Token:   cfg.API.Token,
		Timeout: cfg.API.Timeout,
	}, logger)
	if err != nil {
		return err
	}

	deps := tui.Deps{Client: client}
	if tableName == tui.TableSessions {
		if !cfg.Radacct.StoreConfig().Configured() {
			return fmt.Errorf("accounting database not configured, see radacct settings")
		}
		store, err := radacct.Open(ctx, cfg.Radacct.StoreConfig(), logger)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		deps.Radacct = store
	}

	result, registry, err := tui.FetchOnce(ctx, deps, tableName, q, partition)
	if err != nil {
		return err
	}

	return renderList(cmd, listFormat(cmd, opts.Format), registry, q, result)
}

// listQuery builds the fetch query from the shared view flags.
func listQuery(cmd *cobra.Command, tableName string, cfg *config.Config) (grid.Query, string, error) {
	link, err := linkValues(cmd.Flags())
	if err != nil {
		return grid.Query{}, "", err
	}
	q := grid.DecodeQuery(link, tui.DefaultPageSize(tableName, cfg.UI.PageSize))
	if q.SortField != "" {
		// A one-shot command fails loudly where the console would fall
		// back: there is no view to land on, only wrong output.
		if reg := tui.RegistryFor(tableName); reg != nil && !reg.SortableField(q.SortField) {
			return grid.Query{}, "", fmt.Errorf("--sort-field %q is not sortable on %s", q.SortField, tableName)
		}
	}
	return q, link.Get("status"), nil
}

// listFormat resolves the output format: the explicit flag wins, then the
// renderer's effective mode (table on a terminal, markdown piped).
func listFormat(cmd *cobra.Command, explicit string) string {
	if explicit != "" {
		return explicit
	}
	switch newRenderer(cmd).EffectiveMode() {
	case output.ModeJSON:
		return "json"
	case output.ModeMarkdown:
		return "md"
	}
	return "table"
}

func renderList(cmd *cobra.Command, format string, reg *grid.Registry, q grid.Query, result grid.Result) error {
	cols := visibleColumns(reg)

	switch format {
	case "json":
		return newRenderer(cmd).JSON(struct {
			Data         []grid.Row `json:"data"`
			TotalRecords int        `json:"totalRecords"`
			TotalPages   int        `json:"totalPages"`
		}{Data: result.Rows, TotalRecords: result.TotalRecords, TotalPages: result.TotalPages})

	case "csv":
		w := csv.NewWriter(cmd.OutOrStdout())
		header := make([]string, len(cols))
		for i, c := range cols {
			header[i] = c.Key
		}
		if err := w.Write(header); err != nil {
			return err
		}
		for _, row := range result.Rows {
			record := make([]string, len(cols))
			for i, c := range cols {
				record[i] = row.Cell(c.Key)
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()

	case "md", "markdown":
		t := listTable(cols, result.Rows)
		fmt.Fprintln(cmd.OutOrStdout(), t.RenderMarkdown())
		return nil

	case "table", "":
		t := listTable(cols, result.Rows)
		t.SetStyle(listStyle(cmd))
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		fmt.Fprintf(cmd.OutOrStdout(), "%d records, page %d/%d\n",
			result.TotalRecords, q.Page, q.TotalPages(result.TotalRecords))
		return nil
	}
	return fmt.Errorf("unknown format %q (table, json, csv, md)", format)
}

// visibleColumns are the registry's default-visible columns in declaration
// order; one-shot output has no layout preferences to apply.
func visibleColumns(reg *grid.Registry) []grid.Column {
	var cols []grid.Column
	for _, c := range reg.Columns() {
		if c.DefaultVisible {
			cols = append(cols, c)
		}
	}
	return cols
}

func listTable(cols []grid.Column, rows []grid.Row) table.Writer {
	t := table.NewWriter()

	header := make(table.Row, len(cols))
	configs := make([]table.ColumnConfig, 0, len(cols))
	for i, c := range cols {
		header[i] = c.Label
		if c.Align == grid.AlignEnd {
			configs = append(configs, table.ColumnConfig{Number: i + 1, Align: text.AlignRight})
		}
	}
	t.AppendHeader(header)
	t.SetColumnConfigs(configs)

	for _, row := range rows {
		cells := make(table.Row, len(cols))
		for i, c := range cols {
			cells[i] = row.Cell(c.Key)
		}
		t.AppendRow(cells)
	}
	return t
}

// listStyle picks a box style by terminal capability: plain ASCII when the
// output profile has no color/unicode expectations.
func listStyle(cmd *cobra.Command) table.Style {
	out := termenv.NewOutput(cmd.OutOrStdout())
	if out.Profile == termenv.Ascii {
		return table.StyleDefault
	}
	return table.StyleLight
}
