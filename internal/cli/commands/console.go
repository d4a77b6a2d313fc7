package commands

import (
	"fmt"
	"net/url"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/openradius/radops/internal/cli/config"
	"github.com/openradius/radops/internal/grid"
	"github.com/openradius/radops/internal/tui"
	"github.com/openradius/radops/internal/tui/gridview"
)

// NewConsoleCommand creates the console command. The root command runs the
// console too; this name exists so copied command lines read naturally.
func NewConsoleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "console [table]",
		Short: "Open the interactive operator console",
		Long: `Open the full-screen console: customizable data grids over subscribers,
RADIUS accounts, live accounting sessions, and operators.

The optional table argument and the query flags reproduce a specific view,
which is how links yanked from a running console (the Y key) work: pasting
the copied command line lands on the identical view.`,
		Example: `  # Open on the subscribers table
  radops console

  # Open the trashed partition, searched and sorted, as a colleague saw it
  radops console subscribers --status=trashed --search=doe --sort-field=name

  # Page 3 of the RADIUS accounts at 100 rows per page
  radops console radius-users --page=3 --page-size=100`,
		ValidArgs: tui.Tables(),
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		RunE:      RunConsole,
	}
	AddConsoleFlags(cmd)
	return cmd
}

// AddConsoleFlags registers the deep-link view flags. The root command
// registers them too, so `radops subscribers --search=doe` works without
// naming the console subcommand.
func AddConsoleFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("search", "", "search term")
	f.String("sort-field", "", "sort field")
	f.String("sort-direction", "", "sort direction (asc|desc)")
	f.Int("page", 1, "page number")
	f.String("page-size", "", "rows per page (10|25|50|100|all)")
	f.String("status", "", "subscriber partition (active|trashed)")
	f.Bool("no-mouse", false, "disable mouse support")

	_ = cmd.RegisterFlagCompletionFunc("sort-direction", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{string(grid.Asc), string(grid.Desc)}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("page-size", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		sizes := make([]string, len(grid.PageSizes))
		for i, s := range grid.PageSizes {
			sizes[i] = grid.FormatPageSize(s)
		}
		return sizes, cobra.ShellCompDirectiveNoFileComp
	})
}

// RunConsole opens the TUI. Exported because the root command's RunE
// delegates here.
func RunConsole(cmd *cobra.Command, args []string) error {
	cfg := getConfig()

	table := tui.TableSubscribers
	if len(args) > 0 {
		table = args[0]
	}
	if !slices.Contains(tui.Tables(), table) {
		return fmt.Errorf("unknown table %q", table)
	}

	link, err := linkValues(cmd.Flags())
	if err != nil {
		return err
	}

	// The console owns the terminal, so its log goes to a file.
	logPath := cfg.Log.File
	if logPath == "" {
		logPath = config.DefaultLogPath()
	}
	logFile, err := config.OpenLogFile(logPath)
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()
	logger := config.NewLogger(logFile, cfg.Log, cfg.Verbose)

	noMouse, _ := cmd.Flags().GetBool("no-mouse")

	return tui.Run(cmd.Context(), cfg, logger, tui.RunOptions{
		Table: table,
		Link:  link,
		Mouse: cfg.UI.Mouse && !noMouse,
	})
}

// linkValues translates explicitly set view flags into the deep-link
// parameter encoding the grid decodes on mount. Unset flags stay omitted so
// each table keeps its own defaults.
func linkValues(f *pflag.FlagSet) (url.Values, error) {
	v := url.Values{}

	if f.Changed("search") {
		term, _ := f.GetString("search")
		v.Set(grid.ParamSearch, term)
	}
	if f.Changed("page") {
		page, _ := f.GetInt("page")
		if page < 1 {
			return nil, fmt.Errorf("--page must be at least 1")
		}
		v.Set(grid.ParamPage, fmt.Sprintf("%d", page))
	}
	if f.Changed("page-size") {
		raw, _ := f.GetString("page-size")
		size, err := grid.ParsePageSize(raw)
		if err != nil {
			return nil, fmt.Errorf("--page-size: %w", err)
		}
		if !slices.Contains(grid.PageSizes, size) {
			return nil, fmt.Errorf("--page-size %s is not an offered page size", raw)
		}
		v.Set(grid.ParamPageSize, grid.FormatPageSize(size))
	}
	if f.Changed("sort-field") {
		field, _ := f.GetString("sort-field")
		v.Set(grid.ParamSortField, field)
	}
	if f.Changed("sort-direction") {
		dir, _ := f.GetString("sort-direction")
		if dir != string(grid.Asc) && dir != string(grid.Desc) {
			return nil, fmt.Errorf("--sort-direction must be asc or desc")
		}
		v.Set(grid.ParamSortDirection, dir)
	}
	if f.Changed("status") {
		status, _ := f.GetString("status")
		v.Set(gridview.ParamStatus, status)
	}
	return v, nil
}
