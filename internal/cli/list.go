package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/boardroom/internal/shell"
	"github.com/mesh-intelligence/boardroom/pkg/types"
)

type listOptions struct {
	sortKey string
	desc    bool
	asc     bool
}

func newListCmd(a *app) *cobra.Command {
	var opts listOptions
	cmd := &cobra.Command{
		Use:   "list <module> [key=value...]",
		Short: "Show the filtered, sorted view of a module",
		Long: `List shows the records of a module through its current view.

Filters are key=value pairs and are ANDed together. Enum columns match the
option code exactly (array columns match membership); text columns match a
case-insensitive substring. The value All clears a filter.

Without --sort the module's default order applies. A new sort key starts in
the module's default direction unless --asc or --desc is given.

Example:
  boardroom list press_logs
  boardroom list press_logs type=Online themes=Trade
  boardroom list fees status=Pending --sort amount --desc
  boardroom list donations --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runList(cmd, args[0], args[1:], opts)
		},
	}
	cmd.Flags().StringVar(&opts.sortKey, "sort", "", "column to sort by")
	cmd.Flags().BoolVar(&opts.desc, "desc", false, "sort descending")
	cmd.Flags().BoolVar(&opts.asc, "asc", false, "sort ascending")
	cmd.MarkFlagsMutuallyExclusive("asc", "desc")
	return cmd
}

// parseFilters reads key=value arguments.
func parseFilters(args []string) (types.Filters, error) {
	filters := make(types.Filters, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, userError("invalid filter %q (expected key=value)", arg)
		}
		filters[key] = value
	}
	return filters, nil
}

func (a *app) runList(cmd *cobra.Command, name string, filterArgs []string, opts listOptions) error {
	filters, err := parseFilters(filterArgs)
	if err != nil {
		return err
	}
	m, err := lookup(name)
	if err != nil {
		return err
	}
	if err := checkColumns(m, filters, opts.sortKey); err != nil {
		return err
	}

	store, err := a.attachStore(false)
	if err != nil {
		return err
	}
	defer store.Detach()

	sess, err := a.openModule(cmd.Context(), store, name)
	if err != nil {
		return err
	}
	defer sess.Close()

	for key, value := range filters {
		sess.SetFilter(key, value)
	}
	if opts.sortKey != "" {
		dir := m.NewKeyDirection
		switch {
		case opts.desc:
			dir = types.Desc
		case opts.asc:
			dir = types.Asc
		}
		sess.SetSort(types.Sort{Key: opts.sortKey, Direction: dir})
	}

	records := sess.View()
	out := cmd.OutOrStdout()
	if a.flags.jsonMode {
		return writeJSON(out, records)
	}
	tr := a.translator()
	if len(records) == 0 {
		fmt.Fprintln(out, tr.T("view.empty"))
		return nil
	}
	header, rows := recordRows(m.Schema, records, tr)
	header = append([]string{"ID"}, header...)
	for i, r := range records {
		rows[i] = append([]string{r.ID()}, rows[i]...)
	}
	if err := printTable(out, header, rows); err != nil {
		return sysError("write table: %w", err)
	}
	fmt.Fprintf(out, "Total: %d record(s)\n", len(records))
	return nil
}

// checkColumns rejects filter keys and a sort key that the module does not
// expose for filtering or sorting.
func checkColumns(m *shell.Module, filters types.Filters, sortKey string) error {
	for key := range filters {
		if c, ok := m.Schema.Column(key); !ok || !c.Filterable {
			return userError("column %q of %s is not filterable", key, m.Name)
		}
	}
	if sortKey != "" {
		if c, ok := m.Schema.Column(sortKey); !ok || !c.Sortable {
			return userError("column %q of %s is not sortable", sortKey, m.Name)
		}
	}
	return nil
}
