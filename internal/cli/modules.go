package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/boardroom/internal/modules"
)

type moduleSummary struct {
	Name      string   `json:"name"`
	Title     string   `json:"title"`
	Paths     []string `json:"paths"`
	AdminOnly bool     `json:"adminOnly"`
	Merged    bool     `json:"merged,omitempty"`
	CanWrite  bool     `json:"canWrite"`
}

func newModulesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "modules",
		Short: "List the dashboard modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr := a.translator()
			id := a.identity()

			var out []moduleSummary
			for _, m := range modules.All() {
				out = append(out, moduleSummary{
					Name:      m.Name,
					Title:     tr.T(m.Title),
					Paths:     m.Paths,
					AdminOnly: m.AdminOnly,
					Merged:    m.Merged,
					CanWrite:  !m.Merged && id.CanWrite(m.AdminOnly),
				})
			}
			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), out)
			}

			rows := make([][]string, len(out))
			for i, m := range out {
				access := "all"
				if m.AdminOnly {
					access = "admin"
				}
				if m.Merged {
					access += ", read-only"
				}
				rows[i] = []string{m.Name, m.Title, access, strings.Join(m.Paths, ",")}
			}
			return printTable(cmd.OutOrStdout(), []string{"NAME", "TITLE", "ACCESS", "PATHS"}, rows)
		},
	}
}
