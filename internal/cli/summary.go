package cli

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/message"

	"github.com/mesh-intelligence/boardroom/internal/modules"
	"github.com/mesh-intelligence/boardroom/pkg/types"
)

// Income and cost modules of the balance.
var (
	incomeModules = []string{modules.Fees, modules.Donations, modules.Services, modules.IncomeOther}
	costModules   = []string{modules.CostsOperational, modules.CostsPersonnel, modules.CostsEvents}
)

type summaryLine struct {
	Module string  `json:"module"`
	Title  string  `json:"title"`
	Kind   string  `json:"kind"`
	Total  float64 `json:"total"`
}

type summary struct {
	Lines   []summaryLine `json:"lines"`
	Income  float64       `json:"income"`
	Costs   float64       `json:"costs"`
	Balance float64       `json:"balance"`
}

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show income, costs and balance across the finance modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.attachStore(false)
			if err != nil {
				return err
			}
			defer store.Detach()

			s, err := a.summarize(cmd.Context(), store)
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), s)
			}

			tr := a.translator()
			p := message.NewPrinter(a.locale())
			rows := make([][]string, 0, len(s.Lines)+3)
			for _, l := range s.Lines {
				rows = append(rows, []string{l.Title, l.Kind, p.Sprintf("%.2f", l.Total)})
			}
			rows = append(rows,
				[]string{"", "", ""},
				[]string{tr.T("summary.income"), "", p.Sprintf("%.2f", s.Income)},
				[]string{tr.T("summary.costs"), "", p.Sprintf("%.2f", s.Costs)},
				[]string{tr.T("summary.balance"), "", p.Sprintf("%.2f", s.Balance)},
			)
			return printTable(cmd.OutOrStdout(), []string{"MODULE", "KIND", "TOTAL"}, rows)
		},
	}
}

// summarize loads every finance module concurrently and totals its amounts.
func (a *app) summarize(ctx context.Context, store types.Store) (summary, error) {
	names := append(append([]string(nil), incomeModules...), costModules...)
	lines := make([]summaryLine, len(names))
	tr := a.translator()

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		kind := "income"
		if i >= len(incomeModules) {
			kind = "cost"
		}
		g.Go(func() error {
			sess, err := a.openModule(gctx, store, name)
			if err != nil {
				return err
			}
			defer sess.Close()
			res, err := sess.Aggregate("total")
			if err != nil {
				return sysError("total of %s: %w", name, err)
			}
			lines[i] = summaryLine{Module: name, Title: tr.T(sess.Module().Title), Kind: kind, Total: res.Sum}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary{}, err
	}

	s := summary{Lines: lines}
	for _, l := range lines {
		if l.Kind == "income" {
			s.Income += l.Total
		} else {
			s.Costs += l.Total
		}
	}
	s.Balance = s.Income - s.Costs
	return s, nil
}
