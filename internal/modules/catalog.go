package modules

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/boardroom/internal/form"
	"github.com/mesh-intelligence/boardroom/internal/shell"
	"github.com/mesh-intelligence/boardroom/pkg/types"
)

// Module names.
const (
	Activities       = "activities"
	PressLogs        = "press_logs"
	Stakeholders     = "stakeholders"
	Messages         = "messages"
	Fees             = "fees"
	Donations        = "donations"
	Services         = "services"
	Projects         = "projects"
	CostsOperational = "costs_operational"
	CostsPersonnel   = "costs_personnel"
	CostsEvents      = "costs_events"
	IncomeOther      = "income_other"
	Meetings         = "meetings"
	LegalDocuments   = "legal_documents"
	FinanceSummary   = "finance_summary"
)

// FinancePaths are the income and cost collections the finance summary
// observes.
var FinancePaths = []string{Fees, Donations, Services, CostsOperational, CostsPersonnel, CostsEvents}

// ErrUnknownModule is returned by Lookup for names not in the catalog.
var ErrUnknownModule = errors.New("unknown module")

// Column constructors. Labels are translation keys shared across modules.

func col(key string, vt types.ValueType) types.Column {
	return types.Column{Key: key, Label: "column." + key, Type: vt, Sortable: true, Filterable: true}
}

func date(key string) types.Column { return col(key, types.ValueTypeDate) }
func text(key string) types.Column { return col(key, types.ValueTypeString) }

func number(key string, missing types.MissingPolicy) types.Column {
	c := col(key, types.ValueTypeNumber)
	c.Filterable = false
	c.Missing = missing
	return c
}

func enum(key, optionsKey string) types.Column {
	c := col(key, types.ValueTypeEnum)
	c.OptionsKey = optionsKey
	return c
}

func tags(key, optionsKey string) types.Column {
	c := col(key, types.ValueTypeArray)
	c.OptionsKey = optionsKey
	return c
}

func hidden(c types.Column) types.Column {
	c.Hidden = true
	c.Sortable = false
	c.Filterable = false
	return c
}

// amount is the money column of every finance module. A missing amount
// counts as zero.
func amount() types.Column { return number("amount", types.MissingZero) }

// newest sorts by date, most recent first.
var newest = types.Sort{Key: "date", Direction: types.Desc}

func countChart(name, groupBy string) shell.Chart {
	return shell.Chart{Name: name, Kind: shell.ChartCount, GroupBy: groupBy, Top: 5, Translate: true}
}

func sumChart(name, groupBy string) shell.Chart {
	return shell.Chart{Name: name, Kind: shell.ChartSum, GroupBy: groupBy, Value: "amount", Top: 5, Translate: true}
}

var totalChart = shell.Chart{Name: "total", Kind: shell.ChartTotal, Value: "amount"}

// define completes a module: the primary path defaults to the name and the
// template is derived from the schema.
func define(m shell.Module, fixed types.Record) *shell.Module {
	if len(m.Paths) == 0 {
		m.Paths = []string{m.Name}
	}
	m.Title = "module." + m.Name
	if m.Template == nil && !m.Merged {
		m.Template = form.SchemaTemplate(m.Schema, m.Options, fixed)
	}
	return &m
}

// builders lists the modules in menu order.
var builders = []func() *shell.Module{
	activities, pressLogs, stakeholders, messages,
	fees, donations, services, incomeOther,
	projects, costsOperational, costsPersonnel, costsEvents,
	meetings, legalDocuments, financeSummary,
}

// All returns a fresh copy of every module in menu order.
func All() []*shell.Module {
	out := make([]*shell.Module, len(builders))
	for i, build := range builders {
		out[i] = build()
	}
	return out
}

// Names returns the module names in menu order.
func Names() []string {
	all := All()
	out := make([]string, len(all))
	for i, m := range all {
		out[i] = m.Name
	}
	return out
}

// Lookup returns a fresh copy of the named module.
func Lookup(name string) (*shell.Module, error) {
	for _, build := range builders {
		if m := build(); m.Name == name {
			return m, nil
		}
	}
	return nil, fmt.Errorf("module %q: %w", name, ErrUnknownModule)
}

func activities() *shell.Module {
	return define(shell.Module{
		Name: Activities,
		Schema: types.Schema{
			date("date"),
			text("title"),
			enum("type", OptActivityTypes),
			tags("themes", OptThemes),
			tags("institutions", ""),
			text("responsible"),
			enum("status", OptActivityStatus),
			hidden(text("notes")),
		},
		Options:         Options(OptActivityTypes, OptThemes, OptActivityStatus),
		DefaultSort:     newest,
		NewKeyDirection: types.Asc,
		Charts:          []shell.Chart{countChart("byType", "type"), countChart("byStatus", "status")},
	}, types.Record{"status": "Planned"})
}

func pressLogs() *shell.Module {
	return define(shell.Module{
		Name: PressLogs,
		Schema: types.Schema{
			date("date"),
			text("outlet"),
			enum("type", OptMediaTypes),
			text("headline"),
			tags("themes", OptThemes),
			enum("sentiment", OptSentiments),
			number("reach", types.MissingNegInf),
			hidden(text("url")),
			hidden(tags("stakeholderIds", "")),
		},
		Options:         Options(OptMediaTypes, OptThemes, OptSentiments),
		DefaultSort:     newest,
		NewKeyDirection: types.Desc,
		NumberPolicy:    form.ParseFailEmpty,
		Charts:          []shell.Chart{countChart("byType", "type"), countChart("bySentiment", "sentiment")},
	}, nil)
}

func stakeholders() *shell.Module {
	return define(shell.Module{
		Name:  Stakeholders,
		Paths: []string{Stakeholders, PressLogs},
		Schema: types.Schema{
			text("name"),
			text("organization"),
			text("position"),
			enum("sector", OptStakeholderSectors),
			tags("themes", OptThemes),
			number("priority", types.MissingNegInf),
			hidden(text("email")),
			hidden(text("phone")),
			hidden(tags("messageIds", "")),
		},
		Options:         Options(OptStakeholderSectors, OptThemes),
		DefaultSort:     types.Sort{Key: "name", Direction: types.Asc},
		NewKeyDirection: types.Asc,
		NumberPolicy:    form.ParseFailEmpty,
		Charts:          []shell.Chart{countChart("bySector", "sector")},
		Join:            &shell.Join{Path: PressLogs, FKField: "stakeholderIds", DateField: "date"},
	}, nil)
}

func messages() *shell.Module {
	return define(shell.Module{
		Name:  Messages,
		Paths: []string{Messages, Stakeholders},
		Schema: types.Schema{
			date("date"),
			text("topic"),
			enum("audience", OptAudiences),
			enum("channel", OptChannels),
			tags("themes", OptThemes),
			text("content"),
		},
		Options:         Options(OptAudiences, OptChannels, OptThemes),
		DefaultSort:     newest,
		NewKeyDirection: types.Asc,
		Charts:          []shell.Chart{countChart("byChannel", "channel")},
		Join:            &shell.Join{Path: Stakeholders, FKField: "messageIds", DateField: types.FieldUpdatedAt},
	}, nil)
}

func fees() *shell.Module {
	return define(shell.Module{
		Name: Fees,
		Schema: types.Schema{
			date("date"),
			text("member"),
			text("period"),
			amount(),
			enum("status", OptPaymentStatus),
		},
		Options:         Options(OptPaymentStatus),
		DefaultSort:     newest,
		NewKeyDirection: types.Desc,
		Charts:          []shell.Chart{totalChart, sumChart("byStatus", "status")},
	}, nil)
}

var byDonor = shell.Chart{Name: "byDonor", Kind: shell.ChartSum, GroupBy: "donor", Value: "amount", Top: 10}

func donations() *shell.Module {
	return define(shell.Module{
		Name: Donations,
		Schema: types.Schema{
			date("date"),
			text("donor"),
			enum("type", OptDonationTypes),
			amount(),
			text("project"),
		},
		Options:         Options(OptDonationTypes),
		DefaultSort:     newest,
		NewKeyDirection: types.Desc,
		Charts:          []shell.Chart{totalChart, sumChart("byType", "type"), byDonor},
	}, nil)
}

func services() *shell.Module {
	return define(shell.Module{
		Name: Services,
		Schema: types.Schema{
			date("date"),
			text("client"),
			enum("service", OptServiceTypes),
			amount(),
			enum("status", OptPaymentStatus),
		},
		Options:         Options(OptServiceTypes, OptPaymentStatus),
		DefaultSort:     newest,
		NewKeyDirection: types.Desc,
		Charts:          []shell.Chart{totalChart, sumChart("byService", "service")},
	}, nil)
}

func incomeOther() *shell.Module {
	return define(shell.Module{
		Name: IncomeOther,
		Schema: types.Schema{
			date("date"),
			text("source"),
			enum("category", OptIncomeCategories),
			amount(),
			text("description"),
		},
		Options:         Options(OptIncomeCategories),
		DefaultSort:     newest,
		NewKeyDirection: types.Desc,
		Charts:          []shell.Chart{totalChart, sumChart("byCategory", "category")},
	}, nil)
}

func projects() *shell.Module {
	return define(shell.Module{
		Name: Projects,
		Schema: types.Schema{
			text("name"),
			text("funder"),
			date("startDate"),
			date("endDate"),
			number("budget", types.MissingZero),
			enum("status", OptProjectStatus),
			tags("objectives", ""),
		},
		Options:         Options(OptProjectStatus),
		AdminOnly:       true,
		DefaultSort:     types.Sort{Key: "startDate", Direction: types.Desc},
		NewKeyDirection: types.Asc,
		Charts: []shell.Chart{
			countChart("byStatus", "status"),
			{Name: "budgetByStatus", Kind: shell.ChartSum, GroupBy: "status", Value: "budget", Top: 5, Translate: true},
		},
	}, types.Record{"status": "Proposed"})
}

func costsOperational() *shell.Module {
	return define(shell.Module{
		Name: CostsOperational,
		Schema: types.Schema{
			date("date"),
			enum("category", OptOperationalCosts),
			text("description"),
			text("provider"),
			amount(),
		},
		Options:         Options(OptOperationalCosts),
		AdminOnly:       true,
		DefaultSort:     newest,
		NewKeyDirection: types.Desc,
		Charts:          []shell.Chart{totalChart, sumChart("byCategory", "category")},
	}, nil)
}

func costsPersonnel() *shell.Module {
	return define(shell.Module{
		Name: CostsPersonnel,
		Schema: types.Schema{
			date("date"),
			text("person"),
			text("position"),
			enum("type", OptPersonnelTypes),
			amount(),
		},
		Options:         Options(OptPersonnelTypes),
		AdminOnly:       true,
		DefaultSort:     newest,
		NewKeyDirection: types.Desc,
		Charts:          []shell.Chart{totalChart, sumChart("byType", "type")},
	}, nil)
}

func costsEvents() *shell.Module {
	return define(shell.Module{
		Name: CostsEvents,
		Schema: types.Schema{
			date("date"),
			text("event"),
			enum("category", OptEventCategories),
			number("attendees", types.MissingNegInf),
			amount(),
		},
		Options:         Options(OptEventCategories),
		AdminOnly:       true,
		DefaultSort:     newest,
		NewKeyDirection: types.Desc,
		Charts:          []shell.Chart{totalChart, sumChart("byCategory", "category")},
	}, nil)
}

func meetings() *shell.Module {
	return define(shell.Module{
		Name: Meetings,
		Schema: types.Schema{
			date("date"),
			text("title"),
			enum("type", OptMeetingTypes),
			text("location"),
			tags("attendees", ""),
			tags("agreements", ""),
		},
		Options:         Options(OptMeetingTypes),
		AdminOnly:       true,
		DedupTags:       true,
		DefaultSort:     newest,
		NewKeyDirection: types.Asc,
		Charts:          []shell.Chart{countChart("byType", "type")},
	}, nil)
}

func legalDocuments() *shell.Module {
	return define(shell.Module{
		Name: LegalDocuments,
		Schema: types.Schema{
			date("date"),
			text("title"),
			enum("type", OptDocumentTypes),
			enum("status", OptDocumentStatus),
			date("expiresAt"),
			hidden(text("url")),
		},
		Options:         Options(OptDocumentTypes, OptDocumentStatus),
		AdminOnly:       true,
		DefaultSort:     newest,
		NewKeyDirection: types.Asc,
		Charts:          []shell.Chart{countChart("byStatus", "status")},
	}, types.Record{"expiresAt": ""})
}

// financeSummary merges the income and cost collections into one read-only
// view tagged by source path.
func financeSummary() *shell.Module {
	return define(shell.Module{
		Name:  FinanceSummary,
		Paths: append([]string(nil), FinancePaths...),
		Schema: types.Schema{
			date("date"),
			enum(shell.SourceField, OptFinanceSources),
			text("description"),
			amount(),
		},
		Options:         Options(OptFinanceSources),
		AdminOnly:       true,
		Merged:          true,
		DefaultSort:     newest,
		NewKeyDirection: types.Desc,
		Charts:          []shell.Chart{totalChart, sumChart("bySource", shell.SourceField)},
	}, nil)
}
