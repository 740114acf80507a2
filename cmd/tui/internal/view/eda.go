package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/retailboard/internal/aggregate"
	"github.com/MrJamesThe3rd/retailboard/internal/dashboard"
)

type edaTab int

const (
	edaTabSalesOverTime edaTab = iota
	edaTabTopProducts
	edaTabCountries
)

var edaTabs = []string{"Sales Over Time", "Top Products", "Sales by Country"}

type EDAModel struct {
	CommonModel
	dashboard *dashboard.Service
	workspace *Workspace

	tab    edaTab
	tables [3]table.Model
	notes  [3]string
}

func NewEDAModel(dash *dashboard.Service, ws *Workspace) EDAModel {
	m := EDAModel{dashboard: dash, workspace: ws}
	if ws.Loaded() {
		m.build()
	}

	return m
}

func (m EDAModel) Title() string { return "Exploratory Data Analysis" }

func (m EDAModel) ShortHelp() string {
	return "Esc: back | Tab/1-3: switch chart | ↑/↓: scroll"
}

func (m EDAModel) Init() tea.Cmd {
	return nil
}

func (m *EDAModel) build() {
	ds := m.workspace.Dataset

	daily := m.dashboard.SalesOverTime(ds)
	rows := make([]table.Row, 0, len(daily.Days))
	top := 0.0

	for _, d := range daily.Days {
		top = max(top, d.Sales.InexactFloat64())
	}

	for _, d := range daily.Days {
		rows = append(rows, table.Row{FormatDate(d.Date), FormatMoney(d.Sales), bar(d.Sales.InexactFloat64(), top, 40)})
	}

	m.tables[edaTabSalesOverTime] = newTable([]table.Column{
		{Title: "Date", Width: 12},
		{Title: "Sales", Width: 14},
		{Title: "", Width: 42},
	}, rows, 15)
	m.notes[edaTabSalesOverTime] = statusLine(daily.Status)

	m.tables[edaTabTopProducts], m.notes[edaTabTopProducts] = rankingTable("Product", m.dashboard.TopProducts(ds, aggregate.DefaultTopN))
	m.tables[edaTabCountries], m.notes[edaTabCountries] = rankingTable("Country", m.dashboard.Countries(ds))
}

func rankingTable(title string, r aggregate.Ranking) (table.Model, string) {
	rows := make([]table.Row, 0, len(r.Items))

	top := 0.0
	if len(r.Items) > 0 {
		top = r.Items[0].Sales.InexactFloat64()
	}

	for _, it := range r.Items {
		rows = append(rows, table.Row{it.Name, FormatMoney(it.Sales), bar(it.Sales.InexactFloat64(), top, 30)})
	}

	t := newTable([]table.Column{
		{Title: title, Width: 36},
		{Title: "Sales", Width: 14},
		{Title: "", Width: 32},
	}, rows, 15)

	return t, statusLine(r.Status)
}

func statusLine(s aggregate.Status) string {
	var parts []string

	for _, r := range s.Missing {
		parts = append(parts, fmt.Sprintf("no %s column found", r))
	}

	for _, n := range s.Notes {
		parts = append(parts, n.Message())
	}

	if len(parts) == 0 {
		return ""
	}

	return warnStyle.Render(strings.Join(parts, "; "))
}

func (m EDAModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "tab":
		m.tab = (m.tab + 1) % edaTab(len(edaTabs))
		return m, nil
	case "1", "2", "3":
		m.tab = edaTab(keyMsg.String()[0] - '1')
		return m, nil
	}

	if !m.workspace.Loaded() {
		return m, nil
	}

	var cmd tea.Cmd
	m.tables[m.tab], cmd = m.tables[m.tab].Update(msg)

	return m, cmd
}

func (m EDAModel) View() string {
	if !m.workspace.Loaded() {
		return lipgloss.NewStyle().Padding(2).Render(notice(false))
	}

	tabs := make([]string, len(edaTabs))
	for i, name := range edaTabs {
		label := fmt.Sprintf(" %d. %s ", i+1, name)
		if edaTab(i) == m.tab {
			label = headerStyle.Render(label)
		}

		tabs[i] = label
	}

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
			"",
			m.tables[m.tab].View(),
			m.notes[m.tab],
		),
	)
}
