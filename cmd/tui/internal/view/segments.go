package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/retailboard/internal/dashboard"
	"github.com/MrJamesThe3rd/retailboard/internal/segment"
)

type SegmentsModel struct {
	CommonModel
	dashboard *dashboard.Service
	workspace *Workspace

	loading bool
	err     error
	spinner spinner.Model
	result  segment.Result
	table   table.Model
}

func NewSegmentsModel(dash *dashboard.Service, ws *Workspace) SegmentsModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return SegmentsModel{
		dashboard: dash,
		workspace: ws,
		spinner:   s,
		loading:   ws.Loaded(),
	}
}

func (m SegmentsModel) Title() string { return "Customer Segmentation" }

func (m SegmentsModel) ShortHelp() string {
	return "Esc: back | ↑/↓: scroll"
}

func (m SegmentsModel) Init() tea.Cmd {
	if !m.loading {
		return nil
	}

	dash, ds := m.dashboard, m.workspace.Dataset

	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		ctx, cancel := ComputeCtx()
		defer cancel()

		res, err := dash.Segments(ctx, ds)

		return segmentResultMsg{result: res, err: err}
	})
}

type segmentResultMsg struct {
	result segment.Result
	err    error
}

func (m SegmentsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	if res, ok := msg.(segmentResultMsg); ok {
		m.loading = false
		m.err = res.err
		m.result = res.result
		m.table = segmentTable(res.result)

		return m, nil
	}

	var cmd tea.Cmd
	if m.loading {
		m.spinner, cmd = m.spinner.Update(msg)
	} else {
		m.table, cmd = m.table.Update(msg)
	}

	return m, cmd
}

func segmentTable(res segment.Result) table.Model {
	rows := make([]table.Row, 0, len(res.Records))

	for _, r := range res.Records {
		rows = append(rows, table.Row{
			r.CustomerID,
			fmt.Sprintf("%d", r.Recency),
			fmt.Sprintf("%d", r.Frequency),
			FormatMoney(r.Monetary),
			fmt.Sprintf("%d", r.Segment),
		})
	}

	return newTable([]table.Column{
		{Title: "Customer", Width: 12},
		{Title: "Recency", Width: 9},
		{Title: "Frequency", Width: 10},
		{Title: "Monetary", Width: 14},
		{Title: "Segment", Width: 8},
	}, rows, 15)
}

// summary counts customers per segment.
func (m SegmentsModel) summary() string {
	counts := make([]int, m.result.Clusters)
	for _, r := range m.result.Records {
		counts[r.Segment]++
	}

	var b strings.Builder
	for i, n := range counts {
		fmt.Fprintf(&b, "Segment %d: %d customers\n", i, n)
	}

	switch m.result.Status {
	case segment.StatusReducedClusters:
		b.WriteString(warnStyle.Render(fmt.Sprintf("Only %d distinct customer profiles; fewer segments produced.", m.result.Clusters)) + "\n")
	}

	if len(m.result.ZeroVariance) > 0 {
		b.WriteString(warnStyle.Render("No variation in: "+strings.Join(m.result.ZeroVariance, ", ")) + "\n")
	}

	return b.String()
}

func (m SegmentsModel) View() string {
	if !m.workspace.Loaded() {
		return lipgloss.NewStyle().Padding(2).Render(notice(false))
	}

	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render(m.spinner.View() + " Clustering customers...")
	}

	if m.err != nil {
		return errorView(m.err)
	}

	if m.result.Status == segment.StatusEmpty {
		return lipgloss.NewStyle().Padding(2).Render(
			warnStyle.Render("No customers to segment.") + "\n" + statusLine(m.result.Source),
		)
	}

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			headerStyle.Render(fmt.Sprintf("%d customers in %d segments", len(m.result.Records), m.result.Clusters)),
			"",
			m.table.View(),
			m.summary(),
		),
	)
}
