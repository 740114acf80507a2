package view

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/retailboard/internal/dashboard"
	"github.com/MrJamesThe3rd/retailboard/internal/export"
	"github.com/MrJamesThe3rd/retailboard/internal/forecast"
)

type forecastState int

const (
	forecastStateFitting forecastState = iota
	forecastStateTable
	forecastStatePath
	forecastStateExporting
	forecastStateError
)

type ForecastModel struct {
	CommonModel
	dashboard *dashboard.Service
	workspace *Workspace

	state   forecastState
	err     error
	spinner spinner.Model
	result  forecast.Result
	table   table.Model

	form    *huh.Form
	path    string
	summary string
}

func NewForecastModel(dash *dashboard.Service, ws *Workspace) ForecastModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ForecastModel{
		dashboard: dash,
		workspace: ws,
		spinner:   s,
		path:      "./exports",
	}
}

func (m ForecastModel) Title() string { return "Sales Forecast" }

func (m ForecastModel) ShortHelp() string {
	switch m.state {
	case forecastStateTable:
		return "Esc: back | x: export | ↑/↓: scroll"
	case forecastStatePath:
		return "Esc: cancel | Enter: confirm"
	}

	return "Esc: back"
}

func (m ForecastModel) Init() tea.Cmd {
	if !m.workspace.Loaded() {
		return nil
	}

	return tea.Batch(m.spinner.Tick, m.fitCmd())
}

func (m ForecastModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case forecastResultMsg:
		if msg.err != nil {
			m.state = forecastStateError
			m.err = msg.err

			return m, nil
		}

		m.result = msg.result
		m.table = forecastTable(msg.result)
		m.state = forecastStateTable

		return m, nil

	case exportDoneMsg:
		m.state = forecastStateTable
		m.err = msg.err
		m.summary = msg.summary

		return m, nil
	}

	switch m.state {
	case forecastStateFitting, forecastStateExporting:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			return m, Back
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case forecastStateTable:
		return m.updateTable(msg)

	case forecastStatePath:
		return m.updatePath(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	return m, nil
}

func (m ForecastModel) updateTable(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "x":
			if len(m.result.Points) == 0 {
				return m, nil
			}

			m.form = m.buildPathForm()
			m.state = forecastStatePath

			return m, m.form.Init()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ForecastModel) updatePath(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = forecastStateTable
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if path := m.form.GetString("path"); path != "" {
		m.path = path
	}

	m.state = forecastStateExporting

	return m, tea.Batch(m.spinner.Tick, exportCmd(m.result.Points, m.path))
}

func (m ForecastModel) buildPathForm() *huh.Form {
	path := m.path

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("path").
				Title("Output Path").
				Description("Directory will be created if it doesn't exist").
				Placeholder("./exports").
				Value(&path),
		),
	).WithWidth(50).WithShowHelp(false)
}

// forecastTable lists the future points only; history is in the EDA view.
func forecastTable(res forecast.Result) table.Model {
	future := res.Future()
	rows := make([]table.Row, 0, len(future))

	for _, p := range future {
		rows = append(rows, table.Row{
			FormatDate(p.Date),
			fmt.Sprintf("%.2f", p.Yhat),
			fmt.Sprintf("%.2f", p.YhatLower),
			fmt.Sprintf("%.2f", p.YhatUpper),
		})
	}

	return newTable([]table.Column{
		{Title: "Date", Width: 12},
		{Title: "Forecast", Width: 14},
		{Title: "Lower", Width: 14},
		{Title: "Upper", Width: 14},
	}, rows, 15)
}

func (m ForecastModel) View() string {
	if !m.workspace.Loaded() {
		return lipgloss.NewStyle().Padding(2).Render(notice(false))
	}

	switch m.state {
	case forecastStateFitting:
		return lipgloss.NewStyle().Padding(2).Render(m.spinner.View() + " Fitting forecast model...")
	case forecastStateExporting:
		return lipgloss.NewStyle().Padding(2).Render(m.spinner.View() + " Writing forecast files...")
	case forecastStateError:
		return errorView(m.err)
	case forecastStatePath:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	case forecastStateTable:
		return m.viewTable()
	}

	return ""
}

func (m ForecastModel) viewTable() string {
	if len(m.result.Points) == 0 {
		return lipgloss.NewStyle().Padding(2).Render(
			warnStyle.Render("Not enough dated sales to forecast.") + "\n" + statusLine(m.result.Status),
		)
	}

	header := headerStyle.Render(fmt.Sprintf("Next %d days (fitted on %d days of history)", m.result.Horizon, m.result.History))

	footer := statusLine(m.result.Status)

	switch {
	case m.err != nil:
		footer = errorStyle.Render(fmt.Sprintf("Export failed: %v", m.err))
	case m.summary != "":
		footer = successStyle.Render(m.summary)
	}

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", m.table.View(), footer),
	)
}

type forecastResultMsg struct {
	result forecast.Result
	err    error
}

func (m ForecastModel) fitCmd() tea.Cmd {
	dash, ds := m.dashboard, m.workspace.Dataset

	return func() tea.Msg {
		ctx, cancel := ComputeCtx()
		defer cancel()

		res, err := dash.Forecast(ctx, ds)

		return forecastResultMsg{result: res, err: err}
	}
}

type exportDoneMsg struct {
	summary string
	err     error
}

func exportCmd(points []forecast.Point, dir string) tea.Cmd {
	return func() tea.Msg {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return exportDoneMsg{err: fmt.Errorf("creating output directory: %w", err)}
		}

		xlsxPath := filepath.Join(dir, export.ForecastFilename)
		if err := writeFile(xlsxPath, func(f *os.File) error { return export.ForecastXLSX(f, points) }); err != nil {
			return exportDoneMsg{err: err}
		}

		reportPath := filepath.Join(dir, export.ReportFilename)
		if err := writeFile(reportPath, func(f *os.File) error { return export.ForecastReport(f, points) }); err != nil {
			return exportDoneMsg{err: err}
		}

		return exportDoneMsg{summary: fmt.Sprintf("Saved %s and %s", xlsxPath, reportPath)}
	}
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return f.Close()
}
