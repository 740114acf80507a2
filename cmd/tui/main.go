package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/retailboard/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/retailboard/internal/config"
	"github.com/MrJamesThe3rd/retailboard/internal/dashboard"
	"github.com/MrJamesThe3rd/retailboard/internal/database"
	"github.com/MrJamesThe3rd/retailboard/internal/forecast"
	"github.com/MrJamesThe3rd/retailboard/internal/forecast/additive"
	"github.com/MrJamesThe3rd/retailboard/internal/segment"
	"github.com/MrJamesThe3rd/retailboard/internal/upload"
	uploadStore "github.com/MrJamesThe3rd/retailboard/internal/upload/store"
)

type model struct {
	uploadService *upload.Service
	dashService   *dashboard.Service
	workspace     *view.Workspace
	sessionID     uuid.UUID

	currentView View

	loadView     view.LoadModel
	edaView      view.EDAModel
	forecastView view.ForecastModel
	segmentsView view.SegmentsModel
}

type View int

const (
	ViewHome     View = 0
	ViewLoad     View = 1
	ViewEDA      View = 2
	ViewForecast View = 3
	ViewSegments View = 4
	ViewAbout    View = 5
)

var titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	driver, dsn, err := cfg.DataSource()
	if err != nil {
		slog.Error("invalid database config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(driver, dsn)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	ctx, cancel := view.ComputeCtx()
	defer cancel()

	if err := database.Migrate(ctx, db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	var (
		uploadSvc   = upload.NewService(uploadStore.New(db, driver), cfg.Upload.MaxBytes)
		forecastSvc = forecast.NewService(additive.New(additive.DefaultConfig()), cfg.Forecast.HorizonDays)
		dashSvc     = dashboard.NewService(forecastSvc, segment.NewEngine(cfg.Segment.Clusters, cfg.Segment.Seed))
		ws          = &view.Workspace{}
		sessionID   = uuid.New()
	)

	return model{
		uploadService: uploadSvc,
		dashService:   dashSvc,
		workspace:     ws,
		sessionID:     sessionID,
		currentView:   ViewHome,
		loadView:      view.NewLoadModel(uploadSvc, dashSvc, ws, sessionID),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewHome || m.currentView == ViewAbout {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "esc":
				m.currentView = ViewHome
				return m, nil
			case "1":
				m.currentView = ViewLoad
				m.loadView = view.NewLoadModel(m.uploadService, m.dashService, m.workspace, m.sessionID)

				return m, m.loadView.Init()
			case "2":
				m.currentView = ViewEDA
				m.edaView = view.NewEDAModel(m.dashService, m.workspace)

				return m, m.edaView.Init()
			case "3":
				m.currentView = ViewForecast
				m.forecastView = view.NewForecastModel(m.dashService, m.workspace)

				return m, m.forecastView.Init()
			case "4":
				m.currentView = ViewSegments
				m.segmentsView = view.NewSegmentsModel(m.dashService, m.workspace)

				return m, m.segmentsView.Init()
			case "5":
				m.currentView = ViewAbout
				return m, nil
			}
		}
	case view.BackMsg:
		m.currentView = ViewHome
		return m, nil
	}

	switch m.currentView {
	case ViewLoad:
		var newModel tea.Model
		newModel, cmd = m.loadView.Update(msg)
		m.loadView = newModel.(view.LoadModel)
	case ViewEDA:
		var newModel tea.Model
		newModel, cmd = m.edaView.Update(msg)
		m.edaView = newModel.(view.EDAModel)
	case ViewForecast:
		var newModel tea.Model
		newModel, cmd = m.forecastView.Update(msg)
		m.forecastView = newModel.(view.ForecastModel)
	case ViewSegments:
		var newModel tea.Model
		newModel, cmd = m.segmentsView.Update(msg)
		m.segmentsView = newModel.(view.SegmentsModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewHome:
		return m.viewHome()
	case ViewLoad:
		return m.frame(m.loadView)
	case ViewEDA:
		return m.frame(m.edaView)
	case ViewForecast:
		return m.frame(m.forecastView)
	case ViewSegments:
		return m.frame(m.segmentsView)
	case ViewAbout:
		return lipgloss.NewStyle().Padding(2).Render(
			titleStyle.Render("About") + "\n\n" +
				"Retail sales dashboard for Online Retail transaction exports.\n\n" +
				"Load an .xlsx or .csv file; columns are detected by name, rows are\n" +
				"cleaned (cancellations, bad dates, duplicates) and Sales = Quantity x UnitPrice.\n" +
				"EDA groups sales by day, product and country. Forecast fits an additive\n" +
				"trend plus seasonality model and projects 30 days ahead. Segmentation\n" +
				"clusters customers by Recency, Frequency and log Monetary with k-means.\n\n" +
				"Esc: back",
		)
	}

	return "Unknown View"
}

func (m model) viewHome() string {
	status := "No dataset loaded."
	if m.workspace.Loaded() {
		ds := m.workspace.Dataset
		status = ds.Upload.Filename + " loaded"
	}

	return lipgloss.NewStyle().Padding(2).Render(
		titleStyle.Render("Retailboard") + "\n" +
			status + "\n\n" +
			"1. Load Data\n" +
			"2. EDA\n" +
			"3. Forecast\n" +
			"4. Segmentation\n" +
			"5. About\n\n" +
			"q. Quit",
	)
}

func (m model) frame(v view.View) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingLeft(1).Render(titleStyle.Render(v.Title())),
		v.View(),
		lipgloss.NewStyle().PaddingLeft(1).Foreground(lipgloss.Color("240")).Render(v.ShortHelp()),
	)
}

func main() {
	m := initialModel()

	// The alt screen owns the terminal; service logs go to a file instead.
	logFile, err := tea.LogToFile("retailboard-tui.log", "")
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	slog.SetDefault(slog.New(slog.NewTextHandler(logFile, nil)))

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
