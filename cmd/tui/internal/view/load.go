package view

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/retailboard/internal/dashboard"
	"github.com/MrJamesThe3rd/retailboard/internal/upload"
)

type loadState int

const (
	loadStateFilePick loadState = iota
	loadStateLoading
	loadStatePreview
	loadStateError
)

type LoadModel struct {
	CommonModel
	uploads   *upload.Service
	dashboard *dashboard.Service
	workspace *Workspace
	sessionID uuid.UUID

	state      loadState
	filePicker filepicker.Model
	spinner    spinner.Model
	preview    table.Model
	summary    string
	err        error
}

func NewLoadModel(uploads *upload.Service, dash *dashboard.Service, ws *Workspace, sessionID uuid.UUID) LoadModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".tsv", ".txt", ".xlsx", ".xlsm"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return LoadModel{
		uploads:    uploads,
		dashboard:  dash,
		workspace:  ws,
		sessionID:  sessionID,
		filePicker: fp,
		spinner:    s,
	}
}

func (m LoadModel) Title() string { return "Load Data" }

func (m LoadModel) ShortHelp() string {
	if m.state == loadStatePreview {
		return "Esc: back | o: open another file"
	}

	return "Esc: back | Enter: select"
}

func (m LoadModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m LoadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.state == loadStatePreview || m.state == loadStateError {
			if msg.String() == "o" {
				m.state = loadStateFilePick
				m.err = nil

				return m, m.filePicker.Init()
			}

			var cmd tea.Cmd
			m.preview, cmd = m.preview.Update(msg)

			return m, cmd
		}

	case loadResultMsg:
		if msg.err != nil {
			m.state = loadStateError
			m.err = msg.err

			return m, nil
		}

		m.workspace.Dataset = msg.dataset
		m.state = loadStatePreview
		m.buildPreview()

		return m, nil
	}

	switch m.state {
	case loadStateLoading:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	case loadStateFilePick:
		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.state = loadStateLoading
			return m, tea.Batch(m.spinner.Tick, m.loadCmd(path))
		}

		return m, cmd
	}

	return m, nil
}

func (m *LoadModel) buildPreview() {
	p := m.dashboard.Preview(m.workspace.Dataset)

	cols := make([]table.Column, len(p.Columns))
	for i, c := range p.Columns {
		cols[i] = table.Column{Title: c, Width: max(10, min(len(c)+2, 24))}
	}

	rows := make([]table.Row, len(p.Rows))
	for i, r := range p.Rows {
		rows[i] = table.Row(r)
	}

	m.preview = newTable(cols, rows, len(rows)+1)

	var b strings.Builder

	fmt.Fprintf(&b, "%s: %d rows read, %d kept\n", p.Filename, p.RawRows, p.Total)

	if p.Charset != "" {
		fmt.Fprintf(&b, "  encoding: %s\n", p.Charset)
	}

	for reason, n := range p.Dropped {
		fmt.Fprintf(&b, "  dropped %d (%s)\n", n, reason)
	}

	for _, n := range p.Notes {
		b.WriteString(warnStyle.Render(n.Message()) + "\n")
	}

	m.summary = b.String()
}

func (m LoadModel) View() string {
	switch m.state {
	case loadStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			"Select an Online Retail file (.xlsx or .csv):\n\n" + m.filePicker.View(),
		)
	case loadStateLoading:
		return lipgloss.NewStyle().Padding(2).Render(m.spinner.View() + " Loading dataset...")
	case loadStateError:
		return errorView(m.err)
	case loadStatePreview:
		return lipgloss.NewStyle().Padding(1).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				successStyle.Render("Dataset loaded successfully!"),
				"",
				m.summary,
				m.preview.View(),
			),
		)
	}

	return ""
}

type loadResultMsg struct {
	dataset *upload.Dataset
	err     error
}

func (m LoadModel) loadCmd(path string) tea.Cmd {
	uploads, sessionID := m.uploads, m.sessionID

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return loadResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := ComputeCtx()
		defer cancel()

		ds, err := uploads.Ingest(ctx, sessionID, filepath.Base(path), f)
		if err != nil {
			return loadResultMsg{err: err}
		}

		return loadResultMsg{dataset: ds}
	}
}
