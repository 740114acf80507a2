package view

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/retailboard/internal/upload"
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// CommonModel is embedded by all views.
type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// Workspace is the state shared by every screen: the dataset loaded on the
// Load Data screen.
type Workspace struct {
	Dataset *upload.Dataset
}

func (w *Workspace) Loaded() bool {
	return w != nil && w.Dataset != nil
}
