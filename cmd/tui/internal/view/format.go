package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

const computeTimeout = 2 * time.Minute

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	barStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("57"))
)

// FormatMoney renders a decimal amount with two places.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// ComputeCtx returns a context bounding a model fit or export.
func ComputeCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), computeTimeout)
}

// bar draws a horizontal bar of up to width cells for v relative to top.
func bar(v, top float64, width int) string {
	if top <= 0 || v <= 0 {
		return ""
	}

	n := int(v / top * float64(width))
	if n < 1 {
		n = 1
	}

	return barStyle.Render(strings.Repeat("█", n))
}

func notice(loaded bool) string {
	if loaded {
		return ""
	}

	return warnStyle.Render("Please load data first on the 'Load Data' screen.") + "\n\n(Esc to go back)"
}

func newTable(columns []table.Column, rows []table.Row, height int) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func errorView(err error) string {
	return lipgloss.NewStyle().Padding(1).Render(
		errorStyle.Render(fmt.Sprintf("Error: %v", err)) + "\n\n(Esc to go back)",
	)
}
