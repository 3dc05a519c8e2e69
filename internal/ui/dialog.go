package ui

import (
	"fmt"
	"strings"

	"github.com/nconklindev/ttvfill/internal/pipeline"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type dialogKind int

const (
	dialogInfo dialogKind = iota
	dialogError
	dialogConfirm
)

type dialog struct {
	kind  dialogKind
	title string
	body  string
}

func (m *Model) showDialog(kind dialogKind, title, body string) {
	m.dialog = dialog{kind: kind, title: title, body: body}
	m.screen = screenDialog
}

func (m Model) updateDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.dialog.kind == dialogConfirm {
		switch key {
		case "y", "Y", "enter":
			if err := m.runner.Confirm(true); err != nil {
				return m, nil
			}
			m.screen = screenForm
			m.syncState()
			return m, tea.Batch(step(m.runner), m.progress.SetPercent(m.state.Progress()))
		case "n", "N", "esc":
			if err := m.runner.Confirm(false); err != nil {
				return m, nil
			}
			m.screen = screenForm
			m.syncState()
			m.status = "Cancelled."
			return m, m.progress.SetPercent(0)
		}
		return m, nil
	}

	switch key {
	case "enter", "esc", " ", "q":
		m.screen = screenForm
		if m.runner != nil && m.state.Terminal() {
			m.runner.Reset()
			m.syncState()
		}
	}
	return m, nil
}

func (m Model) viewDialog() string {
	var s strings.Builder

	title := SuccessStyle
	border := accent
	help := "enter: close"
	switch m.dialog.kind {
	case dialogError:
		title = ErrorStyle
		border = danger
	case dialogConfirm:
		title = WarningStyle
		border = warning
		help = "y: continue • n: cancel"
	}

	s.WriteString(title.Render(m.dialog.title))
	s.WriteString("\n\n")
	s.WriteString(m.dialog.body)
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render(help))

	box := DialogStyle.BorderForeground(border).Render(s.String())
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// successBody lists the output file and what was written to each sheet.
func successBody(r *pipeline.Runner) string {
	res := r.Result()
	if res == nil {
		return "Saved."
	}

	var s strings.Builder
	s.WriteString("Saved filled template:\n")
	s.WriteString(res.OutputFile)
	s.WriteString("\n")
	for _, side := range res.Sides {
		s.WriteString("\n")
		if side.Count == 0 {
			s.WriteString(fmt.Sprintf("%s: no points", side.Sheet))
			continue
		}
		s.WriteString(fmt.Sprintf("%s: %d values in %s:%s (min %g, max %g, range %g)",
			side.Sheet, side.Count, side.FirstCell, side.LastCell, side.Min, side.Max, side.Range))
	}
	return s.String()
}
