package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/nconklindev/ttvfill/internal/config"
	"github.com/nconklindev/ttvfill/internal/pipeline"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type screen int

const (
	screenForm screen = iota
	screenPicker
	screenDialog
)

const (
	fieldTemplate = iota
	fieldSide1
	fieldSide2
	fieldOutput
	fieldSheet1
	fieldSheet2
	fieldColumn
	fieldStartRow
	fieldCount
)

// focusRun is the focus index of the RUN button, after the last field.
const focusRun = fieldCount

type fieldSpec struct {
	label    string
	width    int
	fileType []string
}

var fieldSpecs = [fieldCount]fieldSpec{
	fieldTemplate: {label: "Excel Template File:", fileType: []string{".xlsx"}},
	fieldSide1:    {label: "Side 1 TXT File:", fileType: []string{".txt"}},
	fieldSide2:    {label: "Side 2 TXT File:", fileType: []string{".txt"}},
	fieldOutput:   {label: "Output Excel File:", fileType: []string{".xlsx"}},
	fieldSheet1:   {label: "Sheet name for Side 1:", width: 18},
	fieldSheet2:   {label: "Sheet name for Side 2:", width: 18},
	fieldColumn:   {label: "Write Z into column:", width: 6},
	fieldStartRow: {label: "Start row:", width: 6},
}

type Model struct {
	screen    screen
	inputs    []textinput.Model
	focus     int
	picker    filepicker.Model
	pickerFor int
	dialog    dialog
	runner    *pipeline.Runner
	seen      *transitions
	state     pipeline.State
	status    string
	progress  progress.Model
	width     int
	height    int
}

// stepMsg reports the state a runner reached after one Step.
type stepMsg struct {
	state pipeline.State
	err   error
}

// transitions collects the states a runner enters. Step runs inside a
// command goroutine while Update reads them.
type transitions struct {
	mu     sync.Mutex
	states []pipeline.State
}

func (t *transitions) record(s pipeline.State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states = append(t.states, s)
}

func (t *transitions) drain() []pipeline.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	states := t.states
	t.states = nil
	return states
}

func InitialModel(form config.Form) Model {
	values := [fieldCount]string{
		fieldTemplate: form.TemplatePath,
		fieldSide1:    form.Side1Path,
		fieldSide2:    form.Side2Path,
		fieldOutput:   form.OutputPath,
		fieldSheet1:   form.Sheet1Name,
		fieldSheet2:   form.Sheet2Name,
		fieldColumn:   form.ColumnLetter,
		fieldStartRow: form.StartRow,
	}

	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Width = 60
		if w := fieldSpecs[i].width; w > 0 {
			ti.Width = w
		}
		ti.Cursor.Style = lipgloss.NewStyle().Foreground(accent)
		ti.SetValue(values[i])
		inputs[i] = ti
	}
	inputs[0].Focus()

	return Model{
		screen:   screenForm,
		inputs:   inputs,
		state:    pipeline.StateIdle,
		status:   pipeline.StateIdle.Status(),
		progress: progress.New(progress.WithGradient("#2EC4B6", "#8FD9D1")),
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Form returns the current field values.
func (m Model) Form() config.Form {
	return config.Form{
		TemplatePath: m.inputs[fieldTemplate].Value(),
		Side1Path:    m.inputs[fieldSide1].Value(),
		Side2Path:    m.inputs[fieldSide2].Value(),
		OutputPath:   m.inputs[fieldOutput].Value(),
		Sheet1Name:   m.inputs[fieldSheet1].Value(),
		Sheet2Name:   m.inputs[fieldSheet2].Value(),
		ColumnLetter: m.inputs[fieldColumn].Value(),
		StartRow:     m.inputs[fieldStartRow].Value(),
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		pathWidth := msg.Width - LabelStyle.GetWidth() - 8
		if pathWidth < 20 {
			pathWidth = 20
		}
		for i := fieldTemplate; i <= fieldOutput; i++ {
			m.inputs[i].Width = pathWidth
		}
		m.progress.Width = min(msg.Width-4, 60)

		return m, nil

	case stepMsg:
		return m.handleStep(msg)

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case tea.KeyMsg:
		switch m.screen {
		case screenForm:
			return m.updateForm(msg)
		case screenDialog:
			return m.updateDialog(msg)
		case screenPicker:
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "q":
				m.screen = screenForm
				return m, nil
			}
		}
	}

	switch m.screen {
	case screenPicker:
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		if didSelect, path := m.picker.DidSelectFile(msg); didSelect {
			m.inputs[m.pickerFor].SetValue(path)
			m.inputs[m.pickerFor].CursorEnd()
			m.screen = screenForm
			return m, nil
		}
		return m, cmd

	case screenForm:
		if m.focus < fieldCount {
			var cmd tea.Cmd
			m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab", "down":
		return m, m.setFocus(m.focus + 1)
	case "shift+tab", "up":
		return m, m.setFocus(m.focus - 1)
	case "ctrl+r":
		return m.startRun()
	case "ctrl+o":
		if m.focus < fieldCount && fieldSpecs[m.focus].fileType != nil {
			return m.openPicker(m.focus)
		}
		return m, nil
	case "enter":
		if m.focus == focusRun {
			return m.startRun()
		}
		return m, m.setFocus(m.focus + 1)
	}

	if m.focus < fieldCount {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) setFocus(i int) tea.Cmd {
	n := fieldCount + 1
	m.focus = ((i % n) + n) % n

	var cmd tea.Cmd
	for j := range m.inputs {
		if j == m.focus {
			cmd = m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	return cmd
}

func (m Model) openPicker(field int) (tea.Model, tea.Cmd) {
	fp := filepicker.New()
	fp.AllowedTypes = fieldSpecs[field].fileType
	fp.CurrentDirectory = pickerDir(m.inputs[field].Value())

	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(accent)
	fp.Styles.Symlink = lipgloss.NewStyle().Foreground(accentDim)
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(accentDim)
	fp.Styles.File = lipgloss.NewStyle().Foreground(plain)
	fp.Styles.Permission = lipgloss.NewStyle().Foreground(muted)
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(accent).Bold(true)
	fp.Styles.FileSize = lipgloss.NewStyle().Foreground(muted)

	height := m.height - 12
	if height < 5 {
		height = 5
	}
	fp.SetHeight(height)

	m.picker = fp
	m.pickerFor = field
	m.screen = screenPicker
	return m, m.picker.Init()
}

// pickerDir starts the picker next to the current value when that directory exists.
func pickerDir(current string) string {
	if current != "" {
		dir := filepath.Dir(current)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	wd, _ := os.Getwd()
	return wd
}

func (m Model) busy() bool {
	return m.state != pipeline.StateIdle && !m.state.Terminal()
}

func (m Model) startRun() (tea.Model, tea.Cmd) {
	if m.busy() {
		return m, nil
	}

	m.seen = &transitions{}
	m.runner = pipeline.New(m.Form(), pipeline.WithObserver(m.seen.record))
	if err := m.runner.Start(); err != nil {
		m.syncState()
		m.showDialog(dialogError, "Missing input", err.Error())
		return m, nil
	}

	m.syncState()
	return m, tea.Batch(step(m.runner), m.progress.SetPercent(m.state.Progress()))
}

// syncState replays the transitions recorded since the last call onto the
// status line.
func (m *Model) syncState() {
	if m.seen == nil {
		return
	}
	for _, s := range m.seen.drain() {
		m.state = s
		m.status = s.Status()
	}
}

func step(r *pipeline.Runner) tea.Cmd {
	return func() tea.Msg {
		state, err := r.Step()
		return stepMsg{state: state, err: err}
	}
}

func (m Model) handleStep(msg stepMsg) (tea.Model, tea.Cmd) {
	m.syncState()
	m.state = msg.state
	progressCmd := m.progress.SetPercent(msg.state.Progress())

	switch msg.state {
	case pipeline.StateConfirming:
		n1, n2 := m.runner.Counts()
		m.showDialog(dialogConfirm, "Point count mismatch",
			fmt.Sprintf("Side 1 has %d points, Side 2 has %d points.\nContinue anyway?", n1, n2))
		return m, progressCmd

	case pipeline.StateDone:
		m.showDialog(dialogInfo, "Success", successBody(m.runner))
		return m, progressCmd

	case pipeline.StateError:
		text := "unknown error"
		if msg.err != nil {
			text = msg.err.Error()
		}
		m.showDialog(dialogError, "Error", text)
		return m, progressCmd
	}

	if msg.err != nil {
		m.showDialog(dialogError, "Error", msg.err.Error())
		return m, progressCmd
	}
	return m, tea.Batch(step(m.runner), progressCmd)
}

func (m Model) View() string {
	switch m.screen {
	case screenPicker:
		return m.viewPicker()
	case screenDialog:
		return m.viewDialog()
	}
	return m.viewForm()
}

func (m Model) viewForm() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("TTV Template Filler"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("Copy Z values from two XYZ text files into an Excel template"))
	s.WriteString("\n")

	for i := fieldTemplate; i <= fieldOutput; i++ {
		s.WriteString(m.viewField(i))
		s.WriteString("\n")
	}

	s.WriteString(SectionStyle.Render("Template Settings"))
	s.WriteString("\n")
	for i := fieldSheet1; i < fieldCount; i++ {
		s.WriteString(m.viewField(i))
		s.WriteString("\n")
	}
	s.WriteString("\n")

	button := ButtonStyle
	if m.focus == focusRun {
		button = ActiveButtonStyle
	}
	s.WriteString(button.Render("RUN"))
	s.WriteString("\n\n")

	s.WriteString(m.progress.View())
	s.WriteString("\n")

	status := StatusStyle
	switch m.state {
	case pipeline.StateError:
		status = ErrorStyle
	case pipeline.StateDone:
		status = SuccessStyle
	}
	s.WriteString(status.Render(m.status))
	s.WriteString("\n")

	s.WriteString(HelpStyle.Render("tab/↑/↓: move • ctrl+o: browse • enter on RUN or ctrl+r: run • ctrl+c: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewField(i int) string {
	label := LabelStyle
	if m.focus == i {
		label = FocusedLabelStyle
	}

	line := lipgloss.JoinHorizontal(lipgloss.Top, label.Render(fieldSpecs[i].label), m.inputs[i].View())
	if m.focus == i && fieldSpecs[i].fileType != nil {
		line += HelpStyle.UnsetMarginTop().Render("  ctrl+o")
	}
	return line
}

func (m Model) viewPicker() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("Select " + strings.TrimSuffix(fieldSpecs[m.pickerFor].label, ":")))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(m.picker.CurrentDirectory))
	s.WriteString("\n\n")
	s.WriteString(m.picker.View())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("enter: select • esc/backspace: up a directory • q: back to form"))

	return s.String()
}
