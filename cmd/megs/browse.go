package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/term"

	"github.com/megs-sim/megs"
	"github.com/megs-sim/megs/host"
)

func newBrowseCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Pick modules from the catalog and place them interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return fmt.Errorf("browse needs a terminal; use run for headless output")
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, a.Close(ctx)) }()

			p := tea.NewProgram(newBrowseModel(ctx, a), tea.WithAltScreen(), tea.WithContext(ctx))
			_, err = p.Run()
			return err
		},
	}
}

type browseState int

const (
	stateSelectModule browseState = iota
	stateInputPosition
	stateShowDraws
)

var positionFields = []string{"x", "y", "z"}

type moduleEntry struct {
	category string
	name     string
}

func (e moduleEntry) String() string {
	return e.category + "/" + e.name
}

type browseModel struct {
	ctx       context.Context
	err       error
	app       *app
	modules   []moduleEntry
	inputs    []textinput.Model
	calls     []host.DrawCall
	placed    int
	selected  int
	focusIdx  int
	state     browseState
	loaded    bool
	tickError error
}

func newBrowseModel(ctx context.Context, a *app) *browseModel {
	return &browseModel{ctx: ctx, app: a, state: stateSelectModule}
}

type catalogMsg struct {
	err     error
	modules []moduleEntry
}

type tickMsg struct {
	err     error
	tickErr error
	calls   []host.DrawCall
}

func (m *browseModel) Init() tea.Cmd {
	return m.loadCatalog
}

func (m *browseModel) loadCatalog() tea.Msg {
	n, err := m.app.load(m.ctx)
	if err != nil && n == 0 {
		return catalogMsg{err: err}
	}
	var modules []moduleEntry
	for _, cat := range m.app.env.Categories() {
		for _, info := range cat.Modules {
			modules = append(modules, moduleEntry{category: cat.Name, name: info.Name})
		}
	}
	return catalogMsg{modules: modules}
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInputPosition {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectModule && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectModule && m.selected < len(m.modules)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectModule:
				if len(m.modules) == 0 {
					return m, nil
				}
				m.prepareInputs()
				m.state = stateInputPosition
				return m, textinput.Blink

			case stateInputPosition:
				return m, m.place

			case stateShowDraws:
				m.state = stateSelectModule
				m.err = nil
			}

		case "tab":
			if m.state == stateInputPosition {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputPosition:
				m.state = stateSelectModule
				m.inputs = nil
			case stateShowDraws:
				m.state = stateSelectModule
				m.err = nil
			}
		}

	case catalogMsg:
		m.loaded = true
		m.err = msg.err
		m.modules = msg.modules

	case tickMsg:
		m.err = msg.err
		m.tickError = msg.tickErr
		m.calls = msg.calls
		if msg.err == nil {
			m.placed++
		}
		m.state = stateShowDraws
	}

	if m.state == stateInputPosition {
		cmds := make([]tea.Cmd, len(m.inputs))
		for i := range m.inputs {
			m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *browseModel) prepareInputs() {
	m.inputs = make([]textinput.Model, len(positionFields))
	for i, name := range positionFields {
		ti := textinput.New()
		ti.Placeholder = "0"
		ti.Prompt = name + ": "
		ti.Width = 20
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *browseModel) position() (megs.Point, error) {
	values := make([]string, len(m.inputs))
	for i, input := range m.inputs {
		values[i] = strings.TrimSpace(input.Value())
		if values[i] == "" {
			values[i] = "0"
		}
	}
	return parsePoint(strings.Join(values, ","))
}

// place instantiates the selected module and runs one tick over every
// instance placed so far.
func (m *browseModel) place() tea.Msg {
	pos, err := m.position()
	if err != nil {
		return tickMsg{err: err}
	}
	entry := m.modules[m.selected]
	if _, err := m.app.env.Instantiate(m.ctx, entry.category, entry.name, pos); err != nil {
		return tickMsg{err: err}
	}

	m.app.recorder.Reset()
	tickErr := m.app.env.OnTick(m.ctx)
	return tickMsg{tickErr: tickErr, calls: m.app.recorder.Calls()}
}

func (m *browseModel) View() string {
	if !m.loaded {
		return "Loading modules..."
	}
	if m.err != nil && m.state != stateShowDraws {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("megs"))
	fmt.Fprintf(&b, " %s  %s\n\n", m.app.cfg.Modules.Root, hintStyle.Render(fmt.Sprintf("%d placed", m.placed)))

	switch m.state {
	case stateSelectModule:
		if len(m.modules) == 0 {
			b.WriteString("No modules found.\n\n")
			b.WriteString(hintStyle.Render("q quit"))
			break
		}
		b.WriteString("Select a module to place:\n\n")
		for i, e := range m.modules {
			if i == m.selected {
				b.WriteString(cursorStyle.Render("> " + e.String()))
			} else {
				b.WriteString("  " + moduleStyle.Render(e.String()))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(hintStyle.Render("↑/↓ select • enter place • q quit"))

	case stateInputPosition:
		fmt.Fprintf(&b, "Placing %s\n\n", moduleStyle.Render(m.modules[m.selected].String()))
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(externStyle.Render("f32"))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(hintStyle.Render("tab next field • enter place • esc back"))

	case stateShowDraws:
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n\n")
			b.WriteString(hintStyle.Render("enter continue • q quit"))
			break
		}
		b.WriteString("Draw calls:\n\n")
		for _, call := range m.calls {
			b.WriteString(drawStyle.Render(call.String()))
			b.WriteString("\n")
		}
		if m.tickError != nil {
			b.WriteString(errorStyle.Render(m.tickError.Error()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(hintStyle.Render("enter continue • q quit"))
	}

	return b.String()
}
