package viewer

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/openmined/healthview/internal/healthsdk"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	headingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

type keyMap struct {
	Quit key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var defaultKeys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// loadedMsg carries the outcome of the single fetch into the update loop.
type loadedMsg struct {
	result healthsdk.Result
}

// Model is the terminal rendering surface for a Viewer.
type Model struct {
	ctx    context.Context
	viewer *Viewer
	keys   keyMap
	help   help.Model
}

func NewModel(ctx context.Context, v *Viewer) Model {
	return Model{
		ctx:    ctx,
		viewer: v,
		keys:   defaultKeys,
		help:   help.New(),
	}
}

// Init runs the fetch on bubbletea's command goroutine.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{result: m.viewer.Load(m.ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.viewer.Unmount()
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	case loadedMsg:
		// the viewer already holds the outcome; re-render
	}
	return m, nil
}

// View is a function of the current status only.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(Title))
	b.WriteString("\n\n")
	b.WriteString(headingStyle.Render(StatusHeading))
	b.WriteString("\n")
	b.WriteString(m.viewer.Status().Pretty())
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}
