// Package clock renders a ticking terminal clock with an optional stopwatch.
package clock

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	timeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Padding(1, 4).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63"))

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			MarginTop(1)

	stopwatchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			MarginTop(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)
)

type tickMsg time.Time

// Model is the bubbletea model for the clock screen.
type Model struct {
	now            time.Time
	use24h         bool
	stopwatchOn    bool
	stopwatchStart time.Time
	stopwatchAccum time.Duration
}

// NewModel builds the clock model. With use24h false the clock shows
// a 12-hour face with AM/PM.
func NewModel(use24h bool) Model {
	return Model{now: time.Now(), use24h: use24h}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.now = time.Time(msg)
		return m, tick()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "t":
			m.use24h = !m.use24h
		case "s":
			if m.stopwatchOn {
				m.stopwatchAccum += m.now.Sub(m.stopwatchStart)
				m.stopwatchOn = false
			} else {
				m.stopwatchStart = m.now
				m.stopwatchOn = true
			}
		case "r":
			m.stopwatchAccum = 0
			if m.stopwatchOn {
				m.stopwatchStart = m.now
			}
		}
	}
	return m, nil
}

// FaceLayout is the time format in use for the current mode.
func (m Model) FaceLayout() string {
	if m.use24h {
		return "15:04:05"
	}
	return "03:04:05 PM"
}

// StopwatchElapsed is the total stopwatch time, including the running leg.
func (m Model) StopwatchElapsed() time.Duration {
	d := m.stopwatchAccum
	if m.stopwatchOn {
		d += m.now.Sub(m.stopwatchStart)
	}
	return d
}

func formatElapsed(d time.Duration) string {
	d = d.Truncate(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(timeStyle.Render(m.now.Format(m.FaceLayout())))
	b.WriteString("\n")
	b.WriteString(dateStyle.Render(m.now.Format("Monday, January 2, 2006")))
	if m.stopwatchOn || m.stopwatchAccum > 0 {
		state := "paused"
		if m.stopwatchOn {
			state = "running"
		}
		b.WriteString("\n")
		b.WriteString(stopwatchStyle.Render(fmt.Sprintf("stopwatch %s  %s", formatElapsed(m.StopwatchElapsed()), state)))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("t: 12/24h  s: stopwatch  r: reset  q: quit"))
	return b.String()
}

// Run starts the clock in the alternate screen until the user quits.
func Run(use24h bool) error {
	_, err := tea.NewProgram(NewModel(use24h), tea.WithAltScreen()).Run()
	return err
}
