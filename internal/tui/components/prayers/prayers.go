package prayers

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/ihsan/internal/constants"
	"github.com/julianstephens/ihsan/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Padding(1, 2)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Width(7)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	nextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62"))
)

var statusStyles = map[models.PrayerStatus]lipgloss.Style{
	models.PrayerOnTime: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	models.PrayerLate:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	models.PrayerMissed: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	models.PrayerNone:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
}

// SetPrayerMsg asks the parent model to log a prayer status for today.
type SetPrayerMsg struct {
	Name   string
	Status models.PrayerStatus
}

type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	OnTime key.Binding
	Late   key.Binding
	Missed key.Binding
	Clear  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		OnTime: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "on time"),
		),
		Late: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "late"),
		),
		Missed: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "missed"),
		),
		Clear: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "clear"),
		),
	}
}

type Model struct {
	Times    []models.PrayerTime
	Statuses map[string]models.PrayerStatus
	Time     time.Time
	Keys     KeyMap
	cursor   int
	width    int
	height   int
}

func New(times []models.PrayerTime) Model {
	return Model{
		Times:    times,
		Statuses: make(map[string]models.PrayerStatus),
		Time:     time.Now(),
		Keys:     DefaultKeyMap(),
	}
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) SetStatuses(statuses map[string]models.PrayerStatus) {
	m.Statuses = statuses
}

// Selected returns the name of the highlighted prayer.
func (m Model) Selected() string {
	return constants.PrayerNames[m.cursor]
}

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		m.Time = time.Time(msg)
		return m, tick()
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.Keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.Keys.Down):
			if m.cursor < constants.PrayerCount-1 {
				m.cursor++
			}
		case key.Matches(msg, m.Keys.OnTime):
			return m, m.set(models.PrayerOnTime)
		case key.Matches(msg, m.Keys.Late):
			return m, m.set(models.PrayerLate)
		case key.Matches(msg, m.Keys.Missed):
			return m, m.set(models.PrayerMissed)
		case key.Matches(msg, m.Keys.Clear):
			return m, m.set(models.PrayerNone)
		}
	}
	return m, nil
}

func (m Model) set(status models.PrayerStatus) tea.Cmd {
	name := m.Selected()
	return func() tea.Msg { return SetPrayerMsg{Name: name, Status: status} }
}

func (m Model) View() string {
	next := m.nextPrayer()
	var rows []string
	for i, name := range constants.PrayerNames {
		status := m.Statuses[name]
		if status == "" {
			status = models.PrayerNone
		}
		cursor := "  "
		label := name
		if i == m.cursor {
			cursor = "> "
			label = selectedStyle.Render(name)
		}
		if name == next {
			label += nextStyle.Render(" (next)")
		}
		rows = append(rows, fmt.Sprintf("%s%s %-20s %s",
			cursor,
			timeStyle.Render(m.timeOf(i)),
			label,
			statusStyles[status].Render(status.Label()),
		))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(fmt.Sprintf("Prayers: %02d:%02d", m.Time.Hour(), m.Time.Minute())),
		strings.Join(rows, "\n"),
	)
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}

func (m Model) timeOf(i int) string {
	if i < len(m.Times) {
		return m.Times[i].Time
	}
	return constants.PlaceholderPrayerTime
}

// nextPrayer returns the first prayer whose time is still ahead, or "" if
// times are unknown or all have passed.
func (m Model) nextPrayer() string {
	clock := m.Time.Format("15:04")
	for i, name := range constants.PrayerNames {
		t := m.timeOf(i)
		if t == constants.PlaceholderPrayerTime {
			return ""
		}
		if t > clock {
			return name
		}
	}
	return ""
}
