package board

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/ihsan/internal/challenges"
	"github.com/julianstephens/ihsan/internal/models"
)

type AddChallengeMsg struct{}

type StartChallengeMsg struct {
	ID string
}

type CompleteChallengeMsg struct {
	ID string
}

type ResetChallengeMsg struct {
	ID string
}

type DeleteChallengeMsg struct {
	ID string
}

type Item struct {
	Entry challenges.Entry
}

func (i Item) Title() string {
	c := i.Entry.Challenge
	title := c.Icon + " " + c.Title
	switch i.Entry.State {
	case models.ChallengeActive:
		title += " (active)"
	case models.ChallengeCompleted:
		title += " ✓"
	}
	return title
}

func (i Item) Description() string {
	c := i.Entry.Challenge
	desc := fmt.Sprintf("%d XP | %s | %s", c.XP, c.Category, c.Difficulty)
	if c.Duration != "" {
		desc += " | " + c.Duration
	}
	if c.IsCustom {
		desc += " | custom"
	}
	return desc
}

func (i Item) FilterValue() string { return i.Entry.Challenge.Title }

type KeyMap struct {
	Add      key.Binding
	Start    key.Binding
	Complete key.Binding
	Reset    key.Binding
	Delete   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "create"),
		),
		Start: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start"),
		),
		Complete: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "complete"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete custom"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(board []challenges.Entry, width, height int) Model {
	l := list.New(toItems(board), list.NewDefaultDelegate(), width, height)
	l.Title = "Challenges"
	l.SetShowTitle(false)
	l.SetShowHelp(false) // help is rendered by the main model

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Start, keys.Complete, keys.Reset, keys.Delete}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Start, keys.Complete, keys.Reset, keys.Delete}
	}

	return Model{list: l, keys: keys}
}

func toItems(board []challenges.Entry) []list.Item {
	items := make([]list.Item, len(board))
	for i, e := range board {
		items[i] = Item{Entry: e}
	}
	return items
}

func (m *Model) SetBoard(board []challenges.Entry) {
	m.list.SetItems(toItems(board))
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		if key.Matches(msg, m.keys.Add) {
			return m, func() tea.Msg { return AddChallengeMsg{} }
		}
		i, ok := m.list.SelectedItem().(Item)
		if !ok {
			break
		}
		id := i.Entry.Challenge.ID
		switch {
		case key.Matches(msg, m.keys.Start):
			return m, func() tea.Msg { return StartChallengeMsg{ID: id} }
		case key.Matches(msg, m.keys.Complete):
			return m, func() tea.Msg { return CompleteChallengeMsg{ID: id} }
		case key.Matches(msg, m.keys.Reset):
			return m, func() tea.Msg { return ResetChallengeMsg{ID: id} }
		case key.Matches(msg, m.keys.Delete):
			if i.Entry.Challenge.IsCustom {
				return m, func() tea.Msg { return DeleteChallengeMsg{ID: id} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No challenges.\n  Press 'a' to create one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
