// Package tui is the interactive dashboard: today's habits and prayers, the
// challenge board and the profile, all driven by one session.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/ihsan/internal/constants"
	"github.com/julianstephens/ihsan/internal/models"
	"github.com/julianstephens/ihsan/internal/session"
	"github.com/julianstephens/ihsan/internal/tui/components/board"
	"github.com/julianstephens/ihsan/internal/tui/components/habits"
	"github.com/julianstephens/ihsan/internal/tui/components/prayers"
)

// tabCount is the number of top-level tabs; states below it are tabs.
const tabCount = int(constants.StateProfile) + 1

type HabitFormModel struct {
	Title    string
	Category models.HabitCategory
	Days     string
	XP       string
}

type ChallengeFormModel struct {
	Title       string
	Description string
	XP          string
	Icon        string
	Category    models.ChallengeCategory
	Difficulty  models.ChallengeDifficulty
	Duration    string
}

// Options carries the values the dashboard shows but does not own.
type Options struct {
	Settings models.Settings
	Times    []models.PrayerTime
}

// pendingDelete is the item awaiting confirmation.
type pendingDelete struct {
	habitID     string
	challengeID string
	label       string
}

type Model struct {
	sess          *session.Session
	settings      models.Settings
	state         constants.SessionState
	previousState constants.SessionState
	keys          KeyMap
	help          help.Model
	habitsModel   habits.Model
	prayersModel  prayers.Model
	boardModel    board.Model
	bar           progress.Model
	form          *huh.Form
	habitForm     *HabitFormModel
	challengeForm *ChallengeFormModel
	toDelete      pendingDelete
	status        string // outcome of the last action
	leveledUp     bool
	errMsg        string
	quitting      bool
	width         int
	height        int
}

func NewModel(sess *session.Session, opts Options) Model {
	m := Model{
		sess:         sess,
		settings:     opts.Settings,
		state:        constants.StateToday,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		habitsModel:  habits.New(nil, 0, 0),
		prayersModel: prayers.New(opts.Times),
		boardModel:   board.New(nil, 0, 0),
		bar:          progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
	m.refresh()
	return m
}

// refresh reloads every panel from the session.
func (m *Model) refresh() {
	today := m.sess.Today()
	due, err := m.sess.DueHabits(today)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.habitsModel.SetHabits(due)

	statuses, err := m.sess.PrayerStatuses(today)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.prayersModel.SetStatuses(statuses)

	entries, err := m.sess.ChallengeBoard()
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.boardModel.SetBoard(entries)
}

func (m *Model) setSize(width, height int) {
	m.width = width
	m.height = height
	// tabs, status line and help
	h := height - 6
	if h < 0 {
		h = 0
	}
	m.habitsModel.SetSize(width-4, h)
	m.boardModel.SetSize(width-4, h)
	m.prayersModel.SetSize(width, h)
	m.help.Width = width
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case constants.StateToday:
		hk := habits.DefaultKeyMap()
		keys = append(keys, hk.Toggle, hk.Add, hk.Delete)
	case constants.StatePrayers:
		pk := m.prayersModel.Keys
		keys = append(keys, pk.OnTime, pk.Late, pk.Missed, pk.Clear)
	case constants.StateChallenges:
		bk := board.DefaultKeyMap()
		keys = append(keys, bk.Start, bk.Complete, bk.Reset, bk.Add)
	case constants.StateConfirmDelete:
		keys = []key.Binding{m.keys.Confirm, m.keys.Cancel}
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}

	var actions []key.Binding
	switch m.state {
	case constants.StateToday:
		hk := habits.DefaultKeyMap()
		actions = []key.Binding{hk.Toggle, hk.Add, hk.Delete}
	case constants.StatePrayers:
		pk := m.prayersModel.Keys
		actions = []key.Binding{pk.Up, pk.Down, pk.OnTime, pk.Late, pk.Missed, pk.Clear}
	case constants.StateChallenges:
		bk := board.DefaultKeyMap()
		actions = []key.Binding{bk.Start, bk.Complete, bk.Reset, bk.Add, bk.Delete}
	case constants.StateConfirmDelete:
		actions = []key.Binding{m.keys.Confirm, m.keys.Cancel}
	}

	return [][]key.Binding{global, actions}
}

func (m Model) Init() tea.Cmd {
	return m.prayersModel.Init()
}
