package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/ihsan/internal/cli"
	"github.com/julianstephens/ihsan/internal/constants"
	"github.com/julianstephens/ihsan/internal/models"
	"github.com/julianstephens/ihsan/internal/session"
	"github.com/julianstephens/ihsan/internal/tui/components/board"
	"github.com/julianstephens/ihsan/internal/tui/components/habits"
	"github.com/julianstephens/ihsan/internal/tui/components/prayers"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.setSize(size.Width, size.Height)
	}

	// The prayer clock keeps ticking whatever is on screen.
	if tick, ok := msg.(prayers.TickMsg); ok {
		var cmd tea.Cmd
		m.prayersModel, cmd = m.prayersModel.Update(tick)
		return m, cmd
	}

	switch m.state {
	case constants.StateAddHabit, constants.StateAddChallenge:
		return m.updateForm(msg)
	case constants.StateConfirmDelete:
		return m.updateConfirm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = constants.SessionState((int(m.state) + 1) % tabCount)
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = constants.SessionState((int(m.state) + tabCount - 1) % tabCount)
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

	case habits.AddHabitMsg:
		m.habitForm = &HabitFormModel{Category: models.HabitCategoryGeneral, XP: "10"}
		return m.openForm(constants.StateAddHabit, newHabitForm(m.habitForm))
	case habits.ToggleHabitMsg:
		res, err := m.sess.ToggleHabit(m.sess.Today(), msg.ID)
		m.report(res, err)
		return m, nil
	case habits.DeleteHabitMsg:
		label := msg.ID
		if snap, err := m.sess.Snapshot(); err == nil {
			if h, ok := snap.FindHabit(msg.ID); ok {
				label = h.Title
			}
		}
		m.toDelete = pendingDelete{habitID: msg.ID, label: label}
		m.previousState = m.state
		m.state = constants.StateConfirmDelete
		return m, nil

	case prayers.SetPrayerMsg:
		res, err := m.sess.SetPrayerStatus(m.sess.Today(), msg.Name, msg.Status)
		m.report(res, err)
		return m, nil

	case board.AddChallengeMsg:
		m.challengeForm = &ChallengeFormModel{
			XP:         "50",
			Icon:       "⭐",
			Category:   models.ChallengeCategorySelf,
			Difficulty: models.DifficultyMedium,
		}
		return m.openForm(constants.StateAddChallenge, newChallengeForm(m.challengeForm))
	case board.StartChallengeMsg:
		m.done(m.sess.StartChallenge(msg.ID), "Challenge started")
		return m, nil
	case board.CompleteChallengeMsg:
		res, err := m.sess.CompleteChallenge(msg.ID)
		m.report(res, err)
		return m, nil
	case board.ResetChallengeMsg:
		m.done(m.sess.ResetChallenge(msg.ID), "Challenge reset")
		return m, nil
	case board.DeleteChallengeMsg:
		label := msg.ID
		if entries, err := m.sess.ChallengeBoard(); err == nil {
			for _, e := range entries {
				if e.Challenge.ID == msg.ID {
					label = e.Challenge.Title
				}
			}
		}
		m.toDelete = pendingDelete{challengeID: msg.ID, label: label}
		m.previousState = m.state
		m.state = constants.StateConfirmDelete
		return m, nil
	}

	var cmd tea.Cmd
	switch m.state {
	case constants.StateToday:
		m.habitsModel, cmd = m.habitsModel.Update(msg)
	case constants.StatePrayers:
		m.prayersModel, cmd = m.prayersModel.Update(msg)
	case constants.StateChallenges:
		m.boardModel, cmd = m.boardModel.Update(msg)
	}
	return m, cmd
}

func (m Model) openForm(state constants.SessionState, form *huh.Form) (tea.Model, tea.Cmd) {
	m.previousState = m.state
	m.state = state
	m.form = form
	return m, m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.closeForm()
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if m.state == constants.StateAddHabit {
			m.submitHabit()
		} else {
			m.submitChallenge()
		}
		m.closeForm()
		return m, nil
	case huh.StateAborted:
		m.closeForm()
		return m, nil
	}
	return m, cmd
}

func (m *Model) closeForm() {
	m.state = m.previousState
	m.form = nil
	m.habitForm = nil
	m.challengeForm = nil
}

func (m *Model) submitHabit() {
	d, err := m.habitForm.draft()
	if err == nil {
		var h models.Habit
		h, err = m.sess.AddHabit(d)
		if err == nil {
			m.done(nil, "Added habit: "+h.Title)
			return
		}
	}
	m.done(err, "")
}

func (m *Model) submitChallenge() {
	d, err := m.challengeForm.draft()
	if err == nil {
		var c models.Challenge
		c, err = m.sess.CreateCustomChallenge(d)
		if err == nil {
			m.done(nil, "Created challenge: "+c.Title)
			return
		}
	}
	m.done(err, "")
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		if m.toDelete.habitID != "" {
			m.done(m.sess.DeleteHabit(m.toDelete.habitID), "Deleted habit: "+m.toDelete.label)
		} else {
			m.done(m.sess.DeleteCustomChallenge(m.toDelete.challengeID), "Deleted challenge: "+m.toDelete.label)
		}
	case key.Matches(keyMsg, m.keys.Cancel):
	default:
		return m, nil
	}
	m.toDelete = pendingDelete{}
	m.state = m.previousState
	return m, nil
}

// report records the outcome of an XP-bearing mutation and reloads the panels.
func (m *Model) report(res session.Result, err error) {
	if err != nil {
		m.done(err, "")
		return
	}
	m.done(nil, cli.FormatResult(res))
	m.leveledUp = res.LeveledUp
}

// done records the outcome of a mutation and reloads the panels.
func (m *Model) done(err error, status string) {
	m.leveledUp = false
	if err != nil {
		m.errMsg = err.Error()
		m.status = ""
		return
	}
	m.errMsg = ""
	m.status = status
	m.refresh()
}
