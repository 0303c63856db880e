package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/ihsan/internal/constants"
	"github.com/julianstephens/ihsan/internal/qibla"
)

var tabTitles = []string{"Today", "Prayers", "Challenges", "Profile"}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string

	switch m.state {
	case constants.StateToday:
		content = docStyle.Render(m.habitsModel.View())
	case constants.StatePrayers:
		content = m.prayersModel.View()
	case constants.StateChallenges:
		content = docStyle.Render(m.boardModel.View())
	case constants.StateProfile:
		content = docStyle.Render(m.viewProfile())
	case constants.StateAddHabit, constants.StateAddChallenge:
		content = docStyle.Render(m.form.View())
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		m.viewStatus(),
		content,
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	active := m.state
	if int(active) >= tabCount {
		active = m.previousState
	}
	var tabs []string
	for i, title := range tabTitles {
		if active == constants.SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStatus() string {
	switch {
	case m.errMsg != "":
		return dangerStyle.Render("✗ " + m.errMsg)
	case m.leveledUp:
		return levelUpStyle.Render("★ " + m.status)
	case m.status != "":
		return successStyle.Render(m.status)
	}
	return ""
}

func (m Model) viewProfile() string {
	view, err := m.sess.Progress()
	if err != nil {
		return dangerStyle.Render(err.Error())
	}
	today := m.sess.Today()
	summary, _ := m.sess.Summary(today)

	lines := []string{
		headingStyle.Render(fmt.Sprintf("Level %d", view.Level)),
		fmt.Sprintf("%d XP", view.XP),
		m.bar.ViewAs(float64(view.Percent) / 100),
		mutedStyle.Render(fmt.Sprintf("%d XP to level %d", view.NextThreshold-view.XP, view.Level+1)),
		"",
		headingStyle.Render("Today"),
		fmt.Sprintf("Completion: %d%%", summary.Rate),
		fmt.Sprintf("Habits: %d/%d  Prayers: %d/%d",
			summary.DoneHabits, summary.DueHabits, summary.PrayersDone, constants.PrayerCount),
		"",
		headingStyle.Render("Qibla"),
		m.viewQibla(),
	}
	if user := m.sess.UserID(); user != "" {
		lines = append(lines, "", mutedStyle.Render("Signed in as "+user))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) viewQibla() string {
	if !m.settings.HasLocation() {
		return warningStyle.Render("Set a location with 'ihsan settings' to see the Qibla direction.")
	}
	bearing, err := qibla.Bearing(m.settings.Latitude, m.settings.Longitude)
	if err != nil {
		return dangerStyle.Render(err.Error())
	}
	return qibla.Describe(bearing)
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete %q?", m.toDelete.label)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
