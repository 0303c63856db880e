package reports

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/ihsan/internal/cli"
	"github.com/julianstephens/ihsan/internal/models"
	"github.com/julianstephens/ihsan/internal/stats"
)

const barWidth = 20

var (
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	emptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#374151"))
)

// bar renders percent as a fixed-width text bar.
func bar(percent int) string {
	filled := min(max(percent*barWidth/100, 0), barWidth)
	return barStyle.Render(strings.Repeat("█", filled)) + emptyStyle.Render(strings.Repeat("░", barWidth-filled))
}

// StatusCmd prints the profile summary and today's completion.
type StatusCmd struct {
	Date string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
}

func (c *StatusCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	sess, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	p, err := sess.Progress()
	if err != nil {
		return err
	}
	summary, err := sess.Summary(day)
	if err != nil {
		return err
	}
	board, err := sess.ChallengeBoard()
	if err != nil {
		return err
	}
	active, completed := 0, 0
	for _, e := range board {
		switch e.State {
		case models.ChallengeActive:
			active++
		case models.ChallengeCompleted:
			completed++
		}
	}

	fmt.Printf("User: %s\n", sess.UserID())
	fmt.Printf("Level %d  %s %d%%\n", p.Level, bar(p.Percent), p.Percent)
	fmt.Printf("XP: %d / %d\n", p.XP, p.NextThreshold)
	fmt.Println()
	fmt.Printf("%s: %d%% complete\n", day, summary.Rate)
	fmt.Printf("  Habits:  %d / %d\n", summary.DoneHabits, summary.DueHabits)
	fmt.Printf("  Prayers: %d / 5 (%d on time, %d late, %d missed)\n",
		summary.PrayersDone, summary.PrayersOnTime, summary.PrayersLate, summary.PrayersMissed)
	fmt.Printf("Challenges: %d active, %d completed\n", active, completed)
	return nil
}

// StatsCmd prints completion history and streaks.
type StatsCmd struct {
	Days int    `short:"n" help:"Number of days to show." default:"7"`
	Date string `help:"Last day of the range in YYYY-MM-DD format (default: today)." default:""`
}

func (c *StatsCmd) Validate() error {
	if c.Days < 1 || c.Days > 366 {
		return fmt.Errorf("--days must be between 1 and 366")
	}
	return nil
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	if err := c.Validate(); err != nil {
		return err
	}
	end, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	sess, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	snap, err := sess.Snapshot()
	if err != nil {
		return err
	}

	series, err := stats.RateSeries(end, c.Days, snap.Habits, snap.HabitLog, snap.PrayerLog)
	if err != nil {
		return err
	}
	fmt.Printf("Completion over the last %d day(s):\n", c.Days)
	for _, pt := range series {
		fmt.Printf("  %s %s %3d%%\n", pt.Date, bar(pt.Rate), pt.Rate)
	}
	fmt.Printf("Average: %d%%\n", stats.AverageRate(series))

	prayerStreak, err := stats.PrayerStreak(snap.PrayerLog, end)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Printf("Prayer streak: %d day(s)\n", prayerStreak)
	for _, h := range snap.Habits {
		n, err := stats.HabitStreak(h, snap.HabitLog, end)
		if err != nil {
			return err
		}
		fmt.Printf("  %s: %d\n", h.Title, n)
	}
	return nil
}
