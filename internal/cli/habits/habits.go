package habits

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/ihsan/internal/cli"
	"github.com/julianstephens/ihsan/internal/models"
	"github.com/julianstephens/ihsan/internal/utils"
	"github.com/julianstephens/ihsan/internal/validation"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	List   HabitListCmd   `cmd:"" help:"List habits."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit (its log and XP are kept)."`
	Toggle HabitToggleCmd `cmd:"" help:"Mark a habit done or undone for a day."`
	Today  HabitTodayCmd  `cmd:"" help:"Show the habits due today."`
}

type HabitAddCmd struct {
	Title    string `arg:"" help:"Habit title."`
	Category string `short:"c" help:"Category (deen|health|productivity|general)." default:"general"`
	Days     string `short:"d" help:"Comma-separated weekdays the habit is due on (default: every day)."`
	XP       int    `short:"x" help:"XP awarded per completion." default:"10"`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	days, err := utils.ParseWeekdays(c.Days)
	if err != nil {
		return err
	}
	sess, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}

	habit, err := sess.AddHabit(validation.HabitDraft{
		Title:     c.Title,
		Category:  models.HabitCategory(strings.ToLower(c.Category)),
		Frequency: days,
		XP:        c.XP,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Added habit: %s (ID: %s, %s, %d XP)\n", habit.Title, habit.ID, utils.FormatFrequency(habit.Frequency), habit.XP)
	return nil
}

type HabitListCmd struct {
	ShowIDs bool `help:"Show habit IDs." name:"show-ids"`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	snap, err := sess.Snapshot()
	if err != nil {
		return err
	}

	if len(snap.Habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	fmt.Println("Habits:")
	for _, h := range snap.Habits {
		idStr := ""
		if c.ShowIDs {
			idStr = fmt.Sprintf(" (ID: %s)", h.ID)
		}
		fmt.Printf("  [%s] %s%s - %d XP (%s)\n", h.Category, h.Title, idStr, h.XP, utils.FormatFrequency(h.Frequency))
	}
	return nil
}

type HabitDeleteCmd struct {
	ID string `arg:"" help:"Habit ID to delete."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	snap, err := sess.Snapshot()
	if err != nil {
		return err
	}
	habit, ok := snap.FindHabit(c.ID)
	if !ok {
		return fmt.Errorf("failed to find habit with ID %s", c.ID)
	}
	if err := sess.DeleteHabit(c.ID); err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}

	fmt.Printf("Deleted habit: %s (ID: %s)\n", habit.Title, c.ID)
	return nil
}

type HabitToggleCmd struct {
	ID   string `arg:"" help:"Habit ID."`
	Date string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
}

func (c *HabitToggleCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	sess, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}

	res, err := sess.ToggleHabit(day, c.ID)
	if err != nil {
		return err
	}

	state := "undone"
	if res.Done {
		state = "done"
	}
	fmt.Printf("Marked %s %s on %s: %s\n", c.ID, state, day, cli.FormatResult(res))
	return nil
}

type HabitTodayCmd struct {
	Date string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
}

func (c *HabitTodayCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	sess, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	due, err := sess.DueHabits(day)
	if err != nil {
		return err
	}

	fmt.Printf("Habits for %s:\n", day)
	if len(due) == 0 {
		fmt.Println("  No habits due.")
		return nil
	}
	for _, hs := range due {
		mark := "[ ]"
		if hs.Done {
			mark = "[x]"
		}
		fmt.Printf("  %s %s (ID: %s, %d XP)\n", mark, hs.Habit.Title, hs.Habit.ID, hs.Habit.XP)
	}
	return nil
}
