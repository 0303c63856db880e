package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/ihsan/internal/challenges"
	"github.com/julianstephens/ihsan/internal/constants"
	"github.com/julianstephens/ihsan/internal/models"
	"github.com/julianstephens/ihsan/internal/utils"
	"github.com/julianstephens/ihsan/internal/validation"
)

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("required")
	}
	return nil
}

func intBetween(lo, hi int) func(string) error {
	return func(s string) error {
		i, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("must be a number")
		}
		if i < lo || i > hi {
			return fmt.Errorf("must be between %d and %d", lo, hi)
		}
		return nil
	}
}

func newHabitForm(fm *HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&fm.Title).
				Validate(required),
			huh.NewSelect[models.HabitCategory]().
				Title("Category").
				Options(huh.NewOptions(models.HabitCategories...)...).
				Value(&fm.Category),
			huh.NewInput().
				Title("Days").
				Description("e.g. mon,wed,fri (empty for every day)").
				Value(&fm.Days).
				Validate(func(s string) error {
					_, err := utils.ParseWeekdays(s)
					return err
				}),
			huh.NewInput().
				Title("XP").
				Value(&fm.XP).
				Validate(intBetween(1, validation.MaxHabitXP)),
		),
	).WithShowHelp(true)
}

func (fm HabitFormModel) draft() (validation.HabitDraft, error) {
	days, err := utils.ParseWeekdays(fm.Days)
	if err != nil {
		return validation.HabitDraft{}, err
	}
	xp, err := strconv.Atoi(strings.TrimSpace(fm.XP))
	if err != nil {
		return validation.HabitDraft{}, fmt.Errorf("invalid xp: %w", err)
	}
	return validation.HabitDraft{
		Title:     fm.Title,
		Category:  fm.Category,
		Frequency: days,
		XP:        xp,
	}, nil
}

func newChallengeForm(fm *ChallengeFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&fm.Title).
				Validate(required),
			huh.NewText().
				Title("Description").
				Value(&fm.Description),
			huh.NewInput().
				Title(fmt.Sprintf("XP (%d-%d)", constants.MinCustomChallengeXP, constants.MaxCustomChallengeXP)).
				Value(&fm.XP).
				Validate(intBetween(constants.MinCustomChallengeXP, constants.MaxCustomChallengeXP)),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Icon").
				Value(&fm.Icon),
			huh.NewSelect[models.ChallengeCategory]().
				Title("Category").
				Options(huh.NewOptions(models.ChallengeCategories...)...).
				Value(&fm.Category),
			huh.NewSelect[models.ChallengeDifficulty]().
				Title("Difficulty").
				Options(huh.NewOptions(models.ChallengeDifficulties...)...).
				Value(&fm.Difficulty),
			huh.NewInput().
				Title("Duration").
				Description("Optional, e.g. 7 days").
				Value(&fm.Duration),
		),
	).WithShowHelp(true)
}

func (fm ChallengeFormModel) draft() (challenges.Draft, error) {
	xp, err := strconv.Atoi(strings.TrimSpace(fm.XP))
	if err != nil {
		return challenges.Draft{}, fmt.Errorf("invalid xp: %w", err)
	}
	return challenges.Draft{
		Title:       fm.Title,
		Description: fm.Description,
		XP:          xp,
		Icon:        fm.Icon,
		Category:    fm.Category,
		Difficulty:  fm.Difficulty,
		Duration:    fm.Duration,
	}, nil
}
