package challenges

import (
	"slices"

	"github.com/julianstephens/ihsan/internal/models"
)

// catalog is the built-in challenge list. IDs are persisted in user profiles,
// so they must never change.
var catalog = []models.Challenge{
	{
		ID:          "fajr-streak-7",
		Title:       "Fajr Warrior",
		Description: "Pray Fajr on time for seven consecutive days.",
		XP:          150,
		Icon:        "🌅",
		Category:    models.ChallengeCategoryFaith,
		Difficulty:  models.DifficultyMedium,
		Duration:    "7 days",
	},
	{
		ID:          "quran-juz",
		Title:       "One Juz",
		Description: "Read one full juz of the Quran.",
		XP:          100,
		Icon:        "📖",
		Category:    models.ChallengeCategoryFaith,
		Difficulty:  models.DifficultyMedium,
		Duration:    "1 week",
	},
	{
		ID:          "adhkar-morning-evening",
		Title:       "Guarded Day",
		Description: "Complete the morning and evening adhkar for three days.",
		XP:          60,
		Icon:        "🤲",
		Category:    models.ChallengeCategoryFaith,
		Difficulty:  models.DifficultyEasy,
		Duration:    "3 days",
	},
	{
		ID:          "charity-secret",
		Title:       "Hidden Charity",
		Description: "Give sadaqah without telling anyone.",
		XP:          50,
		Icon:        "💝",
		Category:    models.ChallengeCategoryCommunity,
		Difficulty:  models.DifficultyEasy,
	},
	{
		ID:          "visit-family",
		Title:       "Ties of Kinship",
		Description: "Visit or call a relative you have not spoken to in a while.",
		XP:          75,
		Icon:        "👨‍👩‍👧",
		Category:    models.ChallengeCategoryCommunity,
		Difficulty:  models.DifficultyEasy,
	},
	{
		ID:          "feed-fasting",
		Title:       "Iftar Host",
		Description: "Provide iftar for someone who is fasting.",
		XP:          120,
		Icon:        "🍲",
		Category:    models.ChallengeCategoryCommunity,
		Difficulty:  models.DifficultyMedium,
	},
	{
		ID:          "fast-monday-thursday",
		Title:       "Sunnah Fasts",
		Description: "Fast on Monday and Thursday of the same week.",
		XP:          200,
		Icon:        "🌙",
		Category:    models.ChallengeCategorySelf,
		Difficulty:  models.DifficultyHard,
		Duration:    "1 week",
	},
	{
		ID:          "no-social-media",
		Title:       "Digital Fast",
		Description: "Stay off social media for three days.",
		XP:          90,
		Icon:        "📵",
		Category:    models.ChallengeCategorySelf,
		Difficulty:  models.DifficultyMedium,
		Duration:    "3 days",
	},
	{
		ID:          "tahajjud-week",
		Title:       "Night Vigil",
		Description: "Pray tahajjud every night for a week.",
		XP:          300,
		Icon:        "✨",
		Category:    models.ChallengeCategoryFaith,
		Difficulty:  models.DifficultyHard,
		Duration:    "7 days",
	},
}

// Catalog returns a copy of the built-in challenges.
func Catalog() []models.Challenge {
	return slices.Clone(catalog)
}

func isBuiltIn(id string) bool {
	return slices.ContainsFunc(catalog, func(c models.Challenge) bool { return c.ID == id })
}
