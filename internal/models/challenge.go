package models

// ChallengeCategory classifies a challenge
type ChallengeCategory string

const (
	ChallengeCategoryFaith     ChallengeCategory = "faith"
	ChallengeCategoryCommunity ChallengeCategory = "community"
	ChallengeCategorySelf      ChallengeCategory = "self"
)

// ChallengeDifficulty is a rough effort indicator
type ChallengeDifficulty string

const (
	DifficultyEasy   ChallengeDifficulty = "easy"
	DifficultyMedium ChallengeDifficulty = "medium"
	DifficultyHard   ChallengeDifficulty = "hard"
)

// ChallengeCategories lists the known categories in display order.
var ChallengeCategories = []ChallengeCategory{
	ChallengeCategoryFaith,
	ChallengeCategoryCommunity,
	ChallengeCategorySelf,
}

// ChallengeDifficulties lists the known difficulties from easiest to hardest.
var ChallengeDifficulties = []ChallengeDifficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Challenge is a discrete goal with a fixed XP reward
type Challenge struct {
	ID          string              `json:"id" firestore:"id"`
	Title       string              `json:"title" firestore:"title"`
	Description string              `json:"description" firestore:"description"`
	XP          int                 `json:"xp" firestore:"xp"`
	Icon        string              `json:"icon" firestore:"icon"`
	Category    ChallengeCategory   `json:"category" firestore:"category"`
	Difficulty  ChallengeDifficulty `json:"difficulty" firestore:"difficulty"`
	Duration    string              `json:"duration,omitempty" firestore:"duration,omitempty"`
	IsCustom    bool                `json:"is_custom,omitempty" firestore:"isCustom,omitempty"`
}

// ChallengeState is where a challenge sits in its lifecycle for one user
type ChallengeState string

const (
	ChallengeAvailable ChallengeState = "available"
	ChallengeActive    ChallengeState = "active"
	ChallengeCompleted ChallengeState = "completed"
)
