package models

import "time"

// UserProfile holds the aggregate gamification state of one user.
// Level is always derived from XP; see progress.ApplyXPDelta.
type UserProfile struct {
	XP                  int                  `json:"xp" firestore:"xp"`
	Level               int                  `json:"level" firestore:"level"`
	ActiveChallenges    map[string]time.Time `json:"active_challenges" firestore:"activeChallenges"`
	CompletedChallenges map[string]time.Time `json:"completed_challenges" firestore:"completedChallenges"`
	CustomChallenges    []Challenge          `json:"custom_challenges" firestore:"customChallenges"`
}

// NewProfile returns an empty level-1 profile.
func NewProfile() UserProfile {
	return UserProfile{
		Level:               1,
		ActiveChallenges:    make(map[string]time.Time),
		CompletedChallenges: make(map[string]time.Time),
		CustomChallenges:    []Challenge{},
	}
}

// EnsureMaps initializes any nil maps, e.g. after decoding a partial document.
func (p *UserProfile) EnsureMaps() {
	if p.ActiveChallenges == nil {
		p.ActiveChallenges = make(map[string]time.Time)
	}
	if p.CompletedChallenges == nil {
		p.CompletedChallenges = make(map[string]time.Time)
	}
	if p.CustomChallenges == nil {
		p.CustomChallenges = []Challenge{}
	}
}
