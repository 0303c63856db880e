package constants

import "time"

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName            = "ihsan"
	DefaultKeyringUser = "database-connection"
	JWTSecretKeyring   = "jwt-secret"
	DefaultConfigPath  = "~/.config/ihsan/ihsan.db"
	DefaultUserID      = "local"
	Version            = "v0.3.0"

	// DateFormat is the date-key format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "ihsan-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "ihsan-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.ihsan"
	TrayAppExecutable      = "ihsan-tray"

	// Persistence
	DefaultSaveDebounce = 1500 * time.Millisecond

	// XP and levels
	XPPerLevelUnit = 100

	// Prayer XP weights (absolute contribution of the current status)
	PrayerWeightNone   = 0
	PrayerWeightOnTime = 20
	PrayerWeightLate   = 10
	PrayerWeightMissed = -20

	// PrayerCount is the number of daily prayers; they always count toward the completion rate.
	PrayerCount = 5

	// Custom challenge XP bounds
	MinCustomChallengeXP = 10
	MaxCustomChallengeXP = 500

	// PlaceholderPrayerTime is shown when prayer times are unavailable
	PlaceholderPrayerTime = "--:--"

	// Kaaba coordinates used for the Qibla bearing
	KaabaLatitude  = 21.4225
	KaabaLongitude = 39.8262
)

// Session States
const (
	StateToday SessionState = iota
	StatePrayers
	StateChallenges
	StateProfile
	StateAddHabit
	StateAddChallenge
	StateConfirmDelete
)

// PrayerNames is the fixed, ordered set of daily prayers.
var PrayerNames = [PrayerCount]string{"Fajr", "Dhuhr", "Asr", "Maghrib", "Isha"}
