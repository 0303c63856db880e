package constants

const (
	// General Settings
	SettingTimezone             = "timezone"
	SettingLatitude             = "latitude"
	SettingLongitude            = "longitude"
	SettingCalculationMethod    = "calculation_method"
	SettingNotificationsEnabled = "notifications_enabled"
	SettingSaveDebounceMs       = "save_debounce_ms"
	SettingUserID               = "user_id"

	// Default Settings Values
	DefaultTimezone             = "Local" // Use system local timezone by default
	DefaultCalculationMethod    = 2       // ISNA
	DefaultNotificationsEnabled = true
	DefaultSaveDebounceMs       = 1500
)
