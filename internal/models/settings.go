package models

// Settings represents application-wide settings
type Settings struct {
	Timezone             string  `json:"timezone"`              // IANA timezone name (e.g. "Asia/Karachi", or "Local" for system timezone)
	Latitude             float64 `json:"latitude"`              // used for prayer times and Qibla; 0,0 means unset
	Longitude            float64 `json:"longitude"`             // used for prayer times and Qibla
	CalculationMethod    int     `json:"calculation_method"`    // AlAdhan calculation method id
	NotificationsEnabled bool    `json:"notifications_enabled"` // whether level-up notifications are sent
	SaveDebounceMs       int     `json:"save_debounce_ms"`      // quiet period before a pending save is written
	UserID               string  `json:"user_id"`               // default identity for local sessions
}

// HasLocation reports whether a location has been configured.
func (s Settings) HasLocation() bool {
	return s.Latitude != 0 || s.Longitude != 0
}
