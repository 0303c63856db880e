package models

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/ihsan/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingLatitude:
			lat, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing latitude: %w", err)
			}
			settings.Latitude = lat
		case constants.SettingLongitude:
			lon, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing longitude: %w", err)
			}
			settings.Longitude = lon
		case constants.SettingCalculationMethod:
			if _, err := fmt.Sscanf(value, "%d", &settings.CalculationMethod); err != nil {
				return Settings{}, fmt.Errorf("parsing calculation_method: %w", err)
			}
		case constants.SettingNotificationsEnabled:
			settings.NotificationsEnabled = value == "true"
		case constants.SettingSaveDebounceMs:
			if _, err := fmt.Sscanf(value, "%d", &settings.SaveDebounceMs); err != nil {
				return Settings{}, fmt.Errorf("parsing save_debounce_ms: %w", err)
			}
		case constants.SettingUserID:
			settings.UserID = value
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingTimezone:             settings.Timezone,
		constants.SettingLatitude:             strconv.FormatFloat(settings.Latitude, 'f', -1, 64),
		constants.SettingLongitude:            strconv.FormatFloat(settings.Longitude, 'f', -1, 64),
		constants.SettingCalculationMethod:    fmt.Sprintf("%d", settings.CalculationMethod),
		constants.SettingNotificationsEnabled: fmt.Sprintf("%v", settings.NotificationsEnabled),
		constants.SettingSaveDebounceMs:       fmt.Sprintf("%d", settings.SaveDebounceMs),
		constants.SettingUserID:               settings.UserID,
	}
}

// DefaultSettings returns the settings written by a fresh init.
func DefaultSettings() Settings {
	return Settings{
		Timezone:             constants.DefaultTimezone,
		CalculationMethod:    constants.DefaultCalculationMethod,
		NotificationsEnabled: constants.DefaultNotificationsEnabled,
		SaveDebounceMs:       constants.DefaultSaveDebounceMs,
		UserID:               constants.DefaultUserID,
	}
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
	if settings.CalculationMethod == 0 {
		settings.CalculationMethod = constants.DefaultCalculationMethod
	}
	if settings.SaveDebounceMs == 0 {
		settings.SaveDebounceMs = constants.DefaultSaveDebounceMs
	}
	if settings.UserID == "" {
		settings.UserID = constants.DefaultUserID
	}
}
