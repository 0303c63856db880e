package settings

import (
	"errors"
	"fmt"

	"github.com/julianstephens/ihsan/internal/cli"
	"github.com/julianstephens/ihsan/internal/utils"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Timezone             *string  `help:"IANA timezone that decides the current day (e.g. Asia/Karachi, or Local)."`
	Latitude             *float64 `help:"Latitude for prayer times and Qibla."`
	Longitude            *float64 `help:"Longitude for prayer times and Qibla."`
	CalculationMethod    *int     `help:"AlAdhan prayer time calculation method id."`
	NotificationsEnabled *bool    `help:"Enable or disable level-up and challenge notifications."`
	SaveDebounceMs       *int     `help:"Quiet period in milliseconds before changes are saved."`
	DefaultUser          *string  `help:"User id used when --user is not given."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		fmt.Println("Current Settings:")
		fmt.Printf("  Timezone:              %s\n", settings.Timezone)
		fmt.Printf("  Default User:          %s\n", settings.UserID)
		fmt.Printf("  Save Debounce:         %d ms\n", settings.SaveDebounceMs)
		fmt.Println("\nPrayer Settings:")
		if settings.HasLocation() {
			fmt.Printf("  Location:              %.4f, %.4f\n", settings.Latitude, settings.Longitude)
		} else {
			fmt.Println("  Location:              not set")
		}
		fmt.Printf("  Calculation Method:    %d\n", settings.CalculationMethod)
		fmt.Println("\nNotification Settings:")
		fmt.Printf("  Notifications Enabled: %v\n", settings.NotificationsEnabled)
		return nil
	}

	updated := false
	if c.Timezone != nil {
		if !utils.ValidateTimezone(*c.Timezone) {
			return fmt.Errorf("invalid timezone: %s", *c.Timezone)
		}
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.Latitude != nil {
		if *c.Latitude < -90 || *c.Latitude > 90 {
			return fmt.Errorf("latitude must be between -90 and 90, got %g", *c.Latitude)
		}
		settings.Latitude = *c.Latitude
		updated = true
	}
	if c.Longitude != nil {
		if *c.Longitude < -180 || *c.Longitude > 180 {
			return fmt.Errorf("longitude must be between -180 and 180, got %g", *c.Longitude)
		}
		settings.Longitude = *c.Longitude
		updated = true
	}
	if c.CalculationMethod != nil {
		if *c.CalculationMethod < 0 {
			return errors.New("calculation method must not be negative")
		}
		settings.CalculationMethod = *c.CalculationMethod
		updated = true
	}
	if c.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *c.NotificationsEnabled
		updated = true
	}
	if c.SaveDebounceMs != nil {
		if *c.SaveDebounceMs < 0 {
			return errors.New("save debounce must not be negative")
		}
		settings.SaveDebounceMs = *c.SaveDebounceMs
		updated = true
	}
	if c.DefaultUser != nil {
		if *c.DefaultUser == "" {
			return errors.New("default user must not be empty")
		}
		settings.UserID = *c.DefaultUser
		updated = true
	}

	if updated {
		if err := ctx.Store.SaveSettings(settings); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		ctx.InvalidateSettings()
		fmt.Println("Settings updated successfully.")
	} else {
		fmt.Println("No changes specified. Use --list to view settings or flags to update them.")
	}

	return nil
}
