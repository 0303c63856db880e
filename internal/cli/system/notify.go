package system

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/ihsan/internal/cli"
	"github.com/julianstephens/ihsan/internal/constants"
	"github.com/julianstephens/ihsan/internal/models"
	"github.com/julianstephens/ihsan/internal/notifier"
	"github.com/julianstephens/ihsan/internal/prayertimes"
)

// NotifyCmd reminds the user about prayers whose time has passed but that
// have not been logged today. Meant to be run from cron.
type NotifyCmd struct {
	DryRun bool `help:"Print notifications to stdout instead of sending them."`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}

	if !settings.NotificationsEnabled {
		if c.DryRun {
			fmt.Println("Notifications are disabled in settings.")
		}
		return nil
	}
	if !settings.HasLocation() {
		if c.DryRun {
			fmt.Println("No location configured; prayer times are unknown.")
		}
		return nil
	}

	bg := context.Background()
	sess, err := ctx.Session(bg)
	if err != nil {
		return err
	}
	defer ctx.Close(bg)

	now := time.Now().In(ctx.Location())
	times := prayertimes.ForSettings(bg, prayertimes.New(prayertimes.WithMethod(settings.CalculationMethod)), settings, now)
	statuses, err := sess.PrayerStatuses(sess.Today())
	if err != nil {
		return err
	}

	var n notifier.Sender = ctx.Notifier
	if n == nil {
		n = notifier.New()
	}
	for _, msg := range pendingReminders(times, statuses, now.Format("15:04")) {
		if c.DryRun {
			fmt.Println("[DryRun] " + msg)
			continue
		}
		if err := n.Notify(msg); err != nil {
			fmt.Printf("Failed to send notification: %v\n", err)
		}
	}
	return nil
}

// pendingReminders lists a message for every prayer whose time is at or
// before clock (HH:MM) and that has no status yet. Placeholder times never match.
func pendingReminders(times []models.PrayerTime, statuses map[string]models.PrayerStatus, clock string) []string {
	var msgs []string
	for _, pt := range times {
		if pt.Time == constants.PlaceholderPrayerTime || len(pt.Time) != len(clock) || pt.Time > clock {
			continue
		}
		if statuses[pt.Name] != models.PrayerNone {
			continue
		}
		msgs = append(msgs, fmt.Sprintf("Time for %s (%s) has passed. Log it in ihsan.", pt.Name, pt.Time))
	}
	return msgs
}
