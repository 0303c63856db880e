package prayers

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/ihsan/internal/cli"
	"github.com/julianstephens/ihsan/internal/models"
	"github.com/julianstephens/ihsan/internal/prayertimes"
	"github.com/julianstephens/ihsan/internal/qibla"
	"github.com/julianstephens/ihsan/internal/utils"
	"github.com/julianstephens/ihsan/internal/validation"
)

// newFetcher builds the prayer-times client; replaced in tests.
var newFetcher = func(method int) prayertimes.Fetcher {
	return prayertimes.New(prayertimes.WithMethod(method))
}

type PrayerCmd struct {
	Set   PrayerSetCmd   `cmd:"" help:"Set the status of a prayer (none|on_time|late|missed)."`
	Today PrayerTodayCmd `cmd:"" help:"Show prayer statuses and times for a day."`
}

type PrayerSetCmd struct {
	Prayer string `arg:"" help:"Prayer name (Fajr, Dhuhr, Asr, Maghrib, Isha)."`
	Status string `arg:"" help:"Status (none|on_time|late|missed)."`
	Date   string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
}

func (c *PrayerSetCmd) Run(ctx *cli.Context) error {
	status, err := validation.ParsePrayerStatus(c.Status)
	if err != nil {
		return err
	}
	day, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	sess, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}

	res, err := sess.SetPrayerStatus(day, c.Prayer, status)
	if err != nil {
		return err
	}
	name, _ := validation.PrayerName(c.Prayer)
	fmt.Printf("%s on %s: %s, %s\n", name, day, status.Label(), cli.FormatResult(res))
	return nil
}

type PrayerTodayCmd struct {
	Date string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
}

func (c *PrayerTodayCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	bg := context.Background()
	sess, err := ctx.Session(bg)
	if err != nil {
		return err
	}
	statuses, err := sess.PrayerStatuses(day)
	if err != nil {
		return err
	}
	times, err := timesFor(bg, ctx, day)
	if err != nil {
		return err
	}

	fmt.Printf("Prayers for %s:\n", day)
	for _, pt := range times {
		fmt.Printf("  %-8s %s  %s\n", pt.Name, pt.Time, statuses[pt.Name].Label())
	}
	return nil
}

// TimesCmd prints the prayer times for the configured location.
type TimesCmd struct {
	Date string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
}

func (c *TimesCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	if !settings.HasLocation() {
		fmt.Println("No location configured. Set one with 'ihsan settings --latitude <lat> --longitude <lon>'.")
	}
	times, err := timesFor(context.Background(), ctx, day)
	if err != nil {
		return err
	}

	fmt.Printf("Prayer times for %s:\n", day)
	for _, pt := range times {
		fmt.Printf("  %-8s %s\n", pt.Name, pt.Time)
	}
	return nil
}

func timesFor(ctx context.Context, c *cli.Context, day string) ([]models.PrayerTime, error) {
	settings, err := c.Settings()
	if err != nil {
		return nil, err
	}
	date, err := utils.ParseDateInLocation(day, c.Location())
	if err != nil {
		return nil, err
	}
	fetchCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return prayertimes.ForSettings(fetchCtx, newFetcher(settings.CalculationMethod), settings, date), nil
}

// QiblaCmd prints the direction of the Kaaba from the configured location.
type QiblaCmd struct {
	Latitude  *float64 `help:"Latitude (defaults to the configured location)."`
	Longitude *float64 `help:"Longitude (defaults to the configured location)."`
}

func (c *QiblaCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	lat, lon := settings.Latitude, settings.Longitude
	if c.Latitude != nil {
		lat = *c.Latitude
	}
	if c.Longitude != nil {
		lon = *c.Longitude
	}
	if lat == 0 && lon == 0 {
		return fmt.Errorf("no location configured; pass --latitude and --longitude or set them with 'ihsan settings'")
	}

	bearing, err := qibla.Bearing(lat, lon)
	if err != nil {
		return err
	}
	fmt.Printf("Qibla from %.4f, %.4f: %s\n", lat, lon, qibla.Describe(bearing))
	return nil
}
