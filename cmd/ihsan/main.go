package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/ihsan/internal/cli"
	"github.com/julianstephens/ihsan/internal/cli/backups"
	"github.com/julianstephens/ihsan/internal/cli/challenge"
	"github.com/julianstephens/ihsan/internal/cli/habits"
	"github.com/julianstephens/ihsan/internal/cli/prayers"
	"github.com/julianstephens/ihsan/internal/cli/reports"
	"github.com/julianstephens/ihsan/internal/cli/settings"
	"github.com/julianstephens/ihsan/internal/cli/system"
	"github.com/julianstephens/ihsan/internal/constants"
	errs "github.com/julianstephens/ihsan/internal/errors"
	"github.com/julianstephens/ihsan/internal/logger"
	"github.com/julianstephens/ihsan/internal/notifier"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"SQLite path, *.json file, firestore://<project>, or PostgreSQL connection string. PostgreSQL credentials must NOT be embedded; use the OS keyring, IHSAN_DB_CONNECTION or .pgpass." type:"string" default:"~/.config/ihsan/ihsan.db"`
	User    string `help:"User id to act for (defaults to the user_id setting)." env:"IHSAN_USER"`
	Debug   bool   `help:"Log debug output to stderr."`

	Init      system.InitCmd         `cmd:"" help:"Initialize ihsan storage."`
	Migrate   system.MigrateCmd      `cmd:"" help:"Run database migrations."`
	Doctor    system.DoctorCmd       `cmd:"" help:"Run health checks and diagnostics."`
	Tui       system.TuiCmd          `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Status    reports.StatusCmd      `cmd:"" help:"Show level, XP and today's completion."`
	Stats     reports.StatsCmd       `cmd:"" help:"Show completion history and streaks."`
	Times     prayers.TimesCmd       `cmd:"" help:"Show today's prayer times."`
	Qibla     prayers.QiblaCmd       `cmd:"" help:"Show the Qibla direction."`
	Habit     habits.HabitCmd        `cmd:"" help:"Manage habits and habit tracking."`
	Prayer    prayers.PrayerCmd      `cmd:"" help:"Log prayers."`
	Challenge challenge.ChallengeCmd `cmd:"" help:"Manage challenges."`
	Backup    struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Keyring  struct {
		Set       system.KeyringSetCmd          `cmd:"" help:"Store a PostgreSQL connection string."`
		Get       system.KeyringGetCmd          `cmd:"" help:"Show the stored connection string (masked)."`
		Delete    system.KeyringDeleteCmd       `cmd:"" help:"Remove the stored connection string."`
		SetSecret system.KeyringSetJWTSecretCmd `cmd:"" name:"set-secret" help:"Store the API token signing secret."`
		Status    system.KeyringStatusCmd       `cmd:"" help:"Check keyring availability."`
	} `cmd:"" help:"Manage credentials in the OS keyring."`
	Serve    system.ServeCmd  `cmd:"" help:"Run the HTTP API."`
	DebugCmd system.DebugCmd  `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
	Notify   system.NotifyCmd `cmd:"" hidden:"" help:"Send prayer reminders (run from cron)."`
}

// skipsLoad lists commands that must run before, or without, an existing store.
func skipsLoad(command string) bool {
	return strings.HasPrefix(command, "init") || strings.HasPrefix(command, "keyring")
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("ihsan"),
		kong.Description("Spiritual habit tracker: habits, prayers and challenges with XP and levels"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": "v0.1.0"},
	)

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: filepath.Join(configDir, constants.AppName),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}

	store, err := cli.OpenStore(CLI.Config)
	if err != nil {
		if errors.Is(err, cli.ErrEmbeddedCredentials) {
			fmt.Fprintf(os.Stderr, "❌ %s\n%s\n", errs.Format(err), cli.EmbeddedCredentialsHelp)
			os.Exit(1)
		}
		errs.Fatal(err)
	}

	appCtx := &cli.Context{
		Store:    store,
		UserID:   CLI.User,
		Notifier: notifier.New(),
	}

	if !skipsLoad(ctx.Command()) {
		if err := store.Load(); err != nil {
			errs.Fatal(err)
		}
	}

	runErr := ctx.Run(appCtx)
	closeErr := appCtx.Close(context.Background())
	_ = store.Close()

	errs.Fatal(errors.Join(runErr, closeErr))
}
