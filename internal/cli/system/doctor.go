package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/ihsan/internal/backup"
	"github.com/julianstephens/ihsan/internal/cli"
	"github.com/julianstephens/ihsan/internal/storage"
	"github.com/julianstephens/ihsan/internal/storage/sqlite"
	"github.com/julianstephens/ihsan/internal/utils"
	"github.com/julianstephens/ihsan/internal/validation"
)

type DoctorCmd struct {
	Fix bool `help:"Repair the snapshot problems that can be fixed automatically."`
}

type check struct {
	name     string
	needsDB  bool
	warnOnly bool
	run      func(ctx *cli.Context) error
}

func (cmd *DoctorCmd) checks() []check {
	return []check{
		{name: "Database reachable", run: checkDBReachable},
		{name: "Schema version", needsDB: true, run: checkSchemaVersion},
		{name: "Migrations complete", needsDB: true, run: checkMigrationsComplete},
		{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
		{name: "Settings", needsDB: true, run: checkSettings},
		{name: "Snapshot validation", needsDB: true, run: func(ctx *cli.Context) error {
			return checkSnapshots(ctx, cmd.Fix)
		}},
		{name: "Clock/timezone", run: checkClockTimezone},
	}
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := false

	for i, c := range cmd.checks() {
		if c.needsDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
			if i == 0 {
				dbReachable = true
			}
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	if sqliteStore, ok := ctx.Store.(*sqlite.Store); ok {
		db := sqliteStore.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		var result int
		if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}

	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		// JSON and document stores have no schema version
		return nil
	}
	status, err := m.MigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}
	if status.Current > status.Latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", status.Current, status.Latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return nil
	}
	status, err := m.MigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}
	if !status.UpToDate() {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'ihsan migrate')", status.Current, status.Latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return nil
	}
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'ihsan backup create'")
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if settings.Timezone != "" && !utils.ValidateTimezone(settings.Timezone) {
		return fmt.Errorf("invalid timezone setting: %q", settings.Timezone)
	}
	if settings.Latitude < -90 || settings.Latitude > 90 || settings.Longitude < -180 || settings.Longitude > 180 {
		return fmt.Errorf("location out of range: %.4f, %.4f", settings.Latitude, settings.Longitude)
	}
	return nil
}

// checkSnapshots validates every stored user snapshot and optionally repairs it.
func checkSnapshots(ctx *cli.Context, fix bool) error {
	bg := context.Background()
	users, err := ctx.Store.ListUsers(bg)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	v := validation.New()
	failing := 0
	for _, user := range users {
		snap, err := ctx.Store.LoadSnapshot(bg, user)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to load profile %s: %w", user, err)
		}
		result := v.ValidateSnapshot(snap)
		if !result.HasConflicts() {
			continue
		}
		if !fix {
			fmt.Printf("   [%s] %s", user, result.FormatReport())
			failing++
			continue
		}
		for _, action := range validation.AutoFix(&snap, result.Conflicts) {
			fmt.Printf("   [%s] fixed: %s\n", user, action.Action)
		}
		if err := ctx.Store.SaveSnapshot(bg, user, snap); err != nil {
			return fmt.Errorf("failed to save repaired profile %s: %w", user, err)
		}
	}
	if failing > 0 {
		return fmt.Errorf("%d profile(s) have conflicts (run 'ihsan doctor --fix')", failing)
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	settings, err := ctx.Settings()
	if err != nil {
		return nil
	}
	if _, err := utils.LoadLocation(settings.Timezone); err != nil {
		return fmt.Errorf("cannot load timezone %q: %w", settings.Timezone, err)
	}
	return nil
}
