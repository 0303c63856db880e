package system

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/julianstephens/ihsan/internal/cli"
	"github.com/julianstephens/ihsan/internal/storage"
)

type DebugCmd struct {
	DBPath       *DebugDBPathCmd       `cmd:"" help:"Show database path."`
	DumpSnapshot *DebugDumpSnapshotCmd `cmd:"" help:"Dump a user's stored snapshot as JSON."`
	DumpSettings *DebugDumpSettingsCmd `cmd:"" help:"Dump settings data as JSON."`
	ListUsers    *DebugListUsersCmd    `cmd:"" help:"List users with stored profiles."`
}

func printJSON(v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(map[string]string{
		"path": ctx.Store.GetConfigPath(),
	})
}

type DebugDumpSnapshotCmd struct {
	User string `arg:"" optional:"" help:"User id (defaults to the current user)."`
}

func (cmd *DebugDumpSnapshotCmd) Run(ctx *cli.Context) error {
	user := cmd.User
	if user == "" {
		user = ctx.ResolveUser()
	}
	snap, err := ctx.Store.LoadSnapshot(context.Background(), user)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no profile found for user: %s", user)
		}
		return fmt.Errorf("failed to load profile: %w", err)
	}
	return printJSON(snap)
}

type DebugDumpSettingsCmd struct{}

func (cmd *DebugDumpSettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	return printJSON(settings)
}

type DebugListUsersCmd struct{}

func (cmd *DebugListUsersCmd) Run(ctx *cli.Context) error {
	users, err := ctx.Store.ListUsers(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	return printJSON(users)
}
