package system

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/ihsan/internal/cli"
	"github.com/julianstephens/ihsan/internal/prayertimes"
	"github.com/julianstephens/ihsan/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	// Automatic backup on TUI startup, after the store loaded
	ctx.PerformAutomaticBackup()

	bg := context.Background()
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	sess, err := ctx.Session(bg)
	if err != nil {
		return err
	}
	defer ctx.Close(bg)

	fetchCtx, cancel := context.WithTimeout(bg, 5*time.Second)
	times := prayertimes.ForSettings(fetchCtx, prayertimes.New(prayertimes.WithMethod(settings.CalculationMethod)), settings, time.Now().In(ctx.Location()))
	cancel()

	p := tea.NewProgram(tui.NewModel(sess, tui.Options{
		Settings: settings,
		Times:    times,
	}), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui exited with error: %w", err)
	}
	return nil
}
