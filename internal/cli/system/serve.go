package system

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/julianstephens/ihsan/internal/cli"
	"github.com/julianstephens/ihsan/internal/server"
)

// ServeCmd runs the HTTP API until interrupted.
type ServeCmd struct {
	Address string `help:"Listen address (overrides IHSAN_HTTP_ADDRESS)."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	cfg, err := server.ConfigFromEnv()
	if err != nil {
		return err
	}
	if c.Address != "" {
		cfg.Address = c.Address
	}

	settings, err := ctx.Settings()
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, ctx.Store, settings, ctx.Notifier)
	return srv.Run(runCtx)
}
