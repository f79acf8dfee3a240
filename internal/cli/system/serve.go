package system

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/108city/habit-tracker/internal/api"
	"github.com/108city/habit-tracker/internal/cli"
	"github.com/108city/habit-tracker/internal/logger"
)

type ServeCmd struct {
	Addr string `help:"Listen address (defaults to http.addr from config)." short:"a"`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	addr := c.Addr
	if addr == "" {
		addr = ctx.Config.HTTP.Addr
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx.Printf("Serving on http://%s (Ctrl+C to stop)\n", addr)
	logger.Info("Starting HTTP server", "addr", addr)
	return api.New(ctx.Tracker).Listen(sigCtx, addr)
}
