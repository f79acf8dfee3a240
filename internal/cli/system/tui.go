package system

import (
	"context"

	"github.com/108city/habit-tracker/internal/cli"
	"github.com/108city/habit-tracker/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	return tui.Run(context.Background(), ctx.Tracker, tui.WithHistoryDays(ctx.Config.History.Days))
}
