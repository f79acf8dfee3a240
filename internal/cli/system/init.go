package system

import (
	"context"
	"fmt"
	"os"

	"github.com/108city/habit-tracker/internal/cli"
	"github.com/108city/habit-tracker/internal/config"
	"github.com/108city/habit-tracker/internal/constants"
)

type InitCmd struct {
	Force bool `help:"Delete the existing SQLite database before initialization."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		dbPath, err := cli.SQLitePath(ctx.Config)
		if err != nil {
			return fmt.Errorf("--force: %w", err)
		}
		if _, err := os.Stat(dbPath); err == nil {
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			ctx.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(context.Background()); err != nil {
		return err
	}
	ctx.Printf("Initialized grind storage at: %s\n", ctx.Store.GetConfigPath())

	if ctx.Config.File == "" {
		path := config.ExpandPath(constants.DefaultConfigFile)
		if err := config.WriteDefault(path, false); err != nil {
			ctx.Printf("Skipped writing config file: %v\n", err)
		} else {
			ctx.Printf("Wrote default config to: %s\n", path)
		}
	}
	return nil
}
