package system

import (
	"github.com/108city/habit-tracker/internal/cli"
	"github.com/108city/habit-tracker/internal/config"
	"github.com/108city/habit-tracker/internal/constants"
)

type ConfigCmd struct {
	Show ConfigShowCmd `cmd:"" help:"Print the effective configuration." default:"1"`
	Init ConfigInitCmd `cmd:"" help:"Write a config file with default values."`
}

type ConfigShowCmd struct{}

func (c *ConfigShowCmd) Run(ctx *cli.Context) error {
	file := ctx.Config.File
	if file == "" {
		file = "(none, using defaults)"
	}
	ctx.Printf("Config file: %s\n\n", file)

	table := cli.NewTable("KEY", "VALUE")
	for _, kv := range ctx.Config.Settings() {
		table.AddRow(kv[0], kv[1])
	}
	ctx.PrintTable(table)
	return nil
}

type ConfigInitCmd struct {
	Path  string `arg:"" optional:"" help:"Where to write the file (defaults to the standard location)."`
	Force bool   `help:"Overwrite an existing file."`
}

func (c *ConfigInitCmd) Run(ctx *cli.Context) error {
	path := c.Path
	if path == "" {
		path = constants.DefaultConfigFile
	}
	path = config.ExpandPath(path)
	if err := config.WriteDefault(path, c.Force); err != nil {
		return err
	}
	ctx.Printf("✓ Wrote default config to: %s\n", path)
	return nil
}
