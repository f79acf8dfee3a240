package main

import (
	"context"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/108city/habit-tracker/internal/cli"
	"github.com/108city/habit-tracker/internal/cli/habits"
	"github.com/108city/habit-tracker/internal/cli/logs"
	"github.com/108city/habit-tracker/internal/cli/milestones"
	"github.com/108city/habit-tracker/internal/cli/system"
	"github.com/108city/habit-tracker/internal/config"
	"github.com/108city/habit-tracker/internal/constants"
	apperrors "github.com/108city/habit-tracker/internal/errors"
	"github.com/108city/habit-tracker/internal/logger"
	"github.com/108city/habit-tracker/internal/tracker"
)

var CLI struct {
	Version    kong.VersionFlag
	ConfigFile string           `name:"config-file" help:"Config file path." type:"path" default:"${config_file}"`
	Database   string           `help:"SQLite file, PostgreSQL connection string without credentials, or 'keyring'. Overrides the config file."`
	Timezone   string           `help:"IANA time zone used to decide the current day. Overrides the config file."`
	Debug      bool             `help:"Enable debug logging."`

	Init      system.InitCmd          `cmd:"" help:"Initialize grind storage."`
	Migrate   system.MigrateCmd       `cmd:"" help:"Run database migrations."`
	Doctor    system.DoctorCmd        `cmd:"" help:"Run health checks and diagnostics."`
	Today     logs.TodayCmd           `cmd:"" help:"Show today's habits and progress." default:"1"`
	Habit     habits.HabitCmd         `cmd:"" help:"Manage habits."`
	Log       logs.LogCmd             `cmd:"" help:"Log a habit's status for a day."`
	History   logs.HistoryCmd         `cmd:"" help:"Show the completion grid for recent days."`
	Stats     logs.StatsCmd           `cmd:"" help:"Show success rates and milestone progress."`
	Milestone milestones.MilestoneCmd `cmd:"" help:"Manage milestones."`
	Serve     system.ServeCmd         `cmd:"" help:"Serve the JSON API over HTTP."`
	Tui       system.TuiCmd           `cmd:"" help:"Launch the interactive TUI."`
	Config    system.ConfigCmd        `cmd:"" help:"Show or create the config file."`
	Keyring   system.KeyringCmd       `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
	Backup    system.BackupCmd        `cmd:"" help:"Manage SQLite database backups."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracking with daily logs, success rates and milestones"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_file": constants.DefaultConfigFile,
		},
	)

	cfg, err := config.Load(CLI.ConfigFile)
	if err != nil {
		apperrors.Fatal(err)
	}
	if CLI.Database != "" {
		cfg.Database = config.ExpandPath(CLI.Database)
	}
	if CLI.Timezone != "" {
		cfg.Timezone = CLI.Timezone
	}
	if CLI.Debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		apperrors.Fatal(err)
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: cfg.Dir()}); err != nil {
		// File logging is best effort; fall back to stderr.
		logger.InitWriter(os.Stderr, cfg.Debug)
		logger.Warn("Failed to initialize file logging", "error", err)
	}

	appCtx := &cli.Context{
		Config: cfg,
		Out:    os.Stdout,
		In:     os.Stdin,
	}

	command := strings.Fields(ctx.Command())[0]
	if needsStore(command) {
		loc, err := cfg.Location()
		if err != nil {
			apperrors.Fatal(err)
		}

		store, err := cli.OpenStore(cfg)
		if err != nil {
			apperrors.Fatal(err)
		}
		defer store.Close()

		// init and doctor manage loading themselves
		if command != "init" && command != "doctor" {
			if err := store.Load(context.Background()); err != nil {
				apperrors.Fatal(err)
			}
		}

		appCtx.Store = store
		appCtx.Tracker = tracker.New(store,
			tracker.WithLocation(loc),
			tracker.WithCelebrationWindow(cfg.CelebrationWindow()),
		)
	}

	logger.Debug("Running command", "command", ctx.Command())
	if err := ctx.Run(appCtx); err != nil {
		apperrors.Fatal(err)
	}
}

// needsStore reports whether command touches the database.
func needsStore(command string) bool {
	switch command {
	case "config", "keyring":
		return false
	}
	return true
}
