package system

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/108city/habit-tracker/internal/backup"
	"github.com/108city/habit-tracker/internal/cli"
)

type BackupCmd struct {
	Create  BackupCreateCmd  `cmd:"" help:"Create a backup of the SQLite database." default:"1"`
	List    BackupListCmd    `cmd:"" help:"List available backups."`
	Restore BackupRestoreCmd `cmd:"" help:"Restore the SQLite database from a backup."`
}

func backupManager(ctx *cli.Context) (*backup.Manager, error) {
	dbPath, err := cli.SQLitePath(ctx.Config)
	if err != nil {
		return nil, err
	}
	return backup.NewManager(dbPath), nil
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, err := backupManager(ctx)
	if err != nil {
		return err
	}
	path, err := mgr.Create(context.Background())
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	ctx.Printf("✓ Backup created: %s\n", filepath.Base(path))
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, err := backupManager(ctx)
	if err != nil {
		return err
	}
	backups, err := mgr.List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		ctx.Println("No backups found.")
		ctx.Printf("Backups are stored in: %s\n", mgr.Dir())
		return nil
	}

	table := cli.NewTable("CREATED", "FILE", "SIZE")
	for _, b := range backups {
		table.AddRow(b.Timestamp.Format("2006-01-02 15:04:05"), filepath.Base(b.Path), fmt.Sprintf("%.1f KB", float64(b.Size)/1024))
	}
	ctx.PrintTable(table)
	ctx.Printf("\nBackup directory: %s\n", mgr.Dir())
	return nil
}

type BackupRestoreCmd struct {
	BackupFile string `arg:"" help:"Path or file name of the backup to restore."`
	Yes        bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := backupManager(ctx)
	if err != nil {
		return err
	}
	path, err := mgr.Resolve(c.BackupFile)
	if err != nil {
		return err
	}

	if !c.Yes {
		ctx.Println("⚠️  This replaces the current database. Stop any running 'grind tui' or 'grind serve' first.")
		ctx.Printf("Restore from: %s\n", path)
		ok, err := cli.Confirm(ctx, "Continue?")
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Restore cancelled.")
			return nil
		}
	}

	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	previous, err := mgr.Restore(context.Background(), path)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	if previous != "" {
		ctx.Printf("Backed up current database to: %s\n", filepath.Base(previous))
	}
	ctx.Println("✓ Database restored")
	return nil
}
