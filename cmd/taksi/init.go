package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/taksi8637-pixel/taksi2/internal/config"
)

func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default configuration file",
		Long: `Write a default taksi.json into the given directory (or the
working directory).

The generated file carries the default credentials; change them, or
set TAKSI_ADMIN_USERNAME and TAKSI_ADMIN_PASSWORD instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(dir, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing taksi.json")

	return cmd
}

func runInit(dir string, force bool) error {
	path := filepath.Join(dir, config.ConfigFileName)

	if _, err := os.Stat(path); err == nil && !force {
		warn("%s already exists (use --force to overwrite)", path)
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	cfg := config.New()
	if err := cfg.SaveTo(path); err != nil {
		return err
	}

	success("Wrote %s", path)
	info("Edit the admin credentials before serving publicly.")
	return nil
}
