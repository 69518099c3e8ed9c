// Package commands defines the taskflow CLI.
package commands

import (
	"github.com/urfave/cli/v3"

	"github.com/taskflow-manager/taskflow/internal/config"
)

// NewRootCommand returns the top-level CLI command.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "taskflow",
		Usage: "Project, task and subtask store with HTTP and MCP surfaces",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   config.ConfigPath(),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			NewServeCommand(),
			NewMCPServeCommand(),
			NewProjectsCommand(),
			NewExportCommand(),
		},
	}
}
