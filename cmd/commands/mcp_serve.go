package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	taskflowmcp "github.com/taskflow-manager/taskflow/internal/mcp"
	"github.com/taskflow-manager/taskflow/internal/store"
)

// NewMCPServeCommand returns the mcp-serve subcommand.
func NewMCPServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp-serve",
		Usage: "Expose the store operations as an MCP server (stdio)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "snapshot",
				Usage: "Path to the snapshot file",
			},
		},
		Action: runMCPServe,
	}
}

func runMCPServe(_ context.Context, cmd *cli.Command) error {
	// Log to stderr only: stdout is the MCP stdio transport.
	level := slog.LevelWarn
	if cmd.Bool("debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := loadConfig(cmd)
	if cmd.IsSet("snapshot") {
		cfg.Data.Snapshot = cmd.String("snapshot")
	}

	projects, err := store.Open(cfg.Data.Snapshot, nil)
	if err != nil {
		return err
	}
	tasks := store.NewTaskService(projects)

	slog.Debug("starting MCP server", "snapshot", cfg.Data.Snapshot)

	server := taskflowmcp.NewServer(projects, tasks)
	return server.Run(context.Background(), &mcpsdk.StdioTransport{})
}
