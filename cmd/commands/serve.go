package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/taskflow-manager/taskflow/internal/api"
	"github.com/taskflow-manager/taskflow/internal/config"
	"github.com/taskflow-manager/taskflow/internal/events"
	"github.com/taskflow-manager/taskflow/internal/storage"
	"github.com/taskflow-manager/taskflow/internal/store"
)

// NewServeCommand returns the serve subcommand.
func NewServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the Taskflow HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to listen on",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on",
			},
			&cli.StringFlag{
				Name:  "snapshot",
				Usage: "Path to the snapshot file",
			},
		},
		Action: runServe,
	}
}

func runServe(_ context.Context, cmd *cli.Command) error {
	if cmd.Bool("debug") {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg := loadConfig(cmd)

	// CLI flags override config
	if cmd.IsSet("host") {
		cfg.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Server.Port = cmd.Int("port")
	}
	if cmd.IsSet("snapshot") {
		cfg.Data.Snapshot = cmd.String("snapshot")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	bus := events.NewBus(cfg.Events.BufferSize)
	defer bus.Close()

	projects, err := store.Open(cfg.Data.Snapshot, bus)
	if err != nil {
		return err
	}
	tasks := store.NewTaskService(projects)
	slog.Info("snapshot loaded", "path", cfg.Data.Snapshot, "projects", len(projects.List()))

	if cfg.Audit.Enabled {
		audit := storage.NewAuditLogger(cfg.Audit.Path, bus)
		defer audit.Close()
		slog.Info("audit log enabled", "path", cfg.Audit.Path)
	}

	server := api.NewServer(projects, tasks, bus, cfg.Server.Host, cfg.Server.Port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// loadConfig reads the configured file, falling back to defaults when it is
// absent.
func loadConfig(cmd *cli.Command) *config.Config {
	path := cmd.String("config")
	cfg, err := config.Load(path)
	if err != nil {
		slog.Debug("config not found, using defaults", "path", path, "error", err)
		return config.Default()
	}
	return cfg
}
