package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/taskflow-manager/taskflow/internal/store"
)

// NewProjectsCommand returns the projects subcommand.
func NewProjectsCommand() *cli.Command {
	return &cli.Command{
		Name:  "projects",
		Usage: "Inspect the project collection",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List all projects",
				Action: runProjectsList,
			},
			{
				Name:      "show",
				Usage:     "Show project details",
				ArgsUsage: "<project_id>",
				Action:    runProjectsShow,
			},
		},
		DefaultCommand: "list",
	}
}

func openStore(cmd *cli.Command) (*store.ProjectStore, error) {
	cfg := loadConfig(cmd)
	return store.Open(cfg.Data.Snapshot, nil)
}

func runProjectsList(_ context.Context, cmd *cli.Command) error {
	projects, err := openStore(cmd)
	if err != nil {
		return err
	}

	list := projects.List()
	if len(list) == 0 {
		fmt.Println("No projects found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTASKS\tNAME")
	for _, p := range list {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			p.ID,
			p.Status,
			len(p.Tasks),
			p.Name,
		)
	}
	return w.Flush()
}

func runProjectsShow(_ context.Context, cmd *cli.Command) error {
	projectID := cmd.Args().First()
	if projectID == "" {
		return fmt.Errorf("usage: taskflow projects show <project_id>")
	}

	projects, err := openStore(cmd)
	if err != nil {
		return err
	}

	p, err := projects.Get(projectID)
	if err != nil {
		return fmt.Errorf("get project: %w", err)
	}

	fmt.Printf("ID:          %s\n", p.ID)
	fmt.Printf("Name:        %s\n", p.Name)
	fmt.Printf("Status:      %s\n", p.Status)
	if p.StartDate != nil {
		fmt.Printf("Started:     %s\n", p.StartDate.Format("2006-01-02 15:04:05"))
	}
	if p.EndDate != nil {
		fmt.Printf("Ended:       %s\n", p.EndDate.Format("2006-01-02 15:04:05"))
	}
	if len(p.Owners) > 0 {
		fmt.Printf("Owners:      %v\n", p.Owners)
	}
	if p.Description != "" {
		fmt.Printf("\nDescription:\n%s\n", p.Description)
	}

	if len(p.Tasks) > 0 {
		fmt.Println("\nTasks:")
		for _, t := range p.Tasks {
			fmt.Printf("  [%s] %s: %s", t.Status, t.ID, t.Title)
			if len(t.Subtasks) > 0 {
				fmt.Printf(" (%d subtasks)", len(t.Subtasks))
			}
			fmt.Println()
		}
	}

	if len(p.History) > 0 {
		fmt.Println("\nHistory:")
		for _, h := range p.History {
			fmt.Printf("  [%s] %s by %s\n", h.Timestamp.Format("2006-01-02 15:04:05"), h.Action, h.User)
		}
	}

	return nil
}
