package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// NewExportCommand returns the export subcommand.
func NewExportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write the full project collection to stdout or a file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: json or yaml",
				Value:   "json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file (default: stdout)",
			},
		},
		Action: runExport,
	}
}

func runExport(_ context.Context, cmd *cli.Command) error {
	projects, err := openStore(cmd)
	if err != nil {
		return err
	}
	list := projects.List()

	var out []byte
	switch cmd.String("format") {
	case "json":
		out, err = json.MarshalIndent(list, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		out = append(out, '\n')
	case "yaml":
		out, err = marshalYAML(list)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format %q: use json or yaml", cmd.String("format"))
	}

	if path := cmd.String("output"); path != "" {
		return os.WriteFile(path, out, 0o644)
	}
	_, err = os.Stdout.Write(out)
	return err
}

// marshalYAML goes through the JSON codec first so the YAML document carries
// the external field names rather than the Go ones.
func marshalYAML(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return yaml.Marshal(generic)
}
