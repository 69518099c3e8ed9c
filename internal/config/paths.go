package config

import (
	"os"
	"path/filepath"
)

// TaskflowPath returns the root directory for Taskflow data.
// It uses $TASKFLOW_PATH if set, otherwise defaults to ~/.taskflow.
func TaskflowPath() string {
	if v := os.Getenv("TASKFLOW_PATH"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".taskflow")
	}
	return filepath.Join(home, ".taskflow")
}

// ConfigPath returns the path to the Taskflow config file.
func ConfigPath() string {
	return filepath.Join(TaskflowPath(), "config.jsonc")
}
