package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.jsonc")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadStripsComments(t *testing.T) {
	path := writeConfig(t, `{
		// HTTP API settings
		"server": {
			"host": "0.0.0.0",
			"port": 8080, // trailing comma below is fine too
		},
		/* block comment */
		"events": {"buffer_size": 32}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 8080 {
		t.Errorf("server: %+v", cfg.Server)
	}
	if cfg.Events.BufferSize != 32 {
		t.Errorf("buffer size: got %d", cfg.Events.BufferSize)
	}
}

func TestLoadExpandsEnvTemplates(t *testing.T) {
	t.Setenv("TASKFLOW_TEST_SNAPSHOT", "/data/projects.json")
	path := writeConfig(t, `{
		"data": {"snapshot": "${{ .Env.TASKFLOW_TEST_SNAPSHOT }}"}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Data.Snapshot != "/data/projects.json" {
		t.Errorf("snapshot: got %q", cfg.Data.Snapshot)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("TASKFLOW_PATH", "/srv/taskflow")
	path := writeConfig(t, `{}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("host: got %q", cfg.Server.Host)
	}
	if cfg.Server.Port != 2410 {
		t.Errorf("port: got %d", cfg.Server.Port)
	}
	if cfg.Data.Snapshot != filepath.Join("/srv/taskflow", "projects.json") {
		t.Errorf("snapshot: got %q", cfg.Data.Snapshot)
	}
	if cfg.Events.BufferSize != 256 {
		t.Errorf("buffer size: got %d", cfg.Events.BufferSize)
	}
	if cfg.Audit.Path != filepath.Join("/srv/taskflow", "audit.jsonl") {
		t.Errorf("audit path: got %q", cfg.Audit.Path)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.jsonc")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadMalformedConfig(t *testing.T) {
	path := writeConfig(t, `{"server": `)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestDefault(t *testing.T) {
	t.Setenv("TASKFLOW_PATH", "/srv/taskflow")

	cfg := Default()
	if cfg.Server.Port != 2410 {
		t.Errorf("port: got %d", cfg.Server.Port)
	}
	if cfg.Audit.Enabled {
		t.Error("audit should be disabled by default")
	}
}

func TestTaskflowPathEnvOverride(t *testing.T) {
	t.Setenv("TASKFLOW_PATH", "/custom/root")
	if got := TaskflowPath(); got != "/custom/root" {
		t.Errorf("TaskflowPath: got %q", got)
	}
	if got := ConfigPath(); got != filepath.Join("/custom/root", "config.jsonc") {
		t.Errorf("ConfigPath: got %q", got)
	}
}
