package config

// Config is the root configuration for Taskflow.
type Config struct {
	Server ServerConfig `json:"server"`
	Data   DataConfig   `json:"data"`
	Events EventsConfig `json:"events"`
	Audit  AuditConfig  `json:"audit"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// DataConfig locates the snapshot file.
type DataConfig struct {
	Snapshot string `json:"snapshot"` // default: $TASKFLOW_PATH/projects.json
}

// EventsConfig holds mutation event bus settings.
type EventsConfig struct {
	BufferSize int `json:"buffer_size"`
}

// AuditConfig configures the JSONL audit trail.
type AuditConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"` // default: $TASKFLOW_PATH/audit.jsonl
}
