package config

import (
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port           int    `envconfig:"PORT" default:"8080"`
	DataDir        string `envconfig:"DATA_DIR" default:"./data"`
	SnapshotDB     string `envconfig:"SNAPSHOT_DB" default:"snapshots.db"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SnapshotPath is the snapshot database location: the SNAPSHOT_DB file
// name rooted under DATA_DIR.
func (c *Config) SnapshotPath() string {
	return filepath.Join(c.DataDir, c.SnapshotDB)
}
