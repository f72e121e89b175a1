package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Settings is process configuration beyond the database DSN (which keeps its
// own multi-source resolution in db.go).
type Settings struct {
	Port        string   `envconfig:"PORT" default:"8080"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`

	// SyncWorkers bounds the reconcile-all worker pool.
	SyncWorkers int `envconfig:"SYNC_WORKERS" default:"4"`

	// SyncOnStart runs one full reconciliation pass at boot so the rooms
	// table is consistent before the first request lands.
	SyncOnStart bool `envconfig:"SYNC_ON_START" default:"true"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

func LoadSettings() (Settings, error) {
	var s Settings
	if err := envconfig.Process("", &s); err != nil {
		return s, fmt.Errorf("load settings: %w", err)
	}
	return s, nil
}
