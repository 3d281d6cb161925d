// Package config handles the on-disk RCFA configuration: who is acting and
// which model runs the analysis. The API key itself never lives in the file;
// it comes from the environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/rcfa/internal/ctxutil"
)

// Config represents the flat RCFA configuration stored as config.json in the
// data directory.
type Config struct {
	Version string `json:"version"`
	UserID  string `json:"user_id"`         // acting user, attached to every audit event
	Role    string `json:"role"`            // "member" or "admin"
	Model   string `json:"model,omitempty"` // analysis model override
}

// Actor converts the configuration to the context actor.
func (c *Config) Actor() ctxutil.Actor {
	role := c.Role
	if role == "" {
		role = ctxutil.RoleMember
	}
	return ctxutil.Actor{UserID: c.UserID, Role: role}
}

// Load reads config.json from the given directory. Returns an error if no
// config exists; callers decide whether that is fatal.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// Save writes config.json to the given directory.
func Save(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
