package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/prodplan/core/factory"
)

// ServerConfig defines the HTTP transport settings.
type ServerConfig struct {
	Address string `json:"address"`
	// Mode is the gin mode: "release", "debug" or "test".
	Mode        string   `json:"mode"`
	CORSOrigins []string `json:"cors_origins"`
	// APIToken protects the plan history endpoint when set.
	APIToken string `json:"api_token"`
	// ResponseFile, when set, receives the last computed plan as indented JSON.
	ResponseFile    string        `json:"response_file"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	MaxBodyBytes    int64         `json:"max_body_bytes"`
}

// SetDefaults applies default values.
func (c *ServerConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8888"
	}
	if c.Mode == "" {
		c.Mode = "release"
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = 1 << 20
	}
}

// Validate checks mandatory fields.
func (c ServerConfig) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("address is required")
	}
	switch c.Mode {
	case "release", "debug", "test":
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if c.MaxBodyBytes < 0 {
		return fmt.Errorf("max_body_bytes must not be negative")
	}
	return nil
}

// PlannerConfig tunes the allocation engine.
type PlannerConfig struct {
	// MaxSearchNodes bounds the subset search. Zero means unlimited.
	MaxSearchNodes int `json:"max_search_nodes"`
	// Filter selects the unit filter by registered name.
	Filter factory.ModuleConfig `json:"filter"`
}

// Validate checks the search budget.
func (c PlannerConfig) Validate() error {
	if c.MaxSearchNodes < 0 {
		return fmt.Errorf("max_search_nodes must not be negative")
	}
	return nil
}
