// Package config loads and validates the server's YAML configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete configuration for the ferrumc server process.
type Config struct {
	Server    ServerListen `yaml:"server"`
	World     WorldConfig  `yaml:"world"`
	Database  DatabaseInfo `yaml:"database"`
	Logging   LoggingInfo  `yaml:"logging"`
	Systems   SystemsInfo  `yaml:"systems"`
}

// ServerListen is the network address the server accepts connections on.
type ServerListen struct {
	Listen     string `yaml:"listen"`
	MaxPlayers uint32 `yaml:"max_players"`
	MOTD       string `yaml:"motd"`
	// Favicon is a pre-encoded "data:image/png;base64,..." string, loaded by
	// whatever produced this config file. The server never reads a favicon
	// file itself; it only carries this string through to the Status
	// response.
	Favicon string `yaml:"favicon"`
}

// WorldConfig names the world this process serves.
type WorldConfig struct {
	Name         string `yaml:"name"`
	ViewDistance int32  `yaml:"view_distance"`
}

// DatabaseInfo configures the chunk store's embedded KV backend.
type DatabaseInfo struct {
	Mode string `yaml:"mode"` // "file" or "memory"
	Path string `yaml:"path"`
	Port uint16 `yaml:"port"` // reserved: unused by the embedded backend, kept for config-shape compatibility
}

// LoggingInfo configures the process-wide slog logger.
type LoggingInfo struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	FilePath string `yaml:"file_path"`
}

// SystemsInfo tunes the cooperative systems runtime's intervals.
type SystemsInfo struct {
	TickInterval          time.Duration `yaml:"tick_interval"`           // default: 50ms (20Hz)
	KeepAliveSendInterval time.Duration `yaml:"keep_alive_send_interval"` // default: 15s
	KeepAliveCheckInterval time.Duration `yaml:"keep_alive_check_interval"` // default: 5s
	KeepAliveTimeout      time.Duration `yaml:"keep_alive_timeout"`      // default: 30s
	CompressionThreshold  int32         `yaml:"compression_threshold"`   // default: 256 (applied when 0), negative disables
}

// Load reads and validates the YAML configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	}
	if c.Server.MaxPlayers == 0 {
		c.Server.MaxPlayers = 20
	}
	if c.Server.MOTD == "" {
		c.Server.MOTD = "A Ferrumc Server"
	}

	if c.World.Name == "" {
		c.World.Name = "overworld"
	}
	if c.World.ViewDistance <= 0 {
		c.World.ViewDistance = 10
	}

	c.Database.Mode = strings.ToLower(strings.TrimSpace(c.Database.Mode))
	if c.Database.Mode == "" {
		c.Database.Mode = "file"
	}
	if c.Database.Mode != "file" && c.Database.Mode != "memory" {
		return fmt.Errorf("database.mode must be file or memory, got %q", c.Database.Mode)
	}
	if c.Database.Mode == "file" && c.Database.Path == "" {
		return fmt.Errorf("database.path is required when database.mode is file")
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}

	if c.Systems.TickInterval <= 0 {
		c.Systems.TickInterval = 50 * time.Millisecond
	}
	if c.Systems.KeepAliveSendInterval <= 0 {
		c.Systems.KeepAliveSendInterval = 15 * time.Second
	}
	if c.Systems.KeepAliveCheckInterval <= 0 {
		c.Systems.KeepAliveCheckInterval = 5 * time.Second
	}
	if c.Systems.KeepAliveTimeout <= 0 {
		c.Systems.KeepAliveTimeout = 30 * time.Second
	}
	if c.Systems.CompressionThreshold == 0 {
		c.Systems.CompressionThreshold = 256
	}

	return nil
}
