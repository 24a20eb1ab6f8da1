// ABOUTME: Configuration loading for the kiosk bot
// ABOUTME: Loads TOML config with environment variable expansion

package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Matrix    MatrixConfig    `toml:"matrix"`
	Content   ContentConfig   `toml:"content"`
	Access    AccessConfig    `toml:"access"`
	Audit     AuditConfig     `toml:"audit"`
	Keepalive KeepaliveConfig `toml:"keepalive"`
	Logging   LoggingConfig   `toml:"logging"`
}

type MatrixConfig struct {
	Homeserver    string   `toml:"homeserver"`
	UserID        string   `toml:"user_id"`
	AccessToken   string   `toml:"access_token"`
	AllowedRooms  []string `toml:"allowed_rooms"`
	CommandPrefix string   `toml:"command_prefix"`
}

type ContentConfig struct {
	SnapshotPath string `toml:"snapshot_path"`
	Sections     int    `toml:"sections"`
	SeedFile     string `toml:"seed_file"`
}

type AccessConfig struct {
	Admins      []string `toml:"admins"` // Matrix user IDs
	Timezone    string   `toml:"timezone"`
	WorkStart   int      `toml:"work_start"` // inclusive hour
	WorkEnd     int      `toml:"work_end"`   // exclusive hour
	AdminBypass bool     `toml:"admin_bypass"`
	OffMessage  string   `toml:"off_message"`
}

type AuditConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type KeepaliveConfig struct {
	ListenAddr string `toml:"listen_addr"` // health endpoint, empty disables
	PingURL    string `toml:"ping_url"`    // self-ping target, empty disables
	Every      string `toml:"every"`       // ping interval, e.g. "5m"

	PingEvery time.Duration `toml:"-"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

// defaultConfig is the baseline the file is decoded over.
func defaultConfig() Config {
	return Config{
		Matrix: MatrixConfig{CommandPrefix: "!"},
		Content: ContentConfig{
			SnapshotPath: "data.json",
			Sections:     7,
		},
		Access: AccessConfig{
			Timezone:    "Europe/Paris",
			WorkStart:   6,
			WorkEnd:     22,
			AdminBypass: true,
			OffMessage:  "The bot is available 06:00-22:00 (Europe/Paris). Try again later.",
		},
		Keepalive: KeepaliveConfig{Every: "5m"},
		Logging:   LoggingConfig{Level: "info"},
	}
}

// Load reads config from the given path, expanding ${VAR} environment
// references before decoding.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	cfg := defaultConfig()
	if _, err := toml.Decode(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Keepalive.Every != "" {
		cfg.Keepalive.PingEvery, err = time.ParseDuration(cfg.Keepalive.Every)
		if err != nil {
			return nil, fmt.Errorf("parsing keepalive.every %q: %w", cfg.Keepalive.Every, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR} with environment variable values.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(varName)
	})
}

// Validate checks that required config fields are present and valid.
func (c *Config) Validate() error {
	if c.Matrix.Homeserver == "" {
		return fmt.Errorf("matrix.homeserver is required")
	}
	if _, err := url.Parse(c.Matrix.Homeserver); err != nil {
		return fmt.Errorf("matrix.homeserver is not a valid URL: %w", err)
	}
	if c.Matrix.UserID == "" {
		return fmt.Errorf("matrix.user_id is required")
	}
	if c.Matrix.AccessToken == "" {
		return fmt.Errorf("matrix.access_token is required")
	}
	if len(c.Access.Admins) == 0 {
		return fmt.Errorf("access.admins must list at least one user")
	}
	if c.Content.Sections < 1 {
		return fmt.Errorf("content.sections must be at least 1")
	}
	if c.Access.WorkStart < 0 || c.Access.WorkStart > 23 {
		return fmt.Errorf("access.work_start must be an hour 0-23")
	}
	if c.Access.WorkEnd < 0 || c.Access.WorkEnd > 24 {
		return fmt.Errorf("access.work_end must be an hour 0-24")
	}
	if _, err := time.LoadLocation(c.Access.Timezone); err != nil {
		return fmt.Errorf("access.timezone %q: %w", c.Access.Timezone, err)
	}
	if c.Audit.Enabled && c.Audit.Path == "" {
		return fmt.Errorf("audit.path is required when audit is enabled")
	}
	if c.Keepalive.PingURL != "" {
		u, err := url.Parse(c.Keepalive.PingURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("keepalive.ping_url must be an http(s) URL")
		}
		if c.Keepalive.PingEvery <= 0 {
			return fmt.Errorf("keepalive.every must be a positive duration")
		}
	}
	return nil
}
