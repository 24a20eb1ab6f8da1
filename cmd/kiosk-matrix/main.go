// ABOUTME: Entry point for the kiosk Matrix bot
// ABOUTME: Wires config, content store, policy, audit, bridge and keepalive

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/kioskbot/kiosk/internal/access"
	"github.com/kioskbot/kiosk/internal/audit"
	"github.com/kioskbot/kiosk/internal/bridge"
	"github.com/kioskbot/kiosk/internal/config"
	"github.com/kioskbot/kiosk/internal/content"
	"github.com/kioskbot/kiosk/internal/dialog"
	"github.com/kioskbot/kiosk/internal/keepalive"
)

const banner = `
 _    _           _
| | _(_) ___  ___| | __
| |/ / |/ _ \/ __| |/ /
|   <| | (_) \__ \   <
|_|\_\_|\___/|___/_|\_\
`

// getConfigPath returns the path to the kiosk config file.
// Priority: KIOSK_CONFIG env var > XDG_CONFIG_HOME/kiosk/kiosk.toml > ~/.config/kiosk/kiosk.toml
func getConfigPath() string {
	if envPath := os.Getenv("KIOSK_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "kiosk.toml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "kiosk", "kiosk.toml")
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config from %s: %w", configPath, err)
	}

	logger := setupLogger(cfg.Logging.Level)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:     %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Homeserver: %s\n", cfg.Matrix.Homeserver)
	green.Print("    ▶ ")
	fmt.Printf("Snapshot:   %s\n", cfg.Content.SnapshotPath)
	green.Print("    ▶ ")
	fmt.Printf("Work hours: %02d:00-%02d:00 %s (admin bypass: %v)\n",
		cfg.Access.WorkStart, cfg.Access.WorkEnd, cfg.Access.Timezone, cfg.Access.AdminBypass)
	fmt.Println()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Content store, seeded on first run
	seedTitles, err := content.LoadSeedTitles(cfg.Content.SeedFile)
	if err != nil {
		return fmt.Errorf("loading seed file: %w", err)
	}
	store, err := content.Open(cfg.Content.SnapshotPath, cfg.Content.Sections, seedTitles, logger)
	if err != nil {
		return fmt.Errorf("opening content store: %w", err)
	}

	// Access policy over hashed Matrix identities
	loc, err := time.LoadLocation(cfg.Access.Timezone)
	if err != nil {
		return fmt.Errorf("loading timezone: %w", err)
	}
	adminIDs := bridge.AdminIdentities(cfg.Access.Admins)
	for i, uid := range cfg.Access.Admins {
		logger.Info("registered admin", "user_id", uid, "identity", adminIDs[i])
	}
	policy := access.New(adminIDs, loc, cfg.Access.WorkStart, cfg.Access.WorkEnd,
		cfg.Access.AdminBypass, cfg.Access.OffMessage)

	// Optional audit trail
	var auditStore *audit.Store
	if cfg.Audit.Enabled {
		auditStore, err = audit.Open(cfg.Audit.Path, logger)
		if err != nil {
			return fmt.Errorf("opening audit store: %w", err)
		}
		defer auditStore.Close()
	}

	engine := dialog.New(store, policy, auditStore, logger)

	br, err := bridge.New(&cfg.Matrix, engine, logger)
	if err != nil {
		return fmt.Errorf("creating bridge: %w", err)
	}

	// Keepalive runs independently; its failures never affect the dialog core.
	if cfg.Keepalive.ListenAddr != "" {
		srv := keepalive.NewServer(cfg.Keepalive.ListenAddr, logger)
		go func() {
			if err := srv.Run(ctx); err != nil {
				logger.Warn("health server stopped", "error", err)
			}
		}()
	}
	if cfg.Keepalive.PingURL != "" {
		pinger := keepalive.NewPinger(cfg.Keepalive.PingURL, cfg.Keepalive.PingEvery, logger)
		go pinger.Run(ctx)
	}

	logger.Info("kiosk running",
		"sections", cfg.Content.Sections,
		"admins", len(cfg.Access.Admins),
		"audit", cfg.Audit.Enabled,
	)
	return br.Run(ctx)
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
