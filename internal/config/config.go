// Package config handles workspace configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents workspace configuration stored in .switchlog/config.json.
type Config struct {
	ShareEmail     string `json:"share_email"`                // Email the provisioned sheets are shared with
	FolderName     string `json:"folder_name,omitempty"`      // Drive folder that holds per-channel sheets
	FolderID       string `json:"folder_id,omitempty"`        // Resolved Drive folder ID (set after provisioning)
	SheetPrefix    string `json:"sheet_prefix,omitempty"`     // Title prefix for per-channel sheets
	ReplyOnInvalid bool   `json:"reply_on_invalid,omitempty"` // Post a usage hint for malformed lines
}

const (
	SwitchlogDir = ".switchlog"
	ConfigFile   = "config.json"
	ChannelsFile = "channels.yaml"
	CacheDir     = "cache"
	DBFile       = "switchlog.db"
	UsersFile    = "slack_users.json"
)

// DefaultSheetPrefix is used when sheet_prefix is not configured.
const DefaultSheetPrefix = "SwitchLog"

// SwitchlogPath returns the path to the .switchlog directory from a root path.
func SwitchlogPath(root string) string {
	return filepath.Join(root, SwitchlogDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, SwitchlogDir, ConfigFile)
}

// ChannelsPath returns the path to channels.yaml from a root path.
func ChannelsPath(root string) string {
	return filepath.Join(root, SwitchlogDir, ChannelsFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, SwitchlogDir, CacheDir)
}

// DBPath returns the path to the state database from a root path.
func DBPath(root string) string {
	return filepath.Join(root, SwitchlogDir, CacheDir, DBFile)
}

// UserCachePath returns the path to the Slack user-name cache from a root path.
func UserCachePath(root string) string {
	return filepath.Join(root, SwitchlogDir, CacheDir, UsersFile)
}

// IsWorkspace checks if the given path contains a switchlog workspace.
func IsWorkspace(root string) bool {
	info, err := os.Stat(SwitchlogPath(root))
	return err == nil && info.IsDir()
}

// FindWorkspace walks up from the given path to find a switchlog workspace.
// Returns the workspace root path or an error if not found.
func FindWorkspace(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsWorkspace(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a switchlog workspace (no .switchlog directory found); run 'switchlog init' first")
		}
		abs = parent
	}
}

// Load reads configuration from the workspace at the given root.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.SheetPrefix == "" {
		cfg.SheetPrefix = DefaultSheetPrefix
	}

	return &cfg, nil
}

// Save writes configuration to the workspace at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Init creates the workspace skeleton at the given root: the .switchlog
// directory, cache directory, a default config, and an empty channel
// registry. It fails if a workspace already exists.
func Init(root string, cfg *Config) error {
	if IsWorkspace(root) {
		return fmt.Errorf("workspace already initialized at %s", SwitchlogPath(root))
	}

	if err := os.MkdirAll(CachePath(root), 0755); err != nil {
		return fmt.Errorf("creating workspace directories: %w", err)
	}

	if cfg == nil {
		cfg = &Config{SheetPrefix: DefaultSheetPrefix}
	}
	if err := cfg.Save(root); err != nil {
		return err
	}

	registry := Registry{}
	return registry.Save(root)
}
