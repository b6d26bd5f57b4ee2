package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	coretypes "github.com/projecteru2/core/types"
)

// Config holds global vasup configuration.
type Config struct {
	// RootDir is the base directory for persistent data (state record, lock).
	RootDir string `json:"root_dir"`
	// LogDir is where the install transcript is written.
	LogDir string `json:"log_dir"`
	// TranscriptAlias is a well-known discovery path resolving to the
	// transcript via symlink. Empty disables the alias.
	TranscriptAlias string `json:"transcript_alias"`
	// AssumeYes answers every confirmation prompt with yes (non-interactive runs).
	AssumeYes bool `json:"assume_yes"`
	// Setup configures the product setup flow.
	Setup SetupConfig `json:"setup"`
	// Log configuration, uses eru core's ServerLogConfig.
	Log coretypes.ServerLogConfig `json:"log"`
}

// SetupConfig holds the external-tool knobs of the installation.
type SetupConfig struct {
	// RepoScriptURL is the third-party repository bootstrap script.
	RepoScriptURL string `json:"repo_script_url"`
	// SetupCommand runs the product's initial setup (argv form).
	SetupCommand []string `json:"setup_command"`
	// FeedSyncBinary syncs vulnerability feeds after setup; absence is not an error.
	FeedSyncBinary string `json:"feed_sync_binary"`
	// FeedTypes are passed one per invocation to the feed sync tool.
	FeedTypes []string `json:"feed_types"`
	// SELinuxPhrase is the vendor diagnostic matched (case-insensitively)
	// against the transcript to detect the must-disable-SELinux condition.
	// Kept as configuration because upstream message text drifts.
	SELinuxPhrase string `json:"selinux_phrase"`
	// SELinuxConfigPath is the persistent SELinux policy configuration file.
	SELinuxConfigPath string `json:"selinux_config_path"`
	// GrubbyBinary applies kernel arguments to all boot entries.
	GrubbyBinary string `json:"grubby_binary"`
	// RebootCommand terminates the process by rebooting the host (argv form).
	RebootCommand []string `json:"reboot_command"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		RootDir:         "/var/lib/vasup",
		LogDir:          "/var/lib/vasup/logs",
		TranscriptAlias: "/var/log/vasup.log",
		Setup: SetupConfig{
			RepoScriptURL:     "https://updates.atomicorp.com/installers/atomic",
			SetupCommand:      []string{"openvas-setup"},
			FeedSyncBinary:    "greenbone-feed-sync",
			FeedTypes:         []string{"GVMD_DATA", "SCAP", "CERT"},
			SELinuxPhrase:     "selinux must be disabled",
			SELinuxConfigPath: "/etc/selinux/config",
			GrubbyBinary:      "grubby",
			RebootCommand:     []string{"systemctl", "reboot"},
		},
		Log: coretypes.ServerLogConfig{
			Level:      "info",
			MaxSize:    500,
			MaxAge:     28,
			MaxBackups: 3,
		},
	}
}

// LoadConfig loads configuration from file, falling back to defaults.
func LoadConfig(path string) (*Config, error) {
	conf := DefaultConfig()
	if path == "" {
		return conf, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // config path from CLI flag
	if err != nil {
		if os.IsNotExist(err) {
			return conf, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, conf); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return conf, nil
}

// StatePath returns the persisted phase record path.
func (c *Config) StatePath() string {
	return filepath.Join(c.RootDir, "state.json")
}

// StateLockPath returns the flock path guarding the state record.
func (c *Config) StateLockPath() string {
	return filepath.Join(c.RootDir, "state.lock")
}

// TranscriptPath returns the append-mode install transcript path.
func (c *Config) TranscriptPath() string {
	return filepath.Join(c.LogDir, "install.log")
}
