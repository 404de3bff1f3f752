package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// IPCConfig defines socket settings.
type IPCConfig struct {
	SocketPath string `toml:"socketPath"`
}

// StorageConfig defines SQLite settings for the diagnostics store.
type StorageConfig struct {
	DBPath string `toml:"dbPath"`
}

// AnalysisConfig points the daemon at its inputs: the type checker's
// environment snapshot and the structured model files to verify.
type AnalysisConfig struct {
	EnvironmentSnapshot string   `toml:"environmentSnapshot"`
	ModelFiles          []string `toml:"modelFiles"`
}

// VCSConfig defines Git integration options.
type VCSConfig struct {
	Enabled bool   `toml:"enabled"`
	Root    string `toml:"root"`
}

// LoggingConfig defines basic logging knobs. Log rotation is left to the host.
type LoggingConfig struct {
	Level    string `toml:"level"`
	FilePath string `toml:"filePath"`
}

// ProfileConfig aggregates daemon configuration for a profile.
type ProfileConfig struct {
	ProfileName string         `toml:"profileName"`
	Storage     StorageConfig  `toml:"storage"`
	Analysis    AnalysisConfig `toml:"analysis"`
	VCS         VCSConfig      `toml:"vcs"`
	IPC         IPCConfig      `toml:"ipc"`
	Logging     LoggingConfig  `toml:"logging"`
}

// DefaultProfile returns a workable configuration for a fresh profile.
func DefaultProfile(name string) *ProfileConfig {
	return &ProfileConfig{
		ProfileName: name,
		Storage:     StorageConfig{DBPath: "state.db"},
		Analysis:    AnalysisConfig{EnvironmentSnapshot: "environment.json"},
		IPC:         IPCConfig{SocketPath: "ipc.sock"},
		Logging:     LoggingConfig{Level: "info"},
	}
}

// Load reads a config.toml from the provided path.
func Load(path string) (*ProfileConfig, error) {
	var cfg ProfileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadProfile reads config.toml from a profile directory.
func LoadProfile(dir string) (*ProfileConfig, error) {
	return Load(filepath.Join(dir, "config.toml"))
}

// Save writes cfg to path as TOML.
func Save(path string, cfg *ProfileConfig) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// ResolvePath interprets p relative to the profile directory unless absolute.
func ResolvePath(profileDir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(profileDir, p)
}

func (cfg *ProfileConfig) validate() error {
	if cfg.ProfileName == "" {
		return fmt.Errorf("profileName required")
	}
	if cfg.Storage.DBPath == "" {
		return fmt.Errorf("storage.dbPath required")
	}
	if cfg.IPC.SocketPath == "" {
		return fmt.Errorf("ipc.socketPath required")
	}
	if cfg.Analysis.EnvironmentSnapshot == "" {
		return fmt.Errorf("analysis.environmentSnapshot required")
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	return nil
}
