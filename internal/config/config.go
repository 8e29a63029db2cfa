// Package config holds tool settings as an explicit
// configuration-with-defaults structure. Environment-derived values
// (editor, shell) are resolved once during Load, never looked up
// ambiently, so tests can construct Settings directly.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Settings is everything the commands need to operate. Zero ambient
// lookups happen after Load returns.
type Settings struct {
	// Dir is the base data directory, ~/.sshreg by default.
	Dir string `mapstructure:"-"`
	// RegistryFile is the backing file holding all server records.
	RegistryFile string `mapstructure:"registry_file"`
	// HistoryFile is the SQLite probe history database.
	HistoryFile string `mapstructure:"history_file"`
	// ProbeTimeout bounds the transport-level connect during probes.
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
	// Editor and Shell are used when spawning external programs.
	Editor string `mapstructure:"editor"`
	Shell  string `mapstructure:"shell"`
}

// BaseDir returns the data directory. SSHREG_CONFIG_DIR overrides the
// default ~/.sshreg for tests and scripted use.
func BaseDir() (string, error) {
	if dir := os.Getenv("SSHREG_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".sshreg"), nil
}

// Defaults returns the built-in settings for a base directory. Editor and
// shell fall back to vi and /bin/sh when the environment has no opinion.
func Defaults(dir string) Settings {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	return Settings{
		Dir:          dir,
		RegistryFile: filepath.Join(dir, "servers.env"),
		HistoryFile:  filepath.Join(dir, "history.db"),
		ProbeTimeout: 10 * time.Second,
		Editor:       editor,
		Shell:        shell,
	}
}

// Load resolves settings from config.yaml in the base directory, SSHREG_*
// environment variables and the built-in defaults, in ascending
// precedence of defaults < file < environment. A missing config file is
// not an error.
func Load() (Settings, error) {
	dir, err := BaseDir()
	if err != nil {
		return Settings{}, err
	}
	return LoadFromDir(dir)
}

// LoadFromDir is Load with an explicit base directory.
func LoadFromDir(dir string) (Settings, error) {
	defaults := Defaults(dir)

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix("SSHREG")
	v.AutomaticEnv()

	v.SetDefault("registry_file", defaults.RegistryFile)
	v.SetDefault("history_file", defaults.HistoryFile)
	v.SetDefault("probe_timeout", defaults.ProbeTimeout)
	v.SetDefault("editor", defaults.Editor)
	v.SetDefault("shell", defaults.Shell)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return Settings{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	settings := Settings{Dir: dir}
	if err := v.Unmarshal(&settings); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	settings.Dir = dir
	if settings.ProbeTimeout <= 0 {
		settings.ProbeTimeout = defaults.ProbeTimeout
	}
	return settings, nil
}
