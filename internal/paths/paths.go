// Package paths resolves the configuration and data directories.
//
// Each directory follows the same precedence: command-line flag, then the
// BOARDROOM_* environment variable, then (data only) the config.yaml value,
// then the platform default.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user directories.
const AppName = "boardroom"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "BOARDROOM_CONFIG_DIR"
	EnvDataDir   = "BOARDROOM_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/boardroom (fallback ~/.config/boardroom)
// macOS:   ~/Library/Application Support/boardroom
// Windows: %APPDATA%/boardroom
func DefaultConfigDir() (string, error) {
	return userDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/boardroom (fallback ~/.local/share/boardroom)
// macOS:   ~/Library/Application Support/boardroom/data
// Windows: %APPDATA%/boardroom/data
func DefaultDataDir() (string, error) {
	dir, err := userDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
	if err != nil {
		return "", err
	}
	if platformDir.goos != "linux" {
		// Config and data share the application directory elsewhere.
		dir = filepath.Join(dir, "data")
	}
	return dir, nil
}

// userDir resolves <base>/boardroom, where base is the XDG variable or
// ~/<fallback> on Linux and the user config directory elsewhere.
func userDir(xdgEnv, fallback string) (string, error) {
	if platformDir.goos != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if xdg := os.Getenv(xdgEnv); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, AppName), nil
}

// ResolveConfigDir returns the configuration directory: flag, then
// BOARDROOM_CONFIG_DIR, then DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	return resolve(DefaultConfigDir, flag, os.Getenv(EnvConfigDir))
}

// ResolveDataDir returns the data directory: flag, then BOARDROOM_DATA_DIR,
// then the data_dir value from config.yaml, then DefaultDataDir().
func ResolveDataDir(flag, configValue string) (string, error) {
	return resolve(DefaultDataDir, flag, os.Getenv(EnvDataDir), configValue)
}

// resolve returns the first non-empty candidate as an absolute path, or the
// default.
func resolve(def func() (string, error), candidates ...string) (string, error) {
	for _, c := range candidates {
		if c != "" {
			return filepath.Abs(c)
		}
	}
	return def()
}
