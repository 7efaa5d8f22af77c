package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	cerrors "github.com/tessro/cinder/internal/errors"
)

// DotEnvFile is loaded into the environment before overrides are read.
// Variables already set in the environment win.
var DotEnvFile = ".env"

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.cinderrc, $XDG_CONFIG_HOME/cinder/config.toml, ~/.config/cinder/config.toml
func Load() (*Config, error) {
	cfg := Default()

	// Try loading from file
	if path := findConfigFile(); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", cerrors.ErrInvalidConfig, path, err)
		}
	}

	return finish(cfg)
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", cerrors.ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %w", cerrors.ErrInvalidConfig, path, err)
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

func loadDotEnv() error {
	if DotEnvFile == "" {
		return nil
	}
	if _, err := os.Stat(DotEnvFile); err != nil {
		return nil
	}
	if err := godotenv.Load(DotEnvFile); err != nil {
		return fmt.Errorf("load %s: %w", DotEnvFile, err)
	}
	return nil
}

// DefaultPath is where a new config file is written.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cinderrc"
	}
	return filepath.Join(home, ".cinderrc")
}

// findConfigFile returns the first existing config file path.
func findConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	paths := []string{
		filepath.Join(home, ".cinderrc"),
	}

	// XDG_CONFIG_HOME or default
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	paths = append(paths, filepath.Join(xdgConfig, "cinder", "config.toml"))

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

func envBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return i, true
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Library
	if v := os.Getenv("CINDER_LIBRARY_DIR"); v != "" {
		cfg.Library.Dir = v
	}
	if v := os.Getenv("CINDER_LIBRARY_EXTENSIONS"); v != "" {
		var exts []string
		for _, e := range strings.Split(v, ",") {
			if e = strings.TrimSpace(e); e != "" {
				exts = append(exts, e)
			}
		}
		cfg.Library.Extensions = exts
	}

	// Playback
	if i, ok := envInt("CINDER_PLAYBACK_VOLUME"); ok {
		cfg.Playback.Volume = i
	}
	if b, ok := envBool("CINDER_PLAYBACK_AUTOPLAY"); ok {
		cfg.Playback.Autoplay = b
	}
	if b, ok := envBool("CINDER_PLAYBACK_AUTO_ADVANCE"); ok {
		cfg.Playback.AutoAdvance = b
	}
	if v := os.Getenv("CINDER_FFMPEG_PATH"); v != "" {
		cfg.Playback.FFmpegPath = v
	}

	// TUI
	if v := os.Getenv("CINDER_TUI_THEME"); v != "" {
		cfg.TUI.Theme = v
	}
	if i, ok := envInt("CINDER_TUI_REFRESH_INTERVAL"); ok {
		cfg.TUI.RefreshInterval = i
	}
	if b, ok := envBool("CINDER_TUI_SHOW_COVER"); ok {
		cfg.TUI.ShowCover = b
	}

	// Log
	if v := os.Getenv("CINDER_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CINDER_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}
