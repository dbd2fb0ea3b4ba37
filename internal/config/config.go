package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	appName        = "breathr"
	configFileName = "config.yaml"

	DefaultFrameRate = 60
	MaxFrameRate     = 240
)

// Config is the application configuration read from config.yaml.
type Config struct {
	DBPath    string
	LogFile   string
	LogLevel  slog.Level
	FrameRate int
	Sound     SoundConfig
}

type SoundConfig struct {
	// Command plays a sound file; "{file}" is replaced by the file path,
	// otherwise the path is appended as the last argument.
	Command string
	// Dir holds marimba-loop.mp3, ringtone.mp3 and timer-terminer.mp3.
	Dir string
	// Bell rings the terminal bell when no command is configured.
	Bell bool
}

type yamlConfig struct {
	DBPath    string     `yaml:"db_path,omitempty"`
	LogFile   string     `yaml:"log_file,omitempty"`
	LogLevel  string     `yaml:"log_level,omitempty"`
	FrameRate int        `yaml:"frame_rate,omitempty"`
	Sound     *yamlSound `yaml:"sound,omitempty"`
}

type yamlSound struct {
	Command string `yaml:"command,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
	Bell    *bool  `yaml:"bell,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		LogLevel:  slog.LevelInfo,
		FrameRate: DefaultFrameRate,
		Sound:     SoundConfig{Bell: true},
	}
}

// DefaultPath returns ~/.config/breathr/config.yaml
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(dir, appName, configFileName), nil
}

// Load reads the configuration at path, or at DefaultPath when path is
// empty. A missing file yields Default. Out-of-range values are replaced by
// their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	var file yamlConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return cfg, fmt.Errorf("parse config yaml: %w", err)
	}

	apply(&cfg, file)
	return cfg, nil
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg Config) error {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	bell := cfg.Sound.Bell
	file := yamlConfig{
		DBPath:    cfg.DBPath,
		LogFile:   cfg.LogFile,
		LogLevel:  strings.ToLower(cfg.LogLevel.String()),
		FrameRate: cfg.FrameRate,
		Sound: &yamlSound{
			Command: cfg.Sound.Command,
			Dir:     cfg.Sound.Dir,
			Bell:    &bell,
		},
	}

	serialized, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("marshal config yaml: %w", err)
	}
	if err := os.WriteFile(path, serialized, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func apply(cfg *Config, file yamlConfig) {
	cfg.DBPath = expandHome(strings.TrimSpace(file.DBPath))
	cfg.LogFile = expandHome(strings.TrimSpace(file.LogFile))

	if file.LogLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(file.LogLevel)); err == nil {
			cfg.LogLevel = level
		}
	}

	if file.FrameRate >= 1 && file.FrameRate <= MaxFrameRate {
		cfg.FrameRate = file.FrameRate
	}

	if file.Sound != nil {
		cfg.Sound.Command = strings.TrimSpace(file.Sound.Command)
		cfg.Sound.Dir = expandHome(strings.TrimSpace(file.Sound.Dir))
		if file.Sound.Bell != nil {
			cfg.Sound.Bell = *file.Sound.Bell
		}
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
