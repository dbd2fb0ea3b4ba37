package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sadopc/breathr/internal/breath"
)

// LoadConfig returns the persisted active configuration. A missing or
// malformed value yields the default configuration; a readable value is
// repaired field by field.
func (s *Store) LoadConfig() (breath.Config, error) {
	raw, ok, err := s.loadJSON(KeyConfig)
	if err != nil || !ok {
		return breath.DefaultConfig(), err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		s.logger.Warn("discarding malformed config", "key", KeyConfig, "error", err)
		return breath.DefaultConfig(), nil
	}

	var parsed breath.RawConfig
	if stages, ok := fields["stages"]; ok {
		if err := json.Unmarshal(stages, &parsed.Stages); err != nil {
			s.logger.Warn("discarding malformed stages", "key", KeyConfig, "error", err)
			parsed.Stages = nil
		}
	}
	if rounds, ok := fields["rounds"]; ok {
		if err := json.Unmarshal(rounds, &parsed.Rounds); err != nil {
			parsed.Rounds = nil
		}
	}
	return breath.NormalizeConfig(parsed), nil
}

func (s *Store) SaveConfig(cfg breath.Config) error {
	return s.saveJSON(KeyConfig, cfg)
}

// LoadPresets returns the persisted presets, or the default presets when
// the value is missing or is not a list.
func (s *Store) LoadPresets() (breath.Presets, error) {
	raw, ok, err := s.loadJSON(KeyPresets)
	if err != nil || !ok {
		return breath.DefaultPresets(), err
	}

	var parsed []breath.RawPreset
	if err := json.Unmarshal(raw, &parsed); err != nil || parsed == nil {
		s.logger.Warn("discarding malformed presets", "key", KeyPresets, "error", err)
		return breath.DefaultPresets(), nil
	}
	return breath.Presets(breath.NormalizePresets(parsed)), nil
}

func (s *Store) SavePresets(presets breath.Presets) error {
	if presets == nil {
		presets = breath.Presets{}
	}
	return s.saveJSON(KeyPresets, presets)
}

// LoadTheme returns the persisted theme, light unless dark was saved.
func (s *Store) LoadTheme() (Theme, error) {
	raw, ok, err := s.loadJSON(KeyTheme)
	if err != nil || !ok {
		return ThemeLight, err
	}
	var theme Theme
	if err := json.Unmarshal(raw, &theme); err != nil {
		// Plain unquoted values are accepted too.
		theme = Theme(raw)
	}
	if theme == ThemeDark {
		return ThemeDark, nil
	}
	return ThemeLight, nil
}

func (s *Store) SaveTheme(theme Theme) error {
	if theme != ThemeDark {
		theme = ThemeLight
	}
	return s.saveJSON(KeyTheme, theme)
}

func (s *Store) loadJSON(key string) ([]byte, bool, error) {
	value, err := s.GetSetting(key)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(value), true, nil
}

func (s *Store) saveJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.SetSetting(key, string(data))
}
