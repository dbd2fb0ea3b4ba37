package export

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/breathr/internal/breath"
)

// WritePresets writes presets as JSON or YAML depending on the extension.
func WritePresets(presets breath.Presets, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if presets == nil {
		presets = breath.Presets{}
	}

	var data []byte
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(presets, "", "  ")
	case FormatYAML:
		data, err = yaml.Marshal(presets)
	default:
		return fmt.Errorf("%w for presets: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return fmt.Errorf("marshal presets: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write presets file: %w", err)
	}
	return nil
}

// ReadPresets reads and normalizes presets from a JSON or YAML file.
func ReadPresets(path string) (breath.Presets, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets file: %w", err)
	}

	var raw []breath.RawPreset
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &raw)
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("%w for presets: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	return breath.Presets(breath.NormalizePresets(raw)), nil
}

// MergePresets appends imported presets to existing ones. Imported presets
// whose id is already taken get a fresh id.
func MergePresets(existing, imported breath.Presets) breath.Presets {
	merged := make(breath.Presets, 0, len(existing)+len(imported))
	merged = append(merged, existing...)
	taken := make(map[string]bool, len(existing))
	for _, p := range existing {
		taken[p.ID] = true
	}
	for _, p := range imported {
		if taken[p.ID] {
			p.ID = ""
			p = breath.NormalizePreset(p.Raw(), len(merged))
		}
		taken[p.ID] = true
		merged = append(merged, p)
	}
	return merged
}
