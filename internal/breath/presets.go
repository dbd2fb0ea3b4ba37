package breath

import (
	"fmt"
	"strings"
)

const newPresetName = "New preset"

// Presets is the ordered list of saved presets. Like Config, every method
// returns a new list.
type Presets []Preset

// Find returns the preset with the given id.
func (ps Presets) Find(id string) (Preset, error) {
	for _, p := range ps {
		if p.ID == id {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %s", ErrPresetNotFound, id)
}

// Create appends a preset that snapshots the given configuration.
func (ps Presets) Create(name string, color Color, cfg Config) (Presets, Preset) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = newPresetName
	}
	rounds := cfg.Rounds
	if rounds < 1 {
		rounds = fallbackPresetRounds
	}
	preset := Preset{
		ID:     newID("preset"),
		Name:   name,
		Color:  coerceColor(color),
		Rounds: rounds,
		Stages: cloneStages(cfg.Stages),
	}
	return append(ps.clone(), preset), preset
}

// Update renames and recolors a preset. Its stages and rounds are kept.
func (ps Presets) Update(id, name string, color Color) Presets {
	name = strings.TrimSpace(name)
	if name == "" {
		name = placeholderPresetName
	}
	next := ps.clone()
	for i := range next {
		if next[i].ID == id {
			next[i].Name = name
			next[i].Color = coerceColor(color)
		}
	}
	return next
}

// Duplicate appends a copy of the preset with a new id.
func (ps Presets) Duplicate(id string) (Presets, string) {
	original, err := ps.Find(id)
	if err != nil {
		return ps, ""
	}
	dup := original
	dup.ID = newID("preset")
	dup.Name += copySuffix
	dup.Stages = cloneStages(original.Stages)
	return append(ps.clone(), dup), dup.ID
}

// Delete removes the preset with the given id.
func (ps Presets) Delete(id string) Presets {
	next := make(Presets, 0, len(ps))
	for _, p := range ps {
		if p.ID != id {
			next = append(next, p)
		}
	}
	return next
}

func (ps Presets) clone() Presets {
	next := make(Presets, len(ps))
	for i, p := range ps {
		p.Stages = cloneStages(p.Stages)
		next[i] = p
	}
	return next
}
