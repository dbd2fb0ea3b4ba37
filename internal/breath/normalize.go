package breath

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const (
	placeholderStageName  = "Stage"
	placeholderPresetName = "Preset"
	fallbackDuration      = 1
	fallbackPresetRounds  = 1
)

// RawStage is a stage as decoded from untrusted storage. Every field may be
// missing or carry the wrong type. Decoding never fails: an element that is
// not an object decodes to an empty RawStage.
type RawStage struct {
	ID       any `json:"id" yaml:"id"`
	Name     any `json:"name" yaml:"name"`
	Duration any `json:"duration" yaml:"duration"`
	Color    any `json:"color" yaml:"color"`
	Sound    any `json:"sound" yaml:"sound"`
}

// RawPreset is a preset as decoded from untrusted storage. A stages value
// that is not a list decodes to no stages.
type RawPreset struct {
	ID     any        `json:"id" yaml:"id"`
	Name   any        `json:"name" yaml:"name"`
	Color  any        `json:"color" yaml:"color"`
	Rounds any        `json:"rounds" yaml:"rounds"`
	Stages []RawStage `json:"stages" yaml:"stages"`
}

func (r *RawStage) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = rawStageFrom(v)
	return nil
}

func (r *RawStage) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	*r = rawStageFrom(v)
	return nil
}

func (r *RawPreset) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = rawPresetFrom(v)
	return nil
}

func (r *RawPreset) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	*r = rawPresetFrom(v)
	return nil
}

func rawStageFrom(v any) RawStage {
	fields, ok := v.(map[string]any)
	if !ok {
		return RawStage{}
	}
	return RawStage{
		ID:       fields["id"],
		Name:     fields["name"],
		Duration: fields["duration"],
		Color:    fields["color"],
		Sound:    fields["sound"],
	}
}

func rawPresetFrom(v any) RawPreset {
	fields, ok := v.(map[string]any)
	if !ok {
		return RawPreset{}
	}
	raw := RawPreset{
		ID:     fields["id"],
		Name:   fields["name"],
		Color:  fields["color"],
		Rounds: fields["rounds"],
	}
	if list, ok := fields["stages"].([]any); ok {
		raw.Stages = make([]RawStage, 0, len(list))
		for _, s := range list {
			raw.Stages = append(raw.Stages, rawStageFrom(s))
		}
	}
	return raw
}

// Raw converts a stage back into its raw form.
func (s Stage) Raw() RawStage {
	return RawStage{ID: s.ID, Name: s.Name, Duration: s.Duration, Color: string(s.Color), Sound: string(s.Sound)}
}

// Raw converts a preset back into its raw form.
func (p Preset) Raw() RawPreset {
	raw := RawPreset{ID: p.ID, Name: p.Name, Color: string(p.Color), Rounds: p.Rounds}
	for _, s := range p.Stages {
		raw.Stages = append(raw.Stages, s.Raw())
	}
	return raw
}

// NormalizeStage repairs a raw stage: a missing id is generated from the
// stage position and the current time, the duration is clamped to
// 1..MaxDuration seconds and unknown colors or sounds fall back to their
// defaults.
// Normalizing an already normal stage returns an equal stage.
func NormalizeStage(raw RawStage, index int) Stage {
	stage := Stage{
		Name:     placeholderStageName,
		Duration: clampDuration(coerceCount(raw.Duration, fallbackDuration)),
		Color:    coerceColor(raw.Color),
		Sound:    coerceSound(raw.Sound),
	}
	if id := coerceText(raw.ID); id != "" {
		stage.ID = id
	} else {
		stage.ID = positionalID("stage", index)
	}
	if name := coerceText(raw.Name); name != "" {
		stage.Name = name
	}
	return stage
}

// NormalizePreset repairs a raw preset and every stage it contains. Missing
// rounds default to one.
func NormalizePreset(raw RawPreset, index int) Preset {
	preset := Preset{
		Name:   placeholderPresetName,
		Color:  coerceColor(raw.Color),
		Rounds: coerceCount(raw.Rounds, fallbackPresetRounds),
		Stages: make([]Stage, 0, len(raw.Stages)),
	}
	if id := coerceText(raw.ID); id != "" {
		preset.ID = id
	} else {
		preset.ID = positionalID("preset", index)
	}
	if name := coerceText(raw.Name); name != "" {
		preset.Name = name
	}
	for i, s := range raw.Stages {
		preset.Stages = append(preset.Stages, NormalizeStage(s, i))
	}
	return preset
}

// RawConfig is a persisted active configuration before repair.
type RawConfig struct {
	Stages []RawStage `json:"stages" yaml:"stages"`
	Rounds any        `json:"rounds" yaml:"rounds"`
}

// NormalizeConfig repairs a persisted configuration. An empty stage list
// loads the default stages and an invalid round count loads DefaultRounds.
func NormalizeConfig(raw RawConfig) Config {
	cfg := Config{Rounds: coerceCount(raw.Rounds, DefaultRounds)}
	if len(raw.Stages) == 0 {
		cfg.Stages = DefaultStages()
		return cfg
	}
	cfg.Stages = NormalizeStages(raw.Stages)
	return cfg
}

// NormalizeStages normalizes a raw stage list in order.
func NormalizeStages(raw []RawStage) []Stage {
	stages := make([]Stage, 0, len(raw))
	for i, s := range raw {
		stages = append(stages, NormalizeStage(s, i))
	}
	return stages
}

// NormalizePresets normalizes a raw preset list in order.
func NormalizePresets(raw []RawPreset) []Preset {
	presets := make([]Preset, 0, len(raw))
	for i, p := range raw {
		presets = append(presets, NormalizePreset(p, i))
	}
	return presets
}

// coerceCount accepts numbers and numeric strings. Fractions are rounded;
// anything below one yields fallback.
func coerceCount(value any, fallback int) int {
	var f float64
	switch v := value.(type) {
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint64:
		f = float64(v)
	case float64:
		f = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fallback
		}
		f = parsed
	default:
		return fallback
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	n := math.Round(f)
	if n < 1 {
		return fallback
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

// coerceText accepts strings and numbers. Blank strings and every other
// type yield "".
func coerceText(value any) string {
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return ""
		}
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func coerceColor(value any) Color {
	switch v := value.(type) {
	case string:
		if c := Color(v); c.Valid() {
			return c
		}
	case Color:
		if v.Valid() {
			return v
		}
	}
	return DefaultColor
}

func coerceSound(value any) Sound {
	switch v := value.(type) {
	case string:
		if s := Sound(v); s.Valid() {
			return s
		}
	case Sound:
		if v.Valid() {
			return v
		}
	}
	return SoundNone
}

func positionalID(prefix string, index int) string {
	return fmt.Sprintf("%s-%d-%d-%s", prefix, index, time.Now().UnixMilli(), shortToken())
}

func newID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

func shortToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
