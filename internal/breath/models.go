package breath

import "errors"

// ErrPresetNotFound is returned when a preset id does not match any stored preset.
var ErrPresetNotFound = errors.New("preset not found")

// Color is one of the fixed stage palette entries.
type Color string

const (
	ColorPurple Color = "purple"
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorOrange Color = "orange"
	ColorRed    Color = "red"
	ColorTeal   Color = "teal"
	ColorPink   Color = "pink"
	ColorAmber  Color = "amber"
	ColorYellow Color = "yellow"
)

// DefaultColor is used for missing or unknown colors.
const DefaultColor = ColorPurple

var palette = []Color{
	ColorPurple, ColorBlue, ColorGreen, ColorOrange, ColorRed,
	ColorTeal, ColorPink, ColorAmber, ColorYellow,
}

var colorHex = map[Color]string{
	ColorPurple: "#9c27b0",
	ColorBlue:   "#1976d2",
	ColorGreen:  "#2e7d32",
	ColorOrange: "#ed6c02",
	ColorRed:    "#d32f2f",
	ColorTeal:   "#00897b",
	ColorPink:   "#d81b60",
	ColorAmber:  "#ffb300",
	ColorYellow: "#ffed29",
}

// Colors returns the palette in display order.
func Colors() []Color {
	return append([]Color(nil), palette...)
}

func (c Color) Valid() bool {
	_, ok := colorHex[c]
	return ok
}

// Hex returns the RGB hex value used to render the color.
func (c Color) Hex() string {
	if hex, ok := colorHex[c]; ok {
		return hex
	}
	return colorHex[DefaultColor]
}

// Sound is an effect played when a stage finishes.
type Sound string

const (
	SoundNone      Sound = "none"
	SoundMarimba   Sound = "sound1"
	SoundRingtone  Sound = "sound2"
	SoundTimerTick Sound = "sound3"
)

var soundLabels = map[Sound]string{
	SoundNone:      "None",
	SoundMarimba:   "Marimba",
	SoundRingtone:  "Ringtone",
	SoundTimerTick: "Timer tick",
}

// Sounds returns every known effect, SoundNone first.
func Sounds() []Sound {
	return []Sound{SoundNone, SoundMarimba, SoundRingtone, SoundTimerTick}
}

func (s Sound) Valid() bool {
	_, ok := soundLabels[s]
	return ok
}

func (s Sound) Label() string {
	if label, ok := soundLabels[s]; ok {
		return label
	}
	return soundLabels[SoundNone]
}

// Stage is one timed phase of a breathing cycle.
type Stage struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Duration int    `json:"duration" yaml:"duration"` // seconds
	Color    Color  `json:"color" yaml:"color"`
	Sound    Sound  `json:"sound,omitempty" yaml:"sound,omitempty"`
}

// Preset is a named, reusable stage sequence with its round count.
type Preset struct {
	ID     string  `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name"`
	Color  Color   `json:"color" yaml:"color"`
	Rounds int     `json:"rounds" yaml:"rounds"`
	Stages []Stage `json:"stages" yaml:"stages"`
}

// TotalSeconds is the length of one full run of the preset.
func (p Preset) TotalSeconds() int {
	return totalSeconds(p.Stages, p.Rounds)
}

func totalSeconds(stages []Stage, rounds int) int {
	var perRound int
	for _, s := range stages {
		perRound += s.Duration
	}
	return perRound * rounds
}

func cloneStages(stages []Stage) []Stage {
	if stages == nil {
		return nil
	}
	return append([]Stage(nil), stages...)
}
