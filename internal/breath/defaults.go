package breath

// DefaultRounds is used when no valid round count is stored.
const DefaultRounds = 4

// DefaultStages returns the built-in stage list.
func DefaultStages() []Stage {
	return []Stage{
		{ID: "inhale-4", Name: "Inhale", Duration: 4, Color: ColorPurple, Sound: SoundNone},
		{ID: "exhale-7", Name: "Exhale", Duration: 7, Color: ColorGreen, Sound: SoundNone},
	}
}

// DefaultConfig returns the configuration used on first start.
func DefaultConfig() Config {
	return Config{Stages: DefaultStages(), Rounds: DefaultRounds}
}

// DefaultPresets returns the built-in presets.
func DefaultPresets() Presets {
	return Presets{
		{
			ID:     "preset-basic-4-7",
			Name:   "4-7 relax",
			Color:  ColorPurple,
			Rounds: 5,
			Stages: []Stage{
				{ID: "p1-inhale-4", Name: "Inhale", Duration: 4, Color: ColorPurple, Sound: SoundNone},
				{ID: "p1-exhale-7", Name: "Exhale", Duration: 7, Color: ColorGreen, Sound: SoundNone},
			},
		},
		{
			ID:     "preset-4-7-8",
			Name:   "4-7-8 sleep",
			Color:  ColorTeal,
			Rounds: 4,
			Stages: []Stage{
				{ID: "p2-inhale-4", Name: "Inhale", Duration: 4, Color: ColorBlue, Sound: SoundNone},
				{ID: "p2-hold-7", Name: "Hold", Duration: 7, Color: ColorAmber, Sound: SoundNone},
				{ID: "p2-exhale-8", Name: "Exhale", Duration: 8, Color: ColorGreen, Sound: SoundNone},
			},
		},
		{
			ID:     "preset-box-4",
			Name:   "Box 4-4-4-4",
			Color:  ColorAmber,
			Rounds: 4,
			Stages: []Stage{
				{ID: "p3-inhale-4", Name: "Inhale", Duration: 4, Color: ColorBlue, Sound: SoundNone},
				{ID: "p3-hold-4-1", Name: "Hold", Duration: 4, Color: ColorAmber, Sound: SoundNone},
				{ID: "p3-exhale-4", Name: "Exhale", Duration: 4, Color: ColorGreen, Sound: SoundNone},
				{ID: "p3-hold-4-2", Name: "Hold", Duration: 4, Color: ColorAmber, Sound: SoundNone},
			},
		},
	}
}
