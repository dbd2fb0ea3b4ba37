package breath

import "strings"

const (
	newStageName     = "New stage"
	newStageDuration = 5
	copySuffix       = " (copy)"
)

// Config is the active configuration loaded into the timer: an ordered
// stage list and a round count. Every edit returns a new Config and leaves
// the receiver's stage slice untouched, so a running engine never observes a
// half-applied edit.
type Config struct {
	Stages []Stage `json:"stages"`
	Rounds int     `json:"rounds"`
}

// TotalSeconds is the length of a complete run.
func (c Config) TotalSeconds() int {
	return totalSeconds(c.Stages, c.Rounds)
}

func (c Config) indexOf(id string) int {
	for i, s := range c.Stages {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Stage returns the stage with the given id.
func (c Config) Stage(id string) (Stage, bool) {
	if i := c.indexOf(id); i >= 0 {
		return c.Stages[i], true
	}
	return Stage{}, false
}

// SetRounds replaces the round count. Values below one become one.
func (c Config) SetRounds(rounds int) Config {
	if rounds < 1 {
		rounds = 1
	}
	c.Rounds = rounds
	c.Stages = cloneStages(c.Stages)
	return c
}

// AddStage appends a new stage with default values and returns its id.
func (c Config) AddStage() (Config, string) {
	stage := Stage{
		ID:       newID("stage"),
		Name:     newStageName,
		Duration: newStageDuration,
		Color:    DefaultColor,
		Sound:    SoundNone,
	}
	c.Stages = append(cloneStages(c.Stages), stage)
	return c, stage.ID
}

// DeleteStage removes the stage with the given id. Removing the last stage
// is allowed; the engine treats an empty list as idle.
func (c Config) DeleteStage(id string) Config {
	next := make([]Stage, 0, len(c.Stages))
	for _, s := range c.Stages {
		if s.ID != id {
			next = append(next, s)
		}
	}
	c.Stages = next
	return c
}

// DuplicateStage inserts a copy right after the original. The copy gets a
// new id, no sound and a name marked as a copy.
func (c Config) DuplicateStage(id string) (Config, string) {
	index := c.indexOf(id)
	if index < 0 {
		return c, ""
	}
	dup := c.Stages[index]
	dup.ID = newID("stage")
	dup.Name += copySuffix
	dup.Sound = SoundNone

	next := make([]Stage, 0, len(c.Stages)+1)
	next = append(next, c.Stages[:index+1]...)
	next = append(next, dup)
	next = append(next, c.Stages[index+1:]...)
	c.Stages = next
	return c, dup.ID
}

// ReorderStages removes the source stage and reinserts it at the target's
// former position. Unknown ids or source == target leave the order as is.
func (c Config) ReorderStages(sourceID, targetID string) Config {
	if sourceID == targetID {
		return c
	}
	from, to := c.indexOf(sourceID), c.indexOf(targetID)
	if from < 0 || to < 0 {
		return c
	}
	next := cloneStages(c.Stages)
	moved := next[from]
	next = append(next[:from], next[from+1:]...)
	next = append(next[:to], append([]Stage{moved}, next[to:]...)...)
	c.Stages = next
	return c
}

// RenameStage sets the stage name. Blank names become the placeholder.
func (c Config) RenameStage(id, name string) Config {
	if strings.TrimSpace(name) == "" {
		name = placeholderStageName
	}
	return c.updateStage(id, func(s *Stage) { s.Name = name })
}

// SetStageDuration sets the stage duration in seconds. Values below one
// become one.
func (c Config) SetStageDuration(id string, seconds int) Config {
	seconds = clampDuration(seconds)
	return c.updateStage(id, func(s *Stage) { s.Duration = seconds })
}

// SetStageColor sets the stage color; unknown colors become the default.
func (c Config) SetStageColor(id string, color Color) Config {
	color = coerceColor(color)
	return c.updateStage(id, func(s *Stage) { s.Color = color })
}

// SetStageSound sets the stage sound; unknown sounds become SoundNone.
func (c Config) SetStageSound(id string, sound Sound) Config {
	sound = coerceSound(sound)
	return c.updateStage(id, func(s *Stage) { s.Sound = sound })
}

func (c Config) updateStage(id string, apply func(*Stage)) Config {
	index := c.indexOf(id)
	if index < 0 {
		return c
	}
	c.Stages = cloneStages(c.Stages)
	apply(&c.Stages[index])
	return c
}

// ApplyPreset replaces the whole configuration with the preset's stages and
// rounds. Stages are cloned with new ids so later edits never reach the
// stored preset.
func (c Config) ApplyPreset(p Preset) Config {
	stages := make([]Stage, 0, len(p.Stages))
	for _, s := range p.Stages {
		s.ID = s.ID + "-" + shortToken()
		stages = append(stages, s)
	}
	rounds := p.Rounds
	if rounds < 1 {
		rounds = fallbackPresetRounds
	}
	return Config{Stages: stages, Rounds: rounds}
}
