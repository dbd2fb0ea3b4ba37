package tui

import (
	"log/slog"

	"github.com/sadopc/breathr/internal/breath"
	"github.com/sadopc/breathr/internal/engine"
	"github.com/sadopc/breathr/internal/session"
	"github.com/sadopc/breathr/internal/store"
)

// workspace is the state shared by every view. Views hold a pointer to it so
// edits survive Bubble Tea's value copies of the models.
type workspace struct {
	store     *store.Store
	logger    *slog.Logger
	engine    *engine.Engine
	scheduler *engine.FrameScheduler
	recorder  *session.Recorder

	cfg      breath.Config
	presets  breath.Presets
	presetID string // preset last applied, cleared by manual edits
	theme    store.Theme

	completed []engine.Completion // since the last drain
}

func (w *workspace) onStageComplete(c engine.Completion) {
	w.recorder.StageComplete(c)
	w.completed = append(w.completed, c)
}

// drainCompletions returns the stage completions seen since the last call.
func (w *workspace) drainCompletions() []engine.Completion {
	out := w.completed
	w.completed = nil
	return out
}

// setConfig makes cfg the active configuration and persists it.
func (w *workspace) setConfig(cfg breath.Config) error {
	w.cfg = cfg
	if len(cfg.Stages) == 0 {
		w.recorder.Cancel()
	}
	w.engine.SetConfig(cfg)
	return w.store.SaveConfig(cfg)
}

// editConfig applies a manual edit; the result no longer matches a preset.
func (w *workspace) editConfig(cfg breath.Config) error {
	w.presetID = ""
	return w.setConfig(cfg)
}

func (w *workspace) setPresets(presets breath.Presets) error {
	w.presets = presets
	if _, err := presets.Find(w.presetID); err != nil {
		w.presetID = ""
	}
	return w.store.SavePresets(presets)
}

func (w *workspace) applyPreset(id string) (breath.Preset, error) {
	p, err := w.presets.Find(id)
	if err != nil {
		return breath.Preset{}, err
	}
	if err := w.setConfig(w.cfg.ApplyPreset(p)); err != nil {
		return p, err
	}
	w.presetID = p.ID
	return p, nil
}

func (w *workspace) label() string {
	if p, err := w.presets.Find(w.presetID); err == nil {
		return p.Name
	}
	return "Custom"
}

// toggle starts, resumes or pauses the timer. A fresh start opens a session.
func (w *workspace) toggle() error {
	switch w.engine.Phase() {
	case engine.PhaseRunning:
		w.engine.Pause()
	case engine.PhaseReady, engine.PhaseCompleted:
		if err := w.recorder.Begin(w.label(), w.cfg); err != nil {
			return err
		}
		w.engine.Start()
	case engine.PhasePaused:
		w.engine.Start()
	}
	return nil
}

func (w *workspace) reset() {
	w.recorder.Cancel()
	w.engine.Reset()
}

func (w *workspace) toggleTheme() error {
	w.theme = w.theme.Toggle()
	applyTheme(w.theme)
	return w.store.SaveTheme(w.theme)
}

// close cancels an unfinished session and stops the engine.
func (w *workspace) close() {
	w.recorder.Cancel()
	w.engine.Stop()
}
