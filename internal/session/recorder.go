// Package session records timer runs in the store and plays stage sounds.
package session

import (
	"io"
	"log/slog"

	"github.com/sadopc/breathr/internal/breath"
	"github.com/sadopc/breathr/internal/engine"
	"github.com/sadopc/breathr/internal/store"
)

// Notifier is notified of every finished stage.
type Notifier interface {
	StageComplete(stage breath.Stage)
}

// Recorder turns engine callbacks into session rows. It is not safe for
// concurrent use; callers serialize Begin, Cancel and StageComplete, which
// the engine lock already does for the stage-complete handler.
type Recorder struct {
	store    *store.Store
	notifier Notifier
	logger   *slog.Logger

	id       int64
	onFinish func(store.Session)
}

func NewRecorder(s *store.Store, notifier Notifier, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Recorder{store: s, notifier: notifier, logger: logger}
}

// OnFinish registers a callback for sessions that run to completion.
func (r *Recorder) OnFinish(fn func(store.Session)) {
	r.onFinish = fn
}

// Active reports whether a session is being recorded.
func (r *Recorder) Active() bool {
	return r.id != 0
}

// ID returns the current session id, or 0.
func (r *Recorder) ID() int64 {
	return r.id
}

// Begin starts recording a run of cfg. A session still open is cancelled first.
func (r *Recorder) Begin(label string, cfg breath.Config) error {
	if r.id != 0 {
		r.Cancel()
	}
	if r.store == nil {
		return nil
	}
	sess, err := r.store.StartSession(label, len(cfg.Stages), cfg.Rounds)
	if err != nil {
		return err
	}
	r.id = sess.ID
	r.logger.Info("session started", "session", sess.ID, "label", label, "stages", len(cfg.Stages), "rounds", cfg.Rounds)
	return nil
}

// Cancel marks the open session as cancelled.
func (r *Recorder) Cancel() {
	if r.id == 0 {
		return
	}
	id := r.id
	r.id = 0
	if err := r.store.CancelSession(id); err != nil {
		r.logger.Warn("cancel session", "session", id, "error", err)
		return
	}
	r.logger.Info("session cancelled", "session", id)
}

// StageComplete is the engine stage-complete handler. It must not call
// back into the engine.
func (r *Recorder) StageComplete(c engine.Completion) {
	if r.notifier != nil {
		r.notifier.StageComplete(c.Finished)
	}
	if r.id == 0 {
		return
	}

	if err := r.store.RecordStage(r.id, c.Finished.Duration); err != nil {
		r.logger.Warn("record stage", "session", r.id, "error", err)
	}
	if c.Next != nil {
		return
	}

	id := r.id
	r.id = 0
	if err := r.store.CompleteSession(id); err != nil {
		r.logger.Warn("complete session", "session", id, "error", err)
		return
	}
	r.logger.Info("session completed", "session", id)
	if r.onFinish != nil {
		if sess, err := r.store.GetSession(id); err == nil {
			r.onFinish(*sess)
		}
	}
}
