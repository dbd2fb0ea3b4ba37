package engine

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/sadopc/breathr/internal/breath"
)

// Engine runs a breathing session over a stage list for a number of rounds.
// All methods are safe for concurrent use. Stage-complete handlers run while
// the engine lock is held and must not call back into the engine.
type Engine struct {
	mu sync.Mutex

	clock     Clock
	scheduler Scheduler
	logger    *slog.Logger

	stages []breath.Stage
	rounds int
	state  State

	generation uint64
	cancelTick func()
	lastTick   time.Time

	onComplete  func(Completion)
	subscribers []chan Event
}

type Option func(*Engine)

func WithClock(clock Clock) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an engine in the Ready state (Idle when cfg has no stages).
func New(cfg breath.Config, scheduler Scheduler, opts ...Option) *Engine {
	e := &Engine{
		clock:     SystemClock{},
		scheduler: scheduler,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		state:     InitialState(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.stages, e.rounds = normalizeConfig(cfg)
	return e
}

func normalizeConfig(cfg breath.Config) ([]breath.Stage, int) {
	stages := make([]breath.Stage, len(cfg.Stages))
	copy(stages, cfg.Stages)
	rounds := cfg.Rounds
	if rounds < 1 {
		rounds = 1
	}
	return stages, rounds
}

// OnStageComplete registers the synchronous stage-complete handler,
// replacing any previous one. It is invoked before the state transition.
func (e *Engine) OnStageComplete(fn func(Completion)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onComplete = fn
}

// Subscribe returns a channel of engine events. Sends never block; a full
// channel drops the event.
func (e *Engine) Subscribe(buffer int) <-chan Event {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	e.mu.Lock()
	e.subscribers = append(e.subscribers, ch)
	e.mu.Unlock()
	return ch
}

// Start begins or resumes the session. Starting a completed session starts
// over from round 1. No-op without stages or while running.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.stages) == 0 || e.state.Running {
		return
	}

	event := EventResumed
	if _, ok := currentStage(e.state, e.stages); e.state.Completed || !ok {
		e.state = InitialState()
	}
	if !e.state.Started {
		event = EventStarted
	}
	e.state.Running = true
	e.state.Started = true
	e.armLocked()

	e.logger.Debug("timer started", "event", event, "round", e.state.Round, "stage", e.state.StageIndex)
	e.emitLocked(Event{Type: event})
}

// Pause stops ticking and keeps round, stage and elapsed time.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.Running {
		return
	}
	e.cancelLocked()
	e.state.Running = false

	e.logger.Debug("timer paused", "round", e.state.Round, "stage", e.state.StageIndex, "elapsed", e.state.Elapsed)
	e.emitLocked(Event{Type: EventPaused})
}

// Reset returns to round 1, first stage, zero elapsed, not running.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelLocked()
	e.state = InitialState()
	e.emitLocked(Event{Type: EventReset})
}

// SetConfig replaces the stages and rounds. An out-of-range stage index is
// clamped to 0; round and elapsed time are kept. An empty stage list resets
// the engine.
func (e *Engine) SetConfig(cfg breath.Config) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stages, e.rounds = normalizeConfig(cfg)
	if len(e.stages) == 0 {
		e.cancelLocked()
		e.state = InitialState()
		e.emitLocked(Event{Type: EventReset})
		return
	}
	if _, ok := currentStage(e.state, e.stages); !ok {
		e.state.StageIndex = 0
	}
	if e.state.Running {
		e.armLocked()
	}
}

// SetStages replaces the stage list and keeps the round count.
func (e *Engine) SetStages(stages []breath.Stage) {
	e.mu.Lock()
	rounds := e.rounds
	e.mu.Unlock()
	e.SetConfig(breath.Config{Stages: stages, Rounds: rounds})
}

// Stop cancels any pending tick and closes subscriber channels.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelLocked()
	e.state.Running = false
	for _, ch := range e.subscribers {
		close(ch)
	}
	e.subscribers = nil
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return PhaseOf(e.state, e.stages)
}

func (e *Engine) Display() Display {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ComputeDisplay(e.state, e.stages)
}

// Config returns a copy of the stages and rounds the engine runs.
func (e *Engine) Config() breath.Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	stages := make([]breath.Stage, len(e.stages))
	copy(stages, e.stages)
	return breath.Config{Stages: stages, Rounds: e.rounds}
}

// armLocked cancels any pending tick, restarts delta measurement at the
// current clock reading and schedules a new tick.
func (e *Engine) armLocked() {
	e.cancelLocked()
	e.lastTick = e.clock.Now()
	e.scheduleLocked()
}

func (e *Engine) scheduleLocked() {
	e.generation++
	generation := e.generation
	e.cancelTick = e.scheduler.ScheduleNextTick(func(now time.Time) {
		e.tick(generation, now)
	})
}

func (e *Engine) cancelLocked() {
	e.generation++
	if e.cancelTick != nil {
		e.cancelTick()
		e.cancelTick = nil
	}
}

func (e *Engine) tick(generation uint64, now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Callbacks from a cancelled schedule can still arrive from timer goroutines.
	if generation != e.generation || !e.state.Running {
		return
	}
	e.cancelTick = nil

	delta := now.Sub(e.lastTick)
	if delta < 0 {
		delta = 0
	}
	e.lastTick = now

	next, completion := Advance(e.state, e.stages, e.rounds, delta)
	if completion != nil {
		e.logger.Debug("stage complete",
			"stage", completion.Finished.Name,
			"round", completion.Round,
			"last", completion.Next == nil,
		)
		if e.onComplete != nil {
			e.onComplete(*completion)
		}
		c := *completion
		e.state = next
		e.emitLocked(Event{Type: EventStageComplete, Completion: &c})
		if next.Completed {
			e.emitLocked(Event{Type: EventFinished})
		}
	} else {
		e.state = next
	}

	if e.state.Running {
		e.scheduleLocked()
	}
}

func (e *Engine) emitLocked(event Event) {
	event.State = e.state
	if event.At.IsZero() {
		event.At = e.clock.Now()
	}
	for _, ch := range e.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
