package engine

import (
	"math"
	"time"

	"github.com/sadopc/breathr/internal/breath"
)

// Phase is the externally visible engine mode.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseReady     Phase = "ready"
	PhaseRunning   Phase = "running"
	PhasePaused    Phase = "paused"
	PhaseCompleted Phase = "completed"
)

// State is the complete engine state. Round is 1-based, StageIndex 0-based.
// Started is set by the first Start after a reset and tells a paused
// session apart from one that never ran.
type State struct {
	Round      int
	StageIndex int
	Elapsed    time.Duration
	Running    bool
	Started    bool
	Completed  bool
}

// InitialState is the state after Reset.
func InitialState() State {
	return State{Round: 1}
}

// Completion describes a finished stage. Next is nil when the finished stage
// was the last stage of the last round.
type Completion struct {
	Finished breath.Stage
	Round    int
	Next     *breath.Stage
}

// Display holds the values a presentation layer renders every frame.
type Display struct {
	Stage      *breath.Stage
	StageIndex int
	Round      int
	Remaining  int     // whole seconds, rounded up
	Progress   float64 // percent, 0..100
}

func stageLength(s breath.Stage) time.Duration {
	return time.Duration(min(s.Duration, breath.MaxDuration)) * time.Second
}

func currentStage(state State, stages []breath.Stage) (breath.Stage, bool) {
	if state.StageIndex < 0 || state.StageIndex >= len(stages) {
		return breath.Stage{}, false
	}
	return stages[state.StageIndex], true
}

// Advance applies one tick of delta to a running state. When the current
// stage's duration is reached it returns the completion for that stage
// together with the transitioned state. At most one transition happens per
// call: elapsed restarts at zero on the next stage and the overshoot of the
// tick is dropped.
func Advance(state State, stages []breath.Stage, rounds int, delta time.Duration) (State, *Completion) {
	if !state.Running {
		return state, nil
	}
	stage, ok := currentStage(state, stages)
	if !ok {
		return state, nil
	}
	if delta > 0 {
		state.Elapsed += delta
	}
	if state.Elapsed < stageLength(stage) {
		return state, nil
	}

	if rounds < 1 {
		rounds = 1
	}
	lastStage := state.StageIndex == len(stages)-1
	lastRound := state.Round >= rounds

	completion := &Completion{Finished: stage, Round: state.Round}
	switch {
	case !lastStage:
		next := stages[state.StageIndex+1]
		completion.Next = &next
		state.StageIndex++
		state.Elapsed = 0
	case !lastRound:
		next := stages[0]
		completion.Next = &next
		state.Round++
		state.StageIndex = 0
		state.Elapsed = 0
	default:
		state.Running = false
		state.Completed = true
	}
	return state, completion
}

// ComputeDisplay derives remaining time and progress from the state. With
// no current stage both are zero.
func ComputeDisplay(state State, stages []breath.Stage) Display {
	display := Display{StageIndex: state.StageIndex, Round: state.Round}
	stage, ok := currentStage(state, stages)
	if !ok {
		return display
	}
	display.Stage = &stage

	length := stageLength(stage)
	if length <= 0 {
		display.Progress = 100
		return display
	}

	remaining := (length - state.Elapsed).Seconds()
	display.Remaining = int(math.Max(0, math.Ceil(remaining)))

	elapsed := state.Elapsed
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > length {
		elapsed = length
	}
	display.Progress = float64(elapsed) / float64(length) * 100
	return display
}

// PhaseOf classifies a state for the given stage list.
func PhaseOf(state State, stages []breath.Stage) Phase {
	switch {
	case len(stages) == 0:
		return PhaseIdle
	case state.Completed:
		return PhaseCompleted
	case state.Running:
		return PhaseRunning
	case state.Started:
		return PhasePaused
	default:
		return PhaseReady
	}
}
