package engine

import "time"

// EventType defines the type of engine event.
type EventType string

const (
	EventStarted       EventType = "started"
	EventResumed       EventType = "resumed"
	EventPaused        EventType = "paused"
	EventReset         EventType = "reset"
	EventStageComplete EventType = "stage_complete"
	EventFinished      EventType = "finished"
)

// Event represents an engine update for asynchronous observers.
type Event struct {
	Type       EventType
	State      State
	Completion *Completion
	At         time.Time
}
