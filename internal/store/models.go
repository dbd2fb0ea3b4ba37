package store

import "time"

// Keys of the persisted application state in the settings table.
const (
	KeyConfig  = "breathing-timer-config"
	KeyTheme   = "breathing-timer-theme"
	KeyPresets = "breathing-timer-presets"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

type SessionStatus string

const (
	StatusRunning   SessionStatus = "running"
	StatusCompleted SessionStatus = "completed"
	StatusCancelled SessionStatus = "cancelled"
)

// Session is one recorded run of the timer.
type Session struct {
	ID             int64
	Label          string
	StageCount     int
	Rounds         int
	CompletedCount int   // stages finished
	TotalSeconds   int64 // seconds of finished stages
	Status         SessionStatus
	StartedAt      time.Time
	CompletedAt    *time.Time
}

type Setting struct {
	Key   string
	Value string
}

// SessionFilter is used to filter sessions in queries.
type SessionFilter struct {
	Status *SessionStatus
	From   *time.Time
	To     *time.Time
	Limit  int
}

// DailySummary aggregates finished sessions per day.
type DailySummary struct {
	Date           string
	SessionCount   int
	CompletedCount int
	TotalSeconds   int64
}
