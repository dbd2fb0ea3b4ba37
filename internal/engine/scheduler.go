package engine

import (
	"sync"
	"time"
)

// Clock abstracts time so the engine can run against simulated time in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// Scheduler arms a single callback for the next frame. The returned cancel
// function disarms it; calling cancel after the callback ran is harmless.
type Scheduler interface {
	ScheduleNextTick(callback func(now time.Time)) (cancel func())
}

// FrameInterval converts a frame rate into a tick interval.
func FrameInterval(fps int) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Second / time.Duration(fps)
}

// FrameScheduler holds at most one pending callback and runs it when the
// host calls Fire. Hosts with their own frame loop (the terminal UI, tests)
// drive the engine through it.
type FrameScheduler struct {
	mu      sync.Mutex
	pending func(time.Time)
	token   uint64
}

func NewFrameScheduler() *FrameScheduler {
	return &FrameScheduler{}
}

func (s *FrameScheduler) ScheduleNextTick(callback func(now time.Time)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token++
	token := s.token
	s.pending = callback
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.token == token {
			s.pending = nil
		}
	}
}

// Pending reports whether a callback is armed.
func (s *FrameScheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Fire runs the pending callback, if any. The callback may arm the next one.
func (s *FrameScheduler) Fire(now time.Time) bool {
	s.mu.Lock()
	callback := s.pending
	s.pending = nil
	s.mu.Unlock()

	if callback == nil {
		return false
	}
	callback(now)
	return true
}

// TimerScheduler fires callbacks from a runtime timer after a fixed
// interval. Used by the headless runner.
type TimerScheduler struct {
	interval time.Duration
	clock    Clock
}

func NewTimerScheduler(interval time.Duration, clock Clock) *TimerScheduler {
	if interval <= 0 {
		interval = FrameInterval(60)
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &TimerScheduler{interval: interval, clock: clock}
}

func (s *TimerScheduler) ScheduleNextTick(callback func(now time.Time)) func() {
	timer := time.AfterFunc(s.interval, func() {
		callback(s.clock.Now())
	})
	return func() {
		timer.Stop()
	}
}
