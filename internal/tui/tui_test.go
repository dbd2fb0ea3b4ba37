package tui

import (
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/breathr/internal/breath"
	"github.com/sadopc/breathr/internal/engine"
	"github.com/sadopc/breathr/internal/store"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestApp(t *testing.T, s *store.Store) (App, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	app, err := NewApp(s, Config{Clock: clock})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(app.Close)
	return app, clock
}

func keyPress(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func send(t *testing.T, a App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	m, cmd := a.Update(msg)
	app, ok := m.(App)
	if !ok {
		t.Fatalf("Update returned %T", m)
	}
	return app, cmd
}

func press(t *testing.T, a App, keys ...string) App {
	t.Helper()
	for _, k := range keys {
		a, _ = send(t, a, keyPress(k))
	}
	return a
}

func saveShortConfig(t *testing.T, s *store.Store) {
	t.Helper()
	cfg := breath.Config{
		Rounds: 1,
		Stages: []breath.Stage{
			{ID: "a", Name: "Inhale", Duration: 1, Color: breath.ColorBlue, Sound: breath.SoundNone},
			{ID: "b", Name: "Exhale", Duration: 1, Color: breath.ColorGreen, Sound: breath.SoundNone},
		},
	}
	if err := s.SaveConfig(cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}
}

// ============================================================
// App setup
// ============================================================

func TestNewAppLoadsDefaults(t *testing.T) {
	s := newTestStore(t)
	a, _ := newTestApp(t, s)

	if len(a.ws.cfg.Stages) != 2 || a.ws.cfg.Rounds != breath.DefaultRounds {
		t.Fatalf("expected default config, got %+v", a.ws.cfg)
	}
	if len(a.ws.presets) != 3 {
		t.Fatalf("expected 3 default presets, got %d", len(a.ws.presets))
	}
	if a.ws.theme != store.ThemeLight {
		t.Fatalf("expected light theme, got %s", a.ws.theme)
	}
	if a.activeView != viewTimer {
		t.Fatal("should start on the timer view")
	}
	if a.ws.engine.Phase() != engine.PhaseReady {
		t.Fatalf("expected ready, got %s", a.ws.engine.Phase())
	}
}

func TestNewAppLoadsStoredTheme(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveTheme(store.ThemeDark); err != nil {
		t.Fatal(err)
	}
	a, _ := newTestApp(t, s)
	t.Cleanup(func() { applyTheme(store.ThemeLight) })
	if a.ws.theme != store.ThemeDark {
		t.Fatalf("expected dark theme, got %s", a.ws.theme)
	}
}

// ============================================================
// Timer control
// ============================================================

func TestToggleStartsSession(t *testing.T) {
	s := newTestStore(t)
	a, _ := newTestApp(t, s)

	a, cmd := send(t, a, keyPress(" "))
	if a.ws.engine.Phase() != engine.PhaseRunning {
		t.Fatalf("expected running, got %s", a.ws.engine.Phase())
	}
	if !a.ticking || cmd == nil {
		t.Fatal("start should schedule a frame tick")
	}
	if !a.ws.recorder.Active() {
		t.Fatal("start should open a session")
	}
	sess, err := s.GetRunningSession()
	if err != nil {
		t.Fatal(err)
	}
	if sess == nil || sess.Label != "Custom" || sess.StageCount != 2 {
		t.Fatalf("unexpected running session: %+v", sess)
	}
}

func TestTogglePauseResume(t *testing.T) {
	s := newTestStore(t)
	a, clock := newTestApp(t, s)

	a = press(t, a, " ")
	a, _ = send(t, a, tickMsg(clock.advance(500*time.Millisecond)))

	a = press(t, a, " ")
	if a.ws.engine.Phase() != engine.PhasePaused {
		t.Fatalf("expected paused, got %s", a.ws.engine.Phase())
	}
	if a.ws.scheduler.Pending() {
		t.Fatal("pause should cancel the pending tick")
	}
	elapsed := a.ws.engine.State().Elapsed

	// Time passing while paused is not counted.
	clock.advance(time.Hour)
	a = press(t, a, " ")
	if a.ws.engine.Phase() != engine.PhaseRunning {
		t.Fatalf("expected running, got %s", a.ws.engine.Phase())
	}
	if got := a.ws.engine.State().Elapsed; got != elapsed {
		t.Fatalf("resume changed elapsed: %v != %v", got, elapsed)
	}

	sessions, _ := s.ListSessions(store.SessionFilter{})
	if len(sessions) != 1 {
		t.Fatalf("resume should keep the same session, got %d", len(sessions))
	}
}

func TestPauseBeforeFirstTickKeepsSession(t *testing.T) {
	s := newTestStore(t)
	a, _ := newTestApp(t, s)

	a = press(t, a, " ", " ")
	if a.ws.engine.Phase() != engine.PhasePaused {
		t.Fatalf("expected paused, got %s", a.ws.engine.Phase())
	}
	a = press(t, a, " ")
	if a.ws.engine.Phase() != engine.PhaseRunning {
		t.Fatalf("expected running, got %s", a.ws.engine.Phase())
	}

	sessions, err := s.ListSessions(store.SessionFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 || sessions[0].Status != store.StatusRunning {
		t.Fatalf("resume should keep the open session, got %+v", sessions)
	}
}

func TestTicksRunSessionToCompletion(t *testing.T) {
	s := newTestStore(t)
	saveShortConfig(t, s)
	a, clock := newTestApp(t, s)

	a = press(t, a, " ")

	a, _ = send(t, a, tickMsg(clock.advance(time.Second)))
	if a.status != "Inhale done, next: Exhale" {
		t.Fatalf("unexpected status: %q", a.status)
	}
	if !a.ticking {
		t.Fatal("should keep ticking while running")
	}

	a, cmd := send(t, a, tickMsg(clock.advance(time.Second)))
	if a.status != "Session complete" {
		t.Fatalf("unexpected status: %q", a.status)
	}
	if cmd == nil {
		t.Fatal("finished session should refresh history")
	}
	if a.ticking {
		t.Fatal("ticking should stop after completion")
	}
	if a.ws.engine.Phase() != engine.PhaseCompleted {
		t.Fatalf("expected completed, got %s", a.ws.engine.Phase())
	}

	sessions, err := s.ListSessions(store.SessionFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	got := sessions[0]
	if got.Status != store.StatusCompleted || got.CompletedCount != 2 || got.TotalSeconds != 2 {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestRestartAfterCompletionOpensNewSession(t *testing.T) {
	s := newTestStore(t)
	saveShortConfig(t, s)
	a, clock := newTestApp(t, s)

	a = press(t, a, " ")
	a, _ = send(t, a, tickMsg(clock.advance(time.Second)))
	a, _ = send(t, a, tickMsg(clock.advance(time.Second)))

	a = press(t, a, " ")
	st := a.ws.engine.State()
	if !st.Running || st.Round != 1 || st.StageIndex != 0 {
		t.Fatalf("expected fresh run, got %+v", st)
	}
	sessions, _ := s.ListSessions(store.SessionFilter{})
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
}

func TestResetCancelsSession(t *testing.T) {
	s := newTestStore(t)
	a, clock := newTestApp(t, s)

	a = press(t, a, " ")
	a, _ = send(t, a, tickMsg(clock.advance(time.Second)))
	a = press(t, a, "r")

	st := a.ws.engine.State()
	if st != engine.InitialState() {
		t.Fatalf("expected initial state, got %+v", st)
	}
	sessions, _ := s.ListSessions(store.SessionFilter{})
	if len(sessions) != 1 || sessions[0].Status != store.StatusCancelled {
		t.Fatalf("expected cancelled session, got %+v", sessions)
	}
}

func TestStaleTickIsHarmless(t *testing.T) {
	s := newTestStore(t)
	a, clock := newTestApp(t, s)

	a, _ = send(t, a, tickMsg(clock.advance(time.Second)))
	if a.ticking {
		t.Fatal("tick without a running engine should not keep ticking")
	}
	if a.ws.engine.Phase() != engine.PhaseReady {
		t.Fatalf("expected ready, got %s", a.ws.engine.Phase())
	}
}

func TestQuitCancelsOpenSession(t *testing.T) {
	s := newTestStore(t)
	a, _ := newTestApp(t, s)

	a = press(t, a, " ")
	_, cmd := send(t, a, keyPress("q"))
	if cmd == nil {
		t.Fatal("quit should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected quit message")
	}
	sess, _ := s.GetRunningSession()
	if sess != nil {
		t.Fatalf("session should be cancelled on quit, got %+v", sess)
	}
}

// ============================================================
// Stage editing
// ============================================================

func TestStagesAddDuplicateDelete(t *testing.T) {
	s := newTestStore(t)
	a, _ := newTestApp(t, s)

	a = press(t, a, "2")
	if a.activeView != viewStages {
		t.Fatal("2 should open the stages view")
	}

	a = press(t, a, "n")
	if len(a.ws.cfg.Stages) != 3 {
		t.Fatalf("expected 3 stages, got %d", len(a.ws.cfg.Stages))
	}
	if a.stages.cursor != 2 {
		t.Fatalf("cursor should follow the new stage, got %d", a.stages.cursor)
	}

	a = press(t, a, "k", "c")
	if len(a.ws.cfg.Stages) != 4 {
		t.Fatalf("expected 4 stages, got %d", len(a.ws.cfg.Stages))
	}
	if !strings.HasPrefix(a.ws.cfg.Stages[2].Name, a.ws.cfg.Stages[1].Name) {
		t.Fatalf("duplicate should follow its source, got %q", a.ws.cfg.Stages[2].Name)
	}

	a = press(t, a, "d")
	if len(a.ws.cfg.Stages) != 3 {
		t.Fatalf("expected 3 stages after delete, got %d", len(a.ws.cfg.Stages))
	}

	stored, err := s.LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if len(stored.Stages) != 3 {
		t.Fatalf("edits should be persisted, got %d stages", len(stored.Stages))
	}
}

func TestStagesReorder(t *testing.T) {
	s := newTestStore(t)
	a, _ := newTestApp(t, s)

	a = press(t, a, "2", "J")
	if a.ws.cfg.Stages[0].Name != "Exhale" || a.ws.cfg.Stages[1].Name != "Inhale" {
		t.Fatalf("unexpected order: %s, %s", a.ws.cfg.Stages[0].Name, a.ws.cfg.Stages[1].Name)
	}
	if a.stages.cursor != 1 {
		t.Fatalf("cursor should move with the stage, got %d", a.stages.cursor)
	}

	a = press(t, a, "K")
	if a.ws.cfg.Stages[0].Name != "Inhale" {
		t.Fatal("move up should restore the order")
	}
}

func TestStagesRounds(t *testing.T) {
	s := newTestStore(t)
	a, _ := newTestApp(t, s)

	a = press(t, a, "2", "+")
	if a.ws.cfg.Rounds != breath.DefaultRounds+1 {
		t.Fatalf("expected %d rounds, got %d", breath.DefaultRounds+1, a.ws.cfg.Rounds)
	}
	for range 10 {
		a = press(t, a, "-")
	}
	if a.ws.cfg.Rounds != 1 {
		t.Fatalf("rounds should not drop below 1, got %d", a.ws.cfg.Rounds)
	}
	if a.ws.engine.Config().Rounds != 1 {
		t.Fatal("engine should receive the new round count")
	}
}

func TestDeleteAllStagesMakesEngineIdle(t *testing.T) {
	s := newTestStore(t)
	a, _ := newTestApp(t, s)

	a = press(t, a, " ", "2", "d", "d")
	if len(a.ws.cfg.Stages) != 0 {
		t.Fatalf("expected no stages, got %d", len(a.ws.cfg.Stages))
	}
	if a.ws.engine.Phase() != engine.PhaseIdle {
		t.Fatalf("expected idle, got %s", a.ws.engine.Phase())
	}
	sess, _ := s.GetRunningSession()
	if sess != nil {
		t.Fatal("removing every stage should cancel the session")
	}
}

func TestStageEditFormOpensAndCancels(t *testing.T) {
	s := newTestStore(t)
	a, _ := newTestApp(t, s)

	a = press(t, a, "2", "e")
	if !a.stages.formActive || !a.isFormActive() {
		t.Fatal("e should open the edit form")
	}
	if *a.stages.formName != "Inhale" || *a.stages.formSeconds != "4" {
		t.Fatalf("form not prefilled: %q %q", *a.stages.formName, *a.stages.formSeconds)
	}

	// Global keys are routed to the form while it is open.
	a = press(t, a, "1")
	if a.activeView != viewStages {
		t.Fatal("tab keys should not switch views while a form is open")
	}

	a = press(t, a, "esc")
	if a.stages.formActive {
		t.Fatal("esc should close the form")
	}
	if a.ws.cfg.Stages[0].Name != "Inhale" {
		t.Fatal("cancelled form should not change the stage")
	}
}

func TestStageEditClearsPresetLabel(t *testing.T) {
	s := newTestStore(t)
	a, _ := newTestApp(t, s)

	a = press(t, a, "3", "enter")
	if a.ws.label() == "Custom" {
		t.Fatal("applied preset should label the session")
	}
	a = press(t, a, "2", "+")
	if a.ws.label() != "Custom" {
		t.Fatalf("manual edit should drop the preset label, got %q", a.ws.label())
	}
}

// ============================================================
// Presets
// ============================================================

func TestPresetApply(t *testing.T) {
	s := newTestStore(t)
	a, _ := newTestApp(t, s)

	a = press(t, a, "3", "j", "enter")
	want := breath.DefaultPresets()[1]
	if a.ws.presetID != want.ID {
		t.Fatalf("expected preset %s, got %s", want.ID, a.ws.presetID)
	}
	if len(a.ws.cfg.Stages) != len(want.Stages) || a.ws.cfg.Rounds != want.Rounds {
		t.Fatalf("config should match preset, got %+v", a.ws.cfg)
	}
	if a.ws.cfg.Stages[0].ID == want.Stages[0].ID {
		t.Fatal("applied stages should get fresh ids")
	}
	if a.ws.label() != want.Name {
		t.Fatalf("expected label %q, got %q", want.Name, a.ws.label())
	}

	stored, _ := s.LoadConfig()
	if len(stored.Stages) != len(want.Stages) {
		t.Fatal("applied preset should be persisted as the config")
	}
}

func TestPresetApplyKeepsRunningTimer(t *testing.T) {
	s := newTestStore(t)
	a, _ := newTestApp(t, s)

	a = press(t, a, " ", "3", "enter")
	if a.ws.engine.Phase() != engine.PhaseRunning {
		t.Fatalf("applying a preset should not stop the timer, got %s", a.ws.engine.Phase())
	}
	if !a.ws.scheduler.Pending() {
		t.Fatal("engine should stay armed")
	}
}

func TestPresetDuplicateDelete(t *testing.T) {
	s := newTestStore(t)
	a, _ := newTestApp(t, s)

	a = press(t, a, "3", "c")
	if len(a.ws.presets) != 4 {
		t.Fatalf("expected 4 presets, got %d", len(a.ws.presets))
	}
	if a.presets.cursor != 3 {
		t.Fatalf("cursor should follow the copy, got %d", a.presets.cursor)
	}

	a = press(t, a, "d", "d")
	if len(a.ws.presets) != 2 {
		t.Fatalf("expected 2 presets, got %d", len(a.ws.presets))
	}

	stored, err := s.LoadPresets()
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 stored presets, got %d", len(stored))
	}
}

func TestDeleteAppliedPresetClearsLabel(t *testing.T) {
	s := newTestStore(t)
	a, _ := newTestApp(t, s)

	a = press(t, a, "3", "enter", "d")
	if a.ws.presetID != "" {
		t.Fatalf("deleted preset should not stay selected, got %q", a.ws.presetID)
	}
}

func TestPresetFormOpens(t *testing.T) {
	s := newTestStore(t)
	a, _ := newTestApp(t, s)

	a = press(t, a, "3", "n")
	if !a.presets.formActive || a.presets.formType != "new" {
		t.Fatal("n should open the new preset form")
	}
	if !strings.Contains(a.presets.view(), "New Preset") {
		t.Fatal("form view should show its title")
	}
	a = press(t, a, "esc")
	if a.presets.formActive {
		t.Fatal("esc should close the form")
	}

	a = press(t, a, "e")
	if !a.presets.formActive || *a.presets.formName != breath.DefaultPresets()[0].Name {
		t.Fatal("e should open a prefilled edit form")
	}
}

// ============================================================
// Theme, export, views
// ============================================================

func TestThemeToggle(t *testing.T) {
	s := newTestStore(t)
	a, _ := newTestApp(t, s)
	t.Cleanup(func() { applyTheme(store.ThemeLight) })

	a = press(t, a, "t")
	if a.ws.theme != store.ThemeDark {
		t.Fatalf("expected dark, got %s", a.ws.theme)
	}
	theme, err := s.LoadTheme()
	if err != nil {
		t.Fatal(err)
	}
	if theme != store.ThemeDark {
		t.Fatalf("theme should be persisted, got %s", theme)
	}
	if colorFg != palettes[store.ThemeDark].fg {
		t.Fatal("styles should follow the theme")
	}

	a = press(t, a, "t")
	if a.ws.theme != store.ThemeLight {
		t.Fatal("second toggle should return to light")
	}
}

func TestExportPicker(t *testing.T) {
	s := newTestStore(t)
	a, _ := newTestApp(t, s)

	a = press(t, a, "x")
	if !a.exportPicking {
		t.Fatal("x should open the export picker")
	}
	a = press(t, a, "j")
	if a.exportCursor != 1 {
		t.Fatalf("expected cursor 1, got %d", a.exportCursor)
	}
	a = press(t, a, "j")
	if a.exportCursor != 1 {
		t.Fatal("cursor should stop at the last format")
	}
	a = press(t, a, "esc")
	if a.exportPicking {
		t.Fatal("esc should close the picker")
	}
}

func TestTabCyclesViews(t *testing.T) {
	s := newTestStore(t)
	a, _ := newTestApp(t, s)

	for i := 1; i <= len(viewNames); i++ {
		a, _ = send(t, a, tea.KeyMsg{Type: tea.KeyTab})
		if a.activeView != viewState(i%len(viewNames)) {
			t.Fatalf("step %d: expected view %d, got %d", i, i%len(viewNames), a.activeView)
		}
	}
}

func TestViewRendering(t *testing.T) {
	s := newTestStore(t)
	a, _ := newTestApp(t, s)

	if a.View() != "Loading..." {
		t.Fatal("view before sizing should be a placeholder")
	}

	a, _ = send(t, a, tea.WindowSizeMsg{Width: 100, Height: 40})
	out := a.View()
	for _, want := range []string{"breathr", "Timer", "INHALE", "00:04", "Round 1/4"} {
		if !strings.Contains(out, want) {
			t.Fatalf("timer view missing %q", want)
		}
	}

	for _, k := range []string{"2", "3", "4"} {
		a = press(t, a, k)
		if a.View() == "" {
			t.Fatalf("view %s rendered empty", k)
		}
	}
}

func TestTimerViewIdle(t *testing.T) {
	s := newTestStore(t)
	a, _ := newTestApp(t, s)
	if err := a.ws.setConfig(breath.Config{Rounds: 1}); err != nil {
		t.Fatal(err)
	}
	a, _ = send(t, a, tea.WindowSizeMsg{Width: 100, Height: 40})

	if !strings.Contains(a.timer.view(), "No stages configured") {
		t.Fatal("idle timer should explain the empty state")
	}
}

func TestHistoryRefreshLoadsSessions(t *testing.T) {
	s := newTestStore(t)
	saveShortConfig(t, s)
	a, clock := newTestApp(t, s)

	a = press(t, a, " ")
	a, _ = send(t, a, tickMsg(clock.advance(time.Second)))
	a, _ = send(t, a, tickMsg(clock.advance(time.Second)))

	msg := a.history.refresh()()
	data, ok := msg.(historyDataMsg)
	if !ok {
		t.Fatalf("expected historyDataMsg, got %T", msg)
	}
	if data.err != nil {
		t.Fatal(data.err)
	}
	if len(data.recent) != 1 {
		t.Fatalf("expected 1 recent session, got %d", len(data.recent))
	}

	a, _ = send(t, a, data)
	if len(a.history.recent) != 1 {
		t.Fatal("history should keep the loaded sessions")
	}
}

// ============================================================
// Helpers
// ============================================================

func TestFormatClock(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{0, "00:00"},
		{4, "00:04"},
		{75, "01:15"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
		{-3, "00:00"},
	}
	for _, tt := range tests {
		if got := formatClock(tt.secs); got != tt.want {
			t.Errorf("formatClock(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	if got := formatSeconds(3725); got != "01:02:05" {
		t.Fatalf("got %q", got)
	}
	if got := formatMinutes(90); got != "1.5m" {
		t.Fatalf("got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Box 4-4-4-4", 20); got != "Box 4-4-4-4" {
		t.Fatalf("short strings should be unchanged, got %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Fatalf("got %q", got)
	}
}

func TestKeyMapHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should not be empty")
	}
	for i, col := range keys.FullHelp() {
		if len(col) == 0 {
			t.Fatalf("full help column %d is empty", i)
		}
	}
}
