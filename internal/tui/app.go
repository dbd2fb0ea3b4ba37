package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/breathr/internal/engine"
	"github.com/sadopc/breathr/internal/export"
	"github.com/sadopc/breathr/internal/session"
	"github.com/sadopc/breathr/internal/sound"
	"github.com/sadopc/breathr/internal/store"
)

// Config carries the runtime dependencies of the terminal UI.
type Config struct {
	Logger    *slog.Logger
	Player    sound.Player // nil disables sounds
	FrameRate int
	Clock     engine.Clock
}

// App is the root Bubble Tea model.
type App struct {
	ws       *workspace
	notifier *sound.Notifier
	cancel   context.CancelFunc
	clock    engine.Clock
	interval time.Duration
	ticking  bool

	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	timer   timerModel
	stages  stagesModel
	presets presetsModel
	history historyModel

	help        help.Model
	status      string
	statusError bool
}

// NewApp loads the persisted configuration, presets and theme and wires the
// engine to the session recorder.
func NewApp(s *store.Store, cfg Config) (App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	clock := cfg.Clock
	if clock == nil {
		clock = engine.SystemClock{}
	}

	breathCfg, err := s.LoadConfig()
	if err != nil {
		return App{}, fmt.Errorf("load config: %w", err)
	}
	presets, err := s.LoadPresets()
	if err != nil {
		return App{}, fmt.Errorf("load presets: %w", err)
	}
	theme, err := s.LoadTheme()
	if err != nil {
		return App{}, fmt.Errorf("load theme: %w", err)
	}
	applyTheme(theme)

	ctx, cancel := context.WithCancel(context.Background())
	notifier := sound.NewNotifier(ctx, cfg.Player, logger)

	scheduler := engine.NewFrameScheduler()
	eng := engine.New(breathCfg, scheduler, engine.WithClock(clock), engine.WithLogger(logger))

	ws := &workspace{
		store:     s,
		logger:    logger,
		engine:    eng,
		scheduler: scheduler,
		recorder:  session.NewRecorder(s, notifier, logger),
		cfg:       breathCfg,
		presets:   presets,
		theme:     theme,
	}
	eng.OnStageComplete(ws.onStageComplete)

	h := help.New()
	h.ShowAll = false

	return App{
		ws:         ws,
		notifier:   notifier,
		cancel:     cancel,
		clock:      clock,
		interval:   engine.FrameInterval(cfg.FrameRate),
		activeView: viewTimer,
		timer:      newTimerModel(ws),
		stages:     newStagesModel(ws),
		presets:    newPresetsModel(ws),
		history:    newHistoryModel(s),
		help:       h,
	}, nil
}

// Close cancels an unfinished session, stops the engine and waits for
// sounds still playing.
func (a App) Close() {
	a.ws.close()
	a.cancel()
	a.notifier.Wait()
}

func (a App) Init() tea.Cmd {
	return a.history.refresh()
}

func (a App) tickCmd() tea.Cmd {
	return tea.Tick(a.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// ensureTicking starts the frame loop when the engine has a tick armed.
func (a App) ensureTicking() (App, tea.Cmd) {
	if a.ticking || !a.ws.scheduler.Pending() {
		return a, nil
	}
	a.ticking = true
	return a, a.tickCmd()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.timer.setSize(a.width, contentHeight)
		a.stages.setSize(a.width, contentHeight)
		a.presets.setSize(a.width, contentHeight)
		a.history.setSize(a.width, contentHeight)
		a.history.buildChart()
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			a.Close()
			return a, tea.Quit
		case key.Matches(msg, keys.Toggle):
			if err := a.ws.toggle(); err != nil {
				a.setStatus(errStatus("Session error", err))
			}
			return a.ensureTicking()
		case key.Matches(msg, keys.Reset):
			a.ws.reset()
			a.setStatus(statusMsg{text: "Timer reset"})
			return a, nil
		case key.Matches(msg, keys.Theme):
			if err := a.ws.toggleTheme(); err != nil {
				a.setStatus(errStatus("Theme error", err))
				return a, nil
			}
			a.setStatus(statusMsg{text: "Theme: " + string(a.ws.theme)})
			return a, nil
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchView(viewTimer)
		case key.Matches(msg, keys.Tab2):
			return a.switchView(viewStages)
		case key.Matches(msg, keys.Tab3):
			return a.switchView(viewPresets)
		case key.Matches(msg, keys.Tab4):
			return a.switchView(viewHistory)
		case key.Matches(msg, keys.Tab):
			return a.switchView((a.activeView + 1) % viewState(len(viewNames)))
		}

	case tickMsg:
		a.ticking = false
		a.ws.scheduler.Fire(a.clock.Now())
		var cmds []tea.Cmd
		if cmd := a.reportCompletions(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		var tick tea.Cmd
		a, tick = a.ensureTicking()
		cmds = append(cmds, tick)
		return a, tea.Batch(cmds...)

	case historyDataMsg:
		var cmd tea.Cmd
		a.history, cmd = a.history.update(msg)
		return a, cmd

	case statusMsg:
		a.setStatus(msg)
		return a, nil

	case exportDoneMsg:
		a.setStatus(statusMsg{text: "Exported to " + msg.path})
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a *App) setStatus(msg statusMsg) {
	a.status = msg.text
	a.statusError = msg.isError
}

// reportCompletions turns the stage completions of the last frame into a
// status line and refreshes the history after a finished session.
func (a *App) reportCompletions() tea.Cmd {
	completions := a.ws.drainCompletions()
	if len(completions) == 0 {
		return nil
	}
	last := completions[len(completions)-1]
	if last.Next == nil {
		a.setStatus(statusMsg{text: "Session complete"})
		return a.history.refresh()
	}
	a.setStatus(statusMsg{text: fmt.Sprintf("%s done, next: %s", last.Finished.Name, last.Next.Name)})
	return nil
}

func (a App) switchView(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	if v == viewHistory {
		return a, a.history.refresh()
	}
	return a, nil
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewStages:
		a.stages, cmd = a.stages.update(msg)
	case viewPresets:
		a.presets, cmd = a.presets.update(msg)
	case viewHistory:
		a.history, cmd = a.history.update(msg)
	}
	// Edits can re-arm a running engine.
	a, tick := a.ensureTicking()
	return a, tea.Batch(cmd, tick)
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewStages:
		return a.stages.formActive
	case viewPresets:
		return a.presets.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTimer:
		content = a.timer.view()
	case viewStages:
		content = a.stages.view()
	case viewPresets:
		content = a.presets.view()
	case viewHistory:
		content = a.history.view()
	}

	contentHeight := max(a.height-lipgloss.Height(header)-lipgloss.Height(footer), 1)

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("breathr")
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.statusError {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	// Timer indicator while away from the timer view.
	timerInfo := ""
	if a.activeView != viewTimer {
		d := a.ws.engine.Display()
		switch a.ws.engine.Phase() {
		case engine.PhaseRunning:
			timerInfo = successStyle.Render(" ● " + formatClock(d.Remaining))
		case engine.PhasePaused:
			timerInfo = warningStyle.Render(" ⏸ " + formatClock(d.Remaining))
		}
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

var exportFormats = []export.Format{export.FormatCSV, export.FormatJSON}

func (a App) renderExportPicker() string {
	var rows []string
	rows = append(rows, titleStyle.Render("Export Sessions"))
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+string(f)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(exportFormats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format export.Format) tea.Cmd {
	s := a.ws.store
	return func() tea.Msg {
		sessions, err := s.ListSessions(store.SessionFilter{})
		if err != nil {
			return errStatus("Export error", err)
		}

		home, _ := os.UserHomeDir()
		name := fmt.Sprintf("breathr-sessions-%s.%s", time.Now().Format("2006-01-02"), format)
		path := filepath.Join(home, name)
		if err := export.Sessions(sessions, path); err != nil {
			return errStatus("Export error", err)
		}
		return exportDoneMsg{path: path}
	}
}
