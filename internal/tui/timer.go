package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/breathr/internal/engine"
)

type timerModel struct {
	ws     *workspace
	width  int
	height int
}

func newTimerModel(ws *workspace) timerModel {
	return timerModel{ws: ws}
}

func (t *timerModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

func (t timerModel) view() string {
	w := t.width - 4
	if w < 20 {
		w = 20
	}
	title := titleStyle.Render(t.ws.label())

	phase := t.ws.engine.Phase()
	if phase == engine.PhaseIdle {
		body := lipgloss.JoinVertical(lipgloss.Center,
			title,
			"",
			mutedStyle.Render("No stages configured"),
			mutedStyle.Render("Press 2 to add stages"),
		)
		return panelStyle.Width(w).Render(body)
	}

	st := t.ws.engine.State()
	d := t.ws.engine.Display()
	cfg := t.ws.cfg

	var stageName string
	style := timerStyle.Width(w - 6)
	bar := progress.New(progress.WithSolidFill(string(colorPrimary)), progress.WithoutPercentage())
	if d.Stage != nil {
		stageName = d.Stage.Name
		style = style.Foreground(lipgloss.Color(d.Stage.Color.Hex()))
		bar = progress.New(progress.WithSolidFill(d.Stage.Color.Hex()), progress.WithoutPercentage())
	}
	bar.Width = w - 10
	if bar.Width < 10 {
		bar.Width = 10
	}

	stageLabel := style.Render(strings.ToUpper(stageName))
	remaining := style.Render(formatClock(d.Remaining))
	if phase == engine.PhaseCompleted {
		remaining = successStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render("Done!")
	}

	counters := mutedStyle.Render(fmt.Sprintf("Round %d/%d  ·  Stage %d/%d",
		st.Round, cfg.Rounds, st.StageIndex+1, len(cfg.Stages)))

	content := lipgloss.JoinVertical(lipgloss.Center,
		title,
		"",
		stageLabel,
		remaining,
		"",
		bar.ViewAs(d.Progress/100),
		"",
		counters,
		t.renderStageStrip(st),
		"",
		phaseLabel(phase),
	)

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center, content, "", mutedStyle.Render(controlsHint(phase))),
	)
}

// renderStageStrip shows one marker per stage: done, current, pending.
func (t timerModel) renderStageStrip(st engine.State) string {
	var parts []string
	for i, s := range t.ws.cfg.Stages {
		switch {
		case st.Completed || i < st.StageIndex:
			parts = append(parts, stageStyle(s.Color).Render("●"))
		case i == st.StageIndex:
			parts = append(parts, stageStyle(s.Color).Bold(true).Render("◐ "+s.Name))
		default:
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	return strings.Join(parts, " ")
}

func phaseLabel(p engine.Phase) string {
	switch p {
	case engine.PhaseRunning:
		return successStyle.Bold(true).Render("BREATHING")
	case engine.PhasePaused:
		return warningStyle.Bold(true).Render("PAUSED")
	case engine.PhaseCompleted:
		return successStyle.Bold(true).Render("SESSION COMPLETE")
	case engine.PhaseReady:
		return mutedStyle.Render("Ready to start")
	}
	return ""
}

func controlsHint(p engine.Phase) string {
	switch p {
	case engine.PhaseRunning:
		return "space: pause  r: reset"
	case engine.PhasePaused:
		return "space: resume  r: reset"
	case engine.PhaseCompleted:
		return "space: again  r: reset"
	}
	return "space: start"
}
