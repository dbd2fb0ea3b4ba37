package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/breathr/internal/breath"
)

type stagesModel struct {
	ws     *workspace
	width  int
	height int
	cursor int

	formActive bool
	form       *huh.Form
	editingID  string

	// Form field pointers (survive value copies)
	formName    *string
	formHours   *string
	formMinutes *string
	formSeconds *string
	formColor   *breath.Color
	formSound   *breath.Sound
}

func newStagesModel(ws *workspace) stagesModel {
	name, h, m, s := "", "", "", ""
	color, snd := breath.DefaultColor, breath.SoundNone
	return stagesModel{
		ws:          ws,
		formName:    &name,
		formHours:   &h,
		formMinutes: &m,
		formSeconds: &s,
		formColor:   &color,
		formSound:   &snd,
	}
}

func (m *stagesModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m stagesModel) update(msg tea.Msg) (stagesModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	stages := m.ws.cfg.Stages
	switch {
	case key.Matches(keyMsg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if m.cursor < len(stages)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, keys.New):
		cfg, id := m.ws.cfg.AddStage()
		m.cursor = indexOfStage(cfg.Stages, id)
		return m, m.apply(cfg)
	case key.Matches(keyMsg, keys.Enter), key.Matches(keyMsg, keys.Edit):
		if len(stages) > 0 {
			return m.showEditForm(stages[m.cursor])
		}
	case key.Matches(keyMsg, keys.Duplicate):
		if len(stages) > 0 {
			cfg, id := m.ws.cfg.DuplicateStage(stages[m.cursor].ID)
			m.cursor = indexOfStage(cfg.Stages, id)
			return m, m.apply(cfg)
		}
	case key.Matches(keyMsg, keys.Delete):
		if len(stages) > 0 {
			cfg := m.ws.cfg.DeleteStage(stages[m.cursor].ID)
			if m.cursor >= len(cfg.Stages) {
				m.cursor = max(0, len(cfg.Stages)-1)
			}
			return m, m.apply(cfg)
		}
	case key.Matches(keyMsg, keys.MoveUp):
		if m.cursor > 0 {
			cfg := m.ws.cfg.ReorderStages(stages[m.cursor].ID, stages[m.cursor-1].ID)
			m.cursor--
			return m, m.apply(cfg)
		}
	case key.Matches(keyMsg, keys.MoveDown):
		if m.cursor < len(stages)-1 {
			cfg := m.ws.cfg.ReorderStages(stages[m.cursor].ID, stages[m.cursor+1].ID)
			m.cursor++
			return m, m.apply(cfg)
		}
	case key.Matches(keyMsg, keys.MoreRound):
		return m, m.apply(m.ws.cfg.SetRounds(m.ws.cfg.Rounds + 1))
	case key.Matches(keyMsg, keys.LessRound):
		return m, m.apply(m.ws.cfg.SetRounds(m.ws.cfg.Rounds - 1))
	}
	return m, nil
}

func (m stagesModel) apply(cfg breath.Config) tea.Cmd {
	if err := m.ws.editConfig(cfg); err != nil {
		return func() tea.Msg { return errStatus("Save error", err) }
	}
	return nil
}

func indexOfStage(stages []breath.Stage, id string) int {
	for i, s := range stages {
		if s.ID == id {
			return i
		}
	}
	return 0
}

func (m stagesModel) showEditForm(stage breath.Stage) (stagesModel, tea.Cmd) {
	h, mins, s := breath.SplitDuration(stage.Duration)
	*m.formName = stage.Name
	*m.formHours = strconv.Itoa(h)
	*m.formMinutes = strconv.Itoa(mins)
	*m.formSeconds = strconv.Itoa(s)
	*m.formColor = stage.Color
	*m.formSound = stage.Sound
	m.editingID = stage.ID

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Stage name").Value(m.formName),
			huh.NewInput().Title("Hours").Value(m.formHours).Validate(validateSegment),
			huh.NewInput().Title("Minutes (0-59)").Value(m.formMinutes).Validate(validateSegment),
			huh.NewInput().Title("Seconds (0-59)").Value(m.formSeconds).Validate(validateSegment),
			huh.NewSelect[breath.Color]().Title("Color").Options(colorOptions()...).Value(m.formColor),
			huh.NewSelect[breath.Sound]().Title("Sound").Options(soundOptions()...).Value(m.formSound),
		),
	).WithShowHelp(true).WithShowErrors(true).WithTheme(formTheme(m.ws.theme))

	m.formActive = true
	return m, m.form.Init()
}

func validateSegment(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err != nil || n < 0 {
		return errors.New("enter a whole number")
	}
	return nil
}

func colorOptions() []huh.Option[breath.Color] {
	colors := breath.Colors()
	opts := make([]huh.Option[breath.Color], len(colors))
	for i, c := range colors {
		opts[i] = huh.NewOption(fmt.Sprintf("%s %s", colorDot(c), c), c)
	}
	return opts
}

func soundOptions() []huh.Option[breath.Sound] {
	sounds := breath.Sounds()
	opts := make([]huh.Option[breath.Sound], len(sounds))
	for i, s := range sounds {
		opts[i] = huh.NewOption(s.Label(), s)
	}
	return opts
}

func (m stagesModel) updateForm(msg tea.Msg) (stagesModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		m.form = nil
		id := m.editingID
		cfg := m.ws.cfg.
			RenameStage(id, *m.formName).
			SetStageDuration(id, breath.ComposeDuration(*m.formHours, *m.formMinutes, *m.formSeconds)).
			SetStageColor(id, *m.formColor).
			SetStageSound(id, *m.formSound)
		return m, m.apply(cfg)
	}

	return m, cmd
}

func (m stagesModel) view() string {
	w := m.width - 4
	if m.formActive && m.form != nil {
		title := titleStyle.Render("Edit Stage")
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()))
	}

	cfg := m.ws.cfg
	title := titleStyle.Render("Stages")
	summary := mutedStyle.Render(fmt.Sprintf("%d rounds · %s per run", cfg.Rounds, breath.FormatDuration(cfg.TotalSeconds())))

	var rows []string
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", summary))
	rows = append(rows, "")

	if len(cfg.Stages) == 0 {
		rows = append(rows, mutedStyle.Render("No stages yet. Press n to add one."))
	} else {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-20s %10s  %-12s", "", "Name", "Duration", "Sound")))
		for i, s := range cfg.Stages {
			cursor := "  "
			style := normalItemStyle
			if i == m.cursor {
				cursor = "> "
				style = selectedItemStyle
			}
			rows = append(rows, style.Render(fmt.Sprintf("%s%s %-20s %10s  %-12s",
				cursor, colorDot(s.Color), s.Name, breath.FormatDuration(s.Duration), s.Sound.Label())))
		}
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: add  enter: edit  c: duplicate  d: delete  K/J: move  +/-: rounds"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
