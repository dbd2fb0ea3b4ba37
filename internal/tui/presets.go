package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/breathr/internal/breath"
)

type presetsModel struct {
	ws     *workspace
	width  int
	height int
	cursor int

	formActive bool
	form       *huh.Form
	formType   string // "new", "edit"
	editingID  string

	formName  *string
	formColor *breath.Color
}

func newPresetsModel(ws *workspace) presetsModel {
	name, color := "", breath.DefaultColor
	return presetsModel{ws: ws, formName: &name, formColor: &color}
}

func (p *presetsModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func (p presetsModel) update(msg tea.Msg) (presetsModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	presets := p.ws.presets
	switch {
	case key.Matches(keyMsg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if p.cursor < len(presets)-1 {
			p.cursor++
		}
	case key.Matches(keyMsg, keys.Enter):
		if len(presets) > 0 {
			preset, err := p.ws.applyPreset(presets[p.cursor].ID)
			if err != nil {
				return p, func() tea.Msg { return errStatus("Apply error", err) }
			}
			return p, func() tea.Msg { return statusMsg{text: "Loaded preset " + preset.Name} }
		}
	case key.Matches(keyMsg, keys.New):
		return p.showForm("new", breath.Preset{Color: breath.DefaultColor})
	case key.Matches(keyMsg, keys.Edit):
		if len(presets) > 0 {
			return p.showForm("edit", presets[p.cursor])
		}
	case key.Matches(keyMsg, keys.Duplicate):
		if len(presets) > 0 {
			updated, id := presets.Duplicate(presets[p.cursor].ID)
			p.cursor = indexOfPreset(updated, id)
			return p, p.save(updated)
		}
	case key.Matches(keyMsg, keys.Delete):
		if len(presets) > 0 {
			updated := presets.Delete(presets[p.cursor].ID)
			if p.cursor >= len(updated) {
				p.cursor = max(0, len(updated)-1)
			}
			return p, p.save(updated)
		}
	}
	return p, nil
}

func (p presetsModel) save(presets breath.Presets) tea.Cmd {
	if err := p.ws.setPresets(presets); err != nil {
		return func() tea.Msg { return errStatus("Save error", err) }
	}
	return nil
}

func indexOfPreset(presets breath.Presets, id string) int {
	for i, p := range presets {
		if p.ID == id {
			return i
		}
	}
	return 0
}

func (p presetsModel) showForm(formType string, preset breath.Preset) (presetsModel, tea.Cmd) {
	*p.formName = preset.Name
	*p.formColor = preset.Color
	p.formType = formType
	p.editingID = preset.ID

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Preset name").Value(p.formName),
			huh.NewSelect[breath.Color]().Title("Color").Options(colorOptions()...).Value(p.formColor),
		),
	).WithShowHelp(true).WithShowErrors(true).WithTheme(formTheme(p.ws.theme))

	p.formActive = true
	return p, p.form.Init()
}

func (p presetsModel) updateForm(msg tea.Msg) (presetsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		p.form = nil
		switch p.formType {
		case "new":
			updated, created := p.ws.presets.Create(*p.formName, *p.formColor, p.ws.cfg)
			p.cursor = len(updated) - 1
			p.ws.presetID = created.ID
			return p, p.save(updated)
		case "edit":
			return p, p.save(p.ws.presets.Update(p.editingID, *p.formName, *p.formColor))
		}
	}

	return p, cmd
}

func (p presetsModel) view() string {
	w := p.width - 4
	if p.formActive && p.form != nil {
		title := titleStyle.Render("New Preset")
		if p.formType == "edit" {
			title = titleStyle.Render("Edit Preset")
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View()))
	}

	title := titleStyle.Render("Presets")
	presets := p.ws.presets

	if len(presets) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No presets. Press n to save the current stages as one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-24s %7s %7s %10s", "", "Name", "Stages", "Rounds", "Total")))

	for i, preset := range presets {
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		marker := ""
		if preset.ID == p.ws.presetID {
			marker = successStyle.Render(" ✓")
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %-24s %7d %7d %10s",
			cursor, colorDot(preset.Color), preset.Name, len(preset.Stages), preset.Rounds,
			breath.FormatDuration(preset.TotalSeconds())))+marker)
	}

	if p.cursor < len(presets) {
		rows = append(rows, "")
		rows = append(rows, p.renderStages(presets[p.cursor]))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: load  n: save current  e: edit  c: duplicate  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (p presetsModel) renderStages(preset breath.Preset) string {
	var parts []string
	for _, s := range preset.Stages {
		parts = append(parts, stageStyle(s.Color).Render(fmt.Sprintf("%s %ds", s.Name, s.Duration)))
	}
	return "  " + strings.Join(parts, mutedStyle.Render(" → "))
}
