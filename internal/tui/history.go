package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/breathr/internal/store"
)

const recentLimit = 8

type historyModel struct {
	store  *store.Store
	width  int
	height int

	summaries []store.DailySummary
	recent    []store.Session
	today     int64
	offset    int // 7-day blocks back from today (0 = current)

	chart barchart.Model
}

func newHistoryModel(s *store.Store) historyModel {
	return historyModel{
		store: s,
		chart: barchart.New(60, 12),
	}
}

func (h *historyModel) setSize(w, hh int) {
	h.width = w
	h.height = hh
}

type historyDataMsg struct {
	summaries []store.DailySummary
	recent    []store.Session
	today     int64
	err       error
}

func (h historyModel) refresh() tea.Cmd {
	return func() tea.Msg {
		from, to := h.dateRange()
		summaries, err := h.store.GetDailySummary(from, to)
		if err != nil {
			return historyDataMsg{err: err}
		}
		recent, err := h.store.ListSessions(store.SessionFilter{Limit: recentLimit})
		if err != nil {
			return historyDataMsg{err: err}
		}
		today, err := h.store.GetTodayTotal()
		if err != nil {
			return historyDataMsg{err: err}
		}
		return historyDataMsg{summaries: summaries, recent: recent, today: today}
	}
}

func (h historyModel) dateRange() (time.Time, time.Time) {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := today.AddDate(0, 0, 1-7*h.offset)
	return end.AddDate(0, 0, -7), end
}

func (h historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyDataMsg:
		if msg.err != nil {
			return h, func() tea.Msg { return errStatus("History error", msg.err) }
		}
		h.summaries = msg.summaries
		h.recent = msg.recent
		h.today = msg.today
		h.buildChart()
		return h, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			h.offset++
			return h, h.refresh()
		case key.Matches(msg, keys.Right):
			if h.offset > 0 {
				h.offset--
			}
			return h, h.refresh()
		}
	}
	return h, nil
}

func (h *historyModel) buildChart() {
	chartWidth := max(h.width-8, 20)
	chartHeight := 10
	if h.height > 36 {
		chartHeight = 14
	}

	h.chart = barchart.New(chartWidth, chartHeight)

	byDate := make(map[string]store.DailySummary, len(h.summaries))
	for _, s := range h.summaries {
		byDate[s.Date] = s
	}

	from, to := h.dateRange()
	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		s := byDate[d.Format("2006-01-02")]
		bars = append(bars, barchart.BarData{
			Label: d.Format("Mon 02"),
			Values: []barchart.BarValue{{
				Name:  "minutes",
				Value: float64(s.TotalSeconds) / 60.0,
				Style: lipgloss.NewStyle().Foreground(colorPrimary),
			}},
		})
	}

	h.chart.PushAll(bars)
	h.chart.Draw()
}

func (h historyModel) view() string {
	w := h.width - 4

	from, to := h.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s to %s", from.Format("Jan 02"), to.Add(-24*time.Hour).Format("Jan 02, 2006")))
	todayLabel := successStyle.Render("Today " + formatSeconds(h.today))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("History"), "  ", dateLabel, "  ", todayLabel,
	)

	nav := mutedStyle.Render("  ←/→: navigate weeks  x: export")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", h.chart.View(), "", h.renderSummaryTable(w), "", h.renderRecent(), "", nav,
		),
	)
}

func (h historyModel) renderSummaryTable(w int) string {
	if len(h.summaries) == 0 {
		return mutedStyle.Render("  No sessions in this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %9s %10s %10s", "Date", "Sessions", "Completed", "Duration")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 44))))
	for _, s := range h.summaries {
		rows = append(rows, fmt.Sprintf("  %-12s %9d %10d %10s",
			s.Date, s.SessionCount, s.CompletedCount, formatSeconds(s.TotalSeconds)))
	}
	return strings.Join(rows, "\n")
}

func (h historyModel) renderRecent() string {
	if len(h.recent) == 0 {
		return ""
	}
	var rows []string
	rows = append(rows, headerStyle.Render("Recent sessions"))
	for _, s := range h.recent {
		status := mutedStyle.Render(string(s.Status))
		switch s.Status {
		case store.StatusCompleted:
			status = successStyle.Render(string(s.Status))
		case store.StatusRunning:
			status = warningStyle.Render(string(s.Status))
		}
		line := fmt.Sprintf("  %-16s %-20s %3d/%-3d %s  ",
			s.StartedAt.Local().Format("Jan 02 15:04"),
			truncate(s.Label, 20),
			s.CompletedCount, s.StageCount*s.Rounds,
			formatMinutes(s.TotalSeconds))
		rows = append(rows, line+status)
	}
	return strings.Join(rows, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
