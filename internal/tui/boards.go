package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tatianab/cyber-defenders/internal/leaderboard"
	"github.com/tatianab/cyber-defenders/internal/models"
)

func newBoardTable() table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "#", Width: 4},
			{Title: "Agent", Width: 24},
			{Title: "Score", Width: 8},
			{Title: "Date", Width: 12},
		}),
		table.WithFocused(true),
		table.WithHeight(leaderboard.DefaultLimit),
	)
	st := table.DefaultStyles()
	st.Header = st.Header.Bold(true).Foreground(lipgloss.Color("#FFA500"))
	st.Selected = st.Selected.Foreground(lipgloss.Color("#EEEEEE")).Background(lipgloss.Color("#5F5F87"))
	t.SetStyles(st)
	return t
}

func boardRows(entries []models.LeaderboardEntry) []table.Row {
	rows := make([]table.Row, len(entries))
	for i, e := range entries {
		rows[i] = table.Row{
			strconv.Itoa(i + 1),
			e.Username,
			strconv.Itoa(e.Score),
			e.Timestamp.Local().Format("2006-01-02"),
		}
	}
	return rows
}

func (m model) loadBoard() tea.Cmd {
	store := m.session.Store()
	saving := m.session.Saved()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// Show the board with the game that just finished on it.
		if saving != nil {
			select {
			case <-saving:
			case <-ctx.Done():
			}
		}
		entries, err := store.Top(ctx, leaderboard.DefaultLimit)
		return boardMsg{entries: entries, err: err}
	}
}

func (m model) updateLeaderboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc", "q", "enter":
			m.screen = m.back
			return m, nil
		case "r":
			return m, m.loadBoard()
		}
	}
	var cmd tea.Cmd
	m.board, cmd = m.board.Update(msg)
	return m, cmd
}

func (m model) viewLeaderboard() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("TOP AGENTS") + "\n\n")
	if m.boardErr != nil {
		b.WriteString(badStyle.Render("Leaderboard unavailable: "+m.boardErr.Error()) + "\n\n")
	}
	b.WriteString(m.board.View() + "\n\n")
	b.WriteString(helpStyle.Render("↑/↓: scroll  r: refresh  esc: back"))
	return b.String()
}

func (m model) updateTraining(msg tea.Msg) (tea.Model, tea.Cmd) {
	materials := m.session.Catalog().Training
	if k, ok := msg.(tea.KeyMsg); ok && len(materials) > 0 {
		switch k.String() {
		case "esc", "q":
			m.screen = m.back
			return m, nil
		case "left", "h", "shift+tab":
			m.trainingIdx = (m.trainingIdx + len(materials) - 1) % len(materials)
			m.refreshTraining()
			return m, nil
		case "right", "l", "tab":
			m.trainingIdx = (m.trainingIdx + 1) % len(materials)
			m.refreshTraining()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.trainingView, cmd = m.trainingView.Update(msg)
	return m, cmd
}

func (m *model) refreshTraining() {
	materials := m.session.Catalog().Training
	if len(materials) == 0 {
		m.trainingView.SetContent("No training material available.")
		return
	}
	t := materials[m.trainingIdx]
	width := max(m.trainingView.Width-2, 40)

	var b strings.Builder
	b.WriteString(titleStyle.Render(t.Title) + "\n\n")
	b.WriteString(textStyle.Width(width).Render(t.Description) + "\n\n")
	b.WriteString(titleStyle.Render("Example") + "\n")
	b.WriteString(panelStyle.Width(width).Render(t.Example) + "\n\n")
	b.WriteString(titleStyle.Render("Red flags") + "\n")
	for _, id := range t.Identifiers {
		b.WriteString("  • " + id + "\n")
	}
	b.WriteString("\n" + goodStyle.Render("Tip: ") + textStyle.Width(width-5).Render(t.Tip) + "\n")
	m.trainingView.SetContent(b.String())
	m.trainingView.GotoTop()
}

func (m model) viewTraining() string {
	materials := m.session.Catalog().Training
	var list strings.Builder
	for i, t := range materials {
		if i == m.trainingIdx {
			list.WriteString(selectedStyle.Render(t.Title) + "\n")
			continue
		}
		list.WriteString("  " + t.Title + "\n")
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(34).Render(list.String()),
		panelStyle.Render(m.trainingView.View()),
	)
	header := titleStyle.Render("TRAINING ROOM") + "  " +
		helpStyle.Render(fmt.Sprintf("%d/%d", m.trainingIdx+1, len(materials)))
	help := helpStyle.Render("←/→: topic  ↑/↓: scroll  esc: back")
	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", help)
}
