package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tatianab/cyber-defenders/internal/game"
)

type menuItem struct {
	label string
	desc  string
}

var menu = []menuItem{
	{"Classic mission", "Answer every scenario in a row."},
	{"Adventure mission", "Fly your ship through the gates and fend off intruders."},
	{"Training room", "Study the attack playbook before you play."},
	{"Leaderboard", "See the top agents."},
	{"Quit", ""},
}

func (m model) updateName(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.Type {
		case tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if strings.TrimSpace(m.nameInput.Value()) == "" {
				return m, nil
			}
			m.nameInput.Blur()
			m.screen = screenMenu
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m model) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.String() {
	case "up", "k":
		m.menuIndex = (m.menuIndex + len(menu) - 1) % len(menu)
	case "down", "j", "tab":
		m.menuIndex = (m.menuIndex + 1) % len(menu)
	case "esc":
		m.screen = screenName
		m.nameInput.Focus()
		return m, textinput.Blink
	case "q":
		return m, tea.Quit
	case "enter":
		return m.selectMenu()
	}
	return m, nil
}

func (m model) selectMenu() (tea.Model, tea.Cmd) {
	name := m.nameInput.Value()
	switch m.menuIndex {
	case 0:
		if err := m.session.Start(name, game.ModeClassic); err != nil {
			return m, nil
		}
		m.screen = screenClassic
		m.friendInput.Reset()
		return m, nil
	case 1:
		if err := m.session.Start(name, game.ModeAdventure); err != nil {
			return m, nil
		}
		m.screen = screenAdventure
		m.arcade = newArcade()
		m.frameEpoch++
		return m, frame(m.frameEpoch)
	case 2:
		m.back = screenMenu
		m.screen = screenTraining
		m.refreshTraining()
		return m, nil
	case 3:
		m.back = screenMenu
		m.screen = screenLeaderboard
		return m, m.loadBoard()
	}
	return m, tea.Quit
}

func (m model) viewIntro() string {
	nova := m.session.Catalog().Mentor()
	var b strings.Builder
	b.WriteString(titleStyle.Render("CYBER DEFENDERS"))
	b.WriteString("\n\n")
	b.WriteString(textStyle.Render(fmt.Sprintf("%s, %s:", nova.Name, nova.Role)))
	b.WriteString("\n")
	b.WriteString(textStyle.Width(70).Render("\"Welcome, recruit. Attackers don't break in, they log in. Your job is to spot the lie before it costs us. Trust, verify or report: choose well.\""))
	b.WriteString("\n\n")

	if m.screen == screenName {
		b.WriteString("What should we call you, agent?\n\n")
		b.WriteString(m.nameInput.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter: continue  esc: quit"))
		return b.String()
	}

	b.WriteString(fmt.Sprintf("Agent %s, choose your assignment:\n\n", m.nameInput.Value()))
	for i, item := range menu {
		line := "  " + item.label
		if i == m.menuIndex {
			line = selectedStyle.Render(item.label)
			if item.desc != "" {
				line += " " + helpStyle.Render(item.desc)
			}
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓: move  enter: select  esc: change name  q: quit"))
	return b.String()
}
