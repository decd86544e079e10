package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tatianab/cyber-defenders/internal/models"
)

var certificateStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(lipgloss.Color("#FFA500")).
	Padding(1, 4).
	Align(lipgloss.Center)

func (m model) updateDebrief(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.debrief, cmd = m.debrief.Update(msg)
		return m, cmd
	}
	switch k.String() {
	case "c":
		if !m.session.EarnsCertificate() {
			m.certNotice = fmt.Sprintf("Score at least %d to earn a certificate.", models.CertificateThreshold)
			break
		}
		path, err := exportCertificate(m.deps.DataDir, m.session.Name(), m.session.Score(), time.Now())
		if err != nil {
			m.certNotice = "Could not save certificate: " + err.Error()
		} else {
			m.certNotice = "Certificate saved to " + path
		}
		m.refreshDebrief()
		return m, nil
	case "y":
		if !m.session.EarnsCertificate() {
			break
		}
		if err := clipboard.WriteAll(certificateText(m.session.Name(), m.session.Score(), time.Now())); err != nil {
			m.certNotice = "Clipboard unavailable: " + err.Error()
		} else {
			m.certNotice = "Certificate copied to the clipboard."
		}
		m.refreshDebrief()
		return m, nil
	case "l":
		m.back = screenDebrief
		m.screen = screenLeaderboard
		return m, m.loadBoard()
	case "p":
		m.inflight.Cancel(taskGuidance)
		m.session.PlayAgain()
		m.screen = screenMenu
		return m, nil
	case "q", "esc":
		m.inflight.Cancel(taskGuidance)
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.debrief, cmd = m.debrief.Update(msg)
	return m, cmd
}

// refreshDebrief re-renders the debrief report into its viewport.
func (m *model) refreshDebrief() {
	s := m.session
	width := max(m.debrief.Width-2, 40)
	cert := s.Certification()

	var b strings.Builder
	b.WriteString(titleStyle.Render("MISSION DEBRIEF") + "\n\n")
	fmt.Fprintf(&b, "Agent %s, final score: %d\n", s.Name(), s.Score())
	fmt.Fprintf(&b, "Rank: %s (%s)\n", cert.Title, cert.Level)
	fmt.Fprintf(&b, "Time on mission: %s\n", s.Duration().Round(time.Second))
	if adv := s.Adventure(); adv != nil {
		fmt.Fprintf(&b, "Intruders destroyed: %d  Hull hits: %d\n", adv.Kills(), adv.Hits())
	}
	switch {
	case s.SaveErr() != nil:
		b.WriteString(badStyle.Render("Your score could not be saved to the leaderboard.") + "\n")
	case s.Entry() != nil:
		b.WriteString(helpStyle.Render("Score saved to the leaderboard.") + "\n")
	case s.Saved() != nil:
		b.WriteString(helpStyle.Render("Saving your score...") + "\n")
	}
	b.WriteString("\n")

	mistakes := s.Mistakes()
	if len(mistakes) == 0 {
		b.WriteString(goodStyle.Render("Flawless. No mistakes.") + "\n")
	} else {
		b.WriteString(titleStyle.Render("Review") + "\n")
		for _, mk := range mistakes {
			fmt.Fprintf(&b, "%s %s: you chose %s, the right call was %s.\n",
				badStyle.Render("✘"), mk.Scenario.Title, mk.Choice, mk.Scenario.CorrectChoice)
			b.WriteString(helpStyle.Width(width).Render("  "+mk.Scenario.Feedback.Tip) + "\n")
		}
	}
	b.WriteString("\n" + titleStyle.Render("Agent Nova") + "\n")
	if m.guidance == nil {
		b.WriteString(m.spinner.View() + " Agent Nova is reviewing your mission...\n")
	} else {
		b.WriteString(textStyle.Width(width).Render(m.guidance.Summary) + "\n\n")
		b.WriteString(panelStyle.Width(width).Render("Hint: "+m.guidance.Hint) + "\n")
		b.WriteString(panelStyle.Width(width).Render("Next time: "+m.guidance.ScenarioAdaptation) + "\n")
	}

	if s.EarnsCertificate() {
		b.WriteString("\n" + certificateStyle.Render(certificateText(s.Name(), s.Score(), time.Now())) + "\n")
	}
	if m.certNotice != "" {
		b.WriteString("\n" + helpStyle.Render(m.certNotice) + "\n")
	}
	m.debrief.SetContent(b.String())
}

func (m model) viewDebrief() string {
	if m.guidance == nil {
		// The spinner frame changes on every tick.
		m.refreshDebrief()
	}
	help := helpStyle.Render("c: save certificate  y: copy it  l: leaderboard  p: play again  q: quit  ↑/↓: scroll")
	return lipgloss.JoinVertical(lipgloss.Left, m.debrief.View(), "", help)
}

func certificateText(name string, score int, date time.Time) string {
	cert := models.CertificationFor(score)
	return strings.Join([]string{
		"CYBER DEFENDERS",
		"Certificate of Completion",
		"",
		"This certifies that",
		"Agent " + name,
		"",
		"has completed social-engineering defense training",
		fmt.Sprintf("with a score of %d and the rank of %s.", score, cert.Title),
		"",
		date.Format("January 2, 2006"),
		"Agent Nova, Mentor",
	}, "\n")
}

// exportCertificate writes a plain-text certificate into dir and returns its
// path.
func exportCertificate(dir, name string, score int, date time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + 'a' - 'A'
		}
		return '-'
	}, name)
	path := filepath.Join(dir, fmt.Sprintf("certificate-%s-%s.txt", slug, date.Format("20060102")))
	body := lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).Padding(1, 4).Align(lipgloss.Center).
		Render(certificateText(name, score, date))
	if err := os.WriteFile(path, []byte(body+"\n"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
