package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tatianab/cyber-defenders/internal/game"
	"github.com/tatianab/cyber-defenders/internal/mentor"
	"github.com/tatianab/cyber-defenders/internal/models"
	"github.com/tatianab/cyber-defenders/internal/scenario"
)

// activeEngine is the engine taking decisions right now: the classic engine,
// or the overlay opened by an adventure gate.
func (m model) activeEngine() *scenario.Engine {
	switch m.screen {
	case screenClassic:
		return m.session.Classic()
	case screenAdventure:
		if a := m.session.Adventure(); a != nil {
			return a.Overlay()
		}
	}
	return nil
}

func (m model) updateClassic(msg tea.Msg) (tea.Model, tea.Cmd) {
	e := m.session.Classic()
	if e == nil {
		return m, nil
	}
	m, cmd := m.updateQuiz(e, msg)
	if m.session.Phase() == game.PhaseDebrief {
		return m.finishGame()
	}
	return m, cmd
}

// updateQuiz handles decisions, the explain-mode switch and the
// explain-to-a-friend sub-flow for e.
func (m model) updateQuiz(e *scenario.Engine, msg tea.Msg) (model, tea.Cmd) {
	e.SetExplainMode(m.explainMode)
	friend, _, _ := e.Friend()

	k, isKey := msg.(tea.KeyMsg)
	if friend == scenario.FriendWriting {
		if !isKey {
			var cmd tea.Cmd
			m.friendInput, cmd = m.friendInput.Update(msg)
			return m, cmd
		}
		switch k.String() {
		case "ctrl+s":
			return m.submitExplanation(e)
		case "esc":
			e.SkipExplanation()
			m.friendInput.Blur()
			return m, nil
		case "ctrl+n":
			return m.advance(e), nil
		}
		var cmd tea.Cmd
		m.friendInput, cmd = m.friendInput.Update(msg)
		return m, cmd
	}
	if !isKey {
		return m, nil
	}

	switch k.String() {
	case "t", "1":
		return m.decide(e, models.Trust)
	case "v", "2":
		return m.decide(e, models.Verify)
	case "r", "3":
		return m.decide(e, models.Report)
	case "e":
		m.explainMode = !m.explainMode
		e.SetExplainMode(m.explainMode)
	case "enter", "n", "ctrl+n":
		return m.advance(e), nil
	}
	return m, nil
}

func (m model) decide(e *scenario.Engine, d models.Decision) (model, tea.Cmd) {
	if !e.SubmitDecision(d) {
		return m, nil
	}
	if friend, _, _ := e.Friend(); friend == scenario.FriendWriting {
		m.friendInput.Reset()
		m.friendInput.Focus()
		return m, textarea.Blink
	}
	return m, nil
}

func (m model) submitExplanation(e *scenario.Engine) (model, tea.Cmd) {
	req, ok := e.SubmitExplanation(m.friendInput.Value())
	if !ok {
		return m, nil
	}
	m.friendInput.Blur()
	task, ctx := m.inflight.Start(context.Background(), taskExplanation)
	mt := m.deps.Mentor
	fetch := func() tea.Msg {
		fb := mt.ExplanationFeedback(ctx, mentor.ExplanationRequest{
			ScenarioTitle: req.ScenarioTitle,
			AttackType:    req.AttackType,
			Explanation:   req.Explanation,
		})
		return explanationMsg{task: task, requestID: req.ID, feedback: fb.Feedback}
	}
	return m, tea.Batch(fetch, m.spinner.Tick)
}

// advance drops any pending explanation feedback and moves the engine on.
func (m model) advance(e *scenario.Engine) model {
	if !e.Advance() {
		return m
	}
	m.inflight.Cancel(taskExplanation)
	m.friendInput.Reset()
	m.friendInput.Blur()
	return m
}

// viewQuiz renders the current round of e under header.
func (m model) viewQuiz(e *scenario.Engine, header string) string {
	s := e.Scenario()
	ch := m.session.Catalog().Character(s.CharacterID)
	width := min(max(m.width-4, 40), 90)

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")

	card := titleStyle.Render(s.Title) + "\n" +
		helpStyle.Render(fmt.Sprintf("%s via %s (%s)", ch.Name, s.Channel, ch.Role)) + "\n\n" +
		textStyle.Width(width-4).Render(s.Content)
	b.WriteString(cardStyle.Width(width).Render(card))
	b.WriteString("\n\n")

	fb, answered := e.Feedback()
	if !answered {
		b.WriteString("How do you respond?  [t] Trust   [v] Verify   [r] Report\n\n")
		b.WriteString(helpStyle.Render(fmt.Sprintf("e: explain mode (%s)", onOff(m.explainMode))))
		return b.String()
	}

	choice, _ := e.Choice()
	if fb.Correct {
		b.WriteString(goodStyle.Render("✔ Correct: " + choice.String()))
	} else {
		b.WriteString(badStyle.Render(fmt.Sprintf("✘ Not quite. You chose %s, the right call was %s.", choice, s.CorrectChoice)))
	}
	b.WriteString("\n")
	b.WriteString(textStyle.Width(width).Render(fb.Message))
	b.WriteString("\n")
	if fb.AttackType != "" {
		b.WriteString("\n" + titleStyle.Render("Attack type") + " " + fb.AttackType + "\n")
	}
	if fb.Tip != "" {
		b.WriteString(panelStyle.Width(width).Render("Pro tip: "+fb.Tip) + "\n")
	}

	friend, text, reply := e.Friend()
	switch friend {
	case scenario.FriendWriting:
		b.WriteString("\n" + titleStyle.Render("Explain it to a friend") + "\n")
		b.WriteString(m.friendInput.View() + "\n")
		b.WriteString(helpStyle.Render("ctrl+s: send to Agent Nova  esc: skip  ctrl+n: next scenario"))
		return b.String()
	case scenario.FriendLoading:
		b.WriteString(fmt.Sprintf("\n%s Agent Nova is reading your explanation...\n", m.spinner.View()))
	case scenario.FriendShowing:
		b.WriteString("\n" + helpStyle.Render("You: ") + textStyle.Width(width).Render(text) + "\n")
		b.WriteString(panelStyle.Width(width).Render("Agent Nova: "+reply) + "\n")
	}

	next := "enter: next scenario"
	if e.IsLast() {
		next = "enter: finish"
	}
	b.WriteString("\n" + helpStyle.Render(next+fmt.Sprintf("  e: explain mode (%s)", onOff(m.explainMode))))
	return b.String()
}

func (m model) viewClassic() string {
	e := m.session.Classic()
	if e == nil {
		return ""
	}
	round, total, _ := e.Progress()
	header := titleStyle.Render("CLASSIC MISSION") + "  " +
		helpStyle.Render(fmt.Sprintf("Agent %s  scenario %d/%d  score %d", m.session.Name(), round, total, m.session.Score()))
	return m.viewQuiz(e, header)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
