package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tatianab/cyber-defenders/internal/game"
	"github.com/tatianab/cyber-defenders/internal/mentor"
	"github.com/tatianab/cyber-defenders/internal/models"
)

type screen int

const (
	screenName screen = iota
	screenMenu
	screenClassic
	screenAdventure
	screenDebrief
	screenLeaderboard
	screenTraining
)

// Keys under which mentor requests are tracked.
const (
	taskExplanation = "explanation"
	taskGuidance    = "guidance"
)

// debriefContext is the scenario context sent with end-of-game guidance.
const debriefContext = "Game Debriefing"

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	textStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1).
			PaddingRight(1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5F5F87")).
			Padding(0, 1)

	goodStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F")).Bold(true)
	badStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")).Bold(true)
)

// Deps are the collaborators of the terminal client.
type Deps struct {
	Session *game.Session
	Mentor  *mentor.Mentor
	// DataDir receives exported certificates.
	DataDir string
}

type model struct {
	deps     Deps
	session  *game.Session
	inflight *mentor.Inflight

	screen screen
	back   screen
	width  int
	height int

	nameInput textinput.Model
	menuIndex int

	friendInput textarea.Model
	spinner     spinner.Model
	explainMode bool

	arcade     arcade
	frameEpoch int

	debrief      viewport.Model
	guidance     *mentor.Guidance
	certNotice   string
	board        table.Model
	boardErr     error
	trainingIdx  int
	trainingView viewport.Model
}

func NewModel(d Deps) model {
	ti := textinput.New()
	ti.Placeholder = "Agent name"
	ti.Focus()
	ti.CharLimit = 32
	ti.Width = 32

	ta := textarea.New()
	ta.Placeholder = "Explain the threat to a friend who isn't into tech..."
	ta.SetWidth(60)
	ta.SetHeight(4)
	ta.CharLimit = 500

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return model{
		deps:         d,
		session:      d.Session,
		inflight:     mentor.NewInflight(),
		screen:       screenName,
		nameInput:    ti,
		friendInput:  ta,
		spinner:      sp,
		debrief:      viewport.New(80, 20),
		trainingView: viewport.New(80, 20),
		board:        newBoardTable(),
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

type explanationMsg struct {
	task      string
	requestID string
	feedback  string
}

type guidanceMsg struct {
	task     string
	guidance mentor.Guidance
}

// savedMsg reports that the leaderboard write of the finished game is done.
type savedMsg struct{}

type boardMsg struct {
	entries []models.LeaderboardEntry
	err     error
}

// frameMsg drives the adventure loop. Frames from an earlier flight carry an
// old epoch and are dropped.
type frameMsg struct {
	at    time.Time
	epoch int
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.inflight.Cancel(taskExplanation)
			m.inflight.Cancel(taskGuidance)
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.debrief.Width = int(float64(msg.Width) * 0.75)
		m.debrief.Height = msg.Height - 6
		m.trainingView.Width = int(float64(msg.Width) * 0.65)
		m.trainingView.Height = msg.Height - 6
		m.friendInput.SetWidth(min(70, msg.Width-4))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.loading() {
			return m, cmd
		}
		return m, nil

	case explanationMsg:
		if m.inflight.Done(taskExplanation, msg.task) {
			if e := m.activeEngine(); e != nil {
				e.ApplyExplanationFeedback(msg.requestID, msg.feedback)
			}
		}
		return m, nil

	case guidanceMsg:
		if m.inflight.Done(taskGuidance, msg.task) {
			g := msg.guidance
			m.guidance = &g
			m.refreshDebrief()
		}
		return m, nil

	case savedMsg:
		if m.screen == screenDebrief {
			m.refreshDebrief()
		}
		return m, nil

	case boardMsg:
		m.boardErr = msg.err
		m.board.SetRows(boardRows(msg.entries))
		return m, nil
	}

	switch m.screen {
	case screenName:
		return m.updateName(msg)
	case screenMenu:
		return m.updateMenu(msg)
	case screenClassic:
		return m.updateClassic(msg)
	case screenAdventure:
		return m.updateAdventure(msg)
	case screenDebrief:
		return m.updateDebrief(msg)
	case screenLeaderboard:
		return m.updateLeaderboard(msg)
	case screenTraining:
		return m.updateTraining(msg)
	}
	return m, nil
}

func (m model) View() string {
	var s string
	switch m.screen {
	case screenName, screenMenu:
		s = m.viewIntro()
	case screenClassic:
		s = m.viewClassic()
	case screenAdventure:
		s = m.viewAdventure()
	case screenDebrief:
		s = m.viewDebrief()
	case screenLeaderboard:
		s = m.viewLeaderboard()
	case screenTraining:
		s = m.viewTraining()
	}
	return "\n" + s + "\n"
}

// loading reports whether any mentor request is waiting on the spinner.
func (m model) loading() bool {
	return m.inflight.Pending(taskExplanation) || m.inflight.Pending(taskGuidance)
}

// finishGame moves to the debrief and asks the mentor for guidance.
func (m model) finishGame() (model, tea.Cmd) {
	m.inflight.Cancel(taskExplanation)
	m.screen = screenDebrief
	m.guidance = nil
	m.certNotice = ""
	m.refreshDebrief()

	task, ctx := m.inflight.Start(context.Background(), taskGuidance)
	req := m.guidanceRequest()
	mt := m.deps.Mentor
	fetch := func() tea.Msg {
		return guidanceMsg{task: task, guidance: mt.Guidance(ctx, req)}
	}
	return m, tea.Batch(fetch, waitSaved(m.session.Saved()), m.spinner.Tick)
}

func (m model) guidanceRequest() mentor.GuidanceRequest {
	return mentor.GuidanceRequest{
		PerformanceSummary: m.session.PerformanceSummary(),
		CurrentContext:     debriefContext,
		FeedbackHistory:    m.session.FeedbackHistory(),
	}
}

// waitSaved turns the end of a leaderboard write into a savedMsg.
func waitSaved(done <-chan struct{}) tea.Cmd {
	if done == nil {
		return nil
	}
	return func() tea.Msg {
		<-done
		return savedMsg{}
	}
}

func Run(d Deps) error {
	p := tea.NewProgram(NewModel(d), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
