package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tatianab/cyber-defenders/internal/combat"
	"github.com/tatianab/cyber-defenders/internal/game"
	"github.com/tatianab/cyber-defenders/internal/scenario"
)

const (
	frameRate = time.Second / 30
	// Terminals report key presses and repeats but no releases, so a key
	// counts as held until this long after its last repeat.
	holdWindow = 180 * time.Millisecond
	// maxFrameDt keeps a stalled terminal from teleporting the world.
	maxFrameDt = 0.1

	radarCols = 61
	radarRows = 23
	// World units per radar cell.
	radarScaleX = 2.0
	radarScaleZ = 4.0
)

var (
	shipStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D7FF")).Bold(true)
	enemyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")).Bold(true)
	shotStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF5F"))
	gateStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#AF87FF")).Bold(true)
	gateDoneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F"))
	radarFrameStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#3C3C3C"))
)

// arcade is the terminal-side control state of adventure mode.
type arcade struct {
	held       map[string]time.Time
	fire       bool
	bulletTime bool
	weapon     combat.Weapon
	lastFrame  time.Time
}

func newArcade() arcade {
	return arcade{held: make(map[string]time.Time)}
}

func frame(epoch int) tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg { return frameMsg{at: t, epoch: epoch} })
}

func (a arcade) isHeld(now time.Time, keys ...string) bool {
	for _, k := range keys {
		if t, ok := a.held[k]; ok && now.Sub(t) < holdWindow {
			return true
		}
	}
	return false
}

// input maps the held keys at now onto a combat input.
func (a arcade) input(now time.Time) combat.Input {
	in := combat.Input{Fire: a.fire, Weapon: a.weapon, BulletTime: a.bulletTime}
	if a.isHeld(now, "w", "W", "up") {
		in.Move.Z--
	}
	if a.isHeld(now, "s", "S", "down") {
		in.Move.Z++
	}
	if a.isHeld(now, "a", "A", "left") {
		in.Move.X--
	}
	if a.isHeld(now, "d", "D", "right") {
		in.Move.X++
	}
	in.Turbo = a.isHeld(now, "W", "A", "S", "D", "shift+up", "shift+down", "shift+left", "shift+right")
	if a.isHeld(now, "shift+up") {
		in.Move.Z--
	}
	if a.isHeld(now, "shift+down") {
		in.Move.Z++
	}
	if a.isHeld(now, "shift+left") {
		in.Move.X--
	}
	if a.isHeld(now, "shift+right") {
		in.Move.X++
	}
	return in
}

func (m model) updateAdventure(msg tea.Msg) (tea.Model, tea.Cmd) {
	adv := m.session.Adventure()
	if adv == nil {
		return m, nil
	}
	if f, ok := msg.(frameMsg); ok && f.epoch != m.frameEpoch {
		return m, nil
	}

	if ov := adv.Overlay(); ov != nil {
		if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEsc {
			if friend, _, _ := ov.Friend(); friend == scenario.FriendWriting {
				// esc belongs to the friend sub-flow while it is open.
				m, cmd := m.updateQuiz(ov, msg)
				return m, cmd
			}
			m.inflight.Cancel(taskExplanation)
			adv.CloseOverlay()
			return m.afterOverlay()
		}
		if f, ok := msg.(frameMsg); ok {
			// Keep the frame clock alive but frozen while the overlay is open.
			m.arcade.lastFrame = f.at
			return m, frame(m.frameEpoch)
		}
		m, cmd := m.updateQuiz(ov, msg)
		if adv.Overlay() == nil {
			m, next := m.afterOverlay()
			return m, tea.Batch(cmd, next)
		}
		return m, cmd
	}

	switch msg := msg.(type) {
	case frameMsg:
		now := msg.at
		dt := maxFrameDt
		if !m.arcade.lastFrame.IsZero() {
			dt = math.Min(now.Sub(m.arcade.lastFrame).Seconds(), maxFrameDt)
		}
		m.arcade.lastFrame = now
		adv.Tick(dt, m.arcade.input(now))
		if m.session.Phase() == game.PhaseDebrief {
			return m.finishGame()
		}
		return m, frame(m.frameEpoch)

	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case " ", "f":
			m.arcade.fire = !m.arcade.fire
		case "b":
			m.arcade.bulletTime = !m.arcade.bulletTime
		case "q", "tab":
			m.arcade.weapon = m.arcade.weapon.Next()
		case "1":
			m.arcade.weapon = combat.WeaponSingle
		case "2":
			m.arcade.weapon = combat.WeaponSpread
		case "3":
			m.arcade.weapon = combat.WeaponHeavy
		case "esc":
			m.inflight.Cancel(taskExplanation)
			m.session.PlayAgain()
			m.screen = screenMenu
			return m, nil
		default:
			m.arcade.held[key] = time.Now()
		}
	}
	return m, nil
}

// afterOverlay resumes flight, or goes to the debrief if the last gate was
// just completed.
func (m model) afterOverlay() (model, tea.Cmd) {
	m.friendInput.Reset()
	m.friendInput.Blur()
	m.arcade.held = make(map[string]time.Time)
	if m.session.Phase() == game.PhaseDebrief {
		return m.finishGame()
	}
	return m, nil
}

func (m model) viewAdventure() string {
	adv := m.session.Adventure()
	if adv == nil {
		return ""
	}
	done, total := adv.Progress()
	header := titleStyle.Render("ADVENTURE MISSION") + "  " +
		helpStyle.Render(fmt.Sprintf("Agent %s  gates %d/%d  score %d", m.session.Name(), done, total, m.session.Score()))

	if ov := adv.Overlay(); ov != nil {
		return m.viewQuiz(ov, header) + "\n" + helpStyle.Render("esc: back to the ship")
	}

	hud := fmt.Sprintf(
		"Weapon: %s\nFire: %s\nBullet time: %s\n\nKills: %d\nHull hits: %d\nScore: %d\n\nGates: %d/%d",
		m.arcade.weapon, onOff(m.arcade.fire), onOff(m.arcade.bulletTime),
		adv.Kills(), adv.Hits(), m.session.Score(), done, total,
	)
	legend := "\n\n" + shipStyle.Render("^") + " you  " + enemyStyle.Render("x") + " intruder\n" +
		gateStyle.Render("F P G") + " gates  " + gateDoneStyle.Render("#") + " cleared"
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		radarFrameStyle.Render(renderRadar(adv.Loop())),
		panelStyle.Render(hud+legend),
	)
	help := helpStyle.Render("wasd/arrows: fly  shift: turbo  space: fire  1-3/q: weapon  b: bullet time  esc: abort")
	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", help)
}

// renderRadar draws a top-down view of the loop centred on the ship. -Z is up.
func renderRadar(l *combat.Loop) string {
	grid := make([][]string, radarRows)
	for r := range grid {
		grid[r] = make([]string, radarCols)
		for c := range grid[r] {
			grid[r][c] = " "
		}
	}
	ship := l.Ship()
	plot := func(p combat.Vec3, glyph string) {
		c := radarCols/2 + int(math.Round((p.X-ship.Position.X)/radarScaleX))
		r := radarRows/2 + int(math.Round((p.Z-ship.Position.Z)/radarScaleZ))
		if r < 0 || r >= radarRows || c < 0 || c >= radarCols {
			return
		}
		grid[r][c] = glyph
	}

	for _, g := range l.Gates() {
		if g.Completed {
			plot(g.Position, gateDoneStyle.Render("#"))
			continue
		}
		plot(g.Position, gateStyle.Render(g.Kind.String()[:1]))
	}
	for _, p := range l.Projectiles() {
		plot(p.Position, shotStyle.Render("·"))
	}
	for _, e := range l.Enemies() {
		plot(e.Position, enemyStyle.Render("x"))
	}
	plot(ship.Position, shipStyle.Render(headingGlyph(ship.Heading)))

	rows := make([]string, radarRows)
	for r := range grid {
		rows[r] = strings.Join(grid[r], "")
	}
	return strings.Join(rows, "\n")
}

func headingGlyph(h combat.Vec3) string {
	if math.Abs(h.X) > math.Abs(h.Z) {
		if h.X > 0 {
			return ">"
		}
		return "<"
	}
	if h.Z > 0 {
		return "v"
	}
	return "^"
}
