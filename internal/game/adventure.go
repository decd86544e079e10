package game

import (
	"github.com/rs/zerolog/log"
	"github.com/tatianab/cyber-defenders/internal/combat"
	"github.com/tatianab/cyber-defenders/internal/models"
	"github.com/tatianab/cyber-defenders/internal/scenario"
)

// Adventure runs the combat loop and opens a single-scenario engine whenever
// the ship flies into an uncompleted gate.
type Adventure struct {
	session *Session
	loop    *combat.Loop
	byID    map[int]models.Scenario

	completed map[int]bool
	overlay   *scenario.Engine
	overlayID int

	kills int
	hits  int
}

func newAdventure(s *Session, t combat.Tuning) *Adventure {
	a := &Adventure{
		session:   s,
		byID:      make(map[int]models.Scenario, len(s.scenarios)),
		completed: make(map[int]bool),
	}
	for _, sc := range s.scenarios {
		a.byID[sc.ID] = sc
	}
	a.loop = combat.NewLoop(t, s.scenarios, s.rng, a)
	return a
}

// Tick advances the combat loop. The world is frozen while an overlay is open
// or after the game has finished.
func (a *Adventure) Tick(dt float64, in combat.Input) {
	if a.overlay != nil || a.session.phase != PhasePlaying {
		return
	}
	a.loop.Tick(dt, in)
}

func (a *Adventure) EnemyDestroyed(combat.Enemy) { a.kills++ }
func (a *Adventure) PlayerHit(combat.Enemy)      { a.hits++ }

func (a *Adventure) GateEntered(g combat.Gate) {
	if a.overlay != nil || a.completed[g.ScenarioID] {
		return
	}
	sc, ok := a.byID[g.ScenarioID]
	if !ok {
		return
	}
	a.overlayID = sc.ID
	a.overlay = scenario.New([]models.Scenario{sc}, overlayReporter{a})
	log.Debug().Int("scenario", sc.ID).Stringer("gate", g.Kind).Msg("gate entered")
}

// CloseOverlay dismisses the open scenario. An unanswered scenario stays
// available at its gate; an answered one counts as completed so it cannot be
// scored twice.
func (a *Adventure) CloseOverlay() {
	if a.overlay == nil {
		return
	}
	if a.overlay.State() != scenario.StateUnanswered {
		a.overlay.Advance()
		return
	}
	a.overlay = nil
}

func (a *Adventure) complete() {
	a.completed[a.overlayID] = true
	a.loop.MarkCompleted(a.overlayID)
	a.overlay = nil
	if len(a.completed) == len(a.byID) {
		a.session.Finish()
	}
}

func (a *Adventure) Overlay() *scenario.Engine { return a.overlay }
func (a *Adventure) Loop() *combat.Loop        { return a.loop }
func (a *Adventure) Kills() int                { return a.kills }
func (a *Adventure) Hits() int                 { return a.hits }

// Progress reports how many gates are completed out of the total.
func (a *Adventure) Progress() (done, total int) {
	return len(a.completed), len(a.byID)
}

// overlayReporter forwards score and mistakes to the session and turns the
// overlay's completion into gate completion.
type overlayReporter struct{ a *Adventure }

func (r overlayReporter) UpdateScore(points int) { r.a.session.UpdateScore(points) }
func (r overlayReporter) AddMistake(s models.Scenario, d models.Decision) {
	r.a.session.AddMistake(s, d)
}
func (r overlayReporter) Finish() { r.a.complete() }
