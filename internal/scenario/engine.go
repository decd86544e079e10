package scenario

import (
	"strings"

	"github.com/google/uuid"
	"github.com/tatianab/cyber-defenders/internal/models"
)

const (
	CorrectPoints   = 100
	IncorrectPoints = -50
)

// State is where the current round stands.
type State int

const (
	StateUnanswered State = iota
	StateAnswered
	StateExplaining
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateUnanswered:
		return "Unanswered"
	case StateAnswered:
		return "Answered"
	case StateExplaining:
		return "Explaining"
	case StateFinished:
		return "Finished"
	}
	return "Unknown"
}

// FriendState tracks the "explain it to a friend" sub-flow of a round.
type FriendState int

const (
	FriendIdle FriendState = iota
	FriendWriting
	FriendLoading
	FriendShowing
)

// Reporter receives score deltas, mistakes and completion from an Engine.
type Reporter interface {
	UpdateScore(points int)
	AddMistake(s models.Scenario, choice models.Decision)
	Finish()
}

// Feedback is what the player sees after deciding.
type Feedback struct {
	Correct    bool
	Message    string
	AttackType string
	Tip        string
}

// ExplanationRequest is handed to the explanation feedback service.
type ExplanationRequest struct {
	ID            string
	ScenarioTitle string
	AttackType    string
	Explanation   string
}

// Engine plays a list of scenarios one round at a time. It is not safe for
// concurrent use.
type Engine struct {
	scenarios []models.Scenario
	reporter  Reporter

	index       int
	choice      models.Decision
	correct     bool
	showing     bool
	finished    bool
	explainMode bool
	score       int

	friend         FriendState
	pendingID      string
	explanation    string
	friendFeedback string
}

// New starts an engine at the first scenario. scenarios must not be empty.
func New(scenarios []models.Scenario, r Reporter) *Engine {
	return &Engine{scenarios: scenarios, reporter: r}
}

// Scenario returns the scenario of the current round.
func (e *Engine) Scenario() models.Scenario {
	return e.scenarios[e.index]
}

func (e *Engine) State() State {
	switch {
	case e.finished:
		return StateFinished
	case e.choice == models.DecisionNone:
		return StateUnanswered
	case e.friend == FriendWriting || e.friend == FriendLoading:
		return StateExplaining
	default:
		return StateAnswered
	}
}

// SubmitDecision records the player's choice for the current round and scores
// it. It reports false when the round already has a decision or the engine has
// finished; nothing changes in that case.
func (e *Engine) SubmitDecision(d models.Decision) bool {
	if e.finished || e.choice != models.DecisionNone || d == models.DecisionNone {
		return false
	}
	s := e.Scenario()
	e.choice = d
	e.correct = d == s.CorrectChoice
	if e.correct {
		e.score += CorrectPoints
		e.reporter.UpdateScore(CorrectPoints)
		if s.CorrectChoice != models.Trust {
			e.friend = FriendWriting
		}
	} else {
		e.score += IncorrectPoints
		e.reporter.UpdateScore(IncorrectPoints)
		e.reporter.AddMistake(s, d)
	}
	e.showing = true
	return true
}

// Feedback returns the outcome text of the current round, and false before a
// decision is made.
func (e *Engine) Feedback() (Feedback, bool) {
	if !e.showing {
		return Feedback{}, false
	}
	s := e.Scenario()
	fb := Feedback{Correct: e.correct, Message: s.Feedback.Incorrect}
	if e.correct {
		fb.Message = s.Feedback.Correct
	}
	if e.explainMode {
		fb.AttackType = s.AttackType
		fb.Tip = s.Feedback.Tip
	}
	return fb, true
}

// Advance moves to the next scenario, or finishes after the last one. It
// reports false if no feedback is showing yet.
func (e *Engine) Advance() bool {
	if e.finished || !e.showing {
		return false
	}
	e.resetRound()
	if e.index >= len(e.scenarios)-1 {
		e.finished = true
		e.reporter.Finish()
		return true
	}
	e.index++
	return true
}

func (e *Engine) resetRound() {
	e.choice = models.DecisionNone
	e.correct = false
	e.showing = false
	e.friend = FriendIdle
	e.pendingID = ""
	e.explanation = ""
	e.friendFeedback = ""
}

// SetExplainMode toggles disclosure of the attack type and pro tip.
func (e *Engine) SetExplainMode(on bool) { e.explainMode = on }

func (e *Engine) ExplainMode() bool { return e.explainMode }

// Friend returns the sub-flow state together with the submitted explanation
// and the feedback received for it.
func (e *Engine) Friend() (FriendState, string, string) {
	return e.friend, e.explanation, e.friendFeedback
}

// SubmitExplanation hands the player's explanation off for feedback. Blank
// text, or a round that is not waiting for one, is ignored.
func (e *Engine) SubmitExplanation(text string) (ExplanationRequest, bool) {
	text = strings.TrimSpace(text)
	if e.friend != FriendWriting || text == "" {
		return ExplanationRequest{}, false
	}
	s := e.Scenario()
	e.explanation = text
	e.pendingID = uuid.NewString()
	e.friend = FriendLoading
	return ExplanationRequest{
		ID:            e.pendingID,
		ScenarioTitle: s.Title,
		AttackType:    s.AttackType,
		Explanation:   text,
	}, true
}

// ApplyExplanationFeedback stores feedback for request id. Responses for a
// request that is no longer pending are dropped and false is returned.
func (e *Engine) ApplyExplanationFeedback(id, feedback string) bool {
	if e.friend != FriendLoading || id == "" || id != e.pendingID {
		return false
	}
	e.friendFeedback = feedback
	e.pendingID = ""
	e.friend = FriendShowing
	return true
}

// SkipExplanation abandons the sub-flow for this round.
func (e *Engine) SkipExplanation() {
	if e.friend == FriendWriting || e.friend == FriendLoading {
		e.friend = FriendIdle
		e.pendingID = ""
	}
}

// PendingExplanation returns the id of the in-flight feedback request, if any.
func (e *Engine) PendingExplanation() string { return e.pendingID }

// Progress returns the 1-based round number, the number of rounds and the
// score earned in this engine.
func (e *Engine) Progress() (round, total, score int) {
	return e.index + 1, len(e.scenarios), e.score
}

// Choice returns the decision made this round and whether it was correct.
func (e *Engine) Choice() (models.Decision, bool) {
	return e.choice, e.correct
}

func (e *Engine) IsLast() bool { return e.index == len(e.scenarios)-1 }
