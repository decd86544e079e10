package scenario

import (
	"math/rand"
	"testing"

	"github.com/tatianab/cyber-defenders/internal/models"
)

type tally struct {
	score    int
	mistakes []models.Mistake
	finished int
}

func (t *tally) UpdateScore(p int) { t.score += p }
func (t *tally) AddMistake(s models.Scenario, d models.Decision) {
	t.mistakes = append(t.mistakes, models.Mistake{Scenario: s, Choice: d})
}
func (t *tally) Finish() { t.finished++ }

func testScenarios() []models.Scenario {
	return []models.Scenario{
		{ID: 1, Title: "Gift cards", CorrectChoice: models.Report, AttackType: "Smishing",
			Feedback: models.Feedback{Correct: "c1", Incorrect: "i1", Tip: "t1"}},
		{ID: 2, Title: "Benefits", CorrectChoice: models.Trust, AttackType: "None",
			Feedback: models.Feedback{Correct: "c2", Incorrect: "i2", Tip: "t2"}},
		{ID: 3, Title: "Bank details", CorrectChoice: models.Verify, AttackType: "BEC",
			Feedback: models.Feedback{Correct: "c3", Incorrect: "i3", Tip: "t3"}},
		{ID: 4, Title: "USB", CorrectChoice: models.Report, AttackType: "Baiting",
			Feedback: models.Feedback{Correct: "c4", Incorrect: "i4", Tip: "t4"}},
	}
}

func TestCorrectAndIncorrectScoring(t *testing.T) {
	tl := &tally{}
	e := New(testScenarios(), tl)

	if e.State() != StateUnanswered {
		t.Fatalf("expected %s, got %s", StateUnanswered, e.State())
	}
	if !e.SubmitDecision(models.Report) {
		t.Fatal("first decision should be accepted")
	}
	if tl.score != 100 {
		t.Fatalf("expected score 100, got %d", tl.score)
	}
	fb, ok := e.Feedback()
	if !ok || !fb.Correct || fb.Message != "c1" {
		t.Fatalf("unexpected feedback %+v", fb)
	}
	if fb.AttackType != "" || fb.Tip != "" {
		t.Fatal("attack type and tip should be hidden outside explain mode")
	}

	e.Advance()
	if !e.SubmitDecision(models.Report) {
		t.Fatal("decision on second round should be accepted")
	}
	if tl.score != 50 {
		t.Fatalf("expected score 50, got %d", tl.score)
	}
	if len(tl.mistakes) != 1 || tl.mistakes[0].Scenario.ID != 2 || tl.mistakes[0].Choice != models.Report {
		t.Fatalf("unexpected mistakes %+v", tl.mistakes)
	}
	fb, _ = e.Feedback()
	if fb.Correct || fb.Message != "i2" {
		t.Fatalf("unexpected feedback %+v", fb)
	}
}

func TestDecisionIsScoredOncePerRound(t *testing.T) {
	tl := &tally{}
	e := New(testScenarios(), tl)

	e.SubmitDecision(models.Trust)
	if e.SubmitDecision(models.Report) {
		t.Fatal("second decision on the same round must be rejected")
	}
	if tl.score != -50 || len(tl.mistakes) != 1 {
		t.Fatalf("state changed on resubmission: score %d, mistakes %d", tl.score, len(tl.mistakes))
	}
	if d, _ := e.Choice(); d != models.Trust {
		t.Fatalf("expected recorded choice trust, got %v", d)
	}
}

func TestAdvanceRequiresFeedback(t *testing.T) {
	tl := &tally{}
	e := New(testScenarios(), tl)
	if e.Advance() {
		t.Fatal("advance before deciding must be rejected")
	}
	if round, _, _ := e.Progress(); round != 1 {
		t.Fatalf("expected round 1, got %d", round)
	}
}

func TestFinishFiresOnce(t *testing.T) {
	tl := &tally{}
	scenarios := testScenarios()
	e := New(scenarios, tl)
	for range scenarios {
		e.SubmitDecision(models.Verify)
		if !e.Advance() {
			t.Fatal("advance after feedback should succeed")
		}
	}
	if e.State() != StateFinished {
		t.Fatalf("expected %s, got %s", StateFinished, e.State())
	}
	if tl.finished != 1 {
		t.Fatalf("expected one completion, got %d", tl.finished)
	}
	if e.SubmitDecision(models.Report) || e.Advance() {
		t.Fatal("finished engine must ignore further actions")
	}
	if tl.finished != 1 {
		t.Fatalf("completion fired again: %d", tl.finished)
	}
	if round, total, _ := e.Progress(); round != total {
		t.Fatalf("index moved past the last scenario: round %d of %d", round, total)
	}
}

func TestScoreFormulaHoldsForRandomPlay(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for game := 0; game < 50; game++ {
		tl := &tally{}
		scenarios := testScenarios()
		e := New(scenarios, tl)
		correct, incorrect := 0, 0
		for range scenarios {
			d := models.Decisions[rng.Intn(len(models.Decisions))]
			if d == e.Scenario().CorrectChoice {
				correct++
			} else {
				incorrect++
			}
			e.SubmitDecision(d)
			e.SubmitDecision(models.Decisions[rng.Intn(len(models.Decisions))])
			e.Advance()
		}
		if want := 100*correct - 50*incorrect; tl.score != want {
			t.Fatalf("game %d: score %d, want %d", game, tl.score, want)
		}
		if len(tl.mistakes) != incorrect {
			t.Fatalf("game %d: %d mistakes, want %d", game, len(tl.mistakes), incorrect)
		}
		if _, _, own := e.Progress(); own != tl.score {
			t.Fatalf("game %d: engine score %d disagrees with reporter %d", game, own, tl.score)
		}
	}
}

func TestExplainMode(t *testing.T) {
	e := New(testScenarios(), &tally{})
	e.SetExplainMode(true)
	e.SubmitDecision(models.Trust)
	fb, _ := e.Feedback()
	if fb.AttackType != "Smishing" || fb.Tip != "t1" {
		t.Fatalf("explain mode should disclose attack type and tip, got %+v", fb)
	}
}

func TestExplainToFriendFlow(t *testing.T) {
	e := New(testScenarios(), &tally{})

	e.SubmitDecision(models.Report)
	if st, _, _ := e.Friend(); st != FriendWriting {
		t.Fatalf("expected friend sub-flow offered after a correct defensive choice, got %v", st)
	}
	if e.State() != StateExplaining {
		t.Fatalf("expected %s, got %s", StateExplaining, e.State())
	}
	if _, ok := e.SubmitExplanation("   "); ok {
		t.Fatal("blank explanation must be rejected")
	}
	req, ok := e.SubmitExplanation("Call your boss before buying anything.")
	if !ok || req.ID == "" || req.ScenarioTitle != "Gift cards" || req.AttackType != "Smishing" {
		t.Fatalf("unexpected request %+v", req)
	}
	if e.ApplyExplanationFeedback("stale", "nope") {
		t.Fatal("feedback for an unknown request must be dropped")
	}
	if !e.ApplyExplanationFeedback(req.ID, "Clear and simple.") {
		t.Fatal("feedback for the pending request should apply")
	}
	st, text, fb := e.Friend()
	if st != FriendShowing || text != "Call your boss before buying anything." || fb != "Clear and simple." {
		t.Fatalf("unexpected friend state %v %q %q", st, text, fb)
	}
}

func TestExplanationDoesNotGateAdvance(t *testing.T) {
	e := New(testScenarios(), &tally{})
	e.SubmitDecision(models.Report)
	req, _ := e.SubmitExplanation("Ignore it and tell IT.")

	if !e.Advance() {
		t.Fatal("advance must not wait for explanation feedback")
	}
	if e.ApplyExplanationFeedback(req.ID, "late") {
		t.Fatal("feedback from the previous round must be discarded")
	}
	if st, _, fb := e.Friend(); st != FriendIdle || fb != "" {
		t.Fatalf("round state not reset: %v %q", st, fb)
	}
}

func TestFriendFlowNotOfferedForTrustOrMistakes(t *testing.T) {
	e := New(testScenarios(), &tally{})
	e.SubmitDecision(models.Verify) // wrong answer to a report scenario
	if st, _, _ := e.Friend(); st != FriendIdle {
		t.Fatalf("sub-flow should not open after a mistake, got %v", st)
	}
	e.Advance()
	e.SubmitDecision(models.Trust) // correct, but trust
	if st, _, _ := e.Friend(); st != FriendIdle {
		t.Fatalf("sub-flow should not open when trust was correct, got %v", st)
	}
}
