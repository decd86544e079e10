package mentor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeGenerator struct {
	reply   string
	err     error
	block   bool
	prompts []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}

func TestGuidanceParsesFencedYAML(t *testing.T) {
	gen := &fakeGenerator{reply: "```yaml\nhint: \"Check the domain.\"\nsummary: \"Good work.\"\nscenario_adaptation: \"More vishing.\"\n```"}
	m := New(gen, time.Second)

	g := m.Guidance(context.Background(), GuidanceRequest{
		PerformanceSummary: "Player made 1 mistakes. Incorrectly handled: Urgent Invoice.",
		CurrentContext:     "Urgent Invoice",
		FeedbackHistory:    []string{"Verify unusual payment requests."},
	})
	want := Guidance{Hint: "Check the domain.", Summary: "Good work.", ScenarioAdaptation: "More vishing."}
	if g != want {
		t.Fatalf("got %+v, want %+v", g, want)
	}
	if len(gen.prompts) != 1 {
		t.Fatalf("expected a single attempt, got %d", len(gen.prompts))
	}
	p := gen.prompts[0]
	for _, s := range []string{"Agent Nova", "Incorrectly handled: Urgent Invoice.", "- Verify unusual payment requests."} {
		if !strings.Contains(p, s) {
			t.Errorf("prompt is missing %q", s)
		}
	}
}

func TestGuidanceFallsBack(t *testing.T) {
	cases := map[string]*Mentor{
		"offline":    New(nil, time.Second),
		"error":      New(&fakeGenerator{err: errors.New("quota exceeded")}, time.Second),
		"not yaml":   New(&fakeGenerator{reply: "hint: [unterminated"}, time.Second),
		"incomplete": New(&fakeGenerator{reply: "hint: \"only a hint\""}, time.Second),
	}
	for name, m := range cases {
		if g := m.Guidance(context.Background(), GuidanceRequest{PerformanceSummary: "Player made no mistakes."}); g != FallbackGuidance() {
			t.Errorf("%s: expected fallback, got %+v", name, g)
		}
	}
}

func TestGuidanceTimeoutYieldsFallback(t *testing.T) {
	m := New(&fakeGenerator{block: true}, 10*time.Millisecond)
	done := make(chan Guidance, 1)
	go func() { done <- m.Guidance(context.Background(), GuidanceRequest{PerformanceSummary: "x"}) }()

	select {
	case g := <-done:
		if g.Hint != FallbackHint {
			t.Fatalf("expected fallback hint, got %q", g.Hint)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("guidance did not give up after its timeout")
	}
}

func TestExplanationFeedback(t *testing.T) {
	gen := &fakeGenerator{reply: "feedback: \"Simple and actionable.\""}
	m := New(gen, time.Second)
	fb := m.ExplanationFeedback(context.Background(), ExplanationRequest{
		ScenarioTitle: "Gift Card Emergency",
		AttackType:    "CEO Fraud",
		Explanation:   "If your boss texts for gift cards, call them first.",
	})
	if fb.Feedback != "Simple and actionable." {
		t.Fatalf("unexpected feedback %q", fb.Feedback)
	}
	if !strings.Contains(gen.prompts[0], `"Gift Card Emergency" and it was a "CEO Fraud" attack`) {
		t.Errorf("prompt does not describe the scenario:\n%s", gen.prompts[0])
	}

	off := New(nil, 0).ExplanationFeedback(context.Background(), ExplanationRequest{Explanation: "x"})
	if off.Feedback != FallbackExplanation {
		t.Fatalf("expected fallback, got %q", off.Feedback)
	}
}

func TestInflightSupersedes(t *testing.T) {
	f := NewInflight()
	first, ctx1 := f.Start(context.Background(), "explanation")
	second, ctx2 := f.Start(context.Background(), "explanation")

	if ctx1.Err() == nil {
		t.Fatal("starting a new request should cancel the previous one")
	}
	if f.Done("explanation", first) {
		t.Fatal("superseded request must not be reported current")
	}
	if !f.Pending("explanation") {
		t.Fatal("second request should still be pending")
	}
	if !f.Done("explanation", second) {
		t.Fatal("latest request should be current")
	}
	if ctx2.Err() == nil {
		t.Fatal("done request should release its context")
	}
	if f.Done("explanation", second) {
		t.Fatal("a request completes only once")
	}

	id, ctx := f.Start(context.Background(), "guidance")
	f.Cancel("guidance")
	if ctx.Err() == nil || f.Done("guidance", id) {
		t.Fatal("cancelled request should be aborted and stale")
	}
}
