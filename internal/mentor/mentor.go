package mentor

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/guidance.txt
var guidancePrompt string

//go:embed prompts/explanation.txt
var explanationPrompt string

var (
	guidanceTmpl    = template.Must(template.New("guidance").Parse(guidancePrompt))
	explanationTmpl = template.Must(template.New("explanation").Parse(explanationPrompt))
)

// Literal fallbacks shown whenever the model cannot be reached or answers
// with something unusable.
const (
	FallbackHint               = "Always double-check the sender's email address."
	FallbackSummary            = "You've shown great potential. Keep practicing to sharpen your instincts. Focus on verifying unusual requests, even from trusted sources."
	FallbackScenarioAdaptation = "Focus on phishing and impersonation scenarios next time."
	FallbackExplanation        = "I seem to be having trouble connecting to the network. The most important thing is to keep your explanation simple and tell your friend what to look out for next time. Avoid technical terms."
)

var (
	ErrOffline    = errors.New("mentor: no model configured")
	ErrNoContent  = errors.New("mentor: no content returned from Gemini")
	ErrBadPayload = errors.New("mentor: response is missing required fields")
)

// Generator turns a prompt into model text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Gemini is a Generator backed by the Gemini API.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Gemini{client: client, model: client.GenerativeModel(model)}, nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrNoContent
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response type from Gemini")
	}
	return string(text), nil
}

type GuidanceRequest struct {
	PerformanceSummary string   `json:"playerPerformanceSummary" binding:"required"`
	CurrentContext     string   `json:"currentScenario,omitempty"`
	FeedbackHistory    []string `json:"feedbackHistory,omitempty"`
}

type Guidance struct {
	Hint               string `json:"hint" yaml:"hint"`
	Summary            string `json:"summary" yaml:"summary"`
	ScenarioAdaptation string `json:"scenarioAdaptation" yaml:"scenario_adaptation"`
}

type ExplanationRequest struct {
	ScenarioTitle string `json:"scenarioTitle" binding:"required"`
	AttackType    string `json:"attackType"`
	Explanation   string `json:"explanation" binding:"required"`
}

type ExplanationFeedback struct {
	Feedback string `json:"feedback" yaml:"feedback"`
}

// FallbackGuidance is the guidance used when the model is unavailable.
func FallbackGuidance() Guidance {
	return Guidance{Hint: FallbackHint, Summary: FallbackSummary, ScenarioAdaptation: FallbackScenarioAdaptation}
}

// Mentor produces Agent Nova's feedback. A Mentor without a Generator always
// answers with the fallbacks.
type Mentor struct {
	gen     Generator
	timeout time.Duration
}

// New returns a Mentor that calls gen once per request, giving up after
// timeout. A zero timeout means no deadline beyond the caller's context.
func New(gen Generator, timeout time.Duration) *Mentor {
	return &Mentor{gen: gen, timeout: timeout}
}

// Guidance never fails: errors are logged and replaced by the fallback.
func (m *Mentor) Guidance(ctx context.Context, req GuidanceRequest) Guidance {
	g, err := m.guidance(ctx, req)
	if err != nil {
		log.Warn().Err(err).Msg("mentor guidance unavailable, using fallback")
		return FallbackGuidance()
	}
	return g
}

func (m *Mentor) guidance(ctx context.Context, req GuidanceRequest) (Guidance, error) {
	var g Guidance
	if err := m.ask(ctx, guidanceTmpl, req, &g); err != nil {
		return Guidance{}, err
	}
	if g.Hint == "" || g.Summary == "" || g.ScenarioAdaptation == "" {
		return Guidance{}, ErrBadPayload
	}
	return g, nil
}

// ExplanationFeedback never fails: errors are logged and replaced by the
// fallback.
func (m *Mentor) ExplanationFeedback(ctx context.Context, req ExplanationRequest) ExplanationFeedback {
	fb, err := m.explanationFeedback(ctx, req)
	if err != nil {
		log.Warn().Err(err).Str("scenario", req.ScenarioTitle).Msg("explanation feedback unavailable, using fallback")
		return ExplanationFeedback{Feedback: FallbackExplanation}
	}
	return fb
}

func (m *Mentor) explanationFeedback(ctx context.Context, req ExplanationRequest) (ExplanationFeedback, error) {
	var fb ExplanationFeedback
	if err := m.ask(ctx, explanationTmpl, req, &fb); err != nil {
		return ExplanationFeedback{}, err
	}
	if fb.Feedback == "" {
		return ExplanationFeedback{}, ErrBadPayload
	}
	return fb, nil
}

func (m *Mentor) ask(ctx context.Context, tmpl *template.Template, data, out any) error {
	if m == nil || m.gen == nil {
		return ErrOffline
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("rendering %s prompt: %w", tmpl.Name(), err)
	}
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	start := time.Now()
	text, err := m.gen.Generate(ctx, buf.String())
	if err != nil {
		return fmt.Errorf("%s request: %w", tmpl.Name(), err)
	}
	log.Debug().Str("prompt", tmpl.Name()).Dur("took", time.Since(start)).Msg("mentor response")
	return DecodeYAML(text, out)
}

// DecodeYAML parses model output, tolerating a surrounding markdown code fence.
func DecodeYAML(text string, out any) error {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```yaml")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	if err := yaml.Unmarshal([]byte(clean), out); err != nil {
		return fmt.Errorf("failed to parse YAML: %w\nOutput was: %s", err, clean)
	}
	return nil
}
