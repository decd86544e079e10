package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tatianab/cyber-defenders/internal/combat"
	"github.com/tatianab/cyber-defenders/internal/config"
	"github.com/tatianab/cyber-defenders/internal/game"
	"github.com/tatianab/cyber-defenders/internal/leaderboard"
	"github.com/tatianab/cyber-defenders/internal/mentor"
	"github.com/tatianab/cyber-defenders/internal/models"
	"github.com/tatianab/cyber-defenders/internal/scenario"
)

const frameDt = 1.0 / 30

// player picks a decision for a scenario.
type player interface {
	Decide(ctx context.Context, s models.Scenario) models.Decision
}

type randomPlayer struct{ rng *rand.Rand }

func (p randomPlayer) Decide(_ context.Context, _ models.Scenario) models.Decision {
	return models.Decisions[p.rng.Intn(len(models.Decisions))]
}

// llmPlayer asks Gemini to play, falling back to a random choice.
type llmPlayer struct {
	gen      mentor.Generator
	fallback randomPlayer
}

func (p llmPlayer) Decide(ctx context.Context, s models.Scenario) models.Decision {
	prompt := fmt.Sprintf(`You are an employee taking a security awareness quiz.
You received this %s message titled %q:

%s

Do you trust it, verify it through another channel, or report it to security?
Return ONLY one word: trust, verify or report.`, s.Channel, s.Title, s.Content)

	text, err := p.gen.Generate(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Msg("player model failed, choosing at random")
		return p.fallback.Decide(ctx, s)
	}
	d, err := models.ParseDecision(strings.ToLower(strings.Trim(strings.TrimSpace(text), ".\"'`")))
	if err != nil {
		return p.fallback.Decide(ctx, s)
	}
	return d
}

func main() {
	var (
		seed     = flag.Int64("seed", time.Now().UnixNano(), "Random seed")
		useLLM   = flag.Bool("llm", false, "Let Gemini pick the decisions (needs GEMINI_API_KEY)")
		duration = flag.Duration("flight", 3*time.Minute, "Maximum simulated flight time in adventure mode")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	catalog, err := models.LoadCatalogFile(cfg.ScenarioFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load catalog")
	}
	tuning, err := combat.LoadTuning(cfg.GameConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load tuning")
	}

	rng := rand.New(rand.NewSource(*seed))
	var gen mentor.Generator
	var p player = randomPlayer{rng: rng}
	if cfg.GeminiAPIKey != "" {
		g, err := mentor.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create Gemini client")
		}
		defer g.Close()
		gen = g
		if *useLLM {
			p = llmPlayer{gen: g, fallback: randomPlayer{rng: rng}}
		}
	}
	nova := mentor.New(gen, cfg.FeedbackTimeout)
	store := leaderboard.NewMemoryStore()

	fmt.Println("--- Classic mission ---")
	classic := game.NewSession(catalog, store, tuning, rng)
	classic.Start("Sim Classic", game.ModeClassic)
	for classic.Phase() == game.PhasePlaying {
		e := classic.Classic()
		answer(ctx, p, e, classic)
		e.Advance()
	}
	debrief(ctx, nova, classic)

	fmt.Println("\n--- Adventure mission ---")
	adv := game.NewSession(catalog, store, tuning, rng)
	adv.Start("Sim Adventure", game.ModeAdventure)
	a := adv.Adventure()
	frames := int(duration.Seconds() / frameDt)
	for i := 0; i < frames && adv.Phase() == game.PhasePlaying; i++ {
		if ov := a.Overlay(); ov != nil {
			answer(ctx, p, ov, adv)
			ov.Advance()
			continue
		}
		a.Tick(frameDt, autopilot(a.Loop()))
	}
	done, total := a.Progress()
	fmt.Printf("Flight time: %.1fs  Gates: %d/%d  Kills: %d  Hull hits: %d\n", a.Loop().Clock(), done, total, a.Kills(), a.Hits())
	if adv.Phase() == game.PhasePlaying {
		fmt.Println("Flight time ran out before every gate was cleared.")
		adv.Finish()
	}
	debrief(ctx, nova, adv)

	fmt.Println("\n--- Leaderboard ---")
	top, _ := store.Top(ctx, 10)
	for i, e := range top {
		fmt.Printf("%d. %s %d\n", i+1, e.Username, e.Score)
	}
}

func answer(ctx context.Context, p player, e *scenario.Engine, s *game.Session) {
	sc := e.Scenario()
	d := p.Decide(ctx, sc)
	e.SubmitDecision(d)
	fb, _ := e.Feedback()
	mark := "✘"
	if fb.Correct {
		mark = "✔"
	}
	fmt.Printf("%s %-32s chose %-6s (correct: %-6s) score %d\n", mark, sc.Title, d, sc.CorrectChoice, s.Score())
}

// autopilot flies toward the nearest open gate with the spread gun firing.
func autopilot(l *combat.Loop) combat.Input {
	in := combat.Input{Fire: true, Weapon: combat.WeaponSpread}
	ship := l.Ship().Position
	best := -1.0
	for _, g := range l.Gates() {
		if g.Completed {
			continue
		}
		target := combat.Vec3{X: g.Position.X, Z: g.Position.Z}
		if d := target.Dist(ship); best < 0 || d < best {
			best = d
			in.Move = target.Sub(ship)
		}
	}
	in.Turbo = best > 20
	return in
}

func debrief(ctx context.Context, nova *mentor.Mentor, s *game.Session) {
	if saved := s.Saved(); saved != nil {
		<-saved
	}
	cert := s.Certification()
	fmt.Printf("Final score: %d  Rank: %s  Certificate: %v\n", s.Score(), cert.Title, s.EarnsCertificate())
	fmt.Println(s.PerformanceSummary())
	g := nova.Guidance(ctx, mentor.GuidanceRequest{
		PerformanceSummary: s.PerformanceSummary(),
		CurrentContext:     "Game Debriefing",
		FeedbackHistory:    s.FeedbackHistory(),
	})
	fmt.Printf("Agent Nova: %s\nHint: %s\nNext time: %s\n", g.Summary, g.Hint, g.ScenarioAdaptation)
}
