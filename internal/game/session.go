package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tatianab/cyber-defenders/internal/combat"
	"github.com/tatianab/cyber-defenders/internal/leaderboard"
	"github.com/tatianab/cyber-defenders/internal/models"
	"github.com/tatianab/cyber-defenders/internal/scenario"
)

var (
	ErrNoName      = errors.New("agent name is required")
	ErrInvalidMode = errors.New("invalid game mode")
)

type Phase int

const (
	PhaseIntro Phase = iota
	PhasePlaying
	PhaseDebrief
)

func (p Phase) String() string {
	switch p {
	case PhaseIntro:
		return "intro"
	case PhasePlaying:
		return "playing"
	case PhaseDebrief:
		return "debrief"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

type Mode int

const (
	ModeClassic Mode = iota
	ModeAdventure
)

func (m Mode) String() string {
	switch m {
	case ModeClassic:
		return "classic"
	case ModeAdventure:
		return "adventure"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "classic":
		return ModeClassic, nil
	case "adventure":
		return ModeAdventure, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// saveTimeout bounds the leaderboard write at the end of a game.
const saveTimeout = 5 * time.Second

// Session owns one player's score, mistakes and the scenarios of the current
// playthrough. It mounts either a classic Scenario Engine or an Adventure.
type Session struct {
	catalog *models.Catalog
	store   leaderboard.Store
	tuning  combat.Tuning
	rng     *rand.Rand
	userID  string

	phase     Phase
	mode      Mode
	name      string
	score     int
	mistakes  []models.Mistake
	scenarios []models.Scenario
	startedAt time.Time
	endedAt   time.Time

	// mu guards the save state, which the leaderboard write updates from its
	// own goroutine.
	mu      sync.Mutex
	saved   chan struct{}
	entry   *models.LeaderboardEntry
	saveErr error

	classic   *scenario.Engine
	adventure *Adventure
}

// NewSession prepares a session in the intro phase. A nil store keeps
// results in memory only.
func NewSession(catalog *models.Catalog, store leaderboard.Store, tuning combat.Tuning, rng *rand.Rand) *Session {
	if store == nil {
		store = leaderboard.NewMemoryStore()
	}
	return &Session{
		catalog: catalog,
		store:   store,
		tuning:  tuning,
		rng:     rng,
		userID:  uuid.NewString(),
	}
}

// Start shuffles the catalog, clears the previous playthrough and mounts
// mode.
func (s *Session) Start(name string, mode Mode) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNoName
	}
	if mode != ModeClassic && mode != ModeAdventure {
		return fmt.Errorf("%w: %d", ErrInvalidMode, mode)
	}

	s.name = name
	s.mode = mode
	s.score = 0
	s.mistakes = nil
	s.resetSave()
	s.classic, s.adventure = nil, nil
	s.scenarios = models.Shuffle(s.rng, s.catalog.Scenarios)
	s.startedAt = time.Now()
	s.endedAt = time.Time{}
	s.phase = PhasePlaying

	switch mode {
	case ModeClassic:
		s.classic = scenario.New(s.scenarios, s)
	case ModeAdventure:
		s.adventure = newAdventure(s, s.tuning)
	}
	log.Info().Str("agent", name).Stringer("mode", mode).Int("scenarios", len(s.scenarios)).Msg("game started")
	return nil
}

// UpdateScore applies a score delta. The score has no floor.
func (s *Session) UpdateScore(points int) {
	s.score += points
}

func (s *Session) AddMistake(sc models.Scenario, choice models.Decision) {
	s.mistakes = append(s.mistakes, models.Mistake{Scenario: sc, Choice: choice})
}

// Finish ends the playthrough and records it on the leaderboard. Only the
// first call of a playthrough has any effect. The leaderboard write runs in
// the background; Saved is closed when it is done and store failures are
// logged.
func (s *Session) Finish() {
	if s.phase != PhasePlaying {
		return
	}
	s.phase = PhaseDebrief
	s.endedAt = time.Now()
	log.Info().Str("agent", s.name).Int("score", s.score).Int("mistakes", len(s.mistakes)).Msg("game finished")

	done := make(chan struct{})
	s.mu.Lock()
	s.saved = done
	s.mu.Unlock()
	go s.save(done, models.LeaderboardEntry{
		UserID:    s.userID,
		Username:  s.name,
		Score:     s.score,
		Timestamp: s.endedAt.UTC(),
	})
}

func (s *Session) save(done chan struct{}, e models.LeaderboardEntry) {
	defer close(done)
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	saved, err := s.store.Append(ctx, e)
	if err != nil {
		log.Error().Err(err).Str("agent", e.Username).Int("score", e.Score).Msg("failed to save leaderboard entry")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved != done {
		// A new playthrough started while this one was being saved.
		return
	}
	if err != nil {
		s.saveErr = err
		return
	}
	s.entry = &saved
}

func (s *Session) resetSave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = nil
	s.entry = nil
	s.saveErr = nil
}

// PlayAgain returns to the intro. The aggregate is reset by the next Start.
func (s *Session) PlayAgain() {
	s.phase = PhaseIntro
	s.classic, s.adventure = nil, nil
}

func (s *Session) Phase() Phase                 { return s.phase }
func (s *Session) Mode() Mode                   { return s.mode }
func (s *Session) Name() string                 { return s.name }
func (s *Session) Score() int                   { return s.score }
func (s *Session) UserID() string               { return s.userID }
func (s *Session) Scenarios() []models.Scenario { return s.scenarios }
func (s *Session) Catalog() *models.Catalog     { return s.catalog }
func (s *Session) Store() leaderboard.Store     { return s.store }
func (s *Session) Classic() *scenario.Engine    { return s.classic }
func (s *Session) Adventure() *Adventure        { return s.adventure }

// Saved is closed once the leaderboard write of the finished playthrough is
// done. It is nil while a game is being played.
func (s *Session) Saved() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved
}

// Entry is the leaderboard record of the last finished game, if it was saved.
func (s *Session) Entry() *models.LeaderboardEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entry
}

// SaveErr is the store error of the last finished game, if saving failed.
func (s *Session) SaveErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveErr
}

// Mistakes returns a copy of the mistake log.
func (s *Session) Mistakes() []models.Mistake {
	return append([]models.Mistake(nil), s.mistakes...)
}

// Duration is the time spent in the current or last playthrough.
func (s *Session) Duration() time.Duration {
	if s.startedAt.IsZero() {
		return 0
	}
	if s.endedAt.IsZero() {
		return time.Since(s.startedAt)
	}
	return s.endedAt.Sub(s.startedAt)
}

func (s *Session) Certification() models.Certification {
	return models.CertificationFor(s.score)
}

func (s *Session) EarnsCertificate() bool {
	return models.EarnsCertificate(s.score)
}

// PerformanceSummary describes the mistakes of the playthrough for the mentor.
func (s *Session) PerformanceSummary() string {
	if len(s.mistakes) == 0 {
		return "Player made no mistakes."
	}
	titles := make([]string, len(s.mistakes))
	for i, m := range s.mistakes {
		titles[i] = m.Scenario.Title
	}
	return fmt.Sprintf("Player made %d mistakes. Incorrectly handled: %s.", len(s.mistakes), strings.Join(titles, ", "))
}

// FeedbackHistory lists the feedback the player was shown for each mistake.
func (s *Session) FeedbackHistory() []string {
	out := make([]string, 0, len(s.mistakes))
	for _, m := range s.mistakes {
		out = append(out, m.Scenario.Feedback.Incorrect)
	}
	return out
}
