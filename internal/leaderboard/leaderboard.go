package leaderboard

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tatianab/cyber-defenders/internal/models"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

var ErrInvalidEntry = errors.New("leaderboard: entry needs a username")

// Store persists finished games.
type Store interface {
	Append(ctx context.Context, e models.LeaderboardEntry) (models.LeaderboardEntry, error)
	// Top returns up to n entries, best score first. Equal scores keep the
	// earlier entry first.
	Top(ctx context.Context, n int) ([]models.LeaderboardEntry, error)
}

// Prepare fills in the id and timestamp of a new entry and validates it.
func Prepare(e models.LeaderboardEntry, now time.Time) (models.LeaderboardEntry, error) {
	e.Username = strings.TrimSpace(e.Username)
	if e.Username == "" {
		return e, ErrInvalidEntry
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = now.UTC()
	}
	return e, nil
}

// ClampLimit maps a requested page size onto [1, MaxLimit], defaulting when
// n is not positive.
func ClampLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultLimit
	case n > MaxLimit:
		return MaxLimit
	}
	return n
}

func rank(entries []models.LeaderboardEntry, n int) []models.LeaderboardEntry {
	out := append([]models.LeaderboardEntry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	if n < len(out) {
		out = out[:n]
	}
	return out
}

// MemoryStore keeps entries for the life of the process.
type MemoryStore struct {
	mu      sync.Mutex
	entries []models.LeaderboardEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, e models.LeaderboardEntry) (models.LeaderboardEntry, error) {
	e, err := Prepare(e, time.Now())
	if err != nil {
		return e, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return e, nil
}

func (s *MemoryStore) Top(_ context.Context, n int) ([]models.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rank(s.entries, ClampLimit(n)), nil
}
