package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tatianab/cyber-defenders/internal/models"
	"gopkg.in/yaml.v3"
)

// FileStore appends each entry as its own YAML document, so a crash can only
// lose the entry being written.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates the parent directory of path if needed.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating leaderboard dir: %w", err)
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Append(_ context.Context, e models.LeaderboardEntry) (models.LeaderboardEntry, error) {
	e, err := Prepare(e, time.Now())
	if err != nil {
		return e, err
	}
	data, err := yaml.Marshal(e)
	if err != nil {
		return e, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return e, fmt.Errorf("opening leaderboard: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append([]byte("---\n"), data...)); err != nil {
		return e, fmt.Errorf("writing leaderboard entry: %w", err)
	}
	return e, nil
}

func (s *FileStore) Top(_ context.Context, n int) ([]models.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.load()
	if err != nil {
		return nil, err
	}
	return rank(entries, ClampLimit(n)), nil
}

func (s *FileStore) load() ([]models.LeaderboardEntry, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening leaderboard: %w", err)
	}
	defer f.Close()

	var entries []models.LeaderboardEntry
	dec := yaml.NewDecoder(f)
	for {
		var e models.LeaderboardEntry
		err := dec.Decode(&e)
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading leaderboard entry %d: %w", len(entries)+1, err)
		}
		entries = append(entries, e)
	}
}
