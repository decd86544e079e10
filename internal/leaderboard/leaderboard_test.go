package leaderboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/tatianab/cyber-defenders/internal/models"
)

func at(sec int) time.Time {
	return time.Date(2026, 3, 1, 12, 0, sec, 0, time.UTC)
}

func fill(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	for _, e := range []models.LeaderboardEntry{
		{Username: "ada", Score: 250, Timestamp: at(3)},
		{Username: "bob", Score: 400, Timestamp: at(2)},
		{Username: "cy", Score: 250, Timestamp: at(1)},
		{Username: "dee", Score: -100, Timestamp: at(4)},
	} {
		if _, err := s.Append(ctx, e); err != nil {
			t.Fatalf("Append(%s): %v", e.Username, err)
		}
	}
}

func checkOrder(t *testing.T, got []models.LeaderboardEntry, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d: %+v", len(want), len(got), got)
	}
	for i, name := range want {
		if got[i].Username != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, got[i].Username)
		}
	}
}

func TestMemoryStoreRanking(t *testing.T) {
	s := NewMemoryStore()
	fill(t, s)
	top, err := s.Top(context.Background(), 3)
	if err != nil {
		t.Fatal(err)
	}
	checkOrder(t, top, "bob", "cy", "ada")
}

func TestFileStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "leaderboard.yaml")
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	empty, err := s.Top(context.Background(), 10)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty board before any game, got %v, %v", empty, err)
	}
	fill(t, s)

	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	top, err := reopened.Top(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	checkOrder(t, top, "bob", "cy", "ada", "dee")
	for _, e := range top {
		if e.ID == "" {
			t.Errorf("entry %s was stored without an id", e.Username)
		}
	}
	if !top[0].Timestamp.Equal(at(2)) {
		t.Errorf("timestamp not preserved: %v", top[0].Timestamp)
	}
}

func TestAppendRejectsBlankUsername(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Append(context.Background(), models.LeaderboardEntry{Username: "  ", Score: 10}); err != ErrInvalidEntry {
		t.Fatalf("expected ErrInvalidEntry, got %v", err)
	}
	e, err := s.Append(context.Background(), models.LeaderboardEntry{Username: "nova"})
	if err != nil {
		t.Fatal(err)
	}
	if e.Timestamp.IsZero() || e.ID == "" {
		t.Fatalf("expected id and timestamp to be filled in, got %+v", e)
	}
}

func TestClampLimit(t *testing.T) {
	for in, want := range map[int]int{-1: DefaultLimit, 0: DefaultLimit, 5: 5, 100: 100, 1000: MaxLimit} {
		if got := ClampLimit(in); got != want {
			t.Errorf("ClampLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestHTTPStore(t *testing.T) {
	var posted models.LeaderboardEntry
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			if err := json.NewDecoder(r.Body).Decode(&posted); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			posted.ID = "srv-1"
			json.NewEncoder(w).Encode(posted)
		case http.MethodGet:
			if r.URL.Query().Get("limit") != "5" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"entries": []models.LeaderboardEntry{{Username: "ada", Score: 100}}})
		}
	}))
	defer srv.Close()

	s := NewHTTPStore(srv.URL + "/")
	e, err := s.Append(context.Background(), models.LeaderboardEntry{Username: "nova", Score: 250})
	if err != nil {
		t.Fatal(err)
	}
	if e.ID != "srv-1" || posted.Username != "nova" || posted.Score != 250 {
		t.Fatalf("unexpected round trip: sent %+v, got %+v", posted, e)
	}
	top, err := s.Top(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	checkOrder(t, top, "ada")
}
