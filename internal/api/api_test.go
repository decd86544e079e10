package api

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/tatianab/cyber-defenders/internal/leaderboard"
	"github.com/tatianab/cyber-defenders/internal/mentor"
	"github.com/tatianab/cyber-defenders/internal/models"
)

type cannedGenerator string

func (g cannedGenerator) Generate(context.Context, string) (string, error) { return string(g), nil }

func newTestServer(t *testing.T, gen mentor.Generator) (*gin.Engine, *leaderboard.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cat, err := models.DefaultCatalog()
	if err != nil {
		t.Fatal(err)
	}
	store := leaderboard.NewMemoryStore()
	s := New(cat, store, mentor.New(gen, 0), rand.New(rand.NewSource(1)))
	return s.Router(), store
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r, _ := newTestServer(t, nil)
	if w := do(r, http.MethodGet, "/health", ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestLeaderboardRoutes(t *testing.T) {
	r, _ := newTestServer(t, nil)

	for _, body := range []string{
		`{"username":"ada","score":250}`,
		`{"username":"bob","score":400,"userId":"u-2"}`,
		`{"username":"cy","score":-50}`,
	} {
		if w := do(r, http.MethodPost, "/api/leaderboard", body); w.Code != http.StatusCreated {
			t.Fatalf("POST %s: expected 201, got %d: %s", body, w.Code, w.Body)
		}
	}
	for _, body := range []string{`{"score":10}`, `{"username":"   ","score":10}`, `not json`} {
		if w := do(r, http.MethodPost, "/api/leaderboard", body); w.Code != http.StatusBadRequest {
			t.Fatalf("POST %s: expected 400, got %d", body, w.Code)
		}
	}

	w := do(r, http.MethodGet, "/api/leaderboard?limit=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var out struct {
		Entries []models.LeaderboardEntry `json:"entries"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Entries) != 2 || out.Entries[0].Username != "bob" || out.Entries[1].Username != "ada" {
		t.Fatalf("unexpected top entries %+v", out.Entries)
	}
	if out.Entries[0].UserID != "u-2" {
		t.Fatalf("user id not stored: %+v", out.Entries[0])
	}

	if w := do(r, http.MethodGet, "/api/leaderboard?limit=abc", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad limit, got %d", w.Code)
	}
}

func TestMentorFeedbackRoutes(t *testing.T) {
	r, _ := newTestServer(t, nil)

	w := do(r, http.MethodPost, "/api/feedback/mentor", `{"playerPerformanceSummary":"Player made no mistakes."}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var g mentor.Guidance
	json.Unmarshal(w.Body.Bytes(), &g)
	if g != mentor.FallbackGuidance() {
		t.Fatalf("offline mentor should return the fallback, got %+v", g)
	}

	if w := do(r, http.MethodPost, "/api/feedback/explanation", `{"scenarioTitle":"USB","explanation":"  "}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a blank explanation, got %d", w.Code)
	}

	r2, _ := newTestServer(t, cannedGenerator(`feedback: "Nice and short."`))
	w = do(r2, http.MethodPost, "/api/feedback/explanation", `{"scenarioTitle":"USB","attackType":"Baiting","explanation":"Do not plug it in."}`)
	var fb mentor.ExplanationFeedback
	json.Unmarshal(w.Body.Bytes(), &fb)
	if w.Code != http.StatusOK || fb.Feedback != "Nice and short." {
		t.Fatalf("unexpected response %d %+v", w.Code, fb)
	}
}

func TestCatalogRoutes(t *testing.T) {
	r, _ := newTestServer(t, nil)
	w := do(r, http.MethodGet, "/api/scenarios", "")
	var out struct {
		Scenarios []models.Scenario `json:"scenarios"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Scenarios) != 12 {
		t.Fatalf("expected the 12 catalog scenarios, got %d", len(out.Scenarios))
	}

	w = do(r, http.MethodGet, "/api/training", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "materials") {
		t.Fatalf("unexpected training response %d %s", w.Code, w.Body)
	}
}
