package leaderboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tatianab/cyber-defenders/internal/models"
)

// HTTPStore talks to the leaderboard routes of the game server.
type HTTPStore struct {
	BaseURL string
	http    *http.Client
}

func NewHTTPStore(baseURL string) *HTTPStore {
	return &HTTPStore{BaseURL: strings.TrimRight(baseURL, "/"), http: &http.Client{Timeout: 10 * time.Second}}
}

func (s *HTTPStore) Append(ctx context.Context, e models.LeaderboardEntry) (models.LeaderboardEntry, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return e, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/api/leaderboard", bytes.NewReader(b))
	if err != nil {
		return e, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.http.Do(req)
	if err != nil {
		return e, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return e, fmt.Errorf("leaderboard status %d", resp.StatusCode)
	}
	var out models.LeaderboardEntry
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return e, err
	}
	return out, nil
}

func (s *HTTPStore) Top(ctx context.Context, n int) ([]models.LeaderboardEntry, error) {
	url := s.BaseURL + "/api/leaderboard?limit=" + strconv.Itoa(ClampLimit(n))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("leaderboard status %d", resp.StatusCode)
	}
	var out struct {
		Entries []models.LeaderboardEntry `json:"entries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Entries, nil
}
