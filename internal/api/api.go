package api

import (
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/tatianab/cyber-defenders/internal/leaderboard"
	"github.com/tatianab/cyber-defenders/internal/mentor"
	"github.com/tatianab/cyber-defenders/internal/models"
)

// Server exposes the leaderboard, the catalog and Agent Nova over HTTP.
type Server struct {
	catalog *models.Catalog
	store   leaderboard.Store
	mentor  *mentor.Mentor

	mu  sync.Mutex
	rng *rand.Rand
}

func New(catalog *models.Catalog, store leaderboard.Store, m *mentor.Mentor, rng *rand.Rand) *Server {
	return &Server{catalog: catalog, store: store, mentor: m, rng: rng}
}

// Router builds the gin engine with request logging and recovery.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	api := r.Group("/api")
	api.GET("/leaderboard", s.topScores)
	api.POST("/leaderboard", s.submitScore)
	api.POST("/feedback/mentor", s.mentorGuidance)
	api.POST("/feedback/explanation", s.explanationFeedback)
	api.GET("/scenarios", s.scenarios)
	api.GET("/training", s.training)
	return r
}

func requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()
	log.Info().
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", c.Writer.Status()).
		Dur("dur", time.Since(start)).
		Msg("http")
}

func (s *Server) topScores(c *gin.Context) {
	limit := leaderboard.DefaultLimit
	if q := c.Query("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_limit"})
			return
		}
		limit = n
	}
	entries, err := s.store.Top(c.Request.Context(), leaderboard.ClampLimit(limit))
	if err != nil {
		log.Error().Err(err).Msg("reading leaderboard")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "leaderboard_unavailable"})
		return
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

type scoreRequest struct {
	UserID   string `json:"userId"`
	Username string `json:"username" binding:"required,max=64"`
	Score    int    `json:"score"`
}

func (s *Server) submitScore(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Username) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_entry"})
		return
	}
	e, err := s.store.Append(c.Request.Context(), models.LeaderboardEntry{
		UserID:   req.UserID,
		Username: req.Username,
		Score:    req.Score,
	})
	if err != nil {
		log.Error().Err(err).Str("username", req.Username).Msg("saving leaderboard entry")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "leaderboard_unavailable"})
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (s *Server) mentorGuidance(c *gin.Context) {
	var req mentor.GuidanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	c.JSON(http.StatusOK, s.mentor.Guidance(c.Request.Context(), req))
}

func (s *Server) explanationFeedback(c *gin.Context) {
	var req mentor.ExplanationRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Explanation) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty_explanation"})
		return
	}
	c.JSON(http.StatusOK, s.mentor.ExplanationFeedback(c.Request.Context(), req))
}

func (s *Server) scenarios(c *gin.Context) {
	s.mu.Lock()
	shuffled := models.Shuffle(s.rng, s.catalog.Scenarios)
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"scenarios": shuffled, "characters": s.catalog.Characters})
}

func (s *Server) training(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"materials": s.catalog.Training})
}
