package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tatianab/cyber-defenders/internal/combat"
	"github.com/tatianab/cyber-defenders/internal/config"
	"github.com/tatianab/cyber-defenders/internal/game"
	"github.com/tatianab/cyber-defenders/internal/leaderboard"
	"github.com/tatianab/cyber-defenders/internal/mentor"
	"github.com/tatianab/cyber-defenders/internal/models"
	"github.com/tatianab/cyber-defenders/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs go to a file.
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		fmt.Printf("Error creating data dir: %v\n", err)
		os.Exit(1)
	}
	logFile, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Printf("Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(cfg.LogLevel)
	log.Logger = zerolog.New(logFile).With().Timestamp().Logger()

	catalog, err := models.LoadCatalogFile(cfg.ScenarioFile)
	if err != nil {
		fmt.Printf("Error loading scenarios: %v\n", err)
		os.Exit(1)
	}

	tuning, err := combat.LoadTuning(cfg.GameConfig)
	if err != nil {
		fmt.Printf("Error loading game config: %v\n", err)
		os.Exit(1)
	}

	var store leaderboard.Store
	if cfg.LeaderboardURL != "" {
		store = leaderboard.NewHTTPStore(cfg.LeaderboardURL)
	} else if store, err = leaderboard.NewFileStore(cfg.LeaderboardPath()); err != nil {
		fmt.Printf("Error opening leaderboard: %v\n", err)
		os.Exit(1)
	}

	var gen mentor.Generator
	if cfg.GeminiAPIKey != "" {
		g, err := mentor.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			fmt.Printf("Error creating mentor: %v\n", err)
			os.Exit(1)
		}
		defer g.Close()
		gen = g
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set, Agent Nova will use canned feedback")
	}

	session := game.NewSession(catalog, store, tuning, rand.New(rand.NewSource(time.Now().UnixNano())))
	log.Info().Str("data_dir", cfg.DataDir).Bool("remote_leaderboard", cfg.LeaderboardURL != "").Msg("starting game")

	if err := tui.Run(tui.Deps{
		Session: session,
		Mentor:  mentor.New(gen, cfg.FeedbackTimeout),
		DataDir: cfg.DataDir,
	}); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
