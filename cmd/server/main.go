package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tatianab/cyber-defenders/internal/api"
	"github.com/tatianab/cyber-defenders/internal/config"
	"github.com/tatianab/cyber-defenders/internal/leaderboard"
	"github.com/tatianab/cyber-defenders/internal/mentor"
	"github.com/tatianab/cyber-defenders/internal/models"
)

func main() {
	var (
		showHelp = flag.Bool("help", false, "Show help message")
		portFlag = flag.String("port", "", "Port to listen on (overrides PORT env var)")
		memory   = flag.Bool("memory", false, "Keep the leaderboard in memory instead of DATA_DIR")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`Cyber Defenders server: leaderboard and Agent Nova feedback API

Usage: %s [options]

Options:
  -h, --help      Show this help message
  --port PORT     Port to listen on (default: 8080 or PORT env var)
  --memory        Do not persist the leaderboard

Environment Variables:
  PORT                Port to listen on (default: 8080)
  GEMINI_API_KEY      Gemini API key (optional, fallback feedback without it)
  GEMINI_MODEL        Gemini model (default: gemini-2.5-flash)
  DATA_DIR            Directory for leaderboard.yaml (default: .cyberdefenders)
  FEEDBACK_TIMEOUT    Timeout of a mentor request (default: 20s)
  LOG_LEVEL           zerolog level (default: info)
  SCENARIO_FILE       YAML file replacing the built-in scenarios (optional)
`, os.Args[0])
		return
	}

	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = log.Output(cw)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)
	port := *portFlag
	if port == "" {
		port = cfg.Port
	}

	catalog, err := models.LoadCatalogFile(cfg.ScenarioFile)
	if err != nil {
		log.Fatal().Err(err).Msg("loading scenarios")
	}

	var store leaderboard.Store = leaderboard.NewMemoryStore()
	if !*memory {
		fs, err := leaderboard.NewFileStore(cfg.LeaderboardPath())
		if err != nil {
			log.Fatal().Err(err).Msg("opening leaderboard")
		}
		store = fs
	}

	var gen mentor.Generator
	if cfg.GeminiAPIKey != "" {
		g, err := mentor.NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatal().Err(err).Msg("creating gemini client")
		}
		defer g.Close()
		gen = g
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set, mentor routes return fallback feedback")
	}

	gin.SetMode(gin.ReleaseMode)
	srv := api.New(catalog, store, mentor.New(gen, cfg.FeedbackTimeout), rand.New(rand.NewSource(time.Now().UnixNano())))

	log.Info().Str("port", port).Bool("persistent", !*memory).Msg("listening")
	if err := srv.Router().Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
