package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/agritunisie/connect/internal/config"
	"github.com/agritunisie/connect/internal/core"
	db "github.com/agritunisie/connect/internal/core/database"
	"github.com/agritunisie/connect/internal/core/llm"
	"github.com/agritunisie/connect/internal/core/weather"
	"github.com/agritunisie/connect/internal/services"
)

type App struct {
	Store  core.Store
	Advice core.AdviceProvider
	Server *Server
}

func NewApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	startCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	store, err := db.NewClient(startCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("database initialized and ready")

	advice, err := llm.NewGeminiLLM(startCtx, cfg.GeminiAPIKey, cfg.GenModel)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if !advice.Configured() {
		log.Warn().Msg("GEMINI_API_KEY missing, AI advice runs in simulated mode")
	}

	meteoClient := weather.NewClient(cfg.OpenWeatherAPIKey, cfg.OpenWeatherBaseURL)
	if !meteoClient.Configured() {
		log.Warn().Msg("OPENWEATHERMAP_API_KEY missing, forecasts run in simulated mode")
	}

	meteoSvc := services.NewMeteoService(meteoClient, store, log)
	conseilSvc := services.NewConseilService(advice, store, log)

	server := NewServer(cfg, log, store, meteoSvc, conseilSvc)

	return &App{Store: store, Advice: advice, Server: server}, nil
}

func (a *App) Close() {
	if a.Advice != nil {
		_ = a.Advice.Close()
	}
	if a.Store != nil {
		_ = a.Store.Close()
	}
}
