package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agritunisie/connect/internal/core"
	"github.com/agritunisie/connect/internal/core/weather"
	"github.com/agritunisie/connect/internal/models"
)

// MeteoService serves forecasts from the provider and history from the local
// cache table. Fresh forecasts refresh the cache opportunistically.
type MeteoService struct {
	provider *weather.Client
	cache    core.MeteoCacheStore
	log      zerolog.Logger
}

func NewMeteoService(provider *weather.Client, cache core.MeteoCacheStore, log zerolog.Logger) *MeteoService {
	return &MeteoService{provider: provider, cache: cache, log: log}
}

func (s *MeteoService) GetPrevisions(ctx context.Context, latitude, longitude float64, units string) (*weather.Previsions, error) {
	previsions, err := s.provider.GetPrevisions(ctx, latitude, longitude, units)
	if err != nil {
		return nil, err
	}

	// Cache refresh is best effort; a storage hiccup never fails the lookup.
	if !previsions.Simule {
		jours := make([]models.MeteoJour, 0, len(previsions.Forecast))
		for _, j := range previsions.Forecast {
			jours = append(jours, j.MeteoJour)
		}
		if err := s.cache.UpsertJours(ctx, latitude, longitude, jours); err != nil {
			s.log.Warn().Err(err).Msg("weather cache refresh failed")
		}
	}
	return previsions, nil
}

// Historique is the response of a history lookup. Data comes from the cache
// table; with no cached rows a labeled simulated payload is returned.
type Historique struct {
	Message   string             `json:"message"`
	Simule    bool               `json:"simule,omitempty"`
	Latitude  float64            `json:"latitude"`
	Longitude float64            `json:"longitude"`
	DateStart string             `json:"dateStart"`
	DateEnd   string             `json:"dateEnd"`
	Data      []models.MeteoJour `json:"data"`
}

func (s *MeteoService) GetHistorique(ctx context.Context, latitude, longitude float64, dateStart, dateEnd string) (*Historique, error) {
	jours, err := s.cache.GetHistorique(ctx, latitude, longitude, dateStart, dateEnd)
	if err != nil {
		return nil, err
	}

	h := &Historique{
		Latitude:  latitude,
		Longitude: longitude,
		DateStart: dateStart,
		DateEnd:   dateEnd,
		Data:      jours,
	}
	if len(jours) > 0 {
		h.Message = "Historique météo récupéré depuis le cache."
		return h, nil
	}

	h.Message = "Historique météo simulé (ou aucune donnée en cache pour cette période)"
	h.Simule = true
	h.Data = []models.MeteoJour{{Date: dateStart, TempMin: 14, TempMax: 22, Description: "Simulation"}}
	return h, nil
}
