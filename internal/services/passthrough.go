package services

import (
	"context"

	"github.com/bobby-s-dev/sentinel-backend/internal/models"
	"go.uber.org/zap"
)

type ForecastFetcher interface {
	Forecast(ctx context.Context, lat, lon string) ([]byte, error)
}

type DeparturesFetcher interface {
	Departures(ctx context.Context, stopID string) ([]byte, error)
}

// MeteoService forwards forecast queries; a failure is the caller's to report.
type MeteoService struct {
	client ForecastFetcher
	logger *zap.Logger
}

func NewMeteoService(client ForecastFetcher, logger *zap.Logger) *MeteoService {
	return &MeteoService{client: client, logger: logger.Named("meteo")}
}

func (s *MeteoService) Forecast(ctx context.Context, lat, lon string) ([]byte, error) {
	return s.client.Forecast(ctx, lat, lon)
}

// TransitOffline is the fixed body for any transit failure.
var TransitOffline = models.TransitOffline{Status: "offline"}

type TransitService struct {
	client DeparturesFetcher
	logger *zap.Logger
}

func NewTransitService(client DeparturesFetcher, logger *zap.Logger) *TransitService {
	return &TransitService{client: client, logger: logger.Named("transit")}
}

// Departures returns the upstream body, or ok=false when the stop board is offline.
func (s *TransitService) Departures(ctx context.Context, stopID string) ([]byte, bool) {
	body, err := s.client.Departures(ctx, stopID)
	if err != nil {
		s.logger.Info("Transit offline", zap.String("stop", stopID), zap.Error(err))
		return nil, false
	}
	return body, true
}
