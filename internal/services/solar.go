package services

import (
	"context"
	"time"

	"github.com/bobby-s-dev/sentinel-backend/internal/models"
	"github.com/bobby-s-dev/sentinel-backend/internal/observability"
	"github.com/bobby-s-dev/sentinel-backend/pkg/client"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const (
	SourceSolarIndices = "solar.sfi"
	SourceKp           = "solar.kp"
	SourceWind         = "solar.wind"
	SourceXray         = "solar.xray"
)

// SWPCEndpoints are the NOAA Space Weather Prediction Center products behind /api/solar.
type SWPCEndpoints struct {
	SolarIndicesURL string
	KpURL           string
	WindURL         string
	XrayURL         string
}

type SolarService struct {
	aggregator *Aggregator
	endpoints  SWPCEndpoints
	timeout    time.Duration
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *zap.Logger
}

func NewSolarService(aggregator *Aggregator, endpoints SWPCEndpoints, timeout time.Duration,
	clock clockwork.Clock, metrics *observability.Metrics, logger *zap.Logger) *SolarService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SolarService{
		aggregator: aggregator,
		endpoints:  endpoints,
		timeout:    timeout,
		clock:      clock,
		metrics:    metrics,
		logger:     logger.Named("solar"),
	}
}

// Conditions fetches all four NOAA products in parallel and normalizes them.
// Upstream failures only ever degrade individual fields.
func (s *SolarService) Conditions(ctx context.Context) models.SolarConditions {
	calls := []Call{
		{Request: client.Request{Source: SourceSolarIndices, URL: s.endpoints.SolarIndicesURL, Timeout: s.timeout}, Fallback: []byte("")},
		{Request: client.Request{Source: SourceKp, URL: s.endpoints.KpURL, Timeout: s.timeout}, Fallback: []byte("[]")},
		{Request: client.Request{Source: SourceWind, URL: s.endpoints.WindURL, Timeout: s.timeout}, Fallback: []byte("{}")},
		{Request: client.Request{Source: SourceXray, URL: s.endpoints.XrayURL, Timeout: s.timeout}, Fallback: []byte("[]")},
	}
	results := s.aggregator.FetchAll(ctx, calls)

	now := s.clock.Now()
	kp, history := ParseKp(results[1].Body)
	flare, chart := SummarizeXray(results[3].Body, now)

	out := models.SolarConditions{
		SFI:       ParseSFI(results[0].Body),
		Kp:        kp,
		HistoryKp: history,
		Flare:     "Max 24h: " + flare,
		Wind:      ParseWind(results[2].Body),
		XrayFull:  chart,
	}

	s.countDefaults(out)
	return out
}

func (s *SolarService) countDefaults(out models.SolarConditions) {
	var defaulted []string
	if out.SFI == models.Unavailable {
		defaulted = append(defaulted, "sfi")
	}
	if out.Kp == models.Unavailable {
		defaulted = append(defaulted, "kp")
	}
	if out.Wind == models.Unavailable {
		defaulted = append(defaulted, "wind")
	}
	if len(out.XrayFull) == 0 {
		defaulted = append(defaulted, "xray")
	}
	if len(defaulted) == 0 {
		return
	}

	s.logger.Info("Solar fields defaulted", zap.Strings("fields", defaulted))
	if s.metrics == nil {
		return
	}
	for _, field := range defaulted {
		s.metrics.SolarDefaults.WithLabelValues(field).Inc()
	}
}
