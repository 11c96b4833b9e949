package services

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/bobby-s-dev/sentinel-backend/internal/models"
	"github.com/bobby-s-dev/sentinel-backend/pkg/client"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const frameStep = 600 // seconds between radar frames

type RadarService struct {
	aggregator *Aggregator
	mapsURL    string
	timeout    time.Duration
	clock      clockwork.Clock
	logger     *zap.Logger
}

func NewRadarService(aggregator *Aggregator, mapsURL string, timeout time.Duration, clock clockwork.Clock, logger *zap.Logger) *RadarService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RadarService{
		aggregator: aggregator,
		mapsURL:    mapsURL,
		timeout:    timeout,
		clock:      clock,
		logger:     logger.Named("radar"),
	}
}

// Frames always returns a usable frame set; Status tells live data from the
// synthetic backup frame.
func (s *RadarService) Frames(ctx context.Context) models.RadarFrameSet {
	results := s.aggregator.FetchAll(ctx, []Call{{Request: client.MapsRequest(s.mapsURL, s.timeout)}})

	if results[0].OK() {
		if set, ok := NormalizeFrames(results[0].Body); ok {
			return set
		}
		s.logger.Warn("Radar frame listing malformed, using backup frame")
	}
	return BackupFrames(s.clock.Now())
}

// NormalizeFrames flattens past then forecast frames, each ascending.
// It reports false when the payload lacks the radar frame lists.
func NormalizeFrames(payload []byte) (models.RadarFrameSet, bool) {
	var maps client.RainViewerMaps
	if err := json.Unmarshal(payload, &maps); err != nil || maps.Radar == nil || maps.Radar.Past == nil {
		return models.RadarFrameSet{}, false
	}

	forecastFrames := maps.Radar.Nowcast
	if len(forecastFrames) == 0 {
		forecastFrames = maps.Radar.Forecast
	}

	past := frameTimes(maps.Radar.Past)
	forecast := frameTimes(forecastFrames)
	if len(past)+len(forecast) == 0 {
		return models.RadarFrameSet{}, false
	}

	frames := make([]int64, 0, len(past)+len(forecast))
	frames = append(frames, past...)
	frames = append(frames, forecast...)

	ts := frames[0]
	if len(past) > 0 {
		ts = past[len(past)-1]
	}

	return models.RadarFrameSet{
		RadarFrames:        frames,
		ForecastStartIndex: len(past),
		TS:                 ts,
		Status:             models.RadarStatusOK,
	}, true
}

// BackupFrames is a single frame at now rounded down to the frame step,
// counted as the last past frame.
func BackupFrames(now time.Time) models.RadarFrameSet {
	ts := now.Unix() / frameStep * frameStep
	return models.RadarFrameSet{
		RadarFrames:        []int64{ts},
		ForecastStartIndex: 1,
		TS:                 ts,
		Status:             models.RadarStatusBackup,
	}
}

func frameTimes(frames []client.RainViewerFrame) []int64 {
	out := make([]int64, 0, len(frames))
	for _, f := range frames {
		if f.Time > 0 {
			out = append(out, f.Time)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
