package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bobby-s-dev/sentinel-backend/internal/models"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNormalizeFrames(t *testing.T) {
	payload := `{"version":"2.0","host":"https://tilecache.rainviewer.com","radar":{
		"past":[{"time":1714651800,"path":"/v2/radar/1714651800"},{"time":1714651200,"path":"/v2/radar/1714651200"}],
		"nowcast":[{"time":1714652400},{"time":1714653000}]}}`

	set, ok := NormalizeFrames([]byte(payload))
	require.True(t, ok)
	assert.Equal(t, []int64{1714651200, 1714651800, 1714652400, 1714653000}, set.RadarFrames)
	assert.Equal(t, 2, set.ForecastStartIndex)
	assert.Equal(t, int64(1714651800), set.TS)
	assert.Equal(t, models.RadarStatusOK, set.Status)
}

func TestNormalizeFramesWithoutForecast(t *testing.T) {
	set, ok := NormalizeFrames([]byte(`{"radar":{"past":[{"time":600},{"time":1200}]}}`))
	require.True(t, ok)
	assert.Equal(t, len(set.RadarFrames), set.ForecastStartIndex)
}

func TestNormalizeFramesForecastKey(t *testing.T) {
	set, ok := NormalizeFrames([]byte(`{"radar":{"past":[{"time":600}],"forecast":[{"time":1200}]}}`))
	require.True(t, ok)
	assert.Equal(t, []int64{600, 1200}, set.RadarFrames)
	assert.Equal(t, 1, set.ForecastStartIndex)
}

func TestNormalizeFramesInvalid(t *testing.T) {
	for _, payload := range []string{
		`not json`,
		`{}`,
		`{"radar":{}}`,
		`{"radar":{"past":[],"nowcast":[]}}`,
	} {
		_, ok := NormalizeFrames([]byte(payload))
		assert.False(t, ok, payload)
	}
}

func TestBackupFrames(t *testing.T) {
	now := time.Unix(1714651999, 0)
	set := BackupFrames(now)

	assert.Equal(t, []int64{1714651800}, set.RadarFrames)
	assert.Equal(t, 1, set.ForecastStartIndex)
	assert.Equal(t, models.RadarStatusBackup, set.Status)
}

func TestRadarFramesFallsBackOnUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	clock := clockwork.NewFakeClockAt(time.Unix(1714652345, 0))
	svc := NewRadarService(NewAggregator(newTestBaseClient(), zap.NewNop()), srv.URL, time.Second, clock, zap.NewNop())

	set := svc.Frames(context.Background())
	assert.Equal(t, models.RadarStatusBackup, set.Status)
	assert.Equal(t, []int64{1714651800}, set.RadarFrames)
}

func TestRadarFramesLive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"radar":{"past":[{"time":1714651200}],"nowcast":[{"time":1714651800}]}}`))
	}))
	defer srv.Close()

	svc := NewRadarService(NewAggregator(newTestBaseClient(), zap.NewNop()), srv.URL, time.Second, nil, zap.NewNop())

	set := svc.Frames(context.Background())
	assert.Equal(t, models.RadarStatusOK, set.Status)
	assert.Equal(t, 1, set.ForecastStartIndex)
	assert.Len(t, set.RadarFrames, 2)
}
