package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "*", cfg.Server.CORSOrigins)
	assert.Equal(t, "https://services.swpc.noaa.gov/products/noaa-planetary-k-index.json", cfg.SWPC.KpURL)
	assert.Equal(t, 10*time.Second, cfg.SWPC.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Maps.InfoTimeout)
	assert.Equal(t, "Mozilla/5.0", cfg.Upstream.UserAgent)
	assert.Equal(t, "@every 5m", cfg.Health.ReportSchedule)
	assert.Equal(t, uint32(5), cfg.Health.MinRequests)
	assert.InDelta(t, 0.8, cfg.Health.FailureRatio, 1e-9)
	assert.InDelta(t, 52.2297, cfg.Moon.DefaultLat, 1e-9)
	assert.InDelta(t, 21.0122, cfg.Moon.DefaultLon, 1e-9)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("TILE_TIMEOUT", "3s")
	t.Setenv("OWM_API_KEY", "secret")
	t.Setenv("TRANSIT_URL", "http://localhost:9999")
	t.Setenv("HEALTH_REPORT_SCHEDULE", "*/10 * * * *")
	t.Setenv("MOON_DEFAULT_LAT", "-33.87")

	cfg, err := LoadConfig(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Maps.TileTimeout)
	assert.Equal(t, "secret", cfg.Maps.OWMAPIKey)
	assert.Equal(t, "http://localhost:9999", cfg.Transit.URL)
	assert.Equal(t, "*/10 * * * *", cfg.Health.ReportSchedule)
	assert.InDelta(t, -33.87, cfg.Moon.DefaultLat, 1e-9)
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := map[string]string{
		"PORT":                   "not-a-port",
		"METEO_TIMEOUT":          "0s",
		"HEALTH_FAILURE_RATIO":   "1.5",
		"HEALTH_REPORT_SCHEDULE": "whenever",
		"MOON_DEFAULT_LAT":       "north",
		"MOON_DEFAULT_LON":       "181",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := LoadConfig(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigBadDuration(t *testing.T) {
	t.Setenv("SOLAR_TIMEOUT", "soon")
	_, err := LoadConfig(context.Background())
	assert.Error(t, err)
}
