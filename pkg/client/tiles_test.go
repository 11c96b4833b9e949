package client

import (
	"testing"

	"github.com/bobby-s-dev/sentinel-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRainViewerTilesURL(t *testing.T) {
	src := NewRainViewerTiles("https://tilecache.rainviewer.com/", "radar", 600)

	url, err := src.URL(models.TileRequest{Timestamp: 1714651800, Z: 5, X: 17, Y: 10})
	require.NoError(t, err)
	assert.Equal(t, "https://tilecache.rainviewer.com/v2/radar/1714651800/256/5/17/10/2/1_1.png", url)
	assert.Equal(t, "public, max-age=600", src.CacheControl())

	_, err = src.URL(models.TileRequest{Z: 5})
	assert.ErrorIs(t, err, ErrMissingTimestamp)
}

func TestOpenWeatherTilesURL(t *testing.T) {
	named := &OpenWeatherTiles{BaseURL: "https://tile.openweathermap.org", APIKey: "abc", MaxAge: 3600}

	url, err := named.URL(models.TileRequest{Name: "wind_new", Z: 3, X: 2, Y: 1})
	require.NoError(t, err)
	assert.Equal(t, "https://tile.openweathermap.org/map/wind_new/3/2/1.png?appid=abc", url)

	_, err = named.URL(models.TileRequest{Name: "../etc", Z: 3})
	assert.ErrorIs(t, err, ErrUnknownLayer)

	fixed := &OpenWeatherTiles{BaseURL: "https://tile.openweathermap.org", APIKey: "abc", Layer: "clouds_new"}
	url, err = fixed.URL(models.TileRequest{Name: "ignored", Z: 0})
	require.NoError(t, err)
	assert.Equal(t, "https://tile.openweathermap.org/map/clouds_new/0/0/0.png?appid=abc", url)
}
