package client

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const SourceOpenMeteo = "meteo"

// Fields requested from the forecast endpoint; the dashboard reads them as-is.
const (
	meteoCurrent = "temperature_2m,relative_humidity_2m,surface_pressure,wind_speed_10m,apparent_temperature,dew_point_2m,uv_index,cloud_cover,precipitation,snowfall"
	meteoHourly  = "temperature_2m,surface_pressure,relative_humidity_2m"
	meteoDaily   = "precipitation_sum,snowfall_sum"
)

type OpenMeteoClient struct {
	*BaseClient
	baseURL string
	timeout time.Duration
}

func NewOpenMeteoClient(base *BaseClient, baseURL string, timeout time.Duration) *OpenMeteoClient {
	return &OpenMeteoClient{
		BaseClient: base,
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
	}
}

// Forecast returns the upstream JSON body unmodified.
func (c *OpenMeteoClient) Forecast(ctx context.Context, lat, lon string) ([]byte, error) {
	url := c.baseURL + "/forecast"
	body, err := c.Do(ctx, Request{
		Source: SourceOpenMeteo,
		URL:    url,
		Query: map[string]string{
			"latitude":      lat,
			"longitude":     lon,
			"current":       meteoCurrent,
			"hourly":        meteoHourly,
			"daily":         meteoDaily,
			"timezone":      "auto",
			"forecast_days": "3",
			"models":        "icon_seamless",
		},
		Timeout: c.timeout,
	})
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, Malformed(SourceOpenMeteo, url, errors.New("response is not JSON"))
	}
	return body, nil
}
