package client

import "time"

const SourceRainViewerMaps = "radar.maps"

type RainViewerFrame struct {
	Time int64  `json:"time"`
	Path string `json:"path"`
}

// RainViewerMaps is the subset of weather-maps.json the dashboard uses.
type RainViewerMaps struct {
	Version   string `json:"version"`
	Generated int64  `json:"generated"`
	Host      string `json:"host"`
	Radar     *struct {
		Past     []RainViewerFrame `json:"past"`
		Nowcast  []RainViewerFrame `json:"nowcast"`
		Forecast []RainViewerFrame `json:"forecast"`
	} `json:"radar"`
}

// MapsRequest builds the frame-listing request for the fan-out.
func MapsRequest(url string, timeout time.Duration) Request {
	return Request{
		Source:  SourceRainViewerMaps,
		URL:     url,
		Headers: map[string]string{"Accept": "application/json"},
		Timeout: timeout,
	}
}
