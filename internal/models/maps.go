package models

const (
	RadarStatusOK     = "ok"
	RadarStatusBackup = "backup"
)

// RadarFrameSet lists past frames followed by forecast frames, all unix seconds.
type RadarFrameSet struct {
	RadarFrames        []int64 `json:"radarFrames"`
	ForecastStartIndex int     `json:"forecastStartIndex"`
	TS                 int64   `json:"ts"`
	Status             string  `json:"status"`
}

type LayerType string

const (
	LayerRadar       LayerType = "radar"
	LayerRadarStatic LayerType = "radar_static"
	LayerClouds      LayerType = "clouds"
	LayerTemp        LayerType = "temp"
	LayerCloudsOWM   LayerType = "clouds_owm"
	LayerOWM         LayerType = "owm"
)

// TileRequest addresses one 256px web-map tile. Timestamp is only meaningful
// for time-series layers; Name selects the OpenWeatherMap layer for LayerOWM.
type TileRequest struct {
	Layer     LayerType
	Name      string
	Timestamp int64
	Z         int
	X         int
	Y         int
}
