package models

// Sentinel rendered for any solar field whose upstream failed.
const Unavailable = "---"

// XrayEnergyBand is the GOES long channel; every other band is discarded.
const XrayEnergyBand = "0.1-0.8nm"

type XrayPoint struct {
	Time string  `json:"time"`
	Val  float64 `json:"val"`
}

// SolarConditions is the /api/solar payload. Every field defaults
// independently when its source is unavailable.
type SolarConditions struct {
	SFI       string      `json:"sfi"`
	Kp        string      `json:"kp"`
	HistoryKp []float64   `json:"historyKp"`
	Flare     string      `json:"flare"`
	Wind      string      `json:"wind"`
	XrayFull  []XrayPoint `json:"xrayFull"`
}
