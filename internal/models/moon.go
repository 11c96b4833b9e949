package models

type MoonInfo struct {
	Time         string  `json:"time"`
	Rise         string  `json:"rise"`
	Set          string  `json:"set"`
	Illumination float64 `json:"illumination"`
	Elevation    float64 `json:"elevation"`
	Azimuth      float64 `json:"azimuth"`
}
