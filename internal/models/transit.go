package models

// TransitOffline is returned in place of departures whenever the transit API fails.
type TransitOffline struct {
	Status string `json:"status"`
}
