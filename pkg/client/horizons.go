package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

const SourceHorizons = "moon"

const horizonsTimeLayout = "2006-01-02 15:04"

type horizonsResponse struct {
	Result string `json:"result"`
	Error  string `json:"error"`
}

// HorizonsClient queries the JPL Horizons API for a topocentric Moon table.
type HorizonsClient struct {
	*BaseClient
	baseURL string
	timeout time.Duration
}

func NewHorizonsClient(base *BaseClient, baseURL string, timeout time.Duration) *HorizonsClient {
	return &HorizonsClient{
		BaseClient: base,
		baseURL:    baseURL,
		timeout:    timeout,
	}
}

// MoonTable requests azimuth, elevation and illuminated fraction from start
// to stop at the given step, in CSV form. It returns the raw "result" text.
func (c *HorizonsClient) MoonTable(ctx context.Context, lat, lon float64, start, stop time.Time, step string) (string, error) {
	site := strconv.FormatFloat(lon, 'f', -1, 64) + "," + strconv.FormatFloat(lat, 'f', -1, 64) + ",0"

	body, err := c.Do(ctx, Request{
		Source: SourceHorizons,
		URL:    c.baseURL,
		Query: map[string]string{
			"format":     "json",
			"COMMAND":    "'301'",
			"OBJ_DATA":   "'NO'",
			"MAKE_EPHEM": "'YES'",
			"EPHEM_TYPE": "'OBSERVER'",
			"CENTER":     "'coord@399'",
			"COORD_TYPE": "'GEODETIC'",
			"SITE_COORD": "'" + site + "'",
			"START_TIME": "'" + start.UTC().Format(horizonsTimeLayout) + "'",
			"STOP_TIME":  "'" + stop.UTC().Format(horizonsTimeLayout) + "'",
			"STEP_SIZE":  "'" + step + "'",
			"QUANTITIES": "'4,10'",
			"CSV_FORMAT": "'YES'",
			"ANG_FORMAT": "'DEG'",
		},
		Timeout: c.timeout,
	})
	if err != nil {
		return "", err
	}

	var resp horizonsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", Malformed(SourceHorizons, c.baseURL, err)
	}
	if resp.Error != "" {
		return "", Malformed(SourceHorizons, c.baseURL, fmt.Errorf("horizons: %s", resp.Error))
	}
	if resp.Result == "" {
		return "", Malformed(SourceHorizons, c.baseURL, errors.New("empty result"))
	}
	return resp.Result, nil
}
