package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const SourceTransit = "transit"

// TransitClient talks to a transport.rest style departures API.
type TransitClient struct {
	*BaseClient
	baseURL string
	timeout time.Duration
}

func NewTransitClient(base *BaseClient, baseURL string, timeout time.Duration) *TransitClient {
	return &TransitClient{
		BaseClient: base,
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
	}
}

// Departures returns the next 15 departures within 240 minutes, verbatim.
func (c *TransitClient) Departures(ctx context.Context, stopID string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/stops/%s/departures", c.baseURL, url.PathEscape(stopID))
	body, err := c.Do(ctx, Request{
		Source: SourceTransit,
		URL:    endpoint,
		Query: map[string]string{
			"duration": "240",
			"results":  "15",
		},
		Headers: map[string]string{"Accept": "application/json"},
		Timeout: c.timeout,
	})
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, Malformed(SourceTransit, endpoint, errors.New("response is not JSON"))
	}
	return body, nil
}
