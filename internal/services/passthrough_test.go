package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeDepartures struct {
	body []byte
	err  error
}

func (f fakeDepartures) Departures(context.Context, string) ([]byte, error) {
	return f.body, f.err
}

func TestTransitDepartures(t *testing.T) {
	svc := NewTransitService(fakeDepartures{body: []byte(`{"departures":[]}`)}, zap.NewNop())
	body, ok := svc.Departures(context.Background(), "8011160")
	assert.True(t, ok)
	assert.JSONEq(t, `{"departures":[]}`, string(body))

	svc = NewTransitService(fakeDepartures{err: errors.New("blocked")}, zap.NewNop())
	body, ok = svc.Departures(context.Background(), "8011160")
	assert.False(t, ok)
	assert.Nil(t, body)
	assert.Equal(t, "offline", TransitOffline.Status)
}
