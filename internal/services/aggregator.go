package services

import (
	"context"
	"sync"
	"time"

	"github.com/bobby-s-dev/sentinel-backend/pkg/client"
	"go.uber.org/zap"
)

// Fetcher issues one upstream GET.
type Fetcher interface {
	Do(ctx context.Context, req client.Request) ([]byte, error)
}

// Call is one upstream request in a fan-out. Fallback replaces the body when
// the request fails.
type Call struct {
	client.Request
	Fallback []byte
}

type Result struct {
	Source string
	Body   []byte
	Err    error
}

func (r Result) OK() bool { return r.Err == nil }

// Aggregator fans a fixed set of calls out concurrently and waits for every
// one of them to settle. A failing call never affects the others.
type Aggregator struct {
	fetcher Fetcher
	logger  *zap.Logger
}

func NewAggregator(fetcher Fetcher, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		logger:  logger.Named("aggregator"),
	}
}

type indexedResult struct {
	index  int
	result Result
}

// FetchAll returns one Result per call, in call order.
func (a *Aggregator) FetchAll(ctx context.Context, calls []Call) []Result {
	var wg sync.WaitGroup
	responses := make(chan indexedResult, len(calls))

	startTime := time.Now()

	for i, call := range calls {
		wg.Add(1)
		go func(i int, call Call) {
			defer wg.Done()

			body, err := a.fetcher.Do(ctx, call.Request)
			if err != nil {
				body = call.Fallback
			}
			responses <- indexedResult{index: i, result: Result{Source: call.Source, Body: body, Err: err}}
		}(i, call)
	}

	wg.Wait()
	close(responses)

	results := make([]Result, len(calls))
	failed := 0
	for r := range responses {
		results[r.index] = r.result
		if r.result.Err != nil {
			failed++
		}
	}

	a.logger.Debug("Fan-out completed",
		zap.Int("calls", len(calls)),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(startTime)))

	return results
}
