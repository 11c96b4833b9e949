package client

import (
	"context"
	"errors"
	"time"

	"github.com/bobby-s-dev/sentinel-backend/internal/observability"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const DefaultUserAgent = "Mozilla/5.0"

type ClientConfig struct {
	UserAgent      string
	DefaultTimeout time.Duration
}

// Request is one outbound GET. Timeout bounds the whole call; zero falls
// back to the client default.
type Request struct {
	Source  string
	URL     string
	Query   map[string]string
	Headers map[string]string
	Timeout time.Duration
}

// BaseClient issues single-attempt GETs against upstream APIs and reports
// every outcome to the health monitor and metrics.
type BaseClient struct {
	client         *resty.Client
	defaultTimeout time.Duration
	monitor        *HealthMonitor
	metrics        *observability.Metrics
	logger         *zap.Logger
}

func NewBaseClient(config ClientConfig, monitor *HealthMonitor, metrics *observability.Metrics, logger *zap.Logger) *BaseClient {
	ua := config.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	timeout := config.DefaultTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	rc := resty.New().
		SetRetryCount(0).
		SetHeader("User-Agent", ua)

	return &BaseClient{
		client:         rc,
		defaultTimeout: timeout,
		monitor:        monitor,
		metrics:        metrics,
		logger:         logger.Named("upstream"),
	}
}

func (c *BaseClient) Get(ctx context.Context, source, url string, timeout time.Duration) ([]byte, error) {
	return c.Do(ctx, Request{Source: source, URL: url, Timeout: timeout})
}

func (c *BaseClient) Do(ctx context.Context, req Request) ([]byte, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var record func(bool)
	if c.monitor != nil {
		record = c.monitor.Observe(req.Source)
	}

	start := time.Now()
	body, err := c.do(ctx, req)
	elapsed := time.Since(start)

	if record != nil {
		record(err == nil)
	}
	if c.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		c.metrics.UpstreamRequests.WithLabelValues(req.Source, outcome).Inc()
		c.metrics.UpstreamDuration.WithLabelValues(req.Source).Observe(elapsed.Seconds())
	}

	if err != nil {
		c.logger.Warn("Upstream request failed",
			zap.String("source", req.Source),
			zap.String("url", req.URL),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return nil, err
	}

	c.logger.Debug("Upstream request successful",
		zap.String("source", req.Source),
		zap.String("url", req.URL),
		zap.Int("body_size", len(body)),
		zap.Duration("elapsed", elapsed))

	return body, nil
}

func (c *BaseClient) do(ctx context.Context, req Request) ([]byte, error) {
	r := c.client.R().SetContext(ctx)
	if len(req.Query) > 0 {
		r.SetQueryParams(req.Query)
	}
	if len(req.Headers) > 0 {
		r.SetHeaders(req.Headers)
	}

	resp, err := r.Get(req.URL)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = context.DeadlineExceeded
		}
		return nil, &UpstreamError{Source: req.Source, URL: req.URL, Kind: ErrUpstreamUnreachable, Err: err}
	}
	if !resp.IsSuccess() {
		return nil, &UpstreamError{Source: req.Source, URL: req.URL, StatusCode: resp.StatusCode(), Kind: ErrUpstreamStatus}
	}

	return resp.Body(), nil
}
