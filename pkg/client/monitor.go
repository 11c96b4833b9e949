package client

import (
	"sort"
	"sync"
	"time"

	"github.com/bobby-s-dev/sentinel-backend/internal/observability"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

type MonitorConfig struct {
	MinRequests  uint32
	FailureRatio float64
	Window       time.Duration
	OpenTimeout  time.Duration
}

// SourceHealth is a point-in-time view of one upstream source.
type SourceHealth struct {
	Source   string `json:"source"`
	State    string `json:"state"`
	Requests uint64 `json:"requests"`
	Failures uint64 `json:"failures"`
}

type sourceStats struct {
	breaker  *gobreaker.TwoStepCircuitBreaker
	requests uint64
	failures uint64
}

// HealthMonitor keeps one breaker per upstream source. The breakers only
// observe: an open breaker never stops a request from being issued, it marks
// the source as persistently failing.
type HealthMonitor struct {
	config  MonitorConfig
	metrics *observability.Metrics
	logger  *zap.Logger

	mu      sync.Mutex
	sources map[string]*sourceStats
}

func NewHealthMonitor(config MonitorConfig, metrics *observability.Metrics, logger *zap.Logger) *HealthMonitor {
	if config.MinRequests == 0 {
		config.MinRequests = 5
	}
	if config.FailureRatio <= 0 {
		config.FailureRatio = 0.8
	}
	return &HealthMonitor{
		config:  config,
		metrics: metrics,
		logger:  logger.Named("health"),
		sources: make(map[string]*sourceStats),
	}
}

// Observe returns a callback recording the outcome of one call to source.
func (m *HealthMonitor) Observe(source string) func(success bool) {
	stats := m.stats(source)

	done, err := stats.breaker.Allow()
	return func(success bool) {
		m.mu.Lock()
		stats.requests++
		if !success {
			stats.failures++
		}
		m.mu.Unlock()

		// open or half-open with its probe budget spent
		if err != nil {
			return
		}
		done(success)
	}
}

func (m *HealthMonitor) stats(source string) *sourceStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sources[source]; ok {
		return s
	}

	s := &sourceStats{breaker: gobreaker.NewTwoStepCircuitBreaker(m.settings(source))}
	m.sources[source] = s
	m.setStateGauge(source, gobreaker.StateClosed)
	return s
}

func (m *HealthMonitor) settings(source string) gobreaker.Settings {
	minRequests := m.config.MinRequests
	ratio := m.config.FailureRatio

	return gobreaker.Settings{
		Name:        source,
		MaxRequests: 1,
		Interval:    m.config.Window,
		Timeout:     m.config.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= minRequests && failureRatio >= ratio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			fields := []zap.Field{
				zap.String("source", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			}
			if to == gobreaker.StateOpen {
				m.logger.Error("Upstream persistently failing", fields...)
			} else {
				m.logger.Info("Upstream health changed", fields...)
			}
			m.setStateGauge(name, to)
		},
	}
}

func (m *HealthMonitor) setStateGauge(source string, state gobreaker.State) {
	if m.metrics == nil {
		return
	}
	m.metrics.UpstreamState.WithLabelValues(source).Set(float64(state))
}

// Snapshot lists every source seen so far, sorted by name.
func (m *HealthMonitor) Snapshot() []SourceHealth {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]SourceHealth, 0, len(m.sources))
	for name, s := range m.sources {
		out = append(out, SourceHealth{
			Source:   name,
			State:    s.breaker.State().String(),
			Requests: s.requests,
			Failures: s.failures,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}
