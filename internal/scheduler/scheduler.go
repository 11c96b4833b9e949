package scheduler

import (
	"sync"
	"time"

	"github.com/bobby-s-dev/sentinel-backend/pkg/client"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type HealthSource interface {
	Snapshot() []client.SourceHealth
}

type PlaceholderCounter interface {
	Placeholders() int64
}

// Scheduler periodically logs upstream health so persistent failures stay
// visible even though every request masks them.
type Scheduler struct {
	health       HealthSource
	placeholders PlaceholderCounter
	logger       *zap.Logger
	schedule     string

	cron    *cron.Cron
	entryID cron.EntryID
	mu      sync.Mutex
	running bool
	lastRun time.Time
	runs    int
}

func NewScheduler(health HealthSource, placeholders PlaceholderCounter, schedule string, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		health:       health,
		placeholders: placeholders,
		logger:       logger.Named("scheduler"),
		schedule:     schedule,
		cron:         cron.New(),
	}
}

func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	id, err := s.cron.AddFunc(s.schedule, s.RunNow)
	if err != nil {
		return err
	}
	s.entryID = id
	s.cron.Start()
	s.running = true

	s.logger.Info("Scheduler started", zap.String("schedule", s.schedule))
	return nil
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)
}

// RunNow logs one health report.
func (s *Scheduler) RunNow() {
	snapshot := s.health.Snapshot()

	var degraded []string
	var requests, failures uint64
	for _, src := range snapshot {
		requests += src.Requests
		failures += src.Failures
		if src.State != "closed" {
			degraded = append(degraded, src.Source)
		}
	}

	var placeholders int64
	if s.placeholders != nil {
		placeholders = s.placeholders.Placeholders()
	}

	fields := []zap.Field{
		zap.Int("sources", len(snapshot)),
		zap.Uint64("requests", requests),
		zap.Uint64("failures", failures),
		zap.Int64("placeholder_tiles", placeholders),
		zap.Strings("degraded", degraded),
	}
	if len(degraded) > 0 {
		s.logger.Warn("Upstream health report", fields...)
	} else {
		s.logger.Info("Upstream health report", fields...)
	}

	s.mu.Lock()
	s.lastRun = time.Now()
	s.runs++
	s.mu.Unlock()
}

func (s *Scheduler) GetStatus() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := map[string]interface{}{
		"running":  s.running,
		"schedule": s.schedule,
		"last_run": s.lastRun,
		"runs":     s.runs,
	}
	if s.running {
		status["next_run"] = s.cron.Entry(s.entryID).Next
	}
	return status
}
