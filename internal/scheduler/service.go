// Package scheduler runs the recommendation engine on a cron schedule so
// catalog owners get a fresh report without asking an assistant for one.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"

	"github.com/snowgate-io/snowgate-ce/internal/catalog/analytics"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "snowgate",
		Subsystem: "scheduler",
		Name:      "runs_total",
		Help:      "Scheduled recommendation runs by outcome.",
	}, []string{"outcome"})
	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "snowgate",
		Subsystem: "scheduler",
		Name:      "run_duration_seconds",
		Help:      "Duration of scheduled recommendation runs.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
	})
)

// Config drives the periodic run.
type Config struct {
	// Spec is a standard five-field cron expression.
	Spec string
	// Window names the analysis window each run covers.
	Window string
	// Timeout bounds one run. Zero means 5 minutes.
	Timeout time.Duration
}

// RunRecord summarizes one completed run.
type RunRecord struct {
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Count    int           `json:"recommendation_count"`
	Err      string        `json:"error,omitempty"`
}

// Service schedules recommendation runs.
type Service struct {
	engine *analytics.Engine
	cfg    Config
	cron   *cron.Cron
	logger *log.Logger

	mu      sync.Mutex
	history []RunRecord

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewService builds a scheduler around the engine. The cron spec is
// validated up front so a bad schedule fails at startup, not at fire time.
func NewService(engine *analytics.Engine, cfg Config, logger *log.Logger) (*Service, error) {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(cfg.Spec); err != nil {
		return nil, fmt.Errorf("invalid cron spec %q: %w", cfg.Spec, err)
	}

	s := &Service{
		engine: engine,
		cfg:    cfg,
		cron:   cron.New(cron.WithLocation(time.UTC)),
		logger: logger,
	}
	if _, err := s.cron.AddFunc(cfg.Spec, s.fire); err != nil {
		return nil, fmt.Errorf("registering scheduled run: %w", err)
	}
	return s, nil
}

// Start begins the schedule. Safe to call once; later calls are no-ops.
func (s *Service) Start() {
	s.startOnce.Do(func() {
		s.cron.Start()
		s.logger.Printf("scheduler started, spec %q window %s", s.cfg.Spec, s.cfg.Window)
	})
}

// Stop halts the schedule and waits for an in-flight run to finish.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		<-s.cron.Stop().Done()
		s.logger.Println("scheduler stopped")
	})
}

func (s *Service) fire() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()
	if err := s.RunOnce(ctx); err != nil {
		s.logger.Printf("scheduled run failed: %v", err)
	}
}

// RunOnce executes one recommendation pass and logs the per-family
// counts. Exposed so the CLI can trigger the same pass on demand.
func (s *Service) RunOnce(ctx context.Context) error {
	start := time.Now()
	report, err := s.engine.Recommendations(ctx, analytics.RecommendationParams{
		Window: s.cfg.Window,
	})
	runDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		runsTotal.WithLabelValues("error").Inc()
		s.record(RunRecord{Started: start, Duration: time.Since(start), Err: err.Error()})
		return err
	}
	runsTotal.WithLabelValues("success").Inc()
	s.record(RunRecord{Started: start, Duration: time.Since(start), Count: len(report.Recommendations)})

	s.logger.Printf("scheduled analysis: %d recommendations in window %s", len(report.Recommendations), report.Window.Name)
	for family, count := range report.FamilyCounts {
		s.logger.Printf("  %s: %d", family, count)
	}
	for _, w := range report.Warnings {
		s.logger.Printf("  warning %s: %s", w.Code, w.Message)
	}
	return nil
}

const historyLimit = 50

func (s *Service) record(r RunRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, r)
	if len(s.history) > historyLimit {
		s.history = s.history[len(s.history)-historyLimit:]
	}
}

// History returns summaries of recent runs, oldest first.
func (s *Service) History() []RunRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RunRecord, len(s.history))
	copy(out, s.history)
	return out
}
