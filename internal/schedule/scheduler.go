package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"appdepot/internal/catalog"
	"appdepot/internal/config"
	"appdepot/internal/logging"
	"appdepot/internal/matcher"
	"appdepot/internal/scanner"
	"appdepot/internal/services"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// RunResult aggregates one scheduled run across all configured roots.
type RunResult struct {
	scanner.Result
	Matched      int      `json:"matched"`
	Failed       int      `json:"failed"`
	ScannedPaths []string `json:"scanned_paths"`
}

// Status is a point-in-time snapshot of the scheduler.
type Status struct {
	Running     bool       `json:"running"`
	Cron        string     `json:"cron"`
	Paths       []string   `json:"paths"`
	AIEnabled   bool       `json:"ai_enabled"`
	NextRun     *time.Time `json:"next_run,omitempty"`
	LastRunTime *time.Time `json:"last_run_time,omitempty"`
	LastResult  *RunResult `json:"last_result,omitempty"`
}

// Scheduler triggers scans and auto-matching on a cron expression.
type Scheduler struct {
	scanner   *scanner.Scanner
	matcher   *matcher.Matcher
	store     *catalog.Store
	logger    *slog.Logger
	cronExpr  string
	paths     []string
	aiEnabled bool
	now       func() time.Time

	mu          sync.Mutex
	cron        *cron.Cron
	running     bool
	lastRunTime time.Time
	lastResult  *RunResult
}

// Option customizes a scheduler.
type Option func(*Scheduler)

// WithClock overrides the time source used for run stamps and next-run
// computation.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// New builds a scheduler from configuration. The cron expression defaults to
// a nightly run when unset.
func New(scn *scanner.Scanner, m *matcher.Matcher, store *catalog.Store, cfg *config.Config, logger *slog.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = logging.NewNop()
	}
	expr := cfg.Scheduler.Cron
	if expr == "" {
		expr = "0 2 * * *"
	}
	s := &Scheduler{
		scanner:   scn,
		matcher:   m,
		store:     store,
		logger:    logging.NewComponentLogger(logger, "schedule"),
		cronExpr:  expr,
		paths:     cfg.Scan.Roots,
		aiEnabled: cfg.AI.Enabled,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start validates the cron expression and begins ticking. Starting an
// already-running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	if _, err := cronParser.Parse(s.cronExpr); err != nil {
		return services.Wrap(services.ErrConfiguration, "schedule", "start",
			fmt.Sprintf("invalid cron expression %q", s.cronExpr), err)
	}

	runner := cron.New(cron.WithParser(cronParser))
	if _, err := runner.AddFunc(s.cronExpr, func() {
		s.RunOnce(ctx)
	}); err != nil {
		return services.Wrap(services.ErrConfiguration, "schedule", "start", "register scan job", err)
	}
	runner.Start()
	s.cron = runner
	s.running = true
	s.logger.Info("scheduler started",
		logging.String("cron", s.cronExpr),
		logging.Int("paths", len(s.paths)),
		logging.Bool("ai", s.aiEnabled))
	return nil
}

// Stop halts the cron loop. Any in-flight run finishes on its own.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.cron.Stop()
	s.cron = nil
	s.running = false
	s.logger.Info("scheduler stopped")
}

// RunOnce executes one full scan-and-match cycle immediately and records it
// as the last run. Per-root failures are collected; the cycle never aborts.
func (s *Scheduler) RunOnce(ctx context.Context) RunResult {
	result := RunResult{}
	logger := logging.WithContext(ctx, s.logger)

	for _, root := range s.paths {
		rootResult, err := s.scanner.Scan(ctx, root)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to scan %s: %v", root, err))
			logger.Warn("scheduled scan failed", logging.String("root", root), logging.Error(err))
			continue
		}
		result.Merge(rootResult)
		result.ScannedPaths = append(result.ScannedPaths, root)
	}

	if s.aiEnabled {
		s.autoMatch(ctx, logger, &result)
	}

	s.mu.Lock()
	s.lastRunTime = s.now()
	snapshot := result
	s.lastResult = &snapshot
	s.mu.Unlock()

	logger.Info("scheduled run complete",
		logging.Int("new_entries", result.NewProducts),
		logging.Int("matched", result.Matched),
		logging.Int("errors", len(result.Errors)))
	return result
}

func (s *Scheduler) autoMatch(ctx context.Context, logger *slog.Logger, result *RunResult) {
	entries, err := s.store.ListUnresolved(ctx, catalog.KindScanned)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to list scanned entries: %v", err))
		return
	}
	if len(entries) == 0 {
		return
	}
	batch, err := s.matcher.Match(ctx, entries, matcher.Options{})
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("auto-match failed: %v", err))
		return
	}
	result.Matched += batch.Matched
	result.Failed += batch.Failed
	result.AIGenerated += len(batch.Products)
	result.Errors = append(result.Errors, batch.Errors...)
	logger.Info("auto-match complete",
		logging.Int("entries", len(entries)),
		logging.Int("matched", batch.Matched),
		logging.Int("failed", batch.Failed))
}

// Status reports the scheduler's current state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		Running:   s.running,
		Cron:      s.cronExpr,
		Paths:     append([]string(nil), s.paths...),
		AIEnabled: s.aiEnabled,
	}
	if s.running {
		if schedule, err := cronParser.Parse(s.cronExpr); err == nil {
			next := schedule.Next(s.now())
			status.NextRun = &next
		}
	}
	if !s.lastRunTime.IsZero() {
		last := s.lastRunTime
		status.LastRunTime = &last
	}
	if s.lastResult != nil {
		snapshot := *s.lastResult
		status.LastResult = &snapshot
	}
	return status
}
