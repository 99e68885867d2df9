package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	JobIdempotencyPurge = "idempotency_purge"
	JobAuditRetention   = "audit_retention"
)

// Task removes rows older than cutoff and reports how many it removed.
type Task func(ctx context.Context, cutoff time.Time) (int64, error)

// Schedule runs Task every Interval against rows older than Retention.
type Schedule struct {
	Name      string
	Interval  time.Duration
	Retention time.Duration
	Task      Task
}

type Service struct {
	logger    *zap.Logger
	schedules []Schedule
	queue     chan job
	now       func() time.Time
}

type job struct {
	Name   string
	Cutoff time.Time
	Task   Task
}

func New(logger *zap.Logger, schedules ...Schedule) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		logger:    logger,
		schedules: schedules,
		queue:     make(chan job, 16),
		now:       time.Now,
	}
}

// Start runs the worker and one ticker per schedule until ctx is done. Schedules without
// a positive interval and retention are skipped.
func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	for _, sched := range s.schedules {
		if sched.Interval <= 0 || sched.Retention <= 0 || sched.Task == nil {
			s.logger.Info("job disabled", zap.String("job", sched.Name))
			continue
		}
		go s.schedule(ctx, sched)
	}
}

func (s *Service) Enqueue(name string, cutoff time.Time, task Task) bool {
	select {
	case s.queue <- job{Name: name, Cutoff: cutoff, Task: task}:
		return true
	default:
		s.logger.Warn("job queue full", zap.String("job", name))
		return false
	}
}

func (s *Service) RunNow(ctx context.Context, name string, cutoff time.Time, task Task) (int64, error) {
	return s.run(ctx, job{Name: name, Cutoff: cutoff, Task: task})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.run(ctx, j); err != nil {
				s.logger.Warn("job run failed", zap.String("job", j.Name), zap.Error(err))
			}
		}
	}
}

func (s *Service) run(ctx context.Context, j job) (int64, error) {
	start := s.now()
	removed, err := j.Task(ctx, j.Cutoff)
	fields := []zap.Field{
		zap.String("job", j.Name),
		zap.Time("cutoff", j.Cutoff),
		zap.Int64("removed", removed),
		zap.Duration("elapsed", s.now().Sub(start)),
	}
	if err != nil {
		s.logger.Warn("job failed", append(fields, zap.Error(err))...)
		return removed, err
	}
	s.logger.Info("job completed", fields...)
	return removed, nil
}

func (s *Service) schedule(ctx context.Context, sched Schedule) {
	ticker := time.NewTicker(sched.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(sched.Name, s.now().Add(-sched.Retention), sched.Task)
		}
	}
}
