package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"woolcrafts-backend/models"

	"github.com/go-co-op/gocron/v2"
)

const (
	lowStockInterval   = 30 * time.Minute
	cacheSweepInterval = time.Hour
)

// LowStockSource reports products that need restocking.
type LowStockSource interface {
	LowStockProducts(ctx context.Context, threshold, limit int) ([]models.Product, error)
}

// Sweeper drops expired entries from an in-process store.
type Sweeper interface {
	CleanupExpired() int
}

type Options struct {
	LowStock          LowStockSource
	LowStockThreshold int
	// Sweeper is nil when the cache expires entries on its own.
	Sweeper Sweeper
	Logger  *slog.Logger
}

// Scheduler runs the periodic maintenance jobs.
type Scheduler struct {
	scheduler gocron.Scheduler
	opts      Options
	log       *slog.Logger
	jobs      map[string]gocron.Job
}

func NewScheduler(opts Options) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	sched := &Scheduler{
		scheduler: s,
		opts:      opts,
		log:       log.With("component", "jobs"),
		jobs:      make(map[string]gocron.Job),
	}
	if err := sched.register(); err != nil {
		_ = s.Shutdown()
		return nil, err
	}
	return sched, nil
}

func (s *Scheduler) register() error {
	if s.opts.LowStock != nil {
		job, err := s.scheduler.NewJob(
			gocron.DurationJob(lowStockInterval),
			gocron.NewTask(s.reportLowStock, context.Background()),
			gocron.WithName("low-stock-report"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("register low stock job: %w", err)
		}
		s.jobs["low-stock-report"] = job
	}

	if s.opts.Sweeper != nil {
		job, err := s.scheduler.NewJob(
			gocron.DurationJob(cacheSweepInterval),
			gocron.NewTask(s.sweepCache),
			gocron.WithName("cache-cleanup"),
		)
		if err != nil {
			return fmt.Errorf("register cache cleanup job: %w", err)
		}
		s.jobs["cache-cleanup"] = job
	}

	s.log.Info("registered background jobs", "count", len(s.jobs))
	return nil
}

// Jobs returns the names of the registered jobs.
func (s *Scheduler) Jobs() []string {
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}

func (s *Scheduler) Start() {
	s.log.Info("starting background job scheduler")
	s.scheduler.Start()
}

func (s *Scheduler) Stop() error {
	s.log.Info("stopping background job scheduler")
	return s.scheduler.Shutdown()
}

func (s *Scheduler) reportLowStock(ctx context.Context) error {
	products, err := s.opts.LowStock.LowStockProducts(ctx, s.opts.LowStockThreshold, 0)
	if err != nil {
		s.log.Error("low stock report failed", "error", err)
		return err
	}
	if len(products) == 0 {
		s.log.Debug("no low stock products", "threshold", s.opts.LowStockThreshold)
		return nil
	}

	for _, p := range products {
		s.log.Warn("low stock", "product_id", p.ID, "name", p.Name, "stock", p.Stock)
	}
	s.log.Info("low stock report completed", "count", len(products), "threshold", s.opts.LowStockThreshold)
	return nil
}

func (s *Scheduler) sweepCache() {
	removed := s.opts.Sweeper.CleanupExpired()
	s.log.Debug("cache cleanup completed", "removed", removed)
}
