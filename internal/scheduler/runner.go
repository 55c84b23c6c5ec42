package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hamed0406/observatorycheck/internal/domain"
	"github.com/hamed0406/observatorycheck/internal/metrics"
	"github.com/hamed0406/observatorycheck/internal/repo"
)

// Check runs one invocation for an instance, reporting into sink.
type Check interface {
	Run(ctx context.Context, inst domain.Instance, sink metrics.Sink) error
}

// Publisher receives the observations of each successful invocation.
type Publisher interface {
	Publish(host string, obs []domain.Observation) error
}

type Runner struct {
	Logger      *zap.Logger
	Check       Check
	Instances   []domain.Instance
	Store       repo.ObservationStore
	Publishers  []Publisher
	Interval    time.Duration
	Concurrency int
}

func NewRunner(
	logger *zap.Logger,
	check Check,
	instances []domain.Instance,
	store repo.ObservationStore,
	interval time.Duration,
	concurrency int,
	publishers ...Publisher,
) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	if interval < 0 {
		interval = 0
	}
	return &Runner{
		Logger:      logger,
		Check:       check,
		Instances:   instances,
		Store:       store,
		Publishers:  publishers,
		Interval:    interval,
		Concurrency: concurrency,
	}
}

// Run starts the loop. It does an immediate pass, then runs each tick.
// Stops when ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	if r.Interval == 0 {
		r.Logger.Info("runner_disabled")
		return
	}
	t := time.NewTicker(r.Interval)
	defer t.Stop()

	r.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			r.Logger.Info("runner_stopped")
			return
		case <-t.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce checks every instance, at most Concurrency at a time.
func (r *Runner) RunOnce(ctx context.Context) {
	if len(r.Instances) == 0 {
		return
	}

	sem := make(chan struct{}, r.Concurrency)
	var wg sync.WaitGroup

	for i, inst := range r.Instances {
		if !r.acquire(ctx, sem) {
			r.Logger.Info("runner_pass_cancelled", zap.Int("skipped", len(r.Instances)-i))
			break
		}
		wg.Add(1)
		go func(inst domain.Instance) {
			defer func() { <-sem }()
			defer wg.Done()
			_, _ = r.RunInstance(ctx, inst)
		}(inst)
	}

	wg.Wait()
}

// acquire takes a concurrency slot, or reports false once ctx is done.
func (r *Runner) acquire(ctx context.Context, sem chan struct{}) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return false
	}
	if ctx.Err() != nil {
		<-sem
		return false
	}
	return true
}

// RunInstance performs one invocation for inst and forwards what it emitted to
// the store and publishers. Failures are logged and returned.
func (r *Runner) RunInstance(ctx context.Context, inst domain.Instance) ([]domain.Observation, error) {
	log := r.Logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("host", inst.Host),
	)

	batch := metrics.NewBatch(inst.Host)
	if err := r.Check.Run(ctx, inst, batch); err != nil {
		log.Warn("runner_check_error", zap.Error(err))
		return nil, err
	}

	obs := batch.Observations()
	if len(obs) == 0 {
		log.Debug("runner_nothing_emitted")
		return nil, nil
	}

	for _, p := range r.Publishers {
		if err := p.Publish(inst.Host, obs); err != nil {
			log.Warn("runner_publish_error", zap.Error(err))
		}
	}
	if r.Store != nil {
		if err := r.Store.Append(ctx, obs); err != nil {
			log.Warn("runner_append_error", zap.Error(err))
			return obs, err
		}
	}

	log.Debug("runner_checked", zap.Int("gauges", len(obs)))
	return obs, nil
}
