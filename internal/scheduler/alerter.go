package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/observatorycheck/internal/check"
	"github.com/hamed0406/observatorycheck/internal/observatory"
	"github.com/hamed0406/observatorycheck/internal/repo"
)

type AlerterConfig struct {
	AlertOnRecovery bool
	Cooldown        time.Duration
	PollInterval    time.Duration
}

// Alerter notifies when a host's Observatory grade changes.
type Alerter struct {
	logger   *zap.Logger
	results  repo.ObservationStore
	grades   repo.GradeStore
	notifier interface {
		Send(context.Context, string, string) error
	}
	cfg AlerterConfig
}

func NewAlerter(
	logger *zap.Logger,
	results repo.ObservationStore,
	grades repo.GradeStore,
	notifier interface {
		Send(context.Context, string, string) error
	},
	cfg AlerterConfig,
) *Alerter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Alerter{
		logger:   logger,
		results:  results,
		grades:   grades,
		notifier: notifier,
		cfg:      cfg,
	}
}

func (a *Alerter) Run(ctx context.Context) error {
	t := time.NewTicker(a.cfg.PollInterval)
	defer t.Stop()

	// initial pass
	_ = a.scanOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if err := a.scanOnce(ctx); err != nil {
				a.logger.Warn("alerter_scan_error", zap.Error(err))
			}
		}
	}
}

func (a *Alerter) scanOnce(ctx context.Context) error {
	rows, err := a.results.Latest(ctx)
	if err != nil {
		return err
	}

	now := time.Now()

	for _, r := range rows {
		if r.Name != check.MetricGrade {
			continue
		}
		grade := int(r.Value)

		rec, err := a.grades.Get(ctx, r.Host)
		if err != nil {
			a.logger.Warn("alerter_get_error", zap.String("host", r.Host), zap.Error(err))
			continue
		}

		// The first grade seen for a host is a baseline, not a change.
		if rec == nil {
			_ = a.grades.Set(ctx, r.Host, grade, time.Time{})
			continue
		}
		if rec.LastGrade == grade {
			continue
		}

		// Cooldown only matters for drops (suppresses noisy repeats).
		cooled := true
		if rec.LastSentAt != nil {
			cooled = now.Sub(*rec.LastSentAt) >= a.cfg.Cooldown
		}

		dropped := grade < rec.LastGrade
		dropAlert := dropped && cooled
		recoveryAlert := !dropped && a.cfg.AlertOnRecovery // bypass cooldown

		if !dropAlert && !recoveryAlert {
			// record the new grade but keep the last send time for cooldown
			sent := time.Time{}
			if rec.LastSentAt != nil {
				sent = *rec.LastSentAt
			}
			_ = a.grades.Set(ctx, r.Host, grade, sent)
			continue
		}

		title := "🔴 Observatory grade dropped"
		if !dropped {
			title = "🟢 Observatory grade improved"
		}

		scanID, _ := r.Tag("scan_id")
		text := fmt.Sprintf(
			"Host: %s\nGrade: %s -> %s\nScan: %s\nObserved: %s",
			r.Host, gradeLabel(rec.LastGrade), gradeLabel(grade), scanID, r.ObservedAt.Format(time.RFC3339),
		)

		if err := a.notifier.Send(ctx, title, text); err != nil {
			a.logger.Warn("alerter_send_error", zap.String("host", r.Host), zap.Error(err))
		}
		_ = a.grades.Set(ctx, r.Host, grade, now)
	}

	return nil
}

func gradeLabel(n int) string {
	if g := observatory.DecToGrade(n); g != "" {
		return g
	}
	return fmt.Sprintf("%d", n)
}
