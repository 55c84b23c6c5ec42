// Package check runs one Observatory check invocation for an instance.
package check

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hamed0406/observatorycheck/internal/domain"
	"github.com/hamed0406/observatorycheck/internal/metrics"
	"github.com/hamed0406/observatorycheck/internal/observatory"
)

const metricPrefix = "mozilla.observatory.http."

// Gauge names emitted for a finished scan.
const (
	MetricTestsQuantity = metricPrefix + "tests_quantity"
	MetricTestsPassed   = metricPrefix + "tests_passed"
	MetricTestsFailed   = metricPrefix + "tests_failed"
	MetricScore         = metricPrefix + "score"
	MetricGrade         = metricPrefix + "grade"
	MetricScanDuration  = metricPrefix + "scan_duration"
)

// Scanner triggers a scan and returns it, or nil when none is available.
type Scanner interface {
	Analyze(ctx context.Context, r observatory.AnalyzeRequest) *observatory.Scan
}

type Check struct {
	Logger  *zap.Logger
	Scanner Scanner
}

func New(logger *zap.Logger, scanner Scanner) *Check {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Check{Logger: logger, Scanner: scanner}
}

// Run triggers a scan of inst.Host and, once the scan has finished, reports
// its gauges to sink. A missing host, a failed request or an unfinished scan
// are logged and return nil. A finished scan with missing fields or bad
// timestamps returns an error and emits nothing.
func (c *Check) Run(ctx context.Context, inst domain.Instance, sink metrics.Sink) error {
	if inst.Host == "" {
		c.Logger.Error("observatory_instance_skipped", zap.String("reason", "no host found"))
		return nil
	}

	scan := c.Scanner.Analyze(ctx, observatory.AnalyzeRequest{
		APIURL:  inst.APIURL,
		Host:    inst.Host,
		Timeout: inst.Timeout,
		Hidden:  inst.Hidden,
	})

	// a nil scan was already logged by the scanner
	if scan == nil {
		c.Logger.Debug("observatory_scan_unavailable", zap.String("host", inst.Host))
		return nil
	}
	if !observatory.IsScanReady(scan) {
		c.Logger.Info("observatory_scan_not_finished", zap.String("host", inst.Host))
		return nil
	}

	if err := scan.Validate(); err != nil {
		return fmt.Errorf("scan of %s: %w", inst.Host, err)
	}

	tags, err := observatory.ComposeTags(scan, inst.Host)
	if err != nil {
		return fmt.Errorf("compose tags for %s: %w", inst.Host, err)
	}
	tags = append(tags, inst.Tags...)

	if err := ReportMetrics(scan, tags, sink); err != nil {
		return fmt.Errorf("report %s: %w", inst.Host, err)
	}

	c.Logger.Info("observatory_grade",
		zap.String("host", inst.Host),
		zap.String("grade", scan.Grade),
	)
	return nil
}

// ReportMetrics emits the gauges of a validated, finished scan. Nothing is
// emitted if the scan duration cannot be computed.
func ReportMetrics(scan *observatory.Scan, tags []string, sink metrics.Sink) error {
	duration, err := observatory.ScanDuration(scan.StartTime, scan.EndTime)
	if err != nil {
		return err
	}

	sink.Gauge(MetricTestsQuantity, float64(*scan.TestsQuantity), tags)
	sink.Gauge(MetricTestsPassed, float64(*scan.TestsPassed), tags)
	sink.Gauge(MetricTestsFailed, float64(*scan.TestsFailed), tags)
	sink.Gauge(MetricScore, float64(*scan.Score), tags)
	sink.Gauge(MetricGrade, float64(observatory.GradeToDec(scan.Grade)), tags)
	sink.Gauge(MetricScanDuration, duration, tags)
	return nil
}
