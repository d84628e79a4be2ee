package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/college-approvals-api/pkg/jobs"
)

const (
	warmBookingLog = "booking-log"
	warmLeaveLog   = "leave-log"
)

type reportRefresher interface {
	InvalidateBookingLog(ctx context.Context) error
	InvalidateLeaveLog(ctx context.Context) error
	WarmBookingLog(ctx context.Context) error
	WarmLeaveLog(ctx context.Context) error
}

type jobQueue interface {
	Enqueue(job jobs.Job) (bool, error)
}

// ReportWarmer drops a cached log as soon as an approval lands and rebuilds
// it in the background, so the next reader does not pay for the query.
type ReportWarmer struct {
	reports reportRefresher
	queue   jobQueue
	logger  *zap.Logger
}

// NewReportWarmer constructs a warmer. A nil queue disables rebuilding.
func NewReportWarmer(reports reportRefresher, queue jobQueue, logger *zap.Logger) *ReportWarmer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportWarmer{reports: reports, queue: queue, logger: logger}
}

// InvalidateBookingLog implements the booking workflow's cache hook.
func (w *ReportWarmer) InvalidateBookingLog(ctx context.Context) error {
	if err := w.reports.InvalidateBookingLog(ctx); err != nil {
		return err
	}
	w.schedule(warmBookingLog)
	return nil
}

// InvalidateLeaveLog implements the leave workflow's cache hook.
func (w *ReportWarmer) InvalidateLeaveLog(ctx context.Context) error {
	if err := w.reports.InvalidateLeaveLog(ctx); err != nil {
		return err
	}
	w.schedule(warmLeaveLog)
	return nil
}

// Handle is the queue handler that rebuilds one log.
func (w *ReportWarmer) Handle(ctx context.Context, job jobs.Job) error {
	switch job.Key {
	case warmBookingLog:
		return w.reports.WarmBookingLog(ctx)
	case warmLeaveLog:
		return w.reports.WarmLeaveLog(ctx)
	default:
		return fmt.Errorf("unknown report warm job %q", job.Key)
	}
}

func (w *ReportWarmer) schedule(key string) {
	if w.queue == nil {
		return
	}
	if _, err := w.queue.Enqueue(jobs.Job{Key: key}); err != nil {
		w.logger.Warn("report warm not scheduled", zap.String("report", key), zap.Error(err))
	}
}
