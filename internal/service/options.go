package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/college-approvals-api/internal/models"
	appErrors "github.com/noah-isme/college-approvals-api/pkg/errors"
)

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type serviceOptions struct {
	now     func() time.Time
	metrics *MetricsService
}

// Option configures the workflow and report services.
type Option func(*serviceOptions)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *serviceOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithMetrics records workflow counters on the given collector set.
func WithMetrics(m *MetricsService) Option {
	return func(o *serviceOptions) {
		o.metrics = m
	}
}

func buildOptions(opts []Option) serviceOptions {
	o := serviceOptions{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// lookupError maps a repository read failure onto NotFound or Internal.
func lookupError(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, what+" not found")
	}
	return appErrors.Internal(err, "failed to load "+what)
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

type requestMetaKey struct{}

// RequestMeta identifies the HTTP call a workflow operation runs under.
type RequestMeta struct {
	IP        string
	UserAgent string
	RequestID string
}

// WithRequestMeta attaches meta to ctx for audit entries and warnings.
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFrom returns the metadata attached by WithRequestMeta.
func RequestMetaFrom(ctx context.Context) (RequestMeta, bool) {
	meta, ok := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta, ok
}

// stampRequestMeta copies request metadata onto the entry, keeping fallback
// as the user agent for calls made outside an HTTP request.
func stampRequestMeta(ctx context.Context, entry *models.AuditLog, fallback string) {
	entry.UserAgent = fallback
	meta, ok := RequestMetaFrom(ctx)
	if !ok {
		return
	}
	entry.IPAddress = meta.IP
	if meta.UserAgent != "" {
		entry.UserAgent = meta.UserAgent
	}
}

func requestIDField(ctx context.Context) zap.Field {
	meta, _ := RequestMetaFrom(ctx)
	return zap.String("request_id", meta.RequestID)
}
