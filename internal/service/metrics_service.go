package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/college-approvals-api/internal/models"
)

// MetricsService owns the Prometheus registry. Every method is safe on a nil
// receiver so services can run without metrics.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	bookingsCreated  *prometheus.CounterVec
	bookingDecisions *prometheus.CounterVec
	bookingClashes   *prometheus.CounterVec
	leavesApplied    prometheus.Counter
	leaveDecisions   *prometheus.CounterVec
	reportCache      *prometheus.CounterVec
}

// NewMetricsService registers the HTTP and workflow collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	bookingsCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "room_bookings_created_total",
		Help: "Room bookings accepted for approval, by requester role",
	}, []string{"role"})

	bookingDecisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "room_booking_decisions_total",
		Help: "Room booking transitions applied",
	}, []string{"from", "to"})

	bookingClashes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "room_booking_clashes_total",
		Help: "Requests or approvals refused because an approved booking overlaps",
	}, []string{"stage"})

	leavesApplied := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "student_leaves_applied_total",
		Help: "Leave applications submitted",
	})

	leaveDecisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "student_leave_decisions_total",
		Help: "Leave decisions recorded, by outcome",
	}, []string{"status"})

	reportCache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_cache_lookups_total",
		Help: "Approved-log cache lookups",
	}, []string{"report", "result"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, bookingsCreated, bookingDecisions, bookingClashes,
		leavesApplied, leaveDecisions, reportCache, goroutines)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		bookingsCreated:  bookingsCreated,
		bookingDecisions: bookingDecisions,
		bookingClashes:   bookingClashes,
		leavesApplied:    leavesApplied,
		leaveDecisions:   leaveDecisions,
		reportCache:      reportCache,
	}
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request latency and count.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// BookingCreated counts an accepted booking request.
func (m *MetricsService) BookingCreated(role models.UserRole) {
	if m == nil {
		return
	}
	m.bookingsCreated.WithLabelValues(string(role)).Inc()
}

// BookingDecided counts one applied transition.
func (m *MetricsService) BookingDecided(from, to models.BookingStatus) {
	if m == nil {
		return
	}
	m.bookingDecisions.WithLabelValues(string(from), string(to)).Inc()
}

// BookingClash counts a clash refusal at creation or final approval.
func (m *MetricsService) BookingClash(stage string) {
	if m == nil {
		return
	}
	m.bookingClashes.WithLabelValues(stage).Inc()
}

// LeaveApplied counts a leave application.
func (m *MetricsService) LeaveApplied() {
	if m == nil {
		return
	}
	m.leavesApplied.Inc()
}

// LeaveDecided counts a recorded leave decision.
func (m *MetricsService) LeaveDecided(status models.LeaveStatus) {
	if m == nil {
		return
	}
	m.leaveDecisions.WithLabelValues(string(status)).Inc()
}

// ReportCacheLookup counts a report cache hit or miss.
func (m *MetricsService) ReportCacheLookup(report string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.reportCache.WithLabelValues(report, result).Inc()
}
