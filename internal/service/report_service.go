package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/college-approvals-api/internal/models"
	"github.com/noah-isme/college-approvals-api/internal/workflow"
	appErrors "github.com/noah-isme/college-approvals-api/pkg/errors"
	"github.com/noah-isme/college-approvals-api/pkg/export"
)

const (
	bookingLogKey  = "bookings:approved"
	leaveLogKey    = "leaves:approved"
	bookingLogKind = "bookings"
	leaveLogKind   = "leaves"
)

type bookingLister interface {
	ListViews(ctx context.Context, filter models.BookingFilter) ([]models.BookingView, error)
}

type leaveLister interface {
	ListViews(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveView, error)
}

type reportCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, kind string) error
}

// ExportFormat selects the rendering of a log export.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ParseExportFormat accepts csv or pdf.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch format := ExportFormat(strings.ToLower(strings.TrimSpace(raw))); format {
	case ExportCSV, ExportPDF:
		return format, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

// ExportFile is a rendered report ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ReportCacheConfig tunes the approved-log cache.
type ReportCacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// ReportService serves the approved booking and leave logs.
type ReportService struct {
	bookings bookingLister
	leaves   leaveLister
	cache    reportCache
	cfg      ReportCacheConfig
	logger   *zap.Logger
	opts     serviceOptions

	// generations counts invalidations per cache key. A fill computed under
	// an older generation is not written back.
	genMu       sync.Mutex
	generations map[string]uint64
}

// NewReportService constructs a ReportService. cache may be nil.
func NewReportService(bookings bookingLister, leaves leaveLister, cache reportCache, cfg ReportCacheConfig, logger *zap.Logger, opts ...Option) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	return &ReportService{
		bookings:    bookings,
		leaves:      leaves,
		cache:       cache,
		cfg:         cfg,
		logger:      logger,
		opts:        buildOptions(opts),
		generations: make(map[string]uint64),
	}
}

// BookingLog lists approved bookings by date and start time.
func (s *ReportService) BookingLog(ctx context.Context) ([]models.BookingView, error) {
	var rows []models.BookingView
	if s.readCache(ctx, bookingLogKey, &rows) {
		return rows, nil
	}
	gen := s.generation(bookingLogKey)
	rows, err := s.fetchBookingLog(ctx)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, bookingLogKey, gen, rows)
	return rows, nil
}

func (s *ReportService) fetchBookingLog(ctx context.Context) ([]models.BookingView, error) {
	rows, err := s.bookings.ListViews(ctx, models.BookingFilter{
		Statuses:   []models.BookingStatus{models.BookingApproved},
		BySchedule: true,
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load booking log")
	}
	if rows == nil {
		rows = make([]models.BookingView, 0)
	}
	return rows, nil
}

// LeaveLog lists approved leaves, most recently decided first. Only
// coordinators and HODs may read it.
func (s *ReportService) LeaveLog(ctx context.Context, actor workflow.Actor) ([]models.LeaveView, error) {
	if !workflow.CanViewLeaveLog(actor) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only coordinators and HODs can view the leave log")
	}
	return s.loadLeaveLog(ctx)
}

// WarmBookingLog reloads the booking log from the database and overwrites
// the cached copy.
func (s *ReportService) WarmBookingLog(ctx context.Context) error {
	if !s.cfg.Enabled || s.cache == nil {
		return nil
	}
	gen := s.generation(bookingLogKey)
	rows, err := s.fetchBookingLog(ctx)
	if err != nil {
		return err
	}
	s.writeCache(ctx, bookingLogKey, gen, rows)
	return nil
}

// WarmLeaveLog reloads the leave log and overwrites the cached copy.
func (s *ReportService) WarmLeaveLog(ctx context.Context) error {
	if !s.cfg.Enabled || s.cache == nil {
		return nil
	}
	gen := s.generation(leaveLogKey)
	rows, err := s.fetchLeaveLog(ctx)
	if err != nil {
		return err
	}
	s.writeCache(ctx, leaveLogKey, gen, rows)
	return nil
}

func (s *ReportService) loadLeaveLog(ctx context.Context) ([]models.LeaveView, error) {
	var rows []models.LeaveView
	if s.readCache(ctx, leaveLogKey, &rows) {
		return rows, nil
	}
	gen := s.generation(leaveLogKey)
	rows, err := s.fetchLeaveLog(ctx)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, leaveLogKey, gen, rows)
	return rows, nil
}

func (s *ReportService) fetchLeaveLog(ctx context.Context) ([]models.LeaveView, error) {
	rows, err := s.leaves.ListViews(ctx, models.LeaveFilter{
		Statuses:   []models.LeaveStatus{models.LeaveApproved},
		ByDecision: true,
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load leave log")
	}
	if rows == nil {
		rows = make([]models.LeaveView, 0)
	}
	return rows, nil
}

// ExportBookingLog renders the booking log as CSV or PDF.
func (s *ReportService) ExportBookingLog(ctx context.Context, format ExportFormat) (*ExportFile, error) {
	rows, err := s.BookingLog(ctx)
	if err != nil {
		return nil, err
	}
	table := export.Table{
		Title:   "Approved Room Bookings",
		Columns: []string{"Room", "Type", "Date", "Start", "End", "Requested By", "Role", "Division", "Purpose"},
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, []string{
			row.RoomNumber,
			row.RoomType.Label(),
			row.BookingDate.String(),
			row.StartTime.String(),
			row.EndTime.String(),
			row.RequesterName,
			string(row.RequesterRole),
			row.Division,
			row.Purpose,
		})
	}
	return s.render(table, "room-bookings", format)
}

// ExportLeaveLog renders the leave log as CSV or PDF.
func (s *ReportService) ExportLeaveLog(ctx context.Context, actor workflow.Actor, format ExportFormat) (*ExportFile, error) {
	rows, err := s.LeaveLog(ctx, actor)
	if err != nil {
		return nil, err
	}
	table := export.Table{
		Title:   "Approved Student Leaves",
		Columns: []string{"Student", "Division", "From", "To", "Days", "Reason", "Remark", "Decided At"},
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		var remark, decidedAt string
		if row.CoordinatorRemark != nil {
			remark = *row.CoordinatorRemark
		}
		if row.DecisionAt != nil {
			decidedAt = row.DecisionAt.UTC().Format("2006-01-02 15:04")
		}
		days := int(row.ToDate.Sub(row.FromDate.Time).Hours()/24) + 1
		table.Rows = append(table.Rows, []string{
			row.StudentUsername,
			row.Division,
			row.FromDate.String(),
			row.ToDate.String(),
			strconv.Itoa(days),
			row.Reason,
			remark,
			decidedAt,
		})
	}
	return s.render(table, "student-leaves", format)
}

// InvalidateBookingLog drops the cached booking log.
func (s *ReportService) InvalidateBookingLog(ctx context.Context) error {
	return s.invalidate(ctx, bookingLogKind)
}

// InvalidateLeaveLog drops the cached leave log.
func (s *ReportService) InvalidateLeaveLog(ctx context.Context) error {
	return s.invalidate(ctx, leaveLogKind)
}

func (s *ReportService) render(table export.Table, name string, format ExportFormat) (*ExportFile, error) {
	now := s.opts.now()
	filename := fmt.Sprintf("%s_%s.%s", name, now.UTC().Format("20060102_150405"), format)

	var (
		body        []byte
		contentType string
		err         error
	)
	switch format {
	case ExportCSV:
		body, err = export.CSV(table)
		contentType = "text/csv; charset=utf-8"
	case ExportPDF:
		body, err = export.PDF(table, now)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render "+name)
	}
	return &ExportFile{Filename: filename, ContentType: contentType, Body: body}, nil
}

func (s *ReportService) readCache(ctx context.Context, key string, dest interface{}) bool {
	if !s.cfg.Enabled || s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	hit := err == nil
	s.opts.metrics.ReportCacheLookup(key, hit)
	if err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
	}
	return hit
}

func (s *ReportService) generation(key string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generations[key]
}

// writeCache stores value only if key has not been invalidated since gen was
// read. The lock is held across Set so an invalidation cannot slip between
// the check and the write.
func (s *ReportService) writeCache(ctx context.Context, key string, gen uint64, value interface{}) {
	if !s.cfg.Enabled || s.cache == nil {
		return
	}
	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.generations[key] != gen {
		s.logger.Debug("report cache fill discarded after invalidation", zap.String("key", key))
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.TTL); err != nil {
		s.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *ReportService) invalidate(ctx context.Context, kind string) error {
	if !s.cfg.Enabled || s.cache == nil {
		return nil
	}
	key := bookingLogKey
	if kind == leaveLogKind {
		key = leaveLogKey
	}
	s.genMu.Lock()
	s.generations[key]++
	s.genMu.Unlock()
	return s.cache.Invalidate(ctx, kind)
}
