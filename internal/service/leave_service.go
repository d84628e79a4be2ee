package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/college-approvals-api/internal/dto"
	"github.com/noah-isme/college-approvals-api/internal/models"
	"github.com/noah-isme/college-approvals-api/internal/repository"
	"github.com/noah-isme/college-approvals-api/internal/workflow"
	appErrors "github.com/noah-isme/college-approvals-api/pkg/errors"
)

type leaveStore interface {
	Create(ctx context.Context, leave *models.StudentLeave) error
	GetByID(ctx context.Context, id string) (*models.StudentLeave, error)
	ListViews(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveView, error)
	Decide(ctx context.Context, params repository.LeaveDecisionParams) error
}

type leaveLogInvalidator interface {
	InvalidateLeaveLog(ctx context.Context) error
}

// LeaveService runs the student leave workflow.
type LeaveService struct {
	leaves    leaveStore
	divisions divisionReader
	audit     auditLogger
	reports   leaveLogInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	opts      serviceOptions
}

// NewLeaveService constructs a LeaveService. audit and reports may be nil.
func NewLeaveService(leaves leaveStore, divisions divisionReader, audit auditLogger, reports leaveLogInvalidator, validate *validator.Validate, logger *zap.Logger, opts ...Option) *LeaveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &LeaveService{
		leaves:    leaves,
		divisions: divisions,
		audit:     audit,
		reports:   reports,
		validator: validate,
		logger:    logger,
		opts:      buildOptions(opts),
	}
}

// Apply records a pending leave for the student's current division.
func (s *LeaveService) Apply(ctx context.Context, actor workflow.Actor, req dto.ApplyLeaveRequest) (*models.StudentLeave, error) {
	if !workflow.CanApplyLeave(actor) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students can apply for leave")
	}
	if actor.Student == nil || actor.Division == nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student profile incomplete")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid leave payload")
	}

	from, err := models.ParseDate(req.FromDate)
	if err != nil {
		return nil, validationError(err, "from_date must be YYYY-MM-DD")
	}
	to, err := models.ParseDate(req.ToDate)
	if err != nil {
		return nil, validationError(err, "to_date must be YYYY-MM-DD")
	}
	if err := workflow.ValidateLeaveRange(from, to); err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reason is required")
	}
	var documentRef *string
	if req.DocumentRef != nil && strings.TrimSpace(*req.DocumentRef) != "" {
		ref := strings.TrimSpace(*req.DocumentRef)
		documentRef = &ref
	}

	leave := &models.StudentLeave{
		StudentID:   actor.Student.ID,
		DivisionID:  actor.Division.ID,
		Reason:      reason,
		FromDate:    from,
		ToDate:      to,
		DocumentRef: documentRef,
		Status:      models.LeavePending,
		AppliedAt:   s.opts.now(),
	}
	if err := s.leaves.Create(ctx, leave); err != nil {
		return nil, appErrors.Internal(err, "failed to apply for leave")
	}

	s.opts.metrics.LeaveApplied()
	s.logger.Info("leave applied", zap.String("leave_id", leave.ID), zap.String("division", actor.Division.Cohort().String()))
	s.emitAudit(ctx, actor.UserID, models.AuditActionLeaveCreate, leave.ID, nil, leave)
	return leave, nil
}

// Decide approves or rejects a pending leave, recording remark and time once.
func (s *LeaveService) Decide(ctx context.Context, actor workflow.Actor, id string, req dto.DecisionRequest) (*models.StudentLeave, error) {
	action, err := workflow.ParseAction(req.Action)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid decision payload")
	}

	leave, err := s.leaves.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "leave")
	}
	division, err := s.divisions.FindByID(ctx, leave.DivisionID)
	if err != nil {
		return nil, lookupError(err, "leave division")
	}
	if err := workflow.AuthorizeLeaveDecision(actor, *division); err != nil {
		return nil, err
	}

	to, err := workflow.LeaveTransition(leave.Status, action)
	if err != nil {
		return nil, err
	}

	remark := strings.TrimSpace(req.Remark)
	decidedAt := s.opts.now()
	err = s.leaves.Decide(ctx, repository.LeaveDecisionParams{
		ID:        leave.ID,
		Status:    to,
		Remark:    &remark,
		DecidedBy: actor.UserID,
		DecidedAt: decidedAt,
	})
	if err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "leave was decided concurrently")
		}
		return nil, appErrors.Internal(err, "failed to record leave decision")
	}

	before := *leave
	leave.Status = to
	leave.CoordinatorRemark = &remark
	leave.DecidedBy = &actor.UserID
	leave.DecisionAt = &decidedAt

	s.opts.metrics.LeaveDecided(to)
	s.logger.Info("leave decided", zap.String("leave_id", leave.ID), zap.String("actor", actor.UserID), zap.String("status", string(to)))
	s.emitAudit(ctx, actor.UserID, models.AuditActionLeaveDecision, leave.ID, &before, leave)
	if to == models.LeaveApproved && s.reports != nil {
		if err := s.reports.InvalidateLeaveLog(ctx); err != nil {
			s.logger.Warn("failed to invalidate leave log cache", zap.Error(err))
		}
	}
	return leave, nil
}

// ListPending returns pending leaves of the coordinator's division. Actors
// who coordinate nothing get an empty list.
func (s *LeaveService) ListPending(ctx context.Context, actor workflow.Actor) ([]models.LeaveView, error) {
	cohort, ok := actor.Authority().Coordinator()
	if !ok {
		return make([]models.LeaveView, 0), nil
	}
	items, err := s.leaves.ListViews(ctx, models.LeaveFilter{
		Statuses: []models.LeaveStatus{models.LeavePending},
		Cohort:   &cohort,
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list pending leaves")
	}
	if items == nil {
		items = make([]models.LeaveView, 0)
	}
	return items, nil
}

// ListMine returns the student's own leaves, newest first.
func (s *LeaveService) ListMine(ctx context.Context, actor workflow.Actor) ([]models.LeaveView, error) {
	if !workflow.CanApplyLeave(actor) || actor.Student == nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students have leave applications")
	}
	items, err := s.leaves.ListViews(ctx, models.LeaveFilter{StudentID: actor.Student.ID})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list leaves")
	}
	if items == nil {
		items = make([]models.LeaveView, 0)
	}
	return items, nil
}

func (s *LeaveService) emitAudit(ctx context.Context, userID, action, leaveID string, before, after *models.StudentLeave) {
	if s.audit == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   "student_leave",
		ResourceID: &leaveID,
		CreatedAt:  s.opts.now(),
	}
	stampRequestMeta(ctx, entry, "leave-service")
	if before != nil {
		entry.OldValues, _ = json.Marshal(before)
	}
	if after != nil {
		entry.NewValues, _ = json.Marshal(after)
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to write audit log", zap.String("action", action), zap.String("leave_id", leaveID), requestIDField(ctx), zap.Error(err))
	}
}
