package service

import (
	"context"
	"database/sql"
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

type roomStore interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
	Create(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Room, error)
}

type divisionStore interface {
	GetOrCreate(ctx context.Context, cohort models.Cohort) (*models.Division, error)
}

// DirectoryService maintains the room catalogue and division cohorts.
type DirectoryService struct {
	rooms     roomStore
	divisions divisionStore
	audit     auditLogger
	reports   bookingLogInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDirectoryService constructs a DirectoryService. reports may be nil.
func NewDirectoryService(rooms roomStore, divisions divisionStore, audit auditLogger, reports bookingLogInvalidator, validate *validator.Validate, logger *zap.Logger) *DirectoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &DirectoryService{rooms: rooms, divisions: divisions, audit: audit, reports: reports, validator: validate, logger: logger}
}

// ListRooms returns every room.
func (s *DirectoryService) ListRooms(ctx context.Context) ([]models.Room, error) {
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list rooms")
	}
	if rooms == nil {
		rooms = make([]models.Room, 0)
	}
	return rooms, nil
}

// CreateRoom adds a room. Administrators only.
func (s *DirectoryService) CreateRoom(ctx context.Context, actor workflow.Actor, req dto.CreateRoomRequest) (*models.Room, error) {
	if !workflow.CanManageDirectory(actor) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can add rooms")
	}
	req.RoomNumber = strings.TrimSpace(req.RoomNumber)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid room payload")
	}

	room := &models.Room{RoomNumber: req.RoomNumber, Capacity: req.Capacity, RoomType: models.RoomType(req.RoomType)}
	if err := s.rooms.Create(ctx, room); err != nil {
		if errors.Is(err, repository.ErrDuplicateRoomNumber) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "room number already exists")
		}
		return nil, appErrors.Internal(err, "failed to create room")
	}

	s.logger.Info("room created", zap.String("room_id", room.ID), zap.String("room_number", room.RoomNumber))
	s.auditRoom(ctx, actor, models.AuditActionRoomCreate, room.ID, nil, room)
	return room, nil
}

// UpdateRoom changes a room's number, capacity or type. Administrators only.
func (s *DirectoryService) UpdateRoom(ctx context.Context, actor workflow.Actor, id string, req dto.UpdateRoomRequest) (*models.Room, error) {
	if !workflow.CanManageDirectory(actor) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can edit rooms")
	}
	if req.RoomNumber != nil {
		trimmed := strings.TrimSpace(*req.RoomNumber)
		req.RoomNumber = &trimmed
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid room payload")
	}

	current, err := s.findRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := *current
	if req.RoomNumber != nil {
		updated.RoomNumber = *req.RoomNumber
	}
	if req.Capacity != nil {
		updated.Capacity = *req.Capacity
	}
	if req.RoomType != nil {
		updated.RoomType = models.RoomType(*req.RoomType)
	}

	if err := s.rooms.Update(ctx, &updated); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateRoomNumber):
			return nil, appErrors.Clone(appErrors.ErrConflict, "room number already exists")
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Internal(err, "failed to update room")
	}

	s.logger.Info("room updated", zap.String("room_id", updated.ID), zap.String("room_number", updated.RoomNumber))
	s.auditRoom(ctx, actor, models.AuditActionRoomUpdate, updated.ID, current, &updated)
	if s.reports != nil {
		if err := s.reports.InvalidateBookingLog(ctx); err != nil {
			s.logger.Warn("failed to invalidate booking log cache", zap.Error(err))
		}
	}
	return &updated, nil
}

// DeleteRoom removes a room that no booking references. Administrators only.
func (s *DirectoryService) DeleteRoom(ctx context.Context, actor workflow.Actor, id string) error {
	if !workflow.CanManageDirectory(actor) {
		return appErrors.Clone(appErrors.ErrForbidden, "only administrators can delete rooms")
	}
	current, err := s.findRoom(ctx, id)
	if err != nil {
		return err
	}
	if err := s.rooms.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrRoomInUse):
			return appErrors.Clone(appErrors.ErrConflict, "room has bookings and cannot be deleted")
		case errors.Is(err, sql.ErrNoRows):
			return appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return appErrors.Internal(err, "failed to delete room")
	}

	s.logger.Info("room deleted", zap.String("room_id", id), zap.String("room_number", current.RoomNumber))
	s.auditRoom(ctx, actor, models.AuditActionRoomDelete, id, current, nil)
	return nil
}

func (s *DirectoryService) findRoom(ctx context.Context, id string) (*models.Room, error) {
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Internal(err, "failed to load room")
	}
	return room, nil
}

func (s *DirectoryService) auditRoom(ctx context.Context, actor workflow.Actor, action, roomID string, before, after *models.Room) {
	if s.audit == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     action,
		Resource:   "room",
		ResourceID: &roomID,
	}
	if before != nil {
		entry.OldValues, _ = json.Marshal(before)
	}
	if after != nil {
		entry.NewValues, _ = json.Marshal(after)
	}
	stampRequestMeta(ctx, entry, "directory-service")
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to write audit log", zap.String("action", entry.Action), requestIDField(ctx), zap.Error(err))
	}
}

// EnsureDivision returns the division for the cohort, creating it on first
// use. Administrators only.
func (s *DirectoryService) EnsureDivision(ctx context.Context, actor workflow.Actor, req dto.EnsureDivisionRequest) (*models.Division, error) {
	if !workflow.CanManageDirectory(actor) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can manage divisions")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid division payload")
	}
	cohort, err := models.NewCohort(req.Course, req.Semester, req.Division)
	if err != nil {
		return nil, validationError(err, err.Error())
	}
	division, err := s.divisions.GetOrCreate(ctx, cohort)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to resolve division")
	}
	return division, nil
}
