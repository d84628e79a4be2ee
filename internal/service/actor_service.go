package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/college-approvals-api/internal/models"
	"github.com/noah-isme/college-approvals-api/internal/workflow"
	appErrors "github.com/noah-isme/college-approvals-api/pkg/errors"
)

type actorUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type actorTeacherReader interface {
	FindByUserID(ctx context.Context, userID string) (*models.Teacher, error)
}

type actorStudentReader interface {
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
}

type divisionReader interface {
	FindByID(ctx context.Context, id string) (*models.Division, error)
}

// ActorService resolves verified token claims against the directory.
type ActorService struct {
	users     actorUserReader
	teachers  actorTeacherReader
	students  actorStudentReader
	divisions divisionReader
	logger    *zap.Logger
}

// NewActorService constructs an ActorService.
func NewActorService(users actorUserReader, teachers actorTeacherReader, students actorStudentReader, divisions divisionReader, logger *zap.Logger) *ActorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActorService{users: users, teachers: teachers, students: students, divisions: divisions, logger: logger}
}

// Resolve loads the caller's role and scoped authority. The stored role wins
// over the role carried in the token.
func (s *ActorService) Resolve(ctx context.Context, claims *models.JWTClaims) (*workflow.Actor, error) {
	if claims == nil || claims.UserID == "" {
		return nil, appErrors.ErrUnauthorized
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "user is unknown or inactive")
		}
		return nil, appErrors.Internal(err, "failed to load user")
	}
	if user.Role != claims.Role {
		s.logger.Warn("token role differs from directory", zap.String("user_id", user.ID), zap.String("token_role", string(claims.Role)), zap.String("role", string(user.Role)))
	}

	actor := &workflow.Actor{UserID: user.ID, Username: user.Username, Role: user.Role}
	switch user.Role {
	case models.RoleTeacher:
		teacher, err := s.teachers.FindByUserID(ctx, user.ID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// teacher without a profile row holds no approval authority
		case err != nil:
			return nil, appErrors.Internal(err, "failed to load teacher profile")
		default:
			actor.Teacher = teacher
		}
	case models.RoleStudent:
		student, err := s.students.FindByUserID(ctx, user.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrForbidden, "student profile not found")
			}
			return nil, appErrors.Internal(err, "failed to load student profile")
		}
		division, err := s.divisions.FindByID(ctx, student.DivisionID)
		if err != nil {
			return nil, lookupError(err, "student division")
		}
		actor.Student = student
		actor.Division = division
	}
	return actor, nil
}
