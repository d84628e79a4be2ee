package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/college-approvals-api/internal/models"
)

var (
	// ErrDuplicateRoomNumber is returned when the room number is already taken.
	ErrDuplicateRoomNumber = errors.New("room number already exists")
	// ErrRoomInUse is returned when deleting a room that bookings still reference.
	ErrRoomInUse = errors.New("room has bookings")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// RoomRepository manages the room catalogue.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs the repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// FindByID fetches a room.
func (r *RoomRepository) FindByID(ctx context.Context, id string) (*models.Room, error) {
	const query = `SELECT id, room_number, capacity, room_type, created_at FROM rooms WHERE id = $1`
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// List returns every room ordered by number.
func (r *RoomRepository) List(ctx context.Context) ([]models.Room, error) {
	const query = `SELECT id, room_number, capacity, room_type, created_at FROM rooms ORDER BY room_number ASC`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// Create inserts a room.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO rooms (id, room_number, capacity, room_type, created_at)
VALUES (:id, :room_number, :capacity, :room_type, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		if isPQCode(err, pqUniqueViolation) {
			return ErrDuplicateRoomNumber
		}
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

// Update rewrites a room's number, capacity and type. sql.ErrNoRows is
// returned when the room does not exist.
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	const query = `UPDATE rooms SET room_number = :room_number, capacity = :capacity, room_type = :room_type WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, room)
	if err != nil {
		if isPQCode(err, pqUniqueViolation) {
			return ErrDuplicateRoomNumber
		}
		return fmt.Errorf("update room: %w", err)
	}
	return expectOneRow(res)
}

// Delete removes a room. Rooms referenced by bookings yield ErrRoomInUse.
func (r *RoomRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		if isPQCode(err, pqForeignKeyViolation) {
			return ErrRoomInUse
		}
		return fmt.Errorf("delete room: %w", err)
	}
	return expectOneRow(res)
}

func isPQCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}

func expectOneRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
