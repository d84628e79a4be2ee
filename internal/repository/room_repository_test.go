package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-approvals-api/internal/models"
)

func TestRoomRepositoryList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	rows := sqlmock.NewRows([]string{"id", "room_number", "capacity", "room_type", "created_at"}).
		AddRow("r1", "101", 60, "lecture_hall", time.Now()).
		AddRow("r2", "202", 20, "tutorial_room", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM rooms ORDER BY room_number ASC")).WillReturnRows(rows)

	rooms, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, models.RoomTypeTutorialRoom, rooms[1].RoomType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectExec("INSERT INTO rooms").WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.Room{RoomNumber: "101", Capacity: 60, RoomType: models.RoomTypeLab})
	assert.ErrorIs(t, err, ErrDuplicateRoomNumber)
}

func TestRoomRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)
	room := &models.Room{ID: "r1", RoomNumber: "101A", Capacity: 80, RoomType: models.RoomTypeLectureHall}

	mock.ExpectExec("UPDATE rooms SET room_number = .+ WHERE id = .+").
		WithArgs("101A", 80, "lecture_hall", "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(context.Background(), room))

	mock.ExpectExec("UPDATE rooms").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Update(context.Background(), room), sql.ErrNoRows)

	mock.ExpectExec("UPDATE rooms").WillReturnError(&pq.Error{Code: "23505"})
	assert.ErrorIs(t, repo.Update(context.Background(), room), ErrDuplicateRoomNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM rooms WHERE id = $1")).WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "r1"))

	mock.ExpectExec("DELETE FROM rooms").WithArgs("r2").WillReturnError(&pq.Error{Code: "23503"})
	assert.ErrorIs(t, repo.Delete(context.Background(), "r2"), ErrRoomInUse)

	mock.ExpectExec("DELETE FROM rooms").WithArgs("r3").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), "r3"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
