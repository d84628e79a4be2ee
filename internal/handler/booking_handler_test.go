package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/college-approvals-api/internal/dto"
	"github.com/noah-isme/college-approvals-api/internal/models"
	"github.com/noah-isme/college-approvals-api/internal/workflow"
	appErrors "github.com/noah-isme/college-approvals-api/pkg/errors"
)

type bookingWorkflowMock struct {
	created   *models.RoomBooking
	createErr error
	decided   *models.RoomBooking
	decideErr error
	pending   []models.BookingView
	gotActor  workflow.Actor
	gotID     string
	gotCreate dto.CreateBookingRequest
	gotDecide dto.DecisionRequest
}

func (m *bookingWorkflowMock) Create(ctx context.Context, actor workflow.Actor, req dto.CreateBookingRequest) (*models.RoomBooking, error) {
	m.gotActor, m.gotCreate = actor, req
	return m.created, m.createErr
}

func (m *bookingWorkflowMock) Decide(ctx context.Context, actor workflow.Actor, id string, req dto.DecisionRequest) (*models.RoomBooking, error) {
	m.gotActor, m.gotID, m.gotDecide = actor, id, req
	return m.decided, m.decideErr
}

func (m *bookingWorkflowMock) ListPending(ctx context.Context, actor workflow.Actor) ([]models.BookingView, error) {
	m.gotActor = actor
	return m.pending, nil
}

func (m *bookingWorkflowMock) ListMine(ctx context.Context, actor workflow.Actor) ([]models.BookingView, error) {
	m.gotActor = actor
	return nil, nil
}

func TestBookingHandlerCreate(t *testing.T) {
	mock := &bookingWorkflowMock{created: &models.RoomBooking{ID: "bk-1", Status: models.BookingPendingCoordinator}}
	h := NewBookingHandler(mock)

	payload := mustJSON(t, dto.CreateBookingRequest{RoomID: "room-1", Date: "2025-03-12", StartTime: "10:00", EndTime: "11:00", Purpose: "Seminar"})
	c, w := newGinContext(http.MethodPost, "/bookings", payload)
	withActor(c, studentActor())

	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "room-1", mock.gotCreate.RoomID)
	assert.Equal(t, "stu-user", mock.gotActor.UserID)

	env := decodeEnvelope(t, w)
	var booking models.RoomBooking
	require.NoError(t, json.Unmarshal(env.Data, &booking))
	assert.Equal(t, models.BookingPendingCoordinator, booking.Status)
}

func TestBookingHandlerCreateClash(t *testing.T) {
	mock := &bookingWorkflowMock{createErr: appErrors.Clone(appErrors.ErrConflict, "room already booked")}
	h := NewBookingHandler(mock)

	payload := mustJSON(t, dto.CreateBookingRequest{RoomID: "room-1"})
	c, w := newGinContext(http.MethodPost, "/bookings", payload)
	withActor(c, studentActor())

	h.Create(c)

	require.Equal(t, http.StatusConflict, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.ErrConflict.Code, env.Error.Code)
}

func TestBookingHandlerCreateMalformedBody(t *testing.T) {
	mock := &bookingWorkflowMock{}
	h := NewBookingHandler(mock)

	c, w := newGinContext(http.MethodPost, "/bookings", []byte(`{"room_id":`))
	withActor(c, studentActor())

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, mock.gotCreate.RoomID)
}

func TestBookingHandlerRequiresActor(t *testing.T) {
	h := NewBookingHandler(&bookingWorkflowMock{})
	c, w := newGinContext(http.MethodGet, "/bookings/pending", nil)

	h.Pending(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBookingHandlerDecide(t *testing.T) {
	mock := &bookingWorkflowMock{decided: &models.RoomBooking{ID: "bk-9", Status: models.BookingPendingHOD, CoordinatorApproved: true}}
	h := NewBookingHandler(mock)
	cohort := models.Cohort{Course: models.CourseMCA, Semester: 1, Letter: models.DivisionA}

	c, w := newGinContext(http.MethodPost, "/bookings/bk-9/decision", mustJSON(t, dto.DecisionRequest{Action: "approve"}))
	c.Params = append(c.Params, ginParam("id", "bk-9"))
	withActor(c, teacherActor(&cohort, nil))

	h.Decide(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bk-9", mock.gotID)
	assert.Equal(t, "approve", mock.gotDecide.Action)
}

func TestBookingHandlerDecideInvalidTransition(t *testing.T) {
	mock := &bookingWorkflowMock{decideErr: appErrors.ErrInvalidTransition}
	h := NewBookingHandler(mock)
	course := models.CourseMCA

	c, w := newGinContext(http.MethodPost, "/bookings/bk-9/decision", mustJSON(t, dto.DecisionRequest{Action: "reject"}))
	c.Params = append(c.Params, ginParam("id", "bk-9"))
	withActor(c, teacherActor(nil, &course))

	h.Decide(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, env.Error.Code)
}

func TestBookingHandlerPendingMeta(t *testing.T) {
	mock := &bookingWorkflowMock{pending: []models.BookingView{{Division: "N/A"}, {Division: "MCA - Sem 1 - A"}}}
	h := NewBookingHandler(mock)
	course := models.CourseMCA

	c, w := newGinContext(http.MethodGet, "/bookings/pending", nil)
	withActor(c, teacherActor(nil, &course))

	h.Pending(c)

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	assert.EqualValues(t, 2, env.Meta["total"])
}
