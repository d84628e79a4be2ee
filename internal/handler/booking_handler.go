package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/college-approvals-api/internal/dto"
	"github.com/noah-isme/college-approvals-api/internal/models"
	"github.com/noah-isme/college-approvals-api/internal/workflow"
	"github.com/noah-isme/college-approvals-api/pkg/response"
)

type bookingWorkflow interface {
	Create(ctx context.Context, actor workflow.Actor, req dto.CreateBookingRequest) (*models.RoomBooking, error)
	Decide(ctx context.Context, actor workflow.Actor, id string, req dto.DecisionRequest) (*models.RoomBooking, error)
	ListPending(ctx context.Context, actor workflow.Actor) ([]models.BookingView, error)
	ListMine(ctx context.Context, actor workflow.Actor) ([]models.BookingView, error)
}

// BookingHandler exposes the room booking workflow.
type BookingHandler struct {
	bookings bookingWorkflow
}

// NewBookingHandler constructs the handler.
func NewBookingHandler(bookings bookingWorkflow) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// Create godoc
// @Summary Request a room
// @Description Students enter the coordinator stage for their own division; teachers go straight to the HOD.
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body dto.CreateBookingRequest true "Booking request"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Overlaps an approved booking"
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid booking payload"))
		return
	}
	booking, err := h.bookings.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, booking)
}

// Decide godoc
// @Summary Approve or reject a booking at its current stage
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param payload body dto.DecisionRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Invalid transition or clash"
// @Router /bookings/{id}/decision [post]
func (h *BookingHandler) Decide(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid decision payload"))
		return
	}
	booking, err := h.bookings.Decide(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking)
}

// Pending godoc
// @Summary Bookings awaiting the caller's decision
// @Tags Bookings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /bookings/pending [get]
func (h *BookingHandler) Pending(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	items, err := h.bookings.ListPending(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"total": len(items)})
}

// Mine godoc
// @Summary The caller's booking requests
// @Tags Bookings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /bookings/mine [get]
func (h *BookingHandler) Mine(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	items, err := h.bookings.ListMine(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"total": len(items)})
}
