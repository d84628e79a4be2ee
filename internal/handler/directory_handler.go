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

type directoryManager interface {
	ListRooms(ctx context.Context) ([]models.Room, error)
	CreateRoom(ctx context.Context, actor workflow.Actor, req dto.CreateRoomRequest) (*models.Room, error)
	UpdateRoom(ctx context.Context, actor workflow.Actor, id string, req dto.UpdateRoomRequest) (*models.Room, error)
	DeleteRoom(ctx context.Context, actor workflow.Actor, id string) error
	EnsureDivision(ctx context.Context, actor workflow.Actor, req dto.EnsureDivisionRequest) (*models.Division, error)
}

// DirectoryHandler exposes rooms, divisions and the caller's profile.
type DirectoryHandler struct {
	directory directoryManager
}

// NewDirectoryHandler constructs the handler.
func NewDirectoryHandler(directory directoryManager) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

// Me godoc
// @Summary Current user and approval authority
// @Tags Directory
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me [get]
func (h *DirectoryHandler) Me(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, describeActor(actor))
}

// ListRooms godoc
// @Summary Room catalogue
// @Tags Directory
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /rooms [get]
func (h *DirectoryHandler) ListRooms(c *gin.Context) {
	rooms, err := h.directory.ListRooms(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rooms, map[string]interface{}{"total": len(rooms)})
}

// CreateRoom godoc
// @Summary Add a room
// @Tags Directory
// @Accept json
// @Produce json
// @Param payload body dto.CreateRoomRequest true "Room"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Room number already exists"
// @Router /rooms [post]
func (h *DirectoryHandler) CreateRoom(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid room payload"))
		return
	}
	room, err := h.directory.CreateRoom(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, room)
}

// UpdateRoom godoc
// @Summary Edit a room
// @Tags Directory
// @Accept json
// @Produce json
// @Param id path string true "Room ID"
// @Param payload body dto.UpdateRoomRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope "Room not found"
// @Failure 409 {object} response.Envelope "Room number already exists"
// @Router /rooms/{id} [put]
func (h *DirectoryHandler) UpdateRoom(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid room payload"))
		return
	}
	room, err := h.directory.UpdateRoom(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, room)
}

// DeleteRoom godoc
// @Summary Delete a room
// @Tags Directory
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope "Room not found"
// @Failure 409 {object} response.Envelope "Room has bookings"
// @Router /rooms/{id} [delete]
func (h *DirectoryHandler) DeleteRoom(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if err := h.directory.DeleteRoom(c.Request.Context(), actor, id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}

// EnsureDivision godoc
// @Summary Look up or create a division
// @Tags Directory
// @Accept json
// @Produce json
// @Param payload body dto.EnsureDivisionRequest true "Division"
// @Success 200 {object} response.Envelope
// @Router /divisions [post]
func (h *DirectoryHandler) EnsureDivision(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req dto.EnsureDivisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid division payload"))
		return
	}
	division, err := h.directory.EnsureDivision(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, division)
}

func describeActor(actor workflow.Actor) dto.MeResponse {
	resp := dto.MeResponse{
		UserID:   actor.UserID,
		Username: actor.Username,
		Role:     string(actor.Role),
	}
	authority := actor.Authority()
	if cohort, ok := authority.Coordinator(); ok {
		label := cohort.String()
		resp.Coordinator = &label
	}
	if course, ok := authority.HOD(); ok {
		label := string(course)
		resp.HODCourse = &label
	}
	if actor.Division != nil {
		label := actor.Division.Cohort().String()
		resp.Division = &label
	}
	if actor.Student != nil {
		roll := actor.Student.RollNumber
		resp.RollNumber = &roll
	}
	return resp
}
