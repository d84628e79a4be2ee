package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/college-approvals-api/internal/models"
	"github.com/noah-isme/college-approvals-api/internal/service"
	"github.com/noah-isme/college-approvals-api/internal/workflow"
	"github.com/noah-isme/college-approvals-api/pkg/response"
)

type reportProvider interface {
	BookingLog(ctx context.Context) ([]models.BookingView, error)
	LeaveLog(ctx context.Context, actor workflow.Actor) ([]models.LeaveView, error)
	ExportBookingLog(ctx context.Context, format service.ExportFormat) (*service.ExportFile, error)
	ExportLeaveLog(ctx context.Context, actor workflow.Actor, format service.ExportFormat) (*service.ExportFile, error)
}

// ReportHandler serves the approved booking and leave logs.
type ReportHandler struct {
	reports reportProvider
}

// NewReportHandler constructs the handler.
func NewReportHandler(reports reportProvider) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// BookingLog godoc
// @Summary Approved room bookings
// @Description Without format the log is returned as JSON; csv and pdf stream a file.
// @Tags Reports
// @Produce json
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Success 200 {object} response.Envelope
// @Router /reports/bookings [get]
func (h *ReportHandler) BookingLog(c *gin.Context) {
	if _, ok := actorFromContext(c); !ok {
		return
	}
	if raw := c.Query("format"); raw != "" {
		format, err := service.ParseExportFormat(raw)
		if err != nil {
			response.Error(c, err)
			return
		}
		file, err := h.reports.ExportBookingLog(c.Request.Context(), format)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Attachment(c, file.Filename, file.ContentType, file.Body)
		return
	}

	items, err := h.reports.BookingLog(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"total": len(items)})
}

// LeaveLog godoc
// @Summary Approved student leaves
// @Description Restricted to HODs and batch coordinators.
// @Tags Reports
// @Produce json
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /reports/leaves [get]
func (h *ReportHandler) LeaveLog(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	if raw := c.Query("format"); raw != "" {
		format, err := service.ParseExportFormat(raw)
		if err != nil {
			response.Error(c, err)
			return
		}
		file, err := h.reports.ExportLeaveLog(c.Request.Context(), actor, format)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Attachment(c, file.Filename, file.ContentType, file.Body)
		return
	}

	items, err := h.reports.LeaveLog(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"total": len(items)})
}
