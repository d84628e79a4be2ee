package dto

// ApplyLeaveRequest is a student's leave application. Dates use YYYY-MM-DD.
type ApplyLeaveRequest struct {
	FromDate    string  `json:"from_date" validate:"required"`
	ToDate      string  `json:"to_date" validate:"required"`
	Reason      string  `json:"reason" validate:"required,max=2000"`
	DocumentRef *string `json:"document_ref,omitempty" validate:"omitempty,max=255"`
}
