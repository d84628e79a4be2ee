package dto

// CohortRef names a division by course, semester and letter.
type CohortRef struct {
	Course   string `json:"course" validate:"required"`
	Semester int    `json:"semester" validate:"required"`
	Division string `json:"division" validate:"required"`
}

// CreateBookingRequest is the payload for requesting a room. Times use HH:MM.
// Division is taken from the student's profile; teachers must omit it.
type CreateBookingRequest struct {
	RoomID    string     `json:"room_id" validate:"required"`
	Date      string     `json:"date" validate:"required"`
	StartTime string     `json:"start_time" validate:"required"`
	EndTime   string     `json:"end_time" validate:"required"`
	Purpose   string     `json:"purpose" validate:"required,max=200"`
	Division  *CohortRef `json:"division,omitempty"`
}

// DecisionRequest carries an approver's action. Remark is only recorded on leaves.
type DecisionRequest struct {
	Action string `json:"action"`
	Remark string `json:"remark" validate:"max=1000"`
}
