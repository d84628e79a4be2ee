package dto

// CreateRoomRequest adds a room to the catalogue.
type CreateRoomRequest struct {
	RoomNumber string `json:"room_number" validate:"required,max=20"`
	Capacity   int    `json:"capacity" validate:"required,min=1,max=1000"`
	RoomType   string `json:"room_type" validate:"required,oneof=seminar_hall tutorial_room lecture_hall lab auditorium"`
}

// UpdateRoomRequest changes a room. Omitted fields keep their current value.
type UpdateRoomRequest struct {
	RoomNumber *string `json:"room_number" validate:"omitempty,min=1,max=20"`
	Capacity   *int    `json:"capacity" validate:"omitempty,min=1,max=1000"`
	RoomType   *string `json:"room_type" validate:"omitempty,oneof=seminar_hall tutorial_room lecture_hall lab auditorium"`
}

// EnsureDivisionRequest looks up or creates a division.
type EnsureDivisionRequest struct {
	Course   string `json:"course" validate:"required"`
	Semester int    `json:"semester" validate:"required,min=1,max=4"`
	Division string `json:"division" validate:"required"`
}

// MeResponse describes the authenticated actor and the authority it holds.
type MeResponse struct {
	UserID      string  `json:"user_id"`
	Username    string  `json:"username"`
	Role        string  `json:"role"`
	Coordinator *string `json:"coordinator_of,omitempty"`
	HODCourse   *string `json:"hod_of,omitempty"`
	Division    *string `json:"division,omitempty"`
	RollNumber  *string `json:"roll_number,omitempty"`
}
