package models

import "time"

// RoomType classifies bookable rooms.
type RoomType string

const (
	RoomTypeSeminarHall  RoomType = "seminar_hall"
	RoomTypeTutorialRoom RoomType = "tutorial_room"
	RoomTypeLectureHall  RoomType = "lecture_hall"
	RoomTypeLab          RoomType = "lab"
	RoomTypeAuditorium   RoomType = "auditorium"
)

var roomTypeLabels = map[RoomType]string{
	RoomTypeSeminarHall:  "Seminar Hall",
	RoomTypeTutorialRoom: "Tutorial Room",
	RoomTypeLectureHall:  "Lecture Hall",
	RoomTypeLab:          "Lab",
	RoomTypeAuditorium:   "Auditorium",
}

// Label returns the display name.
func (t RoomType) Label() string {
	if label, ok := roomTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// Room is a physical space that can be booked.
type Room struct {
	ID         string    `db:"id" json:"id"`
	RoomNumber string    `db:"room_number" json:"room_number"`
	Capacity   int       `db:"capacity" json:"capacity"`
	RoomType   RoomType  `db:"room_type" json:"room_type"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
