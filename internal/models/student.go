package models

// Student is a learner enrolled in exactly one division.
type Student struct {
	ID         string `db:"id" json:"id"`
	UserID     string `db:"user_id" json:"user_id"`
	RollNumber string `db:"roll_number" json:"roll_number"`
	Course     Course `db:"course" json:"course"`
	Semester   int    `db:"semester" json:"semester"`
	DivisionID string `db:"division_id" json:"division_id"`
}
