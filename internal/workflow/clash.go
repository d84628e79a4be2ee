package workflow

import "github.com/noah-isme/college-approvals-api/internal/models"

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Touching intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd models.TimeOfDay) bool {
	return aStart < bEnd && aEnd > bStart
}

// Interval is the occupied window of an approved booking.
type Interval struct {
	BookingID string           `db:"id"`
	Start     models.TimeOfDay `db:"start_minute"`
	End       models.TimeOfDay `db:"end_minute"`
}

// FindClash returns the first approved interval overlapping [start, end).
// Callers pass only APPROVED bookings of the same room and date.
func FindClash(approved []Interval, start, end models.TimeOfDay) (Interval, bool) {
	for _, iv := range approved {
		if Overlaps(start, end, iv.Start, iv.End) {
			return iv, true
		}
	}
	return Interval{}, false
}
