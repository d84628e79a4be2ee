package service

import (
	"context"
	"database/sql"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/noah-isme/college-approvals-api/internal/models"
	"github.com/noah-isme/college-approvals-api/internal/repository"
	"github.com/noah-isme/college-approvals-api/internal/workflow"
)

var fixedNow = time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func mustCohort(course string, semester int, letter string) models.Cohort {
	cohort, err := models.NewCohort(course, semester, letter)
	if err != nil {
		panic(err)
	}
	return cohort
}

var (
	divisionA = models.Division{ID: "div-a", Course: models.CourseMCA, Semester: 1, Letter: models.DivisionA}
	divisionB = models.Division{ID: "div-b", Course: models.CourseMCA, Semester: 1, Letter: models.DivisionB}
)

func studentActor(userID string, division models.Division) workflow.Actor {
	d := division
	return workflow.Actor{
		UserID:   userID,
		Username: userID,
		Role:     models.RoleStudent,
		Student:  &models.Student{ID: "stu-" + userID, UserID: userID, Course: d.Course, Semester: d.Semester, DivisionID: d.ID},
		Division: &d,
	}
}

func teacherActor(userID string, coordinator *models.Cohort, hod *models.Course) workflow.Actor {
	return workflow.Actor{
		UserID:   userID,
		Username: userID,
		Role:     models.RoleTeacher,
		Teacher:  &models.Teacher{ID: "t-" + userID, UserID: userID, Authority: models.NewAuthority(coordinator, hod)},
	}
}

func coordinatorOf(userID string, division models.Division) workflow.Actor {
	cohort := division.Cohort()
	return teacherActor(userID, &cohort, nil)
}

func hodOf(userID string, course models.Course) workflow.Actor {
	return teacherActor(userID, nil, &course)
}

type divisionStub struct {
	divisions map[string]models.Division
}

func newDivisionStub(divisions ...models.Division) *divisionStub {
	stub := &divisionStub{divisions: make(map[string]models.Division)}
	for _, d := range divisions {
		stub.divisions[d.ID] = d
	}
	return stub
}

func (s *divisionStub) FindByID(ctx context.Context, id string) (*models.Division, error) {
	d, ok := s.divisions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &d, nil
}

func (s *divisionStub) GetOrCreate(ctx context.Context, cohort models.Cohort) (*models.Division, error) {
	for _, d := range s.divisions {
		if d.Cohort() == cohort {
			found := d
			return &found, nil
		}
	}
	d := models.Division{ID: "div-" + strconv.Itoa(len(s.divisions)+1), Course: cohort.Course, Semester: cohort.Semester, Letter: cohort.Letter}
	s.divisions[d.ID] = d
	return &d, nil
}

type roomStub struct {
	rooms map[string]models.Room
	inUse map[string]bool
}

func newRoomStub(rooms ...models.Room) *roomStub {
	stub := &roomStub{rooms: make(map[string]models.Room), inUse: make(map[string]bool)}
	for _, r := range rooms {
		stub.rooms[r.ID] = r
	}
	return stub
}

func (s *roomStub) FindByID(ctx context.Context, id string) (*models.Room, error) {
	r, ok := s.rooms[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &r, nil
}

func (s *roomStub) Create(ctx context.Context, room *models.Room) error {
	for _, r := range s.rooms {
		if r.RoomNumber == room.RoomNumber {
			return repository.ErrDuplicateRoomNumber
		}
	}
	if room.ID == "" {
		room.ID = "room-" + room.RoomNumber
	}
	s.rooms[room.ID] = *room
	return nil
}

func (s *roomStub) Update(ctx context.Context, room *models.Room) error {
	if _, ok := s.rooms[room.ID]; !ok {
		return sql.ErrNoRows
	}
	for _, r := range s.rooms {
		if r.ID != room.ID && r.RoomNumber == room.RoomNumber {
			return repository.ErrDuplicateRoomNumber
		}
	}
	s.rooms[room.ID] = *room
	return nil
}

func (s *roomStub) Delete(ctx context.Context, id string) error {
	if _, ok := s.rooms[id]; !ok {
		return sql.ErrNoRows
	}
	if s.inUse[id] {
		return repository.ErrRoomInUse
	}
	delete(s.rooms, id)
	return nil
}

func (s *roomStub) List(ctx context.Context) ([]models.Room, error) {
	rooms := make([]models.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].RoomNumber < rooms[j].RoomNumber })
	return rooms, nil
}

// bookingStoreStub keeps bookings in memory and applies the same clash and
// stale-status rules as the SQL repository.
type bookingStoreStub struct {
	mu        sync.Mutex
	seq       int
	bookings  map[string]*models.RoomBooking
	divisions *divisionStub
	filters   []models.BookingFilter
}

func newBookingStoreStub(divisions *divisionStub) *bookingStoreStub {
	return &bookingStoreStub{bookings: make(map[string]*models.RoomBooking), divisions: divisions}
}

func (s *bookingStoreStub) approvedIntervals(roomID string, date models.Date, excludeID string) []workflow.Interval {
	var out []workflow.Interval
	for _, b := range s.bookings {
		if b.RoomID == roomID && b.BookingDate.String() == date.String() && b.Status == models.BookingApproved && b.ID != excludeID {
			out = append(out, workflow.Interval{BookingID: b.ID, Start: b.StartTime, End: b.EndTime})
		}
	}
	return out
}

func (s *bookingStoreStub) CreateIfNoClash(ctx context.Context, booking *models.RoomBooking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, clash := workflow.FindClash(s.approvedIntervals(booking.RoomID, booking.BookingDate, ""), booking.StartTime, booking.EndTime); clash {
		return repository.ErrBookingClash
	}
	if booking.ID == "" {
		s.seq++
		booking.ID = "b-" + strconv.Itoa(s.seq)
	}
	stored := *booking
	s.bookings[booking.ID] = &stored
	return nil
}

func (s *bookingStoreStub) GetByID(ctx context.Context, id string) (*models.RoomBooking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *b
	return &copied, nil
}

func (s *bookingStoreStub) ListViews(ctx context.Context, filter models.BookingFilter) ([]models.BookingView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = append(s.filters, filter)

	var views []models.BookingView
	for _, b := range s.bookings {
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, b.Status) {
			continue
		}
		if filter.RequestedBy != "" && b.RequestedBy != filter.RequestedBy {
			continue
		}
		var division *models.Division
		if b.DivisionID != nil {
			division, _ = s.divisions.FindByID(ctx, *b.DivisionID)
		}
		if filter.Cohort != nil && (division == nil || division.Cohort() != *filter.Cohort) {
			continue
		}
		if filter.HODCourse != nil && division != nil && division.Course != *filter.HODCourse {
			continue
		}
		view := models.BookingView{RoomBooking: *b, RoomNumber: b.RoomID}
		if division != nil {
			view.Division = division.Cohort().String()
		} else {
			view.Division = "N/A"
		}
		views = append(views, view)
	}
	sort.Slice(views, func(i, j int) bool {
		if filter.BySchedule {
			if views[i].BookingDate.String() != views[j].BookingDate.String() {
				return views[i].BookingDate.Before(views[j].BookingDate)
			}
			return views[i].StartTime < views[j].StartTime
		}
		return views[i].ID > views[j].ID
	})
	return views, nil
}

func (s *bookingStoreStub) ApplyTransition(ctx context.Context, params repository.BookingTransitionParams) (*models.RoomBooking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[params.ID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if b.Status != params.From {
		return nil, repository.ErrStaleStatus
	}
	if params.CheckClash {
		if _, clash := workflow.FindClash(s.approvedIntervals(b.RoomID, b.BookingDate, b.ID), b.StartTime, b.EndTime); clash {
			return nil, repository.ErrBookingClash
		}
	}
	b.Status = params.Step.To
	b.CoordinatorApproved = b.CoordinatorApproved || params.Step.SetCoordinatorApproved
	b.HODApproved = b.HODApproved || params.Step.SetHODApproved
	copied := *b
	return &copied, nil
}

func containsStatus(statuses []models.BookingStatus, status models.BookingStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

type leaveStoreStub struct {
	mu        sync.Mutex
	seq       int
	leaves    map[string]*models.StudentLeave
	divisions *divisionStub
	filters   []models.LeaveFilter
}

func newLeaveStoreStub(divisions *divisionStub) *leaveStoreStub {
	return &leaveStoreStub{leaves: make(map[string]*models.StudentLeave), divisions: divisions}
}

func (s *leaveStoreStub) Create(ctx context.Context, leave *models.StudentLeave) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if leave.ID == "" {
		s.seq++
		leave.ID = "l-" + strconv.Itoa(s.seq)
	}
	stored := *leave
	s.leaves[leave.ID] = &stored
	return nil
}

func (s *leaveStoreStub) GetByID(ctx context.Context, id string) (*models.StudentLeave, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leaves[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *l
	return &copied, nil
}

func (s *leaveStoreStub) ListViews(ctx context.Context, filter models.LeaveFilter) ([]models.LeaveView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = append(s.filters, filter)

	var views []models.LeaveView
	for _, l := range s.leaves {
		if len(filter.Statuses) > 0 {
			match := false
			for _, status := range filter.Statuses {
				match = match || status == l.Status
			}
			if !match {
				continue
			}
		}
		if filter.StudentID != "" && l.StudentID != filter.StudentID {
			continue
		}
		division, _ := s.divisions.FindByID(ctx, l.DivisionID)
		if filter.Cohort != nil && (division == nil || division.Cohort() != *filter.Cohort) {
			continue
		}
		view := models.LeaveView{StudentLeave: *l, StudentUsername: l.StudentID}
		if division != nil {
			view.DivisionCourse = division.Course
			view.DivisionSemester = division.Semester
			view.DivisionLetter = division.Letter
			view.Division = view.DivisionLabel()
		}
		views = append(views, view)
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	return views, nil
}

func (s *leaveStoreStub) Decide(ctx context.Context, params repository.LeaveDecisionParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leaves[params.ID]
	if !ok || l.Status != models.LeavePending {
		return repository.ErrStaleStatus
	}
	decidedAt := params.DecidedAt
	decidedBy := params.DecidedBy
	l.Status = params.Status
	l.CoordinatorRemark = params.Remark
	l.DecidedBy = &decidedBy
	l.DecisionAt = &decidedAt
	return nil
}

type auditStub struct {
	mu   sync.Mutex
	logs []*models.AuditLog
}

func (a *auditStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logs = append(a.logs, log)
	return nil
}

type invalidatorStub struct {
	bookingCalls int
	leaveCalls   int
}

func (i *invalidatorStub) InvalidateBookingLog(ctx context.Context) error {
	i.bookingCalls++
	return nil
}

func (i *invalidatorStub) InvalidateLeaveLog(ctx context.Context) error {
	i.leaveCalls++
	return nil
}

func workflowAdmin() workflow.Actor {
	return workflow.Actor{UserID: "u-admin", Username: "admin", Role: models.RoleAdmin}
}
