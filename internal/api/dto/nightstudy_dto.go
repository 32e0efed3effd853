package dto

import (
	"time"

	"github.com/spec-kit/nightstudy-service/internal/domain"
)

// StudentRequest creates a roster entry.
type StudentRequest struct {
	ID      string `json:"id"`
	Grade   int    `json:"grade"`
	ClassNo int    `json:"classNo"`
	Number  int    `json:"number"`
	Name    string `json:"name"`
}

// ToDomain converts the request.
func (r StudentRequest) ToDomain() domain.Student {
	return domain.Student{ID: r.ID, Grade: r.Grade, ClassNo: r.ClassNo, Number: r.Number, Name: r.Name}
}

// StudentResponse is the public view of a roster entry.
type StudentResponse struct {
	ID      string `json:"id"`
	Grade   int    `json:"grade"`
	ClassNo int    `json:"classNo"`
	Number  int    `json:"number"`
	Name    string `json:"name"`
}

// NewStudentResponse maps a student.
func NewStudentResponse(s *domain.Student) StudentResponse {
	return StudentResponse{ID: s.ID, Grade: s.Grade, ClassNo: s.ClassNo, Number: s.Number, Name: s.Name}
}

// NewStudentList maps a page of students.
func NewStudentList(students []domain.Student) []StudentResponse {
	out := make([]StudentResponse, 0, len(students))
	for i := range students {
		out = append(out, NewStudentResponse(&students[i]))
	}
	return out
}

// ScheduleBody is the weekly schedule as clients send and receive it. There is
// no Wednesday entry.
type ScheduleBody struct {
	ClassNo int                `json:"classNo"`
	PosX    int                `json:"posX"`
	PosY    int                `json:"posY"`
	Mon     domain.DaySchedule `json:"mon"`
	Tue     domain.DaySchedule `json:"tue"`
	Thu     domain.DaySchedule `json:"thu"`
	Fri     domain.DaySchedule `json:"fri"`
}

// ToDomain converts the body for studentID.
func (b ScheduleBody) ToDomain(studentID string) domain.WeekSchedule {
	return domain.WeekSchedule{
		StudentID: studentID,
		ClassNo:   b.ClassNo,
		PosX:      b.PosX,
		PosY:      b.PosY,
		Mon:       b.Mon,
		Tue:       b.Tue,
		Thu:       b.Thu,
		Fri:       b.Fri,
	}
}

// ScheduleResponse is a schedule with its owner.
type ScheduleResponse struct {
	StudentID string `json:"studentId"`
	ScheduleBody
}

// NewScheduleResponse maps a schedule.
func NewScheduleResponse(s *domain.WeekSchedule) ScheduleResponse {
	return ScheduleResponse{
		StudentID: s.StudentID,
		ScheduleBody: ScheduleBody{
			ClassNo: s.ClassNo,
			PosX:    s.PosX,
			PosY:    s.PosY,
			Mon:     s.Mon,
			Tue:     s.Tue,
			Thu:     s.Thu,
			Fri:     s.Fri,
		},
	}
}

// NewScheduleList maps a page of schedules.
func NewScheduleList(schedules []domain.WeekSchedule) []ScheduleResponse {
	out := make([]ScheduleResponse, 0, len(schedules))
	for i := range schedules {
		out = append(out, NewScheduleResponse(&schedules[i]))
	}
	return out
}

// AttendanceRequest is a checkout scan.
type AttendanceRequest struct {
	StudentID string `json:"studentId"`
	Period    string `json:"period"`
}

// AttendanceResponse is one check-in.
type AttendanceResponse struct {
	ID             int64     `json:"id"`
	StudentID      string    `json:"studentId"`
	AttendanceTime time.Time `json:"attendanceTime"`
	Period         string    `json:"period"`
}

// NewAttendanceResponse maps a record.
func NewAttendanceResponse(r *domain.AttendanceRecord) AttendanceResponse {
	return AttendanceResponse{
		ID:             r.ID,
		StudentID:      r.StudentID,
		AttendanceTime: r.AttendanceTime,
		Period:         string(r.Period),
	}
}

// NewAttendanceList maps records.
func NewAttendanceList(records []domain.AttendanceRecord) []AttendanceResponse {
	out := make([]AttendanceResponse, 0, len(records))
	for i := range records {
		out = append(out, NewAttendanceResponse(&records[i]))
	}
	return out
}
