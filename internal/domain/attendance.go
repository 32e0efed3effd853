package domain

import "time"

// AttendanceRecord is one check-in for a period.
type AttendanceRecord struct {
	ID             int64
	StudentID      string
	AttendanceTime time.Time
	Period         Period
}

// AttendanceQuery filters attendance lookups. Date takes precedence over From/To;
// the range applies only when both ends are set.
type AttendanceQuery struct {
	StudentID *string
	Date      *time.Time
	From      *time.Time
	To        *time.Time
}
