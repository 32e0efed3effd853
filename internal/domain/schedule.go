package domain

import "fmt"

// Period is a night-study slot within a day.
type Period string

const (
	PeriodA1 Period = "A1" // afternoon self-study
	PeriodN1 Period = "N1" // night study, first period
	PeriodN2 Period = "N2" // night study, second period
)

// ParsePeriod validates a period code.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodA1, PeriodN1, PeriodN2:
		return p, nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// DaySchedule marks which periods a student attends on a day.
type DaySchedule struct {
	A1 bool `json:"A1"`
	N1 bool `json:"N1"`
	N2 bool `json:"N2"`
}

// Has reports whether the period is scheduled.
func (d DaySchedule) Has(p Period) bool {
	switch p {
	case PeriodA1:
		return d.A1
	case PeriodN1:
		return d.N1
	case PeriodN2:
		return d.N2
	}
	return false
}

// WeekSchedule is a student's seat and weekly timetable. There is no
// night study on Wednesday.
type WeekSchedule struct {
	StudentID string
	ClassNo   int
	PosX      int
	PosY      int
	Mon       DaySchedule
	Tue       DaySchedule
	Thu       DaySchedule
	Fri       DaySchedule
}
