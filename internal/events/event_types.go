package events

import (
	"time"

	"github.com/spec-kit/nightstudy-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSessionIssued      EventType = "session_issued"
	EventSessionRefreshed   EventType = "session_refreshed"
	EventSessionRevoked     EventType = "session_revoked"
	EventRoleChanged        EventType = "role_changed"
	EventScheduleUpdated    EventType = "schedule_updated"
	EventAttendanceRecorded EventType = "attendance_recorded"
)

// Actor is whoever triggered the event.
type Actor struct {
	SubjectID string      `json:"subject_id"`
	Role      domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// SessionRevokedPayload payload.
type SessionRevokedPayload struct {
	HadAccessToken  bool `json:"had_access_token"`
	HadRefreshToken bool `json:"had_refresh_token"`
}

// RoleChangedPayload payload.
type RoleChangedPayload struct {
	OldRole domain.Role `json:"old_role"`
	NewRole domain.Role `json:"new_role"`
}

// ScheduleUpdatedPayload payload.
type ScheduleUpdatedPayload struct {
	ClassNo int `json:"class_no"`
}

// AttendanceRecordedPayload payload.
type AttendanceRecordedPayload struct {
	RecordID       int64         `json:"record_id"`
	Period         domain.Period `json:"period"`
	AttendanceTime time.Time     `json:"attendance_time"`
}
