package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"hrportal_backend/internals/features/training/sessions/model"
	helper "hrportal_backend/internals/helpers"
)

const (
	MsgDateTimeRequired = "Date and time are required."
	MsgDateTimeInvalid  = "Enter a valid date and time."
	MsgDateTimePast     = "Cannot schedule a session in the past."
	MsgDurationTooShort = "Duration must be at least 30 minutes."
	MsgDurationTooLong  = "Duration cannot exceed 8 hours (please split into multiple sessions)."
	MsgMeetingLink      = "Please enter a valid URL (starting with http:// or https://)."
)

// Accepted date_time inputs: RFC 3339 or an HTML datetime-local value (UTC).
var dateTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04"}

func ParseDateTime(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func checkDateTime(fe helper.FieldErrors, raw string, now time.Time) time.Time {
	if strings.TrimSpace(raw) == "" {
		fe.Add("date_time", MsgDateTimeRequired)
		return time.Time{}
	}
	t, ok := ParseDateTime(raw)
	if !ok {
		fe.Add("date_time", MsgDateTimeInvalid)
		return time.Time{}
	}
	if t.Before(now) {
		fe.Add("date_time", MsgDateTimePast)
	}
	return t
}

func checkDuration(fe helper.FieldErrors, d float64) {
	switch {
	case d < 0.5:
		fe.Add("duration_hours", MsgDurationTooShort)
	case d > 8:
		fe.Add("duration_hours", MsgDurationTooLong)
	}
}

func checkMeetingLink(fe helper.FieldErrors, link string) {
	if link != "" && !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
		fe.Add("meeting_link", MsgMeetingLink)
	}
}

type CreateSessionRequest struct {
	Title         string   `json:"title" validate:"required,max=200"`
	BatchID       string   `json:"batch_id" validate:"required,uuid"`
	TrainerID     string   `json:"trainer_id" validate:"omitempty,uuid"`
	DateTime      string   `json:"date_time"`
	DurationHours *float64 `json:"duration_hours"`
	Agenda        string   `json:"agenda"`
	MeetingLink   string   `json:"meeting_link" validate:"max=500"`
	Status        string   `json:"status" validate:"omitempty,oneof=scheduled completed cancelled"`
	Notes         string   `json:"notes"`
}

func (r *CreateSessionRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.BatchID = strings.TrimSpace(r.BatchID)
	r.TrainerID = strings.TrimSpace(r.TrainerID)
	r.Agenda = strings.TrimSpace(r.Agenda)
	r.MeetingLink = strings.TrimSpace(r.MeetingLink)
	r.Status = strings.TrimSpace(r.Status)
	r.Notes = strings.TrimSpace(r.Notes)
	if r.DurationHours == nil {
		one := 1.0
		r.DurationHours = &one
	}
}

// Validate checks field rules and returns the parsed schedule time.
func (r *CreateSessionRequest) Validate(now time.Time) (time.Time, helper.FieldErrors) {
	fe := helper.ValidateStruct(r)
	at := checkDateTime(fe, r.DateTime, now)
	checkDuration(fe, *r.DurationHours)
	checkMeetingLink(fe, r.MeetingLink)
	return at, fe
}

func (r *CreateSessionRequest) ToModel(at time.Time, createdBy uuid.UUID) *model.TrainingSessionModel {
	s := &model.TrainingSessionModel{
		TrainingSessionBatchID:       uuid.MustParse(r.BatchID),
		TrainingSessionTitle:         r.Title,
		TrainingSessionDateTime:      at,
		TrainingSessionDurationHours: *r.DurationHours,
		TrainingSessionAgenda:        r.Agenda,
		TrainingSessionMeetingLink:   r.MeetingLink,
		TrainingSessionStatus:        r.Status,
		TrainingSessionNotes:         r.Notes,
		TrainingSessionCreatedByID:   &createdBy,
	}
	if id, err := uuid.Parse(r.TrainerID); err == nil {
		s.TrainingSessionTrainerID = &id
	}
	return s
}

// UpdateSessionRequest cannot move a session to another batch. An empty
// trainer_id clears the trainer.
type UpdateSessionRequest struct {
	Title         *string  `json:"title" validate:"omitempty,min=1,max=200"`
	TrainerID     *string  `json:"trainer_id"`
	DateTime      *string  `json:"date_time"`
	DurationHours *float64 `json:"duration_hours"`
	Agenda        *string  `json:"agenda"`
	MeetingLink   *string  `json:"meeting_link" validate:"omitempty,max=500"`
	Status        *string  `json:"status" validate:"omitempty,oneof=scheduled completed cancelled"`
	Notes         *string  `json:"notes"`
}

// Apply validates and copies set fields onto s, returning changed columns.
func (r *UpdateSessionRequest) Apply(s *model.TrainingSessionModel, now time.Time) ([]string, helper.FieldErrors) {
	fe := helper.ValidateStruct(r)
	var cols []string
	if r.Title != nil {
		s.TrainingSessionTitle = strings.TrimSpace(*r.Title)
		cols = append(cols, "training_session_title")
	}
	if r.TrainerID != nil {
		raw := strings.TrimSpace(*r.TrainerID)
		if raw == "" {
			s.TrainingSessionTrainerID = nil
		} else if id, err := uuid.Parse(raw); err == nil {
			s.TrainingSessionTrainerID = &id
		} else {
			fe.Add("trainer_id", "Enter a valid ID.")
		}
		cols = append(cols, "training_session_trainer_id")
	}
	if r.DateTime != nil {
		s.TrainingSessionDateTime = checkDateTime(fe, *r.DateTime, now)
		cols = append(cols, "training_session_date_time")
	}
	if r.DurationHours != nil {
		checkDuration(fe, *r.DurationHours)
		s.TrainingSessionDurationHours = *r.DurationHours
		cols = append(cols, "training_session_duration_hours")
	}
	if r.Agenda != nil {
		s.TrainingSessionAgenda = strings.TrimSpace(*r.Agenda)
		cols = append(cols, "training_session_agenda")
	}
	if r.MeetingLink != nil {
		link := strings.TrimSpace(*r.MeetingLink)
		checkMeetingLink(fe, link)
		s.TrainingSessionMeetingLink = link
		cols = append(cols, "training_session_meeting_link")
	}
	if r.Status != nil {
		s.TrainingSessionStatus = *r.Status
		cols = append(cols, "training_session_status")
	}
	if r.Notes != nil {
		s.TrainingSessionNotes = strings.TrimSpace(*r.Notes)
		cols = append(cols, "training_session_notes")
	}
	return cols, fe
}

/* =======================================================
   ATTENDANCE
   ======================================================= */

type AttendanceEntry struct {
	EmployeeID string `json:"employee_id" validate:"required,uuid"`
	Status     string `json:"status" validate:"omitempty,oneof=present absent late excused"`
	Notes      string `json:"notes"`
}

type MarkAttendanceRequest struct {
	Records []AttendanceEntry `json:"records" validate:"dive"`
}

// ByEmployee indexes entries by employee id; unparsable ids are skipped.
func (r *MarkAttendanceRequest) ByEmployee() map[uuid.UUID]AttendanceEntry {
	out := make(map[uuid.UUID]AttendanceEntry, len(r.Records))
	for _, e := range r.Records {
		if id, err := uuid.Parse(strings.TrimSpace(e.EmployeeID)); err == nil {
			out[id] = e
		}
	}
	return out
}

type RosterEntry struct {
	EmployeeID uuid.UUID `json:"employee_id"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Status     string    `json:"status"`
	Notes      string    `json:"notes"`
	Marked     bool      `json:"marked"`
}

type Roster struct {
	Session  *model.TrainingSessionModel `json:"session"`
	Entries  []RosterEntry               `json:"employees"`
	IsUpdate bool                        `json:"is_update"`
}

type SessionDetail struct {
	Session              *model.TrainingSessionModel `json:"session"`
	AttendanceRecords    []model.AttendanceModel     `json:"attendance_records"`
	CanMarkAttendance    bool                        `json:"can_mark_attendance"`
	AttendancePercentage float64                     `json:"attendance_percentage"`
}
