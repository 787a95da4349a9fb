package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"hrportal_backend/internals/features/training/assignments/model"
	helper "hrportal_backend/internals/helpers"
)

const MsgDueDateRequired = "Due date is required."

// ParseDueDate accepts YYYY-MM-DD or RFC 3339.
func ParseDueDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func checkDueDate(fe helper.FieldErrors, raw string) time.Time {
	if strings.TrimSpace(raw) == "" {
		fe.Add("due_date", MsgDueDateRequired)
		return time.Time{}
	}
	t, ok := ParseDueDate(raw)
	if !ok {
		fe.Add("due_date", "Enter a valid date.")
	}
	return t
}

type CreateAssignmentRequest struct {
	Title            string `json:"title" validate:"required,max=200"`
	BatchID          string `json:"batch_id" validate:"required,uuid"`
	SessionID        string `json:"session_id" validate:"omitempty,uuid"`
	DueDate          string `json:"due_date"`
	MaxScore         *int   `json:"max_score" validate:"omitempty,min=1,max=1000"`
	Description      string `json:"description"`
	Rubric           string `json:"rubric"`
	SubmissionFormat string `json:"submission_format" validate:"max=100"`
	Status           string `json:"status" validate:"omitempty,oneof=pending closed"`
	Notes            string `json:"notes"`
}

func (r *CreateAssignmentRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.BatchID = strings.TrimSpace(r.BatchID)
	r.SessionID = strings.TrimSpace(r.SessionID)
	r.Description = strings.TrimSpace(r.Description)
	r.Rubric = strings.TrimSpace(r.Rubric)
	r.SubmissionFormat = strings.TrimSpace(r.SubmissionFormat)
	r.Status = strings.TrimSpace(r.Status)
	r.Notes = strings.TrimSpace(r.Notes)
}

func (r *CreateAssignmentRequest) Validate() (time.Time, helper.FieldErrors) {
	fe := helper.ValidateStruct(r)
	due := checkDueDate(fe, r.DueDate)
	return due, fe
}

func (r *CreateAssignmentRequest) ToModel(due time.Time, createdBy uuid.UUID) *model.AssignmentModel {
	a := &model.AssignmentModel{
		AssignmentBatchID:          uuid.MustParse(r.BatchID),
		AssignmentTitle:            r.Title,
		AssignmentDueDate:          due,
		AssignmentDescription:      r.Description,
		AssignmentRubric:           r.Rubric,
		AssignmentSubmissionFormat: r.SubmissionFormat,
		AssignmentStatus:           r.Status,
		AssignmentNotes:            r.Notes,
		AssignmentCreatedByID:      &createdBy,
	}
	if r.MaxScore != nil {
		a.AssignmentMaxScore = *r.MaxScore
	}
	if id, err := uuid.Parse(r.SessionID); err == nil {
		a.AssignmentSessionID = &id
	}
	return a
}

// UpdateAssignmentRequest keeps the batch; an empty session_id detaches the session.
type UpdateAssignmentRequest struct {
	Title            *string `json:"title" validate:"omitempty,min=1,max=200"`
	SessionID        *string `json:"session_id"`
	DueDate          *string `json:"due_date"`
	MaxScore         *int    `json:"max_score" validate:"omitempty,min=1,max=1000"`
	Description      *string `json:"description"`
	Rubric           *string `json:"rubric"`
	SubmissionFormat *string `json:"submission_format" validate:"omitempty,max=100"`
	Status           *string `json:"status" validate:"omitempty,oneof=pending closed"`
	Notes            *string `json:"notes"`
}

func (r *UpdateAssignmentRequest) Apply(a *model.AssignmentModel) ([]string, helper.FieldErrors) {
	fe := helper.ValidateStruct(r)
	var cols []string
	set := func(col string, dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
			cols = append(cols, col)
		}
	}
	set("assignment_title", &a.AssignmentTitle, r.Title)
	set("assignment_description", &a.AssignmentDescription, r.Description)
	set("assignment_rubric", &a.AssignmentRubric, r.Rubric)
	set("assignment_submission_format", &a.AssignmentSubmissionFormat, r.SubmissionFormat)
	set("assignment_status", &a.AssignmentStatus, r.Status)
	set("assignment_notes", &a.AssignmentNotes, r.Notes)

	if r.SessionID != nil {
		raw := strings.TrimSpace(*r.SessionID)
		if raw == "" {
			a.AssignmentSessionID = nil
		} else if id, err := uuid.Parse(raw); err == nil {
			a.AssignmentSessionID = &id
		} else {
			fe.Add("session_id", "Enter a valid ID.")
		}
		cols = append(cols, "assignment_session_id")
	}
	if r.DueDate != nil {
		a.AssignmentDueDate = checkDueDate(fe, *r.DueDate)
		cols = append(cols, "assignment_due_date")
	}
	if r.MaxScore != nil {
		a.AssignmentMaxScore = *r.MaxScore
		cols = append(cols, "assignment_max_score")
	}
	return cols, fe
}

type GradeRequest struct {
	Score    *float64 `json:"score" validate:"required"`
	Feedback string   `json:"feedback"`
}

// Validate checks the score against the assignment's maximum.
func (r *GradeRequest) Validate(maxScore int) helper.FieldErrors {
	fe := helper.ValidateStruct(r)
	if r.Score != nil && (*r.Score < 0 || *r.Score > float64(maxScore)) {
		fe.Add("score", fmt.Sprintf("Score must be between 0 and %d.", maxScore))
	}
	return fe
}

type AssignmentDetail struct {
	Assignment      *model.AssignmentModel  `json:"assignment"`
	Submissions     []model.SubmissionModel `json:"submissions"`
	SubmissionCount int                     `json:"submission_count"`
}
