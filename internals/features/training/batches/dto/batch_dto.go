package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"hrportal_backend/internals/features/training/batches/model"
	helper "hrportal_backend/internals/helpers"
)

const DateLayout = "2006-01-02"

type CreateBatchRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	BatchCode   string   `json:"batch_code" validate:"omitempty,max=50"`
	StartDate   string   `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate     string   `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Description string   `json:"description"`
	Status      string   `json:"status" validate:"omitempty,oneof=upcoming ongoing completed"`
	TrainerIDs  []string `json:"trainer_ids" validate:"omitempty,dive,uuid"`
	EmployeeIDs []string `json:"employee_ids" validate:"omitempty,dive,uuid"`
}

func (r *CreateBatchRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.BatchCode = strings.ToUpper(strings.TrimSpace(r.BatchCode))
	r.StartDate = strings.TrimSpace(r.StartDate)
	r.EndDate = strings.TrimSpace(r.EndDate)
	r.Description = strings.TrimSpace(r.Description)
	r.Status = strings.TrimSpace(r.Status)
}

func (r *CreateBatchRequest) Validate() helper.FieldErrors {
	fe := helper.ValidateStruct(r)
	if fe.Empty() {
		checkDates(fe, r.StartDate, r.EndDate)
	}
	return fe
}

func (r *CreateBatchRequest) ToModel(createdBy uuid.UUID) *model.BatchModel {
	return &model.BatchModel{
		BatchName:        r.Name,
		BatchCode:        r.BatchCode,
		BatchStartDate:   parseDate(r.StartDate),
		BatchEndDate:     parseDate(r.EndDate),
		BatchDescription: r.Description,
		BatchStatus:      r.Status,
		BatchCreatedByID: &createdBy,
	}
}

// UpdateBatchRequest is a partial update. A nil id list leaves that
// membership unchanged; an empty list clears it.
type UpdateBatchRequest struct {
	Name        *string   `json:"name" validate:"omitempty,min=1,max=200"`
	StartDate   *string   `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate     *string   `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Description *string   `json:"description"`
	Status      *string   `json:"status" validate:"omitempty,oneof=upcoming ongoing completed"`
	TrainerIDs  *[]string `json:"trainer_ids" validate:"omitempty,dive,uuid"`
	EmployeeIDs *[]string `json:"employee_ids" validate:"omitempty,dive,uuid"`
}

// Apply copies set fields onto b and checks the resulting date range.
func (r *UpdateBatchRequest) Apply(b *model.BatchModel) ([]string, helper.FieldErrors) {
	fe := helper.ValidateStruct(r)
	if !fe.Empty() {
		return nil, fe
	}
	var cols []string
	if r.Name != nil {
		b.BatchName = strings.TrimSpace(*r.Name)
		cols = append(cols, "batch_name")
	}
	if r.StartDate != nil {
		b.BatchStartDate = parseDate(*r.StartDate)
		cols = append(cols, "batch_start_date")
	}
	if r.EndDate != nil {
		b.BatchEndDate = parseDate(*r.EndDate)
		cols = append(cols, "batch_end_date")
	}
	if r.Description != nil {
		b.BatchDescription = strings.TrimSpace(*r.Description)
		cols = append(cols, "batch_description")
	}
	if r.Status != nil {
		b.BatchStatus = *r.Status
		cols = append(cols, "batch_status")
	}
	if b.BatchStartDate != nil && b.BatchEndDate != nil && b.BatchEndDate.Before(*b.BatchStartDate) {
		fe.Add("end_date", MsgEndBeforeStart)
	}
	return cols, fe
}

const MsgEndBeforeStart = "End date cannot be before start date."

func checkDates(fe helper.FieldErrors, start, end string) {
	s, e := parseDate(start), parseDate(end)
	if s != nil && e != nil && e.Before(*s) {
		fe.Add("end_date", MsgEndBeforeStart)
	}
}

func parseDate(v string) *time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return nil
	}
	return &t
}

// ParseIDs turns validated id strings into UUIDs, dropping duplicates.
func ParseIDs(ids []string) []uuid.UUID {
	seen := map[uuid.UUID]bool{}
	out := make([]uuid.UUID, 0, len(ids))
	for _, s := range ids {
		id, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

/* =======================================================
   RESPONSES
   ======================================================= */

type Member struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`
}

// Candidate is a selectable user for the batch form.
type Candidate struct {
	ID    uuid.UUID `json:"id"`
	Label string    `json:"label"`
}

type BatchDetail struct {
	Batch         *model.BatchModel `json:"batch"`
	Sessions      any               `json:"sessions"`
	Assignments   any               `json:"assignments"`
	EmployeeCount int               `json:"employee_count"`
	TrainerCount  int               `json:"trainer_count"`
	DurationDays  int               `json:"duration_days"`
}

// BatchRow is a list entry with member counts.
type BatchRow struct {
	*model.BatchModel
	EmployeeCount int64 `json:"employee_count"`
	TrainerCount  int64 `json:"trainer_count"`
}
