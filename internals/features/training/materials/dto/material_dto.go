package dto

import (
	"strings"

	"github.com/google/uuid"

	"hrportal_backend/internals/features/training/materials/model"
	helper "hrportal_backend/internals/helpers"
)

const (
	MsgFileOrURL   = "Upload a file or provide an external URL."
	MsgExternalURL = "Please enter a valid URL (starting with http:// or https://)."
)

// CreateMaterialRequest arrives as multipart form data next to an optional "file" part.
type CreateMaterialRequest struct {
	Title       string `json:"title" form:"title" validate:"required,max=200"`
	Description string `json:"description" form:"description"`
	SessionID   string `json:"session_id" form:"session_id" validate:"omitempty,uuid"`
	ExternalURL string `json:"external_url" form:"external_url" validate:"max=500"`
}

func (r *CreateMaterialRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.SessionID = strings.TrimSpace(r.SessionID)
	r.ExternalURL = strings.TrimSpace(r.ExternalURL)
}

func (r *CreateMaterialRequest) Validate(hasFile bool) helper.FieldErrors {
	fe := helper.ValidateStruct(r)
	if r.ExternalURL != "" && !strings.HasPrefix(r.ExternalURL, "http://") && !strings.HasPrefix(r.ExternalURL, "https://") {
		fe.Add("external_url", MsgExternalURL)
	}
	if !hasFile && r.ExternalURL == "" {
		fe.Add("file", MsgFileOrURL)
	}
	return fe
}

func (r *CreateMaterialRequest) ToModel(batchID, uploader uuid.UUID) *model.MaterialModel {
	m := &model.MaterialModel{
		MaterialBatchID:      batchID,
		MaterialTitle:        r.Title,
		MaterialDescription:  r.Description,
		MaterialExternalURL:  r.ExternalURL,
		MaterialUploadedByID: &uploader,
	}
	if id, err := uuid.Parse(r.SessionID); err == nil {
		m.MaterialSessionID = &id
	}
	return m
}
