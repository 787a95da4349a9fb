package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"hrportal_backend/internals/helpers/secure"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"

	ExperienceFresher     = "fresher"
	ExperienceExperienced = "experienced"
)

// WorkExperience is one previous employer row, stored as a JSON list.
type WorkExperience struct {
	Employer        string `json:"employer"`
	Designation     string `json:"designation"`
	Duration        string `json:"duration"`
	Email           string `json:"email"`
	CertificatePath string `json:"certificate_path"`
}

type BioDataModel struct {
	BioDataID uuid.UUID `gorm:"column:biodata_id;type:uuid;primaryKey" json:"biodata_id"`

	// Personal
	FirstName        string     `gorm:"column:biodata_first_name;size:100;not null" json:"first_name"`
	MiddleName       string     `gorm:"column:biodata_middle_name;size:100" json:"middle_name"`
	LastName         string     `gorm:"column:biodata_last_name;size:100;not null" json:"last_name"`
	DOB              *time.Time `gorm:"column:biodata_dob;type:date" json:"dob,omitempty"`
	Gender           string     `gorm:"column:biodata_gender;size:10" json:"gender"`
	MaritalStatus    string     `gorm:"column:biodata_marital_status;size:20" json:"marital_status"`
	ContactNumber    string     `gorm:"column:biodata_contact_number;size:15;not null" json:"contact_number"`
	EmergencyContact string     `gorm:"column:biodata_emergency_contact;size:15" json:"emergency_contact"`
	PersonalEmail    string     `gorm:"column:biodata_personal_email;size:255;not null;uniqueIndex" json:"personal_email"`
	BloodGroup       string     `gorm:"column:biodata_blood_group;size:5" json:"blood_group"`

	// Address
	AddressLine1 string `gorm:"column:biodata_address_line1;size:255" json:"address_line1"`
	AddressLine2 string `gorm:"column:biodata_address_line2;size:255" json:"address_line2"`
	City         string `gorm:"column:biodata_city;size:100" json:"city"`
	State        string `gorm:"column:biodata_state;size:100" json:"state"`
	PostalCode   string `gorm:"column:biodata_postal_code;size:10" json:"postal_code"`
	Country      string `gorm:"column:biodata_country;size:100" json:"country"`

	// Identity and bank, encrypted at rest
	AadharNo      secure.EncryptedString `gorm:"column:biodata_aadhar_no" json:"aadhar_no"`
	PanNo         secure.EncryptedString `gorm:"column:biodata_pan_no" json:"pan_no"`
	BankName      string                 `gorm:"column:biodata_bank_name;size:100" json:"bank_name"`
	BankBranch    string                 `gorm:"column:biodata_bank_branch;size:100" json:"bank_branch"`
	AccountNumber secure.EncryptedString `gorm:"column:biodata_account_number" json:"account_number"`
	AccountName   string                 `gorm:"column:biodata_account_name;size:150" json:"account_name"`
	IFSCCode      string                 `gorm:"column:biodata_ifsc_code;size:20" json:"ifsc_code"`

	// Application
	ExperienceType   string `gorm:"column:biodata_experience_type;size:15;not null" json:"experience_type"`
	PostAppliedFor   string `gorm:"column:biodata_post_applied_for;size:150" json:"post_applied_for"`
	TechnicalSkills  string `gorm:"column:biodata_technical_skills;type:text" json:"technical_skills"`
	SoftSkills       string `gorm:"column:biodata_soft_skills;type:text" json:"soft_skills"`
	ReferenceName    string `gorm:"column:biodata_reference_name;size:150" json:"reference_name"`
	ReferenceContact string `gorm:"column:biodata_reference_contact;size:50" json:"reference_contact"`

	// Documents
	PhotoURL      *string `gorm:"column:biodata_photo_url" json:"photo_url"`
	ResumeURL     *string `gorm:"column:biodata_resume_url" json:"resume_url"`
	AadharCardURL *string `gorm:"column:biodata_aadhar_card_url" json:"aadhar_card_url"`
	PanCardURL    *string `gorm:"column:biodata_pan_card_url" json:"pan_card_url"`

	// Education
	SSCSchool        string  `gorm:"column:biodata_ssc_school;size:200" json:"ssc_school"`
	SSCYear          string  `gorm:"column:biodata_ssc_year;size:4" json:"ssc_year"`
	SSCGrade         string  `gorm:"column:biodata_ssc_grade;size:20" json:"ssc_grade"`
	SSCMarksheetURL  *string `gorm:"column:biodata_ssc_marksheet_url" json:"ssc_marksheet_url"`
	SSLCSchool       string  `gorm:"column:biodata_sslc_school;size:200" json:"sslc_school"`
	SSLCYear         string  `gorm:"column:biodata_sslc_year;size:4" json:"sslc_year"`
	SSLCGrade        string  `gorm:"column:biodata_sslc_grade;size:20" json:"sslc_grade"`
	SSLCMarksheetURL *string `gorm:"column:biodata_sslc_marksheet_url" json:"sslc_marksheet_url"`
	UGDegree         string  `gorm:"column:biodata_ug_degree;size:150" json:"ug_degree"`
	UGInstitution    string  `gorm:"column:biodata_ug_institution;size:200" json:"ug_institution"`
	UGYear           string  `gorm:"column:biodata_ug_year;size:4" json:"ug_year"`
	UGDocumentsURL   *string `gorm:"column:biodata_ug_documents_url" json:"ug_documents_url"`
	PGDegree         string  `gorm:"column:biodata_pg_degree;size:150" json:"pg_degree"`
	PGInstitution    string  `gorm:"column:biodata_pg_institution;size:200" json:"pg_institution"`
	PGYear           string  `gorm:"column:biodata_pg_year;size:4" json:"pg_year"`
	PGDocumentsURL   *string `gorm:"column:biodata_pg_documents_url" json:"pg_documents_url"`
	CertCourse       string  `gorm:"column:biodata_cert_course;size:200" json:"cert_course"`
	CertInstitution  string  `gorm:"column:biodata_cert_institution;size:200" json:"cert_institution"`
	CertYear         string  `gorm:"column:biodata_cert_year;size:4" json:"cert_year"`
	CertDocumentURL  *string `gorm:"column:biodata_cert_document_url" json:"cert_document_url"`

	WorkExperience datatypes.JSONType[[]WorkExperience] `gorm:"column:biodata_work_experience;not null" json:"work_experience"`

	// Filled by HR on approval
	EmployeeID    *string    `gorm:"column:biodata_employee_id;size:50;uniqueIndex" json:"employee_id"`
	OfficialEmail *string    `gorm:"column:biodata_official_email;size:255;uniqueIndex" json:"official_email"`
	Designation   string     `gorm:"column:biodata_designation;size:150" json:"designation"`
	Department    string     `gorm:"column:biodata_department;size:30;index" json:"department"`
	DOJ           *time.Time `gorm:"column:biodata_doj;type:date" json:"doj,omitempty"`
	WorkMode      string     `gorm:"column:biodata_work_mode;size:10" json:"work_mode"`

	// Review
	Status       string     `gorm:"column:biodata_status;size:10;not null;default:'pending';index" json:"status"`
	RejectReason string     `gorm:"column:biodata_reject_reason;type:text" json:"reject_reason"`
	ApprovedByID *uuid.UUID `gorm:"column:biodata_approved_by_id;type:uuid" json:"approved_by_id,omitempty"`
	UserID       *uuid.UUID `gorm:"column:biodata_user_id;type:uuid;uniqueIndex" json:"user_id,omitempty"`

	CreatedAt time.Time `gorm:"column:biodata_created_at;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:biodata_updated_at;autoUpdateTime" json:"updated_at"`
}

func (BioDataModel) TableName() string {
	return "biodata_requests"
}

func (b *BioDataModel) BeforeCreate(tx *gorm.DB) error {
	if b.BioDataID == uuid.Nil {
		b.BioDataID = uuid.New()
	}
	if b.Status == "" {
		b.Status = StatusPending
	}
	if b.WorkExperience.Data() == nil {
		b.WorkExperience = datatypes.NewJSONType([]WorkExperience{})
	}
	return nil
}

// FullName joins the non-empty name parts.
func (b *BioDataModel) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{b.FirstName, b.MiddleName, b.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Address is the comma separated postal address used in exports.
func (b *BioDataModel) Address() string {
	parts := make([]string, 0, 6)
	for _, p := range []string{b.AddressLine1, b.AddressLine2, b.City, b.State, b.PostalCode, b.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// AccountEmail is the address used for the provisioned login.
func (b *BioDataModel) AccountEmail() string {
	if b.OfficialEmail != nil && strings.TrimSpace(*b.OfficialEmail) != "" {
		return strings.ToLower(strings.TrimSpace(*b.OfficialEmail))
	}
	return strings.ToLower(strings.TrimSpace(b.PersonalEmail))
}

func (b *BioDataModel) Experiences() []WorkExperience {
	return b.WorkExperience.Data()
}
