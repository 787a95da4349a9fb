package dto

import (
	"strings"
	"time"

	"hrportal_backend/internals/constants"
	"hrportal_backend/internals/features/employees/biodata/model"
	helper "hrportal_backend/internals/helpers"
	"hrportal_backend/internals/helpers/secure"
)

const DateLayout = "2006-01-02"

/* =======================================================
   PUBLIC INTAKE (multipart/form-data)
   ======================================================= */

type IntakeForm struct {
	FirstName        string `form:"first_name" json:"first_name" validate:"required,max=100"`
	MiddleName       string `form:"middle_name" json:"middle_name" validate:"max=100"`
	LastName         string `form:"last_name" json:"last_name" validate:"required,max=100"`
	DOB              string `form:"dob" json:"dob"`
	Gender           string `form:"gender" json:"gender" validate:"omitempty,oneof=Male Female Other"`
	MaritalStatus    string `form:"marital_status" json:"marital_status" validate:"omitempty,oneof=Single Married Divorced Widowed"`
	ContactNumber    string `form:"contact_number" json:"contact_number" validate:"required,max=15"`
	EmergencyContact string `form:"emergency_contact" json:"emergency_contact" validate:"max=15"`
	PersonalEmail    string `form:"personal_email" json:"personal_email" validate:"required,email,max=255"`
	BloodGroup       string `form:"blood_group" json:"blood_group" validate:"max=5"`

	AddressLine1 string `form:"address_line1" json:"address_line1" validate:"max=255"`
	AddressLine2 string `form:"address_line2" json:"address_line2" validate:"max=255"`
	City         string `form:"city" json:"city" validate:"max=100"`
	State        string `form:"state" json:"state" validate:"max=100"`
	PostalCode   string `form:"postal_code" json:"postal_code" validate:"max=10"`
	Country      string `form:"country" json:"country" validate:"max=100"`

	AadharNo      string `form:"aadhar_no" json:"aadhar_no" validate:"max=20"`
	PanNo         string `form:"pan_no" json:"pan_no" validate:"max=20"`
	BankName      string `form:"bank_name" json:"bank_name" validate:"max=100"`
	BankBranch    string `form:"bank_branch" json:"bank_branch" validate:"max=100"`
	AccountNumber string `form:"account_number" json:"account_number" validate:"max=30"`
	AccountName   string `form:"account_name" json:"account_name" validate:"max=150"`
	IFSCCode      string `form:"ifsc_code" json:"ifsc_code" validate:"max=20"`

	ExperienceType   string `form:"experience_type" json:"experience_type" validate:"required,oneof=fresher experienced"`
	PostAppliedFor   string `form:"post_applied_for" json:"post_applied_for" validate:"max=150"`
	TechnicalSkills  string `form:"technical_skills" json:"technical_skills" validate:"required"`
	SoftSkills       string `form:"soft_skills" json:"soft_skills"`
	ReferenceName    string `form:"reference_name" json:"reference_name" validate:"max=150"`
	ReferenceContact string `form:"reference_contact" json:"reference_contact" validate:"max=50"`

	SSCSchool       string `form:"ssc_school" json:"ssc_school" validate:"required,max=200"`
	SSCYear         string `form:"ssc_year" json:"ssc_year" validate:"required,len=4,numeric"`
	SSCGrade        string `form:"ssc_grade" json:"ssc_grade" validate:"required,max=20"`
	SSLCSchool      string `form:"sslc_school" json:"sslc_school" validate:"required,max=200"`
	SSLCYear        string `form:"sslc_year" json:"sslc_year" validate:"required,len=4,numeric"`
	SSLCGrade       string `form:"sslc_grade" json:"sslc_grade" validate:"required,max=20"`
	UGDegree        string `form:"ug_degree" json:"ug_degree" validate:"required,max=150"`
	UGInstitution   string `form:"ug_institution" json:"ug_institution" validate:"required,max=200"`
	UGYear          string `form:"ug_year" json:"ug_year" validate:"required,len=4,numeric"`
	PGDegree        string `form:"pg_degree" json:"pg_degree" validate:"max=150"`
	PGInstitution   string `form:"pg_institution" json:"pg_institution" validate:"max=200"`
	PGYear          string `form:"pg_year" json:"pg_year" validate:"omitempty,len=4,numeric"`
	CertCourse      string `form:"cert_course" json:"cert_course" validate:"max=200"`
	CertInstitution string `form:"cert_institution" json:"cert_institution" validate:"max=200"`
	CertYear        string `form:"cert_year" json:"cert_year" validate:"omitempty,len=4,numeric"`
}

func (f *IntakeForm) Normalize() {
	for _, p := range []*string{
		&f.FirstName, &f.MiddleName, &f.LastName, &f.DOB, &f.Gender, &f.MaritalStatus,
		&f.ContactNumber, &f.EmergencyContact, &f.BloodGroup,
		&f.AddressLine1, &f.AddressLine2, &f.City, &f.State, &f.PostalCode, &f.Country,
		&f.AadharNo, &f.PanNo, &f.BankName, &f.BankBranch, &f.AccountNumber, &f.AccountName, &f.IFSCCode,
		&f.ExperienceType, &f.PostAppliedFor, &f.TechnicalSkills, &f.SoftSkills, &f.ReferenceName, &f.ReferenceContact,
		&f.SSCSchool, &f.SSCYear, &f.SSCGrade, &f.SSLCSchool, &f.SSLCYear, &f.SSLCGrade,
		&f.UGDegree, &f.UGInstitution, &f.UGYear, &f.PGDegree, &f.PGInstitution, &f.PGYear,
		&f.CertCourse, &f.CertInstitution, &f.CertYear,
	} {
		*p = strings.TrimSpace(*p)
	}
	f.PersonalEmail = strings.ToLower(strings.TrimSpace(f.PersonalEmail))
}

// Validate runs tag validation plus the date checks tags can't express.
func (f *IntakeForm) Validate() helper.FieldErrors {
	fe := helper.ValidateStruct(f)
	if f.DOB != "" {
		if _, err := time.Parse(DateLayout, f.DOB); err != nil {
			fe.Add("dob", "Enter a valid date.")
		}
	}
	return fe
}

func (f *IntakeForm) ToModel() *model.BioDataModel {
	return &model.BioDataModel{
		FirstName:        f.FirstName,
		MiddleName:       f.MiddleName,
		LastName:         f.LastName,
		DOB:              parseDate(f.DOB),
		Gender:           f.Gender,
		MaritalStatus:    f.MaritalStatus,
		ContactNumber:    f.ContactNumber,
		EmergencyContact: f.EmergencyContact,
		PersonalEmail:    f.PersonalEmail,
		BloodGroup:       f.BloodGroup,
		AddressLine1:     f.AddressLine1,
		AddressLine2:     f.AddressLine2,
		City:             f.City,
		State:            f.State,
		PostalCode:       f.PostalCode,
		Country:          f.Country,
		AadharNo:         secure.EncryptedString(f.AadharNo),
		PanNo:            secure.EncryptedString(f.PanNo),
		BankName:         f.BankName,
		BankBranch:       f.BankBranch,
		AccountNumber:    secure.EncryptedString(f.AccountNumber),
		AccountName:      f.AccountName,
		IFSCCode:         f.IFSCCode,
		ExperienceType:   f.ExperienceType,
		PostAppliedFor:   f.PostAppliedFor,
		TechnicalSkills:  f.TechnicalSkills,
		SoftSkills:       f.SoftSkills,
		ReferenceName:    f.ReferenceName,
		ReferenceContact: f.ReferenceContact,
		SSCSchool:        f.SSCSchool,
		SSCYear:          f.SSCYear,
		SSCGrade:         f.SSCGrade,
		SSLCSchool:       f.SSLCSchool,
		SSLCYear:         f.SSLCYear,
		SSLCGrade:        f.SSLCGrade,
		UGDegree:         f.UGDegree,
		UGInstitution:    f.UGInstitution,
		UGYear:           f.UGYear,
		PGDegree:         f.PGDegree,
		PGInstitution:    f.PGInstitution,
		PGYear:           f.PGYear,
		CertCourse:       f.CertCourse,
		CertInstitution:  f.CertInstitution,
		CertYear:         f.CertYear,
		Status:           model.StatusPending,
	}
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

// ExperienceRows zips the prev_* arrays; rows with a blank employer are skipped.
// The returned index is the row position, used to match work_experience_cert[].
func ExperienceRows(employers, designations, durations, emails []string) ([]model.WorkExperience, []int) {
	at := func(list []string, i int) string {
		if i < len(list) {
			return strings.TrimSpace(list[i])
		}
		return ""
	}
	var rows []model.WorkExperience
	var idx []int
	for i := range employers {
		employer := strings.TrimSpace(employers[i])
		if employer == "" {
			continue
		}
		rows = append(rows, model.WorkExperience{
			Employer:    employer,
			Designation: at(designations, i),
			Duration:    at(durations, i),
			Email:       at(emails, i),
		})
		idx = append(idx, i)
	}
	return rows, idx
}

/* =======================================================
   REVIEW
   ======================================================= */

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

type ReviewRequest struct {
	Action        string `json:"action" form:"action" validate:"required,oneof=approve reject"`
	EmployeeID    string `json:"employee_id" form:"employee_id" validate:"max=50"`
	OfficialEmail string `json:"official_email" form:"official_email" validate:"omitempty,email,max=255"`
	Designation   string `json:"designation" form:"designation" validate:"max=150"`
	Department    string `json:"department" form:"department" validate:"omitempty,oneof=software-dev hr finance operations training"`
	DOJ           string `json:"doj" form:"doj"`
	WorkMode      string `json:"work_mode" form:"work_mode" validate:"omitempty,oneof=Remote Onsite Hybrid"`
	RejectReason  string `json:"reject_reason" form:"reject_reason"`
	CreateAccount *bool  `json:"create_account" form:"create_account"`
}

func (r *ReviewRequest) Normalize() {
	r.Action = strings.ToLower(strings.TrimSpace(r.Action))
	r.EmployeeID = strings.TrimSpace(r.EmployeeID)
	r.OfficialEmail = strings.ToLower(strings.TrimSpace(r.OfficialEmail))
	r.Designation = strings.TrimSpace(r.Designation)
	r.Department = strings.TrimSpace(r.Department)
	r.DOJ = strings.TrimSpace(r.DOJ)
	r.WorkMode = strings.TrimSpace(r.WorkMode)
	r.RejectReason = strings.TrimSpace(r.RejectReason)
}

func (r *ReviewRequest) Validate() helper.FieldErrors {
	fe := helper.ValidateStruct(r)
	if r.DOJ != "" {
		if _, err := time.Parse(DateLayout, r.DOJ); err != nil {
			fe.Add("doj", "Enter a valid date.")
		}
	}
	return fe
}

// WantsAccount defaults to true when create_account is absent.
func (r *ReviewRequest) WantsAccount() bool {
	return r.CreateAccount == nil || *r.CreateAccount
}

// Apply copies the HR fields onto b. Empty identifiers are stored as NULL.
func (r *ReviewRequest) Apply(b *model.BioDataModel) {
	b.EmployeeID = nullable(r.EmployeeID)
	b.OfficialEmail = nullable(r.OfficialEmail)
	b.Designation = r.Designation
	b.Department = r.Department
	b.DOJ = parseDate(r.DOJ)
	b.WorkMode = r.WorkMode
	b.RejectReason = r.RejectReason
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

/* =======================================================
   EMPLOYEE EDIT (partial)
   ======================================================= */

// UpdateEmployeeRequest covers every editable column. Status, review fields,
// the user link and work experience are not editable here.
type UpdateEmployeeRequest struct {
	FirstName        *string `json:"first_name" form:"first_name" validate:"omitempty,min=1,max=100"`
	MiddleName       *string `json:"middle_name" form:"middle_name" validate:"omitempty,max=100"`
	LastName         *string `json:"last_name" form:"last_name" validate:"omitempty,min=1,max=100"`
	DOB              *string `json:"dob" form:"dob"`
	Gender           *string `json:"gender" form:"gender" validate:"omitempty,oneof=Male Female Other"`
	MaritalStatus    *string `json:"marital_status" form:"marital_status" validate:"omitempty,oneof=Single Married Divorced Widowed"`
	ContactNumber    *string `json:"contact_number" form:"contact_number" validate:"omitempty,min=1,max=15"`
	EmergencyContact *string `json:"emergency_contact" form:"emergency_contact" validate:"omitempty,max=15"`
	PersonalEmail    *string `json:"personal_email" form:"personal_email" validate:"omitempty,email,max=255"`
	BloodGroup       *string `json:"blood_group" form:"blood_group" validate:"omitempty,max=5"`

	AddressLine1 *string `json:"address_line1" form:"address_line1" validate:"omitempty,max=255"`
	AddressLine2 *string `json:"address_line2" form:"address_line2" validate:"omitempty,max=255"`
	City         *string `json:"city" form:"city" validate:"omitempty,max=100"`
	State        *string `json:"state" form:"state" validate:"omitempty,max=100"`
	PostalCode   *string `json:"postal_code" form:"postal_code" validate:"omitempty,max=10"`
	Country      *string `json:"country" form:"country" validate:"omitempty,max=100"`

	AadharNo      *string `json:"aadhar_no" form:"aadhar_no" validate:"omitempty,max=20"`
	PanNo         *string `json:"pan_no" form:"pan_no" validate:"omitempty,max=20"`
	BankName      *string `json:"bank_name" form:"bank_name" validate:"omitempty,max=100"`
	BankBranch    *string `json:"bank_branch" form:"bank_branch" validate:"omitempty,max=100"`
	AccountNumber *string `json:"account_number" form:"account_number" validate:"omitempty,max=30"`
	AccountName   *string `json:"account_name" form:"account_name" validate:"omitempty,max=150"`
	IFSCCode      *string `json:"ifsc_code" form:"ifsc_code" validate:"omitempty,max=20"`

	ExperienceType   *string `json:"experience_type" form:"experience_type" validate:"omitempty,oneof=fresher experienced"`
	PostAppliedFor   *string `json:"post_applied_for" form:"post_applied_for" validate:"omitempty,max=150"`
	TechnicalSkills  *string `json:"technical_skills" form:"technical_skills"`
	SoftSkills       *string `json:"soft_skills" form:"soft_skills"`
	ReferenceName    *string `json:"reference_name" form:"reference_name" validate:"omitempty,max=150"`
	ReferenceContact *string `json:"reference_contact" form:"reference_contact" validate:"omitempty,max=50"`

	SSCSchool       *string `json:"ssc_school" form:"ssc_school" validate:"omitempty,max=200"`
	SSCYear         *string `json:"ssc_year" form:"ssc_year" validate:"omitempty,len=4,numeric"`
	SSCGrade        *string `json:"ssc_grade" form:"ssc_grade" validate:"omitempty,max=20"`
	SSLCSchool      *string `json:"sslc_school" form:"sslc_school" validate:"omitempty,max=200"`
	SSLCYear        *string `json:"sslc_year" form:"sslc_year" validate:"omitempty,len=4,numeric"`
	SSLCGrade       *string `json:"sslc_grade" form:"sslc_grade" validate:"omitempty,max=20"`
	UGDegree        *string `json:"ug_degree" form:"ug_degree" validate:"omitempty,max=150"`
	UGInstitution   *string `json:"ug_institution" form:"ug_institution" validate:"omitempty,max=200"`
	UGYear          *string `json:"ug_year" form:"ug_year" validate:"omitempty,len=4,numeric"`
	PGDegree        *string `json:"pg_degree" form:"pg_degree" validate:"omitempty,max=150"`
	PGInstitution   *string `json:"pg_institution" form:"pg_institution" validate:"omitempty,max=200"`
	PGYear          *string `json:"pg_year" form:"pg_year" validate:"omitempty,len=4,numeric"`
	CertCourse      *string `json:"cert_course" form:"cert_course" validate:"omitempty,max=200"`
	CertInstitution *string `json:"cert_institution" form:"cert_institution" validate:"omitempty,max=200"`
	CertYear        *string `json:"cert_year" form:"cert_year" validate:"omitempty,len=4,numeric"`

	EmployeeID    *string `json:"employee_id" form:"employee_id" validate:"omitempty,max=50"`
	OfficialEmail *string `json:"official_email" form:"official_email" validate:"omitempty,email,max=255"`
	Designation   *string `json:"designation" form:"designation" validate:"omitempty,max=150"`
	Department    *string `json:"department" form:"department" validate:"omitempty,oneof=software-dev hr finance operations training"`
	DOJ           *string `json:"doj" form:"doj"`
	WorkMode      *string `json:"work_mode" form:"work_mode" validate:"omitempty,oneof=Remote Onsite Hybrid"`
}

func (r *UpdateEmployeeRequest) Validate() helper.FieldErrors {
	fe := helper.ValidateStruct(r)
	for field, p := range map[string]*string{"dob": r.DOB, "doj": r.DOJ} {
		if p == nil || strings.TrimSpace(*p) == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, strings.TrimSpace(*p)); err != nil {
			fe.Add(field, "Enter a valid date.")
		}
	}
	return fe
}

// Apply writes the provided fields onto b and returns the changed column names.
func (r *UpdateEmployeeRequest) Apply(b *model.BioDataModel) []string {
	var cols []string
	set := func(col string, src *string, dst *string) {
		if src == nil {
			return
		}
		v := strings.TrimSpace(*src)
		if v != *dst {
			*dst = v
			cols = append(cols, col)
		}
	}
	setSecure := func(col string, src *string, dst *secure.EncryptedString) {
		if src == nil {
			return
		}
		v := secure.EncryptedString(strings.TrimSpace(*src))
		if v != *dst {
			*dst = v
			cols = append(cols, col)
		}
	}
	setPtr := func(col string, src *string, dst **string) {
		if src == nil {
			return
		}
		next := nullable(strings.TrimSpace(*src))
		if !samePtr(next, *dst) {
			*dst = next
			cols = append(cols, col)
		}
	}
	setDate := func(col string, src *string, dst **time.Time) {
		if src == nil {
			return
		}
		*dst = parseDate(strings.TrimSpace(*src))
		cols = append(cols, col)
	}

	set("biodata_first_name", r.FirstName, &b.FirstName)
	set("biodata_middle_name", r.MiddleName, &b.MiddleName)
	set("biodata_last_name", r.LastName, &b.LastName)
	setDate("biodata_dob", r.DOB, &b.DOB)
	set("biodata_gender", r.Gender, &b.Gender)
	set("biodata_marital_status", r.MaritalStatus, &b.MaritalStatus)
	set("biodata_contact_number", r.ContactNumber, &b.ContactNumber)
	set("biodata_emergency_contact", r.EmergencyContact, &b.EmergencyContact)
	if r.PersonalEmail != nil {
		lower := strings.ToLower(*r.PersonalEmail)
		set("biodata_personal_email", &lower, &b.PersonalEmail)
	}
	set("biodata_blood_group", r.BloodGroup, &b.BloodGroup)
	set("biodata_address_line1", r.AddressLine1, &b.AddressLine1)
	set("biodata_address_line2", r.AddressLine2, &b.AddressLine2)
	set("biodata_city", r.City, &b.City)
	set("biodata_state", r.State, &b.State)
	set("biodata_postal_code", r.PostalCode, &b.PostalCode)
	set("biodata_country", r.Country, &b.Country)
	setSecure("biodata_aadhar_no", r.AadharNo, &b.AadharNo)
	setSecure("biodata_pan_no", r.PanNo, &b.PanNo)
	set("biodata_bank_name", r.BankName, &b.BankName)
	set("biodata_bank_branch", r.BankBranch, &b.BankBranch)
	setSecure("biodata_account_number", r.AccountNumber, &b.AccountNumber)
	set("biodata_account_name", r.AccountName, &b.AccountName)
	set("biodata_ifsc_code", r.IFSCCode, &b.IFSCCode)
	set("biodata_experience_type", r.ExperienceType, &b.ExperienceType)
	set("biodata_post_applied_for", r.PostAppliedFor, &b.PostAppliedFor)
	set("biodata_technical_skills", r.TechnicalSkills, &b.TechnicalSkills)
	set("biodata_soft_skills", r.SoftSkills, &b.SoftSkills)
	set("biodata_reference_name", r.ReferenceName, &b.ReferenceName)
	set("biodata_reference_contact", r.ReferenceContact, &b.ReferenceContact)
	set("biodata_ssc_school", r.SSCSchool, &b.SSCSchool)
	set("biodata_ssc_year", r.SSCYear, &b.SSCYear)
	set("biodata_ssc_grade", r.SSCGrade, &b.SSCGrade)
	set("biodata_sslc_school", r.SSLCSchool, &b.SSLCSchool)
	set("biodata_sslc_year", r.SSLCYear, &b.SSLCYear)
	set("biodata_sslc_grade", r.SSLCGrade, &b.SSLCGrade)
	set("biodata_ug_degree", r.UGDegree, &b.UGDegree)
	set("biodata_ug_institution", r.UGInstitution, &b.UGInstitution)
	set("biodata_ug_year", r.UGYear, &b.UGYear)
	set("biodata_pg_degree", r.PGDegree, &b.PGDegree)
	set("biodata_pg_institution", r.PGInstitution, &b.PGInstitution)
	set("biodata_pg_year", r.PGYear, &b.PGYear)
	set("biodata_cert_course", r.CertCourse, &b.CertCourse)
	set("biodata_cert_institution", r.CertInstitution, &b.CertInstitution)
	set("biodata_cert_year", r.CertYear, &b.CertYear)
	setPtr("biodata_employee_id", r.EmployeeID, &b.EmployeeID)
	if r.OfficialEmail != nil {
		lower := strings.ToLower(*r.OfficialEmail)
		setPtr("biodata_official_email", &lower, &b.OfficialEmail)
	}
	set("biodata_designation", r.Designation, &b.Designation)
	set("biodata_department", r.Department, &b.Department)
	setDate("biodata_doj", r.DOJ, &b.DOJ)
	set("biodata_work_mode", r.WorkMode, &b.WorkMode)
	return cols
}

func samePtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

/* =======================================================
   SELF-SERVICE PROFILE EDIT
   ======================================================= */

// ProfileUpdateRequest is the subset an employee may edit on their own record.
type ProfileUpdateRequest struct {
	ContactNumber    *string `json:"contact_number" validate:"omitempty,min=1,max=15"`
	EmergencyContact *string `json:"emergency_contact" validate:"omitempty,max=15"`
	AddressLine1     *string `json:"address_line1" validate:"omitempty,max=255"`
	AddressLine2     *string `json:"address_line2" validate:"omitempty,max=255"`
	City             *string `json:"city" validate:"omitempty,max=100"`
	State            *string `json:"state" validate:"omitempty,max=100"`
	PostalCode       *string `json:"postal_code" validate:"omitempty,max=10"`
	Country          *string `json:"country" validate:"omitempty,max=100"`
}

func (r *ProfileUpdateRequest) ToEmployeeUpdate() *UpdateEmployeeRequest {
	return &UpdateEmployeeRequest{
		ContactNumber:    r.ContactNumber,
		EmergencyContact: r.EmergencyContact,
		AddressLine1:     r.AddressLine1,
		AddressLine2:     r.AddressLine2,
		City:             r.City,
		State:            r.State,
		PostalCode:       r.PostalCode,
		Country:          r.Country,
	}
}

/* =======================================================
   RESPONSES
   ======================================================= */

type BiodataResponse struct {
	*model.BioDataModel
	FullName        string `json:"full_name"`
	DepartmentLabel string `json:"department_label"`
	Address         string `json:"address"`
}

func FromModel(b *model.BioDataModel) BiodataResponse {
	return BiodataResponse{
		BioDataModel:    b,
		FullName:        b.FullName(),
		DepartmentLabel: constants.DepartmentLabel(b.Department),
		Address:         b.Address(),
	}
}

func FromModels(rows []model.BioDataModel) []BiodataResponse {
	out := make([]BiodataResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}
