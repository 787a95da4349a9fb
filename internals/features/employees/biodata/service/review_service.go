package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hrportal_backend/internals/configs"
	"hrportal_backend/internals/constants"
	"hrportal_backend/internals/features/employees/biodata/dto"
	"hrportal_backend/internals/features/employees/biodata/model"
	"hrportal_backend/internals/features/employees/profilesync"
	notifService "hrportal_backend/internals/features/notifications/service"
	authHelper "hrportal_backend/internals/features/users/auth/helper"
	userModel "hrportal_backend/internals/features/users/user/model"
	"hrportal_backend/internals/helpers/mailer"
)

const (
	MsgOfficialEmailUser    = "This official email is already used by another employee."
	MsgOfficialEmailBiodata = "This official email is already assigned to another biodata."
	MsgEmployeeIDUsed       = "This Employee ID is already in use."
)

type Reviewer struct {
	ID    uuid.UUID
	Email string
}

type ReviewResult struct {
	Biodata      *model.BioDataModel
	Account      *userModel.UserModel
	TempPassword string
	// AccountError is set when approval went through but no login could be created.
	AccountError string
	MailError    error
}

func (r *ReviewResult) Message() string {
	if r.Biodata.Status == model.StatusRejected {
		return "Application rejected successfully."
	}
	if r.Account != nil {
		return "Employee approved successfully! Account created."
	}
	return "Employee approved successfully!"
}

// checkReviewUniques applies the official email / employee ID rules against
// every other record.
func checkReviewUniques(tx *gorm.DB, b *model.BioDataModel) error {
	fe := map[string][]string{}
	if b.OfficialEmail != nil {
		q := tx.Model(&userModel.UserModel{}).Where("email = ?", *b.OfficialEmail)
		if b.UserID != nil {
			q = q.Where("id <> ?", *b.UserID)
		}
		var n int64
		if err := q.Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			fe["official_email"] = append(fe["official_email"], MsgOfficialEmailUser)
		} else {
			if err := tx.Model(&model.BioDataModel{}).
				Where("biodata_official_email = ? AND biodata_id <> ?", *b.OfficialEmail, b.BioDataID).
				Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				fe["official_email"] = append(fe["official_email"], MsgOfficialEmailBiodata)
			}
		}
	}
	if b.EmployeeID != nil {
		var n int64
		if err := tx.Model(&model.BioDataModel{}).
			Where("biodata_employee_id = ? AND biodata_id <> ?", *b.EmployeeID, b.BioDataID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			fe["employee_id"] = append(fe["employee_id"], MsgEmployeeIDUsed)
		}
	}
	if len(fe) > 0 {
		return &ValidationError{Fields: fe}
	}
	return nil
}

// Review approves or rejects a request. Approval may provision an employee
// account in the same transaction; the welcome email and admin notifications
// go out after commit.
func Review(ctx context.Context, db *gorm.DB, mail mailer.Mailer, actor Reviewer, id uuid.UUID, req *dto.ReviewRequest) (*ReviewResult, error) {
	res := &ReviewResult{}
	var b model.BioDataModel

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&b, "biodata_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		req.Apply(&b)
		if err := checkReviewUniques(tx, &b); err != nil {
			return err
		}

		cols := []string{
			"biodata_employee_id", "biodata_official_email", "biodata_designation",
			"biodata_department", "biodata_doj", "biodata_work_mode", "biodata_reject_reason",
			"biodata_status",
		}
		switch req.Action {
		case dto.ActionApprove:
			b.Status = model.StatusApproved
			b.ApprovedByID = &actor.ID
			cols = append(cols, "biodata_approved_by_id")
		case dto.ActionReject:
			b.Status = model.StatusRejected
		}
		if err := tx.Model(&b).Select(cols).Updates(&b).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fieldError("employee_id", MsgEmployeeIDUsed)
			}
			return err
		}

		if b.Status != model.StatusApproved {
			return nil
		}
		if b.UserID != nil {
			// already linked: the approval may have changed the department
			_, err := profilesync.PushBiodataToUser(tx, &b, profilesync.FieldName, profilesync.FieldPhone, profilesync.FieldDepartment)
			return err
		}
		if !req.WantsAccount() {
			return nil
		}
		return provisionAccount(tx, &b, res)
	})
	if err != nil {
		return nil, err
	}
	res.Biodata = &b

	configs.Audit().Info("biodata reviewed",
		zap.String("biodata_id", b.BioDataID.String()),
		zap.String("status", b.Status),
		zap.String("actor", actor.Email),
		zap.Bool("account_created", res.Account != nil),
	)

	if res.Account != nil {
		configs.Audit().Info("employee account provisioned",
			zap.String("user_id", res.Account.ID.String()),
			zap.String("email", res.Account.Email),
			zap.String("biodata_id", b.BioDataID.String()),
		)
		sendCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		if err := mail.Send(sendCtx, WelcomeEmail(&b, res.Account.Email, res.TempPassword)); err != nil {
			log.Printf("[ERROR] welcome email to %s: %v\n", b.PersonalEmail, err)
			res.MailError = err
		}
		msg := fmt.Sprintf("Account created for %s %s (%s) on approval.", b.FirstName, b.LastName, res.Account.Email)
		if _, err := notifService.NotifyAdmins(db, constants.NotifEmployeeAccountCreated, "Employee Account Created",
			msg, configs.AppURL("/users/"+res.Account.ID.String()), false); err != nil {
			log.Println("[ERROR] notify account created:", err)
		}
	}
	return res, nil
}

func provisionAccount(tx *gorm.DB, b *model.BioDataModel, res *ReviewResult) error {
	email := b.AccountEmail()
	var n int64
	if err := tx.Model(&userModel.UserModel{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		res.AccountError = fmt.Sprintf("Email %s already used.", email)
		return nil
	}

	temp, err := authHelper.GenerateTempPassword()
	if err != nil {
		return err
	}
	hash, err := authHelper.HashPassword(temp)
	if err != nil {
		return err
	}
	u := &userModel.UserModel{
		Email:      email,
		Password:   hash,
		FullName:   b.FullName(),
		Phone:      b.ContactNumber,
		Department: b.Department,
	}
	u.ApplyRole(constants.RoleEmployee)
	u.SetStatus(constants.StatusActive)
	if err := tx.Create(u).Error; err != nil {
		return fmt.Errorf("create employee account: %w", err)
	}
	if err := tx.Model(b).Update("biodata_user_id", u.ID).Error; err != nil {
		return err
	}
	b.UserID = &u.ID
	res.Account = u
	res.TempPassword = temp
	return nil
}

// WelcomeEmail carries the temporary credentials to the applicant's personal address.
func WelcomeEmail(b *model.BioDataModel, email, tempPassword string) mailer.Message {
	orNone := func(p *string) string {
		if p == nil {
			return "None"
		}
		return *p
	}
	doj := "None"
	if b.DOJ != nil {
		doj = b.DOJ.Format(dto.DateLayout)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Dear %s %s,\n\n", b.FirstName, b.LastName)
	sb.WriteString("Your bio data has been approved!\n\n")
	sb.WriteString("Login Details:\n")
	fmt.Fprintf(&sb, "- Email: %s\n", email)
	fmt.Fprintf(&sb, "- Temporary Password: %s\n\n", tempPassword)
	fmt.Fprintf(&sb, "Please login at: %s\n", configs.AppURL("/login"))
	sb.WriteString("Change your password immediately after login.\n\n")
	sb.WriteString("Employee Details:\n")
	fmt.Fprintf(&sb, "- Employee ID: %s\n", orNone(b.EmployeeID))
	fmt.Fprintf(&sb, "- Official Email: %s\n", orNone(b.OfficialEmail))
	fmt.Fprintf(&sb, "- Designation: %s\n", b.Designation)
	fmt.Fprintf(&sb, "- Department: %s\n", constants.DepartmentLabel(b.Department))
	fmt.Fprintf(&sb, "- Date of Joining: %s\n\n", doj)
	sb.WriteString("Best regards,\nHR Team - STACKLY\n")

	return mailer.Message{
		To:      b.PersonalEmail,
		Subject: "Welcome to STACKLY - Your Account Details",
		Body:    sb.String(),
	}
}
