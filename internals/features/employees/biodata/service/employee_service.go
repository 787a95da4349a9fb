package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hrportal_backend/internals/configs"
	"hrportal_backend/internals/constants"
	"hrportal_backend/internals/features/employees/biodata/dto"
	"hrportal_backend/internals/features/employees/biodata/model"
	"hrportal_backend/internals/features/employees/profilesync"
	notifService "hrportal_backend/internals/features/notifications/service"
	"hrportal_backend/internals/helpers/storage"
)

var ErrNotPending = errors.New("Only pending requests can be deleted.")

type EmployeeFilter struct {
	Search     string
	Department string
}

// EmployeesQuery selects approved records ordered by DOJ, newest first.
func EmployeesQuery(db *gorm.DB, f EmployeeFilter) *gorm.DB {
	q := db.Model(&model.BioDataModel{}).Where("biodata_status = ?", model.StatusApproved)
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		like := "%" + s + "%"
		q = q.Where(`LOWER(biodata_first_name) LIKE ? OR LOWER(biodata_middle_name) LIKE ?
			OR LOWER(biodata_last_name) LIKE ? OR LOWER(biodata_employee_id) LIKE ?
			OR LOWER(biodata_official_email) LIKE ? OR LOWER(biodata_personal_email) LIKE ?`,
			like, like, like, like, like, like)
	}
	if d := strings.TrimSpace(f.Department); d != "" {
		q = q.Where("biodata_department = ?", d)
	}
	return q.Order("biodata_doj DESC").Order("biodata_created_at DESC")
}

func findWithStatus(tx *gorm.DB, id uuid.UUID, status string) (*model.BioDataModel, error) {
	var b model.BioDataModel
	q := tx.Where("biodata_id = ?", id)
	if status != "" {
		q = q.Where("biodata_status = ?", status)
	}
	if err := q.First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func GetRequest(db *gorm.DB, id uuid.UUID) (*model.BioDataModel, error) {
	return findWithStatus(db, id, "")
}

func GetEmployee(db *gorm.DB, id uuid.UUID) (*model.BioDataModel, error) {
	return findWithStatus(db, id, model.StatusApproved)
}

// Editor identifies who changed a record, for notification text.
type Editor struct {
	ID      uuid.UUID
	Display string
}

// UpdateEmployee applies an edit to an approved record, replaces uploaded
// documents and pushes name/phone/department onto the linked account in the
// same transaction. notify=false is used for self-service edits.
func UpdateEmployee(ctx context.Context, db *gorm.DB, blob storage.BlobService, editor Editor, id uuid.UUID, req *dto.UpdateEmployeeRequest, up Uploads, notify bool) (*model.BioDataModel, error) {
	b, err := GetEmployee(db, id)
	if err != nil {
		return nil, err
	}
	cols := req.Apply(b)
	if err := checkEditUniques(db, b, cols); err != nil {
		return nil, err
	}

	replaced := map[string]*string{}
	for _, d := range Documents {
		if _, ok := up.Documents[d.Field]; ok {
			replaced[d.Field] = *d.Target(b)
		}
	}
	uploaded, err := up.Store(ctx, blob, b, nil, nil)
	if err != nil {
		return nil, err
	}
	for _, d := range Documents {
		if _, ok := up.Documents[d.Field]; ok {
			cols = append(cols, d.Column())
		}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if len(cols) > 0 {
			if err := tx.Model(b).Select(cols).Updates(b).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return fieldError("personal_email", "A record with these details already exists.")
				}
				return err
			}
		}

		if fields := syncFields(cols); len(fields) > 0 {
			if _, err := profilesync.PushBiodataToUser(tx, b, fields...); err != nil {
				return err
			}
		}

		if !notify {
			return nil
		}
		empID := "N/A"
		if b.EmployeeID != nil {
			empID = *b.EmployeeID
		}
		msg := fmt.Sprintf("BioData of %s %s (ID: %s) was updated by %s.", b.FirstName, b.LastName, empID, editor.Display)
		_, err := notifService.NotifyAdmins(tx, constants.NotifBiodataUpdated, "Employee BioData Updated", msg,
			configs.AppURL("/biodata/employees/"+b.BioDataID.String()), true)
		return err
	})
	if err != nil {
		Discard(blob, uploaded)
		return nil, err
	}

	var old []string
	for _, u := range replaced {
		if u != nil && *u != "" {
			old = append(old, *u)
		}
	}
	Discard(blob, old)

	configs.Audit().Info("biodata updated",
		zap.String("biodata_id", b.BioDataID.String()),
		zap.Strings("columns", cols),
		zap.String("actor", editor.Display),
	)
	return b, nil
}

// syncFields maps changed biodata columns to the account fields they feed.
func syncFields(cols []string) []string {
	var out []string
	seen := map[string]bool{}
	add := func(f string) {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	for _, c := range cols {
		switch c {
		case "biodata_first_name", "biodata_middle_name", "biodata_last_name":
			add(profilesync.FieldName)
		case "biodata_contact_number":
			add(profilesync.FieldPhone)
		case "biodata_department":
			add(profilesync.FieldDepartment)
		}
	}
	return out
}

func checkEditUniques(db *gorm.DB, b *model.BioDataModel, cols []string) error {
	changed := map[string]bool{}
	for _, c := range cols {
		changed[c] = true
	}
	if changed["biodata_personal_email"] {
		var n int64
		if err := db.Model(&model.BioDataModel{}).
			Where("biodata_personal_email = ? AND biodata_id <> ?", b.PersonalEmail, b.BioDataID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fieldError("personal_email", ErrPersonalEmailUsed.Error())
		}
	}
	if changed["biodata_official_email"] || changed["biodata_employee_id"] {
		return checkReviewUniques(db, b)
	}
	return nil
}

// DeleteRequest removes a pending request.
func DeleteRequest(db *gorm.DB, blob storage.BlobService, id uuid.UUID) (*model.BioDataModel, error) {
	b, err := GetRequest(db, id)
	if err != nil {
		return nil, err
	}
	if b.Status != model.StatusPending {
		return nil, ErrNotPending
	}
	if err := db.Delete(b).Error; err != nil {
		return nil, err
	}
	Discard(blob, documentURLs(b))
	return b, nil
}

// DeleteEmployee removes an approved record; the linked account stays.
func DeleteEmployee(db *gorm.DB, blob storage.BlobService, editor Editor, id uuid.UUID) (*model.BioDataModel, error) {
	var b *model.BioDataModel
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		if b, err = GetEmployee(tx, id); err != nil {
			return err
		}
		if err := tx.Delete(b).Error; err != nil {
			return err
		}
		msg := fmt.Sprintf("BioData of %s %s (%s) was deleted by %s.", b.FirstName, b.LastName, b.PersonalEmail, editor.Display)
		_, err = notifService.NotifyAdmins(tx, constants.NotifBiodataDeleted, "Employee BioData Deleted", msg, "", true)
		return err
	})
	if err != nil {
		return nil, err
	}
	Discard(blob, documentURLs(b))

	configs.Audit().Info("biodata deleted",
		zap.String("biodata_id", b.BioDataID.String()),
		zap.String("email", b.PersonalEmail),
		zap.String("actor", editor.Display),
	)
	return b, nil
}

func documentURLs(b *model.BioDataModel) []string {
	var out []string
	for _, d := range Documents {
		if p := *d.Target(b); p != nil && *p != "" {
			out = append(out, *p)
		}
	}
	for _, w := range b.Experiences() {
		if w.CertificatePath != "" {
			out = append(out, w.CertificatePath)
		}
	}
	return out
}
