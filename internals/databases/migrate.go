package database

import (
	"log"

	"gorm.io/gorm"

	biodataModel "hrportal_backend/internals/features/employees/biodata/model"
	notificationModel "hrportal_backend/internals/features/notifications/model"
	assignmentModel "hrportal_backend/internals/features/training/assignments/model"
	batchModel "hrportal_backend/internals/features/training/batches/model"
	materialModel "hrportal_backend/internals/features/training/materials/model"
	sessionModel "hrportal_backend/internals/features/training/sessions/model"
	authModel "hrportal_backend/internals/features/users/auth/model"
	userModel "hrportal_backend/internals/features/users/user/model"
)

// Models lists every table in dependency order.
func Models() []any {
	return []any{
		&userModel.UserModel{},
		&authModel.RefreshToken{},
		&authModel.TokenBlacklist{},
		&notificationModel.NotificationModel{},
		&biodataModel.BioDataModel{},
		&batchModel.BatchModel{},
		&sessionModel.TrainingSessionModel{},
		&sessionModel.AttendanceModel{},
		&assignmentModel.AssignmentModel{},
		&assignmentModel.SubmissionModel{},
		&materialModel.MaterialModel{},
	}
}

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	log.Println("✅ AutoMigrate finished")
	return nil
}
