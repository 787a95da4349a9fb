package constants

const (
	NotifBiodataNew             = "biodata_new"
	NotifUserCreated            = "user_created"
	NotifUserUpdated            = "user_updated"
	NotifUserDeleted            = "user_deleted"
	NotifEmployeeAccountCreated = "employee_account_created"
	NotifBiodataUpdated         = "biodata_updated"
	NotifBiodataDeleted         = "biodata_deleted"
	NotifSubmissionGraded       = "submission_graded"
)
