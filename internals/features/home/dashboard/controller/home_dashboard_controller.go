package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	biodataModel "hrportal_backend/internals/features/employees/biodata/model"
	notifModel "hrportal_backend/internals/features/notifications/model"
	batchModel "hrportal_backend/internals/features/training/batches/model"
	userModel "hrportal_backend/internals/features/users/user/model"
	helper "hrportal_backend/internals/helpers"
)

type HomeDashboardController struct {
	DB *gorm.DB
}

func NewHomeDashboardController(db *gorm.DB) *HomeDashboardController {
	return &HomeDashboardController{DB: db}
}

type Counts struct {
	TotalUsers          int64 `json:"total_users"`
	PendingBiodata      int64 `json:"pending_biodata"`
	ApprovedEmployees   int64 `json:"approved_employees"`
	OngoingBatches      int64 `json:"ongoing_batches"`
	UnreadNotifications int64 `json:"unread_notifications"`
}

// GET /api/u/dashboard
func (hc *HomeDashboardController) Summary(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	var out Counts
	g, ctx := errgroup.WithContext(c.Context())
	q := func() *gorm.DB { return hc.DB.WithContext(ctx) }

	g.Go(func() error {
		return q().Model(&notifModel.NotificationModel{}).
			Where("notification_recipient_id = ? AND notification_is_read = ?", userID, false).
			Count(&out.UnreadNotifications).Error
	})

	g.Go(func() error {
		return q().Model(&userModel.UserModel{}).Count(&out.TotalUsers).Error
	})
	g.Go(func() error {
		return q().Model(&biodataModel.BioDataModel{}).
			Where("biodata_status = ?", biodataModel.StatusPending).Count(&out.PendingBiodata).Error
	})
	g.Go(func() error {
		return q().Model(&biodataModel.BioDataModel{}).
			Where("biodata_status = ?", biodataModel.StatusApproved).Count(&out.ApprovedEmployees).Error
	})
	g.Go(func() error {
		return q().Model(&batchModel.BatchModel{}).
			Where("batch_status = ?", batchModel.BatchOngoing).Count(&out.OngoingBatches).Error
	})

	if err := g.Wait(); err != nil {
		log.Println("[ERROR] home dashboard:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load dashboard")
	}

	return helper.JsonOK(c, "Dashboard", out)
}
