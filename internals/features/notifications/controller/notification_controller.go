package controller

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hrportal_backend/internals/features/notifications/model"
	"hrportal_backend/internals/features/notifications/service"
	helper "hrportal_backend/internals/helpers"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// GET /api/u/notifications?unread=true&page=&per_page=
func (nc *NotificationController) List(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	q := nc.DB.Model(&model.NotificationModel{}).Where("notification_recipient_id = ?", userID)
	if strings.EqualFold(c.Query("unread"), "true") {
		q = q.Where("notification_is_read = ?", false)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		log.Println("[ERROR] count notifications:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load notifications")
	}

	p := helper.ResolvePaging(c, 20, 100)
	var rows []model.NotificationModel
	if err := q.Order("notification_created_at DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&rows).Error; err != nil {
		log.Println("[ERROR] list notifications:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load notifications")
	}

	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "Notifications", rows, &pg)
}

// GET /api/u/notifications/unread-count
func (nc *NotificationController) UnreadCount(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	n, err := service.UnreadCount(nc.DB, userID)
	if err != nil {
		log.Println("[ERROR] unread count:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to count notifications")
	}
	return c.JSON(fiber.Map{"unread_notifications": n})
}

// POST /api/u/notifications/:id/read
func (nc *NotificationController) MarkRead(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	ok, err := service.MarkRead(nc.DB, userID, id)
	if err != nil {
		log.Println("[ERROR] mark read:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update notification")
	}
	if !ok {
		return helper.JsonError(c, fiber.StatusNotFound, "Notification not found")
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// POST /api/u/notifications/mark-all-read
func (nc *NotificationController) MarkAllRead(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	n, err := service.MarkAllRead(nc.DB, userID)
	if err != nil {
		log.Println("[ERROR] mark all read:", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update notifications")
	}
	log.Printf("[INFO] %d notifications marked read for %s\n", n, userID)
	return c.JSON(fiber.Map{"status": "ok"})
}
