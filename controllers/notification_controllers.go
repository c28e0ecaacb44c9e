package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/table-order-app/models"
	"github.com/yeremiapane/table-order-app/utils"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// GetNotifications -> notifikasi untuk staff, opsional ?status=pending
func (nc *NotificationController) GetNotifications(c *gin.Context) {
	query := nc.DB.Order("created_at desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if sessionID := c.Query("session_id"); sessionID != "" {
		query = query.Where("session_id = ?", sessionID)
	}

	var notifs []models.Notification
	if err := query.Find(&notifs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of notifications", notifs)
}

// CompleteNotification -> staff menandai notifikasi sudah ditindak
func (nc *NotificationController) CompleteNotification(c *gin.Context) {
	notifID, err := strconv.Atoi(c.Param("notif_id"))
	if err != nil {
		utils.RespondAppError(c, utils.Validationf("invalid notification id"))
		return
	}

	var notif models.Notification
	if err := nc.DB.First(&notif, notifID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if notif.Status == models.NotificationStatusCompleted {
		utils.RespondJSON(c, http.StatusOK, "Notification already completed", notif)
		return
	}

	now := time.Now()
	notif.Status = models.NotificationStatusCompleted
	notif.CompletedAt = &now
	if v, exists := c.Get("user_id"); exists {
		if id, ok := v.(uint); ok {
			notif.CompletedBy = &id
		}
	}

	if err := nc.DB.Save(&notif).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Notification completed", notif)
}
