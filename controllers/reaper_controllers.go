package controllers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/table-order-app/services"
	"github.com/yeremiapane/table-order-app/utils"
)

type ReaperController struct {
	Reaper *services.ReaperService
}

func NewReaperController(db *gorm.DB) *ReaperController {
	return &ReaperController{Reaper: services.NewReaperService(db)}
}

// TriggerRun -> trigger manual satu run reaper. Selain admin JWT, shared
// secret lewat header X-Reaper-Token juga diterima (untuk scheduler eksternal).
func (rc *ReaperController) TriggerRun(c *gin.Context) {
	if !rc.authorized(c) {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	report, err := rc.Reaper.RunOnce()
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Reaper run finished", report)
}

func (rc *ReaperController) authorized(c *gin.Context) bool {
	if role, exists := c.Get("role"); exists && role == "admin" {
		return true
	}
	secret := os.Getenv("REAPER_TOKEN")
	return secret != "" && c.GetHeader("X-Reaper-Token") == secret
}
