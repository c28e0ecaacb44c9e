package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/table-order-app/models"
	"github.com/yeremiapane/table-order-app/services"
	"github.com/yeremiapane/table-order-app/utils"
)

type SessionController struct {
	DB       *gorm.DB
	Sessions *services.SessionService
}

func NewSessionController(db *gorm.DB) *SessionController {
	return &SessionController{
		DB:       db,
		Sessions: services.NewSessionService(db),
	}
}

// CreateOrJoinSession -> jalur scan QR: diner memasukkan nama dan bergabung
// ke session meja (atau membukanya jika belum ada). Nama yang masih aktif di
// meja itu ditolak 409; nama lama yang sudah logout diaktifkan kembali.
func (sc *SessionController) CreateOrJoinSession(c *gin.Context) {
	var req struct {
		TableID   uint   `json:"table_id" binding:"required"`
		DinerName string `json:"diner_name" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	session, diner, isNew, err := sc.Sessions.CreateOrJoinSession(req.TableID, req.DinerName)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.Printf("Diner %q joined session %d (new_session=%v)", diner.Name, session.ID, isNew)
	utils.RespondJSON(c, http.StatusOK, "Joined session", gin.H{
		"session_id":     session.ID,
		"diner_id":       diner.ID,
		"is_new_session": isNew,
	})
}

// GetSession -> detail session beserta roster diner
func (sc *SessionController) GetSession(c *gin.Context) {
	sessionID := c.Param("session_id")

	var session models.Session
	if err := sc.DB.Preload("Diners").First(&session, sessionID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Session detail", session)
}

// HeartbeatDiner -> menyegarkan last_active; dipanggil saat polling client
func (sc *SessionController) HeartbeatDiner(c *gin.Context) {
	sessionID, err1 := strconv.Atoi(c.Param("session_id"))
	dinerID, err2 := strconv.Atoi(c.Param("diner_id"))
	if err1 != nil || err2 != nil {
		utils.RespondAppError(c, utils.Validationf("invalid session or diner id"))
		return
	}

	if err := sc.Sessions.TouchDiner(uint(sessionID), uint(dinerID)); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Heartbeat recorded", nil)
}

// LeaveSession -> diner logout dari session
func (sc *SessionController) LeaveSession(c *gin.Context) {
	sessionID, err1 := strconv.Atoi(c.Param("session_id"))
	dinerID, err2 := strconv.Atoi(c.Param("diner_id"))
	if err1 != nil || err2 != nil {
		utils.RespondAppError(c, utils.Validationf("invalid session or diner id"))
		return
	}

	if err := sc.Sessions.DeactivateDiner(uint(sessionID), uint(dinerID), "left"); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Diner left session", nil)
}

// TerminateSession -> staff menutup session secara manual
func (sc *SessionController) TerminateSession(c *gin.Context) {
	sessionID, err := strconv.Atoi(c.Param("session_id"))
	if err != nil {
		utils.RespondAppError(c, utils.Validationf("invalid session id"))
		return
	}

	var req struct {
		Outcome string `json:"outcome" binding:"required"` // completed / cancelled
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := sc.Sessions.TerminateSession(uint(sessionID), models.SessionStatus(req.Outcome))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Session terminated", session)
}
