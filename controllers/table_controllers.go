package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/table-order-app/hub"
	"github.com/yeremiapane/table-order-app/models"
	"github.com/yeremiapane/table-order-app/services"
	"github.com/yeremiapane/table-order-app/utils"
)

type TableController struct {
	DB       *gorm.DB
	Sessions *services.SessionService
}

func NewTableController(db *gorm.DB) *TableController {
	return &TableController{
		DB:       db,
		Sessions: services.NewSessionService(db),
	}
}

// CreateTable -> menambahkan meja baru (admin setup)
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		TableNumber string `json:"table_number" binding:"required"`
		Capacity    int    `json:"capacity"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var existing int64
	tc.DB.Model(&models.Table{}).Where("table_number = ?", req.TableNumber).Count(&existing)
	if existing > 0 {
		utils.RespondAppError(c, utils.Conflictf("table %s already exists", req.TableNumber))
		return
	}

	table := models.Table{
		TableNumber: req.TableNumber,
		Capacity:    4,
		IsActive:    true,
	}
	if req.Capacity > 0 {
		table.Capacity = req.Capacity
	}

	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	hub.BroadcastTableUpdate(table)

	utils.InfoLogger.Printf("New table created: %s (capacity=%d)", table.TableNumber, table.Capacity)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> menampilkan seluruh meja
func (tc *TableController) GetAllTables(c *gin.Context) {
	var tables []models.Table
	if err := tc.DB.Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// GetTableByID -> detail satu meja
func (tc *TableController) GetTableByID(c *gin.Context) {
	tableID := c.Param("table_id")
	var table models.Table
	if err := tc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// ClaimTable -> staff mengklaim meja: PIN dibuat, session aktif terbentuk.
// Dua perangkat yang berebut meja yang sama: satu menang, satu dapat 409.
func (tc *TableController) ClaimTable(c *gin.Context) {
	tableID, err := strconv.Atoi(c.Param("table_id"))
	if err != nil {
		utils.RespondAppError(c, utils.Validationf("invalid table id"))
		return
	}

	var staffID *uint
	if v, exists := c.Get("user_id"); exists {
		if id, ok := v.(uint); ok {
			staffID = &id
		}
	}

	session, err := tc.Sessions.BindSession(uint(tableID), staffID, "")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var table models.Table
	if err := tc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Table %d claimed, session %d started", table.ID, session.ID)
	utils.RespondJSON(c, http.StatusCreated, "Table claimed", gin.H{
		"session_id": session.ID,
		"pin":        table.CurrentPin,
	})
}

// ReleaseTable -> staff melepaskan meja; session aktifnya dibatalkan
func (tc *TableController) ReleaseTable(c *gin.Context) {
	tableID := c.Param("table_id")

	var table models.Table
	if err := tc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if table.CurrentSessionID == nil {
		utils.RespondAppError(c, utils.Conflictf("table %s has no active session", table.TableNumber))
		return
	}

	session, err := tc.Sessions.TerminateSession(*table.CurrentSessionID, models.SessionStatusCancelled)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.Printf("Table %d released (session %d cancelled)", table.ID, session.ID)
	utils.RespondJSON(c, http.StatusOK, "Table released", gin.H{
		"table_id":   table.ID,
		"session_id": session.ID,
	})
}

// DeleteTable -> menghapus meja (hanya yang tidak terpakai)
func (tc *TableController) DeleteTable(c *gin.Context) {
	tableID := c.Param("table_id")
	var table models.Table

	if err := tc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if table.Occupied {
		utils.RespondAppError(c, utils.Conflictf("table %s is occupied", table.TableNumber))
		return
	}

	if err := tc.DB.Delete(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Table %d deleted", table.ID)
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{"id": table.ID})
}
