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

type SplitBillController struct {
	DB     *gorm.DB
	Splits *services.SplitService
}

func NewSplitBillController(db *gorm.DB) *SplitBillController {
	return &SplitBillController{
		DB:     db,
		Splits: services.NewSplitService(db),
	}
}

// CreateSplit -> membagi biaya order shared ke sejumlah peserta
func (sc *SplitBillController) CreateSplit(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondAppError(c, utils.Validationf("invalid order id"))
		return
	}

	var req struct {
		Participants []string `json:"participants" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	split, err := sc.Splits.CreateSplit(uint(orderID), req.Participants)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.Printf("Split %d created for order %d (%d participants)",
		split.ID, orderID, split.SplitCount)
	utils.RespondJSON(c, http.StatusCreated, "Split bill created", gin.H{
		"split":        split,
		"participants": split.ParticipantNames(),
	})
}

// DissolveSplit -> membubarkan split; order kembali ke harga polos
func (sc *SplitBillController) DissolveSplit(c *gin.Context) {
	splitID, err := strconv.Atoi(c.Param("split_id"))
	if err != nil {
		utils.RespondAppError(c, utils.Validationf("invalid split id"))
		return
	}

	if err := sc.Splits.DissolveSplit(uint(splitID)); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Split bill dissolved", gin.H{"split_id": splitID})
}

// GetDisplayPrice -> harga tampil order: per-unit vs per-orang (dua angka
// berbeda yang tidak boleh tertukar di UI)
func (sc *SplitBillController) GetDisplayPrice(c *gin.Context) {
	orderID := c.Param("order_id")

	var order models.Order
	if err := sc.DB.First(&order, orderID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	price, err := sc.Splits.ResolveDisplayPrice(order)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Display price", price)
}
