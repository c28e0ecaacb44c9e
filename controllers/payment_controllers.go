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

type PaymentController struct {
	DB       *gorm.DB
	Payments *services.PaymentService
}

func NewPaymentController(db *gorm.DB) *PaymentController {
	return &PaymentController{
		DB:       db,
		Payments: services.NewPaymentService(db),
	}
}

func scopeFromRequest(paymentType, dinerName string) (services.PaymentScope, error) {
	t, ok := models.ValidPaymentType(paymentType)
	if !ok {
		return services.PaymentScope{}, utils.Validationf("unknown payment type %q", paymentType)
	}
	if t == models.PaymentTypeIndividual {
		return services.IndividualScope(dinerName), nil
	}
	return services.TableScope(), nil
}

// RequestPayment -> diner meminta pembayaran (individual atau satu meja).
// Request kedua selagi masih pending ditolak 409, kecuali pengulangan dari
// diner yang sama.
func (pc *PaymentController) RequestPayment(c *gin.Context) {
	sessionID, err := strconv.Atoi(c.Param("session_id"))
	if err != nil {
		utils.RespondAppError(c, utils.Validationf("invalid session id"))
		return
	}

	var req struct {
		PaymentType string  `json:"payment_type" binding:"required"`
		DinerName   string  `json:"diner_name"`
		Tip         float64 `json:"tip"`
		Subtotal    float64 `json:"subtotal"`
		Vat         float64 `json:"vat"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	scope, err := scopeFromRequest(req.PaymentType, req.DinerName)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	request, err := pc.Payments.RequestPayment(uint(sessionID), scope, req.Tip, req.Subtotal, req.Vat)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.Printf("Payment requested for session %d (%s)", sessionID, scope.Type)
	utils.RespondJSON(c, http.StatusOK, "Payment requested", request)
}

// CompletePayment -> staff menyelesaikan pembayaran setelah menerima uang.
// Submit duplikat mengembalikan receipt yang sama, tanpa efek samping ulang.
func (pc *PaymentController) CompletePayment(c *gin.Context) {
	sessionID, err := strconv.Atoi(c.Param("session_id"))
	if err != nil {
		utils.RespondAppError(c, utils.Validationf("invalid session id"))
		return
	}

	var req struct {
		PaymentType string `json:"payment_type" binding:"required"`
		DinerName   string `json:"diner_name"`
		Method      string `json:"method" binding:"required"` // cash, qris, card
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	scope, err := scopeFromRequest(req.PaymentType, req.DinerName)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var staffID uint
	if v, exists := c.Get("user_id"); exists {
		if id, ok := v.(uint); ok {
			staffID = id
		}
	}

	receipt, err := pc.Payments.CompletePayment(uint(sessionID), scope, req.Method, staffID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.Printf("Payment completed for session %d (receipt %s)", sessionID, receipt.ReceiptNumber)
	utils.RespondJSON(c, http.StatusOK, "Payment completed", receipt)
}

// GetPaymentStatus -> status pembayaran session untuk polling client
func (pc *PaymentController) GetPaymentStatus(c *gin.Context) {
	sessionID, err := strconv.Atoi(c.Param("session_id"))
	if err != nil {
		utils.RespondAppError(c, utils.Validationf("invalid session id"))
		return
	}

	info, err := pc.Payments.GetPaymentStatus(uint(sessionID))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Payment status", info)
}

// GetSessionReceipts -> receipt yang sudah terbit untuk satu session
func (pc *PaymentController) GetSessionReceipts(c *gin.Context) {
	sessionID := c.Param("session_id")

	var receipts []models.Receipt
	if err := pc.DB.Where("session_id = ?", sessionID).
		Order("created_at asc").Find(&receipts).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Session receipts", receipts)
}
