package Controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/yeremiapane/table-order-app/controllers"
	"github.com/yeremiapane/table-order-app/models"
)

func setupPaymentRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	sessionCtrl := controllers.NewSessionController(db)
	orderCtrl := controllers.NewOrderController(db)
	paymentCtrl := controllers.NewPaymentController(db)
	router.POST("/sessions/join", sessionCtrl.CreateOrJoinSession)
	router.POST("/sessions/:session_id/orders", orderCtrl.AddCartItem)
	router.POST("/sessions/:session_id/orders/confirm", orderCtrl.ConfirmCart)
	router.POST("/sessions/:session_id/payment/request", paymentCtrl.RequestPayment)
	router.POST("/sessions/:session_id/payment/complete", paymentCtrl.CompletePayment)
	router.GET("/sessions/:session_id/payment", paymentCtrl.GetPaymentStatus)
	router.GET("/sessions/:session_id/receipts", paymentCtrl.GetSessionReceipts)
	return router
}

// seedBill -> session dengan satu order terkonfirmasi atas nama diner
func seedBill(t *testing.T, db *gorm.DB, router *gin.Engine, tableNumber, dinerName string) int {
	table := seedTestTable(t, db, tableNumber)
	menu := seedTestMenu(t, db, "Rendang", 35000)

	sessionID := joinSession(t, router, table.ID, dinerName)

	w := doJSON(t, router, "POST", "/sessions/"+itoa(sessionID)+"/orders",
		map[string]interface{}{"diner_name": dinerName, "menu_id": menu.ID, "quantity": 1})
	assert.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, router, "POST", "/sessions/"+itoa(sessionID)+"/orders/confirm", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	return sessionID
}

func TestPaymentRequestEndpoint(t *testing.T) {
	db := setupTestDB(t)
	router := setupPaymentRouter(db)
	sessionID := seedBill(t, db, router, "A1", "Alice")

	w := doJSON(t, router, "POST", "/sessions/"+itoa(sessionID)+"/payment/request",
		map[string]interface{}{
			"payment_type": "individual",
			"diner_name":   "Alice",
			"subtotal":     35000,
			"tip":          5000,
			"vat":          3850,
		})
	assert.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, 43850.0, data["total"])

	// Status berubah ke pending dan tercatat siapa yang meminta.
	w = doJSON(t, router, "GET", "/sessions/"+itoa(sessionID)+"/payment", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	status := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "pending", status["payment_status"])
	assert.Equal(t, "Alice", status["payment_requested_by"])

	// Request dari diner lain selagi pending -> 409.
	w = doJSON(t, router, "POST", "/sessions/"+itoa(sessionID)+"/payment/request",
		map[string]interface{}{"payment_type": "table", "subtotal": 35000})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Tipe pembayaran tak dikenal -> 400.
	w = doJSON(t, router, "POST", "/sessions/"+itoa(sessionID)+"/payment/request",
		map[string]interface{}{"payment_type": "barter", "subtotal": 35000})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentCompleteEndpoint(t *testing.T) {
	db := setupTestDB(t)
	router := setupPaymentRouter(db)
	sessionID := seedBill(t, db, router, "B2", "Alice")

	// Complete tanpa request pending -> 409.
	w := doJSON(t, router, "POST", "/sessions/"+itoa(sessionID)+"/payment/complete",
		map[string]interface{}{"payment_type": "table", "method": "cash"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, "POST", "/sessions/"+itoa(sessionID)+"/payment/request",
		map[string]interface{}{"payment_type": "table", "subtotal": 35000})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "POST", "/sessions/"+itoa(sessionID)+"/payment/complete",
		map[string]interface{}{"payment_type": "table", "method": "cash"})
	assert.Equal(t, http.StatusOK, w.Code)
	receipt := parseResponse(t, w)["data"].(map[string]interface{})
	receiptNumber := receipt["receipt_number"].(string)
	assert.NotEmpty(t, receiptNumber)

	// Submit ganda mengembalikan receipt yang sama.
	w = doJSON(t, router, "POST", "/sessions/"+itoa(sessionID)+"/payment/complete",
		map[string]interface{}{"payment_type": "table", "method": "cash"})
	assert.Equal(t, http.StatusOK, w.Code)
	again := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, receiptNumber, again["receipt_number"])

	// Receipt bisa diambil kembali untuk halaman struk.
	w = doJSON(t, router, "GET", "/sessions/"+itoa(sessionID)+"/receipts", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	receipts := parseResponse(t, w)["data"].([]interface{})
	assert.Len(t, receipts, 1)

	var session models.Session
	db.First(&session, sessionID)
	assert.Equal(t, models.SessionStatusCompleted, session.Status)
}
