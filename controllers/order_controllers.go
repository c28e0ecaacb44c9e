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

type OrderController struct {
	DB     *gorm.DB
	Orders *services.OrderService
}

func NewOrderController(db *gorm.DB) *OrderController {
	return &OrderController{
		DB:     db,
		Orders: services.NewOrderService(db),
	}
}

// AddCartItem -> diner menambah item ke cart; harga menu dikunci saat ini juga
func (oc *OrderController) AddCartItem(c *gin.Context) {
	sessionID, err := strconv.Atoi(c.Param("session_id"))
	if err != nil {
		utils.RespondAppError(c, utils.Validationf("invalid session id"))
		return
	}

	var req struct {
		DinerName  string `json:"diner_name" binding:"required"`
		MenuID     uint   `json:"menu_id" binding:"required"`
		Quantity   int    `json:"quantity" binding:"required"`
		Notes      string `json:"notes"`
		IsShared   bool   `json:"is_shared"`
		IsTakeaway bool   `json:"is_takeaway"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.AddToCart(uint(sessionID), req.DinerName, req.MenuID, req.Quantity, services.CartItemOpts{
		Notes:      req.Notes,
		IsShared:   req.IsShared,
		IsTakeaway: req.IsTakeaway,
	})
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Item added to cart", order)
}

// ConfirmCart -> seluruh cart session masuk antrean dapur dalam satu batch.
// Cart kosong bukan error: responnya list kosong.
func (oc *OrderController) ConfirmCart(c *gin.Context) {
	sessionID, err := strconv.Atoi(c.Param("session_id"))
	if err != nil {
		utils.RespondAppError(c, utils.Validationf("invalid session id"))
		return
	}

	confirmed, err := oc.Orders.ConfirmCart(uint(sessionID))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.Printf("Session %d confirmed %d cart orders", sessionID, len(confirmed))
	utils.RespondJSON(c, http.StatusOK, "Cart confirmed", confirmed)
}

// ListOrders -> order session, opsional ?status=waiting,preparing
func (oc *OrderController) ListOrders(c *gin.Context) {
	sessionID, err := strconv.Atoi(c.Param("session_id"))
	if err != nil {
		utils.RespondAppError(c, utils.Validationf("invalid session id"))
		return
	}

	var filter []models.OrderStatus
	if raw := c.Query("status"); raw != "" {
		status, ok := models.ValidOrderStatus(raw)
		if !ok {
			utils.RespondAppError(c, utils.Validationf("unknown order status %q", raw))
			return
		}
		filter = append(filter, status)
	}

	orders, err := oc.Orders.ListOrders(uint(sessionID), filter)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// AdvanceKitchenStatus -> chef/staff menggerakkan order maju di alur dapur
func (oc *OrderController) AdvanceKitchenStatus(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondAppError(c, utils.Validationf("invalid order id"))
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	status, ok := models.ValidOrderStatus(req.Status)
	if !ok {
		utils.RespondAppError(c, utils.Validationf("unknown order status %q", req.Status))
		return
	}

	order, err := oc.Orders.AdvanceKitchenStatus(uint(orderID), status)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.Printf("Order %d advanced to %s", order.ID, order.Status)
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

// VoidOrder -> manager membatalkan order untuk koreksi bill
func (oc *OrderController) VoidOrder(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondAppError(c, utils.Validationf("invalid order id"))
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.VoidOrder(uint(orderID), req.Reason)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.Printf("Order %d voided: %s", order.ID, req.Reason)
	utils.RespondJSON(c, http.StatusOK, "Order voided", order)
}
