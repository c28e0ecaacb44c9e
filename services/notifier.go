package services

import (
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/yeremiapane/table-order-app/hub"
	"github.com/yeremiapane/table-order-app/models"
	"github.com/yeremiapane/table-order-app/utils"
)

// Notifier mencatat notification dan menyiarkannya lewat websocket hub.
// Sama seperti AuditSink: kegagalan dicatat di log, tidak pernah diteruskan
// ke operasi bisnis yang memicunya.
type Notifier struct {
	DB *gorm.DB
}

func NewNotifier(db *gorm.DB) *Notifier {
	return &Notifier{DB: db}
}

func (n *Notifier) create(sessionID uint, notifType, title, message, priority, status string, metadata interface{}) *models.Notification {
	var metaStr string
	if metadata != nil {
		if data, err := json.Marshal(metadata); err == nil {
			metaStr = string(data)
		}
	}

	notif := models.Notification{
		SessionID: &sessionID,
		Type:      notifType,
		Title:     title,
		Message:   message,
		Priority:  priority,
		Status:    status,
		Metadata:  metaStr,
	}

	if err := n.DB.Create(&notif).Error; err != nil {
		utils.ErrorLogger.Printf("Notification create failed (type=%s session=%d): %v", notifType, sessionID, err)
		return nil
	}
	return &notif
}

// KitchenReady -> order siap diantar ke meja
func (n *Notifier) KitchenReady(order models.Order) {
	n.create(order.SessionID, models.NotificationKitchenReady,
		"Order ready",
		fmt.Sprintf("Order #%d siap disajikan", order.ID),
		"high", models.NotificationStatusCompleted,
		map[string]interface{}{"order_id": order.ID, "menu_id": order.MenuID})
	hub.BroadcastKitchenReady(order)
}

// PaymentRequested -> permintaan pembayaran, ditujukan ke staff
func (n *Notifier) PaymentRequested(session models.Session, scope PaymentScope, total float64) {
	who := "the table"
	if scope.Type == models.PaymentTypeIndividual {
		who = scope.DinerName
	}
	notif := n.create(session.ID, models.NotificationPaymentRequested,
		"Payment requested",
		fmt.Sprintf("Payment requested by %s (total %s)", who, utils.FormatCurrency(total)),
		"high", models.NotificationStatusPending,
		map[string]interface{}{
			"payment_type": scope.Type,
			"diner_name":   scope.DinerName,
			"total":        total,
		})
	if notif != nil {
		hub.BroadcastPaymentRequested(*notif)
	}
}

// PaymentCompleted -> pembayaran selesai dicatat staff
func (n *Notifier) PaymentCompleted(receipt models.Receipt) {
	n.create(receipt.SessionID, models.NotificationPaymentCompleted,
		"Payment completed",
		fmt.Sprintf("Payment %s completed (receipt %s)", receipt.PaymentType, receipt.ReceiptNumber),
		"normal", models.NotificationStatusCompleted,
		map[string]interface{}{"receipt_number": receipt.ReceiptNumber, "total": receipt.Total})
	hub.BroadcastPaymentCompleted(receipt)
}

// ReceiptRedirect -> arahkan semua client diner di session ke halaman receipt
func (n *Notifier) ReceiptRedirect(sessionID uint, receiptNumber string) {
	n.create(sessionID, models.NotificationReceiptRedirect,
		"Receipt",
		"Session settled, redirecting to receipt",
		"high", models.NotificationStatusCompleted,
		map[string]interface{}{"receipt_number": receiptNumber})
	hub.BroadcastReceiptRedirect(sessionID, receiptNumber)
}
