package hub

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/yeremiapane/table-order-app/models"
)

// Event types
const (
	EventTableUpdate      = "table_update"
	EventSessionUpdate    = "session_update"
	EventDinerJoined      = "diner_joined"
	EventOrderUpdate      = "order_update"
	EventKitchenReady     = "kitchen_ready"
	EventPaymentRequested = "payment_requested"
	EventPaymentCompleted = "payment_completed"
	EventReceiptRedirect  = "receipt_redirect"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub menampung seluruh client websocket (diner, staff, admin) untuk broadcast
// event lifecycle session/order/payment.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var eventHub = Hub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient -> menambahkan connection ke set dengan role
func RegisterClient(conn *websocket.Conn, role string) {
	eventHub.mutex.Lock()
	defer eventHub.mutex.Unlock()
	eventHub.clients[conn] = role
}

// UnregisterClient -> melepaskan connection
func UnregisterClient(conn *websocket.Conn) {
	eventHub.mutex.Lock()
	defer eventHub.mutex.Unlock()
	delete(eventHub.clients, conn)
	conn.Close()
}

// BroadcastTableUpdate -> perubahan status meja (claim/release)
func BroadcastTableUpdate(table models.Table) {
	broadcast(Message{
		Event: EventTableUpdate,
		Data:  table,
	})
}

// BroadcastSessionUpdate -> perubahan status session
func BroadcastSessionUpdate(session models.Session) {
	broadcast(Message{
		Event: EventSessionUpdate,
		Data:  session,
	})
}

// BroadcastDinerJoined -> diner baru/rejoin masuk session
func BroadcastDinerJoined(diner models.Diner) {
	broadcast(Message{
		Event: EventDinerJoined,
		Data:  diner,
	})
}

// BroadcastOrderUpdate -> perubahan status order
func BroadcastOrderUpdate(order models.Order) {
	broadcast(Message{
		Event: EventOrderUpdate,
		Data:  order,
	})
}

// BroadcastKitchenReady -> order siap disajikan
func BroadcastKitchenReady(order models.Order) {
	broadcast(Message{
		Event: EventKitchenReady,
		Data:  order,
	})
}

// BroadcastPaymentRequested -> diner/meja meminta pembayaran, ditujukan ke staff
func BroadcastPaymentRequested(notif models.Notification) {
	broadcast(Message{
		Event: EventPaymentRequested,
		Data:  notif,
	})
}

// BroadcastPaymentCompleted -> pembayaran selesai
func BroadcastPaymentCompleted(receipt models.Receipt) {
	broadcast(Message{
		Event: EventPaymentCompleted,
		Data:  receipt,
	})
}

// BroadcastReceiptRedirect -> arahkan client diner ke halaman receipt
func BroadcastReceiptRedirect(sessionID uint, receiptNumber string) {
	broadcast(Message{
		Event: EventReceiptRedirect,
		Data: map[string]interface{}{
			"session_id":     sessionID,
			"receipt_number": receiptNumber,
		},
	})
}

// broadcast -> fungsi internal untuk mengirim pesan ke semua client
func broadcast(msg Message) {
	eventHub.mutex.Lock()
	defer eventHub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	for conn := range eventHub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error sending message to client: %v", err)
			continue
		}
	}
}
