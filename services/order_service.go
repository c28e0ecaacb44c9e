package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeremiapane/table-order-app/hub"
	"github.com/yeremiapane/table-order-app/models"
	"github.com/yeremiapane/table-order-app/utils"
)

// OrderService memegang state machine tiap baris pesanan:
// cart -> placed -> waiting -> preparing -> ready -> served -> {paid, voided}.
// Setiap mutasi status lewat models.CanTransition.
type OrderService struct {
	DB       *gorm.DB
	Audit    *AuditSink
	Notifier *Notifier
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{
		DB:       db,
		Audit:    NewAuditSink(db),
		Notifier: NewNotifier(db),
	}
}

// CartItemOpts -> opsi tambahan saat menambah item ke cart
type CartItemOpts struct {
	Notes      string
	IsShared   bool
	IsTakeaway bool
}

// AddToCart membuat order berstatus cart. Harga menu saat ini dikunci sebagai
// UnitPrice supaya total historis stabil walau harga menu berubah.
func (s *OrderService) AddToCart(sessionID uint, dinerName string, menuID uint, quantity int, opts CartItemOpts) (*models.Order, error) {
	if quantity < 1 {
		return nil, utils.Validationf("quantity must be at least 1")
	}
	lower := models.NormalizeDinerName(dinerName)
	if lower == "" {
		return nil, utils.Validationf("diner name is required")
	}

	var session models.Session
	if err := s.DB.First(&session, sessionID).Error; err != nil {
		return nil, utils.NotFoundf("session %d not found", sessionID)
	}
	if session.Status != models.SessionStatusActive {
		return nil, utils.Conflictf("session is not active")
	}

	var menu models.Menu
	if err := s.DB.First(&menu, menuID).Error; err != nil {
		return nil, utils.NotFoundf("menu %d not found", menuID)
	}
	if !menu.IsAvailable {
		return nil, utils.Conflictf("menu %s is not available", menu.Name)
	}

	order := models.Order{
		SessionID:      sessionID,
		MenuID:         menu.ID,
		DinerName:      dinerName,
		DinerNameLower: lower,
		Quantity:       quantity,
		UnitPrice:      menu.Price,
		Notes:          opts.Notes,
		IsShared:       opts.IsShared,
		IsTakeaway:     opts.IsTakeaway,
		Status:         models.OrderStatusCart,
	}
	if err := s.DB.Create(&order).Error; err != nil {
		return nil, err
	}

	// Aktivitas cart menyegarkan last_active diner.
	s.DB.Model(&models.Diner{}).
		Where("session_id = ? AND name_lower = ?", sessionID, lower).
		Update("last_active", time.Now())

	return &order, nil
}

// ConfirmCart memindahkan semua order cart di session ke waiting dalam satu
// batch. Idempotent: tanpa item cart hasilnya slice kosong, bukan error.
func (s *OrderService) ConfirmCart(sessionID uint) ([]models.Order, error) {
	var confirmed []models.Order

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var carts []models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("session_id = ? AND status = ?", sessionID, models.OrderStatusCart).
			Find(&carts).Error; err != nil {
			return err
		}
		if len(carts) == 0 {
			confirmed = []models.Order{}
			return nil
		}

		ids := make([]uint, 0, len(carts))
		for _, o := range carts {
			ids = append(ids, o.ID)
		}

		if err := tx.Model(&models.Order{}).
			Where("id IN ?", ids).
			Update("status", models.OrderStatusWaiting).Error; err != nil {
			return err
		}

		return tx.Where("id IN ?", ids).Find(&confirmed).Error
	})
	if err != nil {
		return nil, err
	}

	if len(confirmed) > 0 {
		s.Audit.Record("cart_confirmed", &sessionID,
			map[string]interface{}{"order_count": len(confirmed)}, "diner")
		for _, o := range confirmed {
			hub.BroadcastOrderUpdate(o)
		}
	}

	return confirmed, nil
}

// AdvanceKitchenStatus menggerakkan order satu langkah maju di alur dapur
// (waiting -> preparing -> ready -> served). Transisi lain ditolak dengan
// InvalidTransition. Masuk ke ready memicu notifikasi kitchen-ready.
func (s *OrderService) AdvanceKitchenStatus(orderID uint, next models.OrderStatus) (*models.Order, error) {
	var order models.Order

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, orderID).Error; err != nil {
			return utils.NotFoundf("order %d not found", orderID)
		}

		if !order.Status.CanAdvanceKitchen(next) {
			return utils.InvalidTransitionf("cannot move order from %s to %s", order.Status, next)
		}

		order.Status = next
		return tx.Save(&order).Error
	})
	if err != nil {
		return nil, err
	}

	hub.BroadcastOrderUpdate(order)
	if next == models.OrderStatusReady {
		s.Notifier.KitchenReady(order)
	}

	return &order, nil
}

// VoidOrder membatalkan order dari status pre-paid mana pun; dipakai manager
// untuk koreksi bill. Split bill aktif di order tersebut ikut ditutup.
func (s *OrderService) VoidOrder(orderID uint, reason string) (*models.Order, error) {
	var order models.Order

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, orderID).Error; err != nil {
			return utils.NotFoundf("order %d not found", orderID)
		}

		if order.Status.IsTerminal() {
			return utils.InvalidTransitionf("order is already %s", order.Status)
		}

		now := time.Now()
		order.Status = models.OrderStatusVoided
		order.VoidedAt = &now
		order.VoidReason = reason
		if order.SplitBillID != nil {
			if err := tx.Model(&models.SplitBill{}).
				Where("id = ? AND status = ?", *order.SplitBillID, models.SplitBillStatusActive).
				Update("status", models.SplitBillStatusCompleted).Error; err != nil {
				return err
			}
			order.SplitBillID = nil
		}
		return tx.Save(&order).Error
	})
	if err != nil {
		return nil, err
	}

	s.Audit.Record("order_voided", &order.SessionID,
		map[string]interface{}{"order_id": orderID, "reason": reason}, "manager")
	hub.BroadcastOrderUpdate(order)

	return &order, nil
}

// ListOrders -> order dalam session, opsional difilter status
func (s *OrderService) ListOrders(sessionID uint, statusFilter []models.OrderStatus) ([]models.Order, error) {
	var session models.Session
	if err := s.DB.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundf("session %d not found", sessionID)
		}
		return nil, err
	}

	query := s.DB.Preload("Menu").Where("session_id = ?", sessionID)
	if len(statusFilter) > 0 {
		query = query.Where("status IN ?", statusFilter)
	}

	var orders []models.Order
	if err := query.Order("created_at asc").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// PurgeStaleCart menghapus order cart yang lebih tua dari olderThan tanpa
// menyentuh status lain, penjaga terhadap cart menumpuk dari session terlantar.
func (s *OrderService) PurgeStaleCart(sessionID uint, olderThan time.Time) (int64, error) {
	res := s.DB.Where("session_id = ? AND status = ? AND created_at < ?",
		sessionID, models.OrderStatusCart, olderThan).
		Delete(&models.Order{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
