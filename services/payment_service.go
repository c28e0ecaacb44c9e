package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeremiapane/table-order-app/hub"
	"github.com/yeremiapane/table-order-app/models"
	"github.com/yeremiapane/table-order-app/utils"
)

// PaymentScope memilih cakupan pembayaran: satu diner atau seluruh meja.
// Satu inti transaksional dipakai untuk keduanya, hanya efek samping per
// scope yang berbeda.
type PaymentScope struct {
	Type      models.PaymentType
	DinerName string // hanya untuk individual
}

func TableScope() PaymentScope {
	return PaymentScope{Type: models.PaymentTypeTable}
}

func IndividualScope(dinerName string) PaymentScope {
	return PaymentScope{Type: models.PaymentTypeIndividual, DinerName: dinerName}
}

// PaymentRequest adalah hasil requestPayment yang dikembalikan ke caller.
type PaymentRequest struct {
	SessionID   uint               `json:"session_id"`
	PaymentType models.PaymentType `json:"payment_type"`
	DinerName   string             `json:"diner_name,omitempty"`
	Subtotal    float64            `json:"subtotal"`
	Tip         float64            `json:"tip"`
	Vat         float64            `json:"vat"`
	Total       float64            `json:"total"`
	RequestedAt time.Time          `json:"requested_at"`
}

// PaymentStatusInfo -> snapshot status pembayaran session untuk polling client
type PaymentStatusInfo struct {
	SessionID          uint                 `json:"session_id"`
	PaymentStatus      models.PaymentStatus `json:"payment_status"`
	PaymentRequestedBy *string              `json:"payment_requested_by,omitempty"`
	PaymentRequestedAt *time.Time           `json:"payment_requested_at,omitempty"`
	PaymentCompletedAt *time.Time           `json:"payment_completed_at,omitempty"`
	FinalTotal         float64              `json:"final_total"`
}

// PaymentService mengoordinasikan siklus request/complete pembayaran beserta
// efek sampingnya (bersihkan meja, nonaktifkan diner, hapus/tandai order).
type PaymentService struct {
	DB       *gorm.DB
	Audit    *AuditSink
	Notifier *Notifier
}

func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{
		DB:       db,
		Audit:    NewAuditSink(db),
		Notifier: NewNotifier(db),
	}
}

// RequestPayment menandai session meminta pembayaran (none -> pending).
// Permintaan kedua ditolak Conflict, kecuali diner yang sama mengulang
// permintaannya sendiri (idempotent).
func (s *PaymentService) RequestPayment(sessionID uint, scope PaymentScope, tip, subtotal, vat float64) (*PaymentRequest, error) {
	if scope.Type == models.PaymentTypeIndividual && models.NormalizeDinerName(scope.DinerName) == "" {
		return nil, utils.Validationf("diner name is required for individual payment")
	}
	if subtotal < 0 || tip < 0 || vat < 0 {
		return nil, utils.Validationf("amounts must not be negative")
	}

	total := utils.RoundCurrency(subtotal + tip + vat)
	var session models.Session
	var request PaymentRequest

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&session, sessionID).Error; err != nil {
			return utils.NotFoundf("session %d not found", sessionID)
		}
		if session.Status != models.SessionStatusActive {
			return utils.Conflictf("session is not active")
		}

		now := time.Now()
		switch session.PaymentStatus {
		case models.PaymentStatusCompleted:
			return utils.Conflictf("payment for this session is already completed")
		case models.PaymentStatusPending:
			// Re-request dari diner yang sama bersifat idempotent.
			sameDiner := scope.Type == models.PaymentTypeIndividual &&
				session.PaymentRequestedBy != nil &&
				models.NormalizeDinerName(*session.PaymentRequestedBy) == models.NormalizeDinerName(scope.DinerName)
			sameTable := scope.Type == models.PaymentTypeTable && session.PaymentRequestedBy == nil
			if !sameDiner && !sameTable {
				return utils.Conflictf("a payment request is already pending for this session")
			}
		case models.PaymentStatusNone:
			session.PaymentStatus = models.PaymentStatusPending
			session.PaymentRequestedAt = &now
			if scope.Type == models.PaymentTypeIndividual {
				name := scope.DinerName
				session.PaymentRequestedBy = &name
			} else {
				session.PaymentRequestedBy = nil
			}
		}

		session.FinalTotal = total
		if err := tx.Save(&session).Error; err != nil {
			return err
		}

		request = PaymentRequest{
			SessionID:   sessionID,
			PaymentType: scope.Type,
			DinerName:   scope.DinerName,
			Subtotal:    subtotal,
			Tip:         tip,
			Vat:         vat,
			Total:       total,
			RequestedAt: *session.PaymentRequestedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Notifier.PaymentRequested(session, scope, total)
	s.Audit.Record("payment_requested", &sessionID, request, requesterName(scope))

	return &request, nil
}

// CompletePayment menyelesaikan pembayaran. Seluruh mutasi session/meja/order/
// diner berjalan dalam satu transaksi; pembaca konkuren melihat pre- atau
// post-state, tidak pernah parsial. Submit duplikat mengembalikan receipt
// yang sudah tersimpan, tanpa efek samping ulang.
func (s *PaymentService) CompletePayment(sessionID uint, scope PaymentScope, method string, completedBy uint) (*models.Receipt, error) {
	if method == "" {
		return nil, utils.Validationf("payment method is required")
	}
	if scope.Type == models.PaymentTypeIndividual && models.NormalizeDinerName(scope.DinerName) == "" {
		return nil, utils.Validationf("diner name is required for individual payment")
	}

	var receipt models.Receipt
	var duplicate bool
	var finalized bool

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var session models.Session
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&session, sessionID).Error; err != nil {
			return utils.NotFoundf("session %d not found", sessionID)
		}

		// Short-circuit idempotent: receipt untuk scope ini sudah ada.
		if prior, ok := s.findReceipt(tx, sessionID, scope); ok {
			receipt = *prior
			duplicate = true
			return nil
		}

		if session.PaymentStatus != models.PaymentStatusPending {
			return utils.Conflictf("no pending payment for this session")
		}

		now := time.Now()
		receipt = models.Receipt{
			SessionID:     sessionID,
			ReceiptNumber: uuid.NewString(),
			PaymentType:   scope.Type,
			PaymentMethod: method,
			Subtotal:      session.FinalTotal,
			Total:         session.FinalTotal,
			CompletedByID: completedBy,
		}

		switch scope.Type {
		case models.PaymentTypeTable:
			if err := s.finalizeSession(tx, &session, now, completedBy); err != nil {
				return err
			}
			// Table payment: seluruh order session dihapus.
			if err := tx.Where("session_id = ?", sessionID).
				Delete(&models.Order{}).Error; err != nil {
				return err
			}
			finalized = true

		case models.PaymentTypeIndividual:
			name := scope.DinerName
			receipt.DinerName = &name
			lower := models.NormalizeDinerName(name)

			// Hanya order milik diner ini yang ditandai paid; sisanya tetap
			// menjadi bill meja.
			if err := tx.Model(&models.Order{}).
				Where("session_id = ? AND diner_name_lower = ? AND status NOT IN ?",
					sessionID, lower,
					[]models.OrderStatus{models.OrderStatusPaid, models.OrderStatusVoided}).
				Updates(map[string]interface{}{"status": models.OrderStatusPaid}).Error; err != nil {
				return err
			}

			var remaining int64
			if err := tx.Model(&models.Order{}).
				Where("session_id = ? AND status NOT IN ?", sessionID,
					[]models.OrderStatus{models.OrderStatusPaid, models.OrderStatusVoided}).
				Count(&remaining).Error; err != nil {
				return err
			}

			if remaining == 0 {
				// Diner terakhir sudah membayar: session selesai seperti
				// table payment, hanya saja order paid tetap tersimpan.
				if err := s.finalizeSession(tx, &session, now, completedBy); err != nil {
					return err
				}
				finalized = true
			} else {
				// Masih ada bill tersisa; buka kembali slot request berikutnya.
				session.PaymentStatus = models.PaymentStatusNone
				session.PaymentRequestedAt = nil
				session.PaymentRequestedBy = nil
				if err := tx.Save(&session).Error; err != nil {
					return err
				}
			}
		default:
			return utils.Validationf("unknown payment type %q", scope.Type)
		}

		return tx.Create(&receipt).Error
	})
	if err != nil {
		return nil, err
	}

	if duplicate {
		return &receipt, nil
	}

	s.Notifier.PaymentCompleted(receipt)
	if finalized {
		s.Notifier.ReceiptRedirect(sessionID, receipt.ReceiptNumber)
		if updated, err := s.loadTableBySession(sessionID); err == nil {
			hub.BroadcastTableUpdate(*updated)
		}
	}
	s.Audit.Record("payment_completed", &sessionID, map[string]interface{}{
		"payment_type":   scope.Type,
		"diner_name":     scope.DinerName,
		"method":         method,
		"receipt_number": receipt.ReceiptNumber,
	}, "staff")

	return &receipt, nil
}

// finalizeSession menutup session, melepaskan meja, menonaktifkan semua diner
// dan menandai notification payment-request yang masih pending sebagai selesai.
// Harus dipanggil di dalam transaksi CompletePayment.
func (s *PaymentService) finalizeSession(tx *gorm.DB, session *models.Session, now time.Time, completedBy uint) error {
	session.PaymentStatus = models.PaymentStatusCompleted
	session.PaymentCompletedAt = &now
	session.Status = models.SessionStatusCompleted
	session.EndedAt = &now
	if err := tx.Save(session).Error; err != nil {
		return err
	}

	if err := clearTable(tx, session.TableID, session.ID); err != nil {
		return err
	}

	if err := tx.Model(&models.Diner{}).
		Where("session_id = ? AND is_active = ?", session.ID, true).
		Updates(map[string]interface{}{
			"is_active":   false,
			"logout_time": now,
		}).Error; err != nil {
		return err
	}

	return tx.Model(&models.Notification{}).
		Where("session_id = ? AND type = ? AND status = ?",
			session.ID, models.NotificationPaymentRequested, models.NotificationStatusPending).
		Updates(map[string]interface{}{
			"status":       models.NotificationStatusCompleted,
			"completed_at": now,
			"completed_by": completedBy,
		}).Error
}

// findReceipt -> receipt yang sudah tersimpan untuk scope yang sama, jika ada
func (s *PaymentService) findReceipt(tx *gorm.DB, sessionID uint, scope PaymentScope) (*models.Receipt, bool) {
	query := tx.Where("session_id = ? AND payment_type = ?", sessionID, scope.Type)
	if scope.Type == models.PaymentTypeIndividual {
		query = query.Where("diner_name = ?", scope.DinerName)
	}

	var prior models.Receipt
	if err := query.First(&prior).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.ErrorLogger.Printf("Receipt lookup failed for session %d: %v", sessionID, err)
		}
		return nil, false
	}
	return &prior, true
}

// GetPaymentStatus -> status pembayaran session untuk polling diner/staff
func (s *PaymentService) GetPaymentStatus(sessionID uint) (*PaymentStatusInfo, error) {
	var session models.Session
	if err := s.DB.First(&session, sessionID).Error; err != nil {
		return nil, utils.NotFoundf("session %d not found", sessionID)
	}

	return &PaymentStatusInfo{
		SessionID:          session.ID,
		PaymentStatus:      session.PaymentStatus,
		PaymentRequestedBy: session.PaymentRequestedBy,
		PaymentRequestedAt: session.PaymentRequestedAt,
		PaymentCompletedAt: session.PaymentCompletedAt,
		FinalTotal:         session.FinalTotal,
	}, nil
}

func (s *PaymentService) loadTableBySession(sessionID uint) (*models.Table, error) {
	var session models.Session
	if err := s.DB.First(&session, sessionID).Error; err != nil {
		return nil, err
	}
	var table models.Table
	if err := s.DB.First(&table, session.TableID).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

func requesterName(scope PaymentScope) string {
	if scope.Type == models.PaymentTypeIndividual {
		return scope.DinerName
	}
	return "table"
}
