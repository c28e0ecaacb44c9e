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

// SessionService memegang lifecycle session per meja: klaim, roster diner,
// terminasi. Semua mutasi roster diserialisasi per session lewat row lock
// pada baris session (lihat AddOrRejoinDiner).
type SessionService struct {
	DB       *gorm.DB
	Audit    *AuditSink
	Notifier *Notifier
}

func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{
		DB:       db,
		Audit:    NewAuditSink(db),
		Notifier: NewNotifier(db),
	}
}

// BindSession mengklaim meja dan membuat session aktif dalam satu transaksi.
// Klaim memakai conditional update (occupied=false -> true) sehingga dua
// perangkat staff yang berebut meja yang sama hanya satu yang menang;
// yang kalah menerima Conflict.
func (s *SessionService) BindSession(tableID uint, staffID *uint, startedBy string) (*models.Session, error) {
	var session models.Session

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		pin := utils.GeneratePin()

		res := tx.Model(&models.Table{}).
			Where("id = ? AND occupied = ? AND is_active = ?", tableID, false, true).
			Updates(map[string]interface{}{
				"occupied":    true,
				"current_pin": pin,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var table models.Table
			if err := tx.First(&table, tableID).Error; err != nil {
				return utils.NotFoundf("table %d not found", tableID)
			}
			if !table.IsActive {
				return utils.Conflictf("table %s is not in service", table.TableNumber)
			}
			return utils.Conflictf("table %s is already occupied", table.TableNumber)
		}

		session = models.Session{
			TableID:       tableID,
			Status:        models.SessionStatusActive,
			StartedByName: startedBy,
			ServedByID:    staffID,
			PaymentStatus: models.PaymentStatusNone,
			StartedAt:     time.Now(),
		}
		// Rollback transaksi otomatis membatalkan klaim meja jika create gagal.
		if err := tx.Create(&session).Error; err != nil {
			return err
		}

		return tx.Model(&models.Table{}).
			Where("id = ?", tableID).
			Update("current_session_id", session.ID).Error
	})
	if err != nil {
		return nil, err
	}

	performedBy := startedBy
	if performedBy == "" {
		performedBy = "staff"
	}
	s.Audit.Record("session_bound", &session.ID,
		map[string]interface{}{"table_id": tableID}, performedBy)
	hub.BroadcastSessionUpdate(session)

	return &session, nil
}

// CreateOrJoinSession adalah jalur diner yang scan QR: jika meja sudah punya
// session aktif, diner bergabung; jika belum, session baru dibuat atas nama
// diner tersebut. isNew menandai session yang baru terbentuk.
func (s *SessionService) CreateOrJoinSession(tableID uint, dinerName string) (*models.Session, *models.Diner, bool, error) {
	var table models.Table
	if err := s.DB.First(&table, tableID).Error; err != nil {
		return nil, nil, false, utils.NotFoundf("table %d not found", tableID)
	}

	if table.Occupied && table.CurrentSessionID != nil {
		diner, err := s.AddOrRejoinDiner(*table.CurrentSessionID, dinerName)
		if err != nil {
			return nil, nil, false, err
		}
		var session models.Session
		if err := s.DB.First(&session, *table.CurrentSessionID).Error; err != nil {
			return nil, nil, false, err
		}
		return &session, diner, false, nil
	}

	session, err := s.BindSession(tableID, nil, dinerName)
	if err != nil {
		// Kalah race klaim: session orang lain baru saja terbentuk, coba join.
		if utils.KindOf(err) == utils.KindConflict {
			if jerr := s.DB.First(&table, tableID).Error; jerr == nil && table.CurrentSessionID != nil {
				diner, derr := s.AddOrRejoinDiner(*table.CurrentSessionID, dinerName)
				if derr != nil {
					return nil, nil, false, derr
				}
				var joined models.Session
				if serr := s.DB.First(&joined, *table.CurrentSessionID).Error; serr != nil {
					return nil, nil, false, serr
				}
				return &joined, diner, false, nil
			}
		}
		return nil, nil, false, err
	}

	diner, err := s.AddOrRejoinDiner(session.ID, dinerName)
	if err != nil {
		return nil, nil, false, err
	}
	return session, diner, true, nil
}

// AddOrRejoinDiner menambahkan diner baru atau mengaktifkan kembali diner lama
// dengan nama yang sama (case-insensitive). Read-modify-write roster
// diserialisasi dengan SELECT ... FOR UPDATE pada baris session, supaya dua
// diner yang join bersamaan tidak saling menimpa.
func (s *SessionService) AddOrRejoinDiner(sessionID uint, name string) (*models.Diner, error) {
	lower := models.NormalizeDinerName(name)
	if lower == "" {
		return nil, utils.Validationf("diner name is required")
	}

	var diner models.Diner
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var session models.Session
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&session, sessionID).Error; err != nil {
			return utils.NotFoundf("session %d not found", sessionID)
		}
		if session.Status != models.SessionStatusActive {
			return utils.Conflictf("session is not active")
		}

		var existing models.Diner
		err := tx.Where("session_id = ? AND name_lower = ?", sessionID, lower).
			First(&existing).Error
		switch {
		case err == nil && existing.IsActive:
			return utils.Conflictf("name %q is already taken at this table", name)
		case err == nil:
			// Returning user: aktifkan kembali record yang sama.
			existing.IsActive = true
			existing.LastActive = time.Now()
			existing.LogoutTime = nil
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			diner = existing
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			diner = models.Diner{
				SessionID:  sessionID,
				Name:       name,
				NameLower:  lower,
				IsActive:   true,
				LastActive: time.Now(),
			}
			return tx.Create(&diner).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	hub.BroadcastDinerJoined(diner)
	return &diner, nil
}

// TouchDiner memperbarui last_active; dipanggil saat ada aktivitas user
// (perubahan cart, polling). Tidak punya efek samping lain.
func (s *SessionService) TouchDiner(sessionID, dinerID uint) error {
	res := s.DB.Model(&models.Diner{}).
		Where("id = ? AND session_id = ?", dinerID, sessionID).
		Update("last_active", time.Now())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.NotFoundf("diner %d not found in session %d", dinerID, sessionID)
	}
	return nil
}

// DeactivateDiner menonaktifkan diner (logout manual atau sapuan reaper).
func (s *SessionService) DeactivateDiner(sessionID, dinerID uint, reason string) error {
	res := s.DB.Model(&models.Diner{}).
		Where("id = ? AND session_id = ?", dinerID, sessionID).
		Updates(map[string]interface{}{
			"is_active":   false,
			"logout_time": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.NotFoundf("diner %d not found in session %d", dinerID, sessionID)
	}

	s.Audit.Record("diner_deactivated", &sessionID,
		map[string]interface{}{"diner_id": dinerID, "reason": reason}, "system")
	return nil
}

// TerminateSession menutup session (completed/cancelled) dan melepaskan meja
// dalam satu transaksi.
func (s *SessionService) TerminateSession(sessionID uint, outcome models.SessionStatus) (*models.Session, error) {
	if outcome != models.SessionStatusCompleted && outcome != models.SessionStatusCancelled {
		return nil, utils.Validationf("invalid session outcome %q", outcome)
	}

	var session models.Session
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&session, sessionID).Error; err != nil {
			return utils.NotFoundf("session %d not found", sessionID)
		}
		if session.Status != models.SessionStatusActive {
			return utils.Conflictf("session is already %s", session.Status)
		}

		now := time.Now()
		session.Status = outcome
		session.EndedAt = &now
		if err := tx.Save(&session).Error; err != nil {
			return err
		}

		return clearTable(tx, session.TableID, sessionID)
	})
	if err != nil {
		return nil, err
	}

	s.Audit.Record("session_terminated", &sessionID,
		map[string]interface{}{"outcome": outcome}, "staff")
	hub.BroadcastSessionUpdate(session)

	return &session, nil
}

// clearTable melepaskan meja yang terikat ke session tertentu.
// Predikat current_session_id menjaga agar klaim baru tidak ikut terhapus.
func clearTable(tx *gorm.DB, tableID, sessionID uint) error {
	return tx.Model(&models.Table{}).
		Where("id = ? AND current_session_id = ?", tableID, sessionID).
		Updates(map[string]interface{}{
			"occupied":           false,
			"current_session_id": nil,
			"current_pin":        nil,
		}).Error
}
