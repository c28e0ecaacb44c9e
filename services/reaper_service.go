package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/table-order-app/models"
	"github.com/yeremiapane/table-order-app/utils"
)

// ReaperService adalah batch process di luar jalur request dengan dua tugas:
// menonaktifkan diner yang idle melewati timeout dan menghapus data kedaluwarsa
// (order cart dan session non-aktif) dalam batch terbatas.
type ReaperService struct {
	DB    *gorm.DB
	Audit *AuditSink

	Interval     time.Duration // jeda antar run terjadwal
	DinerTimeout time.Duration // idle sebelum diner dinonaktifkan
	Retention    time.Duration // umur minimum data sebelum dihapus
	BatchSize    int           // baris per batch delete
	BatchDelay   time.Duration // jeda antar batch agar store tidak jenuh
	RunBudget    time.Duration // anggaran wall-clock satu run purge

	stopChan chan struct{}
}

// ReaperReport merangkum satu run.
type ReaperReport struct {
	DinersDeactivated int64 `json:"diners_deactivated"`
	SessionsSwept     int   `json:"sessions_swept"`
	CartOrdersPurged  int64 `json:"cart_orders_purged"`
	SessionsPurged    int64 `json:"sessions_purged"`
	BudgetExhausted   bool  `json:"budget_exhausted"`
}

func NewReaperService(db *gorm.DB) *ReaperService {
	return &ReaperService{
		DB:           db,
		Audit:        NewAuditSink(db),
		Interval:     1 * time.Hour,
		DinerTimeout: 2 * time.Hour,
		Retention:    24 * time.Hour,
		BatchSize:    100,
		BatchDelay:   250 * time.Millisecond,
		RunBudget:    30 * time.Second,
		stopChan:     make(chan struct{}),
	}
}

// Start menjalankan reaper pada ticker sampai Stop dipanggil.
func (r *ReaperService) Start() {
	go func() {
		ticker := time.NewTicker(r.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := r.RunOnce(); err != nil {
					utils.ErrorLogger.Printf("Reaper run failed: %v", err)
				}
			case <-r.stopChan:
				return
			}
		}
	}()
	utils.InfoLogger.Println("Reaper started")
}

func (r *ReaperService) Stop() {
	close(r.stopChan)
}

// RunOnce menjalankan kedua tugas sekali; juga dipakai endpoint trigger manual.
// Idempotent: run ulang tanpa aktivitas baru tidak mengubah apa pun lagi.
func (r *ReaperService) RunOnce() (ReaperReport, error) {
	report := ReaperReport{}

	r.sweepStaleDiners(&report)
	r.purgeExpired(&report)

	// Satu entri audit per run, bukan per diner.
	r.Audit.Record("reaper_run", nil, report, "reaper")
	utils.InfoLogger.Printf("Reaper run: %d diners deactivated across %d sessions, %d cart orders purged, %d sessions purged",
		report.DinersDeactivated, report.SessionsSwept, report.CartOrdersPurged, report.SessionsPurged)

	return report, nil
}

// sweepStaleDiners menonaktifkan diner aktif yang idle melewati DinerTimeout,
// satu pass atas semua session aktif.
func (r *ReaperService) sweepStaleDiners(report *ReaperReport) {
	cutoff := time.Now().Add(-r.DinerTimeout)
	now := time.Now()

	var sessions []models.Session
	err := utils.WithRetry(func() error {
		return r.DB.Where("status = ?", models.SessionStatusActive).Find(&sessions).Error
	})
	if err != nil {
		utils.ErrorLogger.Printf("Reaper: listing active sessions failed: %v", err)
		return
	}
	report.SessionsSwept = len(sessions)

	for _, session := range sessions {
		sessionID := session.ID
		err := utils.WithRetry(func() error {
			res := r.DB.Model(&models.Diner{}).
				Where("session_id = ? AND is_active = ? AND last_active < ?",
					sessionID, true, cutoff).
				Updates(map[string]interface{}{
					"is_active":   false,
					"logout_time": now,
				})
			if res.Error != nil {
				return res.Error
			}
			report.DinersDeactivated += res.RowsAffected
			return nil
		})
		if err != nil {
			// Lanjut ke session berikutnya; run terjadwal tidak batal.
			utils.ErrorLogger.Printf("Reaper: diner sweep failed for session %d: %v", sessionID, err)
		}
	}
}

// purgeExpired menghapus order cart dan session non-aktif yang lebih tua dari
// Retention. Batch dibatasi BatchSize dengan jeda antar batch, dan run berhenti
// begitu RunBudget habis: purge parsial aman karena predikatnya murni umur,
// run berikutnya melanjutkan dari sisa yang ada.
func (r *ReaperService) purgeExpired(report *ReaperReport) {
	cutoff := time.Now().Add(-r.Retention)
	deadline := time.Now().Add(r.RunBudget)

	report.CartOrdersPurged = r.purgeCartOrders(cutoff, deadline, report)
	if !report.BudgetExhausted {
		report.SessionsPurged = r.purgeInactiveSessions(cutoff, deadline, report)
	}
}

func (r *ReaperService) purgeCartOrders(cutoff, deadline time.Time, report *ReaperReport) int64 {
	var purged int64
	for {
		if time.Now().After(deadline) {
			report.BudgetExhausted = true
			return purged
		}

		var ids []uint
		err := utils.WithRetry(func() error {
			return r.DB.Model(&models.Order{}).
				Where("status = ? AND created_at < ?", models.OrderStatusCart, cutoff).
				Limit(r.BatchSize).
				Pluck("id", &ids).Error
		})
		if err != nil {
			utils.ErrorLogger.Printf("Reaper: cart purge select failed: %v", err)
			return purged
		}
		if len(ids) == 0 {
			return purged
		}

		err = utils.WithRetry(func() error {
			return r.DB.Where("id IN ?", ids).Delete(&models.Order{}).Error
		})
		if err != nil {
			utils.ErrorLogger.Printf("Reaper: cart purge delete failed: %v", err)
			return purged
		}
		purged += int64(len(ids))

		time.Sleep(r.BatchDelay)
	}
}

func (r *ReaperService) purgeInactiveSessions(cutoff, deadline time.Time, report *ReaperReport) int64 {
	var purged int64
	for {
		if time.Now().After(deadline) {
			report.BudgetExhausted = true
			return purged
		}

		var ids []uint
		err := utils.WithRetry(func() error {
			return r.DB.Model(&models.Session{}).
				Where("status != ? AND ended_at IS NOT NULL AND ended_at < ?",
					models.SessionStatusActive, cutoff).
				Limit(r.BatchSize).
				Pluck("id", &ids).Error
		})
		if err != nil {
			utils.ErrorLogger.Printf("Reaper: session purge select failed: %v", err)
			return purged
		}
		if len(ids) == 0 {
			return purged
		}

		// Anak-anak session dihapus dulu supaya tidak ada baris yatim.
		err = utils.WithRetry(func() error {
			return r.DB.Transaction(func(tx *gorm.DB) error {
				if err := tx.Where("session_id IN ?", ids).Delete(&models.Order{}).Error; err != nil {
					return err
				}
				if err := tx.Where("session_id IN ?", ids).Delete(&models.Diner{}).Error; err != nil {
					return err
				}
				if err := tx.Where("session_id IN ?", ids).Delete(&models.SplitBill{}).Error; err != nil {
					return err
				}
				if err := tx.Where("session_id IN ?", ids).Delete(&models.Notification{}).Error; err != nil {
					return err
				}
				return tx.Where("id IN ?", ids).Delete(&models.Session{}).Error
			})
		})
		if err != nil {
			utils.ErrorLogger.Printf("Reaper: session purge delete failed: %v", err)
			return purged
		}
		purged += int64(len(ids))

		time.Sleep(r.BatchDelay)
	}
}
