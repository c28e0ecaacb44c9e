package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/yeremiapane/table-order-app/models"
)

func newTestReaper(db *gorm.DB) *ReaperService {
	r := NewReaperService(db)
	r.BatchDelay = time.Millisecond
	return r
}

func TestReaperSweepsStaleDiners(t *testing.T) {
	db := setupServiceDB(t)
	sessionSvc := NewSessionService(db)
	reaper := newTestReaper(db)

	table := seedTable(t, db, "R1")
	session, staleDiner, _, err := sessionSvc.CreateOrJoinSession(table.ID, "Alice")
	assert.NoError(t, err)
	freshDiner, err := sessionSvc.AddOrRejoinDiner(session.ID, "Bob")
	assert.NoError(t, err)

	// Alice idle 3 jam, melewati timeout 2 jam.
	db.Model(&models.Diner{}).Where("id = ?", staleDiner.ID).
		Update("last_active", time.Now().Add(-3*time.Hour))

	report, err := reaper.RunOnce()
	assert.NoError(t, err)
	assert.Equal(t, int64(1), report.DinersDeactivated)
	assert.Equal(t, 1, report.SessionsSwept)

	var sweptDiner models.Diner
	db.First(&sweptDiner, staleDiner.ID)
	assert.False(t, sweptDiner.IsActive)
	assert.NotNil(t, sweptDiner.LogoutTime)

	var keptDiner models.Diner
	db.First(&keptDiner, freshDiner.ID)
	assert.True(t, keptDiner.IsActive)

	// Run kedua tanpa aktivitas baru: tidak ada yang berubah lagi.
	report, err = reaper.RunOnce()
	assert.NoError(t, err)
	assert.Equal(t, int64(0), report.DinersDeactivated)

	// Satu entri audit per run, bukan per diner.
	var auditRuns int64
	db.Model(&models.AuditLog{}).Where("action = ?", "reaper_run").Count(&auditRuns)
	assert.Equal(t, int64(2), auditRuns)
}

func TestReaperPurgesExpiredCartOrders(t *testing.T) {
	db := setupServiceDB(t)
	sessionSvc := NewSessionService(db)
	orderSvc := NewOrderService(db)
	reaper := newTestReaper(db)

	table := seedTable(t, db, "R2")
	menu := seedMenu(t, db, "Mie Ayam", 14000)
	session, _, _, err := sessionSvc.CreateOrJoinSession(table.ID, "Alice")
	assert.NoError(t, err)

	oldCart, err := orderSvc.AddToCart(session.ID, "Alice", menu.ID, 1, CartItemOpts{})
	assert.NoError(t, err)
	freshCart, err := orderSvc.AddToCart(session.ID, "Alice", menu.ID, 1, CartItemOpts{})
	assert.NoError(t, err)
	oldWaiting, err := orderSvc.AddToCart(session.ID, "Alice", menu.ID, 1, CartItemOpts{})
	assert.NoError(t, err)

	past := time.Now().Add(-25 * time.Hour)
	db.Model(&models.Order{}).Where("id IN ?", []uint{oldCart.ID, oldWaiting.ID}).
		Update("created_at", past)
	db.Model(&models.Order{}).Where("id = ?", oldWaiting.ID).
		Update("status", models.OrderStatusWaiting)

	report, err := reaper.RunOnce()
	assert.NoError(t, err)
	assert.Equal(t, int64(1), report.CartOrdersPurged)
	assert.False(t, report.BudgetExhausted)

	// Cart tua hilang; cart segar dan order waiting tua selamat.
	var ids []uint
	db.Model(&models.Order{}).Where("session_id = ?", session.ID).Pluck("id", &ids)
	assert.ElementsMatch(t, []uint{freshCart.ID, oldWaiting.ID}, ids)
}

func TestReaperPurgesInactiveSessions(t *testing.T) {
	db := setupServiceDB(t)
	sessionSvc := NewSessionService(db)
	orderSvc := NewOrderService(db)
	reaper := newTestReaper(db)

	menu := seedMenu(t, db, "Ayam Bakar", 28000)

	// Session lama yang sudah selesai, lengkap dengan anak-anaknya.
	oldTable := seedTable(t, db, "R3")
	oldSession, _, _, err := sessionSvc.CreateOrJoinSession(oldTable.ID, "Alice")
	assert.NoError(t, err)
	_, err = orderSvc.AddToCart(oldSession.ID, "Alice", menu.ID, 1, CartItemOpts{})
	assert.NoError(t, err)
	_, err = sessionSvc.TerminateSession(oldSession.ID, models.SessionStatusCancelled)
	assert.NoError(t, err)
	db.Model(&models.Session{}).Where("id = ?", oldSession.ID).
		Update("ended_at", time.Now().Add(-25*time.Hour))

	// Session selesai tapi masih di dalam retensi.
	recentTable := seedTable(t, db, "R4")
	recentSession, _, _, err := sessionSvc.CreateOrJoinSession(recentTable.ID, "Bob")
	assert.NoError(t, err)
	_, err = sessionSvc.TerminateSession(recentSession.ID, models.SessionStatusCompleted)
	assert.NoError(t, err)

	// Session aktif tidak pernah dipurge, berapapun umurnya.
	activeTable := seedTable(t, db, "R5")
	activeSession, _, _, err := sessionSvc.CreateOrJoinSession(activeTable.ID, "Cara")
	assert.NoError(t, err)
	db.Model(&models.Session{}).Where("id = ?", activeSession.ID).
		Update("created_at", time.Now().Add(-48*time.Hour))

	report, err := reaper.RunOnce()
	assert.NoError(t, err)
	assert.Equal(t, int64(1), report.SessionsPurged)

	var sessionIDs []uint
	db.Model(&models.Session{}).Pluck("id", &sessionIDs)
	assert.ElementsMatch(t, []uint{recentSession.ID, activeSession.ID}, sessionIDs)

	// Anak-anak session yang dipurge ikut hilang.
	var orphanOrders, orphanDiners int64
	db.Model(&models.Order{}).Where("session_id = ?", oldSession.ID).Count(&orphanOrders)
	db.Model(&models.Diner{}).Where("session_id = ?", oldSession.ID).Count(&orphanDiners)
	assert.Equal(t, int64(0), orphanOrders)
	assert.Equal(t, int64(0), orphanDiners)
}
