package services

import (
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/table-order-app/models"
	"github.com/yeremiapane/table-order-app/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

// setupServiceDB -> SQLite in-memory dengan seluruh model untuk test service
func setupServiceDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Table{},
		&models.Session{},
		&models.Diner{},
		&models.MenuCategory{},
		&models.Menu{},
		&models.Order{},
		&models.SplitBill{},
		&models.Notification{},
		&models.Receipt{},
		&models.AuditLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func seedTable(t *testing.T, db *gorm.DB, number string) models.Table {
	table := models.Table{TableNumber: number, Capacity: 4, IsActive: true}
	if err := db.Create(&table).Error; err != nil {
		t.Fatalf("failed to seed table: %v", err)
	}
	return table
}

func seedMenu(t *testing.T, db *gorm.DB, name string, price float64) models.Menu {
	category := models.MenuCategory{Name: "Main Course"}
	if err := db.Where("name = ?", category.Name).FirstOrCreate(&category).Error; err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}
	menu := models.Menu{CategoryID: category.ID, Name: name, Price: price, IsAvailable: true}
	if err := db.Create(&menu).Error; err != nil {
		t.Fatalf("failed to seed menu: %v", err)
	}
	return menu
}

func TestBindSessionClaimsTable(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewSessionService(db)
	table := seedTable(t, db, "A1")

	session, err := svc.BindSession(table.ID, nil, "Budi")
	assert.NoError(t, err)
	assert.Equal(t, models.SessionStatusActive, session.Status)
	assert.Equal(t, models.PaymentStatusNone, session.PaymentStatus)

	var updated models.Table
	db.First(&updated, table.ID)
	assert.True(t, updated.Occupied)
	assert.NotNil(t, updated.CurrentSessionID)
	assert.Equal(t, session.ID, *updated.CurrentSessionID)
	assert.NotNil(t, updated.CurrentPin)
	assert.Len(t, *updated.CurrentPin, 4)
}

func TestBindSessionOccupiedConflict(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewSessionService(db)
	table := seedTable(t, db, "A1")

	_, err := svc.BindSession(table.ID, nil, "Budi")
	assert.NoError(t, err)

	// Klaim kedua kalah: meja sudah occupied.
	_, err = svc.BindSession(table.ID, nil, "Sari")
	assert.Error(t, err)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))
}

func TestBindSessionConcurrentClaim(t *testing.T) {
	db := setupServiceDB(t)
	// Satu koneksi supaya kedua goroutine menulis ke database in-memory
	// yang sama; pemenang race tetap ditentukan conditional update.
	sqlDB, err := db.DB()
	assert.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	svc := NewSessionService(db)
	table := seedTable(t, db, "A1")

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, name := range []string{"Budi", "Sari"} {
		wg.Add(1)
		go func(startedBy string) {
			defer wg.Done()
			_, err := svc.BindSession(table.ID, nil, startedBy)
			errs <- err
		}(name)
	}
	wg.Wait()
	close(errs)

	// Tepat satu klaim menang, satu kalah dengan Conflict.
	var wins, conflicts int
	for err := range errs {
		if err == nil {
			wins++
		} else {
			assert.Equal(t, utils.KindConflict, utils.KindOf(err))
			conflicts++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, conflicts)

	var sessionCount int64
	db.Model(&models.Session{}).Where("table_id = ?", table.ID).Count(&sessionCount)
	assert.Equal(t, int64(1), sessionCount)

	var updated models.Table
	db.First(&updated, table.ID)
	assert.True(t, updated.Occupied)
	assert.NotNil(t, updated.CurrentSessionID)
}

func TestBindSessionInactiveTable(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewSessionService(db)
	table := seedTable(t, db, "A1")
	db.Model(&models.Table{}).Where("id = ?", table.ID).Update("is_active", false)

	_, err := svc.BindSession(table.ID, nil, "Budi")
	assert.Error(t, err)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))
}

func TestCreateOrJoinSession(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewSessionService(db)
	table := seedTable(t, db, "B2")

	// Diner pertama membuat session baru.
	session, diner, isNew, err := svc.CreateOrJoinSession(table.ID, "Alice")
	assert.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, "Alice", diner.Name)
	assert.True(t, diner.IsActive)

	// Diner kedua bergabung ke session yang sama.
	joined, diner2, isNew2, err := svc.CreateOrJoinSession(table.ID, "Bob")
	assert.NoError(t, err)
	assert.False(t, isNew2)
	assert.Equal(t, session.ID, joined.ID)
	assert.NotEqual(t, diner.ID, diner2.ID)
}

func TestDinerNameTakenCaseInsensitive(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewSessionService(db)
	table := seedTable(t, db, "C3")

	session, _, _, err := svc.CreateOrJoinSession(table.ID, "Alice")
	assert.NoError(t, err)

	// Nama sama beda kapitalisasi tetap dianggap bentrok.
	_, err = svc.AddOrRejoinDiner(session.ID, "ALICE")
	assert.Error(t, err)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))
}

func TestRejoinReusesDinerRecord(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewSessionService(db)
	table := seedTable(t, db, "D4")

	session, diner, _, err := svc.CreateOrJoinSession(table.ID, "Alice")
	assert.NoError(t, err)

	err = svc.DeactivateDiner(session.ID, diner.ID, "logout")
	assert.NoError(t, err)

	// Rejoin dengan kapitalisasi berbeda mengaktifkan record yang sama.
	rejoined, err := svc.AddOrRejoinDiner(session.ID, "alice")
	assert.NoError(t, err)
	assert.Equal(t, diner.ID, rejoined.ID)
	assert.True(t, rejoined.IsActive)
	assert.Nil(t, rejoined.LogoutTime)

	var count int64
	db.Model(&models.Diner{}).Where("session_id = ?", session.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestAddDinerRequiresActiveSession(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewSessionService(db)
	table := seedTable(t, db, "E5")

	session, _, _, err := svc.CreateOrJoinSession(table.ID, "Alice")
	assert.NoError(t, err)

	_, err = svc.TerminateSession(session.ID, models.SessionStatusCancelled)
	assert.NoError(t, err)

	_, err = svc.AddOrRejoinDiner(session.ID, "Bob")
	assert.Error(t, err)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))
}

func TestTerminateSessionReleasesTable(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewSessionService(db)
	table := seedTable(t, db, "F6")

	session, err := svc.BindSession(table.ID, nil, "Budi")
	assert.NoError(t, err)

	terminated, err := svc.TerminateSession(session.ID, models.SessionStatusCancelled)
	assert.NoError(t, err)
	assert.Equal(t, models.SessionStatusCancelled, terminated.Status)
	assert.NotNil(t, terminated.EndedAt)

	var updated models.Table
	db.First(&updated, table.ID)
	assert.False(t, updated.Occupied)
	assert.Nil(t, updated.CurrentSessionID)
	assert.Nil(t, updated.CurrentPin)

	// Terminate kedua ditolak: session sudah ditutup.
	_, err = svc.TerminateSession(session.ID, models.SessionStatusCancelled)
	assert.Error(t, err)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))
}
