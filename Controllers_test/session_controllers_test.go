package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/table-order-app/controllers"
	"github.com/yeremiapane/table-order-app/models"
	"github.com/yeremiapane/table-order-app/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

// setupTestDB -> SQLite in-memory dengan seluruh model
func setupTestDB(t *testing.T) *gorm.DB {
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

func seedTestTable(t *testing.T, db *gorm.DB, number string) models.Table {
	table := models.Table{TableNumber: number, Capacity: 4, IsActive: true}
	if err := db.Create(&table).Error; err != nil {
		t.Fatalf("failed to seed table: %v", err)
	}
	return table
}

func seedTestMenu(t *testing.T, db *gorm.DB, name string, price float64) models.Menu {
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

func doJSON(t *testing.T, router *gin.Engine, method, url string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		assert.NoError(t, err)
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, body)
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	return response
}

func setupSessionRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	sessionCtrl := controllers.NewSessionController(db)
	router.POST("/sessions/join", sessionCtrl.CreateOrJoinSession)
	router.GET("/sessions/:session_id", sessionCtrl.GetSession)
	router.POST("/sessions/:session_id/diners/:diner_id/heartbeat", sessionCtrl.HeartbeatDiner)
	router.POST("/sessions/:session_id/diners/:diner_id/leave", sessionCtrl.LeaveSession)
	router.POST("/sessions/:session_id/terminate", sessionCtrl.TerminateSession)
	return router
}

func TestCreateOrJoinSessionEndpoint(t *testing.T) {
	db := setupTestDB(t)
	table := seedTestTable(t, db, "A1")
	router := setupSessionRouter(db)

	// Diner pertama membuka session baru.
	w := doJSON(t, router, "POST", "/sessions/join",
		map[string]interface{}{"table_id": table.ID, "diner_name": "Alice"})
	assert.Equal(t, http.StatusOK, w.Code)

	response := parseResponse(t, w)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, true, data["is_new_session"])
	sessionID := data["session_id"].(float64)

	// Diner kedua ikut ke session yang sama.
	w = doJSON(t, router, "POST", "/sessions/join",
		map[string]interface{}{"table_id": table.ID, "diner_name": "Bob"})
	assert.Equal(t, http.StatusOK, w.Code)
	response = parseResponse(t, w)
	data = response["data"].(map[string]interface{})
	assert.Equal(t, false, data["is_new_session"])
	assert.Equal(t, sessionID, data["session_id"].(float64))

	// Nama yang masih aktif ditolak 409, beda kapitalisasi pun.
	w = doJSON(t, router, "POST", "/sessions/join",
		map[string]interface{}{"table_id": table.ID, "diner_name": "alice"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateOrJoinSessionBadRequest(t *testing.T) {
	db := setupTestDB(t)
	router := setupSessionRouter(db)

	w := doJSON(t, router, "POST", "/sessions/join",
		map[string]interface{}{"diner_name": "Alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, "POST", "/sessions/join",
		map[string]interface{}{"table_id": 9999, "diner_name": "Alice"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetSessionWithRoster(t *testing.T) {
	db := setupTestDB(t)
	table := seedTestTable(t, db, "B2")
	router := setupSessionRouter(db)

	w := doJSON(t, router, "POST", "/sessions/join",
		map[string]interface{}{"table_id": table.ID, "diner_name": "Alice"})
	assert.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(t, w)["data"].(map[string]interface{})
	sessionID := int(data["session_id"].(float64))

	w = doJSON(t, router, "GET", "/sessions/"+itoa(sessionID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	session := parseResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "active", session["status"])
	diners := session["diners"].([]interface{})
	assert.Len(t, diners, 1)
}

func TestLeaveAndHeartbeat(t *testing.T) {
	db := setupTestDB(t)
	table := seedTestTable(t, db, "C3")
	router := setupSessionRouter(db)

	w := doJSON(t, router, "POST", "/sessions/join",
		map[string]interface{}{"table_id": table.ID, "diner_name": "Alice"})
	data := parseResponse(t, w)["data"].(map[string]interface{})
	sessionID := int(data["session_id"].(float64))
	dinerID := int(data["diner_id"].(float64))

	base := "/sessions/" + itoa(sessionID) + "/diners/" + itoa(dinerID)
	w = doJSON(t, router, "POST", base+"/heartbeat", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "POST", base+"/leave", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var diner models.Diner
	db.First(&diner, dinerID)
	assert.False(t, diner.IsActive)

	// Diner tak dikenal -> 404.
	w = doJSON(t, router, "POST", "/sessions/"+itoa(sessionID)+"/diners/9999/heartbeat", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTerminateSessionEndpoint(t *testing.T) {
	db := setupTestDB(t)
	table := seedTestTable(t, db, "D4")
	router := setupSessionRouter(db)

	w := doJSON(t, router, "POST", "/sessions/join",
		map[string]interface{}{"table_id": table.ID, "diner_name": "Alice"})
	data := parseResponse(t, w)["data"].(map[string]interface{})
	sessionID := int(data["session_id"].(float64))

	w = doJSON(t, router, "POST", "/sessions/"+itoa(sessionID)+"/terminate",
		map[string]interface{}{"outcome": "cancelled"})
	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.Table
	db.First(&updated, table.ID)
	assert.False(t, updated.Occupied)

	// Outcome tidak dikenal -> 400.
	w = doJSON(t, router, "POST", "/sessions/"+itoa(sessionID)+"/terminate",
		map[string]interface{}{"outcome": "exploded"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
