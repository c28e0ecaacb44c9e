package services

import (
	"encoding/json"

	"gorm.io/gorm"

	"github.com/yeremiapane/table-order-app/models"
	"github.com/yeremiapane/table-order-app/utils"
)

// AuditSink menulis jejak compliance. Fire-and-forget: kegagalan dicatat
// di log dan tidak pernah menggagalkan operasi pemicunya.
type AuditSink struct {
	DB *gorm.DB
}

func NewAuditSink(db *gorm.DB) *AuditSink {
	return &AuditSink{DB: db}
}

// Record -> satu entri audit; details di-serialize ke JSON
func (a *AuditSink) Record(action string, sessionID *uint, details interface{}, performedBy string) {
	var detailStr string
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			utils.ErrorLogger.Printf("Audit details marshal failed for %s: %v", action, err)
		} else {
			detailStr = string(data)
		}
	}

	entry := models.AuditLog{
		Action:      action,
		SessionID:   sessionID,
		Details:     detailStr,
		PerformedBy: performedBy,
	}

	if err := a.DB.Create(&entry).Error; err != nil {
		utils.ErrorLogger.Printf("Audit record failed (action=%s): %v", action, err)
	}
}
