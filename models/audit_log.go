package models

import "time"

// AuditLog adalah sink tulis-saja untuk transisi yang relevan compliance.
// Gagal menulis audit tidak boleh menggagalkan operasi pemicunya.
type AuditLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Action      string    `gorm:"type:varchar(100);not null;index" json:"action"`
	SessionID   *uint     `gorm:"index" json:"session_id,omitempty"`
	Details     string    `gorm:"type:text" json:"details,omitempty"`
	PerformedBy string    `gorm:"type:varchar(100);not null" json:"performed_by"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}
