package models

import "time"

// Tipe notification yang dipakai core
const (
	NotificationKitchenReady     = "kitchen_ready"
	NotificationPaymentRequested = "payment_request"
	NotificationPaymentCompleted = "payment_completed"
	NotificationReceiptRedirect  = "receipt_redirect"
)

const (
	NotificationStatusPending   = "pending"
	NotificationStatusCompleted = "completed"
)

type Notification struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	SessionID *uint    `gorm:"index" json:"session_id,omitempty"`
	Session   *Session `gorm:"foreignKey:SessionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Type      string   `gorm:"type:varchar(50);not null;index" json:"type"`
	Title     string   `gorm:"type:varchar(100)" json:"title"`
	Message   string   `gorm:"type:text;not null" json:"message"`
	Priority  string   `gorm:"type:varchar(20);not null;default:'normal'" json:"priority"`
	Status    string   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	// Metadata bebas berbentuk JSON (mis. nominal payment request).
	Metadata    string     `gorm:"type:text" json:"metadata,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CompletedBy *uint      `json:"completed_by,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}
