package models

import "time"

type Session struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	TableID       uint          `gorm:"not null;index" json:"table_id"`
	Table         Table         `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Status        SessionStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	StartedByName string        `gorm:"type:varchar(100)" json:"started_by_name"`
	ServedByID    *uint         `gorm:"index" json:"served_by_id,omitempty"`
	ServedBy      *User         `gorm:"foreignKey:ServedByID" json:"served_by,omitempty"`

	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;default:'none'" json:"payment_status"`
	// Nama diner yang sedang meminta pembayaran individual; nil untuk table payment.
	PaymentRequestedBy *string `gorm:"type:varchar(100)" json:"payment_requested_by,omitempty"`
	FinalTotal         float64 `gorm:"type:decimal(12,2);not null;default:0.00" json:"final_total"`

	StartedAt          time.Time  `gorm:"not null" json:"started_at"`
	EndedAt            *time.Time `json:"ended_at,omitempty"`
	PaymentRequestedAt *time.Time `json:"payment_requested_at,omitempty"`
	PaymentCompletedAt *time.Time `json:"payment_completed_at,omitempty"`

	Diners []Diner `gorm:"foreignKey:SessionID" json:"diners,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
