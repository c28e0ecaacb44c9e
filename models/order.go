package models

import "time"

// Order adalah satu baris pesanan menu di dalam session.
// UnitPrice dikunci saat order dibuat supaya total historis tidak
// berubah ketika harga menu diedit admin.
type Order struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	SessionID uint    `gorm:"not null;index" json:"session_id"`
	Session   Session `gorm:"foreignKey:SessionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MenuID    uint    `gorm:"not null" json:"menu_id"`
	Menu      Menu    `gorm:"foreignKey:MenuID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"menu"`

	DinerName      string `gorm:"type:varchar(100);not null" json:"diner_name"`
	DinerNameLower string `gorm:"type:varchar(100);not null;index" json:"-"`

	Quantity   int     `gorm:"not null" json:"quantity"`
	UnitPrice  float64 `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Notes      string  `gorm:"type:text" json:"notes"`
	IsShared   bool    `gorm:"not null;default:false" json:"is_shared"`
	IsTakeaway bool    `gorm:"not null;default:false" json:"is_takeaway"`

	SplitBillID *uint `gorm:"index" json:"split_bill_id,omitempty"`

	Status     OrderStatus `gorm:"type:varchar(20);not null;default:'cart';index" json:"status"`
	VoidedAt   *time.Time  `json:"voided_at,omitempty"`
	VoidReason string      `gorm:"type:varchar(255)" json:"void_reason,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// Subtotal -> harga baris sebelum split
func (o *Order) Subtotal() float64 {
	return o.UnitPrice * float64(o.Quantity)
}
