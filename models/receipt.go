package models

import "time"

// Receipt adalah bukti penyelesaian pembayaran. Untuk table payment DinerName nil;
// untuk individual payment berisi nama diner yang membayar. Record ini yang
// membuat completePayment idempotent: submit ulang mengembalikan receipt lama.
type Receipt struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	SessionID     uint        `gorm:"not null;index" json:"session_id"`
	ReceiptNumber string      `gorm:"type:varchar(64);not null;unique" json:"receipt_number"`
	PaymentType   PaymentType `gorm:"type:varchar(20);not null" json:"payment_type"`
	PaymentMethod string      `gorm:"type:varchar(50);not null" json:"payment_method"`
	DinerName     *string     `gorm:"type:varchar(100);index" json:"diner_name,omitempty"`

	Subtotal float64 `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Tip      float64 `gorm:"type:decimal(12,2);not null;default:0.00" json:"tip"`
	Vat      float64 `gorm:"type:decimal(12,2);not null;default:0.00" json:"vat"`
	Total    float64 `gorm:"type:decimal(12,2);not null" json:"total"`

	CompletedByID uint      `gorm:"not null" json:"completed_by_id"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}
