package models

import (
	"encoding/json"
	"time"
)

// SplitBill mencatat pembagian biaya untuk satu order yang ditandai shared.
// Invariant: abs(SplitPrice*SplitCount - OriginalPrice) < 0.01.
type SplitBill struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	SessionID uint    `gorm:"not null;index" json:"session_id"`
	OrderID   uint    `gorm:"not null;index" json:"order_id"`
	Order     Order   `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	OriginalPrice float64 `gorm:"type:decimal(12,2);not null" json:"original_price"`
	SplitCount    int     `gorm:"not null" json:"split_count"`
	SplitPrice    float64 `gorm:"type:decimal(12,2);not null" json:"split_price"`

	// Participants disimpan sebagai JSON array nama diner.
	Participants string          `gorm:"type:text;not null" json:"-"`
	Status       SplitBillStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// SetParticipants -> serialize daftar nama ke kolom Participants
func (sb *SplitBill) SetParticipants(names []string) error {
	data, err := json.Marshal(names)
	if err != nil {
		return err
	}
	sb.Participants = string(data)
	return nil
}

// ParticipantNames -> daftar nama dari kolom Participants
func (sb *SplitBill) ParticipantNames() []string {
	var names []string
	if err := json.Unmarshal([]byte(sb.Participants), &names); err != nil {
		return nil
	}
	return names
}
