package models

import "time"

type Table struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	TableNumber      string    `gorm:"type:varchar(50);not null;unique" json:"table_number"`
	Capacity         int       `gorm:"not null;default:4" json:"capacity"`
	IsActive         bool      `gorm:"not null;default:true" json:"is_active"`
	Occupied         bool      `gorm:"not null;default:false" json:"occupied"`
	CurrentSessionID *uint     `gorm:"index" json:"current_session_id,omitempty"`
	CurrentPin       *string   `gorm:"type:varchar(4)" json:"current_pin,omitempty"`
	CreatedAt        time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null" json:"updated_at"`
}
