package models

import (
	"strings"
	"time"
)

// Diner adalah peserta bernama dalam satu session. Baris tidak pernah dihapus
// selama session hidup, hanya dinonaktifkan, supaya rejoin memakai record yang sama.
type Diner struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	SessionID uint    `gorm:"not null;index:idx_diner_session_name" json:"session_id"`
	Session   Session `gorm:"foreignKey:SessionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Name      string  `gorm:"type:varchar(100);not null" json:"name"`
	// NameLower dipakai untuk lookup case-insensitive; diisi lewat NormalizeDinerName.
	NameLower  string     `gorm:"type:varchar(100);not null;index:idx_diner_session_name" json:"-"`
	IsActive   bool       `gorm:"not null;default:true" json:"is_active"`
	LastActive time.Time  `gorm:"not null" json:"last_active"`
	LogoutTime *time.Time `json:"logout_time,omitempty"`
	CreatedAt  time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null" json:"updated_at"`
}

// NormalizeDinerName -> bentuk kanonik nama untuk pembanding unik
func NormalizeDinerName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
