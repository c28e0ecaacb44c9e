package services

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeremiapane/table-order-app/models"
	"github.com/yeremiapane/table-order-app/utils"
)

// SplitService menghitung dan mencatat pembagian biaya untuk order shared.
type SplitService struct {
	DB    *gorm.DB
	Audit *AuditSink
}

func NewSplitService(db *gorm.DB) *SplitService {
	return &SplitService{DB: db, Audit: NewAuditSink(db)}
}

// DisplayPrice memisahkan dua angka yang sering tertukar di UI:
// EachPrice selalu harga per-unit menu apa adanya, PerPersonPrice adalah
// porsi per orang bila ada split aktif (atau subtotal baris bila tidak).
type DisplayPrice struct {
	EachPrice      float64 `json:"each_price"`
	PerPersonPrice float64 `json:"per_person_price"`
	IsSplit        bool    `json:"is_split"`
	SplitCount     int     `json:"split_count,omitempty"`
}

// CreateSplit membagi biaya satu order shared ke sejumlah peserta.
// OriginalPrice = unitPrice*qty, SplitPrice dibulatkan 2 desimal;
// selisih pembulatan dijaga di bawah satu unit minor.
func (s *SplitService) CreateSplit(orderID uint, participantNames []string) (*models.SplitBill, error) {
	if len(participantNames) < 2 {
		return nil, utils.Validationf("split requires at least 2 participants")
	}

	var split models.SplitBill
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, orderID).Error; err != nil {
			return utils.NotFoundf("order %d not found", orderID)
		}
		if !order.IsShared {
			return utils.Validationf("order %d is not marked shared", orderID)
		}
		if order.Status.IsTerminal() {
			return utils.Conflictf("order is already %s", order.Status)
		}

		var active int64
		if err := tx.Model(&models.SplitBill{}).
			Where("order_id = ? AND status = ?", orderID, models.SplitBillStatusActive).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return utils.Conflictf("order %d already has an active split", orderID)
		}

		original := utils.RoundCurrency(order.Subtotal())
		split = models.SplitBill{
			SessionID:     order.SessionID,
			OrderID:       order.ID,
			OriginalPrice: original,
			SplitCount:    len(participantNames),
			SplitPrice:    utils.RoundCurrency(original / float64(len(participantNames))),
			Status:        models.SplitBillStatusActive,
		}
		if err := split.SetParticipants(participantNames); err != nil {
			return utils.Validationf("invalid participant list: %v", err)
		}
		if err := tx.Create(&split).Error; err != nil {
			return err
		}

		return tx.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Update("split_bill_id", split.ID).Error
	})
	if err != nil {
		return nil, err
	}

	s.Audit.Record("split_created", &split.SessionID, map[string]interface{}{
		"order_id":    orderID,
		"split_count": split.SplitCount,
		"split_price": split.SplitPrice,
	}, "diner")

	return &split, nil
}

// DissolveSplit menutup split; order kembali memakai harga polosnya untuk
// kalkulasi berikutnya.
func (s *SplitService) DissolveSplit(splitID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var split models.SplitBill
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&split, splitID).Error; err != nil {
			return utils.NotFoundf("split bill %d not found", splitID)
		}
		if split.Status != models.SplitBillStatusActive {
			return utils.Conflictf("split bill is already %s", split.Status)
		}

		split.Status = models.SplitBillStatusCompleted
		if err := tx.Save(&split).Error; err != nil {
			return err
		}

		return tx.Model(&models.Order{}).
			Where("id = ? AND split_bill_id = ?", split.OrderID, split.ID).
			Update("split_bill_id", nil).Error
	})
}

// ResolveDisplayPrice -> harga yang ditampilkan untuk satu order.
// EachPrice tidak pernah dimodifikasi split, apa pun yang terjadi.
func (s *SplitService) ResolveDisplayPrice(order models.Order) (DisplayPrice, error) {
	dp := DisplayPrice{
		EachPrice:      order.UnitPrice,
		PerPersonPrice: utils.RoundCurrency(order.Subtotal()),
	}

	if order.SplitBillID == nil {
		return dp, nil
	}

	var split models.SplitBill
	err := s.DB.Where("id = ? AND status = ?", *order.SplitBillID, models.SplitBillStatusActive).
		First(&split).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Split sudah dibubarkan; tampilkan harga polos.
			return dp, nil
		}
		return dp, err
	}

	dp.PerPersonPrice = split.SplitPrice
	dp.IsSplit = true
	dp.SplitCount = split.SplitCount
	return dp, nil
}
