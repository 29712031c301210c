package models

import (
	"time"

	"github.com/comfort/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// VoucherModel provides common persistence fields for every voucher.
// It maps to the domain's BaseVoucher.
type VoucherModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Version   int       `gorm:"not null;default:1"`
	DocStatus int       `gorm:"column:docstatus;type:smallint;not null;default:0;index"`
}

// Base returns the voucher columns of any model embedding VoucherModel
func (m *VoucherModel) Base() *VoucherModel {
	return m
}

// ToDomain converts VoucherModel to domain BaseVoucher
func (m *VoucherModel) ToDomain() shared.BaseVoucher {
	return shared.BaseVoucher{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Version:   m.Version,
		DocStatus: shared.DocStatus(m.DocStatus),
	}
}

// FromDomainVoucher populates VoucherModel from domain BaseVoucher
func (m *VoucherModel) FromDomainVoucher(v shared.BaseVoucher) {
	m.ID = v.ID
	m.CreatedAt = v.CreatedAt
	m.UpdatedAt = v.UpdatedAt
	m.Version = v.Version
	m.DocStatus = int(v.DocStatus)
}

// ItemLineColumns are the columns shared by every item line table. Lines are
// keyed by their parent and their position.
type ItemLineColumns struct {
	Idx      int     `gorm:"primaryKey;autoIncrement:false"`
	ItemCode string  `gorm:"type:varchar(140);not null;index"`
	ItemName string  `gorm:"type:varchar(140);not null;default:''"`
	Qty      int64   `gorm:"not null"`
	Rate     int64   `gorm:"not null;default:0"`
	Weight   float64 `gorm:"not null;default:0"`
}

func voucherRef(voucherType string, id uuid.UUID) shared.VoucherRef {
	return shared.NewVoucherRef(shared.VoucherType(voucherType), id)
}
