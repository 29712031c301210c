package models

import (
	"github.com/comfort/backend/internal/domain/catalog"
	"github.com/comfort/backend/internal/domain/pricing"
)

// ItemModel is the persistence model for a catalog item
type ItemModel struct {
	Code   string  `gorm:"type:varchar(140);primaryKey"`
	Name   string  `gorm:"type:varchar(140);not null;default:''"`
	Rate   int64   `gorm:"not null;default:0"`
	Weight float64 `gorm:"not null;default:0"`
	// Associations
	Children []ItemChildModel `gorm:"foreignKey:ParentCode;references:Code"`
}

// TableName returns the table name for GORM
func (ItemModel) TableName() string {
	return "items"
}

// ToDomain converts the persistence model to a domain Item
func (m *ItemModel) ToDomain() *catalog.Item {
	item := &catalog.Item{
		Code:   m.Code,
		Name:   m.Name,
		Rate:   m.Rate,
		Weight: m.Weight,
	}
	for _, c := range m.Children {
		item.Children = append(item.Children, catalog.ChildItem{
			ItemCode: c.ItemCode,
			ItemName: c.ItemName,
			Qty:      c.Qty,
		})
	}
	return item
}

// ItemModelFromDomain creates a new persistence model from a domain Item
func ItemModelFromDomain(i *catalog.Item) *ItemModel {
	m := &ItemModel{
		Code:     i.Code,
		Name:     i.Name,
		Rate:     i.Rate,
		Weight:   i.Weight,
		Children: make([]ItemChildModel, len(i.Children)),
	}
	for idx, c := range i.Children {
		m.Children[idx] = ItemChildModel{
			ParentCode: i.Code,
			Idx:        idx + 1,
			ItemCode:   c.ItemCode,
			ItemName:   c.ItemName,
			Qty:        c.Qty,
		}
	}
	return m
}

// ItemChildModel is one component of a combination item
type ItemChildModel struct {
	ParentCode string `gorm:"type:varchar(140);primaryKey"`
	Idx        int    `gorm:"primaryKey;autoIncrement:false"`
	ItemCode   string `gorm:"type:varchar(140);not null"`
	ItemName   string `gorm:"type:varchar(140);not null;default:''"`
	Qty        int64  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ItemChildModel) TableName() string {
	return "item_children"
}

// CommissionRangeModel is one bracket of the commission table
type CommissionRangeModel struct {
	Idx        int   `gorm:"primaryKey;autoIncrement:false"`
	ToAmount   int64 `gorm:"not null;default:0"`
	Percentage int64 `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CommissionRangeModel) TableName() string {
	return "commission_ranges"
}

// CommissionRangesToDomain converts stored brackets to domain ranges in order
func CommissionRangesToDomain(rows []CommissionRangeModel) []pricing.CommissionRange {
	out := make([]pricing.CommissionRange, len(rows))
	for i, r := range rows {
		out[i] = pricing.CommissionRange{ToAmount: r.ToAmount, Percentage: r.Percentage}
	}
	return out
}
