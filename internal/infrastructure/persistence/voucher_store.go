package persistence

import (
	"github.com/comfort/backend/internal/domain/shared"
	"github.com/comfort/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// voucherRow is a persistence model embedding models.VoucherModel
type voucherRow interface {
	Base() *models.VoucherModel
	TableName() string
}

// saveVoucher updates row when the stored version still equals the version
// the caller loaded, or inserts it when it does not exist yet. Associations are
// left to the caller. It reports whether the stored version was bumped.
func saveVoucher(db *gorm.DB, row voucherRow) (bool, error) {
	base := row.Base()
	loaded := base.Version
	base.Version = loaded + 1

	result := db.Model(row).
		Select("*").
		Omit(clause.Associations).
		Where("id = ? AND version = ?", base.ID, loaded).
		Updates(row)
	if result.Error != nil {
		base.Version = loaded
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	base.Version = loaded
	var count int64
	if err := db.Table(row.TableName()).Where("id = ?", base.ID).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, shared.ErrConcurrencyConflict
	}
	if err := db.Omit(clause.Associations).Create(row).Error; err != nil {
		return false, err
	}
	return false, nil
}

// replaceLines deletes the child rows of parent and inserts rows in their place
func replaceLines[T any](db *gorm.DB, parentColumn string, parent any, rows []T) error {
	var zero T
	if err := db.Where(parentColumn+" = ?", parent).Delete(&zero).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return db.Create(&rows).Error
}

func orderByIdx(db *gorm.DB) *gorm.DB {
	return db.Order("idx")
}
