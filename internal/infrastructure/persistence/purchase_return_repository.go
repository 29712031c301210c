package persistence

import (
	"context"
	"errors"

	"github.com/comfort/backend/internal/domain/shared"
	"github.com/comfort/backend/internal/domain/trade"
	"github.com/comfort/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPurchaseReturnRepository implements PurchaseReturnRepository using GORM
type GormPurchaseReturnRepository struct {
	db *gorm.DB
}

// NewGormPurchaseReturnRepository creates a new GormPurchaseReturnRepository
func NewGormPurchaseReturnRepository(db *gorm.DB) *GormPurchaseReturnRepository {
	return &GormPurchaseReturnRepository{db: db}
}

// FindByID finds a purchase return by its ID
func (r *GormPurchaseReturnRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseReturn, error) {
	var model models.PurchaseReturnModel
	if err := r.db.WithContext(ctx).Preload("Items", orderByIdx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a purchase return with its items
func (r *GormPurchaseReturnRepository) Save(ctx context.Context, ret *trade.PurchaseReturn) error {
	model := models.PurchaseReturnModelFromDomain(ret)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bumped, err := saveVoucher(tx, model)
		if err != nil {
			return err
		}
		if err := replaceLines(tx, "return_id", ret.ID, model.Items); err != nil {
			return err
		}
		if bumped {
			ret.IncrementVersion()
		}
		return nil
	})
}
