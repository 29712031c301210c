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

// GormSalesReturnRepository implements SalesReturnRepository using GORM
type GormSalesReturnRepository struct {
	db *gorm.DB
}

// NewGormSalesReturnRepository creates a new GormSalesReturnRepository
func NewGormSalesReturnRepository(db *gorm.DB) *GormSalesReturnRepository {
	return &GormSalesReturnRepository{db: db}
}

// FindByID finds a sales return by its ID
func (r *GormSalesReturnRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.SalesReturn, error) {
	var model models.SalesReturnModel
	if err := r.db.WithContext(ctx).Preload("Items", orderByIdx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySalesOrder returns the returns of a sales order in creation order
func (r *GormSalesReturnRepository) FindBySalesOrder(ctx context.Context, salesOrderID uuid.UUID) ([]trade.SalesReturn, error) {
	return r.find(ctx, "sales_order_id = ?", salesOrderID)
}

// FindByPurchaseReturn returns the sales returns spawned by a purchase return
func (r *GormSalesReturnRepository) FindByPurchaseReturn(ctx context.Context, purchaseReturnID uuid.UUID) ([]trade.SalesReturn, error) {
	return r.find(ctx, "from_purchase_return_id = ?", purchaseReturnID)
}

func (r *GormSalesReturnRepository) find(ctx context.Context, query string, args ...any) ([]trade.SalesReturn, error) {
	var returnModels []models.SalesReturnModel
	if err := r.db.WithContext(ctx).
		Preload("Items", orderByIdx).
		Where(query, args...).
		Order("created_at, id").
		Find(&returnModels).Error; err != nil {
		return nil, err
	}
	returns := make([]trade.SalesReturn, len(returnModels))
	for i := range returnModels {
		returns[i] = *returnModels[i].ToDomain()
	}
	return returns, nil
}

// Save creates or updates a sales return with its items
func (r *GormSalesReturnRepository) Save(ctx context.Context, ret *trade.SalesReturn) error {
	model := models.SalesReturnModelFromDomain(ret)
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
