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

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

func (r *GormPurchaseOrderRepository) withLines(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("SalesOrders", orderByIdx).
		Preload("ItemsToSell", orderByIdx)
}

// FindByID finds a purchase order by its ID
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := r.withLines(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindSubmittedBySalesOrder finds the submitted purchase order linking a sales order
func (r *GormPurchaseOrderRepository) FindSubmittedBySalesOrder(ctx context.Context, salesOrderID uuid.UUID) (*trade.PurchaseOrder, error) {
	linked := r.db.WithContext(ctx).
		Model(&models.PurchaseOrderSalesOrderModel{}).
		Select("purchase_order_id").
		Where("sales_order_id = ?", salesOrderID)

	var model models.PurchaseOrderModel
	if err := r.withLines(ctx).
		Where("id IN (?) AND docstatus = ?", linked, int(shared.DocStatusSubmitted)).
		Order("created_at").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a purchase order with its links and items to sell
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *trade.PurchaseOrder) error {
	model := models.PurchaseOrderModelFromDomain(order)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bumped, err := saveVoucher(tx, model)
		if err != nil {
			return err
		}
		if err := replaceLines(tx, "purchase_order_id", order.ID, model.SalesOrders); err != nil {
			return err
		}
		if err := replaceLines(tx, "purchase_order_id", order.ID, model.ItemsToSell); err != nil {
			return err
		}
		if bumped {
			order.IncrementVersion()
		}
		return nil
	})
}
