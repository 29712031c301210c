package persistence

import (
	"context"

	"github.com/comfort/backend/internal/domain/inventory"
	"github.com/comfort/backend/internal/domain/shared"
	"github.com/comfort/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReceiptRepository implements ReceiptRepository using GORM
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// FindByOrder returns the receipts of an order in creation order
func (r *GormReceiptRepository) FindByOrder(ctx context.Context, order shared.VoucherRef) ([]inventory.Receipt, error) {
	var receiptModels []models.ReceiptModel
	if err := r.db.WithContext(ctx).
		Where("order_type = ? AND order_id = ?", string(order.Type), order.ID).
		Order("created_at, id").
		Find(&receiptModels).Error; err != nil {
		return nil, err
	}
	receipts := make([]inventory.Receipt, len(receiptModels))
	for i := range receiptModels {
		receipts[i] = *receiptModels[i].ToDomain()
	}
	return receipts, nil
}

// Save creates or updates a receipt
func (r *GormReceiptRepository) Save(ctx context.Context, receipt *inventory.Receipt) error {
	bumped, err := saveVoucher(r.db.WithContext(ctx), models.ReceiptModelFromDomain(receipt))
	if err != nil {
		return err
	}
	if bumped {
		receipt.IncrementVersion()
	}
	return nil
}

// GormCheckoutRepository implements CheckoutRepository using GORM
type GormCheckoutRepository struct {
	db *gorm.DB
}

// NewGormCheckoutRepository creates a new GormCheckoutRepository
func NewGormCheckoutRepository(db *gorm.DB) *GormCheckoutRepository {
	return &GormCheckoutRepository{db: db}
}

// FindByPurchaseOrder returns the checkouts of a purchase order in creation order
func (r *GormCheckoutRepository) FindByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) ([]inventory.Checkout, error) {
	var checkoutModels []models.CheckoutModel
	if err := r.db.WithContext(ctx).
		Where("purchase_order_id = ?", purchaseOrderID).
		Order("created_at, id").
		Find(&checkoutModels).Error; err != nil {
		return nil, err
	}
	checkouts := make([]inventory.Checkout, len(checkoutModels))
	for i := range checkoutModels {
		checkouts[i] = *checkoutModels[i].ToDomain()
	}
	return checkouts, nil
}

// Save creates or updates a checkout
func (r *GormCheckoutRepository) Save(ctx context.Context, checkout *inventory.Checkout) error {
	bumped, err := saveVoucher(r.db.WithContext(ctx), models.CheckoutModelFromDomain(checkout))
	if err != nil {
		return err
	}
	if bumped {
		checkout.IncrementVersion()
	}
	return nil
}
