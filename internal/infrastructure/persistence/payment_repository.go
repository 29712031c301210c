package persistence

import (
	"context"
	"errors"

	"github.com/comfort/backend/internal/domain/finance"
	"github.com/comfort/backend/internal/domain/shared"
	"github.com/comfort/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrder returns the payments of an order in creation order
func (r *GormPaymentRepository) FindByOrder(ctx context.Context, order shared.VoucherRef) ([]finance.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("order_type = ? AND order_id = ?", string(order.Type), order.ID).
		Order("created_at, id").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	payments := make([]finance.Payment, len(paymentModels))
	for i := range paymentModels {
		payments[i] = *paymentModels[i].ToDomain()
	}
	return payments, nil
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *finance.Payment) error {
	bumped, err := saveVoucher(r.db.WithContext(ctx), models.PaymentModelFromDomain(payment))
	if err != nil {
		return err
	}
	if bumped {
		payment.IncrementVersion()
	}
	return nil
}
