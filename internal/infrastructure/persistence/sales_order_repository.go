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

// GormSalesOrderRepository implements SalesOrderRepository using GORM
type GormSalesOrderRepository struct {
	db *gorm.DB
}

// NewGormSalesOrderRepository creates a new GormSalesOrderRepository
func NewGormSalesOrderRepository(db *gorm.DB) *GormSalesOrderRepository {
	return &GormSalesOrderRepository{db: db}
}

func (r *GormSalesOrderRepository) withLines(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", orderByIdx).
		Preload("ChildItems", orderByIdx).
		Preload("Services", orderByIdx)
}

// FindByID finds a sales order by its ID
func (r *GormSalesOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.SalesOrder, error) {
	var model models.SalesOrderModel
	if err := r.withLines(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds sales orders by IDs; missing ids are absent from the result
func (r *GormSalesOrderRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*trade.SalesOrder, error) {
	out := make(map[uuid.UUID]*trade.SalesOrder, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var orderModels []models.SalesOrderModel
	if err := r.withLines(ctx).Where("id IN ?", ids).Find(&orderModels).Error; err != nil {
		return nil, err
	}
	for i := range orderModels {
		order := orderModels[i].ToDomain()
		out[order.ID] = order
	}
	return out, nil
}

// Save creates or updates a sales order with its lines
func (r *GormSalesOrderRepository) Save(ctx context.Context, order *trade.SalesOrder) error {
	model := models.SalesOrderModelFromDomain(order)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bumped, err := saveVoucher(tx, model)
		if err != nil {
			return err
		}
		if err := replaceLines(tx, "order_id", order.ID, model.Items); err != nil {
			return err
		}
		if err := replaceLines(tx, "order_id", order.ID, model.ChildItems); err != nil {
			return err
		}
		if err := replaceLines(tx, "order_id", order.ID, model.Services); err != nil {
			return err
		}
		if bumped {
			order.IncrementVersion()
		}
		return nil
	})
}
