package persistence

import (
	"context"

	"github.com/comfort/backend/internal/domain/inventory"
	"github.com/comfort/backend/internal/domain/shared"
	"github.com/comfort/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormStockEntryRepository implements StockEntryRepository using GORM
type GormStockEntryRepository struct {
	db *gorm.DB
}

// NewGormStockEntryRepository creates a new GormStockEntryRepository
func NewGormStockEntryRepository(db *gorm.DB) *GormStockEntryRepository {
	return &GormStockEntryRepository{db: db}
}

// Create inserts batches together with their items
func (r *GormStockEntryRepository) Create(ctx context.Context, entries ...*inventory.StockEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]*models.StockEntryModel, len(entries))
	for i, e := range entries {
		rows[i] = models.StockEntryModelFromDomain(e)
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// CancelFor marks the submitted batches of voucher cancelled
func (r *GormStockEntryRepository) CancelFor(ctx context.Context, voucher shared.VoucherRef) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.StockEntryModel{}).
		Where("voucher_type = ? AND voucher_id = ? AND docstatus = ?",
			string(voucher.Type), voucher.ID, int(shared.DocStatusSubmitted)).
		Update("docstatus", int(shared.DocStatusCancelled))
	return result.RowsAffected, result.Error
}

// FindByVoucher returns every batch of voucher, cancelled ones included
func (r *GormStockEntryRepository) FindByVoucher(ctx context.Context, voucher shared.VoucherRef) ([]inventory.StockEntry, error) {
	var rows []models.StockEntryModel
	if err := r.db.WithContext(ctx).
		Preload("Items", orderByIdx).
		Where("voucher_type = ? AND voucher_id = ?", string(voucher.Type), voucher.ID).
		Order("posted_at, stock_type").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]inventory.StockEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, nil
}

// Balance returns the per-item sum of a bucket over submitted batches
func (r *GormStockEntryRepository) Balance(ctx context.Context, stockType inventory.StockType, codes ...string) (map[string]int64, error) {
	query := r.db.WithContext(ctx).
		Table("stock_entry_items AS i").
		Select("i.item_code AS item_code, CAST(COALESCE(SUM(i.qty), 0) AS BIGINT) AS qty").
		Joins("JOIN stock_entries AS e ON e.id = i.stock_entry_id").
		Where("e.stock_type = ? AND e.docstatus = ?", string(stockType), int(shared.DocStatusSubmitted))
	if len(codes) > 0 {
		query = query.Where("i.item_code IN ?", codes)
	}

	var rows []struct {
		ItemCode string
		Qty      int64
	}
	if err := query.Group("i.item_code").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.ItemCode] = row.Qty
	}
	return out, nil
}
