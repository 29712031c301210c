package persistence

import (
	"context"

	"github.com/comfort/backend/internal/domain/catalog"
	"github.com/comfort/backend/internal/domain/pricing"
	"github.com/comfort/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormItemRepository implements ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// GetItems returns the items with the given codes; unknown codes are absent
func (r *GormItemRepository) GetItems(ctx context.Context, codes []string) (catalog.Lookup, error) {
	lookup := catalog.Lookup{}
	if len(codes) == 0 {
		return lookup, nil
	}
	var itemModels []models.ItemModel
	if err := r.db.WithContext(ctx).
		Preload("Children", orderByIdx).
		Where("code IN ?", codes).
		Find(&itemModels).Error; err != nil {
		return nil, err
	}
	for i := range itemModels {
		item := itemModels[i].ToDomain()
		lookup[item.Code] = item
	}
	return lookup, nil
}

// Save inserts or replaces an item with its children
func (r *GormItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	model := models.ItemModelFromDomain(item)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "code"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "rate", "weight"}),
			}).
			Create(model).Error; err != nil {
			return err
		}
		return replaceLines(tx, "parent_code", item.Code, model.Children)
	})
}

// GormBracketStore implements pricing.BracketStore over the commission_ranges table
type GormBracketStore struct {
	db *gorm.DB
}

// NewGormBracketStore creates a new GormBracketStore
func NewGormBracketStore(db *gorm.DB) *GormBracketStore {
	return &GormBracketStore{db: db}
}

// Load reads and validates the bracket table
func (s *GormBracketStore) Load(ctx context.Context) (*pricing.CommissionSettings, error) {
	var rows []models.CommissionRangeModel
	if err := s.db.WithContext(ctx).Order("idx").Find(&rows).Error; err != nil {
		return nil, err
	}
	return pricing.NewCommissionSettings(models.CommissionRangesToDomain(rows))
}

// Save validates ranges and replaces the stored table with them
func (s *GormBracketStore) Save(ctx context.Context, ranges []pricing.CommissionRange) error {
	settings, err := pricing.NewCommissionSettings(ranges)
	if err != nil {
		return err
	}
	rows := make([]models.CommissionRangeModel, len(settings.Ranges))
	for i, rg := range settings.Ranges {
		rows[i] = models.CommissionRangeModel{Idx: i + 1, ToAmount: rg.ToAmount, Percentage: rg.Percentage}
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.CommissionRangeModel{}).Error; err != nil {
			return err
		}
		return tx.Create(&rows).Error
	})
}
