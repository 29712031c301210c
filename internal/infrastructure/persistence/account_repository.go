package persistence

import (
	"context"
	"errors"

	"github.com/comfort/backend/internal/domain/finance"
	"github.com/comfort/backend/internal/domain/shared"
	"github.com/comfort/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAccountRepository implements AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByName finds an account by its name
func (r *GormAccountRepository) FindByName(ctx context.Context, name string) (*finance.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).First(&model, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns every account ordered by name
func (r *GormAccountRepository) FindAll(ctx context.Context) ([]finance.Account, error) {
	var accountModels []models.AccountModel
	if err := r.db.WithContext(ctx).Order("name").Find(&accountModels).Error; err != nil {
		return nil, err
	}
	accounts := make([]finance.Account, len(accountModels))
	for i := range accountModels {
		accounts[i] = *accountModels[i].ToDomain()
	}
	return accounts, nil
}

// Save inserts an account or updates its parent and group flag
func (r *GormAccountRepository) Save(ctx context.Context, account *finance.Account) error {
	model := models.AccountModelFromDomain(account)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"parent_name", "is_group"}),
		}).
		Create(model).Error
}
