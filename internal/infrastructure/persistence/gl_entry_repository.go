package persistence

import (
	"context"

	"github.com/comfort/backend/internal/domain/finance"
	"github.com/comfort/backend/internal/domain/shared"
	"github.com/comfort/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormGLEntryRepository implements GLEntryRepository using GORM
type GormGLEntryRepository struct {
	db *gorm.DB
}

// NewGormGLEntryRepository creates a new GormGLEntryRepository
func NewGormGLEntryRepository(db *gorm.DB) *GormGLEntryRepository {
	return &GormGLEntryRepository{db: db}
}

// Create inserts entries
func (r *GormGLEntryRepository) Create(ctx context.Context, entries ...*finance.GLEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]*models.GLEntryModel, len(entries))
	for i, e := range entries {
		rows[i] = models.GLEntryModelFromDomain(e)
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// CancelFor marks the submitted entries of voucher cancelled
func (r *GormGLEntryRepository) CancelFor(ctx context.Context, voucher shared.VoucherRef) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.GLEntryModel{}).
		Where("voucher_type = ? AND voucher_id = ? AND docstatus = ?",
			string(voucher.Type), voucher.ID, int(shared.DocStatusSubmitted)).
		Update("docstatus", int(shared.DocStatusCancelled))
	return result.RowsAffected, result.Error
}

// FindByVoucher returns every entry of voucher, cancelled ones included
func (r *GormGLEntryRepository) FindByVoucher(ctx context.Context, voucher shared.VoucherRef) ([]finance.GLEntry, error) {
	var rows []models.GLEntryModel
	if err := r.db.WithContext(ctx).
		Where("voucher_type = ? AND voucher_id = ?", string(voucher.Type), voucher.ID).
		Order("posted_at, account").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]finance.GLEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, nil
}

func (r *GormGLEntryRepository) submitted(ctx context.Context, filter finance.BalanceFilter) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&models.GLEntryModel{}).
		Where("docstatus = ?", int(shared.DocStatusSubmitted))
	if !filter.From.IsZero() {
		query = query.Where("posted_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("posted_at <= ?", filter.To)
	}
	return query
}

// Balance returns debit minus credit of account
func (r *GormGLEntryRepository) Balance(ctx context.Context, account string, filter finance.BalanceFilter) (int64, error) {
	var balance int64
	err := r.submitted(ctx, filter).
		Where("account = ?", account).
		Select("CAST(COALESCE(SUM(debit - credit), 0) AS BIGINT)").
		Scan(&balance).Error
	return balance, err
}

// Balances returns debit minus credit per account
func (r *GormGLEntryRepository) Balances(ctx context.Context, filter finance.BalanceFilter) ([]finance.AccountBalance, error) {
	var rows []struct {
		Account string
		Balance int64
	}
	if err := r.submitted(ctx, filter).
		Select("account, CAST(COALESCE(SUM(debit - credit), 0) AS BIGINT) AS balance").
		Group("account").
		Order("account").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]finance.AccountBalance, len(rows))
	for i, row := range rows {
		out[i] = finance.AccountBalance{Account: row.Account, Balance: row.Balance}
	}
	return out, nil
}

// SumForVouchers returns debit minus credit over accounts for the given vouchers
func (r *GormGLEntryRepository) SumForVouchers(ctx context.Context, accounts []string, vouchers []shared.VoucherRef) (int64, error) {
	if len(accounts) == 0 || len(vouchers) == 0 {
		return 0, nil
	}
	ids := make([]uuid.UUID, len(vouchers))
	for i, v := range vouchers {
		ids[i] = v.ID
	}
	var sum int64
	err := r.submitted(ctx, finance.BalanceFilter{}).
		Where("account IN ? AND voucher_id IN ?", accounts, ids).
		Select("CAST(COALESCE(SUM(debit - credit), 0) AS BIGINT)").
		Scan(&sum).Error
	return sum, err
}

// TrialBalance returns total debit minus total credit of submitted entries
func (r *GormGLEntryRepository) TrialBalance(ctx context.Context) (int64, error) {
	var balance int64
	err := r.submitted(ctx, finance.BalanceFilter{}).
		Select("CAST(COALESCE(SUM(debit - credit), 0) AS BIGINT)").
		Scan(&balance).Error
	return balance, err
}
