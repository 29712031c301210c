package inventory

import (
	"context"
	"fmt"

	"github.com/comfort/backend/internal/domain/inventory"
	"github.com/comfort/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Stock moves item quantities between the four stock buckets. Every mutation
// locks the affected item codes for the rest of the surrounding transaction.
type Stock struct {
	entries inventory.StockEntryRepository
	locker  shared.Locker
	logger  *zap.Logger
}

// NewStock creates a new Stock
func NewStock(entries inventory.StockEntryRepository, locker shared.Locker, logger *zap.Logger) *Stock {
	if locker == nil {
		locker = shared.NoopLocker{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stock{entries: entries, locker: locker, logger: logger}
}

func (s *Stock) lockItems(ctx context.Context, codes []string) error {
	keys := make([]string, 0, len(codes))
	for _, c := range codes {
		keys = append(keys, shared.StockLockKey(c))
	}
	if err := s.locker.Lock(ctx, shared.SortedUniqueKeys(keys)...); err != nil {
		return fmt.Errorf("failed to lock stock: %w", err)
	}
	return nil
}

// CreateEntry writes one batch for voucher. Quantities are negated when
// reverse is set. A batch whose quantities all cancel out is not written and
// nil is returned.
func (s *Stock) CreateEntry(
	ctx context.Context,
	voucher shared.VoucherRef,
	stockType inventory.StockType,
	items []inventory.ItemQty,
	reverse bool,
) (*inventory.StockEntry, error) {
	entry, err := inventory.NewStockEntry(voucher, stockType, items, reverse)
	if err != nil {
		return nil, err
	}
	if entry.IsEmpty() {
		return nil, nil
	}
	if err := s.lockItems(ctx, inventory.Codes(entry.Items)); err != nil {
		return nil, err
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create stock entry: %w", err)
	}
	s.logger.Debug("stock entry created",
		zap.String("voucher", voucher.String()),
		zap.String("stock_type", stockType.String()),
		zap.Int64("qty", entry.Total()),
	)
	return entry, nil
}

// Transfer moves items from one bucket to another as an outflow/inflow pair
func (s *Stock) Transfer(
	ctx context.Context,
	voucher shared.VoucherRef,
	from, to inventory.StockType,
	items []inventory.ItemQty,
) error {
	if _, err := s.CreateEntry(ctx, voucher, from, items, true); err != nil {
		return err
	}
	_, err := s.CreateEntry(ctx, voucher, to, items, false)
	return err
}

// EnsureAvailable checks that a bucket holds at least items. The checked codes
// stay locked so the balance cannot change before the caller writes.
func (s *Stock) EnsureAvailable(ctx context.Context, stockType inventory.StockType, items []inventory.ItemQty) error {
	items = inventory.Aggregate(items)
	codes := inventory.Codes(items)
	if len(codes) == 0 {
		return nil
	}
	if err := s.lockItems(ctx, codes); err != nil {
		return err
	}
	balance, err := s.entries.Balance(ctx, stockType, codes...)
	if err != nil {
		return fmt.Errorf("failed to read %s balance: %w", stockType, err)
	}
	for _, it := range items {
		if have := balance[it.ItemCode]; have < it.Qty {
			return shared.NewValidationError(fmt.Sprintf(
				"Insufficient quantity %d for Item %s in %s: available %d", it.Qty, it.ItemCode, stockType, have))
		}
	}
	return nil
}

// CancelEntriesFor voids every submitted batch of voucher. Cancelling twice is a no-op.
func (s *Stock) CancelEntriesFor(ctx context.Context, voucher shared.VoucherRef) error {
	batches, err := s.entries.FindByVoucher(ctx, voucher)
	if err != nil {
		return fmt.Errorf("failed to load stock entries of %s: %w", voucher, err)
	}
	var codes []string
	for _, b := range batches {
		if b.DocStatus == shared.DocStatusSubmitted {
			codes = append(codes, inventory.Codes(b.Items)...)
		}
	}
	if len(codes) == 0 {
		return nil
	}
	if err := s.lockItems(ctx, codes); err != nil {
		return err
	}
	n, err := s.entries.CancelFor(ctx, voucher)
	if err != nil {
		return fmt.Errorf("failed to cancel stock entries of %s: %w", voucher, err)
	}
	s.logger.Debug("stock entries cancelled", zap.String("voucher", voucher.String()), zap.Int64("batches", n))
	return nil
}

// Balance returns the per-item quantity of a bucket. Items summing to zero are omitted.
func (s *Stock) Balance(ctx context.Context, stockType inventory.StockType) ([]inventory.ItemQty, error) {
	if !stockType.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Unknown Stock Type %s", stockType))
	}
	counts, err := s.entries.Balance(ctx, stockType)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s balance: %w", stockType, err)
	}
	for code, qty := range counts {
		if qty == 0 {
			delete(counts, code)
		}
	}
	return inventory.FromCounts(counts), nil
}
