package inventory

import (
	"fmt"
	"sort"
	"time"

	"github.com/comfort/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StockType is one of the four stock buckets: Available (not promised to a
// customer) or Reserved (promised), crossed with Purchased (ordered from the
// supplier) or Actual (on hand).
type StockType string

const (
	ReservedActual     StockType = "Reserved Actual"
	AvailableActual    StockType = "Available Actual"
	ReservedPurchased  StockType = "Reserved Purchased"
	AvailablePurchased StockType = "Available Purchased"
)

// AllStockTypes lists the buckets in display order
var AllStockTypes = []StockType{ReservedActual, AvailableActual, ReservedPurchased, AvailablePurchased}

// IsValid checks if the stock type is one of the four buckets
func (t StockType) IsValid() bool {
	switch t {
	case ReservedActual, AvailableActual, ReservedPurchased, AvailablePurchased:
		return true
	}
	return false
}

// String returns the string representation of StockType
func (t StockType) String() string {
	return string(t)
}

// ParseStockType parses a bucket name
func ParseStockType(s string) (StockType, error) {
	t := StockType(s)
	if !t.IsValid() {
		return "", shared.NewValidationError(fmt.Sprintf("Unknown Stock Type %s", s))
	}
	return t, nil
}

// ItemQty is a signed quantity of one item code
type ItemQty struct {
	ItemCode string
	Qty      int64
}

// Aggregate sums quantities by item code, keeps first-occurrence order and
// drops codes that sum to zero.
func Aggregate(items []ItemQty) []ItemQty {
	index := make(map[string]int, len(items))
	var out []ItemQty
	for _, it := range items {
		if i, ok := index[it.ItemCode]; ok {
			out[i].Qty += it.Qty
			continue
		}
		index[it.ItemCode] = len(out)
		out = append(out, it)
	}
	res := out[:0]
	for _, it := range out {
		if it.Qty != 0 {
			res = append(res, it)
		}
	}
	return res
}

// FromCounts converts a code -> quantity map to items sorted by code
func FromCounts(counts map[string]int64) []ItemQty {
	out := make([]ItemQty, 0, len(counts))
	for code, qty := range counts {
		out = append(out, ItemQty{ItemCode: code, Qty: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemCode < out[j].ItemCode })
	return out
}

// Codes returns the item codes of items
func Codes(items []ItemQty) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ItemCode)
	}
	return out
}

// StockEntry is one voucher-owned batch of quantity deltas in a single bucket.
type StockEntry struct {
	ID        uuid.UUID
	Voucher   shared.VoucherRef
	StockType StockType
	Items     []ItemQty
	DocStatus shared.DocStatus
	PostedAt  time.Time
}

// NewStockEntry creates a submitted batch. Quantities are negated when reverse
// is set; the returned entry has no items when everything nets to zero.
func NewStockEntry(voucher shared.VoucherRef, stockType StockType, items []ItemQty, reverse bool) (*StockEntry, error) {
	if !stockType.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Unknown Stock Type %s", stockType))
	}
	if !voucher.Type.IsValid() || voucher.ID == uuid.Nil {
		return nil, shared.NewValidationError("Stock Entry requires a voucher")
	}
	signed := make([]ItemQty, 0, len(items))
	for _, it := range items {
		if it.ItemCode == "" {
			return nil, shared.NewValidationError("Stock Entry item requires Item Code")
		}
		qty := it.Qty
		if reverse {
			qty = -qty
		}
		signed = append(signed, ItemQty{ItemCode: it.ItemCode, Qty: qty})
	}
	return &StockEntry{
		ID:        uuid.New(),
		Voucher:   voucher,
		StockType: stockType,
		Items:     Aggregate(signed),
		DocStatus: shared.DocStatusSubmitted,
		PostedAt:  time.Now(),
	}, nil
}

// IsEmpty reports whether the batch carries no quantity
func (e *StockEntry) IsEmpty() bool {
	return len(e.Items) == 0
}

// Total returns the net quantity of the batch
func (e *StockEntry) Total() int64 {
	var total int64
	for _, it := range e.Items {
		total += it.Qty
	}
	return total
}
