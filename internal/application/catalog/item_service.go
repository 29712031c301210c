// Package catalog maintains the local item catalog and the commission table.
package catalog

import (
	"context"
	"fmt"

	"github.com/comfort/backend/internal/domain/catalog"
	"github.com/comfort/backend/internal/domain/pricing"
	"github.com/comfort/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// BracketRepository stores the commission table
type BracketRepository interface {
	pricing.BracketStore
	Save(ctx context.Context, ranges []pricing.CommissionRange) error
}

// ItemService handles catalog item operations
type ItemService struct {
	items  catalog.ItemRepository
	logger *zap.Logger
}

// NewItemService creates a new ItemService
func NewItemService(items catalog.ItemRepository, logger *zap.Logger) *ItemService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItemService{items: items, logger: logger}
}

// Save validates an item, resolves its children's names and stores it
func (s *ItemService) Save(ctx context.Context, req SaveItemRequest) (*ItemResponse, error) {
	item := &catalog.Item{
		Code:   req.Code,
		Name:   req.Name,
		Rate:   req.Rate,
		Weight: req.Weight,
	}
	codes := make([]string, 0, len(req.Children))
	for _, c := range req.Children {
		item.Children = append(item.Children, catalog.ChildItem{ItemCode: c.ItemCode, Qty: c.Qty})
		codes = append(codes, c.ItemCode)
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}

	if len(codes) > 0 {
		children, err := s.items.GetItems(ctx, codes)
		if err != nil {
			return nil, fmt.Errorf("failed to load child items: %w", err)
		}
		if err := catalog.ValidateNoNesting(item, children); err != nil {
			return nil, err
		}
		for i := range item.Children {
			item.Children[i].ItemName = children[item.Children[i].ItemCode].Name
		}
	}

	if err := s.items.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to save item %s: %w", item.Code, err)
	}
	s.logger.Info("item saved", zap.String("item_code", item.Code), zap.Int("children", len(item.Children)))

	resp := ToItemResponse(item)
	return &resp, nil
}

// Get returns one item by code
func (s *ItemService) Get(ctx context.Context, code string) (*ItemResponse, error) {
	lookup, err := s.items.GetItems(ctx, []string{code})
	if err != nil {
		return nil, fmt.Errorf("failed to load item %s: %w", code, err)
	}
	item, ok := lookup[code]
	if !ok {
		return nil, shared.ErrNotFound
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// CommissionService maintains the commission bracket table
type CommissionService struct {
	brackets BracketRepository
	logger   *zap.Logger
}

// NewCommissionService creates a new CommissionService
func NewCommissionService(brackets BracketRepository, logger *zap.Logger) *CommissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommissionService{brackets: brackets, logger: logger}
}

// Get returns the current commission table
func (s *CommissionService) Get(ctx context.Context) (*CommissionResponse, error) {
	settings, err := s.brackets.Load(ctx)
	if err != nil {
		return nil, err
	}
	resp := ToCommissionResponse(settings)
	return &resp, nil
}

// Save validates and replaces the commission table
func (s *CommissionService) Save(ctx context.Context, req SaveCommissionRequest) (*CommissionResponse, error) {
	ranges := make([]pricing.CommissionRange, 0, len(req.Ranges))
	for _, r := range req.Ranges {
		ranges = append(ranges, pricing.CommissionRange{ToAmount: r.ToAmount, Percentage: r.Percentage})
	}
	settings, err := pricing.NewCommissionSettings(ranges)
	if err != nil {
		return nil, err
	}
	if err := s.brackets.Save(ctx, settings.Ranges); err != nil {
		return nil, fmt.Errorf("failed to save commission ranges: %w", err)
	}
	s.logger.Info("commission table saved", zap.Int("ranges", len(settings.Ranges)))

	resp := ToCommissionResponse(settings)
	return &resp, nil
}
