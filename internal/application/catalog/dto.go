package catalog

import (
	"github.com/comfort/backend/internal/domain/catalog"
	"github.com/comfort/backend/internal/domain/pricing"
)

// ChildItemInput is one component of a combination item
type ChildItemInput struct {
	ItemCode string `json:"item_code" binding:"required,max=140"`
	Qty      int64  `json:"qty" binding:"required,gt=0"`
}

// SaveItemRequest creates or replaces a catalog item
type SaveItemRequest struct {
	Code     string           `json:"code" binding:"required,max=140"`
	Name     string           `json:"name" binding:"required,max=140"`
	Rate     int64            `json:"rate" binding:"gte=0"`
	Weight   float64          `json:"weight" binding:"gte=0"`
	Children []ChildItemInput `json:"children" binding:"dive"`
}

// ChildItemResponse is one component of a combination item
type ChildItemResponse struct {
	ItemCode string `json:"item_code"`
	ItemName string `json:"item_name"`
	Qty      int64  `json:"qty"`
}

// ItemResponse represents a catalog item in API responses
type ItemResponse struct {
	Code     string              `json:"code"`
	Name     string              `json:"name"`
	Rate     int64               `json:"rate"`
	Weight   float64             `json:"weight"`
	Children []ChildItemResponse `json:"children"`
}

// CommissionRangeInput is one bracket of the commission table
type CommissionRangeInput struct {
	ToAmount   int64 `json:"to_amount" binding:"gte=0"`
	Percentage int64 `json:"percentage" binding:"gte=0,lte=100"`
}

// SaveCommissionRequest replaces the commission table
type SaveCommissionRequest struct {
	Ranges []CommissionRangeInput `json:"ranges" binding:"required,min=1,dive"`
}

// CommissionRangeResponse is one bracket with its derived lower bound
type CommissionRangeResponse struct {
	FromAmount int64 `json:"from_amount"`
	ToAmount   int64 `json:"to_amount"`
	Percentage int64 `json:"percentage"`
}

// CommissionResponse represents the commission table in API responses
type CommissionResponse struct {
	Ranges []CommissionRangeResponse `json:"ranges"`
}

// ToItemResponse converts a domain Item to a response DTO
func ToItemResponse(item *catalog.Item) ItemResponse {
	children := make([]ChildItemResponse, 0, len(item.Children))
	for _, c := range item.Children {
		children = append(children, ChildItemResponse{ItemCode: c.ItemCode, ItemName: c.ItemName, Qty: c.Qty})
	}
	return ItemResponse{
		Code:     item.Code,
		Name:     item.Name,
		Rate:     item.Rate,
		Weight:   item.Weight,
		Children: children,
	}
}

// ToCommissionResponse converts validated commission settings to a response DTO
func ToCommissionResponse(s *pricing.CommissionSettings) CommissionResponse {
	ranges := make([]CommissionRangeResponse, 0, len(s.Ranges))
	for _, r := range s.Ranges {
		ranges = append(ranges, CommissionRangeResponse{FromAmount: r.FromAmount, ToAmount: r.ToAmount, Percentage: r.Percentage})
	}
	return CommissionResponse{Ranges: ranges}
}
