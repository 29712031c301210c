package catalog

import (
	"fmt"
	"sort"

	"github.com/comfort/backend/internal/domain/shared"
)

// ChildItem is one component of a combination item.
type ChildItem struct {
	ItemCode string
	ItemName string
	Qty      int64
}

// Item is a catalog entry. An item with children is a fixed bundle
// (combination) of other items; composition is one level deep.
type Item struct {
	Code     string
	Name     string
	Rate     int64
	Weight   float64
	Children []ChildItem
}

// IsCombination reports whether the item is a bundle of other items
func (i *Item) IsCombination() bool {
	return len(i.Children) > 0
}

// Validate checks the item's own fields and that no child refers to the item itself.
func (i *Item) Validate() error {
	if i.Code == "" {
		return shared.NewValidationError("Item Code is required")
	}
	if i.Rate < 0 {
		return shared.NewValidationError(fmt.Sprintf("Rate of Item %s cannot be negative", i.Code))
	}
	if i.Weight < 0 {
		return shared.NewValidationError(fmt.Sprintf("Weight of Item %s cannot be negative", i.Code))
	}
	for _, c := range i.Children {
		if c.ItemCode == i.Code {
			return shared.NewValidationError(fmt.Sprintf("Item %s cannot contain itself", i.Code))
		}
		if c.Qty <= 0 {
			return shared.NewValidationError(fmt.Sprintf("Quantity of Child Item %s should be positive", c.ItemCode))
		}
	}
	return nil
}

// ValidateNoNesting rejects combinations whose children are combinations themselves.
func ValidateNoNesting(item *Item, lookup Lookup) error {
	for _, c := range item.Children {
		child, ok := lookup[c.ItemCode]
		if !ok {
			return shared.NewValidationError(fmt.Sprintf("Item %s not found", c.ItemCode))
		}
		if child.IsCombination() {
			return shared.NewValidationError(fmt.Sprintf("Child Item %s cannot have children", c.ItemCode))
		}
	}
	return nil
}

// Lookup is a snapshot of catalog items keyed by code, fetched once per operation.
type Lookup map[string]*Item

// Get returns the item for code or a validation error naming it
func (l Lookup) Get(code string) (*Item, error) {
	item, ok := l[code]
	if !ok {
		return nil, shared.NewValidationError(fmt.Sprintf("Item %s not found", code))
	}
	return item, nil
}

// ChildCodes returns the distinct child item codes of every combination in the lookup
func (l Lookup) ChildCodes() []string {
	seen := map[string]struct{}{}
	var codes []string
	for _, item := range l {
		for _, c := range item.Children {
			if _, ok := seen[c.ItemCode]; ok {
				continue
			}
			if _, ok := l[c.ItemCode]; ok {
				continue
			}
			seen[c.ItemCode] = struct{}{}
			codes = append(codes, c.ItemCode)
		}
	}
	sort.Strings(codes)
	return codes
}

// Merge adds every item of other into l
func (l Lookup) Merge(other Lookup) {
	for code, item := range other {
		l[code] = item
	}
}
