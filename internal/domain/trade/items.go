package trade

import (
	"sort"

	"github.com/comfort/backend/internal/domain/catalog"
	"github.com/comfort/backend/internal/domain/inventory"
)

// ItemLine is a quantity of one catalog item on an order or a return.
type ItemLine struct {
	ItemCode string
	ItemName string
	Qty      int64
	Rate     int64
	Weight   float64
}

// Amount returns rate times quantity
func (l ItemLine) Amount() int64 {
	return l.Rate * l.Qty
}

// TotalWeight returns weight times quantity
func (l ItemLine) TotalWeight() float64 {
	return l.Weight * float64(l.Qty)
}

// ChildItem is a derived line: one component of a combination on a Sales Order,
// already multiplied by the combination's quantity.
type ChildItem struct {
	ParentItemCode string
	ItemCode       string
	ItemName       string
	Qty            int64
}

// CountQty sums quantities by item code
func CountQty(lines []ItemLine) map[string]int64 {
	out := make(map[string]int64, len(lines))
	for _, l := range lines {
		out[l.ItemCode] += l.Qty
	}
	return out
}

// MergeSameItems collapses lines with the same item code into the first of them.
func MergeSameItems(lines []ItemLine) []ItemLine {
	index := make(map[string]int, len(lines))
	out := make([]ItemLine, 0, len(lines))
	for _, l := range lines {
		if i, ok := index[l.ItemCode]; ok {
			out[i].Qty += l.Qty
			continue
		}
		index[l.ItemCode] = len(out)
		out = append(out, l)
	}
	return out
}

// DeleteEmpty drops lines with zero quantity
func DeleteEmpty(lines []ItemLine) []ItemLine {
	out := make([]ItemLine, 0, len(lines))
	for _, l := range lines {
		if l.Qty != 0 {
			out = append(out, l)
		}
	}
	return out
}

// ToStockItems converts lines to stock quantities aggregated by code
func ToStockItems(lines []ItemLine) []inventory.ItemQty {
	items := make([]inventory.ItemQty, 0, len(lines))
	for _, l := range lines {
		items = append(items, inventory.ItemQty{ItemCode: l.ItemCode, Qty: l.Qty})
	}
	return inventory.Aggregate(items)
}

// Codes returns the distinct item codes of lines in first-occurrence order
func Codes(lines []ItemLine) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ItemCode]; ok {
			continue
		}
		seen[l.ItemCode] = struct{}{}
		out = append(out, l.ItemCode)
	}
	return out
}

// refreshFromCatalog overwrites name, rate and weight of every line.
func refreshFromCatalog(lines []ItemLine, lookup catalog.Lookup) error {
	for i := range lines {
		item, err := lookup.Get(lines[i].ItemCode)
		if err != nil {
			return err
		}
		lines[i].ItemName = item.Name
		lines[i].Rate = item.Rate
		lines[i].Weight = item.Weight
	}
	return nil
}

// BackfillFromCatalog fills name, rate and weight of lines that lack a rate.
// Lines whose item is not in lookup are left unchanged.
func BackfillFromCatalog(lines []ItemLine, lookup catalog.Lookup) {
	for i := range lines {
		if lines[i].Rate != 0 {
			continue
		}
		item, ok := lookup[lines[i].ItemCode]
		if !ok {
			continue
		}
		lines[i].ItemName = item.Name
		lines[i].Rate = item.Rate
		lines[i].Weight = item.Weight
	}
}

// expandChildren derives child item lines for every combination among lines.
// Lines must already be merged so each parent appears once.
func expandChildren(lines []ItemLine, lookup catalog.Lookup) ([]ChildItem, error) {
	var out []ChildItem
	for _, l := range lines {
		item, err := lookup.Get(l.ItemCode)
		if err != nil {
			return nil, err
		}
		if err := catalog.ValidateNoNesting(item, lookup); err != nil {
			return nil, err
		}
		for _, c := range item.Children {
			name := c.ItemName
			if child, ok := lookup[c.ItemCode]; ok && name == "" {
				name = child.Name
			}
			out = append(out, ChildItem{
				ParentItemCode: l.ItemCode,
				ItemCode:       c.ItemCode,
				ItemName:       name,
				Qty:            c.Qty * l.Qty,
			})
		}
	}
	return out, nil
}

// splitView replaces every combination line that has child items with those
// child items. Child lines carry no rate or weight.
func splitView(lines []ItemLine, children []ChildItem) []ItemLine {
	parents := make(map[string]struct{}, len(children))
	out := make([]ItemLine, 0, len(lines)+len(children))
	for _, c := range children {
		parents[c.ParentItemCode] = struct{}{}
		out = append(out, ItemLine{ItemCode: c.ItemCode, ItemName: c.ItemName, Qty: c.Qty})
	}
	for _, l := range lines {
		if _, ok := parents[l.ItemCode]; ok {
			continue
		}
		out = append(out, l)
	}
	return out
}

// splitLinesWithCatalog expands every combination among lines into its
// children using lookup, pricing children from the catalog.
func splitLinesWithCatalog(lines []ItemLine, lookup catalog.Lookup) []ItemLine {
	out := make([]ItemLine, 0, len(lines))
	for _, l := range lines {
		item, ok := lookup[l.ItemCode]
		if !ok || !item.IsCombination() {
			out = append(out, l)
			continue
		}
		for _, c := range item.Children {
			line := ItemLine{ItemCode: c.ItemCode, ItemName: c.ItemName, Qty: c.Qty * l.Qty}
			if child, ok := lookup[c.ItemCode]; ok {
				line.ItemName = child.Name
				line.Rate = child.Rate
				line.Weight = child.Weight
			}
			out = append(out, line)
		}
	}
	return out
}

// decrement subtracts counts from lines with matching codes, spreading over
// several lines when one is not enough. Emptied lines are kept with zero qty.
func decrement(lines []ItemLine, counts map[string]int64) {
	remaining := make(map[string]int64, len(counts))
	for code, qty := range counts {
		remaining[code] = qty
	}
	for i := range lines {
		left := remaining[lines[i].ItemCode]
		if left <= 0 {
			continue
		}
		take := left
		if lines[i].Qty < take {
			take = lines[i].Qty
		}
		lines[i].Qty -= take
		remaining[lines[i].ItemCode] = left - take
	}
}

// sortByName orders lines by item name, then by code
func sortByName(lines []ItemLine) {
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].ItemName != lines[j].ItemName {
			return lines[i].ItemName < lines[j].ItemName
		}
		return lines[i].ItemCode < lines[j].ItemCode
	})
}
