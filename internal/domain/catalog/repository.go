package catalog

import "context"

// ItemCatalog is the external product feed. Codes that are unknown are simply
// absent from the returned lookup.
type ItemCatalog interface {
	GetItems(ctx context.Context, codes []string) (Lookup, error)
}

// ItemRepository stores catalog items locally
type ItemRepository interface {
	ItemCatalog
	Save(ctx context.Context, item *Item) error
}

// LoadWithChildren fetches codes and, in a second round, the children of every
// combination among them.
func LoadWithChildren(ctx context.Context, c ItemCatalog, codes []string) (Lookup, error) {
	lookup, err := c.GetItems(ctx, codes)
	if err != nil {
		return nil, err
	}
	if lookup == nil {
		lookup = Lookup{}
	}
	if missing := lookup.ChildCodes(); len(missing) > 0 {
		children, err := c.GetItems(ctx, missing)
		if err != nil {
			return nil, err
		}
		lookup.Merge(children)
	}
	return lookup, nil
}
