package catalog

import (
	"context"
	"testing"

	"github.com/comfort/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct {
	items Lookup
	calls int
}

func (s *stubCatalog) GetItems(_ context.Context, codes []string) (Lookup, error) {
	s.calls++
	out := Lookup{}
	for _, c := range codes {
		if item, ok := s.items[c]; ok {
			out[c] = item
		}
	}
	return out, nil
}

func TestItem_Validate(t *testing.T) {
	t.Run("valid combination", func(t *testing.T) {
		item := &Item{Code: "29128569", Rate: 17950, Children: []ChildItem{{ItemCode: "10014030", Qty: 2}}}
		assert.NoError(t, item.Validate())
		assert.True(t, item.IsCombination())
	})

	t.Run("contains itself", func(t *testing.T) {
		item := &Item{Code: "1", Children: []ChildItem{{ItemCode: "1", Qty: 1}}}
		err := item.Validate()
		require.Error(t, err)
		assert.True(t, shared.IsValidationError(err))
	})

	t.Run("negative rate", func(t *testing.T) {
		assert.Error(t, (&Item{Code: "1", Rate: -1}).Validate())
	})
}

func TestValidateNoNesting(t *testing.T) {
	lookup := Lookup{
		"leaf":  {Code: "leaf"},
		"combo": {Code: "combo", Children: []ChildItem{{ItemCode: "leaf", Qty: 1}}},
	}

	assert.NoError(t, ValidateNoNesting(&Item{Code: "new", Children: []ChildItem{{ItemCode: "leaf", Qty: 1}}}, lookup))

	err := ValidateNoNesting(&Item{Code: "new", Children: []ChildItem{{ItemCode: "combo", Qty: 1}}}, lookup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot have children")
}

func TestLoadWithChildren(t *testing.T) {
	c := &stubCatalog{items: Lookup{
		"a":     {Code: "a", Rate: 100},
		"b":     {Code: "b", Rate: 200},
		"combo": {Code: "combo", Rate: 500, Children: []ChildItem{{ItemCode: "a", Qty: 1}, {ItemCode: "b", Qty: 2}}},
	}}

	lookup, err := LoadWithChildren(context.Background(), c, []string{"combo"})
	require.NoError(t, err)
	assert.Len(t, lookup, 3)
	assert.Equal(t, 2, c.calls)
}
