package pricing

import (
	"context"

	"github.com/comfort/backend/internal/domain/shared"
)

// CommissionRange is one bracket of the commission table. FromAmount is derived
// from the previous bracket's ToAmount; a ToAmount of zero in the last bracket
// means "and above".
type CommissionRange struct {
	ToAmount   int64
	Percentage int64
	FromAmount int64
}

// CommissionSettings holds the ordered commission brackets
type CommissionSettings struct {
	Ranges []CommissionRange
}

// NewCommissionSettings validates the ranges and derives their from-amounts
func NewCommissionSettings(ranges []CommissionRange) (*CommissionSettings, error) {
	s := &CommissionSettings{Ranges: append([]CommissionRange(nil), ranges...)}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks bracket ordering and sets FromAmount of every range.
func (s *CommissionSettings) Validate() error {
	if len(s.Ranges) == 0 {
		return shared.NewValidationError("Commission ranges are required")
	}
	for _, r := range s.Ranges[:len(s.Ranges)-1] {
		if r.ToAmount == 0 {
			return shared.NewValidationError("To Amount shouldn't be zero except last row")
		}
		if r.Percentage == 0 {
			return shared.NewValidationError("Percentage shouldn't be zero")
		}
	}
	if s.Ranges[len(s.Ranges)-1].ToAmount != 0 {
		return shared.NewValidationError("To Amount in last row should be zero")
	}
	for i := 0; i+2 < len(s.Ranges); i++ {
		if s.Ranges[i].ToAmount >= s.Ranges[i+1].ToAmount {
			return shared.NewValidationError("To Amounts should be in ascending order")
		}
	}
	s.setFromAmounts()
	return nil
}

func (s *CommissionSettings) setFromAmounts() {
	previous := int64(-1)
	for i := range s.Ranges {
		s.Ranges[i].FromAmount = previous + 1
		previous = s.Ranges[i].ToAmount
	}
}

// PercentageFor returns the commission percentage for a cumulative items cost.
// Brackets are scanned from the highest FromAmount down.
func (s *CommissionSettings) PercentageFor(amount int64) (int64, error) {
	if amount < 0 {
		return 0, shared.NewValidationError("Amount should be a positive number")
	}
	for i := len(s.Ranges) - 1; i >= 0; i-- {
		if amount >= s.Ranges[i].FromAmount {
			return s.Ranges[i].Percentage, nil
		}
	}
	return 0, shared.NewValidationError("No satisfying commission found")
}

// BracketStore is the external source of commission brackets
type BracketStore interface {
	Load(ctx context.Context) (*CommissionSettings, error)
}

// StaticBracketStore serves a fixed, already validated bracket table.
type StaticBracketStore struct {
	Settings *CommissionSettings
}

// Load implements BracketStore
func (s StaticBracketStore) Load(context.Context) (*CommissionSettings, error) {
	return s.Settings, nil
}
