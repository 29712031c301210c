package trade

import (
	"context"

	"github.com/google/uuid"
)

// SalesOrderRepository defines the interface for Sales Order persistence
type SalesOrderRepository interface {
	// FindByID finds a Sales Order by ID, returns ErrNotFound if missing
	FindByID(ctx context.Context, id uuid.UUID) (*SalesOrder, error)

	// FindByIDs finds Sales Orders by IDs; missing ids are absent from the result
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*SalesOrder, error)

	// Save creates or updates a Sales Order, checking its version
	Save(ctx context.Context, order *SalesOrder) error
}

// PurchaseOrderRepository defines the interface for Purchase Order persistence
type PurchaseOrderRepository interface {
	// FindByID finds a Purchase Order by ID, returns ErrNotFound if missing
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// FindSubmittedBySalesOrder finds the submitted Purchase Order a Sales Order
	// is linked to, returns ErrNotFound if there is none
	FindSubmittedBySalesOrder(ctx context.Context, salesOrderID uuid.UUID) (*PurchaseOrder, error)

	// Save creates or updates a Purchase Order, checking its version
	Save(ctx context.Context, order *PurchaseOrder) error
}

// SalesReturnRepository defines the interface for Sales Return persistence
type SalesReturnRepository interface {
	// FindByID finds a Sales Return by ID, returns ErrNotFound if missing
	FindByID(ctx context.Context, id uuid.UUID) (*SalesReturn, error)

	// FindBySalesOrder returns returns of a Sales Order in creation order
	FindBySalesOrder(ctx context.Context, salesOrderID uuid.UUID) ([]SalesReturn, error)

	// FindByPurchaseReturn returns the Sales Returns spawned by a Purchase Return
	FindByPurchaseReturn(ctx context.Context, purchaseReturnID uuid.UUID) ([]SalesReturn, error)

	// Save creates or updates a Sales Return
	Save(ctx context.Context, ret *SalesReturn) error
}

// PurchaseReturnRepository defines the interface for Purchase Return persistence
type PurchaseReturnRepository interface {
	// FindByID finds a Purchase Return by ID, returns ErrNotFound if missing
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseReturn, error)

	// Save creates or updates a Purchase Return
	Save(ctx context.Context, ret *PurchaseReturn) error
}
