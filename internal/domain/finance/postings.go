package finance

import "github.com/comfort/backend/internal/domain/shared"

// SalesPaymentPosting moves money received from a customer into the prepaid
// sales liability.
func SalesPaymentPosting(s AccountSettings, voucher shared.VoucherRef, amount int64, paidWithCash bool) (*Posting, error) {
	money, err := s.MoneyAccount(paidWithCash)
	if err != nil {
		return nil, err
	}
	prepaid, err := s.Account(RolePrepaidSales)
	if err != nil {
		return nil, err
	}
	return NewPosting(voucher).Debit(money, amount).Credit(prepaid, amount), nil
}

// PurchasePaymentPosting pays the supplier for the goods and for the delivery.
func PurchasePaymentPosting(s AccountSettings, voucher shared.VoucherRef, itemsCost, deliveryCost int64, paidWithCash bool) (*Posting, error) {
	money, err := s.MoneyAccount(paidWithCash)
	if err != nil {
		return nil, err
	}
	prepaid, err := s.Account(RolePrepaidInventory)
	if err != nil {
		return nil, err
	}
	p := NewPosting(voucher).Credit(money, itemsCost).Debit(prepaid, itemsCost)
	if deliveryCost > 0 {
		delivery, err := s.Account(RolePurchaseDelivery)
		if err != nil {
			return nil, err
		}
		p.Credit(money, deliveryCost).Debit(delivery, deliveryCost)
	}
	return p, nil
}

// SalesAmounts are the parts of a Sales Order total recognized on delivery
type SalesAmounts struct {
	TotalAmount  int64
	ItemsCost    int64
	Margin       int64
	Discount     int64
	Delivery     int64
	Installation int64
}

// SalesReceiptPosting recognizes a delivered Sales Order: the prepaid liability
// is released into inventory, sales and service income.
func SalesReceiptPosting(s AccountSettings, voucher shared.VoucherRef, a SalesAmounts) (*Posting, error) {
	roles := []AccountRole{RolePrepaidSales, RoleInventory, RoleSales, RoleDelivery, RoleInstallation}
	accounts := make(map[AccountRole]string, len(roles))
	for _, r := range roles {
		name, err := s.Account(r)
		if err != nil {
			return nil, err
		}
		accounts[r] = name
	}
	return NewPosting(voucher).
		Debit(accounts[RolePrepaidSales], a.TotalAmount).
		Credit(accounts[RoleInventory], a.ItemsCost).
		Credit(accounts[RoleSales], a.Margin-a.Discount).
		Credit(accounts[RoleDelivery], a.Delivery).
		Credit(accounts[RoleInstallation], a.Installation), nil
}

// PurchaseReceiptPosting turns prepaid inventory into inventory on hand.
func PurchaseReceiptPosting(s AccountSettings, voucher shared.VoucherRef, itemsCost int64) (*Posting, error) {
	inventory, err := s.Account(RoleInventory)
	if err != nil {
		return nil, err
	}
	prepaid, err := s.Account(RolePrepaidInventory)
	if err != nil {
		return nil, err
	}
	return NewPosting(voucher).Debit(inventory, itemsCost).Credit(prepaid, itemsCost), nil
}

// ReturnedInventoryPosting puts the cost of returned, already delivered items
// back on inventory. costDelta is the drop in the order's items cost, so only
// cost moves: the margin recognized in Sales on delivery is not reversed, and
// the refund to the customer is drawn from Prepaid Sales.
func ReturnedInventoryPosting(s AccountSettings, voucher shared.VoucherRef, costDelta int64) (*Posting, error) {
	inventory, err := s.Account(RoleInventory)
	if err != nil {
		return nil, err
	}
	prepaid, err := s.Account(RolePrepaidSales)
	if err != nil {
		return nil, err
	}
	return NewPosting(voucher).Debit(inventory, costDelta).Credit(prepaid, costDelta), nil
}

// CustomerRefundPosting returns excess money to a customer.
func CustomerRefundPosting(s AccountSettings, voucher shared.VoucherRef, amount int64, paidWithCash bool) (*Posting, error) {
	money, err := s.MoneyAccount(paidWithCash)
	if err != nil {
		return nil, err
	}
	prepaid, err := s.Account(RolePrepaidSales)
	if err != nil {
		return nil, err
	}
	return NewPosting(voucher).Debit(prepaid, amount).Credit(money, amount), nil
}

// SupplierRefundPosting books money returned by a supplier against prepaid
// inventory (goods not received yet) or inventory (goods received).
func SupplierRefundPosting(s AccountSettings, voucher shared.VoucherRef, amount int64, paidWithCash, received bool) (*Posting, error) {
	money, err := s.MoneyAccount(paidWithCash)
	if err != nil {
		return nil, err
	}
	role := RolePrepaidInventory
	if received {
		role = RoleInventory
	}
	inventory, err := s.Account(role)
	if err != nil {
		return nil, err
	}
	return NewPosting(voucher).Debit(money, amount).Credit(inventory, amount), nil
}
