package finance

import (
	"fmt"

	"github.com/comfort/backend/internal/domain/shared"
)

// Account is a node of the chart of accounts. Only leaf (non-group) accounts
// may receive ledger entries.
type Account struct {
	Name       string
	ParentName string
	IsGroup    bool
}

// CanPost checks whether entries may be recorded against the account
func (a *Account) CanPost() error {
	if a.IsGroup {
		return shared.NewValidationError(fmt.Sprintf("Account %s is a group account", a.Name))
	}
	return nil
}

// AccountNode describes a subtree of a chart
type AccountNode struct {
	Name     string
	Children []AccountNode
}

// DefaultChart is the chart of accounts a fresh installation starts with.
var DefaultChart = []AccountNode{
	{Name: "Assets", Children: []AccountNode{
		{Name: "Bank"},
		{Name: "Cash"},
		{Name: "Inventory"},
		{Name: "Prepaid Inventory"},
	}},
	{Name: "Liabilities", Children: []AccountNode{
		{Name: "Prepaid Sales"},
	}},
	{Name: "Expense", Children: []AccountNode{
		{Name: "Cost of Goods Sold"},
		{Name: "Purchase Delivery"},
		{Name: "Sales Compensations"},
	}},
	{Name: "Income", Children: []AccountNode{
		{Name: "Purchase Compensations"},
		{Name: "Sales"},
		{Name: "Service", Children: []AccountNode{
			{Name: "Delivery"},
			{Name: "Installation"},
		}},
	}},
}

// FlattenChart returns the accounts of a chart, parents before children.
func FlattenChart(nodes []AccountNode) []Account {
	var out []Account
	var walk func(parent string, nodes []AccountNode)
	walk = func(parent string, nodes []AccountNode) {
		for _, n := range nodes {
			out = append(out, Account{Name: n.Name, ParentName: parent, IsGroup: len(n.Children) > 0})
			walk(n.Name, n.Children)
		}
	}
	walk("", nodes)
	return out
}

// AccountRole names the purpose an account serves in postings
type AccountRole string

const (
	RoleBank                  AccountRole = "bank"
	RoleCash                  AccountRole = "cash"
	RoleInventory             AccountRole = "inventory"
	RolePrepaidInventory      AccountRole = "prepaid_inventory"
	RolePrepaidSales          AccountRole = "prepaid_sales"
	RoleCostOfGoodsSold       AccountRole = "cost_of_goods_sold"
	RolePurchaseDelivery      AccountRole = "purchase_delivery"
	RoleSales                 AccountRole = "sales"
	RoleDelivery              AccountRole = "delivery"
	RoleInstallation          AccountRole = "installation"
	RoleSalesCompensations    AccountRole = "sales_compensations"
	RolePurchaseCompensations AccountRole = "purchase_compensations"
)

// AccountSettings maps roles to leaf account names
type AccountSettings map[AccountRole]string

// DefaultAccountSettings binds every role to the matching account of DefaultChart
func DefaultAccountSettings() AccountSettings {
	return AccountSettings{
		RoleBank:                  "Bank",
		RoleCash:                  "Cash",
		RoleInventory:             "Inventory",
		RolePrepaidInventory:      "Prepaid Inventory",
		RolePrepaidSales:          "Prepaid Sales",
		RoleCostOfGoodsSold:       "Cost of Goods Sold",
		RolePurchaseDelivery:      "Purchase Delivery",
		RoleSales:                 "Sales",
		RoleDelivery:              "Delivery",
		RoleInstallation:          "Installation",
		RoleSalesCompensations:    "Sales Compensations",
		RolePurchaseCompensations: "Purchase Compensations",
	}
}

// Account returns the account bound to role
func (s AccountSettings) Account(role AccountRole) (string, error) {
	if name, ok := s[role]; ok && name != "" {
		return name, nil
	}
	return "", shared.NewValidationError(fmt.Sprintf("Finance Settings has no field \"%s_account\"", role))
}

// MoneyAccount returns the cash or the bank account
func (s AccountSettings) MoneyAccount(paidWithCash bool) (string, error) {
	if paidWithCash {
		return s.Account(RoleCash)
	}
	return s.Account(RoleBank)
}

// MoneyAccounts returns both money accounts, cash first
func (s AccountSettings) MoneyAccounts() ([]string, error) {
	cash, err := s.Account(RoleCash)
	if err != nil {
		return nil, err
	}
	bank, err := s.Account(RoleBank)
	if err != nil {
		return nil, err
	}
	return []string{cash, bank}, nil
}

// WithOverrides returns a copy of s with overrides applied. Keys are role names.
func (s AccountSettings) WithOverrides(overrides map[string]string) AccountSettings {
	out := make(AccountSettings, len(s))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range overrides {
		if v != "" {
			out[AccountRole(k)] = v
		}
	}
	return out
}
