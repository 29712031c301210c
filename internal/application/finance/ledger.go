package finance

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/comfort/backend/internal/domain/finance"
	"github.com/comfort/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Ledger records and queries general ledger entries. A Ledger bound to
// transaction-scoped repositories takes its locks inside that transaction.
type Ledger struct {
	accounts finance.AccountRepository
	entries  finance.GLEntryRepository
	locker   shared.Locker
	logger   *zap.Logger

	mu    sync.RWMutex
	known map[string]*finance.Account
}

// NewLedger creates a new Ledger
func NewLedger(
	accounts finance.AccountRepository,
	entries finance.GLEntryRepository,
	locker shared.Locker,
	logger *zap.Logger,
) *Ledger {
	if locker == nil {
		locker = shared.NoopLocker{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{
		accounts: accounts,
		entries:  entries,
		locker:   locker,
		logger:   logger,
		known:    make(map[string]*finance.Account),
	}
}

func (l *Ledger) account(ctx context.Context, name string) (*finance.Account, error) {
	l.mu.RLock()
	acc, ok := l.known[name]
	l.mu.RUnlock()
	if ok {
		return acc, nil
	}
	acc, err := l.accounts.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewValidationError(fmt.Sprintf("Account %s not found", name))
		}
		return nil, fmt.Errorf("failed to load account %s: %w", name, err)
	}
	l.mu.Lock()
	l.known[name] = acc
	l.mu.Unlock()
	return acc, nil
}

func (l *Ledger) postable(ctx context.Context, name string) error {
	acc, err := l.account(ctx, name)
	if err != nil {
		return err
	}
	return acc.CanPost()
}

func (l *Ledger) lockAccounts(ctx context.Context, names []string) error {
	keys := make([]string, 0, len(names))
	for _, n := range names {
		keys = append(keys, shared.AccountLockKey(n))
	}
	if err := l.locker.Lock(ctx, shared.SortedUniqueKeys(keys)...); err != nil {
		return fmt.Errorf("failed to lock accounts: %w", err)
	}
	return nil
}

// CreateEntry inserts one submitted row for voucher
func (l *Ledger) CreateEntry(ctx context.Context, voucher shared.VoucherRef, account string, debit, credit int64) (*finance.GLEntry, error) {
	entry, err := finance.NewGLEntry(voucher, account, debit, credit)
	if err != nil {
		return nil, err
	}
	if err := l.postable(ctx, account); err != nil {
		return nil, err
	}
	if err := l.lockAccounts(ctx, []string{account}); err != nil {
		return nil, err
	}
	if err := l.entries.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create gl entry: %w", err)
	}
	return entry, nil
}

// Post writes every line of a balanced posting. An empty posting is a no-op.
func (l *Ledger) Post(ctx context.Context, p *finance.Posting) error {
	if p == nil || p.IsEmpty() {
		return nil
	}
	if err := p.Validate(); err != nil {
		return err
	}
	entries := make([]*finance.GLEntry, 0, len(p.Lines))
	for _, line := range p.Lines {
		if err := l.postable(ctx, line.Account); err != nil {
			return err
		}
		entry, err := finance.NewGLEntry(p.Voucher, line.Account, line.Debit, line.Credit)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
	}
	if err := l.lockAccounts(ctx, p.Accounts()); err != nil {
		return err
	}
	if err := l.entries.Create(ctx, entries...); err != nil {
		return fmt.Errorf("failed to create gl entries: %w", err)
	}

	debit, _ := p.Totals()
	l.logger.Debug("posted gl entries",
		zap.String("voucher", p.Voucher.String()),
		zap.Int("lines", len(entries)),
		zap.Int64("amount", debit),
	)
	return nil
}

// CancelEntriesFor voids every submitted row of voucher. Cancelling twice is a no-op.
func (l *Ledger) CancelEntriesFor(ctx context.Context, voucher shared.VoucherRef) error {
	rows, err := l.entries.FindByVoucher(ctx, voucher)
	if err != nil {
		return fmt.Errorf("failed to load gl entries of %s: %w", voucher, err)
	}
	var accounts []string
	for _, r := range rows {
		if r.DocStatus == shared.DocStatusSubmitted {
			accounts = append(accounts, r.Account)
		}
	}
	if len(accounts) == 0 {
		return nil
	}
	if err := l.lockAccounts(ctx, accounts); err != nil {
		return err
	}
	n, err := l.entries.CancelFor(ctx, voucher)
	if err != nil {
		return fmt.Errorf("failed to cancel gl entries of %s: %w", voucher, err)
	}
	l.logger.Debug("cancelled gl entries", zap.String("voucher", voucher.String()), zap.Int64("rows", n))
	return nil
}

// AccountBalance returns debit minus credit of an account. The balance of a
// group account is the sum over its subtree.
func (l *Ledger) AccountBalance(ctx context.Context, account string, filter finance.BalanceFilter) (int64, error) {
	acc, err := l.account(ctx, account)
	if err != nil {
		return 0, err
	}
	if !acc.IsGroup {
		balance, err := l.entries.Balance(ctx, account, filter)
		if err != nil {
			return 0, fmt.Errorf("failed to compute balance of %s: %w", account, err)
		}
		return balance, nil
	}
	tree, err := l.AccountTree(ctx, filter)
	if err != nil {
		return 0, err
	}
	if node := findNode(tree, account); node != nil {
		return node.Balance, nil
	}
	return 0, nil
}

// TrialBalance returns total debit minus total credit over all submitted rows.
// A consistent ledger always returns zero.
func (l *Ledger) TrialBalance(ctx context.Context) (int64, error) {
	total, err := l.entries.TrialBalance(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to compute trial balance: %w", err)
	}
	return total, nil
}

// PaidAmount returns the net money received for vouchers: debit minus credit
// of the cash and bank accounts.
func (l *Ledger) PaidAmount(ctx context.Context, settings finance.AccountSettings, vouchers []shared.VoucherRef) (int64, error) {
	if len(vouchers) == 0 {
		return 0, nil
	}
	accounts, err := settings.MoneyAccounts()
	if err != nil {
		return 0, err
	}
	paid, err := l.entries.SumForVouchers(ctx, accounts, vouchers)
	if err != nil {
		return 0, fmt.Errorf("failed to sum payments: %w", err)
	}
	return paid, nil
}

// InitializeAccounts stores every account of chart. Existing accounts are updated.
func (l *Ledger) InitializeAccounts(ctx context.Context, chart []finance.AccountNode) error {
	accounts := finance.FlattenChart(chart)
	for i := range accounts {
		if err := l.accounts.Save(ctx, &accounts[i]); err != nil {
			return fmt.Errorf("failed to save account %s: %w", accounts[i].Name, err)
		}
	}
	l.mu.Lock()
	l.known = make(map[string]*finance.Account)
	l.mu.Unlock()
	l.logger.Info("chart of accounts initialized", zap.Int("accounts", len(accounts)))
	return nil
}

// AccountTreeNode is an account with its balance. Group balances include
// every descendant.
type AccountTreeNode struct {
	Name     string             `json:"name"`
	IsGroup  bool               `json:"is_group"`
	Balance  int64              `json:"balance"`
	Children []*AccountTreeNode `json:"children,omitempty"`
}

// AccountTree returns the chart of accounts with balances rolled up to the roots
func (l *Ledger) AccountTree(ctx context.Context, filter finance.BalanceFilter) ([]*AccountTreeNode, error) {
	accounts, err := l.accounts.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	balances, err := l.entries.Balances(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to compute balances: %w", err)
	}
	byAccount := make(map[string]int64, len(balances))
	for _, b := range balances {
		byAccount[b.Account] = b.Balance
	}

	nodes := make(map[string]*AccountTreeNode, len(accounts))
	for _, a := range accounts {
		nodes[a.Name] = &AccountTreeNode{Name: a.Name, IsGroup: a.IsGroup, Balance: byAccount[a.Name]}
	}
	var roots []*AccountTreeNode
	for _, a := range accounts {
		node := nodes[a.Name]
		parent, ok := nodes[a.ParentName]
		if a.ParentName == "" || !ok {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	for _, r := range roots {
		rollUp(r)
	}
	return roots, nil
}

func rollUp(n *AccountTreeNode) int64 {
	for _, c := range n.Children {
		n.Balance += rollUp(c)
	}
	return n.Balance
}

func findNode(nodes []*AccountTreeNode, name string) *AccountTreeNode {
	for _, n := range nodes {
		if n.Name == name {
			return n
		}
		if found := findNode(n.Children, name); found != nil {
			return found
		}
	}
	return nil
}
