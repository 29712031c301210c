package finance

import (
	"fmt"
	"time"

	"github.com/comfort/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// GLEntry is one debit/credit row of the ledger. Rows are never updated except
// for the Submitted -> Cancelled transition.
type GLEntry struct {
	ID        uuid.UUID
	Account   string
	Debit     int64
	Credit    int64
	Voucher   shared.VoucherRef
	DocStatus shared.DocStatus
	PostedAt  time.Time
}

// NewGLEntry creates a submitted entry owned by voucher
func NewGLEntry(voucher shared.VoucherRef, account string, debit, credit int64) (*GLEntry, error) {
	if !voucher.Type.IsValid() || voucher.ID == uuid.Nil {
		return nil, shared.NewValidationError("GL Entry requires a voucher")
	}
	if account == "" {
		return nil, shared.NewValidationError("GL Entry requires an account")
	}
	if debit < 0 || credit < 0 {
		return nil, shared.NewValidationError(fmt.Sprintf("Debit and Credit of GL Entry for %s cannot be negative", account))
	}
	return &GLEntry{
		ID:        uuid.New(),
		Account:   account,
		Debit:     debit,
		Credit:    credit,
		Voucher:   voucher,
		DocStatus: shared.DocStatusSubmitted,
		PostedAt:  time.Now(),
	}, nil
}

// Balance returns debit minus credit
func (e *GLEntry) Balance() int64 {
	return e.Debit - e.Credit
}

// PostingLine is one side of a posting
type PostingLine struct {
	Account string
	Debit   int64
	Credit  int64
}

// Posting collects the entries produced by one business event. The entries
// of a posting must balance as a whole.
type Posting struct {
	Voucher shared.VoucherRef
	Lines   []PostingLine
}

// NewPosting starts an empty posting for voucher
func NewPosting(voucher shared.VoucherRef) *Posting {
	return &Posting{Voucher: voucher}
}

// Debit adds a debit line. Zero amounts are skipped, negative amounts go to credit.
func (p *Posting) Debit(account string, amount int64) *Posting {
	switch {
	case amount > 0:
		p.Lines = append(p.Lines, PostingLine{Account: account, Debit: amount})
	case amount < 0:
		p.Lines = append(p.Lines, PostingLine{Account: account, Credit: -amount})
	}
	return p
}

// Credit adds a credit line. Zero amounts are skipped, negative amounts go to debit.
func (p *Posting) Credit(account string, amount int64) *Posting {
	return p.Debit(account, -amount)
}

// Totals returns the total debit and credit of the posting
func (p *Posting) Totals() (debit, credit int64) {
	for _, l := range p.Lines {
		debit += l.Debit
		credit += l.Credit
	}
	return debit, credit
}

// Validate rejects unbalanced postings
func (p *Posting) Validate() error {
	debit, credit := p.Totals()
	if debit != credit {
		return shared.NewValidationError(fmt.Sprintf("Entries for %s are not balanced: debit %d, credit %d", p.Voucher, debit, credit))
	}
	return nil
}

// IsEmpty reports whether the posting has no lines
func (p *Posting) IsEmpty() bool {
	return len(p.Lines) == 0
}

// Accounts returns the accounts touched by the posting
func (p *Posting) Accounts() []string {
	out := make([]string, 0, len(p.Lines))
	for _, l := range p.Lines {
		out = append(out, l.Account)
	}
	return out
}
