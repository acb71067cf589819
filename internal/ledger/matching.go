package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// matchingStore is the slice of the store the matching engine reads from.
type matchingStore interface {
	GetBankTransaction(ctx context.Context, id int64) (*BankTransaction, error)
	GetInvoicesInOrder(ctx context.Context, ids []int64) ([]Invoice, error)
	ListUnallocatedBankTransactions(ctx context.Context) ([]BankTransaction, error)
	ListOpenInvoices(ctx context.Context) ([]Invoice, error)
	AllocatedTotal(ctx context.Context, bankID int64) (decimal.Decimal, error)
}

// MatchingEngine computes, at query time, which bank transactions still need
// allocating and which invoices are still open, and validates a proposed
// pairing between them. It never mutates anything; committing a proposal is
// the handshake lifecycle service's job.
type MatchingEngine struct {
	store matchingStore
}

func NewMatchingEngine(store matchingStore) *MatchingEngine {
	return &MatchingEngine{store: store}
}

// ProposalRequest asks for a split of one bank transaction across the given
// invoices, in the given order.
type ProposalRequest struct {
	BankTransactionID int64           `json:"bank_transaction_id"`
	InvoiceIDs        []int64         `json:"invoice_ids"`
	ProxyAmount       decimal.Decimal `json:"proxy_amount"`
	Note              string          `json:"note"`
}

// ProposedLine is the computed allocation for one invoice.
type ProposedLine struct {
	InvoiceID         int64           `json:"invoice_id"`
	InvoiceNumber     string          `json:"invoice_number"`
	BankAmountApplied decimal.Decimal `json:"bank_amount_applied"`
	ProxyAmount       decimal.Decimal `json:"proxy_amount"`
	InvoiceBalance    decimal.Decimal `json:"invoice_balance_before"`
}

// Proposal is the full allocation plan returned for caller confirmation.
// Nothing has been written; the caller passes Lines to CreateHandshakes
// to commit.
type Proposal struct {
	BankTransactionID int64           `json:"bank_transaction_id"`
	BankAmount        decimal.Decimal `json:"bank_amount"`
	RemainingBefore   decimal.Decimal `json:"remaining_capacity_before"`
	RemainingAfter    decimal.Decimal `json:"remaining_capacity_after"`
	Lines             []ProposedLine  `json:"lines"`
	Note              string          `json:"note"`
}

// AllocationInputs converts the proposal into the inputs CreateHandshakes
// expects.
func (p *Proposal) AllocationInputs() []AllocationInput {
	out := make([]AllocationInput, 0, len(p.Lines))
	for _, l := range p.Lines {
		out = append(out, AllocationInput{
			InvoiceID:         l.InvoiceID,
			BankAmountApplied: l.BankAmountApplied,
			ProxyAmount:       l.ProxyAmount,
		})
	}
	return out
}

// UnallocatedBankTransactions returns incoming transactions with no
// handshakes yet, oldest first.
func (e *MatchingEngine) UnallocatedBankTransactions(ctx context.Context) ([]BankTransaction, error) {
	return e.store.ListUnallocatedBankTransactions(ctx)
}

// OpenInvoices returns invoices with a balance still outstanding.
func (e *MatchingEngine) OpenInvoices(ctx context.Context) ([]Invoice, error) {
	return e.store.ListOpenInvoices(ctx)
}

// ProposeAllocation validates the pairing and computes per-invoice amounts
// without mutating anything. Capacity is consumed invoice-by-invoice in the
// caller-supplied order; later invoices receive whatever remains, possibly
// zero. The proxy amount is attributed entirely to the first invoice.
// Callers control fairness by choosing the selection order.
func (e *MatchingEngine) ProposeAllocation(ctx context.Context, req ProposalRequest) (*Proposal, error) {
	if len(req.InvoiceIDs) == 0 {
		return nil, validationf("at least one invoice is required")
	}

	bt, err := e.store.GetBankTransaction(ctx, req.BankTransactionID)
	if err != nil {
		return nil, err
	}
	if !bt.Amount.IsPositive() {
		return nil, validationf("bank transaction %d is not incoming", bt.ID)
	}

	allocated, err := e.store.AllocatedTotal(ctx, bt.ID)
	if err != nil {
		return nil, err
	}
	remaining := bt.Amount.Sub(allocated)
	if !remaining.IsPositive() {
		return nil, validationf("bank transaction %d is already fully allocated", bt.ID)
	}

	invoices, err := e.store.GetInvoicesInOrder(ctx, req.InvoiceIDs)
	if err != nil {
		return nil, err
	}
	for _, inv := range invoices {
		if inv.IsPaid {
			return nil, validationf("invoice %s is already fully paid", inv.InvoiceNumber)
		}
	}

	lines, after := allocateGreedy(remaining, invoices, req.ProxyAmount)
	return &Proposal{
		BankTransactionID: bt.ID,
		BankAmount:        bt.Amount,
		RemainingBefore:   remaining,
		RemainingAfter:    after,
		Lines:             lines,
		Note:              req.Note,
	}, nil
}

// allocateGreedy splits capacity across invoices first-to-last: each invoice
// takes min(remaining capacity, its outstanding balance). The proxy rides on
// the first invoice only. Pure function; order dependence is a deliberate
// policy, not an algorithmic necessity.
func allocateGreedy(capacity decimal.Decimal, invoices []Invoice, proxy decimal.Decimal) ([]ProposedLine, decimal.Decimal) {
	lines := make([]ProposedLine, 0, len(invoices))
	remaining := capacity
	for i, inv := range invoices {
		applied := decimal.Min(remaining, inv.BalanceRemaining)
		if applied.IsNegative() {
			applied = decimal.Zero
		}
		line := ProposedLine{
			InvoiceID:         inv.ID,
			InvoiceNumber:     inv.InvoiceNumber,
			BankAmountApplied: applied,
			InvoiceBalance:    inv.BalanceRemaining,
		}
		if i == 0 {
			line.ProxyAmount = proxy
		}
		remaining = remaining.Sub(applied)
		lines = append(lines, line)
	}
	return lines, remaining
}
