package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Show is the anchor entity every financial row ultimately relates to.
// One row per booked performance. The core only reads shows.
type Show struct {
	ID              int64           `json:"show_id"`
	ContractNumber  string          `json:"contract_number"`
	Agent           string          `json:"agent"`
	Artist          string          `json:"artist"`
	EventName       string          `json:"event_name"`
	Venue           string          `json:"venue"`
	City            string          `json:"city"`
	Country         string          `json:"country"`
	PerformanceDate *time.Time      `json:"performance_date"`
	DealDescription string          `json:"deal_description"`
	TotalDealValue  decimal.Decimal `json:"total_deal_value"`
	CurrencyCode    string          `json:"currency_code"`
	ArtistFee       decimal.Decimal `json:"artist_fee"`
	BookingFee      decimal.Decimal `json:"booking_fee"`
	HotelBuyout     decimal.Decimal `json:"hotel_buyout"`
	FlightBuyout    decimal.Decimal `json:"flight_buyout"`
	GroundBuyout    decimal.Decimal `json:"ground_transport_buyout"`
	WithholdingTax  decimal.Decimal `json:"withholding_tax"`
	Status          string          `json:"status"`
	Notes           string          `json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Invoice is a bill sent to a promoter. PaidAmount, BalanceRemaining and
// IsPaid are derived fields owned by the handshake lifecycle service; no
// other code path writes them.
type Invoice struct {
	ID               int64           `json:"invoice_id"`
	InvoiceNumber    string          `json:"invoice_number"`
	ContractNumber   string          `json:"contract_number"`
	ShowID           *int64          `json:"show_id"`
	FromEntity       string          `json:"from_entity"`
	PromoterName     string          `json:"promoter_name"`
	Reference        string          `json:"reference"`
	CurrencyCode     string          `json:"currency_code"`
	TotalNet         decimal.Decimal `json:"total_net"`
	TotalVAT         decimal.Decimal `json:"total_vat"`
	TotalGross       decimal.Decimal `json:"total_gross"`
	InvoiceDate      *time.Time      `json:"invoice_date"`
	ShowDate         *time.Time      `json:"show_date"`
	IsPaid           bool            `json:"is_paid"`
	PaidAmount       decimal.Decimal `json:"paid_amount"`
	BalanceRemaining decimal.Decimal `json:"balance_remaining"`
	ImportBatch      string          `json:"import_batch"`
	ImportedAt       time.Time       `json:"imported_at"`
}

// BankTransaction is one imported bank statement line. Positive amounts are
// incoming promoter payments and participate in invoice matching; negative
// amounts belong to the outgoing-payments flow. IsMatched is derived: true
// exactly when at least one handshake references the row.
type BankTransaction struct {
	ID              int64           `json:"bank_id"`
	Date            time.Time       `json:"date"`
	Type            string          `json:"type"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	CurrencyCode    string          `json:"currency_code"`
	TransactionHash string          `json:"transaction_hash"`
	IsMatched       bool            `json:"is_matched"`
	ShowID          *int64          `json:"show_id"`
	ImportBatch     string          `json:"import_batch"`
	ImportedAt      time.Time       `json:"imported_at"`
}

// Handshake links one bank transaction to one invoice with a specific amount
// applied. It is the atomic unit of reconciliation: a many-to-many relation
// between bank transactions and invoices expressed as one-bank-one-invoice
// rows. Immutable once created except for deletion.
type Handshake struct {
	ID                int64           `json:"handshake_id"`
	BankID            int64           `json:"bank_id"`
	InvoiceID         int64           `json:"invoice_id"`
	BankAmountApplied decimal.Decimal `json:"bank_amount_applied"`
	ProxyAmount       decimal.Decimal `json:"proxy_amount"`
	Note              string          `json:"note"`
	CreatedAt         time.Time       `json:"created_at"`
	CreatedBy         string          `json:"created_by"`
}

// HandshakeDetail is a Handshake joined with display context for listing
// callers.
type HandshakeDetail struct {
	Handshake
	InvoiceNumber   string    `json:"invoice_number"`
	BankDescription string    `json:"bank_description"`
	BankDate        time.Time `json:"bank_date"`
}

// OutgoingPayment is money the agency paid out for a show: artist advances,
// hotels, flights. Sibling flow of invoice matching; the settlement
// calculator reads these rows.
type OutgoingPayment struct {
	ID            int64           `json:"payment_id"`
	ShowID        *int64          `json:"show_id"`
	PaymentType   string          `json:"payment_type"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	CurrencyCode  string          `json:"currency_code"`
	PaymentDate   *time.Time      `json:"payment_date"`
	Payee         string          `json:"payee"`
	BankReference string          `json:"bank_reference"`
	BankID        *int64          `json:"bank_id"`
	Notes         string          `json:"notes"`
	CreatedAt     time.Time       `json:"created_at"`
	CreatedBy     string          `json:"created_by"`
}

// HandshakeFilter narrows ListHandshakes. Zero values mean "no filter".
type HandshakeFilter struct {
	BankID    int64
	InvoiceID int64
}

// TransactionHash returns the dedup key the importer stamps on bank rows:
// sha256 over date|amount|description. Two statement lines with the same
// date, amount and description are considered the same transaction.
func TransactionHash(date time.Time, amount decimal.Decimal, description string) string {
	input := fmt.Sprintf("%s|%s|%s", date.Format("2006-01-02"), amount.String(), description)
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
