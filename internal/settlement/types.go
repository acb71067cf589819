package settlement

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settlement is the per-show, per-artist record of what is owed and paid.
// Created lazily on first upsert; Balance is derived from the amounts.
type Settlement struct {
	ID               int64           `json:"settlement_id"`
	ShowID           int64           `json:"show_id"`
	Artist           string          `json:"artist"`
	AmountDue        decimal.Decimal `json:"amount_due"`
	CurrencyCode     string          `json:"currency_code"`
	AmountPaid       decimal.Decimal `json:"amount_paid"`
	Balance          decimal.Decimal `json:"balance"`
	Status           Status          `json:"status"`
	PaymentDate      *time.Time      `json:"payment_date"`
	PaymentReference string          `json:"payment_reference"`
	PaymentMethod    string          `json:"payment_method"`
	ConfirmedBy      string          `json:"confirmed_by"`
	ConfirmedAt      *time.Time      `json:"confirmed_at"`
	Notes            string          `json:"notes"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// UpsertRequest creates or updates the show×artist settlement row. Empty
// strings leave the stored value untouched on update.
type UpsertRequest struct {
	ShowID           int64           `json:"show_id"`
	Artist           string          `json:"artist"`
	AmountDue        decimal.Decimal `json:"amount_due"`
	CurrencyCode     string          `json:"currency_code"`
	AmountPaid       decimal.Decimal `json:"amount_paid"`
	PaymentDate      *time.Time      `json:"payment_date"`
	PaymentReference string          `json:"payment_reference"`
	PaymentMethod    string          `json:"payment_method"`
	Notes            string          `json:"notes"`
}

// Filter narrows ListSettlements. Zero values mean "no filter".
type Filter struct {
	ShowID int64
	Status Status
}

// ShowSettlement is the read-side projection of one show's financial
// position. Recomputed from handshake and outgoing rows on every call; it is
// never stored, so it cannot drift even when handshakes are deleted after
// the fact.
type ShowSettlement struct {
	ShowID          int64      `json:"show_id"`
	ContractNumber  string     `json:"contract_number"`
	Artist          string     `json:"artist"`
	EventName       string     `json:"event_name"`
	Venue           string     `json:"venue"`
	PerformanceDate *time.Time `json:"performance_date"`
	CurrencyCode    string     `json:"currency_code"`

	// Money in.
	TotalInvoiced          decimal.Decimal `json:"total_invoiced"`
	Income                 decimal.Decimal `json:"income"`
	OutstandingFromPromoter decimal.Decimal `json:"outstanding_from_promoter"`

	// Money out, broken down by payment type.
	ArtistPayments decimal.Decimal `json:"artist_payments"`
	HotelPayments  decimal.Decimal `json:"hotel_payments"`
	FlightPayments decimal.Decimal `json:"flight_payments"`
	OtherPayments  decimal.Decimal `json:"other_payments"`
	Outgo          decimal.Decimal `json:"outgo"`

	// Net agency position: income minus outgo.
	Net decimal.Decimal `json:"net"`

	// Artist side.
	ArtistFee      decimal.Decimal `json:"artist_fee"`
	BookingFee     decimal.Decimal `json:"booking_fee"`
	HotelBuyout    decimal.Decimal `json:"hotel_buyout"`
	FlightBuyout   decimal.Decimal `json:"flight_buyout"`
	WithholdingTax decimal.Decimal `json:"withholding_tax"`
	NetArtistDue   decimal.Decimal `json:"net_artist_due"`
	ArtistPaid     decimal.Decimal `json:"artist_paid"`
	ArtistBalance  decimal.Decimal `json:"artist_balance"`

	PromoterStatus string `json:"promoter_status"`
	ArtistStatus   string `json:"artist_status"`
	OverallStatus  string `json:"overall_status"`
}
