package settlement

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/example/recon-ledger/internal/ledger"
)

// Reader is the read-only slice of the ledger the calculator projects from.
type Reader interface {
	GetShow(ctx context.Context, id int64) (*ledger.Show, error)
	InvoicesForShow(ctx context.Context, showID int64) ([]ledger.Invoice, error)
	ReceivedTotalForShow(ctx context.Context, showID int64) (decimal.Decimal, error)
	OutgoingForShow(ctx context.Context, showID int64) ([]ledger.OutgoingPayment, error)
}

// Calculator derives a show's settlement figures from committed handshake
// and outgoing-payment rows. Pure projection: nothing here writes.
type Calculator struct {
	reader Reader
}

func NewCalculator(reader Reader) *Calculator {
	return &Calculator{reader: reader}
}

// CalculateShowSettlement recomputes the full settlement picture for one
// show. Income is the sum of bank_amount_applied + proxy_amount across all
// handshakes whose invoice belongs to the show; outgo is the sum of the
// show's outgoing payments; net is income minus outgo.
func (c *Calculator) CalculateShowSettlement(ctx context.Context, showID int64) (*ShowSettlement, error) {
	show, err := c.reader.GetShow(ctx, showID)
	if err != nil {
		return nil, err
	}

	invoices, err := c.reader.InvoicesForShow(ctx, showID)
	if err != nil {
		return nil, err
	}
	var totalInvoiced decimal.Decimal
	for _, inv := range invoices {
		totalInvoiced = totalInvoiced.Add(inv.TotalGross)
	}

	income, err := c.reader.ReceivedTotalForShow(ctx, showID)
	if err != nil {
		return nil, err
	}

	outgoing, err := c.reader.OutgoingForShow(ctx, showID)
	if err != nil {
		return nil, err
	}
	var artistOut, hotelOut, flightOut, otherOut decimal.Decimal
	for _, p := range outgoing {
		ptype := strings.ToLower(p.PaymentType)
		switch {
		case strings.Contains(ptype, "artist"):
			artistOut = artistOut.Add(p.Amount)
		case strings.Contains(ptype, "hotel"):
			hotelOut = hotelOut.Add(p.Amount)
		case strings.Contains(ptype, "flight"):
			flightOut = flightOut.Add(p.Amount)
		default:
			otherOut = otherOut.Add(p.Amount)
		}
	}
	outgo := artistOut.Add(hotelOut).Add(flightOut).Add(otherOut)

	netArtistDue := show.ArtistFee.
		Sub(show.HotelBuyout).
		Sub(show.FlightBuyout).
		Sub(show.WithholdingTax)
	artistBalance := netArtistDue.Sub(artistOut)
	outstanding := totalInvoiced.Sub(income)

	ss := &ShowSettlement{
		ShowID:          show.ID,
		ContractNumber:  show.ContractNumber,
		Artist:          show.Artist,
		EventName:       show.EventName,
		Venue:           show.Venue,
		PerformanceDate: show.PerformanceDate,
		CurrencyCode:    show.CurrencyCode,

		TotalInvoiced:           totalInvoiced,
		Income:                  income,
		OutstandingFromPromoter: outstanding,

		ArtistPayments: artistOut,
		HotelPayments:  hotelOut,
		FlightPayments: flightOut,
		OtherPayments:  otherOut,
		Outgo:          outgo,

		Net: income.Sub(outgo),

		ArtistFee:      show.ArtistFee,
		BookingFee:     show.BookingFee,
		HotelBuyout:    show.HotelBuyout,
		FlightBuyout:   show.FlightBuyout,
		WithholdingTax: show.WithholdingTax,
		NetArtistDue:   netArtistDue,
		ArtistPaid:     artistOut,
		ArtistBalance:  artistBalance,
	}

	ss.PromoterStatus = promoterStatus(outstanding, income)
	ss.ArtistStatus = artistStatus(artistBalance, artistOut)
	ss.OverallStatus = overallStatus(ss.PromoterStatus, ss.ArtistStatus)
	return ss, nil
}

func promoterStatus(outstanding, received decimal.Decimal) string {
	switch {
	case outstanding.LessThanOrEqual(decimal.Zero):
		return "PAID"
	case received.IsPositive():
		return "PART PAID"
	default:
		return "UNPAID"
	}
}

func artistStatus(balance, paid decimal.Decimal) string {
	switch {
	case balance.LessThanOrEqual(decimal.Zero):
		return "SETTLED"
	case paid.IsPositive():
		return "PARTIAL"
	default:
		return "PENDING"
	}
}

func overallStatus(promoter, artist string) string {
	switch {
	case promoter == "PAID" && artist == "SETTLED":
		return "COMPLETE"
	case promoter == "PAID":
		return "AWAITING ARTIST PAYMENT"
	default:
		return "AWAITING PROMOTER PAYMENT"
	}
}
