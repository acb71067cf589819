package settlement

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/recon-ledger/internal/ledger"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// MockReader implements Reader for testing
type MockReader struct {
	shows    map[int64]*ledger.Show
	invoices map[int64][]ledger.Invoice
	received map[int64]decimal.Decimal
	outgoing map[int64][]ledger.OutgoingPayment
}

func NewMockReader() *MockReader {
	return &MockReader{
		shows:    make(map[int64]*ledger.Show),
		invoices: make(map[int64][]ledger.Invoice),
		received: make(map[int64]decimal.Decimal),
		outgoing: make(map[int64][]ledger.OutgoingPayment),
	}
}

func (m *MockReader) GetShow(ctx context.Context, id int64) (*ledger.Show, error) {
	show, ok := m.shows[id]
	if !ok {
		return nil, &ledger.NotFoundError{Entity: "show", ID: id}
	}
	return show, nil
}

func (m *MockReader) InvoicesForShow(ctx context.Context, showID int64) ([]ledger.Invoice, error) {
	return m.invoices[showID], nil
}

func (m *MockReader) ReceivedTotalForShow(ctx context.Context, showID int64) (decimal.Decimal, error) {
	return m.received[showID], nil
}

func (m *MockReader) OutgoingForShow(ctx context.Context, showID int64) ([]ledger.OutgoingPayment, error) {
	return m.outgoing[showID], nil
}

func TestCalculateShowSettlement(t *testing.T) {
	ctx := context.Background()

	t.Run("income outgo and net", func(t *testing.T) {
		reader := NewMockReader()
		reader.shows[1] = &ledger.Show{
			ID: 1, Artist: "DJ Meridian", CurrencyCode: "EUR",
			ArtistFee: dec("1000"),
		}
		reader.invoices[1] = []ledger.Invoice{
			{ID: 1, TotalGross: dec("1500")},
		}
		reader.received[1] = dec("1500")
		reader.outgoing[1] = []ledger.OutgoingPayment{
			{PaymentType: "Artist Payment", Amount: dec("300")},
		}

		ss, err := NewCalculator(reader).CalculateShowSettlement(ctx, 1)
		require.NoError(t, err)
		assert.True(t, ss.Income.Equal(dec("1500")))
		assert.True(t, ss.Outgo.Equal(dec("300")))
		assert.True(t, ss.Net.Equal(dec("1200")))
		assert.True(t, ss.OutstandingFromPromoter.IsZero())
	})

	t.Run("outgoing breakdown by payment type", func(t *testing.T) {
		reader := NewMockReader()
		reader.shows[1] = &ledger.Show{ID: 1, Artist: "DJ Meridian", CurrencyCode: "EUR"}
		reader.outgoing[1] = []ledger.OutgoingPayment{
			{PaymentType: "Artist Payment", Amount: dec("500")},
			{PaymentType: "Hotel Booking", Amount: dec("120")},
			{PaymentType: "Flight Tickets", Amount: dec("230")},
			{PaymentType: "Visa Fees", Amount: dec("40")},
		}

		ss, err := NewCalculator(reader).CalculateShowSettlement(ctx, 1)
		require.NoError(t, err)
		assert.True(t, ss.ArtistPayments.Equal(dec("500")))
		assert.True(t, ss.HotelPayments.Equal(dec("120")))
		assert.True(t, ss.FlightPayments.Equal(dec("230")))
		assert.True(t, ss.OtherPayments.Equal(dec("40")))
		assert.True(t, ss.Outgo.Equal(dec("890")))
	})

	t.Run("net artist due subtracts buyouts and tax", func(t *testing.T) {
		reader := NewMockReader()
		reader.shows[1] = &ledger.Show{
			ID: 1, Artist: "DJ Meridian", CurrencyCode: "EUR",
			ArtistFee:      dec("10000"),
			HotelBuyout:    dec("800"),
			FlightBuyout:   dec("1200"),
			WithholdingTax: dec("1500"),
		}
		reader.outgoing[1] = []ledger.OutgoingPayment{
			{PaymentType: "Artist Payment", Amount: dec("4000")},
		}

		ss, err := NewCalculator(reader).CalculateShowSettlement(ctx, 1)
		require.NoError(t, err)
		assert.True(t, ss.NetArtistDue.Equal(dec("6500")))
		assert.True(t, ss.ArtistPaid.Equal(dec("4000")))
		assert.True(t, ss.ArtistBalance.Equal(dec("2500")))
	})

	t.Run("unknown show", func(t *testing.T) {
		_, err := NewCalculator(NewMockReader()).CalculateShowSettlement(ctx, 7)
		var nfe *ledger.NotFoundError
		require.ErrorAs(t, err, &nfe)
	})
}

func TestSettlementStatuses(t *testing.T) {
	cases := []struct {
		name     string
		invoiced string
		received string
		due      string
		paid     string
		promoter string
		artist   string
		overall  string
	}{
		{"nothing has moved", "1000", "0", "500", "0", "UNPAID", "PENDING", "AWAITING PROMOTER PAYMENT"},
		{"promoter part paid", "1000", "400", "500", "0", "PART PAID", "PENDING", "AWAITING PROMOTER PAYMENT"},
		{"promoter paid artist pending", "1000", "1000", "500", "0", "PAID", "PENDING", "AWAITING ARTIST PAYMENT"},
		{"promoter paid artist partial", "1000", "1000", "500", "200", "PAID", "PARTIAL", "AWAITING ARTIST PAYMENT"},
		{"everything settled", "1000", "1000", "500", "500", "PAID", "SETTLED", "COMPLETE"},
		{"overpaid promoter", "1000", "1100", "500", "500", "PAID", "SETTLED", "COMPLETE"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reader := NewMockReader()
			reader.shows[1] = &ledger.Show{
				ID: 1, Artist: "DJ Meridian", CurrencyCode: "EUR",
				ArtistFee: dec(tc.due),
			}
			reader.invoices[1] = []ledger.Invoice{{ID: 1, TotalGross: dec(tc.invoiced)}}
			reader.received[1] = dec(tc.received)
			if tc.paid != "0" {
				reader.outgoing[1] = []ledger.OutgoingPayment{
					{PaymentType: "Artist Payment", Amount: dec(tc.paid)},
				}
			}

			ss, err := NewCalculator(reader).CalculateShowSettlement(context.Background(), 1)
			require.NoError(t, err)
			assert.Equal(t, tc.promoter, ss.PromoterStatus)
			assert.Equal(t, tc.artist, ss.ArtistStatus)
			assert.Equal(t, tc.overall, ss.OverallStatus)
		})
	}
}
