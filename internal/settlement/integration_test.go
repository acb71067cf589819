package settlement

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"github.com/example/recon-ledger/internal/ledger"
)

// SettlementStoreSuite exercises the upsert and confirm SQL against a real
// Postgres, including status derivation inside the transaction. Requires a
// reachable database set via TEST_DATABASE_URL; skipped otherwise.
type SettlementStoreSuite struct {
	suite.Suite
	pool   *pgxpool.Pool
	store  *PostgresStore
	shows  *ledger.PostgresStore
	ctx    context.Context
	showID int64
}

func TestSettlementStore(t *testing.T) {
	if os.Getenv("TEST_DATABASE_URL") == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration tests")
	}
	suite.Run(t, new(SettlementStoreSuite))
}

func (s *SettlementStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	url := os.Getenv("TEST_DATABASE_URL")

	s.Require().NoError(ledger.SyncSchema(url))

	pool, err := pgxpool.New(s.ctx, url)
	s.Require().NoError(err)
	s.pool = pool
	s.store = NewPostgresStore(pool)
	s.shows = ledger.NewPostgresStore(pool)
}

func (s *SettlementStoreSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *SettlementStoreSuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, `
		TRUNCATE handshakes, outgoing_payments, settlements, bank_transactions,
		         invoices, shows RESTART IDENTITY CASCADE`)
	s.Require().NoError(err)

	show, err := s.shows.CreateShow(s.ctx, &ledger.Show{
		ContractNumber: "CT-2025-001",
		Artist:         "DJ Nova",
		EventName:      "Summer Open Air",
		Venue:          "Waldbuehne",
		City:           "Berlin",
		Country:        "DE",
		CurrencyCode:   "EUR",
		ArtistFee:      dec("5000"),
		BookingFee:     dec("750"),
	})
	s.Require().NoError(err)
	s.showID = show.ID
}

func (s *SettlementStoreSuite) TestUpsertCreatesThenUpdates() {
	created, err := s.store.Upsert(s.ctx, UpsertRequest{
		ShowID:       s.showID,
		Artist:       "DJ Nova",
		AmountDue:    dec("5000"),
		CurrencyCode: "EUR",
		AmountPaid:   dec("2000"),
	})
	s.Require().NoError(err)
	s.Equal(StatusPartial, created.Status)
	s.True(created.Balance.Equal(dec("3000")))

	// Same show and artist hits the existing row, not a second insert.
	updated, err := s.store.Upsert(s.ctx, UpsertRequest{
		ShowID:           s.showID,
		Artist:           "DJ Nova",
		AmountDue:        dec("5000"),
		CurrencyCode:     "EUR",
		AmountPaid:       dec("5000"),
		PaymentReference: "SEPA-42",
	})
	s.Require().NoError(err)
	s.Equal(created.ID, updated.ID)
	s.Equal(StatusPaid, updated.Status)
	s.True(updated.Balance.IsZero())
	s.Equal("SEPA-42", updated.PaymentReference)

	all, err := s.store.ListSettlements(s.ctx, Filter{ShowID: s.showID})
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *SettlementStoreSuite) TestUpsertKeepsStoredFieldsOnEmptyInput() {
	when := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err := s.store.Upsert(s.ctx, UpsertRequest{
		ShowID:           s.showID,
		Artist:           "DJ Nova",
		AmountDue:        dec("5000"),
		CurrencyCode:     "EUR",
		AmountPaid:       dec("1000"),
		PaymentDate:      &when,
		PaymentReference: "SEPA-42",
		PaymentMethod:    "wire",
		Notes:            "first instalment",
	})
	s.Require().NoError(err)

	updated, err := s.store.Upsert(s.ctx, UpsertRequest{
		ShowID:       s.showID,
		Artist:       "DJ Nova",
		AmountDue:    dec("5000"),
		CurrencyCode: "EUR",
		AmountPaid:   dec("2500"),
	})
	s.Require().NoError(err)
	s.Equal("SEPA-42", updated.PaymentReference)
	s.Equal("wire", updated.PaymentMethod)
	s.Equal("first instalment", updated.Notes)
	s.Require().NotNil(updated.PaymentDate)
	s.True(when.Equal(*updated.PaymentDate))
}

func (s *SettlementStoreSuite) TestUpsertUnknownShow() {
	_, err := s.store.Upsert(s.ctx, UpsertRequest{
		ShowID:       99999,
		Artist:       "DJ Nova",
		AmountDue:    dec("100"),
		CurrencyCode: "EUR",
	})
	var nf *ledger.NotFoundError
	s.Require().ErrorAs(err, &nf)
	s.Equal("show", nf.Entity)
}

func (s *SettlementStoreSuite) TestConfirmRequiresPaid() {
	partial, err := s.store.Upsert(s.ctx, UpsertRequest{
		ShowID:       s.showID,
		Artist:       "DJ Nova",
		AmountDue:    dec("5000"),
		CurrencyCode: "EUR",
		AmountPaid:   dec("1000"),
	})
	s.Require().NoError(err)

	_, err = s.store.Confirm(s.ctx, partial.ID, "finance@agency")
	var ise *ledger.InvalidStateError
	s.Require().ErrorAs(err, &ise)

	paid, err := s.store.Upsert(s.ctx, UpsertRequest{
		ShowID:       s.showID,
		Artist:       "DJ Nova",
		AmountDue:    dec("5000"),
		CurrencyCode: "EUR",
		AmountPaid:   dec("5000"),
	})
	s.Require().NoError(err)

	confirmed, err := s.store.Confirm(s.ctx, paid.ID, "finance@agency")
	s.Require().NoError(err)
	s.Equal(StatusConfirmed, confirmed.Status)
	s.Equal("finance@agency", confirmed.ConfirmedBy)
	s.Require().NotNil(confirmed.ConfirmedAt)
}

func (s *SettlementStoreSuite) TestConfirmedSurvivesLaterUpserts() {
	paid, err := s.store.Upsert(s.ctx, UpsertRequest{
		ShowID:       s.showID,
		Artist:       "DJ Nova",
		AmountDue:    dec("5000"),
		CurrencyCode: "EUR",
		AmountPaid:   dec("5000"),
	})
	s.Require().NoError(err)
	_, err = s.store.Confirm(s.ctx, paid.ID, "finance@agency")
	s.Require().NoError(err)

	after, err := s.store.Upsert(s.ctx, UpsertRequest{
		ShowID:       s.showID,
		Artist:       "DJ Nova",
		AmountDue:    dec("5000"),
		CurrencyCode: "EUR",
		AmountPaid:   dec("5000"),
		Notes:        "audit follow-up",
	})
	s.Require().NoError(err)
	s.Equal(StatusConfirmed, after.Status)
}

func (s *SettlementStoreSuite) TestReceivedTotalForShow() {
	inv, err := s.shows.CreateInvoice(s.ctx, &ledger.Invoice{
		InvoiceNumber: "INV-SETTLE-1",
		ShowID:        &s.showID,
		FromEntity:    "Agency GmbH",
		PromoterName:  "Promoter GmbH",
		CurrencyCode:  "EUR",
		TotalGross:    dec("5750"),
		ImportBatch:   "it-batch",
	})
	s.Require().NoError(err)
	bt, err := s.shows.CreateBankTransaction(s.ctx, &ledger.BankTransaction{
		Date:         time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		Type:         "Credit",
		Description:  "WIRE FROM PROMOTER GMBH",
		Amount:       dec("3000"),
		CurrencyCode: "EUR",
		ImportBatch:  "it-batch",
	})
	s.Require().NoError(err)
	_, err = s.shows.CreateHandshakes(s.ctx, bt.ID, []ledger.AllocationInput{
		{InvoiceID: inv.ID, BankAmountApplied: dec("3000"), ProxyAmount: dec("250")},
	}, "", "tester")
	s.Require().NoError(err)

	total, err := s.store.ReceivedTotalForShow(s.ctx, s.showID)
	s.Require().NoError(err)
	s.True(total.Equal(dec("3250")))
}
