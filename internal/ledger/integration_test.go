package ledger

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// StoreIntegrationSuite exercises the real SQL semantics: derived-field
// recomputation, serializable isolation and the dedup key. Requires a
// reachable Postgres set via TEST_DATABASE_URL; skipped otherwise.
type StoreIntegrationSuite struct {
	suite.Suite
	pool  *pgxpool.Pool
	store *PostgresStore
	ctx   context.Context
	seq   int
}

func TestStoreIntegration(t *testing.T) {
	if os.Getenv("TEST_DATABASE_URL") == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration tests")
	}
	suite.Run(t, new(StoreIntegrationSuite))
}

func (s *StoreIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	url := os.Getenv("TEST_DATABASE_URL")

	s.Require().NoError(SyncSchema(url))

	pool, err := pgxpool.New(s.ctx, url)
	s.Require().NoError(err)
	s.pool = pool
	s.store = NewPostgresStore(pool)
}

func (s *StoreIntegrationSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *StoreIntegrationSuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, `
		TRUNCATE handshakes, outgoing_payments, settlements, bank_transactions,
		         invoices, shows RESTART IDENTITY CASCADE`)
	s.Require().NoError(err)
}

func (s *StoreIntegrationSuite) seedInvoice(number string, gross string) *Invoice {
	inv, err := s.store.CreateInvoice(s.ctx, &Invoice{
		InvoiceNumber: number,
		FromEntity:    "Agency GmbH",
		PromoterName:  "Promoter GmbH",
		CurrencyCode:  "EUR",
		TotalGross:    dec(gross),
		ImportBatch:   "it-batch",
	})
	s.Require().NoError(err)
	return inv
}

func (s *StoreIntegrationSuite) seedBank(amount string) *BankTransaction {
	s.seq++
	bt, err := s.store.CreateBankTransaction(s.ctx, &BankTransaction{
		Date:         time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		Type:         "Credit",
		Description:  fmt.Sprintf("WIRE %d FROM PROMOTER GMBH", s.seq),
		Amount:       dec(amount),
		CurrencyCode: "EUR",
		ImportBatch:  "it-batch",
	})
	s.Require().NoError(err)
	return bt
}

func (s *StoreIntegrationSuite) TestCreateHandshakeUpdatesDerivedFields() {
	inv := s.seedInvoice("INV-100", "1000")
	bt := s.seedBank("1000")

	created, err := s.store.CreateHandshakes(s.ctx, bt.ID, []AllocationInput{
		{InvoiceID: inv.ID, BankAmountApplied: dec("1000")},
	}, "", "it")
	s.Require().NoError(err)
	s.Require().Len(created, 1)

	got, err := s.store.GetInvoice(s.ctx, inv.ID)
	s.Require().NoError(err)
	s.True(got.IsPaid)
	s.True(got.PaidAmount.Equal(dec("1000")))
	s.True(got.BalanceRemaining.IsZero())

	gotBt, err := s.store.GetBankTransaction(s.ctx, bt.ID)
	s.Require().NoError(err)
	s.True(gotBt.IsMatched)
}

func (s *StoreIntegrationSuite) TestProxyCountsTowardPaid() {
	inv := s.seedInvoice("INV-101", "1000")
	bt := s.seedBank("950")

	// 950 from the bank plus a 50 proxy closes the invoice.
	_, err := s.store.CreateHandshakes(s.ctx, bt.ID, []AllocationInput{
		{InvoiceID: inv.ID, BankAmountApplied: dec("950"), ProxyAmount: dec("50")},
	}, "bank fee absorbed", "it")
	s.Require().NoError(err)

	got, err := s.store.GetInvoice(s.ctx, inv.ID)
	s.Require().NoError(err)
	s.True(got.IsPaid)
	s.True(got.PaidAmount.Equal(dec("1000")))
}

func (s *StoreIntegrationSuite) TestDeleteHandshakeReversesEverything() {
	inv := s.seedInvoice("INV-102", "1000")
	bt := s.seedBank("1000")

	created, err := s.store.CreateHandshakes(s.ctx, bt.ID, []AllocationInput{
		{InvoiceID: inv.ID, BankAmountApplied: dec("1000")},
	}, "", "it")
	s.Require().NoError(err)

	deleted, err := s.store.DeleteHandshake(s.ctx, created[0].ID)
	s.Require().NoError(err)
	s.Equal(created[0].ID, deleted.ID)

	got, err := s.store.GetInvoice(s.ctx, inv.ID)
	s.Require().NoError(err)
	s.False(got.IsPaid)
	s.True(got.PaidAmount.IsZero())
	s.True(got.BalanceRemaining.Equal(dec("1000")))

	gotBt, err := s.store.GetBankTransaction(s.ctx, bt.ID)
	s.Require().NoError(err)
	s.False(gotBt.IsMatched)

	_, err = s.store.DeleteHandshake(s.ctx, created[0].ID)
	var nfe *NotFoundError
	s.ErrorAs(err, &nfe)
}

func (s *StoreIntegrationSuite) TestDeletionOrderIndependence() {
	// Two handshakes on one invoice; deleting in either order leaves the
	// same intermediate and final state.
	invA := s.seedInvoice("INV-103", "1000")
	bt1 := s.seedBank("600")
	bt2 := s.seedBank("400")

	c1, err := s.store.CreateHandshakes(s.ctx, bt1.ID, []AllocationInput{
		{InvoiceID: invA.ID, BankAmountApplied: dec("600")},
	}, "", "it")
	s.Require().NoError(err)
	c2, err := s.store.CreateHandshakes(s.ctx, bt2.ID, []AllocationInput{
		{InvoiceID: invA.ID, BankAmountApplied: dec("400")},
	}, "", "it")
	s.Require().NoError(err)

	_, err = s.store.DeleteHandshake(s.ctx, c2[0].ID)
	s.Require().NoError(err)

	got, err := s.store.GetInvoice(s.ctx, invA.ID)
	s.Require().NoError(err)
	s.True(got.PaidAmount.Equal(dec("600")))
	s.False(got.IsPaid)

	_, err = s.store.DeleteHandshake(s.ctx, c1[0].ID)
	s.Require().NoError(err)

	got, err = s.store.GetInvoice(s.ctx, invA.ID)
	s.Require().NoError(err)
	s.True(got.PaidAmount.IsZero())
	s.True(got.BalanceRemaining.Equal(dec("1000")))
}

func (s *StoreIntegrationSuite) TestOverAllocationRejected() {
	inv := s.seedInvoice("INV-104", "2000")
	bt := s.seedBank("1000")

	_, err := s.store.CreateHandshakes(s.ctx, bt.ID, []AllocationInput{
		{InvoiceID: inv.ID, BankAmountApplied: dec("600")},
	}, "", "it")
	s.Require().NoError(err)

	// Only 400 of capacity remains.
	_, err = s.store.CreateHandshakes(s.ctx, bt.ID, []AllocationInput{
		{InvoiceID: inv.ID, BankAmountApplied: dec("500")},
	}, "", "it")
	var ve *ValidationError
	s.Require().ErrorAs(err, &ve)
	s.Contains(ve.Msg, "exceeds remaining bank capacity")
}

func (s *StoreIntegrationSuite) TestPaidInvoiceRejected() {
	inv := s.seedInvoice("INV-105", "500")
	bt1 := s.seedBank("500")
	bt2 := s.seedBank("500")

	_, err := s.store.CreateHandshakes(s.ctx, bt1.ID, []AllocationInput{
		{InvoiceID: inv.ID, BankAmountApplied: dec("500")},
	}, "", "it")
	s.Require().NoError(err)

	_, err = s.store.CreateHandshakes(s.ctx, bt2.ID, []AllocationInput{
		{InvoiceID: inv.ID, BankAmountApplied: dec("100")},
	}, "", "it")
	var ve *ValidationError
	s.Require().ErrorAs(err, &ve)
	s.Contains(ve.Msg, "already fully paid")
}

func (s *StoreIntegrationSuite) TestMultiInvoiceCreateIsAtomic() {
	invA := s.seedInvoice("INV-106", "600")
	invB := s.seedInvoice("INV-107", "700")
	bt := s.seedBank("1000")

	// Second allocation references a missing invoice; nothing may commit.
	_, err := s.store.CreateHandshakes(s.ctx, bt.ID, []AllocationInput{
		{InvoiceID: invA.ID, BankAmountApplied: dec("600")},
		{InvoiceID: 99999, BankAmountApplied: dec("400")},
	}, "", "it")
	var nfe *NotFoundError
	s.Require().ErrorAs(err, &nfe)

	gotA, err := s.store.GetInvoice(s.ctx, invA.ID)
	s.Require().NoError(err)
	s.True(gotA.PaidAmount.IsZero())

	gotB, err := s.store.GetInvoice(s.ctx, invB.ID)
	s.Require().NoError(err)
	s.True(gotB.PaidAmount.IsZero())

	gotBt, err := s.store.GetBankTransaction(s.ctx, bt.ID)
	s.Require().NoError(err)
	s.False(gotBt.IsMatched)
}

func (s *StoreIntegrationSuite) TestDuplicateBankHashConflicts() {
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	first := &BankTransaction{
		Date:         date,
		Type:         "Credit",
		Description:  "WIRE FROM PROMOTER GMBH",
		Amount:       dec("1500"),
		CurrencyCode: "EUR",
	}
	_, err := s.store.CreateBankTransaction(s.ctx, first)
	s.Require().NoError(err)

	dup := &BankTransaction{
		Date:         date,
		Type:         "Credit",
		Description:  "WIRE FROM PROMOTER GMBH",
		Amount:       dec("1500"),
		CurrencyCode: "EUR",
	}
	_, err = s.store.CreateBankTransaction(s.ctx, dup)
	var ce *ConflictError
	s.Require().ErrorAs(err, &ce)
}

func (s *StoreIntegrationSuite) TestUnallocatedListing() {
	inv := s.seedInvoice("INV-108", "100")
	btIn := s.seedBank("100")
	s.seedBank("-50")

	unallocated, err := s.store.ListUnallocatedBankTransactions(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(unallocated, 1, "outgoing transactions are never listed")
	s.Equal(btIn.ID, unallocated[0].ID)

	_, err = s.store.CreateHandshakes(s.ctx, btIn.ID, []AllocationInput{
		{InvoiceID: inv.ID, BankAmountApplied: dec("100")},
	}, "", "it")
	s.Require().NoError(err)

	unallocated, err = s.store.ListUnallocatedBankTransactions(s.ctx)
	s.Require().NoError(err)
	s.Empty(unallocated)
}

func (s *StoreIntegrationSuite) TestConcurrentAllocationsNeverOvershoot() {
	inv := s.seedInvoice("INV-109", "2000")
	bt := s.seedBank("1000")

	const workers = 4
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			_, err := s.store.CreateHandshakes(s.ctx, bt.ID, []AllocationInput{
				{InvoiceID: inv.ID, BankAmountApplied: dec("600")},
			}, "", "it")
			results <- err
		}()
	}

	var successes int
	for i := 0; i < workers; i++ {
		if err := <-results; err == nil {
			successes++
		}
	}
	s.Equal(1, successes, "only one 600 allocation fits in 1000 capacity")

	total, err := s.store.AllocatedTotal(s.ctx, bt.ID)
	s.Require().NoError(err)
	s.True(total.LessThanOrEqual(decimal.NewFromInt(1000)))
}
