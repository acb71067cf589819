package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresStore is the durable ledger store. Every state-changing operation
// runs in a single SERIALIZABLE transaction; correctness of the derived
// fields depends on read-then-write without another writer interleaving.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{Pool: pool}
}

// AllocationInput is one caller-confirmed handshake to create: a portion of
// a bank transaction applied to one invoice, plus an optional proxy
// adjustment (FX difference, bank fee).
type AllocationInput struct {
	InvoiceID         int64           `json:"invoice_id"`
	BankAmountApplied decimal.Decimal `json:"bank_amount_applied"`
	ProxyAmount       decimal.Decimal `json:"proxy_amount"`
}

const (
	pgSerializationFailure = "40001"
	pgForeignKeyViolation  = "23503"
	pgUniqueViolation      = "23505"
)

// mapPgError translates driver-level failures into the engine's taxonomy.
// Serialization failures and commit-time FK violations both mean another
// writer got there first; callers re-propose against fresh state.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure:
			return &ConflictError{Msg: "serialization failure, retry against fresh state", Err: err}
		case pgForeignKeyViolation:
			return &ConflictError{Msg: "referenced row was concurrently deleted", Err: err}
		case pgUniqueViolation:
			return &ConflictError{Msg: "duplicate row: " + pgErr.ConstraintName, Err: err}
		}
	}
	return err
}

func (s *PostgresStore) inSerializableTx(ctx context.Context, fn func(pgx.Tx) error) error {
	conn, err := s.Pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return mapPgError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return mapPgError(err)
	}
	return nil
}

const bankTransactionColumns = `
	bank_id, date, type, description, amount, currency_code,
	transaction_hash, is_matched, show_id, import_batch, imported_at`

func scanBankTransaction(row pgx.Row) (*BankTransaction, error) {
	var bt BankTransaction
	err := row.Scan(
		&bt.ID, &bt.Date, &bt.Type, &bt.Description, &bt.Amount,
		&bt.CurrencyCode, &bt.TransactionHash, &bt.IsMatched, &bt.ShowID,
		&bt.ImportBatch, &bt.ImportedAt,
	)
	if err != nil {
		return nil, err
	}
	return &bt, nil
}

const invoiceColumns = `
	invoice_id, invoice_number, contract_number, show_id, from_entity,
	promoter_name, reference, currency_code, total_net, total_vat,
	total_gross, invoice_date, show_date, is_paid, paid_amount,
	balance_remaining, import_batch, imported_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.ContractNumber, &inv.ShowID,
		&inv.FromEntity, &inv.PromoterName, &inv.Reference, &inv.CurrencyCode,
		&inv.TotalNet, &inv.TotalVAT, &inv.TotalGross, &inv.InvoiceDate,
		&inv.ShowDate, &inv.IsPaid, &inv.PaidAmount, &inv.BalanceRemaining,
		&inv.ImportBatch, &inv.ImportedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetBankTransaction returns one bank row by id.
func (s *PostgresStore) GetBankTransaction(ctx context.Context, id int64) (*BankTransaction, error) {
	bt, err := scanBankTransaction(s.Pool.QueryRow(ctx,
		`SELECT `+bankTransactionColumns+` FROM bank_transactions WHERE bank_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Entity: "bank transaction", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get bank transaction: %w", err)
	}
	return bt, nil
}

// GetInvoice returns one invoice by id.
func (s *PostgresStore) GetInvoice(ctx context.Context, id int64) (*Invoice, error) {
	inv, err := scanInvoice(s.Pool.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE invoice_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Entity: "invoice", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// ListUnallocatedBankTransactions returns incoming transactions with zero
// handshakes, date ascending. Derived on every call, never cached.
func (s *PostgresStore) ListUnallocatedBankTransactions(ctx context.Context) ([]BankTransaction, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+bankTransactionColumns+`
		FROM bank_transactions bt
		WHERE bt.amount > 0
		  AND NOT EXISTS (SELECT 1 FROM handshakes h WHERE h.bank_id = bt.bank_id)
		ORDER BY bt.date ASC, bt.bank_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list unallocated bank transactions: %w", err)
	}
	defer rows.Close()

	var out []BankTransaction
	for rows.Next() {
		bt, err := scanBankTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bank transaction: %w", err)
		}
		out = append(out, *bt)
	}
	return out, rows.Err()
}

// ListOpenInvoices returns invoices that are not yet fully paid.
func (s *PostgresStore) ListOpenInvoices(ctx context.Context) ([]Invoice, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE is_paid = FALSE
		ORDER BY invoice_date ASC NULLS LAST, invoice_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list open invoices: %w", err)
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

// GetInvoicesInOrder fetches the given invoices preserving the caller's
// order. The order matters: greedy allocation consumes bank capacity
// first-invoice-first.
func (s *PostgresStore) GetInvoicesInOrder(ctx context.Context, ids []int64) ([]Invoice, error) {
	out := make([]Invoice, 0, len(ids))
	for _, id := range ids {
		inv, err := s.GetInvoice(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, nil
}

// ListHandshakes returns handshakes joined with invoice and bank context,
// optionally narrowed to one bank transaction and/or one invoice.
func (s *PostgresStore) ListHandshakes(ctx context.Context, filter HandshakeFilter) ([]HandshakeDetail, error) {
	query := `
		SELECT h.handshake_id, h.bank_id, h.invoice_id, h.bank_amount_applied,
		       h.proxy_amount, h.note, h.created_at, h.created_by,
		       i.invoice_number, b.description, b.date
		FROM handshakes h
		JOIN invoices i ON i.invoice_id = h.invoice_id
		JOIN bank_transactions b ON b.bank_id = h.bank_id
		WHERE 1=1`
	args := []any{}
	if filter.BankID != 0 {
		args = append(args, filter.BankID)
		query += fmt.Sprintf(" AND h.bank_id = $%d", len(args))
	}
	if filter.InvoiceID != 0 {
		args = append(args, filter.InvoiceID)
		query += fmt.Sprintf(" AND h.invoice_id = $%d", len(args))
	}
	query += " ORDER BY h.created_at DESC, h.handshake_id DESC"

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list handshakes: %w", err)
	}
	defer rows.Close()

	var out []HandshakeDetail
	for rows.Next() {
		var hd HandshakeDetail
		err := rows.Scan(
			&hd.ID, &hd.BankID, &hd.InvoiceID, &hd.BankAmountApplied,
			&hd.ProxyAmount, &hd.Note, &hd.CreatedAt, &hd.CreatedBy,
			&hd.InvoiceNumber, &hd.BankDescription, &hd.BankDate,
		)
		if err != nil {
			return nil, fmt.Errorf("scan handshake: %w", err)
		}
		out = append(out, hd)
	}
	return out, rows.Err()
}

// AllocatedTotal returns the sum of bank_amount_applied across a bank
// transaction's handshakes. Remaining capacity is amount minus this.
func (s *PostgresStore) AllocatedTotal(ctx context.Context, bankID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(bank_amount_applied), 0)
		FROM handshakes WHERE bank_id = $1`, bankID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("allocated total: %w", err)
	}
	return total, nil
}

// CreateHandshakes inserts the allocations as handshake rows and recomputes
// every derived field they touch, all inside one serializable transaction.
// The whole set commits or none of it does.
//
// Derived fields are never incremented: paid_amount, balance_remaining and
// is_paid are recomputed from COALESCE(SUM(...)) over the handshake rows in
// the same commit, so they cannot drift from their source of truth.
func (s *PostgresStore) CreateHandshakes(ctx context.Context, bankID int64, allocs []AllocationInput, note, actor string) ([]Handshake, error) {
	created := make([]Handshake, 0, len(allocs))

	err := s.inSerializableTx(ctx, func(tx pgx.Tx) error {
		var bankAmount decimal.Decimal
		err := tx.QueryRow(ctx,
			`SELECT amount FROM bank_transactions WHERE bank_id = $1`, bankID).Scan(&bankAmount)
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Entity: "bank transaction", ID: bankID}
		}
		if err != nil {
			return fmt.Errorf("read bank transaction: %w", err)
		}
		if !bankAmount.IsPositive() {
			return validationf("bank transaction %d is not incoming", bankID)
		}

		// Re-check capacity under the transaction so two concurrent
		// requests cannot both allocate the same remaining amount.
		var allocated decimal.Decimal
		err = tx.QueryRow(ctx, `
			SELECT COALESCE(SUM(bank_amount_applied), 0)
			FROM handshakes WHERE bank_id = $1`, bankID).Scan(&allocated)
		if err != nil {
			return fmt.Errorf("read allocated total: %w", err)
		}
		remaining := bankAmount.Sub(allocated)

		var applying decimal.Decimal
		for _, a := range allocs {
			if a.BankAmountApplied.IsNegative() {
				return validationf("negative bank amount for invoice %d", a.InvoiceID)
			}
			applying = applying.Add(a.BankAmountApplied)
		}
		if applying.GreaterThan(remaining) {
			return validationf("allocations total %s exceeds remaining bank capacity %s",
				applying.String(), remaining.String())
		}

		for _, a := range allocs {
			var isPaid bool
			err := tx.QueryRow(ctx,
				`SELECT is_paid FROM invoices WHERE invoice_id = $1`, a.InvoiceID).Scan(&isPaid)
			if errors.Is(err, pgx.ErrNoRows) {
				return &NotFoundError{Entity: "invoice", ID: a.InvoiceID}
			}
			if err != nil {
				return fmt.Errorf("read invoice %d: %w", a.InvoiceID, err)
			}
			if isPaid {
				return validationf("invoice %d is already fully paid", a.InvoiceID)
			}
		}

		for _, a := range allocs {
			hs := Handshake{
				BankID:            bankID,
				InvoiceID:         a.InvoiceID,
				BankAmountApplied: a.BankAmountApplied,
				ProxyAmount:       a.ProxyAmount,
				Note:              note,
				CreatedBy:         actor,
			}
			err := tx.QueryRow(ctx, `
				INSERT INTO handshakes
					(bank_id, invoice_id, bank_amount_applied, proxy_amount, note, created_by)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING handshake_id, created_at`,
				bankID, a.InvoiceID, a.BankAmountApplied, a.ProxyAmount, note, actor,
			).Scan(&hs.ID, &hs.CreatedAt)
			if err != nil {
				return fmt.Errorf("insert handshake: %w", err)
			}
			created = append(created, hs)
		}

		touched := map[int64]struct{}{}
		for _, a := range allocs {
			if _, ok := touched[a.InvoiceID]; ok {
				continue
			}
			touched[a.InvoiceID] = struct{}{}
			if err := recomputeInvoice(ctx, tx, a.InvoiceID); err != nil {
				return err
			}
		}
		return recomputeBankMatched(ctx, tx, bankID)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// DeleteHandshake removes one handshake and reverses its effect on the
// invoice and bank derived fields, atomically. Returns the deleted row.
func (s *PostgresStore) DeleteHandshake(ctx context.Context, id int64) (*Handshake, error) {
	var hs Handshake
	err := s.inSerializableTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			SELECT handshake_id, bank_id, invoice_id, bank_amount_applied,
			       proxy_amount, note, created_at, created_by
			FROM handshakes WHERE handshake_id = $1`, id,
		).Scan(&hs.ID, &hs.BankID, &hs.InvoiceID, &hs.BankAmountApplied,
			&hs.ProxyAmount, &hs.Note, &hs.CreatedAt, &hs.CreatedBy)
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Entity: "handshake", ID: id}
		}
		if err != nil {
			return fmt.Errorf("read handshake: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`DELETE FROM handshakes WHERE handshake_id = $1`, id); err != nil {
			return fmt.Errorf("delete handshake: %w", err)
		}
		if err := recomputeInvoice(ctx, tx, hs.InvoiceID); err != nil {
			return err
		}
		return recomputeBankMatched(ctx, tx, hs.BankID)
	})
	if err != nil {
		return nil, err
	}
	return &hs, nil
}

// recomputeInvoice rewrites the invoice's derived fields from the sum of its
// handshakes. is_paid never reverts except through this same recompute after
// a handshake deletion; overpayment leaves a negative balance by policy.
func recomputeInvoice(ctx context.Context, tx pgx.Tx, invoiceID int64) error {
	_, err := tx.Exec(ctx, `
		UPDATE invoices i SET
			paid_amount = sub.applied,
			balance_remaining = i.total_gross - sub.applied,
			is_paid = sub.applied >= i.total_gross
		FROM (
			SELECT COALESCE(SUM(bank_amount_applied + proxy_amount), 0) AS applied
			FROM handshakes WHERE invoice_id = $1
		) sub
		WHERE i.invoice_id = $1`, invoiceID)
	if err != nil {
		return fmt.Errorf("recompute invoice %d: %w", invoiceID, err)
	}
	return nil
}

// recomputeBankMatched rewrites is_matched from the existence of handshakes.
func recomputeBankMatched(ctx context.Context, tx pgx.Tx, bankID int64) error {
	_, err := tx.Exec(ctx, `
		UPDATE bank_transactions SET
			is_matched = EXISTS (SELECT 1 FROM handshakes WHERE bank_id = $1)
		WHERE bank_id = $1`, bankID)
	if err != nil {
		return fmt.Errorf("recompute bank %d matched flag: %w", bankID, err)
	}
	return nil
}

// --- Importer write path -------------------------------------------------
//
// The importer populates these rows with all required fields; the engine
// never mutates them afterwards except for the derived fields above.

func (s *PostgresStore) CreateShow(ctx context.Context, show *Show) (*Show, error) {
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO shows
			(contract_number, agent, artist, event_name, venue, city, country,
			 performance_date, deal_description, total_deal_value, currency_code,
			 artist_fee, booking_fee, hotel_buyout, flight_buyout,
			 ground_transport_buyout, withholding_tax, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19)
		RETURNING show_id, created_at, updated_at`,
		show.ContractNumber, show.Agent, show.Artist, show.EventName,
		show.Venue, show.City, show.Country, show.PerformanceDate,
		show.DealDescription, show.TotalDealValue, show.CurrencyCode,
		show.ArtistFee, show.BookingFee, show.HotelBuyout, show.FlightBuyout,
		show.GroundBuyout, show.WithholdingTax, show.Status, show.Notes,
	).Scan(&show.ID, &show.CreatedAt, &show.UpdatedAt)
	if err != nil {
		return nil, mapPgError(fmt.Errorf("create show: %w", err))
	}
	return show, nil
}

func (s *PostgresStore) GetShow(ctx context.Context, id int64) (*Show, error) {
	var sh Show
	err := s.Pool.QueryRow(ctx, `
		SELECT show_id, contract_number, agent, artist, event_name, venue,
		       city, country, performance_date, deal_description,
		       total_deal_value, currency_code, artist_fee, booking_fee,
		       hotel_buyout, flight_buyout, ground_transport_buyout,
		       withholding_tax, status, notes, created_at, updated_at
		FROM shows WHERE show_id = $1`, id,
	).Scan(&sh.ID, &sh.ContractNumber, &sh.Agent, &sh.Artist, &sh.EventName,
		&sh.Venue, &sh.City, &sh.Country, &sh.PerformanceDate,
		&sh.DealDescription, &sh.TotalDealValue, &sh.CurrencyCode,
		&sh.ArtistFee, &sh.BookingFee, &sh.HotelBuyout, &sh.FlightBuyout,
		&sh.GroundBuyout, &sh.WithholdingTax, &sh.Status, &sh.Notes,
		&sh.CreatedAt, &sh.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Entity: "show", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get show: %w", err)
	}
	return &sh, nil
}

func (s *PostgresStore) CreateInvoice(ctx context.Context, inv *Invoice) (*Invoice, error) {
	// New invoices start unpaid with the full gross outstanding.
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO invoices
			(invoice_number, contract_number, show_id, from_entity,
			 promoter_name, reference, currency_code, total_net, total_vat,
			 total_gross, invoice_date, show_date, balance_remaining,
			 import_batch)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $10, $13)
		RETURNING invoice_id, is_paid, paid_amount, balance_remaining, imported_at`,
		inv.InvoiceNumber, inv.ContractNumber, inv.ShowID, inv.FromEntity,
		inv.PromoterName, inv.Reference, inv.CurrencyCode, inv.TotalNet,
		inv.TotalVAT, inv.TotalGross, inv.InvoiceDate, inv.ShowDate,
		inv.ImportBatch,
	).Scan(&inv.ID, &inv.IsPaid, &inv.PaidAmount, &inv.BalanceRemaining, &inv.ImportedAt)
	if err != nil {
		return nil, mapPgError(fmt.Errorf("create invoice: %w", err))
	}
	return inv, nil
}

func (s *PostgresStore) CreateBankTransaction(ctx context.Context, bt *BankTransaction) (*BankTransaction, error) {
	if bt.TransactionHash == "" {
		bt.TransactionHash = TransactionHash(bt.Date, bt.Amount, bt.Description)
	}
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO bank_transactions
			(date, type, description, amount, currency_code,
			 transaction_hash, show_id, import_batch)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING bank_id, is_matched, imported_at`,
		bt.Date, bt.Type, bt.Description, bt.Amount, bt.CurrencyCode,
		bt.TransactionHash, bt.ShowID, bt.ImportBatch,
	).Scan(&bt.ID, &bt.IsMatched, &bt.ImportedAt)
	if err != nil {
		return nil, mapPgError(fmt.Errorf("create bank transaction: %w", err))
	}
	return bt, nil
}

func (s *PostgresStore) CreateOutgoingPayment(ctx context.Context, p *OutgoingPayment) (*OutgoingPayment, error) {
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO outgoing_payments
			(show_id, payment_type, description, amount, currency_code,
			 payment_date, payee, bank_reference, bank_id, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING payment_id, created_at`,
		p.ShowID, p.PaymentType, p.Description, p.Amount, p.CurrencyCode,
		p.PaymentDate, p.Payee, p.BankReference, p.BankID, p.Notes, p.CreatedBy,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, mapPgError(fmt.Errorf("create outgoing payment: %w", err))
	}
	return p, nil
}

// ListOutgoingPayments returns outgoing payments, optionally for one show.
func (s *PostgresStore) ListOutgoingPayments(ctx context.Context, showID int64) ([]OutgoingPayment, error) {
	query := `
		SELECT payment_id, show_id, payment_type, description, amount,
		       currency_code, payment_date, payee, bank_reference, bank_id,
		       notes, created_at, created_by
		FROM outgoing_payments`
	args := []any{}
	if showID != 0 {
		query += ` WHERE show_id = $1`
		args = append(args, showID)
	}
	query += ` ORDER BY payment_date DESC NULLS LAST, payment_id DESC`

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list outgoing payments: %w", err)
	}
	defer rows.Close()

	var out []OutgoingPayment
	for rows.Next() {
		var p OutgoingPayment
		err := rows.Scan(&p.ID, &p.ShowID, &p.PaymentType, &p.Description,
			&p.Amount, &p.CurrencyCode, &p.PaymentDate, &p.Payee,
			&p.BankReference, &p.BankID, &p.Notes, &p.CreatedAt, &p.CreatedBy)
		if err != nil {
			return nil, fmt.Errorf("scan outgoing payment: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListShows returns shows, optionally filtered by a free-text search over
// artist, venue and event name.
func (s *PostgresStore) ListShows(ctx context.Context, search string) ([]Show, error) {
	query := `
		SELECT show_id, contract_number, agent, artist, event_name, venue,
		       city, country, performance_date, deal_description,
		       total_deal_value, currency_code, artist_fee, booking_fee,
		       hotel_buyout, flight_buyout, ground_transport_buyout,
		       withholding_tax, status, notes, created_at, updated_at
		FROM shows`
	args := []any{}
	if search != "" {
		query += ` WHERE artist ILIKE $1 OR venue ILIKE $1 OR event_name ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY performance_date DESC NULLS LAST, show_id DESC`

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list shows: %w", err)
	}
	defer rows.Close()

	var out []Show
	for rows.Next() {
		var sh Show
		err := rows.Scan(&sh.ID, &sh.ContractNumber, &sh.Agent, &sh.Artist,
			&sh.EventName, &sh.Venue, &sh.City, &sh.Country,
			&sh.PerformanceDate, &sh.DealDescription, &sh.TotalDealValue,
			&sh.CurrencyCode, &sh.ArtistFee, &sh.BookingFee, &sh.HotelBuyout,
			&sh.FlightBuyout, &sh.GroundBuyout, &sh.WithholdingTax,
			&sh.Status, &sh.Notes, &sh.CreatedAt, &sh.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan show: %w", err)
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

// Ping verifies store connectivity with a bounded deadline.
func (s *PostgresStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.Pool.Ping(ctx)
}
