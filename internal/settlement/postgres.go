package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/example/recon-ledger/internal/ledger"
)

// PostgresStore owns the settlements table and provides the read-only show
// projections the calculator needs. Invoice and bank derived fields are
// never written from here; this store only ever reads them.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{Pool: pool}
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001":
			return &ledger.ConflictError{Msg: "serialization failure, retry against fresh state", Err: err}
		case "23503":
			return &ledger.ConflictError{Msg: "referenced row was concurrently deleted", Err: err}
		case "23505":
			return &ledger.ConflictError{Msg: "duplicate row: " + pgErr.ConstraintName, Err: err}
		}
	}
	return err
}

func (s *PostgresStore) inSerializableTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{
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

const settlementColumns = `
	settlement_id, show_id, artist, amount_due, currency_code, amount_paid,
	balance, status, payment_date, payment_reference, payment_method,
	confirmed_by, confirmed_at, notes, created_at, updated_at`

func scanSettlement(row pgx.Row) (*Settlement, error) {
	var st Settlement
	err := row.Scan(
		&st.ID, &st.ShowID, &st.Artist, &st.AmountDue, &st.CurrencyCode,
		&st.AmountPaid, &st.Balance, &st.Status, &st.PaymentDate,
		&st.PaymentReference, &st.PaymentMethod, &st.ConfirmedBy,
		&st.ConfirmedAt, &st.Notes, &st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// GetSettlement returns one settlement by id.
func (s *PostgresStore) GetSettlement(ctx context.Context, id int64) (*Settlement, error) {
	st, err := scanSettlement(s.Pool.QueryRow(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE settlement_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &ledger.NotFoundError{Entity: "settlement", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get settlement: %w", err)
	}
	return st, nil
}

// ListSettlements returns settlements, optionally narrowed by show and
// status.
func (s *PostgresStore) ListSettlements(ctx context.Context, filter Filter) ([]Settlement, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlements WHERE 1=1`
	args := []any{}
	if filter.ShowID != 0 {
		args = append(args, filter.ShowID)
		query += fmt.Sprintf(" AND show_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC, settlement_id DESC"

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list settlements: %w", err)
	}
	defer rows.Close()

	var out []Settlement
	for rows.Next() {
		st, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan settlement: %w", err)
		}
		out = append(out, *st)
	}
	return out, rows.Err()
}

// Upsert creates the show×artist settlement row on first use, updates it
// afterwards. Balance and status are derived inside the same transaction
// that writes the amounts.
func (s *PostgresStore) Upsert(ctx context.Context, req UpsertRequest) (*Settlement, error) {
	var out *Settlement
	err := s.inSerializableTx(ctx, func(tx pgx.Tx) error {
		// The show must exist; settlements anchor to it.
		var exists bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM shows WHERE show_id = $1)`, req.ShowID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check show: %w", err)
		}
		if !exists {
			return &ledger.NotFoundError{Entity: "show", ID: req.ShowID}
		}

		current, err := scanSettlement(tx.QueryRow(ctx,
			`SELECT `+settlementColumns+` FROM settlements WHERE show_id = $1 AND artist = $2`,
			req.ShowID, req.Artist))
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("read settlement: %w", err)
		}

		balance := req.AmountDue.Sub(req.AmountPaid)
		currentStatus := Status("")
		if current != nil {
			currentStatus = current.Status
		}
		status := DeriveStatus(req.AmountDue, req.AmountPaid, currentStatus)

		if current == nil {
			out, err = scanSettlement(tx.QueryRow(ctx, `
				INSERT INTO settlements
					(show_id, artist, amount_due, currency_code, amount_paid,
					 balance, status, payment_date, payment_reference,
					 payment_method, notes)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
				RETURNING `+settlementColumns,
				req.ShowID, req.Artist, req.AmountDue, req.CurrencyCode,
				req.AmountPaid, balance, status, req.PaymentDate,
				req.PaymentReference, req.PaymentMethod, req.Notes))
			if err != nil {
				return fmt.Errorf("insert settlement: %w", err)
			}
			return nil
		}

		out, err = scanSettlement(tx.QueryRow(ctx, `
			UPDATE settlements SET
				amount_due = $1, amount_paid = $2, balance = $3, status = $4,
				payment_date = COALESCE($5, payment_date),
				payment_reference = CASE WHEN $6 <> '' THEN $6 ELSE payment_reference END,
				payment_method = CASE WHEN $7 <> '' THEN $7 ELSE payment_method END,
				notes = CASE WHEN $8 <> '' THEN $8 ELSE notes END,
				updated_at = now()
			WHERE settlement_id = $9
			RETURNING `+settlementColumns,
			req.AmountDue, req.AmountPaid, balance, status, req.PaymentDate,
			req.PaymentReference, req.PaymentMethod, req.Notes, current.ID))
		if err != nil {
			return fmt.Errorf("update settlement: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Confirm moves a Paid settlement to Confirmed and stamps who/when.
func (s *PostgresStore) Confirm(ctx context.Context, id int64, confirmedBy string) (*Settlement, error) {
	var out *Settlement
	err := s.inSerializableTx(ctx, func(tx pgx.Tx) error {
		var status Status
		err := tx.QueryRow(ctx,
			`SELECT status FROM settlements WHERE settlement_id = $1`, id).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return &ledger.NotFoundError{Entity: "settlement", ID: id}
		}
		if err != nil {
			return fmt.Errorf("read settlement status: %w", err)
		}
		if status != StatusPaid {
			return &ledger.InvalidStateError{
				Msg: fmt.Sprintf("settlement %d is %s, only Paid settlements can be confirmed", id, status),
			}
		}

		out, err = scanSettlement(tx.QueryRow(ctx, `
			UPDATE settlements SET
				status = $1, confirmed_by = $2, confirmed_at = $3, updated_at = now()
			WHERE settlement_id = $4
			RETURNING `+settlementColumns,
			StatusConfirmed, confirmedBy, time.Now().UTC(), id))
		if err != nil {
			return fmt.Errorf("confirm settlement: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// --- Calculator reads ----------------------------------------------------

// GetShow returns the show row the settlement projection anchors to.
func (s *PostgresStore) GetShow(ctx context.Context, id int64) (*ledger.Show, error) {
	return ledger.NewPostgresStore(s.Pool).GetShow(ctx, id)
}

// InvoicesForShow returns the show's invoices.
func (s *PostgresStore) InvoicesForShow(ctx context.Context, showID int64) ([]ledger.Invoice, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT invoice_id, invoice_number, contract_number, show_id,
		       from_entity, promoter_name, reference, currency_code,
		       total_net, total_vat, total_gross, invoice_date, show_date,
		       is_paid, paid_amount, balance_remaining, import_batch, imported_at
		FROM invoices WHERE show_id = $1
		ORDER BY invoice_id ASC`, showID)
	if err != nil {
		return nil, fmt.Errorf("invoices for show: %w", err)
	}
	defer rows.Close()

	var out []ledger.Invoice
	for rows.Next() {
		var inv ledger.Invoice
		err := rows.Scan(&inv.ID, &inv.InvoiceNumber, &inv.ContractNumber,
			&inv.ShowID, &inv.FromEntity, &inv.PromoterName, &inv.Reference,
			&inv.CurrencyCode, &inv.TotalNet, &inv.TotalVAT, &inv.TotalGross,
			&inv.InvoiceDate, &inv.ShowDate, &inv.IsPaid, &inv.PaidAmount,
			&inv.BalanceRemaining, &inv.ImportBatch, &inv.ImportedAt)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// ReceivedTotalForShow sums applied + proxy across all handshakes whose
// invoice belongs to the show.
func (s *PostgresStore) ReceivedTotalForShow(ctx context.Context, showID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(h.bank_amount_applied + h.proxy_amount), 0)
		FROM handshakes h
		JOIN invoices i ON i.invoice_id = h.invoice_id
		WHERE i.show_id = $1`, showID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("received total for show: %w", err)
	}
	return total, nil
}

// OutgoingForShow returns the show's outgoing payments.
func (s *PostgresStore) OutgoingForShow(ctx context.Context, showID int64) ([]ledger.OutgoingPayment, error) {
	return ledger.NewPostgresStore(s.Pool).ListOutgoingPayments(ctx, showID)
}
