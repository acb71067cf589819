package settlement

import (
	"context"
	"log/slog"

	"github.com/example/recon-ledger/internal/ledger"
	"github.com/example/recon-ledger/pkg/audit"
)

// settlementStore is the slice of the store the service writes through.
type settlementStore interface {
	Upsert(ctx context.Context, req UpsertRequest) (*Settlement, error)
	Confirm(ctx context.Context, id int64, confirmedBy string) (*Settlement, error)
	GetSettlement(ctx context.Context, id int64) (*Settlement, error)
	ListSettlements(ctx context.Context, filter Filter) ([]Settlement, error)
}

// Auditor receives one event per committed mutation.
type Auditor interface {
	Append(actor, operation, entity string, entityID int64, detail string) *audit.Event
}

// Service manages artist settlement records on top of the store.
type Service struct {
	store   settlementStore
	logger  *slog.Logger
	auditor Auditor
}

func NewService(store settlementStore, logger *slog.Logger, auditor Auditor) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger, auditor: auditor}
}

// Upsert validates and writes the show×artist settlement row.
func (s *Service) Upsert(ctx context.Context, req UpsertRequest, actor string) (*Settlement, error) {
	if req.Artist == "" {
		return nil, &ledger.ValidationError{Msg: "artist is required"}
	}
	if req.AmountDue.IsNegative() {
		return nil, &ledger.ValidationError{Msg: "amount_due must not be negative"}
	}
	if req.AmountPaid.IsNegative() {
		return nil, &ledger.ValidationError{Msg: "amount_paid must not be negative"}
	}
	if actor == "" {
		return nil, &ledger.ValidationError{Msg: "actor is required"}
	}

	st, err := s.store.Upsert(ctx, req)
	if err != nil {
		return nil, err
	}

	if s.auditor != nil {
		s.auditor.Append(actor, "upsert_settlement", "settlement", st.ID,
			"due "+st.AmountDue.String()+" paid "+st.AmountPaid.String()+" status "+string(st.Status))
	}
	s.logger.Info("settlement_upserted",
		"settlement_id", st.ID,
		"show_id", st.ShowID,
		"artist", st.Artist,
		"amount_due", st.AmountDue.String(),
		"amount_paid", st.AmountPaid.String(),
		"status", st.Status,
		"actor", actor,
	)
	return st, nil
}

// Confirm locks a Paid settlement. The store enforces that only Paid
// settlements can be confirmed.
func (s *Service) Confirm(ctx context.Context, id int64, actor string) (*Settlement, error) {
	if actor == "" {
		return nil, &ledger.ValidationError{Msg: "actor is required"}
	}

	st, err := s.store.Confirm(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	if s.auditor != nil {
		s.auditor.Append(actor, "confirm_settlement", "settlement", st.ID,
			"balance "+st.Balance.String())
	}
	s.logger.Info("settlement_confirmed",
		"settlement_id", st.ID,
		"show_id", st.ShowID,
		"artist", st.Artist,
		"actor", actor,
	)
	return st, nil
}

// GetSettlement returns one settlement by id.
func (s *Service) GetSettlement(ctx context.Context, id int64) (*Settlement, error) {
	return s.store.GetSettlement(ctx, id)
}

// ListSettlements returns settlements matching the filter.
func (s *Service) ListSettlements(ctx context.Context, filter Filter) ([]Settlement, error) {
	return s.store.ListSettlements(ctx, filter)
}
