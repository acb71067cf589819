package ledger

import (
	"context"
	"log/slog"

	"github.com/example/recon-ledger/pkg/audit"
)

// lifecycleStore is the slice of the store the lifecycle service writes
// through. Both operations are transactional in the store; the service adds
// argument validation, audit and logging on top.
type lifecycleStore interface {
	CreateHandshakes(ctx context.Context, bankID int64, allocs []AllocationInput, note, actor string) ([]Handshake, error)
	DeleteHandshake(ctx context.Context, id int64) (*Handshake, error)
	ListHandshakes(ctx context.Context, filter HandshakeFilter) ([]HandshakeDetail, error)
}

// Auditor receives one event per committed mutation.
type Auditor interface {
	Append(actor, operation, entity string, entityID int64, detail string) *audit.Event
}

// Service is the handshake lifecycle manager: the only component permitted
// to change invoice paid/balance/paid-flag state and the bank matched flag.
// All other packages treat those fields as read-only.
type Service struct {
	store   lifecycleStore
	logger  *slog.Logger
	auditor Auditor
}

func NewService(store lifecycleStore, logger *slog.Logger, auditor Auditor) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger, auditor: auditor}
}

// CreateHandshakesRequest commits a confirmed allocation: every element of
// Allocations becomes one handshake row.
type CreateHandshakesRequest struct {
	BankTransactionID int64             `json:"bank_transaction_id"`
	Allocations       []AllocationInput `json:"allocations"`
	Note              string            `json:"note"`
	Actor             string            `json:"actor"`
}

// CreateHandshakes inserts the handshakes and updates all derived fields in
// one atomic transaction; either every allocation commits or none do.
func (s *Service) CreateHandshakes(ctx context.Context, req CreateHandshakesRequest) ([]Handshake, error) {
	if len(req.Allocations) == 0 {
		return nil, validationf("at least one allocation is required")
	}
	if req.Actor == "" {
		return nil, validationf("actor is required")
	}

	created, err := s.store.CreateHandshakes(ctx, req.BankTransactionID, req.Allocations, req.Note, req.Actor)
	if err != nil {
		return nil, err
	}

	for _, hs := range created {
		if s.auditor != nil {
			s.auditor.Append(req.Actor, "create_handshake", "handshake", hs.ID,
				"bank "+hs.BankAmountApplied.String()+" proxy "+hs.ProxyAmount.String())
		}
		s.logger.Info("handshake_created",
			"handshake_id", hs.ID,
			"bank_id", hs.BankID,
			"invoice_id", hs.InvoiceID,
			"bank_amount_applied", hs.BankAmountApplied.String(),
			"proxy_amount", hs.ProxyAmount.String(),
			"actor", req.Actor,
		)
	}
	return created, nil
}

// DeleteHandshake removes one handshake and reverses its effect on the
// invoice and bank transaction, atomically.
func (s *Service) DeleteHandshake(ctx context.Context, id int64, actor string) (*Handshake, error) {
	if actor == "" {
		return nil, validationf("actor is required")
	}

	hs, err := s.store.DeleteHandshake(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.auditor != nil {
		s.auditor.Append(actor, "delete_handshake", "handshake", hs.ID,
			"reversed bank "+hs.BankAmountApplied.String()+" proxy "+hs.ProxyAmount.String())
	}
	s.logger.Info("handshake_deleted",
		"handshake_id", hs.ID,
		"bank_id", hs.BankID,
		"invoice_id", hs.InvoiceID,
		"actor", actor,
	)
	return hs, nil
}

// ListHandshakes returns existing handshakes for display callers.
func (s *Service) ListHandshakes(ctx context.Context, filter HandshakeFilter) ([]HandshakeDetail, error) {
	return s.store.ListHandshakes(ctx, filter)
}
