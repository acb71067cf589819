package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/example/recon-ledger/internal/ledger"
	"github.com/example/recon-ledger/internal/security"
	"github.com/example/recon-ledger/internal/settlement"
	"github.com/example/recon-ledger/pkg/audit"
)

type Auditor interface {
	Append(actor, operation, entity string, entityID int64, detail string) *audit.Event
}

type Dependencies struct {
	Logger *slog.Logger

	Matcher interface {
		UnallocatedBankTransactions(ctx context.Context) ([]ledger.BankTransaction, error)
		OpenInvoices(ctx context.Context) ([]ledger.Invoice, error)
		ProposeAllocation(ctx context.Context, req ledger.ProposalRequest) (*ledger.Proposal, error)
	}
	Handshakes interface {
		CreateHandshakes(ctx context.Context, req ledger.CreateHandshakesRequest) ([]ledger.Handshake, error)
		DeleteHandshake(ctx context.Context, id int64, actor string) (*ledger.Handshake, error)
		ListHandshakes(ctx context.Context, filter ledger.HandshakeFilter) ([]ledger.HandshakeDetail, error)
	}
	Settlements interface {
		Upsert(ctx context.Context, req settlement.UpsertRequest, actor string) (*settlement.Settlement, error)
		Confirm(ctx context.Context, id int64, actor string) (*settlement.Settlement, error)
		ListSettlements(ctx context.Context, filter settlement.Filter) ([]settlement.Settlement, error)
	}
	Calculator interface {
		CalculateShowSettlement(ctx context.Context, showID int64) (*settlement.ShowSettlement, error)
	}
	Shows interface {
		GetShow(ctx context.Context, id int64) (*ledger.Show, error)
		ListShows(ctx context.Context, search string) ([]ledger.Show, error)
	}
	Outgoing interface {
		CreateOutgoingPayment(ctx context.Context, p *ledger.OutgoingPayment) (*ledger.OutgoingPayment, error)
		ListOutgoingPayments(ctx context.Context, showID int64) ([]ledger.OutgoingPayment, error)
	}

	Auditor      Auditor
	MaxBodyBytes int64
}

func NewRouter(deps Dependencies) (http.Handler, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	proposalV, err := security.NewJSONSchemaValidator(proposalSchema)
	if err != nil {
		return nil, err
	}
	createHandshakesV, err := security.NewJSONSchemaValidator(createHandshakesSchema)
	if err != nil {
		return nil, err
	}
	upsertSettlementV, err := security.NewJSONSchemaValidator(upsertSettlementSchema)
	if err != nil {
		return nil, err
	}
	confirmSettlementV, err := security.NewJSONSchemaValidator(confirmSettlementSchema)
	if err != nil {
		return nil, err
	}
	createOutgoingV, err := security.NewJSONSchemaValidator(createOutgoingSchema)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(security.CorrelationID)
	r.Use(RequestLogger(deps.Logger))
	r.Use(security.BodySizeLimit(deps.MaxBodyBytes))
	if deps.Auditor != nil {
		r.Use(AuditMiddleware(deps.Auditor))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Route("/matching", func(r chi.Router) {
			r.Get("/unallocated", handleUnallocated(deps))
			r.Get("/open-invoices", handleOpenInvoices(deps))
			r.With(proposalV.Middleware).Post("/proposals", handleProposeAllocation(deps))
		})

		r.Route("/handshakes", func(r chi.Router) {
			r.Get("/", handleListHandshakes(deps))
			r.With(createHandshakesV.Middleware).Post("/", handleCreateHandshakes(deps))
			r.Delete("/{handshakeID}", handleDeleteHandshake(deps))
		})

		r.Route("/shows", func(r chi.Router) {
			r.Get("/", handleListShows(deps))
			r.Get("/{showID}", handleGetShow(deps))
			r.Get("/{showID}/settlement", handleShowSettlement(deps))
		})

		r.Route("/settlements", func(r chi.Router) {
			r.Get("/", handleListSettlements(deps))
			r.With(upsertSettlementV.Middleware).Post("/", handleUpsertSettlement(deps))
			r.With(confirmSettlementV.Middleware).Post("/{settlementID}/confirm", handleConfirmSettlement(deps))
		})

		r.Route("/outgoing", func(r chi.Router) {
			r.Get("/", handleListOutgoing(deps))
			r.With(createOutgoingV.Middleware).Post("/", handleCreateOutgoing(deps))
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		security.WriteJSONError(w, r, http.StatusNotFound, "not_found")
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		security.WriteJSONError(w, r, http.StatusMethodNotAllowed, "method_not_allowed")
	})

	return r, nil
}
