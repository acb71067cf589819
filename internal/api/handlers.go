package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/example/recon-ledger/internal/ledger"
	"github.com/example/recon-ledger/internal/security"
	"github.com/example/recon-ledger/internal/settlement"
)

// writeDomainError maps the ledger error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *ledger.ValidationError
	var nfe *ledger.NotFoundError
	var ce *ledger.ConflictError
	var ise *ledger.InvalidStateError
	switch {
	case errors.As(err, &ve):
		security.WriteJSONErrorDetail(w, r, http.StatusBadRequest, "validation_error", ve.Msg)
	case errors.As(err, &nfe):
		security.WriteJSONErrorDetail(w, r, http.StatusNotFound, "not_found", nfe.Error())
	case errors.As(err, &ce):
		security.WriteJSONErrorDetail(w, r, http.StatusConflict, "conflict", ce.Msg)
	case errors.As(err, &ise):
		security.WriteJSONErrorDetail(w, r, http.StatusUnprocessableEntity, "invalid_state", ise.Msg)
	default:
		security.WriteJSONError(w, r, http.StatusInternalServerError, "internal_error")
	}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

type unallocatedResponse struct {
	CorrelationID    string                   `json:"correlation_id"`
	BankTransactions []ledger.BankTransaction `json:"bank_transactions"`
}

func handleUnallocated(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		txs, err := deps.Matcher.UnallocatedBankTransactions(r.Context())
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, unallocatedResponse{
			CorrelationID:    security.CorrelationIDFromContext(r.Context()),
			BankTransactions: txs,
		})
	}
}

type openInvoicesResponse struct {
	CorrelationID string           `json:"correlation_id"`
	Invoices      []ledger.Invoice `json:"invoices"`
}

func handleOpenInvoices(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invoices, err := deps.Matcher.OpenInvoices(r.Context())
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, openInvoicesResponse{
			CorrelationID: security.CorrelationIDFromContext(r.Context()),
			Invoices:      invoices,
		})
	}
}

type proposalResponse struct {
	CorrelationID string           `json:"correlation_id"`
	Proposal      *ledger.Proposal `json:"proposal"`
}

func handleProposeAllocation(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ledger.ProposalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		proposal, err := deps.Matcher.ProposeAllocation(r.Context(), req)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, proposalResponse{
			CorrelationID: security.CorrelationIDFromContext(r.Context()),
			Proposal:      proposal,
		})
	}
}

type listHandshakesResponse struct {
	CorrelationID string                   `json:"correlation_id"`
	Handshakes    []ledger.HandshakeDetail `json:"handshakes"`
}

func handleListHandshakes(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := ledger.HandshakeFilter{}
		if v := r.URL.Query().Get("bank_id"); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				security.WriteJSONErrorDetail(w, r, http.StatusBadRequest, "validation_error", "bank_id must be an integer")
				return
			}
			filter.BankID = id
		}
		if v := r.URL.Query().Get("invoice_id"); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				security.WriteJSONErrorDetail(w, r, http.StatusBadRequest, "validation_error", "invoice_id must be an integer")
				return
			}
			filter.InvoiceID = id
		}

		handshakes, err := deps.Handshakes.ListHandshakes(r.Context(), filter)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, listHandshakesResponse{
			CorrelationID: security.CorrelationIDFromContext(r.Context()),
			Handshakes:    handshakes,
		})
	}
}

type createHandshakesResponse struct {
	CorrelationID string             `json:"correlation_id"`
	Handshakes    []ledger.Handshake `json:"handshakes"`
}

func handleCreateHandshakes(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ledger.CreateHandshakesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		created, err := deps.Handshakes.CreateHandshakes(r.Context(), req)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusCreated, createHandshakesResponse{
			CorrelationID: security.CorrelationIDFromContext(r.Context()),
			Handshakes:    created,
		})
	}
}

type deleteHandshakeResponse struct {
	CorrelationID string            `json:"correlation_id"`
	Deleted       *ledger.Handshake `json:"deleted"`
}

func handleDeleteHandshake(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "handshakeID")
		if !ok {
			security.WriteJSONErrorDetail(w, r, http.StatusBadRequest, "validation_error", "handshake id must be a positive integer")
			return
		}
		actor := r.URL.Query().Get("actor")
		if actor == "" {
			security.WriteJSONErrorDetail(w, r, http.StatusBadRequest, "validation_error", "actor query parameter is required")
			return
		}

		deleted, err := deps.Handshakes.DeleteHandshake(r.Context(), id, actor)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, deleteHandshakeResponse{
			CorrelationID: security.CorrelationIDFromContext(r.Context()),
			Deleted:       deleted,
		})
	}
}

type listShowsResponse struct {
	CorrelationID string        `json:"correlation_id"`
	Shows         []ledger.Show `json:"shows"`
}

func handleListShows(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shows, err := deps.Shows.ListShows(r.Context(), r.URL.Query().Get("search"))
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, listShowsResponse{
			CorrelationID: security.CorrelationIDFromContext(r.Context()),
			Shows:         shows,
		})
	}
}

type showResponse struct {
	CorrelationID string       `json:"correlation_id"`
	Show          *ledger.Show `json:"show"`
}

func handleGetShow(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "showID")
		if !ok {
			security.WriteJSONErrorDetail(w, r, http.StatusBadRequest, "validation_error", "show id must be a positive integer")
			return
		}

		show, err := deps.Shows.GetShow(r.Context(), id)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, showResponse{
			CorrelationID: security.CorrelationIDFromContext(r.Context()),
			Show:          show,
		})
	}
}

type showSettlementResponse struct {
	CorrelationID string                     `json:"correlation_id"`
	Settlement    *settlement.ShowSettlement `json:"settlement"`
}

func handleShowSettlement(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "showID")
		if !ok {
			security.WriteJSONErrorDetail(w, r, http.StatusBadRequest, "validation_error", "show id must be a positive integer")
			return
		}

		ss, err := deps.Calculator.CalculateShowSettlement(r.Context(), id)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, showSettlementResponse{
			CorrelationID: security.CorrelationIDFromContext(r.Context()),
			Settlement:    ss,
		})
	}
}

type listSettlementsResponse struct {
	CorrelationID string                  `json:"correlation_id"`
	Settlements   []settlement.Settlement `json:"settlements"`
}

func handleListSettlements(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := settlement.Filter{}
		if v := r.URL.Query().Get("show_id"); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				security.WriteJSONErrorDetail(w, r, http.StatusBadRequest, "validation_error", "show_id must be an integer")
				return
			}
			filter.ShowID = id
		}
		if v := r.URL.Query().Get("status"); v != "" {
			status := settlement.Status(v)
			if !status.Valid() {
				security.WriteJSONErrorDetail(w, r, http.StatusBadRequest, "validation_error", "unknown settlement status "+v)
				return
			}
			filter.Status = status
		}

		settlements, err := deps.Settlements.ListSettlements(r.Context(), filter)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, listSettlementsResponse{
			CorrelationID: security.CorrelationIDFromContext(r.Context()),
			Settlements:   settlements,
		})
	}
}

type upsertSettlementRequest struct {
	ShowID           int64           `json:"show_id"`
	Artist           string          `json:"artist"`
	AmountDue        decimal.Decimal `json:"amount_due"`
	CurrencyCode     string          `json:"currency_code"`
	AmountPaid       decimal.Decimal `json:"amount_paid"`
	PaymentDate      string          `json:"payment_date"`
	PaymentReference string          `json:"payment_reference"`
	PaymentMethod    string          `json:"payment_method"`
	Notes            string          `json:"notes"`
	Actor            string          `json:"actor"`
}

type settlementResponse struct {
	CorrelationID string                 `json:"correlation_id"`
	Settlement    *settlement.Settlement `json:"settlement"`
}

func handleUpsertSettlement(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req upsertSettlementRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		var paymentDate *time.Time
		if req.PaymentDate != "" {
			d, err := time.Parse("2006-01-02", req.PaymentDate)
			if err != nil {
				security.WriteJSONErrorDetail(w, r, http.StatusBadRequest, "validation_error", "payment_date must be YYYY-MM-DD")
				return
			}
			paymentDate = &d
		}

		st, err := deps.Settlements.Upsert(r.Context(), settlement.UpsertRequest{
			ShowID:           req.ShowID,
			Artist:           req.Artist,
			AmountDue:        req.AmountDue,
			CurrencyCode:     req.CurrencyCode,
			AmountPaid:       req.AmountPaid,
			PaymentDate:      paymentDate,
			PaymentReference: req.PaymentReference,
			PaymentMethod:    req.PaymentMethod,
			Notes:            req.Notes,
		}, req.Actor)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, settlementResponse{
			CorrelationID: security.CorrelationIDFromContext(r.Context()),
			Settlement:    st,
		})
	}
}

type confirmSettlementRequest struct {
	Actor string `json:"actor"`
}

func handleConfirmSettlement(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "settlementID")
		if !ok {
			security.WriteJSONErrorDetail(w, r, http.StatusBadRequest, "validation_error", "settlement id must be a positive integer")
			return
		}

		var req confirmSettlementRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		st, err := deps.Settlements.Confirm(r.Context(), id, req.Actor)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, settlementResponse{
			CorrelationID: security.CorrelationIDFromContext(r.Context()),
			Settlement:    st,
		})
	}
}

type listOutgoingResponse struct {
	CorrelationID string                   `json:"correlation_id"`
	Payments      []ledger.OutgoingPayment `json:"payments"`
}

func handleListOutgoing(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var showID int64
		if v := r.URL.Query().Get("show_id"); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				security.WriteJSONErrorDetail(w, r, http.StatusBadRequest, "validation_error", "show_id must be an integer")
				return
			}
			showID = id
		}

		payments, err := deps.Outgoing.ListOutgoingPayments(r.Context(), showID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, listOutgoingResponse{
			CorrelationID: security.CorrelationIDFromContext(r.Context()),
			Payments:      payments,
		})
	}
}

type createOutgoingRequest struct {
	ShowID        int64           `json:"show_id"`
	PaymentType   string          `json:"payment_type"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	CurrencyCode  string          `json:"currency_code"`
	PaymentDate   string          `json:"payment_date"`
	Payee         string          `json:"payee"`
	BankReference string          `json:"bank_reference"`
	BankID        int64           `json:"bank_id"`
	Notes         string          `json:"notes"`
	CreatedBy     string          `json:"created_by"`
}

type outgoingResponse struct {
	CorrelationID string                  `json:"correlation_id"`
	Payment       *ledger.OutgoingPayment `json:"payment"`
}

func handleCreateOutgoing(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOutgoingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		var paymentDate *time.Time
		if req.PaymentDate != "" {
			d, err := time.Parse("2006-01-02", req.PaymentDate)
			if err != nil {
				security.WriteJSONErrorDetail(w, r, http.StatusBadRequest, "validation_error", "payment_date must be YYYY-MM-DD")
				return
			}
			paymentDate = &d
		}

		payment := &ledger.OutgoingPayment{
			ShowID:        &req.ShowID,
			PaymentType:   req.PaymentType,
			Description:   req.Description,
			Amount:        req.Amount,
			CurrencyCode:  req.CurrencyCode,
			PaymentDate:   paymentDate,
			Payee:         req.Payee,
			BankReference: req.BankReference,
			Notes:         req.Notes,
			CreatedBy:     req.CreatedBy,
		}
		if req.BankID > 0 {
			payment.BankID = &req.BankID
		}

		created, err := deps.Outgoing.CreateOutgoingPayment(r.Context(), payment)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusCreated, outgoingResponse{
			CorrelationID: security.CorrelationIDFromContext(r.Context()),
			Payment:       created,
		})
	}
}
