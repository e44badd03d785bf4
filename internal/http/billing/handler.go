package billing

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tobiaswld/werkstatt/internal/billing"
)

type Handler struct {
	svc *billing.Service
}

func NewHandler(svc *billing.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/suggest-number", h.suggestNumber)
	r.Post("/bulk/delete", h.bulkDelete)
	r.Post("/bulk/status", h.bulkStatus)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/status", h.updateStatus)
}

// writeError maps service errors onto HTTP statuses: unknown input is 400,
// missing documents 404, number collisions 409 and lifecycle violations 422.
func writeError(w http.ResponseWriter, err error) {
	var (
		dupErr        *billing.DuplicateNumberError
		transitionErr *billing.InvalidTransitionError
	)

	switch {
	case errors.Is(err, billing.ErrNotFound):
		http.Error(w, "document not found", http.StatusNotFound)
	case errors.As(err, &dupErr):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &transitionErr), errors.Is(err, billing.ErrDocumentFrozen):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, billing.ErrNoLineItems),
		errors.Is(err, billing.ErrBadPayment),
		errors.Is(err, billing.ErrBadDocType):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

type lineItemDTO struct {
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
}

type customerDTO struct {
	Name    string `json:"name"`
	Company string `json:"company,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	TaxID   string `json:"tax_id,omitempty"`
}

type createDocumentRequest struct {
	StoreID  uuid.UUID       `json:"store_id"`
	Type     billing.DocType `json:"type"`
	Number   string          `json:"number,omitempty"`
	Customer customerDTO     `json:"customer"`
	Lines    []lineItemDTO   `json:"lines"`

	MarginScheme bool       `json:"margin_scheme,omitempty"`
	ValidUntil   *time.Time `json:"valid_until,omitempty"`
	Notes        string     `json:"notes,omitempty"`

	MarkPaid      bool                  `json:"mark_paid,omitempty"`
	PaymentMethod billing.PaymentMethod `json:"payment_method,omitempty"`
	PaidAt        *time.Time            `json:"paid_at,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := h.svc.Create(r.Context(), billing.CreateParams{
		StoreID:       req.StoreID,
		Type:          req.Type,
		Number:        req.Number,
		Customer:      toCustomerSnapshot(req.Customer),
		Lines:         toLineItems(req.Lines),
		MarginScheme:  req.MarginScheme,
		ValidUntil:    req.ValidUntil,
		Notes:         req.Notes,
		MarkPaid:      req.MarkPaid,
		PaymentMethod: req.PaymentMethod,
		PaidAt:        req.PaidAt,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(doc)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(r.URL.Query().Get("store_id"))
	if err != nil {
		http.Error(w, "invalid store_id", http.StatusBadRequest)
		return
	}

	filter := billing.ListFilter{StoreID: storeID}

	if s := r.URL.Query().Get("type"); s != "" {
		t := billing.DocType(s)
		filter.Type = &t
	}

	if s := r.URL.Query().Get("status"); s != "" {
		st := billing.Status(s)
		filter.Status = &st
	}

	filter.Search = r.URL.Query().Get("search")
	filter.Limit = queryInt(r, "limit")
	filter.Offset = queryInt(r, "offset")

	docs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(docs)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	doc, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(doc)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type updateDocumentRequest struct {
	Customer     *customerDTO  `json:"customer,omitempty"`
	Lines        []lineItemDTO `json:"lines,omitempty"`
	Notes        *string       `json:"notes,omitempty"`
	ValidUntil   *time.Time    `json:"valid_until,omitempty"`
	MarginScheme *bool         `json:"margin_scheme,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := billing.UpdateParams{
		Notes:        req.Notes,
		ValidUntil:   req.ValidUntil,
		MarginScheme: req.MarginScheme,
	}

	if req.Customer != nil {
		cs := toCustomerSnapshot(*req.Customer)
		params.Customer = &cs
	}

	if req.Lines != nil {
		params.Lines = toLineItems(req.Lines)
	}

	doc, err := h.svc.Update(r.Context(), id, params)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(doc)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type updateStatusRequest struct {
	Status        billing.Status        `json:"status"`
	PaymentMethod billing.PaymentMethod `json:"payment_method,omitempty"`
	PaidAt        *time.Time            `json:"paid_at,omitempty"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.TransitionStatus(r.Context(), id, req.Status, req.PaymentMethod, req.PaidAt); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type bulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

func (h *Handler) bulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	results := h.svc.BulkDelete(r.Context(), req.IDs)

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toBulkResponse(results)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type bulkStatusRequest struct {
	IDs           []uuid.UUID           `json:"ids"`
	Status        billing.Status        `json:"status"`
	PaymentMethod billing.PaymentMethod `json:"payment_method,omitempty"`
	PaidAt        *time.Time            `json:"paid_at,omitempty"`
}

func (h *Handler) bulkStatus(w http.ResponseWriter, r *http.Request) {
	var req bulkStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	results := h.svc.BulkTransition(r.Context(), req.IDs, req.Status, req.PaymentMethod, req.PaidAt)

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toBulkResponse(results)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) suggestNumber(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(r.URL.Query().Get("store_id"))
	if err != nil {
		http.Error(w, "invalid store_id", http.StatusBadRequest)
		return
	}

	docType := billing.DocType(r.URL.Query().Get("type"))

	suggestion, err := h.svc.SuggestNumber(r.Context(), storeID, docType)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toSuggestionResponse(suggestion)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func queryInt(r *http.Request, name string) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}

	return n
}
