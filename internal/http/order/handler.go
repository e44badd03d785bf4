package order

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
	"github.com/tobiaswld/werkstatt/internal/order"
)

type Handler struct {
	svc *order.Service
}

func NewHandler(svc *order.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/status", h.transition)
	r.Post("/{id}/complete", h.complete)
	r.Post("/{id}/complete-without-invoice", h.completeWithoutInvoice)
}

// writeError maps order and billing service errors onto HTTP statuses.
// Version conflicts and duplicate invoice numbers are 409 so the client can
// reload and retry; lifecycle violations are 422.
func writeError(w http.ResponseWriter, err error) {
	var (
		transitionErr *order.InvalidTransitionError
		dupErr        *billing.DuplicateNumberError
	)

	switch {
	case errors.Is(err, order.ErrNotFound):
		http.Error(w, "order not found", http.StatusNotFound)
	case errors.Is(err, order.ErrConflict), errors.As(err, &dupErr):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, order.ErrCompletionRequired), errors.As(err, &transitionErr):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, billing.ErrNoLineItems), errors.Is(err, billing.ErrBadPayment):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

type contactDTO struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

type deviceDTO struct {
	Brand       string   `json:"brand,omitempty"`
	Model       string   `json:"model"`
	Identifier  string   `json:"identifier,omitempty"`
	UnlockCode  string   `json:"unlock_code,omitempty"`
	Attachments []string `json:"attachments,omitempty"`
}

type createOrderRequest struct {
	StoreID    uuid.UUID  `json:"store_id"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	Contact    contactDTO `json:"contact"`
	Device     deviceDTO  `json:"device"`
	Problem    string     `json:"problem"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	o, err := h.svc.Create(r.Context(), order.CreateParams{
		StoreID:    req.StoreID,
		CustomerID: req.CustomerID,
		Contact:    toContact(req.Contact),
		Device:     toDevice(req.Device),
		Problem:    req.Problem,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(o)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(r.URL.Query().Get("store_id"))
	if err != nil {
		http.Error(w, "invalid store_id", http.StatusBadRequest)
		return
	}

	filter := order.ListFilter{StoreID: storeID}

	if s := r.URL.Query().Get("status"); s != "" {
		st := order.Status(s)
		filter.Status = &st
	}

	filter.Search = r.URL.Query().Get("search")

	if s := r.URL.Query().Get("limit"); s != "" {
		filter.Limit, _ = strconv.Atoi(s)
	}

	if s := r.URL.Query().Get("offset"); s != "" {
		filter.Offset, _ = strconv.Atoi(s)
	}

	orders, err := h.svc.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(orders)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	o, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(o)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type updateOrderRequest struct {
	Contact *contactDTO `json:"contact,omitempty"`
	Device  *deviceDTO  `json:"device,omitempty"`
	Problem *string     `json:"problem,omitempty"`
	Version int         `json:"version"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	o, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	if req.Version != 0 {
		o.Version = req.Version
	}

	if req.Contact != nil {
		o.Contact = toContact(*req.Contact)
	}

	if req.Device != nil {
		o.Device = toDevice(*req.Device)
	}

	if req.Problem != nil {
		o.Problem = *req.Problem
	}

	if err := h.svc.Update(r.Context(), o); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(o)); err != nil {
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

type transitionRequest struct {
	Status  order.Status `json:"status"`
	Version int          `json:"version"`
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	o, warnings, err := h.svc.Transition(r.Context(), id, req.Status, req.Version)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toTransitionResponse(o, warnings)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type lineItemDTO struct {
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
}

type completeRequest struct {
	Version int           `json:"version"`
	Lines   []lineItemDTO `json:"lines"`
	Number  string        `json:"number,omitempty"`
	Notes   string        `json:"notes,omitempty"`

	MarginScheme bool `json:"margin_scheme,omitempty"`

	MarkPaid      bool                  `json:"mark_paid,omitempty"`
	PaymentMethod billing.PaymentMethod `json:"payment_method,omitempty"`
	PaidAt        *time.Time            `json:"paid_at,omitempty"`
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	lines := make([]billing.LineItem, len(req.Lines))
	for i, line := range req.Lines {
		lines[i] = billing.LineItem{Description: line.Description, Amount: line.Amount}
	}

	result, err := h.svc.CompleteWithInvoice(r.Context(), order.CompleteParams{
		OrderID:       id,
		Version:       req.Version,
		Lines:         lines,
		Number:        req.Number,
		Notes:         req.Notes,
		MarginScheme:  req.MarginScheme,
		MarkPaid:      req.MarkPaid,
		PaymentMethod: req.PaymentMethod,
		PaidAt:        req.PaidAt,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toCompletionResponse(result)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type completeWithoutInvoiceRequest struct {
	Version int `json:"version"`
}

func (h *Handler) completeWithoutInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req completeWithoutInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.svc.CompleteWithoutInvoice(r.Context(), id, req.Version)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toCompletionResponse(result)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
