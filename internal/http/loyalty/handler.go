package loyalty

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tobiaswld/werkstatt/internal/loyalty"
)

type Handler struct {
	svc *loyalty.Service
}

func NewHandler(svc *loyalty.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/balance", h.balance)
	r.Post("/credits", h.credit)
	r.Get("/rewards", h.rewards)
	r.Get("/orders/{orderID}/decision", h.decision)
	r.Get("/orders/{orderID}/eligibility", h.eligibility)
	r.Post("/orders/{orderID}/approve", h.approve)
	r.Post("/orders/{orderID}/reject", h.reject)
}

type balanceResponse struct {
	CustomerID uuid.UUID `json:"customer_id"`
	StoreID    uuid.UUID `json:"store_id"`
	Points     int       `json:"points"`
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	customerID, err := uuid.Parse(r.URL.Query().Get("customer_id"))
	if err != nil {
		http.Error(w, "invalid customer_id", http.StatusBadRequest)
		return
	}

	storeID, err := uuid.Parse(r.URL.Query().Get("store_id"))
	if err != nil {
		http.Error(w, "invalid store_id", http.StatusBadRequest)
		return
	}

	points, err := h.svc.Balance(r.Context(), customerID, storeID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	resp := balanceResponse{CustomerID: customerID, StoreID: storeID, Points: points}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type creditRequest struct {
	CustomerID uuid.UUID `json:"customer_id"`
	StoreID    uuid.UUID `json:"store_id"`
	Points     int       `json:"points"`
	Reason     string    `json:"reason,omitempty"`
}

type creditResponse struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
	StoreID    uuid.UUID `json:"store_id"`
	Points     int       `json:"points"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (h *Handler) credit(w http.ResponseWriter, r *http.Request) {
	var req creditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	credit, err := h.svc.Credit(r.Context(), loyalty.CreditParams{
		CustomerID: req.CustomerID,
		StoreID:    req.StoreID,
		Points:     req.Points,
		Reason:     req.Reason,
	})
	if err != nil {
		if errors.Is(err, loyalty.ErrNoPoints) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	resp := creditResponse{
		ID:         credit.ID,
		CustomerID: credit.CustomerID,
		StoreID:    credit.StoreID,
		Points:     credit.Points,
		Reason:     credit.Reason,
		CreatedAt:  credit.CreatedAt,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type rewardResponse struct {
	ID             uuid.UUID          `json:"id"`
	Kind           loyalty.RewardKind `json:"kind"`
	Title          string             `json:"title"`
	Value          int64              `json:"value"`
	PointsRequired int                `json:"points_required"`
}

func (h *Handler) rewards(w http.ResponseWriter, r *http.Request) {
	storeID, err := uuid.Parse(r.URL.Query().Get("store_id"))
	if err != nil {
		http.Error(w, "invalid store_id", http.StatusBadRequest)
		return
	}

	rewards, err := h.svc.Rewards(r.Context(), storeID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := make([]rewardResponse, len(rewards))
	for i, reward := range rewards {
		resp[i] = rewardResponse{
			ID:             reward.ID,
			Kind:           reward.Kind,
			Title:          reward.Title,
			Value:          reward.Value,
			PointsRequired: reward.PointsRequired,
		}
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type decisionResponse struct {
	OrderID         uuid.UUID  `json:"order_id"`
	Approved        bool       `json:"approved"`
	Rejected        bool       `json:"rejected"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	PointsRequired  int        `json:"points_required"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
}

func toDecisionResponse(d *loyalty.Decision) decisionResponse {
	return decisionResponse{
		OrderID:         d.OrderID,
		Approved:        d.Approved,
		Rejected:        d.Rejected,
		RejectionReason: d.RejectionReason,
		PointsRequired:  d.PointsRequired,
		DecidedAt:       d.DecidedAt,
	}
}

func (h *Handler) decision(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	decision, err := h.svc.Decision(r.Context(), orderID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toDecisionResponse(decision)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type eligibilityResponse struct {
	Eligible bool `json:"eligible"`
}

func (h *Handler) eligibility(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	storeID, err := uuid.Parse(r.URL.Query().Get("store_id"))
	if err != nil {
		http.Error(w, "invalid store_id", http.StatusBadRequest)
		return
	}

	// Walk-in orders have no customer record; customer_id may be absent.
	customerID := uuid.Nil
	if s := r.URL.Query().Get("customer_id"); s != "" {
		customerID, err = uuid.Parse(s)
		if err != nil {
			http.Error(w, "invalid customer_id", http.StatusBadRequest)
			return
		}
	}

	required, err := strconv.Atoi(r.URL.Query().Get("points_required"))
	if err != nil {
		http.Error(w, "invalid points_required", http.StatusBadRequest)
		return
	}

	eligible, err := h.svc.Eligible(r.Context(), orderID, customerID, storeID, required)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(eligibilityResponse{Eligible: eligible}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type approveRequest struct {
	PointsRequired int `json:"points_required"`
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	var req approveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	decision, err := h.svc.Approve(r.Context(), orderID, req.PointsRequired)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toDecisionResponse(decision)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	decision, err := h.svc.Reject(r.Context(), orderID, req.Reason)
	if err != nil {
		if errors.Is(err, loyalty.ErrEmptyReason) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if errors.Is(err, loyalty.ErrAlreadyApproved) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toDecisionResponse(decision)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
