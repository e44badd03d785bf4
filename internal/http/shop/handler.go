package shop

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tobiaswld/werkstatt/internal/billing"
	"github.com/tobiaswld/werkstatt/internal/order"
	"github.com/tobiaswld/werkstatt/internal/shop"
)

type Handler struct {
	svc *shop.Service
}

func NewHandler(svc *shop.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{id}", h.get)
	r.Put("/{id}/billing", h.updateBilling)
	r.Put("/{id}/notify-set", h.updateNotifySet)
}

type seriesDTO struct {
	Prefix     string `json:"prefix"`
	NextNumber int    `json:"next_number"`
}

type billingConfigDTO struct {
	Invoice  seriesDTO `json:"invoice"`
	Quote    seriesDTO `json:"quote"`
	Purchase seriesDTO `json:"purchase"`

	VATEnabled bool    `json:"vat_enabled"`
	VATRate    float64 `json:"vat_rate"`
}

type shopResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`

	Billing   billingConfigDTO `json:"billing"`
	NotifySet []order.Status   `json:"notify_set"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func toResponse(s *shop.Shop) shopResponse {
	return shopResponse{
		ID:        s.ID,
		Name:      s.Name,
		Billing:   toBillingDTO(s.Billing),
		NotifySet: s.NotifySet,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toBillingDTO(cfg billing.StoreConfig) billingConfigDTO {
	return billingConfigDTO{
		Invoice:    seriesDTO{Prefix: cfg.Invoice.Prefix, NextNumber: cfg.Invoice.NextNumber},
		Quote:      seriesDTO{Prefix: cfg.Quote.Prefix, NextNumber: cfg.Quote.NextNumber},
		Purchase:   seriesDTO{Prefix: cfg.Purchase.Prefix, NextNumber: cfg.Purchase.NextNumber},
		VATEnabled: cfg.VATEnabled,
		VATRate:    cfg.VATRate,
	}
}

func toStoreConfig(dto billingConfigDTO) billing.StoreConfig {
	return billing.StoreConfig{
		Invoice:    billing.SeriesConfig{Prefix: dto.Invoice.Prefix, NextNumber: dto.Invoice.NextNumber},
		Quote:      billing.SeriesConfig{Prefix: dto.Quote.Prefix, NextNumber: dto.Quote.NextNumber},
		Purchase:   billing.SeriesConfig{Prefix: dto.Purchase.Prefix, NextNumber: dto.Purchase.NextNumber},
		VATEnabled: dto.VATEnabled,
		VATRate:    dto.VATRate,
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	s, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, shop.ErrNotFound) {
			http.Error(w, "store not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(s)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) updateBilling(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req billingConfigDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.UpdateBillingConfig(r.Context(), id, toStoreConfig(req)); err != nil {
		if errors.Is(err, shop.ErrBadVATRate) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if errors.Is(err, shop.ErrNotFound) {
			http.Error(w, "store not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type notifySetRequest struct {
	Statuses []order.Status `json:"statuses"`
}

func (h *Handler) updateNotifySet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req notifySetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.UpdateNotifySet(r.Context(), id, req.Statuses); err != nil {
		if errors.Is(err, shop.ErrBadStatus) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if errors.Is(err, shop.ErrNotFound) {
			http.Error(w, "store not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
