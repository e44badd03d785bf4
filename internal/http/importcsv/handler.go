package importcsv

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tobiaswld/werkstatt/internal/billing"
	"github.com/tobiaswld/werkstatt/internal/importer"
)

type Handler struct {
	importSvc  *importer.Service
	billingSvc *billing.Service
}

func NewHandler(importSvc *importer.Service, billingSvc *billing.Service) *Handler {
	return &Handler{
		importSvc:  importSvc,
		billingSvc: billingSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
}

type documentSummary struct {
	ID       uuid.UUID       `json:"id"`
	Number   string          `json:"number"`
	Type     billing.DocType `json:"type"`
	Customer string          `json:"customer,omitempty"`
	Total    int64           `json:"total"`
	IssuedAt time.Time       `json:"issued_at"`
}

type importSuccessResponse struct {
	Imported  int               `json:"imported"`
	Documents []documentSummary `json:"documents"`
}

type conflictDTO struct {
	Number string          `json:"number"`
	Type   billing.DocType `json:"type"`
}

type importConflictResponse struct {
	New       int           `json:"new"`
	Conflicts []conflictDTO `json:"conflicts"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	storeID, err := uuid.Parse(r.FormValue("store_id"))
	if err != nil {
		http.Error(w, "invalid store_id", http.StatusBadRequest)
		return
	}

	format := importer.Format(r.FormValue("format"))
	if format == "" {
		format = importer.FormatLegacy
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	params, err := h.importSvc.Import(format, file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.billingSvc.ImportLegacy(r.Context(), storeID, params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if len(result.Conflicts) > 0 {
		resp := importConflictResponse{
			New:       len(result.New),
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{Number: c.Number, Type: c.Type})
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)

		if err := json.NewEncoder(w).Encode(resp); err != nil {
			slog.Error("failed to encode response", "error", err)
		}

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toSuccessResponse(result.Imported)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func toSuccessResponse(docs []*billing.Document) importSuccessResponse {
	summaries := make([]documentSummary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, documentSummary{
			ID:       doc.ID,
			Number:   doc.Number,
			Type:     doc.Type,
			Customer: doc.Customer.Name,
			Total:    doc.Total,
			IssuedAt: doc.CreatedAt,
		})
	}

	return importSuccessResponse{
		Imported:  len(summaries),
		Documents: summaries,
	}
}
