package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/tobiaswld/werkstatt/internal/billing"
)

type documentResponse struct {
	ID      uuid.UUID       `json:"id"`
	StoreID uuid.UUID       `json:"store_id"`
	Type    billing.DocType `json:"type"`
	Number  string          `json:"number"`

	Customer customerDTO   `json:"customer"`
	Lines    []lineItemDTO `json:"lines"`

	NetAmount int64 `json:"net_amount"`
	VATAmount int64 `json:"vat_amount"`
	Total     int64 `json:"total"`

	VATRate      float64 `json:"vat_rate"`
	VATExempt    bool    `json:"vat_exempt,omitempty"`
	MarginScheme bool    `json:"margin_scheme,omitempty"`

	LegalNotice billing.LegalNotice `json:"legal_notice,omitempty"`

	Status        billing.Status        `json:"status"`
	ValidUntil    *time.Time            `json:"valid_until,omitempty"`
	PaidAt        *time.Time            `json:"paid_at,omitempty"`
	PaymentMethod billing.PaymentMethod `json:"payment_method,omitempty"`
	Notes         string                `json:"notes,omitempty"`

	OrderID *uuid.UUID `json:"order_id,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func toResponse(doc *billing.Document) documentResponse {
	return documentResponse{
		ID:            doc.ID,
		StoreID:       doc.StoreID,
		Type:          doc.Type,
		Number:        doc.Number,
		Customer:      toCustomerDTO(doc.Customer),
		Lines:         toLineDTOs(doc.Lines),
		NetAmount:     doc.NetAmount,
		VATAmount:     doc.VATAmount,
		Total:         doc.Total,
		VATRate:       doc.VATRate,
		VATExempt:     doc.VATExempt,
		MarginScheme:  doc.MarginScheme,
		LegalNotice:   doc.Notice(),
		Status:        doc.Status,
		ValidUntil:    doc.ValidUntil,
		PaidAt:        doc.PaidAt,
		PaymentMethod: doc.PaymentMethod,
		Notes:         doc.Notes,
		OrderID:       doc.OrderID,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
}

func toResponseList(docs []*billing.Document) []documentResponse {
	resp := make([]documentResponse, len(docs))
	for i, doc := range docs {
		resp[i] = toResponse(doc)
	}

	return resp
}

type bulkItemResponse struct {
	ID    uuid.UUID `json:"id"`
	Error string    `json:"error,omitempty"`
}

type bulkResponse struct {
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
	Results   []bulkItemResponse `json:"results"`
}

func toBulkResponse(results []billing.BulkResult) bulkResponse {
	resp := bulkResponse{Results: make([]bulkItemResponse, 0, len(results))}

	for _, res := range results {
		item := bulkItemResponse{ID: res.ID}

		if res.Err != nil {
			item.Error = res.Err.Error()
			resp.Failed++
		} else {
			resp.Succeeded++
		}

		resp.Results = append(resp.Results, item)
	}

	return resp
}

type suggestionResponse struct {
	Number   string `json:"number"`
	Sequence int    `json:"sequence"`
}

func toSuggestionResponse(s *billing.Suggestion) suggestionResponse {
	return suggestionResponse{Number: s.Number, Sequence: s.Sequence}
}

func toCustomerDTO(c billing.CustomerSnapshot) customerDTO {
	return customerDTO{
		Name:    c.Name,
		Company: c.Company,
		Email:   c.Email,
		Phone:   c.Phone,
		Address: c.Address,
		TaxID:   c.TaxID,
	}
}

func toCustomerSnapshot(c customerDTO) billing.CustomerSnapshot {
	return billing.CustomerSnapshot{
		Name:    c.Name,
		Company: c.Company,
		Email:   c.Email,
		Phone:   c.Phone,
		Address: c.Address,
		TaxID:   c.TaxID,
	}
}

func toLineDTOs(lines []billing.LineItem) []lineItemDTO {
	resp := make([]lineItemDTO, len(lines))
	for i, line := range lines {
		resp[i] = lineItemDTO{Description: line.Description, Amount: line.Amount}
	}

	return resp
}

func toLineItems(lines []lineItemDTO) []billing.LineItem {
	items := make([]billing.LineItem, len(lines))
	for i, line := range lines {
		items[i] = billing.LineItem{Description: line.Description, Amount: line.Amount}
	}

	return items
}
