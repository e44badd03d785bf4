package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/tobiaswld/werkstatt/internal/order"
)

type orderResponse struct {
	ID         uuid.UUID  `json:"id"`
	StoreID    uuid.UUID  `json:"store_id"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`

	Contact contactDTO `json:"contact"`
	Device  deviceDTO  `json:"device"`
	Problem string     `json:"problem"`

	Status    order.Status  `json:"status"`
	FinalCost *int64        `json:"final_cost,omitempty"`
	LineItems []lineItemDTO `json:"line_items,omitempty"`

	Version   int        `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func toResponse(o *order.Order) orderResponse {
	resp := orderResponse{
		ID:         o.ID,
		StoreID:    o.StoreID,
		CustomerID: o.CustomerID,
		Contact: contactDTO{
			Name:    o.Contact.Name,
			Email:   o.Contact.Email,
			Phone:   o.Contact.Phone,
			Address: o.Contact.Address,
		},
		Device: deviceDTO{
			Brand:       o.Device.Brand,
			Model:       o.Device.Model,
			Identifier:  o.Device.Identifier,
			UnlockCode:  o.Device.UnlockCode,
			Attachments: o.Device.Attachments,
		},
		Problem:   o.Problem,
		Status:    o.Status,
		FinalCost: o.FinalCost,
		Version:   o.Version,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}

	for _, line := range o.LineItems {
		resp.LineItems = append(resp.LineItems, lineItemDTO{
			Description: line.Description,
			Amount:      line.Amount,
		})
	}

	return resp
}

func toResponseList(orders []*order.Order) []orderResponse {
	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toResponse(o)
	}

	return resp
}

type transitionResponse struct {
	Order    orderResponse `json:"order"`
	Warnings []string      `json:"warnings,omitempty"`
}

func toTransitionResponse(o *order.Order, warnings []string) transitionResponse {
	return transitionResponse{Order: toResponse(o), Warnings: warnings}
}

type completionResponse struct {
	Order    orderResponse    `json:"order"`
	Invoice  *invoiceResponse `json:"invoice,omitempty"`
	Warnings []string         `json:"warnings,omitempty"`
}

type invoiceResponse struct {
	ID        uuid.UUID `json:"id"`
	Number    string    `json:"number"`
	NetAmount int64     `json:"net_amount"`
	VATAmount int64     `json:"vat_amount"`
	Total     int64     `json:"total"`
	Status    string    `json:"status"`
}

func toCompletionResponse(result *order.CompletionResult) completionResponse {
	resp := completionResponse{
		Order:    toResponse(result.Order),
		Warnings: result.Warnings,
	}

	if result.Invoice != nil {
		resp.Invoice = &invoiceResponse{
			ID:        result.Invoice.ID,
			Number:    result.Invoice.Number,
			NetAmount: result.Invoice.NetAmount,
			VATAmount: result.Invoice.VATAmount,
			Total:     result.Invoice.Total,
			Status:    string(result.Invoice.Status),
		}
	}

	return resp
}

func toContact(c contactDTO) order.Contact {
	return order.Contact{
		Name:    c.Name,
		Email:   c.Email,
		Phone:   c.Phone,
		Address: c.Address,
	}
}

func toDevice(d deviceDTO) order.Device {
	return order.Device{
		Brand:       d.Brand,
		Model:       d.Model,
		Identifier:  d.Identifier,
		UnlockCode:  d.UnlockCode,
		Attachments: d.Attachments,
	}
}
