package order

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shipping"
)

// AddressInput is the shipping address of a checkout request.
type AddressInput struct {
	RecipientName string `json:"recipient_name" binding:"required,max=200"`
	Email         string `json:"email" binding:"omitempty,email,max=254"`
	Phone         string `json:"phone" binding:"max=50"`
	Line1         string `json:"line1" binding:"required,max=200"`
	Line2         string `json:"line2" binding:"max=200"`
	City          string `json:"city" binding:"required,max=100"`
	PostalCode    string `json:"postal_code" binding:"required,max=20"`
	Country       string `json:"country" binding:"omitempty,len=2"`
}

// OrderItemInput is one line of a checkout request. Prices are the
// client's own calculation and are checked, never trusted.
type OrderItemInput struct {
	ProductID     uuid.UUID       `json:"product_id" binding:"required"`
	SKU           string          `json:"sku"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Quantity      int             `json:"quantity" binding:"max=10000"`
	LineTotal     decimal.Decimal `json:"line_total"`
	Configuration json.RawMessage `json:"configuration,omitempty"`
}

// CreateOrderRequest is a checkout submission.
type CreateOrderRequest struct {
	ShippingAddress AddressInput     `json:"shipping_address" binding:"required"`
	Items           []OrderItemInput `json:"items" binding:"required,dive"`
	Subtotal        decimal.Decimal  `json:"subtotal"`
	VAT             decimal.Decimal  `json:"vat"`
	ShippingCost    decimal.Decimal  `json:"shipping_cost"`
	Total           decimal.Decimal  `json:"total"`
	Notes           string           `json:"notes" binding:"max=2000"`
}

// ToDomain converts the request into the pricing validator's input.
func (r CreateOrderRequest) ToDomain() *order.Request {
	req := &order.Request{
		ShippingAddress:  r.ShippingAddress.toDomain(),
		DeclaredSubtotal: r.Subtotal,
		DeclaredVAT:      r.VAT,
		DeclaredShipping: r.ShippingCost,
		DeclaredTotal:    r.Total,
		Items:            make([]order.ItemRequest, len(r.Items)),
		Notes:            r.Notes,
	}
	for i, it := range r.Items {
		req.Items[i] = order.ItemRequest{
			ProductID:         it.ProductID,
			SKU:               it.SKU,
			DeclaredUnitPrice: it.UnitPrice,
			Quantity:          it.Quantity,
			DeclaredLineTotal: it.LineTotal,
			Configuration:     it.Configuration,
		}
	}
	return req
}

func (a AddressInput) toDomain() order.ShippingAddress {
	return order.ShippingAddress{
		RecipientName: a.RecipientName,
		Email:         a.Email,
		Phone:         a.Phone,
		Line1:         a.Line1,
		Line2:         a.Line2,
		City:          a.City,
		PostalCode:    a.PostalCode,
		Country:       a.Country,
	}.Normalize()
}

// UpdateStatusRequest moves an order along its lifecycle.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=confirmed in_production shipped delivered cancelled"`
}

// ListFilter pages through a user's orders.
type ListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=created_at updated_at order_number status total"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// AddressResponse is the stored shipping address.
type AddressResponse struct {
	RecipientName string `json:"recipient_name"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Line1         string `json:"line1"`
	Line2         string `json:"line2,omitempty"`
	City          string `json:"city"`
	PostalCode    string `json:"postal_code"`
	Country       string `json:"country,omitempty"`
}

// OrderItemResponse is a persisted order line.
type OrderItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	ProductID      uuid.UUID       `json:"product_id"`
	SKU            string          `json:"sku"`
	ProductName    string          `json:"product_name"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Quantity       int             `json:"quantity"`
	LineTotal      decimal.Decimal `json:"line_total"`
	ProductionDays int             `json:"production_days"`
	Configuration  json.RawMessage `json:"configuration,omitempty"`
}

// OrderResponse is a persisted order.
type OrderResponse struct {
	ID                      uuid.UUID           `json:"id"`
	OrderNumber             string              `json:"order_number"`
	UserID                  *uuid.UUID          `json:"user_id,omitempty"`
	ShippingAddress         AddressResponse     `json:"shipping_address"`
	Items                   []OrderItemResponse `json:"items"`
	ItemCount               int                 `json:"item_count"`
	TotalQuantity           int                 `json:"total_quantity"`
	Subtotal                decimal.Decimal     `json:"subtotal"`
	VAT                     decimal.Decimal     `json:"vat"`
	ShippingCost            decimal.Decimal     `json:"shipping_cost"`
	Total                   decimal.Decimal     `json:"total"`
	Status                  string              `json:"status"`
	EstimatedProductionDays int                 `json:"estimated_production_days"`
	Notes                   string              `json:"notes,omitempty"`
	Warnings                []string            `json:"warnings,omitempty"`
	CreatedAt               time.Time           `json:"created_at"`
	UpdatedAt               time.Time           `json:"updated_at"`
	Version                 int                 `json:"version"`
}

// OrderListItemResponse is an order in list responses (less detail).
type OrderListItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	OrderNumber string          `json:"order_number"`
	ItemCount   int             `json:"item_count"`
	Total       decimal.Decimal `json:"total"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// QuoteItemResponse is one recomputed line of a quote.
type QuoteItemResponse struct {
	ProductID      uuid.UUID       `json:"product_id"`
	SKU            string          `json:"sku"`
	ProductName    string          `json:"product_name"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Quantity       int             `json:"quantity"`
	LineTotal      decimal.Decimal `json:"line_total"`
	ProductionDays int             `json:"production_days"`
}

// QuoteResponse is the authoritative pricing of a cart.
type QuoteResponse struct {
	Items                   []QuoteItemResponse `json:"items"`
	Subtotal                decimal.Decimal     `json:"subtotal"`
	VAT                     decimal.Decimal     `json:"vat"`
	ShippingCost            decimal.Decimal     `json:"shipping_cost"`
	Total                   decimal.Decimal     `json:"total"`
	TotalWeightKg           decimal.Decimal     `json:"total_weight_kg"`
	EstimatedProductionDays int                 `json:"estimated_production_days"`
	Warnings                []string            `json:"warnings,omitempty"`
}

// ShippingDetailsResponse is a pre-checkout shipping estimate.
type ShippingDetailsResponse struct {
	Zone                  string          `json:"zone"`
	BaseCost              decimal.Decimal `json:"base_cost"`
	WeightCost            decimal.Decimal `json:"weight_cost"`
	TotalCost             decimal.Decimal `json:"total_cost"`
	IsFree                bool            `json:"is_free"`
	FreeShippingThreshold decimal.Decimal `json:"free_shipping_threshold"`
	AmountToFreeShipping  decimal.Decimal `json:"amount_to_free_shipping"`
	WeightKg              decimal.Decimal `json:"weight_kg"`
}

// ToOrderResponse converts a domain Order to its response shape.
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			ID:             it.ID,
			ProductID:      it.ProductID,
			SKU:            it.SKU,
			ProductName:    it.ProductName,
			UnitPrice:      it.UnitPrice,
			Quantity:       it.Quantity,
			LineTotal:      it.LineTotal,
			ProductionDays: it.ProductionDays,
			Configuration:  it.Configuration,
		}
	}
	a := o.ShippingAddress
	return OrderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		ShippingAddress: AddressResponse{
			RecipientName: a.RecipientName,
			Email:         a.Email,
			Phone:         a.Phone,
			Line1:         a.Line1,
			Line2:         a.Line2,
			City:          a.City,
			PostalCode:    a.PostalCode,
			Country:       a.Country,
		},
		Items:                   items,
		ItemCount:               o.ItemCount(),
		TotalQuantity:           o.TotalQuantity(),
		Subtotal:                o.Subtotal,
		VAT:                     o.VAT,
		ShippingCost:            o.ShippingCost,
		Total:                   o.Total,
		Status:                  o.Status.String(),
		EstimatedProductionDays: o.EstimatedProductionDays,
		Notes:                   o.Notes,
		CreatedAt:               o.CreatedAt,
		UpdatedAt:               o.UpdatedAt,
		Version:                 o.Version,
	}
}

// ToOrderListItemResponses converts orders to list items.
func ToOrderListItemResponses(orders []*order.Order) []OrderListItemResponse {
	out := make([]OrderListItemResponse, len(orders))
	for i, o := range orders {
		out[i] = OrderListItemResponse{
			ID:          o.ID,
			OrderNumber: o.OrderNumber,
			ItemCount:   o.ItemCount(),
			Total:       o.Total,
			Status:      o.Status.String(),
			CreatedAt:   o.CreatedAt,
		}
	}
	return out
}

// ToQuoteResponse converts a pricing breakdown to a quote.
func ToQuoteResponse(b *order.Breakdown) QuoteResponse {
	items := make([]QuoteItemResponse, len(b.Items))
	for i, it := range b.Items {
		items[i] = QuoteItemResponse{
			ProductID:      it.Product.ID,
			SKU:            it.Product.SKU,
			ProductName:    it.Product.Name,
			UnitPrice:      it.UnitPrice,
			Quantity:       it.Quantity,
			LineTotal:      it.LineTotal,
			ProductionDays: it.Product.ProductionDays,
		}
	}
	return QuoteResponse{
		Items:                   items,
		Subtotal:                b.Subtotal,
		VAT:                     b.VAT,
		ShippingCost:            b.ShippingCost,
		Total:                   b.Total,
		TotalWeightKg:           b.WeightKg(),
		EstimatedProductionDays: b.EstimatedProductionDays,
		Warnings:                b.Warnings,
	}
}

// ToShippingDetailsResponse converts a shipping breakdown to its response.
func ToShippingDetailsResponse(b *shipping.Breakdown) ShippingDetailsResponse {
	return ShippingDetailsResponse{
		Zone:                  b.ZoneName,
		BaseCost:              b.BaseCost,
		WeightCost:            b.WeightCost,
		TotalCost:             b.TotalCost,
		IsFree:                b.IsFree,
		FreeShippingThreshold: b.FreeShippingThreshold,
		AmountToFreeShipping:  b.AmountToFreeShipping,
		WeightKg:              b.WeightKg,
	}
}
