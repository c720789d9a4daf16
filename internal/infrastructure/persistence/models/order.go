package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/order"
)

// ShippingAddressModel is embedded in orders with a "shipping_" column prefix.
type ShippingAddressModel struct {
	RecipientName string `gorm:"type:varchar(200);not null"`
	Email         string `gorm:"type:varchar(254)"`
	Phone         string `gorm:"type:varchar(50)"`
	Line1         string `gorm:"type:varchar(200);not null"`
	Line2         string `gorm:"type:varchar(200)"`
	City          string `gorm:"type:varchar(100);not null"`
	PostalCode    string `gorm:"type:varchar(20);not null"`
	Country       string `gorm:"type:varchar(2)"`
}

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	AggregateModel
	OrderNumber             string               `gorm:"type:varchar(32);not null;uniqueIndex"`
	UserID                  *uuid.UUID           `gorm:"type:uuid;index"`
	ShippingAddress         ShippingAddressModel `gorm:"embedded;embeddedPrefix:shipping_"`
	Subtotal                decimal.Decimal      `gorm:"type:decimal(12,2);not null"`
	VAT                     decimal.Decimal      `gorm:"column:vat;type:decimal(12,2);not null"`
	ShippingCost            decimal.Decimal      `gorm:"type:decimal(12,2);not null"`
	Total                   decimal.Decimal      `gorm:"type:decimal(12,2);not null"`
	Status                  order.Status         `gorm:"type:varchar(20);not null;default:'pending';index"`
	EstimatedProductionDays int                  `gorm:"not null;default:0"`
	Notes                   string               `gorm:"type:text"`
	Items                   []OrderItemModel     `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is the persistence model for an order line.
type OrderItemModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	SKU            string          `gorm:"column:sku;type:varchar(64);not null"`
	ProductName    string          `gorm:"type:varchar(200);not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity       int             `gorm:"not null"`
	LineTotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ProductionDays int             `gorm:"not null;default:0"`
	Configuration  *string         `gorm:"type:json"`
	CreatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain Order.
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		BaseAggregateRoot: m.AggregateModel.ToDomainAggregateRoot(),
		OrderNumber:       m.OrderNumber,
		UserID:            m.UserID,
		ShippingAddress: order.ShippingAddress{
			RecipientName: m.ShippingAddress.RecipientName,
			Email:         m.ShippingAddress.Email,
			Phone:         m.ShippingAddress.Phone,
			Line1:         m.ShippingAddress.Line1,
			Line2:         m.ShippingAddress.Line2,
			City:          m.ShippingAddress.City,
			PostalCode:    m.ShippingAddress.PostalCode,
			Country:       m.ShippingAddress.Country,
		},
		Subtotal:                m.Subtotal,
		VAT:                     m.VAT,
		ShippingCost:            m.ShippingCost,
		Total:                   m.Total,
		Status:                  m.Status,
		EstimatedProductionDays: m.EstimatedProductionDays,
		Notes:                   m.Notes,
		Items:                   make([]order.Item, len(m.Items)),
	}
	for i := range m.Items {
		o.Items[i] = m.Items[i].ToDomain()
	}
	return o
}

// FromDomain populates the persistence model, items included.
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.UserID = o.UserID
	m.ShippingAddress = ShippingAddressModel{
		RecipientName: o.ShippingAddress.RecipientName,
		Email:         o.ShippingAddress.Email,
		Phone:         o.ShippingAddress.Phone,
		Line1:         o.ShippingAddress.Line1,
		Line2:         o.ShippingAddress.Line2,
		City:          o.ShippingAddress.City,
		PostalCode:    o.ShippingAddress.PostalCode,
		Country:       o.ShippingAddress.Country,
	}
	m.Subtotal = o.Subtotal
	m.VAT = o.VAT
	m.ShippingCost = o.ShippingCost
	m.Total = o.Total
	m.Status = o.Status
	m.EstimatedProductionDays = o.EstimatedProductionDays
	m.Notes = o.Notes
	m.Items = make([]OrderItemModel, len(o.Items))
	for i := range o.Items {
		m.Items[i].FromDomain(&o.Items[i])
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order.
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// ToDomain converts the persistence model to a domain order Item.
func (m *OrderItemModel) ToDomain() order.Item {
	var cfg json.RawMessage
	if m.Configuration != nil && *m.Configuration != "null" {
		cfg = json.RawMessage(*m.Configuration)
	}
	return order.Item{
		ID:             m.ID,
		OrderID:        m.OrderID,
		ProductID:      m.ProductID,
		SKU:            m.SKU,
		ProductName:    m.ProductName,
		UnitPrice:      m.UnitPrice,
		Quantity:       m.Quantity,
		LineTotal:      m.LineTotal,
		ProductionDays: m.ProductionDays,
		Configuration:  cfg,
		CreatedAt:      m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain order Item.
func (m *OrderItemModel) FromDomain(it *order.Item) {
	m.ID = it.ID
	m.OrderID = it.OrderID
	m.ProductID = it.ProductID
	m.SKU = it.SKU
	m.ProductName = it.ProductName
	m.UnitPrice = it.UnitPrice
	m.Quantity = it.Quantity
	m.LineTotal = it.LineTotal
	m.ProductionDays = it.ProductionDays
	m.Configuration = nil
	if len(it.Configuration) > 0 {
		raw := string(it.Configuration)
		m.Configuration = &raw
	}
	m.CreatedAt = it.CreatedAt
}
