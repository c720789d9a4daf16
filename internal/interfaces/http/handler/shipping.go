package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	orderapp "github.com/storefront/backend/internal/application/order"
)

// EstimateQuery holds the shipping estimate query parameters.
type EstimateQuery struct {
	PostalCode string `form:"postal_code" binding:"required"`
	Subtotal   string `form:"subtotal" binding:"required"`
	WeightKg   string `form:"weight_kg"`
}

// ShippingHandler serves shipping estimates
type ShippingHandler struct {
	BaseHandler
	orderService *orderapp.OrderService
}

// NewShippingHandler creates a new ShippingHandler
func NewShippingHandler(orderService *orderapp.OrderService, logger *zap.Logger) *ShippingHandler {
	return &ShippingHandler{
		BaseHandler:  BaseHandler{logger: logger},
		orderService: orderService,
	}
}

// RegisterRoutes mounts the shipping routes under rg.
func (h *ShippingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/shipping/estimate", h.Estimate)
}

// Estimate returns the shipping breakdown for a postal code and cart.
func (h *ShippingHandler) Estimate(c *gin.Context) {
	var q EstimateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	subtotal, err := decimal.NewFromString(q.Subtotal)
	if err != nil {
		h.BadRequest(c, "subtotal must be a decimal number")
		return
	}
	weight := decimal.Zero
	if q.WeightKg != "" {
		if weight, err = decimal.NewFromString(q.WeightKg); err != nil {
			h.BadRequest(c, "weight_kg must be a decimal number")
			return
		}
	}

	resp, err := h.orderService.GetShippingDetails(c.Request.Context(), q.PostalCode, subtotal, weight)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
