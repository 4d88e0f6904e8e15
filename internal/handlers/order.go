// internal/handlers/order.go
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hearthline/commerce-api/internal/models"
	"github.com/hearthline/commerce-api/internal/services"
	"github.com/hearthline/commerce-api/internal/utils"
)

type OrderManager interface {
	UpdateOrder(ctx context.Context, req *services.UpdateOrderRequest) (*models.Order, error)
	PreviewOrder(ctx context.Context, req *services.UpdateOrderRequest) (*services.OrderState, error)
}

type OrderHandler struct {
	orders OrderManager
	log    *logrus.Entry
}

func NewOrderHandler(orders OrderManager, log *logrus.Entry) *OrderHandler {
	return &OrderHandler{orders: orders, log: log}
}

func (h *OrderHandler) bind(c *gin.Context) (*services.UpdateOrderRequest, bool) {
	var req services.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid order payload", err.Error())
		return nil, false
	}
	req.OrderNo = c.Param("orderNo")

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return nil, false
	}
	return &req, true
}

// PUT /admin/orders/:orderNo
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	order, err := h.orders.UpdateOrder(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	utils.SuccessResponse(c, order)
}

// POST /admin/orders/:orderNo/preview
func (h *OrderHandler) PreviewOrder(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	state, err := h.orders.PreviewOrder(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	utils.SuccessResponse(c, state)
}
