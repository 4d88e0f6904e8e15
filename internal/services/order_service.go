// internal/services/order_service.go
package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/hearthline/commerce-api/internal/models"
	"github.com/hearthline/commerce-api/internal/repositories"
	"github.com/hearthline/commerce-api/internal/utils"
)

type OrderService struct {
	ledger repositories.Ledger
	log    *logrus.Entry
}

type OrderItemEdit struct {
	OrderItemID       uint                      `json:"orderItemId" validate:"required"`
	Quantity          *int                      `json:"quantity,omitempty" validate:"omitempty,min=1"`
	FulfillmentStatus *models.FulfillmentStatus `json:"fulfillmentStatus,omitempty"`
}

// UpdateOrderRequest edits line items. OrderStatus may only set the
// terminal shipped or delivered states.
type UpdateOrderRequest struct {
	OrderNo     string              `json:"-" validate:"required"`
	Items       []OrderItemEdit     `json:"items" validate:"dive"`
	OrderStatus *models.OrderStatus `json:"orderStatus,omitempty"`
}

func NewOrderService(ledger repositories.Ledger, log *logrus.Entry) *OrderService {
	return &OrderService{ledger: ledger, log: log}
}

// UpdateOrder applies the edits, runs the live reducer and the save-time
// overrides, and persists the order with its items.
func (s *OrderService) UpdateOrder(ctx context.Context, req *UpdateOrderRequest) (*models.Order, error) {
	if err := validateOrderRequest(req); err != nil {
		return nil, wrapOp(opUpdateOrder, err)
	}

	var order *models.Order
	err := withLedger(ctx, s.ledger, s.log, func(tx repositories.LedgerTx) error {
		var err error
		order, err = tx.FindOrderByNo(ctx, req.OrderNo)
		if err != nil {
			return err
		}
		if order == nil {
			return notFoundErr("order %s", req.OrderNo)
		}

		if err := applyItemEdits(order, req); err != nil {
			return err
		}
		SettleOrder(order.OrderStatus, order.Items).Apply(order)

		return tx.SaveOrder(ctx, order)
	})
	if err != nil {
		return nil, wrapOp(opUpdateOrder, err)
	}

	s.log.WithFields(logrus.Fields{
		"order_no":     order.OrderNo,
		"order_status": order.OrderStatus,
		"total_amount": order.TotalAmount.StringFixed(2),
	}).Info("Order updated")

	return order, nil
}

// PreviewOrder returns what the live reducer would produce for the edits
// without writing anything.
func (s *OrderService) PreviewOrder(ctx context.Context, req *UpdateOrderRequest) (*OrderState, error) {
	if err := validateOrderRequest(req); err != nil {
		return nil, wrapOp(opPreviewOrder, err)
	}

	var state OrderState
	err := withLedger(ctx, s.ledger, s.log, func(tx repositories.LedgerTx) error {
		order, err := tx.FindOrderByNo(ctx, req.OrderNo)
		if err != nil {
			return err
		}
		if order == nil {
			return notFoundErr("order %s", req.OrderNo)
		}
		if err := applyItemEdits(order, req); err != nil {
			return err
		}
		state = ReduceOrder(order.OrderStatus, order.Items)
		return nil
	})
	if err != nil {
		return nil, wrapOp(opPreviewOrder, err)
	}
	return &state, nil
}

func validateOrderRequest(req *UpdateOrderRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return validationErr("%v", err)
	}
	for _, edit := range req.Items {
		if edit.FulfillmentStatus != nil && !edit.FulfillmentStatus.Valid() {
			return validationErr("unknown fulfillment status %q", *edit.FulfillmentStatus)
		}
	}
	if req.OrderStatus != nil && !req.OrderStatus.Terminal() {
		return validationErr("order status %q cannot be set explicitly", *req.OrderStatus)
	}
	return nil
}

func applyItemEdits(order *models.Order, req *UpdateOrderRequest) error {
	index := make(map[uint]int, len(order.Items))
	for i, item := range order.Items {
		index[item.OrderItemID] = i
	}

	for _, edit := range req.Items {
		i, ok := index[edit.OrderItemID]
		if !ok {
			return validationErr("order %s has no item %d", order.OrderNo, edit.OrderItemID)
		}
		if edit.Quantity != nil {
			order.Items[i].Quantity = *edit.Quantity
		}
		if edit.FulfillmentStatus != nil {
			order.Items[i].FulfillmentStatus = *edit.FulfillmentStatus
		}
	}

	if req.OrderStatus != nil {
		order.OrderStatus = *req.OrderStatus
	}
	return nil
}
