package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/DeemaAlothman/simple-shop/pkg/catalog/domain/model"
)

// OrderService covers the administrative side of orders: lookups and the
// status transition. Only membership in the status set is validated; there
// is no transition graph.
type OrderService interface {
	Find(ctx context.Context, orderID uuid.UUID) (*model.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) error
}

func NewOrderService(orders model.OrderRepository, dispatcher EventDispatcher) OrderService {
	return &orderService{orders: orders, dispatcher: dispatcher}
}

type orderService struct {
	orders     model.OrderRepository
	dispatcher EventDispatcher
}

func (s *orderService) Find(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	return s.orders.Find(ctx, orderID)
}

func (s *orderService) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error) {
	return s.orders.ListByCustomer(ctx, customerID)
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) error {
	if !status.Valid() {
		return model.ErrInvalidOrderStatus
	}

	order, err := s.orders.Find(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status == status {
		return nil
	}

	if err := s.orders.UpdateStatus(ctx, orderID, status); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.OrderStatusChanged{
		OrderID:   orderID,
		OldStatus: order.Status,
		NewStatus: status,
	})
	return nil
}
