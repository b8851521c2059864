package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidRequest     = errors.New("invalid order request")
	ErrInvalidOrderStatus = errors.New("unknown order status")
	ErrInsufficientStock  = errors.New("insufficient stock quantity")
	ErrTransactionFailure = errors.New("store transaction failed")
)

type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "PLACED"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPlaced, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

const PaymentMethodCOD = "COD"

// InsufficientStockError reports which product could not satisfy the
// requested quantity. errors.Is(err, ErrInsufficientStock) holds for it.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

type Order struct {
	ID            uuid.UUID
	CustomerID    uuid.UUID
	Lines         []OrderLine
	SubtotalCents int64
	DiscountCents int64
	TotalCents    int64
	PaymentMethod string
	Status        OrderStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderLine freezes the product name, SKU and unit price at placement time;
// later catalog edits never touch historical orders.
type OrderLine struct {
	ID             uuid.UUID
	ProductID      uuid.UUID
	NameSnapshot   string
	SKUSnapshot    string
	UnitPriceCents int64
	Qty            int
	LineTotalCents int64
}

type OrderRepository interface {
	NextID() (uuid.UUID, error)
	Create(ctx context.Context, order *Order) error
	Find(ctx context.Context, id uuid.UUID) (*Order, error)
	// ListByCustomer returns order summaries, newest first, without lines.
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status OrderStatus) error
}
